// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// CodecVersion is the current default codec version
const CodecVersion = 0

// Codec is used to marshal everything the foundation state persists.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()

	errs := wrappers.Errs{}
	errs.Add(
		c.RegisterType(&TransferAction{}),
		c.RegisterType(&AddVoterAction{}),
		c.RegisterType(&RemoveVoterAction{}),
	)
	errs.Add(Codec.RegisterCodec(CodecVersion, c))
	if errs.Errored() {
		panic(errs.Err)
	}
}
