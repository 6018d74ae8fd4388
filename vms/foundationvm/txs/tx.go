// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

var (
	ErrNilTx       = errors.New("tx is nil")
	errEmptySender = errors.New("sender is empty")
)

// UnsignedTx is a governance call without its sender.
type UnsignedTx interface {
	SyntacticVerify() error
	Visit(Visitor) error
}

// Tx is a governance call issued by [Sender]. The sender is authenticated by
// the transport the call arrived on.
type Tx struct {
	Sender   ids.ShortID
	Unsigned UnsignedTx
}

func (tx *Tx) SyntacticVerify() error {
	switch {
	case tx == nil || tx.Unsigned == nil:
		return ErrNilTx
	case tx.Sender == ids.ShortEmpty:
		return errEmptySender
	}
	if err := tx.Unsigned.SyntacticVerify(); err != nil {
		return fmt.Errorf("failed to verify %T: %w", tx.Unsigned, err)
	}
	return nil
}
