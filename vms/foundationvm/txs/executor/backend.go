// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/ava-labs/avalanchego/utils/logging"
)

// Shared fields used by visitors.
type Backend struct {
	Log logging.Logger
}
