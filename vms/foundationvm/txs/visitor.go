// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Allow vm to execute custom logic against the underlying transaction types.
type Visitor interface {
	ProposeTx(*ProposeTx) error
	VoteTx(*VoteTx) error
	ExecuteTx(*ExecuteTx) error
	CloseTx(*CloseTx) error
}
