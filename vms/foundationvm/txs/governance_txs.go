// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

var (
	_ UnsignedTx = (*ProposeTx)(nil)
	_ UnsignedTx = (*VoteTx)(nil)
	_ UnsignedTx = (*ExecuteTx)(nil)
	_ UnsignedTx = (*CloseTx)(nil)
)

// ProposeTx creates a proposal and casts the proposer's yes ballot.
type ProposeTx struct {
	Title       string
	Description string
	Action      governance.Action
	// Expires defaults to the max voting period when nil
	Expires *governance.Expiration
}

// SyntacticVerify only checks the expiration. Title, description and action
// are verified with the proposal they end up in.
func (tx *ProposeTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	if tx.Expires != nil {
		return tx.Expires.Verify()
	}
	return nil
}

func (tx *ProposeTx) Visit(visitor Visitor) error {
	return visitor.ProposeTx(tx)
}

type VoteTx struct {
	ProposalID uint64
	Vote       governance.VoteOption
}

func (tx *VoteTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.Vote.Verify()
}

func (tx *VoteTx) Visit(visitor Visitor) error {
	return visitor.VoteTx(tx)
}

type ExecuteTx struct {
	ProposalID uint64
}

func (tx *ExecuteTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *ExecuteTx) Visit(visitor Visitor) error {
	return visitor.ExecuteTx(tx)
}

type CloseTx struct {
	ProposalID uint64
}

func (tx *CloseTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *CloseTx) Visit(visitor Visitor) error {
	return visitor.CloseTx(tx)
}
