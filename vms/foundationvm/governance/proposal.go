// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

const (
	MaxTitleLen       = 256
	MaxDescriptionLen = 4096
)

var ErrInvalidProposal = errors.New("invalid proposal")

// Deposit is reserved for proposal deposits. It is always empty.
type Deposit struct {
	Amount uint64 `serialize:"true"`
}

func (d Deposit) IsEmpty() bool { return d.Amount == 0 }

// Proposal is a stored proposal. Threshold and TotalWeight are snapshots taken
// at creation and never change afterwards.
type Proposal struct {
	ID          uint64      `serialize:"true"`
	Title       string      `serialize:"true"`
	Description string      `serialize:"true"`
	Proposer    ids.ShortID `serialize:"true"`
	StartHeight uint64      `serialize:"true"`
	StartTime   uint64      `serialize:"true"`
	Expires     Expiration  `serialize:"true"`
	Threshold   Threshold   `serialize:"true"`
	TotalWeight uint64      `serialize:"true"`
	Votes       Votes       `serialize:"true"`
	// Status as of the last write. Open is only a hint and gets re-derived.
	Status  Status  `serialize:"true"`
	Deposit Deposit `serialize:"true"`
	Action  Action  `serialize:"true"`
}

// VerifyContent verifies the user supplied part of a proposal.
func VerifyContent(title, description string, action Action) error {
	switch {
	case len(title) == 0:
		return fmt.Errorf("%w: empty title", ErrInvalidProposal)
	case len(title) > MaxTitleLen:
		return fmt.Errorf("%w: title is %d bytes, max %d", ErrInvalidProposal, len(title), MaxTitleLen)
	case len(description) > MaxDescriptionLen:
		return fmt.Errorf("%w: description is %d bytes, max %d", ErrInvalidProposal, len(description), MaxDescriptionLen)
	case action == nil:
		return fmt.Errorf("%w: %w", ErrInvalidProposal, errNilAction)
	}
	if err := action.Verify(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProposal, err)
	}
	return nil
}

func (p *Proposal) Verify() error {
	if err := VerifyContent(p.Title, p.Description, p.Action); err != nil {
		return err
	}
	if err := p.Expires.Verify(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProposal, err)
	}
	return p.Threshold.Verify()
}

func (p *Proposal) IsExpired(block BlockInfo) bool {
	return p.Expires.IsExpired(block)
}

// CurrentStatus returns the status of [p] as of [block]. Only a stored Open is
// re-derived, every other status is final or only left by execution.
func (p *Proposal) CurrentStatus(block BlockInfo) Status {
	if p.Status != Open {
		return p.Status
	}
	return Evaluate(p.Threshold, p.TotalWeight, p.Votes, p.IsExpired(block))
}

// UpdateStatus stores the status of [p] as of [block] and returns it.
func (p *Proposal) UpdateStatus(block BlockInfo) Status {
	p.Status = p.CurrentStatus(block)
	return p.Status
}

// Ballot is the vote of one voter on one proposal.
type Ballot struct {
	Option VoteOption `serialize:"true"`
	// Voter weight when the ballot was cast
	Weight uint64 `serialize:"true"`
}

// Voter is a member of the voter set.
type Voter struct {
	Weight uint64 `serialize:"true"`
	// First proposal id the voter may vote on
	Since uint64 `serialize:"true"`
	Info  string `serialize:"true"`
}

// CanVoteOn returns true if [v] was a voter when [proposalID] was created.
func (v *Voter) CanVoteOn(proposalID uint64) bool {
	return v.Weight > 0 && v.Since <= proposalID
}
