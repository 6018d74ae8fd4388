// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

var (
	_ Diff = (*diff)(nil)

	ErrMissingParentState = errors.New("missing parent state")
	errTotalWeightDrift   = errors.New("total weight differs after applying voters")
)

// Diff holds the modifications of one call on top of its parent state.
type Diff interface {
	Chain

	Apply(State) error
}

type diff struct {
	parent Chain

	lastBlock      governance.BlockInfo
	totalWeight    uint64
	nextProposalID uint64

	// nil means removed
	modifiedVoters    map[ids.ShortID]*governance.Voter
	modifiedProposals map[uint64]*governance.Proposal
	modifiedBallots   map[ballotKey]*governance.Ballot
	modifiedBalances  map[ids.ShortID]uint64
}

func NewDiff(parent Chain) (Diff, error) {
	if parent == nil {
		return nil, ErrMissingParentState
	}
	return &diff{
		parent:            parent,
		lastBlock:         parent.GetLastBlock(),
		totalWeight:       parent.GetTotalWeight(),
		nextProposalID:    parent.GetNextProposalID(),
		modifiedVoters:    make(map[ids.ShortID]*governance.Voter),
		modifiedProposals: make(map[uint64]*governance.Proposal),
		modifiedBallots:   make(map[ballotKey]*governance.Ballot),
		modifiedBalances:  make(map[ids.ShortID]uint64),
	}, nil
}

func (d *diff) GetConfig() (*Config, error) {
	return d.parent.GetConfig()
}

func (d *diff) GetLastBlock() governance.BlockInfo {
	return d.lastBlock
}

func (d *diff) SetLastBlock(block governance.BlockInfo) {
	d.lastBlock = block
}

func (d *diff) GetTotalWeight() uint64 {
	return d.totalWeight
}

func (d *diff) GetVoter(address ids.ShortID) (*governance.Voter, error) {
	voter, modified := d.modifiedVoters[address]
	if !modified {
		return d.parent.GetVoter(address)
	}
	if voter == nil {
		return nil, database.ErrNotFound
	}
	voterCopy := *voter
	return &voterCopy, nil
}

func (d *diff) UpsertVoter(address ids.ShortID, voter *governance.Voter) error {
	if voter == nil || voter.Weight == 0 {
		return errZeroWeightVoter
	}
	oldWeight, err := voterWeight(d, address)
	if err != nil {
		return err
	}
	totalWeight, err := replaceWeight(d.totalWeight, oldWeight, voter.Weight)
	if err != nil {
		return err
	}
	voterCopy := *voter
	d.modifiedVoters[address] = &voterCopy
	d.totalWeight = totalWeight
	return nil
}

func (d *diff) RemoveVoter(address ids.ShortID) error {
	voter, err := d.GetVoter(address)
	if err != nil {
		return err
	}
	totalWeight, err := replaceWeight(d.totalWeight, voter.Weight, 0)
	if err != nil {
		return err
	}
	d.modifiedVoters[address] = nil
	d.totalWeight = totalWeight
	return nil
}

func (d *diff) GetNextProposalID() uint64 {
	return d.nextProposalID
}

func (d *diff) SetNextProposalID(id uint64) {
	d.nextProposalID = id
}

func (d *diff) GetProposal(id uint64) (*governance.Proposal, error) {
	proposal, modified := d.modifiedProposals[id]
	if !modified {
		return d.parent.GetProposal(id)
	}
	proposalCopy := *proposal
	return &proposalCopy, nil
}

func (d *diff) PutProposal(proposal *governance.Proposal) {
	proposalCopy := *proposal
	d.modifiedProposals[proposal.ID] = &proposalCopy
}

func (d *diff) GetBallot(proposalID uint64, voter ids.ShortID) (*governance.Ballot, error) {
	ballot, modified := d.modifiedBallots[ballotKey{proposalID: proposalID, voter: voter}]
	if !modified {
		return d.parent.GetBallot(proposalID, voter)
	}
	ballotCopy := *ballot
	return &ballotCopy, nil
}

func (d *diff) PutBallot(proposalID uint64, voter ids.ShortID, ballot *governance.Ballot) {
	ballotCopy := *ballot
	d.modifiedBallots[ballotKey{proposalID: proposalID, voter: voter}] = &ballotCopy
}

func (d *diff) GetBalance(address ids.ShortID) (uint64, error) {
	if balance, modified := d.modifiedBalances[address]; modified {
		return balance, nil
	}
	return d.parent.GetBalance(address)
}

func (d *diff) SetBalance(address ids.ShortID, balance uint64) {
	d.modifiedBalances[address] = balance
}

// Apply writes the modifications of [d] into [baseState], which must be the
// state [d] was created on. Voters go through the base aggregate, so the base
// total weight must end up equal to the one of [d].
func (d *diff) Apply(baseState State) error {
	baseState.SetLastBlock(d.lastBlock)
	baseState.SetNextProposalID(d.nextProposalID)

	for address, voter := range d.modifiedVoters {
		if voter != nil {
			if err := baseState.UpsertVoter(address, voter); err != nil {
				return fmt.Errorf("failed to apply voter %s: %w", address, err)
			}
			continue
		}
		// upserted and removed again within this diff
		if _, err := baseState.GetVoter(address); err == database.ErrNotFound {
			continue
		}
		if err := baseState.RemoveVoter(address); err != nil {
			return fmt.Errorf("failed to remove voter %s: %w", address, err)
		}
	}
	if baseWeight := baseState.GetTotalWeight(); baseWeight != d.totalWeight {
		return fmt.Errorf("%w: %d != %d", errTotalWeightDrift, baseWeight, d.totalWeight)
	}

	for _, proposal := range d.modifiedProposals {
		baseState.PutProposal(proposal)
	}
	for key, ballot := range d.modifiedBallots {
		baseState.PutBallot(key.proposalID, key.voter, ballot)
	}
	for address, balance := range d.modifiedBalances {
		baseState.SetBalance(address, balance)
	}
	return nil
}
