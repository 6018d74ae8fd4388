// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package query

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	avajson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/samber/lo"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/state"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs/executor"
)

const (
	DefaultLimit = 10
	MaxLimit     = 30
)

// Querier serves read-only views over the committed state. Derived statuses
// are never written back. Callers serialize access with state writers.
type Querier struct {
	state state.State
	clock *mockable.Clock
}

func NewQuerier(s state.State, clock *mockable.Clock) *Querier {
	return &Querier{
		state: s,
		clock: clock,
	}
}

// Limit returns [limit] capped at MaxLimit. Non-positive limits select
// DefaultLimit.
func Limit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Block returns the block queries are evaluated at: the last accepted height
// at the current time, never earlier than the last accepted time.
func (q *Querier) Block() governance.BlockInfo {
	block := q.state.GetLastBlock()
	if now := q.clock.Time(); now.After(block.Time) {
		block.Time = now
	}
	return block
}

func (q *Querier) GetProposal(proposalID uint64) (*ProposalView, error) {
	proposal, err := q.getProposal(proposalID)
	if err != nil {
		return nil, err
	}
	return newProposalView(proposal, q.Block()), nil
}

// ListProposals returns proposals with ids above [startAfter] in ascending
// order.
func (q *Querier) ListProposals(startAfter uint64, limit int) ([]*ProposalView, error) {
	limit = Limit(limit)
	nextProposalID := q.state.GetNextProposalID()
	if startAfter >= nextProposalID {
		return []*ProposalView{}, nil
	}

	block := q.Block()
	views := make([]*ProposalView, 0, limit)
	for proposalID := startAfter + 1; proposalID < nextProposalID && len(views) < limit; proposalID++ {
		proposal, err := q.getProposal(proposalID)
		if err != nil {
			return nil, err
		}
		views = append(views, newProposalView(proposal, block))
	}
	return views, nil
}

// ReverseProposals returns proposals with ids below [startBefore] in
// descending order. A zero [startBefore] starts at the newest proposal.
func (q *Querier) ReverseProposals(startBefore uint64, limit int) ([]*ProposalView, error) {
	limit = Limit(limit)
	start := q.state.GetNextProposalID()
	if startBefore != 0 && startBefore < start {
		start = startBefore
	}
	if start == 0 {
		return []*ProposalView{}, nil
	}

	block := q.Block()
	views := make([]*ProposalView, 0, limit)
	for proposalID := start - 1; proposalID > 0 && len(views) < limit; proposalID-- {
		proposal, err := q.getProposal(proposalID)
		if err != nil {
			return nil, err
		}
		views = append(views, newProposalView(proposal, block))
	}
	return views, nil
}

// GetVote returns nil if [voter] didn't vote on [proposalID].
func (q *Querier) GetVote(proposalID uint64, voter ids.ShortID) (*VoteView, error) {
	ballot, err := q.state.GetBallot(proposalID, voter)
	switch {
	case err == database.ErrNotFound:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("couldn't get ballot: %w", err)
	}
	return newVoteView(proposalID, state.BallotEntry{Voter: voter, Ballot: ballot}), nil
}

func (q *Querier) ListVotes(proposalID uint64, startAfter ids.ShortID, limit int) ([]*VoteView, error) {
	entries, err := q.state.ListBallots(proposalID, startAfter, Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("couldn't list ballots: %w", err)
	}
	return lo.Map(entries, func(entry state.BallotEntry, _ int) *VoteView {
		return newVoteView(proposalID, entry)
	}), nil
}

// GetVoter returns nil if [address] isn't a voter.
func (q *Querier) GetVoter(address ids.ShortID) (*VoterView, error) {
	voter, err := q.state.GetVoter(address)
	switch {
	case err == database.ErrNotFound:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("couldn't get voter: %w", err)
	}
	return newVoterView(state.VoterEntry{Address: address, Voter: voter}), nil
}

func (q *Querier) ListVoters(startAfter ids.ShortID, limit int) ([]*VoterView, error) {
	entries, err := q.state.ListVoters(startAfter, Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("couldn't list voters: %w", err)
	}
	return lo.Map(entries, func(entry state.VoterEntry, _ int) *VoterView {
		return newVoterView(entry)
	}), nil
}

// GetThreshold returns the configured rule against the current total weight.
func (q *Querier) GetThreshold() (*ThresholdView, error) {
	config, err := q.state.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("couldn't get config: %w", err)
	}
	return &ThresholdView{
		Rule:        config.Threshold,
		TotalWeight: avajson.Uint64(q.state.GetTotalWeight()),
	}, nil
}

func (q *Querier) GetBalance(address ids.ShortID) (uint64, error) {
	return q.state.GetBalance(address)
}

func (q *Querier) getProposal(proposalID uint64) (*governance.Proposal, error) {
	proposal, err := q.state.GetProposal(proposalID)
	switch {
	case err == database.ErrNotFound:
		return nil, fmt.Errorf("%w: %d", executor.ErrProposalNotFound, proposalID)
	case err != nil:
		return nil, fmt.Errorf("couldn't get proposal %d: %w", proposalID, err)
	}
	return proposal, nil
}
