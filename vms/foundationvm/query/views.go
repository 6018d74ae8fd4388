// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package query

import (
	"github.com/ava-labs/avalanchego/ids"
	avajson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/state"
)

// ProposalView is a proposal with its status derived as of the query.
type ProposalView struct {
	ID          avajson.Uint64        `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Proposer    ids.ShortID           `json:"proposer"`
	StartHeight avajson.Uint64        `json:"startHeight"`
	StartTime   avajson.Uint64        `json:"startTime"`
	Expires     governance.Expiration `json:"expires"`
	Threshold   ThresholdView         `json:"threshold"`
	Votes       governance.Votes      `json:"votes"`
	Status      governance.Status     `json:"status"`
	Deposit     *avajson.Uint64       `json:"deposit,omitempty"`
	Action      governance.ActionJSON `json:"action"`
}

// ThresholdView is a threshold rule together with the total weight it is
// evaluated against.
type ThresholdView struct {
	Rule        governance.Threshold `json:"rule"`
	TotalWeight avajson.Uint64       `json:"totalWeight"`
}

type VoteView struct {
	ProposalID avajson.Uint64        `json:"proposalID"`
	Voter      ids.ShortID           `json:"voter"`
	Vote       governance.VoteOption `json:"vote"`
	Weight     avajson.Uint64        `json:"weight"`
}

type VoterView struct {
	Address ids.ShortID    `json:"address"`
	Weight  avajson.Uint64 `json:"weight"`
	Since   avajson.Uint64 `json:"since"`
	Info    string         `json:"info,omitempty"`
}

func newProposalView(proposal *governance.Proposal, block governance.BlockInfo) *ProposalView {
	view := &ProposalView{
		ID:          avajson.Uint64(proposal.ID),
		Title:       proposal.Title,
		Description: proposal.Description,
		Proposer:    proposal.Proposer,
		StartHeight: avajson.Uint64(proposal.StartHeight),
		StartTime:   avajson.Uint64(proposal.StartTime),
		Expires:     proposal.Expires,
		Threshold: ThresholdView{
			Rule:        proposal.Threshold,
			TotalWeight: avajson.Uint64(proposal.TotalWeight),
		},
		Votes:  proposal.Votes,
		Status: proposal.CurrentStatus(block),
		Action: governance.ActionJSON{Action: proposal.Action},
	}
	if !proposal.Deposit.IsEmpty() {
		deposit := avajson.Uint64(proposal.Deposit.Amount)
		view.Deposit = &deposit
	}
	return view
}

func newVoteView(proposalID uint64, entry state.BallotEntry) *VoteView {
	return &VoteView{
		ProposalID: avajson.Uint64(proposalID),
		Voter:      entry.Voter,
		Vote:       entry.Ballot.Option,
		Weight:     avajson.Uint64(entry.Ballot.Weight),
	}
}

func newVoterView(entry state.VoterEntry) *VoterView {
	return &VoterView{
		Address: entry.Address,
		Weight:  avajson.Uint64(entry.Voter.Weight),
		Since:   avajson.Uint64(entry.Voter.Since),
		Info:    entry.Voter.Info,
	}
}
