// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package foundationvm

import (
	"context"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/query"
)

var _ Client = (*client)(nil)

// Client interface for interacting with the foundation endpoint
type Client interface {
	Propose(ctx context.Context, sender ids.ShortID, title, description string, action governance.Action, expires *governance.Expiration, options ...rpc.Option) (*IssueReply, error)
	Vote(ctx context.Context, sender ids.ShortID, proposalID uint64, vote governance.VoteOption, options ...rpc.Option) (*IssueReply, error)
	Execute(ctx context.Context, sender ids.ShortID, proposalID uint64, options ...rpc.Option) (*IssueReply, error)
	Close(ctx context.Context, sender ids.ShortID, proposalID uint64, options ...rpc.Option) (*IssueReply, error)

	GetProposal(ctx context.Context, proposalID uint64, options ...rpc.Option) (*query.ProposalView, error)
	ListProposals(ctx context.Context, startAfter uint64, limit uint32, options ...rpc.Option) ([]*query.ProposalView, error)
	ReverseProposals(ctx context.Context, startBefore uint64, limit uint32, options ...rpc.Option) ([]*query.ProposalView, error)
	// GetVote returns nil if [voter] didn't vote on [proposalID]
	GetVote(ctx context.Context, proposalID uint64, voter ids.ShortID, options ...rpc.Option) (*query.VoteView, error)
	ListVotes(ctx context.Context, proposalID uint64, startAfter ids.ShortID, limit uint32, options ...rpc.Option) ([]*query.VoteView, error)
	// GetVoter returns nil if [address] isn't a voter
	GetVoter(ctx context.Context, address ids.ShortID, options ...rpc.Option) (*query.VoterView, error)
	ListVoters(ctx context.Context, startAfter ids.ShortID, limit uint32, options ...rpc.Option) ([]*query.VoterView, error)
	GetThreshold(ctx context.Context, options ...rpc.Option) (*query.ThresholdView, error)
	GetBalance(ctx context.Context, address ids.ShortID, options ...rpc.Option) (uint64, error)
	GetHeight(ctx context.Context, options ...rpc.Option) (*GetHeightReply, error)
}

// Client implementation for interacting with the foundation endpoint
type client struct {
	requester rpc.EndpointRequester
}

// NewClient returns a Client for interacting with the foundation endpoint
func NewClient(uri string) Client {
	return &client{requester: rpc.NewEndpointRequester(
		uri + "/ext/" + Name,
	)}
}

func (c *client) Propose(
	ctx context.Context,
	sender ids.ShortID,
	title string,
	description string,
	action governance.Action,
	expires *governance.Expiration,
	options ...rpc.Option,
) (*IssueReply, error) {
	res := &IssueReply{}
	err := c.requester.SendRequest(ctx, "foundation.propose", &ProposeArgs{
		SenderArgs:  SenderArgs{Sender: sender},
		Title:       title,
		Description: description,
		Action:      governance.ActionJSON{Action: action},
		Expires:     expires,
	}, res, options...)
	return res, err
}

func (c *client) Vote(ctx context.Context, sender ids.ShortID, proposalID uint64, vote governance.VoteOption, options ...rpc.Option) (*IssueReply, error) {
	res := &IssueReply{}
	err := c.requester.SendRequest(ctx, "foundation.vote", &VoteArgs{
		SenderArgs: SenderArgs{Sender: sender},
		ProposalID: json.Uint64(proposalID),
		Vote:       vote,
	}, res, options...)
	return res, err
}

func (c *client) Execute(ctx context.Context, sender ids.ShortID, proposalID uint64, options ...rpc.Option) (*IssueReply, error) {
	res := &IssueReply{}
	err := c.requester.SendRequest(ctx, "foundation.execute", &ProposalCallArgs{
		SenderArgs: SenderArgs{Sender: sender},
		ProposalID: json.Uint64(proposalID),
	}, res, options...)
	return res, err
}

func (c *client) Close(ctx context.Context, sender ids.ShortID, proposalID uint64, options ...rpc.Option) (*IssueReply, error) {
	res := &IssueReply{}
	err := c.requester.SendRequest(ctx, "foundation.close", &ProposalCallArgs{
		SenderArgs: SenderArgs{Sender: sender},
		ProposalID: json.Uint64(proposalID),
	}, res, options...)
	return res, err
}

func (c *client) GetProposal(ctx context.Context, proposalID uint64, options ...rpc.Option) (*query.ProposalView, error) {
	res := &GetProposalReply{}
	err := c.requester.SendRequest(ctx, "foundation.getProposal", &GetProposalArgs{
		ProposalID: json.Uint64(proposalID),
	}, res, options...)
	return res.Proposal, err
}

func (c *client) ListProposals(ctx context.Context, startAfter uint64, limit uint32, options ...rpc.Option) ([]*query.ProposalView, error) {
	res := &ListProposalsReply{}
	err := c.requester.SendRequest(ctx, "foundation.listProposals", &ListProposalsArgs{
		StartAfter: json.Uint64(startAfter),
		Limit:      json.Uint32(limit),
	}, res, options...)
	return res.Proposals, err
}

func (c *client) ReverseProposals(ctx context.Context, startBefore uint64, limit uint32, options ...rpc.Option) ([]*query.ProposalView, error) {
	res := &ListProposalsReply{}
	err := c.requester.SendRequest(ctx, "foundation.reverseProposals", &ReverseProposalsArgs{
		StartBefore: json.Uint64(startBefore),
		Limit:       json.Uint32(limit),
	}, res, options...)
	return res.Proposals, err
}

func (c *client) GetVote(ctx context.Context, proposalID uint64, voter ids.ShortID, options ...rpc.Option) (*query.VoteView, error) {
	res := &GetVoteReply{}
	err := c.requester.SendRequest(ctx, "foundation.getVote", &GetVoteArgs{
		ProposalID: json.Uint64(proposalID),
		Voter:      voter,
	}, res, options...)
	return res.Vote, err
}

func (c *client) ListVotes(ctx context.Context, proposalID uint64, startAfter ids.ShortID, limit uint32, options ...rpc.Option) ([]*query.VoteView, error) {
	res := &ListVotesReply{}
	err := c.requester.SendRequest(ctx, "foundation.listVotes", &ListVotesArgs{
		ProposalID: json.Uint64(proposalID),
		StartAfter: startAfter,
		Limit:      json.Uint32(limit),
	}, res, options...)
	return res.Votes, err
}

func (c *client) GetVoter(ctx context.Context, address ids.ShortID, options ...rpc.Option) (*query.VoterView, error) {
	res := &GetVoterReply{}
	err := c.requester.SendRequest(ctx, "foundation.getVoter", &GetVoterArgs{
		Address: address,
	}, res, options...)
	return res.Voter, err
}

func (c *client) ListVoters(ctx context.Context, startAfter ids.ShortID, limit uint32, options ...rpc.Option) ([]*query.VoterView, error) {
	res := &ListVotersReply{}
	err := c.requester.SendRequest(ctx, "foundation.listVoters", &ListVotersArgs{
		StartAfter: startAfter,
		Limit:      json.Uint32(limit),
	}, res, options...)
	return res.Voters, err
}

func (c *client) GetThreshold(ctx context.Context, options ...rpc.Option) (*query.ThresholdView, error) {
	res := &query.ThresholdView{}
	err := c.requester.SendRequest(ctx, "foundation.getThreshold", struct{}{}, res, options...)
	return res, err
}

func (c *client) GetBalance(ctx context.Context, address ids.ShortID, options ...rpc.Option) (uint64, error) {
	res := &GetBalanceReply{}
	err := c.requester.SendRequest(ctx, "foundation.getBalance", &api.JSONAddress{
		Address: address.String(),
	}, res, options...)
	return uint64(res.Balance), err
}

func (c *client) GetHeight(ctx context.Context, options ...rpc.Option) (*GetHeightReply, error) {
	res := &GetHeightReply{}
	err := c.requester.SendRequest(ctx, "foundation.getHeight", struct{}{}, res, options...)
	return res, err
}
