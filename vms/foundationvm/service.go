// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package foundationvm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/json"
	"go.uber.org/zap"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/query"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs/executor"
)

var errNoAction = errors.New("no action provided")

// Service is the API service for this VM
type Service struct {
	vm *VM
}

// SenderArgs identify the caller of a state changing call.
type SenderArgs struct {
	Sender ids.ShortID `json:"sender"`
}

// IssueReply is the reply of every state changing call
type IssueReply struct {
	Height     json.Uint64       `json:"height"`
	ProposalID json.Uint64       `json:"proposalID"`
	Events     []*executor.Event `json:"events"`
}

func (r *IssueReply) set(result *Result) {
	r.Height = json.Uint64(result.Height)
	r.ProposalID = json.Uint64(result.ProposalID)
	r.Events = result.Events
}

type ProposeArgs struct {
	SenderArgs
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Action      governance.ActionJSON  `json:"action"`
	Expires     *governance.Expiration `json:"expires,omitempty"`
}

// Propose creates a proposal with an implicit yes vote of the sender
func (s *Service) Propose(_ *http.Request, args *ProposeArgs, reply *IssueReply) error {
	s.logCall("propose")

	if args.Action.Action == nil {
		return errNoAction
	}
	return s.issue(args.Sender, &txs.ProposeTx{
		Title:       args.Title,
		Description: args.Description,
		Action:      args.Action.Action,
		Expires:     args.Expires,
	}, reply)
}

type VoteArgs struct {
	SenderArgs
	ProposalID json.Uint64           `json:"proposalID"`
	Vote       governance.VoteOption `json:"vote"`
}

func (s *Service) Vote(_ *http.Request, args *VoteArgs, reply *IssueReply) error {
	s.logCall("vote")

	return s.issue(args.Sender, &txs.VoteTx{
		ProposalID: uint64(args.ProposalID),
		Vote:       args.Vote,
	}, reply)
}

type ProposalCallArgs struct {
	SenderArgs
	ProposalID json.Uint64 `json:"proposalID"`
}

// Execute runs the action of a passed proposal. Anyone may execute.
func (s *Service) Execute(_ *http.Request, args *ProposalCallArgs, reply *IssueReply) error {
	s.logCall("execute")

	return s.issue(args.Sender, &txs.ExecuteTx{ProposalID: uint64(args.ProposalID)}, reply)
}

// Close rejects an expired proposal that didn't pass
func (s *Service) Close(_ *http.Request, args *ProposalCallArgs, reply *IssueReply) error {
	s.logCall("close")

	return s.issue(args.Sender, &txs.CloseTx{ProposalID: uint64(args.ProposalID)}, reply)
}

func (s *Service) issue(sender ids.ShortID, utx txs.UnsignedTx, reply *IssueReply) error {
	result, err := s.vm.Issue(&txs.Tx{
		Sender:   sender,
		Unsigned: utx,
	})
	if err != nil {
		return err
	}
	reply.set(result)
	return nil
}

type GetProposalArgs struct {
	ProposalID json.Uint64 `json:"proposalID"`
}

type GetProposalReply struct {
	Proposal *query.ProposalView `json:"proposal"`
}

func (s *Service) GetProposal(_ *http.Request, args *GetProposalArgs, reply *GetProposalReply) error {
	s.logCall("getProposal")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Proposal, err = s.vm.querier.GetProposal(uint64(args.ProposalID))
	return err
}

type ListProposalsArgs struct {
	// Exclusive, zero lists from the first proposal
	StartAfter json.Uint64 `json:"startAfter"`
	Limit      json.Uint32 `json:"limit"`
}

type ReverseProposalsArgs struct {
	// Exclusive, zero lists from the newest proposal
	StartBefore json.Uint64 `json:"startBefore"`
	Limit       json.Uint32 `json:"limit"`
}

type ListProposalsReply struct {
	Proposals []*query.ProposalView `json:"proposals"`
}

func (s *Service) ListProposals(_ *http.Request, args *ListProposalsArgs, reply *ListProposalsReply) error {
	s.logCall("listProposals")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Proposals, err = s.vm.querier.ListProposals(uint64(args.StartAfter), int(args.Limit))
	return err
}

func (s *Service) ReverseProposals(_ *http.Request, args *ReverseProposalsArgs, reply *ListProposalsReply) error {
	s.logCall("reverseProposals")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Proposals, err = s.vm.querier.ReverseProposals(uint64(args.StartBefore), int(args.Limit))
	return err
}

type GetVoteArgs struct {
	ProposalID json.Uint64 `json:"proposalID"`
	Voter      ids.ShortID `json:"voter"`
}

type GetVoteReply struct {
	// nil if the voter didn't vote
	Vote *query.VoteView `json:"vote"`
}

func (s *Service) GetVote(_ *http.Request, args *GetVoteArgs, reply *GetVoteReply) error {
	s.logCall("getVote")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Vote, err = s.vm.querier.GetVote(uint64(args.ProposalID), args.Voter)
	return err
}

type ListVotesArgs struct {
	ProposalID json.Uint64 `json:"proposalID"`
	StartAfter ids.ShortID `json:"startAfter"`
	Limit      json.Uint32 `json:"limit"`
}

type ListVotesReply struct {
	Votes []*query.VoteView `json:"votes"`
}

func (s *Service) ListVotes(_ *http.Request, args *ListVotesArgs, reply *ListVotesReply) error {
	s.logCall("listVotes")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Votes, err = s.vm.querier.ListVotes(uint64(args.ProposalID), args.StartAfter, int(args.Limit))
	return err
}

type GetVoterArgs struct {
	Address ids.ShortID `json:"address"`
}

type GetVoterReply struct {
	// nil if the address isn't a voter
	Voter *query.VoterView `json:"voter"`
}

func (s *Service) GetVoter(_ *http.Request, args *GetVoterArgs, reply *GetVoterReply) error {
	s.logCall("getVoter")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Voter, err = s.vm.querier.GetVoter(args.Address)
	return err
}

type ListVotersArgs struct {
	StartAfter ids.ShortID `json:"startAfter"`
	Limit      json.Uint32 `json:"limit"`
}

type ListVotersReply struct {
	Voters []*query.VoterView `json:"voters"`
}

func (s *Service) ListVoters(_ *http.Request, args *ListVotersArgs, reply *ListVotersReply) error {
	s.logCall("listVoters")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	var err error
	reply.Voters, err = s.vm.querier.ListVoters(args.StartAfter, int(args.Limit))
	return err
}

func (s *Service) GetThreshold(_ *http.Request, _ *struct{}, reply *query.ThresholdView) error {
	s.logCall("getThreshold")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	threshold, err := s.vm.querier.GetThreshold()
	if err != nil {
		return err
	}
	*reply = *threshold
	return nil
}

type GetBalanceReply struct {
	Balance json.Uint64 `json:"balance"`
}

func (s *Service) GetBalance(_ *http.Request, args *api.JSONAddress, reply *GetBalanceReply) error {
	s.logCall("getBalance")

	address, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("couldn't parse address %q: %w", args.Address, err)
	}

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	balance, err := s.vm.querier.GetBalance(address)
	if err != nil {
		return fmt.Errorf("couldn't get balance: %w", err)
	}
	reply.Balance = json.Uint64(balance)
	return nil
}

type GetHeightReply struct {
	Height    json.Uint64 `json:"height"`
	Timestamp json.Uint64 `json:"timestamp"`
}

// GetHeight returns the height and time queries are evaluated at
func (s *Service) GetHeight(_ *http.Request, _ *struct{}, reply *GetHeightReply) error {
	s.logCall("getHeight")

	s.vm.lock.Lock()
	defer s.vm.lock.Unlock()

	block := s.vm.querier.Block()
	reply.Height = json.Uint64(block.Height)
	reply.Timestamp = json.Uint64(block.Unix())
	return nil
}

func (s *Service) logCall(method string) {
	s.vm.log.Debug("API called",
		zap.String("service", Name),
		zap.String("method", method),
	)
}
