// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/math"
	"go.uber.org/zap"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/state"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/token"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs"
)

var (
	_ txs.Visitor = (*StandardTxExecutor)(nil)

	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidExpiration  = errors.New("invalid expiration")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrExpired            = errors.New("proposal voting period has expired")
	ErrNotOpen            = errors.New("proposal is not open")
	ErrAlreadyVoted       = errors.New("already voted on this proposal")
	ErrWrongExecuteStatus = errors.New("proposal must have passed and not yet been executed")
	ErrWrongCloseStatus   = errors.New("cannot close completed or passed proposals")
	ErrNotExpired         = errors.New("proposal voting period has not expired")
)

// StandardTxExecutor executes one governance call against [State] as of
// [Block]. A failed call leaves [State] in an undefined state, it must be
// dropped.
type StandardTxExecutor struct {
	// inputs, to be filled before visitor methods are called
	*Backend
	State  state.Diff // state is expected to be modified
	Ledger token.Ledger
	Block  governance.BlockInfo
	Tx     *txs.Tx

	// outputs of visitor execution
	ProposalID     uint64
	ExecutedAction governance.Action
	Events         []*Event
}

func (e *StandardTxExecutor) ProposeTx(tx *txs.ProposeTx) error {
	if err := e.Tx.SyntacticVerify(); err != nil {
		return err
	}

	proposer, err := e.getVoter(e.Tx.Sender)
	if err != nil {
		return err
	}
	if err := governance.VerifyContent(tx.Title, tx.Description, tx.Action); err != nil {
		return err
	}

	config, err := e.State.GetConfig()
	if err != nil {
		return fmt.Errorf("couldn't get config: %w", err)
	}
	expires, err := e.expiration(config, tx.Expires)
	if err != nil {
		return err
	}

	proposalID := e.State.GetNextProposalID()
	nextProposalID, err := math.Add64(proposalID, 1)
	if err != nil {
		return fmt.Errorf("proposal id: %w", err)
	}

	proposal := &governance.Proposal{
		ID:          proposalID,
		Title:       tx.Title,
		Description: tx.Description,
		Proposer:    e.Tx.Sender,
		StartHeight: e.Block.Height,
		StartTime:   e.Block.Unix(),
		Expires:     expires,
		Threshold:   config.Threshold,
		TotalWeight: e.State.GetTotalWeight(),
		Votes:       governance.YesVotes(proposer.Weight),
		Status:      governance.Open,
		Action:      tx.Action,
	}
	if err := proposal.Verify(); err != nil {
		return err
	}
	status := proposal.UpdateStatus(e.Block)

	e.State.PutProposal(proposal)
	e.State.PutBallot(proposalID, e.Tx.Sender, &governance.Ballot{
		Option: governance.Yes,
		Weight: proposer.Weight,
	})
	e.State.SetNextProposalID(nextProposalID)

	e.ProposalID = proposalID
	event := newEvent(ProposeEvent).
		addAddress("sender", e.Tx.Sender).
		addUint("proposal_id", proposalID).
		add("status", status.String()).
		add("type", tx.Action.Kind())
	if err := tx.Action.Visit(&actionAttributes{event: event}); err != nil {
		return err
	}
	e.emit(event)
	return nil
}

// expiration returns [requested] clamped to the max voting period, or the max
// voting period if nothing was requested.
func (e *StandardTxExecutor) expiration(config *state.Config, requested *governance.Expiration) (governance.Expiration, error) {
	maxExpires, err := config.MaxVotingPeriod.After(e.Block)
	if err != nil {
		return governance.Expiration{}, fmt.Errorf("%w: %w", ErrInvalidExpiration, err)
	}
	expires := maxExpires
	if requested != nil {
		cmp, ok := requested.Compare(maxExpires)
		if !ok {
			return governance.Expiration{}, fmt.Errorf("%w: %s can't be compared to max %s", ErrInvalidExpiration, requested, maxExpires)
		}
		if cmp < 0 {
			expires = *requested
		}
	}
	if expires.IsExpired(e.Block) {
		return governance.Expiration{}, fmt.Errorf("%w: %s already expired", ErrInvalidExpiration, expires)
	}
	return expires, nil
}

func (e *StandardTxExecutor) VoteTx(tx *txs.VoteTx) error {
	if err := e.Tx.SyntacticVerify(); err != nil {
		return err
	}

	voter, err := e.getVoter(e.Tx.Sender)
	if err != nil {
		return err
	}
	if !voter.CanVoteOn(tx.ProposalID) {
		return fmt.Errorf("%w: %s became a voter after proposal %d", ErrUnauthorized, e.Tx.Sender, tx.ProposalID)
	}

	proposal, err := e.getProposal(tx.ProposalID)
	if err != nil {
		return err
	}
	if proposal.IsExpired(e.Block) {
		return fmt.Errorf("%w: %s", ErrExpired, proposal.Expires)
	}
	if status := proposal.CurrentStatus(e.Block); status != governance.Open {
		return fmt.Errorf("%w: %s", ErrNotOpen, status)
	}
	switch _, err := e.State.GetBallot(tx.ProposalID, e.Tx.Sender); err {
	case nil:
		return ErrAlreadyVoted
	case database.ErrNotFound:
	default:
		return err
	}

	if err := proposal.Votes.Add(tx.Vote, voter.Weight); err != nil {
		return err
	}
	status := proposal.UpdateStatus(e.Block)

	e.State.PutBallot(tx.ProposalID, e.Tx.Sender, &governance.Ballot{
		Option: tx.Vote,
		Weight: voter.Weight,
	})
	e.State.PutProposal(proposal)

	e.ProposalID = tx.ProposalID
	e.emit(newEvent(VoteEvent).
		addAddress("sender", e.Tx.Sender).
		addUint("proposal_id", tx.ProposalID).
		add("vote", tx.Vote.String()).
		addUint("weight", voter.Weight).
		add("status", status.String()))
	return nil
}

func (e *StandardTxExecutor) ExecuteTx(tx *txs.ExecuteTx) error {
	if err := e.Tx.SyntacticVerify(); err != nil {
		return err
	}

	proposal, err := e.getProposal(tx.ProposalID)
	if err != nil {
		return err
	}
	// a passed proposal stays executable after it expired
	if status := proposal.UpdateStatus(e.Block); status != governance.Passed {
		return fmt.Errorf("%w: %s", ErrWrongExecuteStatus, status)
	}

	proposal.Status = governance.Executed
	e.State.PutProposal(proposal)

	e.ProposalID = tx.ProposalID
	e.emit(newEvent(ExecuteEvent).
		addAddress("sender", e.Tx.Sender).
		addUint("proposal_id", tx.ProposalID))

	actionExecutor := &actionExecutor{
		state:  e.State,
		ledger: e.Ledger,
		event:  newEvent(proposal.Action.Kind()),
	}
	if err := proposal.Action.Visit(actionExecutor); err != nil {
		return fmt.Errorf("failed to execute %s of proposal %d: %w", proposal.Action.Kind(), tx.ProposalID, err)
	}
	e.ExecutedAction = proposal.Action
	e.emit(actionExecutor.event)
	return nil
}

func (e *StandardTxExecutor) CloseTx(tx *txs.CloseTx) error {
	if err := e.Tx.SyntacticVerify(); err != nil {
		return err
	}

	proposal, err := e.getProposal(tx.ProposalID)
	if err != nil {
		return err
	}
	switch proposal.Status {
	case governance.Executed, governance.Rejected, governance.Passed:
		return fmt.Errorf("%w: %s", ErrWrongCloseStatus, proposal.Status)
	}
	// proposals that passed before they expired can't be closed
	if status := proposal.CurrentStatus(e.Block); status == governance.Passed {
		return fmt.Errorf("%w: %s", ErrWrongCloseStatus, status)
	}
	if !proposal.IsExpired(e.Block) {
		return fmt.Errorf("%w: %s", ErrNotExpired, proposal.Expires)
	}

	proposal.Status = governance.Rejected
	e.State.PutProposal(proposal)

	e.ProposalID = tx.ProposalID
	e.emit(newEvent(CloseEvent).
		addAddress("sender", e.Tx.Sender).
		addUint("proposal_id", tx.ProposalID))
	return nil
}

func (e *StandardTxExecutor) getVoter(address ids.ShortID) (*governance.Voter, error) {
	voter, err := e.State.GetVoter(address)
	switch {
	case err == database.ErrNotFound:
		return nil, fmt.Errorf("%w: %s is not a voter", ErrUnauthorized, address)
	case err != nil:
		return nil, fmt.Errorf("couldn't get voter %s: %w", address, err)
	}
	return voter, nil
}

func (e *StandardTxExecutor) getProposal(proposalID uint64) (*governance.Proposal, error) {
	proposal, err := e.State.GetProposal(proposalID)
	switch {
	case err == database.ErrNotFound:
		return nil, fmt.Errorf("%w: %d", ErrProposalNotFound, proposalID)
	case err != nil:
		return nil, fmt.Errorf("couldn't get proposal %d: %w", proposalID, err)
	}
	return proposal, nil
}

func (e *StandardTxExecutor) emit(event *Event) {
	e.Events = append(e.Events, event)
	if e.Backend != nil && e.Log != nil {
		e.Log.Debug("governance event", event.ZapFields()...)
	}
}

// Execute runs [tx] against [diff] as of [block].
func Execute(backend *Backend, diff state.Diff, ledger token.Ledger, block governance.BlockInfo, tx *txs.Tx) (*StandardTxExecutor, error) {
	if err := tx.SyntacticVerify(); err != nil {
		return nil, err
	}
	executor := &StandardTxExecutor{
		Backend: backend,
		State:   diff,
		Ledger:  ledger,
		Block:   block,
		Tx:      tx,
	}
	if err := tx.Unsigned.Visit(executor); err != nil {
		if backend != nil && backend.Log != nil {
			backend.Log.Debug("governance call failed",
				zap.Stringer("sender", tx.Sender),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return executor, nil
}
