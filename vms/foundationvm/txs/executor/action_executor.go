// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/state"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/token"
)

var (
	_ governance.ActionVisitor = (*actionExecutor)(nil)
	_ governance.ActionVisitor = (*actionAttributes)(nil)

	ErrVoterNotExist       = errors.New("voter doesn't exist")
	ErrVoterWeightMismatch = errors.New("voter weight doesn't match")
	ErrLastVoter           = errors.New("can't remove the last voter")
)

// actionExecutor applies the action of an executed proposal.
type actionExecutor struct {
	state  state.Chain
	ledger token.Ledger
	event  *Event
}

func (e *actionExecutor) TransferAction(action *governance.TransferAction) error {
	if err := e.ledger.Transfer(action.Recipient, action.Amount); err != nil {
		return err
	}
	custody := e.ledger.Custody()
	custodyBalance, err := e.ledger.Balance(custody)
	if err != nil {
		return fmt.Errorf("couldn't get custody balance: %w", err)
	}
	e.event.
		addAddress("recipient", action.Recipient).
		addUint("amount", action.Amount).
		addAddress("custody", custody).
		addUint("custody_balance", custodyBalance)
	return nil
}

// AddVoterAction overwrites the voter. New voters may vote starting with the
// next proposal, existing voters keep their history.
func (e *actionExecutor) AddVoterAction(action *governance.AddVoterAction) error {
	voter := &governance.Voter{
		Weight: action.Weight,
		Since:  e.state.GetNextProposalID(),
		Info:   action.Info,
	}
	existing, err := e.state.GetVoter(action.Address)
	switch {
	case err == nil:
		voter.Since = existing.Since
	case err != database.ErrNotFound:
		return err
	}
	if err := e.state.UpsertVoter(action.Address, voter); err != nil {
		return err
	}
	e.event.
		addAddress("voter", action.Address).
		addUint("weight", action.Weight).
		addUint("total_weight", e.state.GetTotalWeight())
	return nil
}

func (e *actionExecutor) RemoveVoterAction(action *governance.RemoveVoterAction) error {
	voter, err := e.state.GetVoter(action.Address)
	switch {
	case err == database.ErrNotFound:
		return fmt.Errorf("%w: %s", ErrVoterNotExist, action.Address)
	case err != nil:
		return err
	}
	if action.Weight != 0 && action.Weight != voter.Weight {
		return fmt.Errorf("%w: expected %d, voter has %d", ErrVoterWeightMismatch, action.Weight, voter.Weight)
	}
	// every voter weighs at least 1, so only the last voter holds the total
	if voter.Weight == e.state.GetTotalWeight() {
		return fmt.Errorf("%w: %s", ErrLastVoter, action.Address)
	}
	if err := e.state.RemoveVoter(action.Address); err != nil {
		return err
	}
	e.event.
		addAddress("voter", action.Address).
		addUint("weight", voter.Weight).
		addUint("total_weight", e.state.GetTotalWeight())
	return nil
}

// actionAttributes describes an action on an event.
type actionAttributes struct {
	event *Event
}

func (a *actionAttributes) TransferAction(action *governance.TransferAction) error {
	a.event.
		addAddress("send_to", action.Recipient).
		addUint("send_amount", action.Amount)
	return nil
}

func (a *actionAttributes) AddVoterAction(action *governance.AddVoterAction) error {
	a.event.
		addAddress("voter", action.Address).
		addUint("vote_weight", action.Weight)
	return nil
}

func (a *actionAttributes) RemoveVoterAction(action *governance.RemoveVoterAction) error {
	a.event.addAddress("voter", action.Address)
	if action.Weight != 0 {
		a.event.addUint("vote_weight", action.Weight)
	}
	return nil
}
