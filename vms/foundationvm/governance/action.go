// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	avajson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/vms/components/verify"
)

// MaxInfoLen is the max length in bytes of AddVoter metadata.
const MaxInfoLen = 256

var (
	_ Action = (*TransferAction)(nil)
	_ Action = (*AddVoterAction)(nil)
	_ Action = (*RemoveVoterAction)(nil)

	errEmptyAddress   = errors.New("address is empty")
	errZeroAmount     = errors.New("transfer amount is zero")
	errZeroVoteWeight = errors.New("voter weight is zero")
	errInfoTooLong    = errors.New("voter info is too long")
	errNilAction      = errors.New("action is nil")
)

type ActionVisitor interface {
	TransferAction(*TransferAction) error
	AddVoterAction(*AddVoterAction) error
	RemoveVoterAction(*RemoveVoterAction) error
}

// Action is the effect a proposal applies once it passed. The set of actions
// is closed.
type Action interface {
	verify.Verifiable

	Kind() string
	Visit(ActionVisitor) error
}

// TransferAction moves [Amount] tokens from the treasury to [Recipient].
type TransferAction struct {
	Recipient ids.ShortID `serialize:"true" json:"recipient"`
	Amount    uint64      `serialize:"true" json:"amount"`
}

func (*TransferAction) Kind() string { return "transfer" }

func (a *TransferAction) Verify() error {
	switch {
	case a == nil:
		return errNilAction
	case a.Recipient == ids.ShortEmpty:
		return fmt.Errorf("recipient: %w", errEmptyAddress)
	case a.Amount == 0:
		return errZeroAmount
	}
	return nil
}

func (a *TransferAction) Visit(visitor ActionVisitor) error {
	return visitor.TransferAction(a)
}

// AddVoterAction sets the weight of [Address], adding it if it isn't a voter.
type AddVoterAction struct {
	Address ids.ShortID `serialize:"true" json:"address"`
	Weight  uint64      `serialize:"true" json:"weight"`
	Info    string      `serialize:"true" json:"info,omitempty"`
}

func (*AddVoterAction) Kind() string { return "add_voter" }

func (a *AddVoterAction) Verify() error {
	switch {
	case a == nil:
		return errNilAction
	case a.Address == ids.ShortEmpty:
		return fmt.Errorf("voter: %w", errEmptyAddress)
	case a.Weight == 0:
		return errZeroVoteWeight
	case len(a.Info) > MaxInfoLen:
		return fmt.Errorf("%w: %d > %d", errInfoTooLong, len(a.Info), MaxInfoLen)
	}
	return nil
}

func (a *AddVoterAction) Visit(visitor ActionVisitor) error {
	return visitor.AddVoterAction(a)
}

// RemoveVoterAction removes [Address] from the voters. A non-zero [Weight]
// must match the voter's weight when the action executes.
type RemoveVoterAction struct {
	Address ids.ShortID `serialize:"true" json:"address"`
	Weight  uint64      `serialize:"true" json:"weight,omitempty"`
}

func (*RemoveVoterAction) Kind() string { return "remove_voter" }

func (a *RemoveVoterAction) Verify() error {
	switch {
	case a == nil:
		return errNilAction
	case a.Address == ids.ShortEmpty:
		return fmt.Errorf("voter: %w", errEmptyAddress)
	}
	return nil
}

func (a *RemoveVoterAction) Visit(visitor ActionVisitor) error {
	return visitor.RemoveVoterAction(a)
}

type transferJSON struct {
	Recipient ids.ShortID    `json:"recipient"`
	Amount    avajson.Uint64 `json:"amount"`
}

type addVoterJSON struct {
	Address ids.ShortID    `json:"address"`
	Weight  avajson.Uint64 `json:"weight"`
	Info    string         `json:"info,omitempty"`
}

type removeVoterJSON struct {
	Address ids.ShortID     `json:"address"`
	Weight  *avajson.Uint64 `json:"weight,omitempty"`
}

type actionJSON struct {
	Transfer    *transferJSON    `json:"transfer,omitempty"`
	AddVoter    *addVoterJSON    `json:"addVoter,omitempty"`
	RemoveVoter *removeVoterJSON `json:"removeVoter,omitempty"`
}

// ActionJSON carries an Action over JSON as a single-key object naming its
// variant, e.g. {"transfer":{"recipient":"...","amount":"10"}}.
type ActionJSON struct {
	Action Action
}

func (a ActionJSON) MarshalJSON() ([]byte, error) {
	var v actionJSON
	switch action := a.Action.(type) {
	case *TransferAction:
		v.Transfer = &transferJSON{
			Recipient: action.Recipient,
			Amount:    avajson.Uint64(action.Amount),
		}
	case *AddVoterAction:
		v.AddVoter = &addVoterJSON{
			Address: action.Address,
			Weight:  avajson.Uint64(action.Weight),
			Info:    action.Info,
		}
	case *RemoveVoterAction:
		v.RemoveVoter = &removeVoterJSON{Address: action.Address}
		if action.Weight != 0 {
			weight := avajson.Uint64(action.Weight)
			v.RemoveVoter.Weight = &weight
		}
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown action type %T", action)
	}
	return json.Marshal(v)
}

func (a *ActionJSON) UnmarshalJSON(b []byte) error {
	var v actionJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	set := 0
	if v.Transfer != nil {
		set++
		a.Action = &TransferAction{
			Recipient: v.Transfer.Recipient,
			Amount:    uint64(v.Transfer.Amount),
		}
	}
	if v.AddVoter != nil {
		set++
		a.Action = &AddVoterAction{
			Address: v.AddVoter.Address,
			Weight:  uint64(v.AddVoter.Weight),
			Info:    v.AddVoter.Info,
		}
	}
	if v.RemoveVoter != nil {
		set++
		action := &RemoveVoterAction{Address: v.RemoveVoter.Address}
		if v.RemoveVoter.Weight != nil {
			action.Weight = uint64(*v.RemoveVoter.Weight)
		}
		a.Action = action
	}
	if set != 1 {
		a.Action = nil
		return fmt.Errorf("action: %w", errAmbiguousJSON)
	}
	return nil
}
