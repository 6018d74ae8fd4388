// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/math"
)

var (
	_ Ledger = (*ledger)(nil)

	ErrInsufficientFunds = errors.New("insufficient funds")
	errZeroAmount        = errors.New("transfer amount is zero")
)

// Balances is the balance storage a ledger works on.
type Balances interface {
	GetBalance(address ids.ShortID) (uint64, error)
	SetBalance(address ids.ShortID, balance uint64)
}

// Ledger moves tokens out of its custody account.
type Ledger interface {
	Custody() ids.ShortID
	Balance(address ids.ShortID) (uint64, error)
	Transfer(recipient ids.ShortID, amount uint64) error
}

type ledger struct {
	custody  ids.ShortID
	balances Balances
}

// NewLedger returns a ledger transferring from [custody]. Balances are read
// from and written to [balances].
func NewLedger(custody ids.ShortID, balances Balances) Ledger {
	return &ledger{
		custody:  custody,
		balances: balances,
	}
}

func (l *ledger) Custody() ids.ShortID {
	return l.custody
}

func (l *ledger) Balance(address ids.ShortID) (uint64, error) {
	return l.balances.GetBalance(address)
}

func (l *ledger) Transfer(recipient ids.ShortID, amount uint64) error {
	if amount == 0 {
		return errZeroAmount
	}
	custodyBalance, err := l.balances.GetBalance(l.custody)
	if err != nil {
		return err
	}
	newCustodyBalance, err := math.Sub(custodyBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: custody holds %d, transfer needs %d", ErrInsufficientFunds, custodyBalance, amount)
	}
	if recipient == l.custody {
		return nil
	}
	recipientBalance, err := l.balances.GetBalance(recipient)
	if err != nil {
		return err
	}
	newRecipientBalance, err := math.Add64(recipientBalance, amount)
	if err != nil {
		return fmt.Errorf("crediting %s: %w", recipient, err)
	}
	l.balances.SetBalance(l.custody, newCustodyBalance)
	l.balances.SetBalance(recipient, newRecipientBalance)
	return nil
}
