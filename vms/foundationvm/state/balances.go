// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

// GetBalance returns the token balance of [address]. Unknown addresses hold
// nothing.
func (s *state) GetBalance(address ids.ShortID) (uint64, error) {
	if balance, modified := s.modifiedBalances[address]; modified {
		return balance, nil
	}
	balance, err := database.GetUInt64(s.balanceDB, address[:])
	if err == database.ErrNotFound {
		return 0, nil
	}
	return balance, err
}

func (s *state) SetBalance(address ids.ShortID, balance uint64) {
	s.modifiedBalances[address] = balance
}

func (s *state) writeBalances() error {
	for address, balance := range s.modifiedBalances {
		address := address
		delete(s.modifiedBalances, address)

		var err error
		if balance == 0 {
			err = s.balanceDB.Delete(address[:])
		} else {
			err = database.PutUInt64(s.balanceDB, address[:], balance)
		}
		if err != nil {
			return fmt.Errorf("failed to write balance of %s: %w", address, err)
		}
	}
	return nil
}
