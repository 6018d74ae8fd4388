// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/math"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

var errZeroWeightVoter = errors.New("voter weight is zero")

// VoterEntry is a voter together with its address.
type VoterEntry struct {
	Address ids.ShortID
	Voter   *governance.Voter
}

// replaceWeight returns [total] with [oldWeight] replaced by [newWeight].
func replaceWeight(total, oldWeight, newWeight uint64) (uint64, error) {
	remaining, err := math.Sub(total, oldWeight)
	if err != nil {
		return 0, fmt.Errorf("total weight %d below voter weight %d: %w", total, oldWeight, err)
	}
	return math.Add64(remaining, newWeight)
}

func voterWeight(chain Chain, address ids.ShortID) (uint64, error) {
	voter, err := chain.GetVoter(address)
	switch {
	case err == database.ErrNotFound:
		return 0, nil
	case err != nil:
		return 0, err
	}
	return voter.Weight, nil
}

func (s *state) GetVoter(address ids.ShortID) (*governance.Voter, error) {
	if voter, modified := s.modifiedVoters[address]; modified {
		if voter == nil {
			return nil, database.ErrNotFound
		}
		voterCopy := *voter
		return &voterCopy, nil
	}

	if voter, cached := s.voterCache.Get(address); cached {
		if voter == nil {
			return nil, database.ErrNotFound
		}
		voterCopy := *voter
		return &voterCopy, nil
	}

	voterBytes, err := s.voterDB.Get(address[:])
	if err == database.ErrNotFound {
		s.voterCache.Put(address, nil)
		return nil, database.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	voter := &governance.Voter{}
	if _, err := governance.Codec.Unmarshal(voterBytes, voter); err != nil {
		return nil, fmt.Errorf("failed to parse voter %s: %w", address, err)
	}
	s.voterCache.Put(address, voter)

	voterCopy := *voter
	return &voterCopy, nil
}

func (s *state) UpsertVoter(address ids.ShortID, voter *governance.Voter) error {
	if voter == nil || voter.Weight == 0 {
		return errZeroWeightVoter
	}
	oldWeight, err := voterWeight(s, address)
	if err != nil {
		return err
	}
	totalWeight, err := replaceWeight(s.totalWeight, oldWeight, voter.Weight)
	if err != nil {
		return err
	}
	voterCopy := *voter
	s.modifiedVoters[address] = &voterCopy
	s.totalWeight = totalWeight
	return nil
}

func (s *state) RemoveVoter(address ids.ShortID) error {
	voter, err := s.GetVoter(address)
	if err != nil {
		return err
	}
	totalWeight, err := replaceWeight(s.totalWeight, voter.Weight, 0)
	if err != nil {
		return err
	}
	s.modifiedVoters[address] = nil
	s.totalWeight = totalWeight
	return nil
}

// ListVoters returns up to [limit] committed voters with an address above
// [startAfter], in ascending address order.
func (s *state) ListVoters(startAfter ids.ShortID, limit int) ([]VoterEntry, error) {
	it := s.voterDB.NewIteratorWithStart(startAfter[:])
	defer it.Release()

	entries := []VoterEntry{}
	for len(entries) < limit && it.Next() {
		address, err := ids.ToShortID(it.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to parse voter address: %w", err)
		}
		if address == startAfter {
			continue
		}
		voter := &governance.Voter{}
		if _, err := governance.Codec.Unmarshal(it.Value(), voter); err != nil {
			return nil, fmt.Errorf("failed to parse voter %s: %w", address, err)
		}
		entries = append(entries, VoterEntry{Address: address, Voter: voter})
	}
	return entries, it.Error()
}

func (s *state) writeVoters() error {
	for address, voter := range s.modifiedVoters {
		address := address
		delete(s.modifiedVoters, address)

		if voter == nil {
			s.voterCache.Put(address, nil)
			if err := s.voterDB.Delete(address[:]); err != nil {
				return fmt.Errorf("failed to delete voter %s: %w", address, err)
			}
			continue
		}

		voterBytes, err := governance.Codec.Marshal(governance.CodecVersion, voter)
		if err != nil {
			return fmt.Errorf("failed to serialize voter %s: %w", address, err)
		}
		s.voterCache.Put(address, voter)
		if err := s.voterDB.Put(address[:], voterBytes); err != nil {
			return fmt.Errorf("failed to write voter %s: %w", address, err)
		}
	}
	return nil
}
