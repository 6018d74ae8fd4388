// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

const (
	IsInitializedKey byte = iota
)

var (
	isInitializedKey  = []byte{IsInitializedKey}
	configKey         = []byte("config")
	totalWeightKey    = []byte("total weight")
	nextProposalIDKey = []byte("next proposal id")
	heightKey         = []byte("height")
	timestampKey      = []byte("timestamp")
)

func (s *state) IsInitialized() (bool, error) {
	return s.singletonDB.Has(isInitializedKey)
}

func (s *state) SetInitialized() error {
	return s.singletonDB.Put(isInitializedKey, nil)
}

func (s *state) GetConfig() (*Config, error) {
	if s.config == nil {
		return nil, errNotInitialized
	}
	return s.config, nil
}

func (s *state) SetConfig(config *Config) {
	s.config = config
	s.configModified = true
}

func (s *state) GetLastBlock() governance.BlockInfo {
	return s.lastBlock
}

func (s *state) SetLastBlock(block governance.BlockInfo) {
	s.lastBlock = block
}

func (s *state) GetTotalWeight() uint64 {
	return s.totalWeight
}

func (s *state) GetNextProposalID() uint64 {
	return s.nextProposalID
}

func (s *state) SetNextProposalID(id uint64) {
	s.nextProposalID = id
}

func (s *state) writeSingletons() error {
	if s.configModified {
		configBytes, err := governance.Codec.Marshal(governance.CodecVersion, s.config)
		if err != nil {
			return fmt.Errorf("failed to serialize config: %w", err)
		}
		if err := s.singletonDB.Put(configKey, configBytes); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		s.configModified = false
	}
	if err := database.PutUInt64(s.singletonDB, totalWeightKey, s.totalWeight); err != nil {
		return fmt.Errorf("failed to write total weight: %w", err)
	}
	if err := database.PutUInt64(s.singletonDB, nextProposalIDKey, s.nextProposalID); err != nil {
		return fmt.Errorf("failed to write next proposal id: %w", err)
	}
	if err := database.PutUInt64(s.singletonDB, heightKey, s.lastBlock.Height); err != nil {
		return fmt.Errorf("failed to write height: %w", err)
	}
	if err := database.PutTimestamp(s.singletonDB, timestampKey, s.lastBlock.Time); err != nil {
		return fmt.Errorf("failed to write timestamp: %w", err)
	}
	return nil
}

// loadSingletons resets the in-memory singletons to the stored ones. An
// uninitialized database resets them to zero values.
func (s *state) loadSingletons() error {
	initialized, err := s.IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		s.config = nil
		s.totalWeight = 0
		s.nextProposalID = 0
		s.lastBlock = governance.BlockInfo{}
		return nil
	}

	configBytes, err := s.singletonDB.Get(configKey)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	config := &Config{}
	if _, err := governance.Codec.Unmarshal(configBytes, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	totalWeight, err := database.GetUInt64(s.singletonDB, totalWeightKey)
	if err != nil {
		return fmt.Errorf("failed to read total weight: %w", err)
	}
	nextProposalID, err := database.GetUInt64(s.singletonDB, nextProposalIDKey)
	if err != nil {
		return fmt.Errorf("failed to read next proposal id: %w", err)
	}
	height, err := database.GetUInt64(s.singletonDB, heightKey)
	if err != nil {
		return fmt.Errorf("failed to read height: %w", err)
	}
	timestamp, err := database.GetTimestamp(s.singletonDB, timestampKey)
	if err != nil {
		return fmt.Errorf("failed to read timestamp: %w", err)
	}

	s.config = config
	s.totalWeight = totalWeight
	s.nextProposalID = nextProposalID
	s.lastBlock = governance.BlockInfo{Height: height, Time: timestamp}
	return nil
}
