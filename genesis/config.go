// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/math"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/state"
)

var (
	errNoCustody           = errors.New("genesis has no custody address")
	errNoVoters            = errors.New("genesis has no voters")
	errZeroVoterWeight     = errors.New("voter weight must be greater than 0")
	errDuplicateVoter      = errors.New("duplicated voter")
	errVoterInfoTooLong    = errors.New("voter info too long")
	errZeroAllocation      = errors.New("allocation amount must be greater than 0")
	errDuplicateAllocation = errors.New("duplicated allocation")
)

type Voter struct {
	Address ids.ShortID
	Weight  uint64
	Info    string
}

type Allocation struct {
	Address ids.ShortID
	Amount  uint64
}

// Config is the initial state of a foundation chain.
type Config struct {
	Threshold       governance.Threshold
	MaxVotingPeriod governance.Duration
	Custody         ids.ShortID
	// Unix time of the genesis block
	StartTime   uint64
	Voters      []Voter
	Allocations []Allocation
}

// StateConfig returns the governance configuration stored at genesis.
func (c *Config) StateConfig() *state.Config {
	return &state.Config{
		Threshold:       c.Threshold,
		MaxVotingPeriod: c.MaxVotingPeriod,
		Custody:         c.Custody,
	}
}

// TotalWeight returns the sum of all voter weights.
func (c *Config) TotalWeight() (uint64, error) {
	total := uint64(0)
	for _, voter := range c.Voters {
		var err error
		total, err = math.Add64(total, voter.Weight)
		if err != nil {
			return 0, fmt.Errorf("total weight: %w", err)
		}
	}
	return total, nil
}

func (c *Config) Verify() error {
	switch {
	case c.Custody == ids.ShortEmpty:
		return errNoCustody
	case len(c.Voters) == 0:
		return errNoVoters
	}
	if err := c.StateConfig().Verify(); err != nil {
		return err
	}

	voters := slices.Clone(c.Voters)
	slices.SortFunc(voters, func(a, b Voter) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	for i, voter := range voters {
		if voter.Weight == 0 {
			return fmt.Errorf("%w: %s", errZeroVoterWeight, voter.Address)
		}
		if i > 0 && voters[i-1].Address == voter.Address {
			return fmt.Errorf("%w: %s", errDuplicateVoter, voter.Address)
		}
		if len(voter.Info) > governance.MaxInfoLen {
			return fmt.Errorf("%w: %s has %d bytes, max %d", errVoterInfoTooLong, voter.Address, len(voter.Info), governance.MaxInfoLen)
		}
	}
	totalWeight, err := c.TotalWeight()
	if err != nil {
		return err
	}
	if err := c.Threshold.VerifyReachable(totalWeight); err != nil {
		return err
	}

	allocations := slices.Clone(c.Allocations)
	slices.SortFunc(allocations, func(a, b Allocation) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	for i, allocation := range allocations {
		if allocation.Amount == 0 {
			return fmt.Errorf("%w: %s", errZeroAllocation, allocation.Address)
		}
		if i > 0 && allocations[i-1].Address == allocation.Address {
			return fmt.Errorf("%w: %s", errDuplicateAllocation, allocation.Address)
		}
	}
	return nil
}

// FromJSON parses and verifies a genesis config.
func FromJSON(b []byte) (*Config, error) {
	unparsed := UnparsedConfig{}
	if err := json.Unmarshal(b, &unparsed); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal genesis: %w", err)
	}
	config, err := unparsed.Parse()
	if err != nil {
		return nil, err
	}
	if err := config.Verify(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return &config, nil
}

// FromFile reads the genesis config at [path].
func FromFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read genesis file: %w", err)
	}
	return FromJSON(b)
}

// JSON returns the indented on-disk form of [c].
func (c *Config) JSON() ([]byte, error) {
	unparsed := UnparsedConfig{}
	unparsed.Unparse(*c)
	return json.MarshalIndent(unparsed, "", "  ")
}
