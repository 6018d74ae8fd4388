// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cast"

	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

var (
	errInvalidVoter      = errors.New("voter must be formatted as address:weight[:info]")
	errInvalidAllocation = errors.New("allocation must be formatted as address:amount")
	errInvalidThreshold  = errors.New("threshold must be formatted as count:<weight> or percentage:<decimal>")
	errInvalidPeriod     = errors.New("voting period must be a number of blocks or a duration")
)

func parseAddress(s string) (ids.ShortID, error) {
	address, err := ids.ShortFromString(s)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("couldn't parse address %q: %w", s, err)
	}
	return address, nil
}

// parseVoter parses address:weight[:info].
func parseVoter(s string) (genesis.Voter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return genesis.Voter{}, fmt.Errorf("%w: %q", errInvalidVoter, s)
	}
	address, err := parseAddress(parts[0])
	if err != nil {
		return genesis.Voter{}, err
	}
	weight, err := cast.ToUint64E(parts[1])
	if err != nil {
		return genesis.Voter{}, fmt.Errorf("%w: %w", errInvalidVoter, err)
	}
	voter := genesis.Voter{
		Address: address,
		Weight:  weight,
	}
	if len(parts) == 3 {
		voter.Info = parts[2]
	}
	return voter, nil
}

// parseAllocation parses address:amount.
func parseAllocation(s string) (genesis.Allocation, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return genesis.Allocation{}, fmt.Errorf("%w: %q", errInvalidAllocation, s)
	}
	address, err := parseAddress(parts[0])
	if err != nil {
		return genesis.Allocation{}, err
	}
	amount, err := cast.ToUint64E(parts[1])
	if err != nil {
		return genesis.Allocation{}, fmt.Errorf("%w: %w", errInvalidAllocation, err)
	}
	return genesis.Allocation{Address: address, Amount: amount}, nil
}

// parseThreshold parses count:<weight> or percentage:<decimal>.
func parseThreshold(s string) (governance.Threshold, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok {
		return governance.Threshold{}, fmt.Errorf("%w: %q", errInvalidThreshold, s)
	}
	switch kind {
	case "count":
		weight, err := cast.ToUint64E(value)
		if err != nil {
			return governance.Threshold{}, fmt.Errorf("%w: %w", errInvalidThreshold, err)
		}
		return governance.CountThreshold(weight), nil
	case "percentage":
		percentage, err := governance.ParsePercentage(value)
		if err != nil {
			return governance.Threshold{}, fmt.Errorf("%w: %w", errInvalidThreshold, err)
		}
		return governance.PercentageThreshold(percentage), nil
	default:
		return governance.Threshold{}, fmt.Errorf("%w: %q", errInvalidThreshold, s)
	}
}

// parseVotingPeriod parses a number of blocks, or a duration like 72h that is
// rounded down to seconds.
func parseVotingPeriod(s string) (governance.Duration, error) {
	if blocks, err := cast.ToUint64E(s); err == nil {
		return governance.Blocks(blocks), nil
	}
	duration, err := time.ParseDuration(s)
	if err != nil || duration < time.Second {
		return governance.Duration{}, fmt.Errorf("%w: %q", errInvalidPeriod, s)
	}
	return governance.Seconds(uint64(duration / time.Second)), nil
}
