// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	avajson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

// UnparsedVoter is a genesis voter. [Address] is encoded to string the same
// way as ShortID String() method does.
type UnparsedVoter struct {
	Address string         `json:"address"`
	Weight  avajson.Uint64 `json:"weight"`
	Info    string         `json:"info,omitempty"`
}

func (uv UnparsedVoter) Parse() (Voter, error) {
	v := Voter{
		Weight: uint64(uv.Weight),
		Info:   uv.Info,
	}
	var err error
	v.Address, err = ids.ShortFromString(uv.Address)
	if err != nil {
		return v, fmt.Errorf("couldn't parse voter address %q: %w", uv.Address, err)
	}
	return v, nil
}

func (uv *UnparsedVoter) Unparse(v Voter) {
	uv.Address = v.Address.String()
	uv.Weight = avajson.Uint64(v.Weight)
	uv.Info = v.Info
}

type UnparsedAllocation struct {
	Address string         `json:"address"`
	Amount  avajson.Uint64 `json:"amount"`
}

func (ua UnparsedAllocation) Parse() (Allocation, error) {
	a := Allocation{Amount: uint64(ua.Amount)}
	var err error
	a.Address, err = ids.ShortFromString(ua.Address)
	if err != nil {
		return a, fmt.Errorf("couldn't parse allocation address %q: %w", ua.Address, err)
	}
	return a, nil
}

func (ua *UnparsedAllocation) Unparse(a Allocation) {
	ua.Address = a.Address.String()
	ua.Amount = avajson.Uint64(a.Amount)
}

// UnparsedConfig is the on-disk form of Config.
type UnparsedConfig struct {
	Threshold       governance.Threshold `json:"threshold"`
	MaxVotingPeriod governance.Duration  `json:"maxVotingPeriod"`
	Custody         string               `json:"custody"`
	StartTime       avajson.Uint64       `json:"startTime"`
	Voters          []UnparsedVoter      `json:"voters"`
	Allocations     []UnparsedAllocation `json:"allocations"`
}

func (uc UnparsedConfig) Parse() (Config, error) {
	c := Config{
		Threshold:       uc.Threshold,
		MaxVotingPeriod: uc.MaxVotingPeriod,
		StartTime:       uint64(uc.StartTime),
		Voters:          make([]Voter, len(uc.Voters)),
		Allocations:     make([]Allocation, len(uc.Allocations)),
	}

	var err error
	c.Custody, err = ids.ShortFromString(uc.Custody)
	if err != nil {
		return c, fmt.Errorf("couldn't parse custody address %q: %w", uc.Custody, err)
	}
	for i, uv := range uc.Voters {
		c.Voters[i], err = uv.Parse()
		if err != nil {
			return c, err
		}
	}
	for i, ua := range uc.Allocations {
		c.Allocations[i], err = ua.Parse()
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

func (uc *UnparsedConfig) Unparse(c Config) {
	uc.Threshold = c.Threshold
	uc.MaxVotingPeriod = c.MaxVotingPeriod
	uc.Custody = c.Custody.String()
	uc.StartTime = avajson.Uint64(c.StartTime)
	uc.Voters = make([]UnparsedVoter, len(c.Voters))
	for i, v := range c.Voters {
		uc.Voters[i].Unparse(v)
	}
	uc.Allocations = make([]UnparsedAllocation, len(c.Allocations))
	for i, a := range c.Allocations {
		uc.Allocations[i].Unparse(a)
	}
}
