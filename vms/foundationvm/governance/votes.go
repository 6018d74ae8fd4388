// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/math"
)

var (
	errUnknownVoteOption = errors.New("unknown vote option")
	errUnknownStatus     = errors.New("unknown status")
)

type VoteOption byte

const (
	Yes VoteOption = iota + 1
	No
	Abstain
	Veto
)

var voteOptionNames = map[VoteOption]string{
	Yes:     "yes",
	No:      "no",
	Abstain: "abstain",
	Veto:    "veto",
}

func (o VoteOption) Verify() error {
	if _, ok := voteOptionNames[o]; !ok {
		return fmt.Errorf("%w: %d", errUnknownVoteOption, o)
	}
	return nil
}

func (o VoteOption) String() string {
	if name, ok := voteOptionNames[o]; ok {
		return name
	}
	return "unknown"
}

func (o VoteOption) MarshalJSON() ([]byte, error) {
	if err := o.Verify(); err != nil {
		return nil, err
	}
	return json.Marshal(o.String())
}

func (o *VoteOption) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	option, err := ParseVoteOption(s)
	if err != nil {
		return err
	}
	*o = option
	return nil
}

// ParseVoteOption returns the option named [s].
func ParseVoteOption(s string) (VoteOption, error) {
	for option, name := range voteOptionNames {
		if name == s {
			return option, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errUnknownVoteOption, s)
}

// Votes is the weight tally of a proposal.
type Votes struct {
	Yes     uint64 `serialize:"true" json:"yes"`
	No      uint64 `serialize:"true" json:"no"`
	Abstain uint64 `serialize:"true" json:"abstain"`
	Veto    uint64 `serialize:"true" json:"veto"`
}

// YesVotes returns a tally holding a single yes vote of [weight].
func YesVotes(weight uint64) Votes {
	return Votes{Yes: weight}
}

// Add adds [weight] to the tally of [option]. The tally is left untouched on
// overflow.
func (v *Votes) Add(option VoteOption, weight uint64) error {
	var target *uint64
	switch option {
	case Yes:
		target = &v.Yes
	case No:
		target = &v.No
	case Abstain:
		target = &v.Abstain
	case Veto:
		target = &v.Veto
	default:
		return fmt.Errorf("%w: %d", errUnknownVoteOption, option)
	}
	sum, err := math.Add64(*target, weight)
	if err != nil {
		return fmt.Errorf("adding %s votes: %w", option, err)
	}
	*target = sum
	return nil
}

// Total returns the weight of all cast ballots.
func (v Votes) Total() (uint64, error) {
	total, err := math.Add64(v.Yes, v.No)
	if err != nil {
		return 0, err
	}
	if total, err = math.Add64(total, v.Abstain); err != nil {
		return 0, err
	}
	return math.Add64(total, v.Veto)
}

// Status is the lifecycle state of a proposal.
type Status byte

const (
	Unknown Status = iota
	Open
	Rejected
	Passed
	Executed
)

var statusNames = map[Status]string{
	Unknown:  "unknown",
	Open:     "open",
	Rejected: "rejected",
	Passed:   "passed",
	Executed: "executed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "invalid"
}

// Terminal returns true if no transition leaves [s].
func (s Status) Terminal() bool {
	return s == Rejected || s == Executed
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	for status, name := range statusNames {
		if name == str {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("%w: %q", errUnknownStatus, str)
}
