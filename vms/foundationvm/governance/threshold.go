// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	errUnknownThresholdKind = errors.New("unknown threshold kind")
	errZeroWeight           = errors.New("threshold weight is zero")
	errInvalidThreshold     = errors.New("threshold percentage must be in (0, 1]")
	errMixedThreshold       = errors.New("threshold sets fields of another kind")
	ErrUnreachableWeight    = errors.New("threshold weight exceeds total weight")

	percentageOne = uint256.NewInt(uint64(PercentageOne))
)

type ThresholdKind byte

const (
	AbsoluteCount ThresholdKind = iota + 1
	AbsolutePercentage
)

// Threshold is the rule a proposal's yes weight has to meet to pass.
type Threshold struct {
	Kind ThresholdKind `serialize:"true"`
	// Weight needed for an AbsoluteCount threshold
	Weight uint64 `serialize:"true"`
	// Share of the total weight needed for an AbsolutePercentage threshold
	Percentage Percentage `serialize:"true"`
}

func CountThreshold(weight uint64) Threshold {
	return Threshold{Kind: AbsoluteCount, Weight: weight}
}

func PercentageThreshold(p Percentage) Threshold {
	return Threshold{Kind: AbsolutePercentage, Percentage: p}
}

func (t Threshold) Verify() error {
	switch t.Kind {
	case AbsoluteCount:
		if t.Weight == 0 {
			return errZeroWeight
		}
		if t.Percentage != 0 {
			return errMixedThreshold
		}
	case AbsolutePercentage:
		if t.Percentage == 0 || t.Percentage > PercentageOne {
			return fmt.Errorf("%w: %s", errInvalidThreshold, t.Percentage)
		}
		if t.Weight != 0 {
			return errMixedThreshold
		}
	default:
		return fmt.Errorf("%w: %d", errUnknownThresholdKind, t.Kind)
	}
	return nil
}

// VerifyReachable verifies [t] and that it can be met by [totalWeight].
func (t Threshold) VerifyReachable(totalWeight uint64) error {
	if err := t.Verify(); err != nil {
		return err
	}
	if t.Kind == AbsoluteCount && t.Weight > totalWeight {
		return fmt.Errorf("%w: %d > %d", ErrUnreachableWeight, t.Weight, totalWeight)
	}
	return nil
}

// isMet compares in 256 bits, so neither the tally nor the percentage product
// can overflow.
func (t Threshold) isMet(totalWeight uint64, yes *uint256.Int) bool {
	switch t.Kind {
	case AbsoluteCount:
		return !yes.Lt(uint256.NewInt(t.Weight))
	case AbsolutePercentage:
		if totalWeight == 0 {
			return false
		}
		lhs := new(uint256.Int).Mul(yes, percentageOne)
		rhs := new(uint256.Int).Mul(uint256.NewInt(uint64(t.Percentage)), uint256.NewInt(totalWeight))
		return !lhs.Lt(rhs)
	default:
		return false
	}
}

// Evaluate derives the status of a proposal from its snapshot threshold and
// total weight, its tally and whether it has expired.
//
// A proposal passes as soon as the yes weight meets the threshold, expired or
// not. It is rejected once it expired without passing, or once the yes weight
// plus the weight that hasn't voted yet can't meet the threshold anymore.
func Evaluate(t Threshold, totalWeight uint64, votes Votes, expired bool) Status {
	yes := uint256.NewInt(votes.Yes)
	if t.isMet(totalWeight, yes) {
		return Passed
	}
	if expired {
		return Rejected
	}

	cast := uint256.NewInt(votes.Yes)
	cast.Add(cast, uint256.NewInt(votes.No))
	cast.Add(cast, uint256.NewInt(votes.Abstain))
	cast.Add(cast, uint256.NewInt(votes.Veto))

	// ballots record the weight at cast time, which may exceed the snapshot
	reachable := new(uint256.Int).Set(yes)
	if total := uint256.NewInt(totalWeight); total.Gt(cast) {
		reachable.Add(reachable, new(uint256.Int).Sub(total, cast))
	}
	if !t.isMet(totalWeight, reachable) {
		return Rejected
	}
	return Open
}

func (t Threshold) String() string {
	switch t.Kind {
	case AbsoluteCount:
		return fmt.Sprintf("absolute count %d", t.Weight)
	case AbsolutePercentage:
		return fmt.Sprintf("absolute percentage %s", t.Percentage)
	default:
		return "unknown"
	}
}

type countJSON struct {
	Weight uint64 `json:"weight"`
}

type percentageJSON struct {
	Percentage Percentage `json:"percentage"`
}

type thresholdJSON struct {
	AbsoluteCount      *countJSON      `json:"absoluteCount,omitempty"`
	AbsolutePercentage *percentageJSON `json:"absolutePercentage,omitempty"`
}

func (t Threshold) MarshalJSON() ([]byte, error) {
	var v thresholdJSON
	switch t.Kind {
	case AbsoluteCount:
		v.AbsoluteCount = &countJSON{Weight: t.Weight}
	case AbsolutePercentage:
		v.AbsolutePercentage = &percentageJSON{Percentage: t.Percentage}
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownThresholdKind, t.Kind)
	}
	return json.Marshal(v)
}

func (t *Threshold) UnmarshalJSON(b []byte) error {
	var v thresholdJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.AbsoluteCount != nil && v.AbsolutePercentage == nil:
		*t = CountThreshold(v.AbsoluteCount.Weight)
	case v.AbsolutePercentage != nil && v.AbsoluteCount == nil:
		*t = PercentageThreshold(v.AbsolutePercentage.Percentage)
	default:
		return fmt.Errorf("threshold: %w", errAmbiguousJSON)
	}
	return nil
}
