// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PercentageDecimals is the number of fractional digits a Percentage keeps.
	PercentageDecimals = 18

	// PercentageOne is the atomic representation of 100%.
	PercentageOne Percentage = 1_000_000_000_000_000_000
)

var errInvalidPercentage = errors.New("invalid percentage")

// Percentage is a fixed point fraction in [0, 1] with 18 decimals. It is
// stored as its atomic integer value so comparisons never go through floats.
type Percentage uint64

// PercentOf returns [n]%. [n] above 100 is not capped, callers verify.
func PercentOf(n uint64) Percentage {
	return Percentage(n * (uint64(PercentageOne) / 100))
}

// ParsePercentage parses a decimal string such as "0.51" or "1".
func ParsePercentage(s string) (Percentage, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	switch {
	case err != nil:
		return 0, fmt.Errorf("%w: %w", errInvalidPercentage, err)
	case d.IsNegative():
		return 0, fmt.Errorf("%w: %q is negative", errInvalidPercentage, s)
	case d.GreaterThan(decimal.NewFromInt(1)):
		return 0, fmt.Errorf("%w: %q is above 1", errInvalidPercentage, s)
	case d.Exponent() < -PercentageDecimals:
		return 0, fmt.Errorf("%w: %q has more than %d decimals", errInvalidPercentage, s, PercentageDecimals)
	}
	return Percentage(d.Shift(PercentageDecimals).BigInt().Uint64()), nil
}

func (p Percentage) String() string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(p)), -PercentageDecimals).String()
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Percentage) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePercentage(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
