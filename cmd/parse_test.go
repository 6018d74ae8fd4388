// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

var (
	alice   = ids.ShortID{1}
	bob     = ids.ShortID{2}
	carol   = ids.ShortID{3}
	dave    = ids.ShortID{4}
	custody = ids.ShortID{0xff}
)

func TestParseVoter(t *testing.T) {
	tests := map[string]struct {
		input       string
		expected    genesis.Voter
		expectedErr error
	}{
		"Address and weight": {
			input:    alice.String() + ":3",
			expected: genesis.Voter{Address: alice, Weight: 3},
		},
		"Info may contain colons": {
			input:    alice.String() + ":1:board: finance",
			expected: genesis.Voter{Address: alice, Weight: 1, Info: "board: finance"},
		},
		"Missing weight": {
			input:       alice.String(),
			expectedErr: errInvalidVoter,
		},
		"Negative weight": {
			input:       alice.String() + ":-1",
			expectedErr: errInvalidVoter,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			voter, err := parseVoter(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Equal(t, tt.expected, voter)
		})
	}

	_, err := parseVoter("not-an-address:1")
	require.Error(t, err)
}

func TestParseAllocation(t *testing.T) {
	require := require.New(t)

	allocation, err := parseAllocation(bob.String() + ":100")
	require.NoError(err)
	require.Equal(genesis.Allocation{Address: bob, Amount: 100}, allocation)

	_, err = parseAllocation(bob.String())
	require.ErrorIs(err, errInvalidAllocation)
	_, err = parseAllocation(bob.String() + ":many")
	require.ErrorIs(err, errInvalidAllocation)
}

func TestParseThreshold(t *testing.T) {
	half, err := governance.ParsePercentage("0.5")
	require.NoError(t, err)

	tests := map[string]struct {
		input       string
		expected    governance.Threshold
		expectedErr error
	}{
		"Count": {
			input:    "count:2",
			expected: governance.CountThreshold(2),
		},
		"Percentage": {
			input:    "percentage:0.5",
			expected: governance.PercentageThreshold(half),
		},
		"Missing kind": {
			input:       "2",
			expectedErr: errInvalidThreshold,
		},
		"Unknown kind": {
			input:       "quorum:2",
			expectedErr: errInvalidThreshold,
		},
		"Invalid percentage": {
			input:       "percentage:half",
			expectedErr: errInvalidThreshold,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			threshold, err := parseThreshold(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Equal(t, tt.expected, threshold)
		})
	}
}

func TestParseVotingPeriod(t *testing.T) {
	tests := map[string]struct {
		input       string
		expected    governance.Duration
		expectedErr error
	}{
		"Blocks": {
			input:    "100",
			expected: governance.Blocks(100),
		},
		"Duration": {
			input:    "72h",
			expected: governance.Seconds(72 * 60 * 60),
		},
		"Duration is rounded down to seconds": {
			input:    "1500ms",
			expected: governance.Seconds(1),
		},
		"Less than a second": {
			input:       "10ms",
			expectedErr: errInvalidPeriod,
		},
		"Garbage": {
			input:       "forever",
			expectedErr: errInvalidPeriod,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			period, err := parseVotingPeriod(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Equal(t, tt.expected, period)
		})
	}
}
