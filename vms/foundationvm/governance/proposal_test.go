// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package governance

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	avamath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/stretchr/testify/require"
)

func TestProposalVerify(t *testing.T) {
	validProposal := func() *Proposal {
		return &Proposal{
			Title:     "title",
			Expires:   AtHeight(10),
			Threshold: CountThreshold(1),
			Action:    &TransferAction{Recipient: ids.ShortID{1}, Amount: 1},
		}
	}

	tests := map[string]struct {
		proposal    func() *Proposal
		expectedErr error
	}{
		"OK": {
			proposal: validProposal,
		},
		"Empty title": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Title = ""
				return p
			},
			expectedErr: ErrInvalidProposal,
		},
		"Title too long": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Title = strings.Repeat("a", MaxTitleLen+1)
				return p
			},
			expectedErr: ErrInvalidProposal,
		},
		"Description too long": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Description = strings.Repeat("a", MaxDescriptionLen+1)
				return p
			},
			expectedErr: ErrInvalidProposal,
		},
		"No action": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Action = nil
				return p
			},
			expectedErr: errNilAction,
		},
		"Zero transfer": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Action = &TransferAction{Recipient: ids.ShortID{1}}
				return p
			},
			expectedErr: errZeroAmount,
		},
		"Add voter without weight": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Action = &AddVoterAction{Address: ids.ShortID{1}}
				return p
			},
			expectedErr: errZeroVoteWeight,
		},
		"Add voter info too long": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Action = &AddVoterAction{Address: ids.ShortID{1}, Weight: 1, Info: strings.Repeat("i", MaxInfoLen+1)}
				return p
			},
			expectedErr: errInfoTooLong,
		},
		"Remove empty voter": {
			proposal: func() *Proposal {
				p := validProposal()
				p.Action = &RemoveVoterAction{}
				return p
			},
			expectedErr: errEmptyAddress,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, tt.proposal().Verify(), tt.expectedErr)
		})
	}
}

func TestProposalCurrentStatus(t *testing.T) {
	block := BlockInfo{Height: 5, Time: time.Unix(100, 0)}

	tests := map[string]struct {
		proposal       Proposal
		expectedStatus Status
	}{
		"Open stays open": {
			proposal: Proposal{
				Status:      Open,
				Expires:     AtHeight(6),
				Threshold:   CountThreshold(2),
				TotalWeight: 3,
				Votes:       YesVotes(1),
			},
			expectedStatus: Open,
		},
		"Open becomes rejected on expiry": {
			proposal: Proposal{
				Status:      Open,
				Expires:     AtHeight(5),
				Threshold:   CountThreshold(2),
				TotalWeight: 3,
				Votes:       YesVotes(1),
			},
			expectedStatus: Rejected,
		},
		"Passed is kept after expiry": {
			proposal: Proposal{
				Status:      Passed,
				Expires:     AtHeight(1),
				Threshold:   CountThreshold(2),
				TotalWeight: 3,
				Votes:       YesVotes(2),
			},
			expectedStatus: Passed,
		},
		"Executed is final": {
			proposal: Proposal{
				Status:      Executed,
				Expires:     AtHeight(1),
				Threshold:   CountThreshold(2),
				TotalWeight: 3,
			},
			expectedStatus: Executed,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			proposal := tt.proposal
			require.Equal(tt.expectedStatus, proposal.CurrentStatus(block))
			require.Equal(tt.proposal.Status, proposal.Status)
			require.Equal(tt.expectedStatus, proposal.UpdateStatus(block))
			require.Equal(tt.expectedStatus, proposal.Status)
		})
	}
}

func TestProposalCodec(t *testing.T) {
	require := require.New(t)

	proposal := &Proposal{
		ID:          7,
		Title:       "add carol",
		Description: "carol joins",
		Proposer:    ids.ShortID{1},
		StartHeight: 3,
		StartTime:   1_700_000_000,
		Expires:     AtTime(1_700_003_600),
		Threshold:   PercentageThreshold(PercentOf(51)),
		TotalWeight: 3,
		Votes:       YesVotes(1),
		Status:      Open,
		Action:      &AddVoterAction{Address: ids.ShortID{3}, Weight: 2, Info: "carol"},
	}
	bytes, err := Codec.Marshal(CodecVersion, proposal)
	require.NoError(err)

	parsed := &Proposal{}
	_, err = Codec.Unmarshal(bytes, parsed)
	require.NoError(err)
	require.Equal(proposal, parsed)
}

func TestVotesAdd(t *testing.T) {
	require := require.New(t)

	votes := YesVotes(1)
	require.NoError(votes.Add(No, 2))
	require.NoError(votes.Add(Abstain, 3))
	require.NoError(votes.Add(Veto, 4))
	require.Equal(Votes{Yes: 1, No: 2, Abstain: 3, Veto: 4}, votes)

	total, err := votes.Total()
	require.NoError(err)
	require.Equal(uint64(10), total)

	require.ErrorIs(votes.Add(Yes, math.MaxUint64), avamath.ErrOverflow)
	require.Equal(uint64(1), votes.Yes)
	require.ErrorIs(votes.Add(VoteOption(0), 1), errUnknownVoteOption)
}

func TestParseVoteOption(t *testing.T) {
	require := require.New(t)

	for _, option := range []VoteOption{Yes, No, Abstain, Veto} {
		parsed, err := ParseVoteOption(option.String())
		require.NoError(err)
		require.Equal(option, parsed)
	}
	_, err := ParseVoteOption("maybe")
	require.ErrorIs(err, errUnknownVoteOption)
}

func TestActionJSON(t *testing.T) {
	tests := map[string]struct {
		action Action
	}{
		"Transfer":               {action: &TransferAction{Recipient: ids.ShortID{1}, Amount: 10}},
		"Add voter":              {action: &AddVoterAction{Address: ids.ShortID{2}, Weight: 3, Info: "info"}},
		"Remove voter":           {action: &RemoveVoterAction{Address: ids.ShortID{3}}},
		"Remove voter by weight": {action: &RemoveVoterAction{Address: ids.ShortID{3}, Weight: 5}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			b, err := json.Marshal(ActionJSON{Action: tt.action})
			require.NoError(err)

			var parsed ActionJSON
			require.NoError(json.Unmarshal(b, &parsed))
			require.Equal(tt.action, parsed.Action)
		})
	}

	var parsed ActionJSON
	require.ErrorIs(t, json.Unmarshal([]byte(`{}`), &parsed), errAmbiguousJSON)
}

func TestVoterCanVoteOn(t *testing.T) {
	voter := &Voter{Weight: 1, Since: 3}
	require.False(t, voter.CanVoteOn(2))
	require.True(t, voter.CanVoteOn(3))
	require.True(t, voter.CanVoteOn(4))
}
