// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

func TestTxSyntacticVerify(t *testing.T) {
	sender := ids.ShortID{1}
	validExpiration := governance.AtHeight(10)
	invalidExpiration := governance.Expiration{Kind: 0xff}

	tests := map[string]struct {
		tx          *Tx
		expectedErr error
	}{
		"Nil tx": {
			tx:          nil,
			expectedErr: ErrNilTx,
		},
		"Nil unsigned tx": {
			tx:          &Tx{Sender: sender},
			expectedErr: ErrNilTx,
		},
		"Empty sender": {
			tx:          &Tx{Unsigned: &ExecuteTx{ProposalID: 1}},
			expectedErr: errEmptySender,
		},
		"Propose without expiration": {
			tx: &Tx{Sender: sender, Unsigned: &ProposeTx{Title: "title"}},
		},
		"Propose with expiration": {
			tx: &Tx{Sender: sender, Unsigned: &ProposeTx{Title: "title", Expires: &validExpiration}},
		},
		"Vote": {
			tx: &Tx{Sender: sender, Unsigned: &VoteTx{ProposalID: 1, Vote: governance.Veto}},
		},
		"Close": {
			tx: &Tx{Sender: sender, Unsigned: &CloseTx{ProposalID: 1}},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, tt.tx.SyntacticVerify(), tt.expectedErr)
		})
	}

	invalid := []UnsignedTx{
		&ProposeTx{Expires: &invalidExpiration},
		&VoteTx{ProposalID: 1},
		(*ExecuteTx)(nil),
	}
	for _, unsigned := range invalid {
		require.Error(t, (&Tx{Sender: sender, Unsigned: unsigned}).SyntacticVerify())
	}
}
