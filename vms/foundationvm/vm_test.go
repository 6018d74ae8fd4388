// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package foundationvm

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/token"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs/executor"
)

var (
	alice   = ids.ShortID{0xa}
	bob     = ids.ShortID{0xb}
	carol   = ids.ShortID{0xc}
	dave    = ids.ShortID{0xd}
	custody = ids.ShortID{0xff}

	genesisTime = time.Unix(1690290000, 0)
)

func testGenesis() *genesis.Config {
	return &genesis.Config{
		Threshold:       governance.CountThreshold(2),
		MaxVotingPeriod: governance.Blocks(10),
		Custody:         custody,
		StartTime:       uint64(genesisTime.Unix()),
		Voters: []genesis.Voter{
			{Address: alice, Weight: 1},
			{Address: bob, Weight: 1},
			{Address: carol, Weight: 1},
		},
		Allocations: []genesis.Allocation{{Address: custody, Amount: 100}},
	}
}

func newTestVM(t *testing.T, db database.Database) *VM {
	t.Helper()

	vm := &VM{}
	vm.clock.Set(genesisTime.Add(time.Minute))
	require.NoError(t, vm.Initialize(logging.NoLog{}, db, testGenesis(), "foundation", prometheus.NewRegistry()))
	t.Cleanup(func() {
		require.NoError(t, vm.Shutdown())
	})
	return vm
}

func TestInitializeWithoutGenesis(t *testing.T) {
	vm := &VM{}
	err := vm.Initialize(logging.NoLog{}, memdb.New(), nil, "foundation", prometheus.NewRegistry())
	require.ErrorIs(t, err, errMissingGenesis)
}

func TestIssue(t *testing.T) {
	require := require.New(t)
	vm := newTestVM(t, memdb.New())

	result, err := vm.Issue(&txs.Tx{Sender: alice, Unsigned: &txs.ProposeTx{
		Title:  "pay dave",
		Action: &governance.TransferAction{Recipient: dave, Amount: 40},
	}})
	require.NoError(err)
	require.Equal(uint64(1), result.Height)
	require.Equal(uint64(1), result.ProposalID)

	result, err = vm.Issue(&txs.Tx{Sender: bob, Unsigned: &txs.VoteTx{ProposalID: 1, Vote: governance.Yes}})
	require.NoError(err)
	require.Equal(uint64(2), result.Height)

	result, err = vm.Issue(&txs.Tx{Sender: dave, Unsigned: &txs.ExecuteTx{ProposalID: 1}})
	require.NoError(err)
	require.Equal(uint64(3), result.Height)
	require.Len(result.Events, 2)

	balance, err := vm.state.GetBalance(dave)
	require.NoError(err)
	require.Equal(uint64(40), balance)
	balance, err = vm.state.GetBalance(custody)
	require.NoError(err)
	require.Equal(uint64(60), balance)

	_, err = vm.Issue(&txs.Tx{Sender: dave, Unsigned: &txs.ExecuteTx{ProposalID: 1}})
	require.ErrorIs(err, executor.ErrWrongExecuteStatus)
	require.Equal(uint64(3), vm.state.GetLastBlock().Height)
}

func TestIssueFailureLeavesStateUntouched(t *testing.T) {
	require := require.New(t)
	vm := newTestVM(t, memdb.New())

	_, err := vm.Issue(&txs.Tx{Sender: alice, Unsigned: &txs.ProposeTx{
		Title:  "pay dave too much",
		Action: &governance.TransferAction{Recipient: dave, Amount: 1_000},
	}})
	require.NoError(err)
	_, err = vm.Issue(&txs.Tx{Sender: carol, Unsigned: &txs.VoteTx{ProposalID: 1, Vote: governance.Yes}})
	require.NoError(err)

	_, err = vm.Issue(&txs.Tx{Sender: alice, Unsigned: &txs.ExecuteTx{ProposalID: 1}})
	require.ErrorIs(err, token.ErrInsufficientFunds)

	proposal, err := vm.state.GetProposal(1)
	require.NoError(err)
	require.Equal(governance.Passed, proposal.Status)
	require.Equal(uint64(2), vm.state.GetLastBlock().Height)
	balance, err := vm.state.GetBalance(custody)
	require.NoError(err)
	require.Equal(uint64(100), balance)
}

func TestBlockTimeNeverGoesBack(t *testing.T) {
	require := require.New(t)
	vm := newTestVM(t, memdb.New())

	vm.clock.Set(genesisTime.Add(-time.Hour))
	block := vm.nextBlock()
	require.Equal(uint64(1), block.Height)
	require.True(block.Time.Equal(genesisTime))

	vm.clock.Set(genesisTime.Add(time.Hour))
	block = vm.nextBlock()
	require.True(block.Time.Equal(genesisTime.Add(time.Hour)))
}

func TestReopen(t *testing.T) {
	require := require.New(t)
	db := memdb.New()

	vm := &VM{}
	require.NoError(vm.Initialize(logging.NoLog{}, db, testGenesis(), "foundation", prometheus.NewRegistry()))
	_, err := vm.Issue(&txs.Tx{Sender: alice, Unsigned: &txs.ProposeTx{
		Title:  "add dave",
		Action: &governance.AddVoterAction{Address: dave, Weight: 2},
	}})
	require.NoError(err)
	require.NoError(vm.Shutdown())

	// genesis is only applied to an empty database
	reopened := &VM{}
	require.NoError(reopened.Initialize(logging.NoLog{}, db, nil, "foundation", prometheus.NewRegistry()))
	defer func() {
		require.NoError(reopened.Shutdown())
	}()

	require.Equal(uint64(1), reopened.state.GetLastBlock().Height)
	require.Equal(uint64(3), reopened.state.GetTotalWeight())
	proposal, err := reopened.state.GetProposal(1)
	require.NoError(err)
	require.Equal("add dave", proposal.Title)
}

func TestServiceRoundTrip(t *testing.T) {
	require := require.New(t)
	vm := newTestVM(t, memdb.New())

	handlers, err := vm.CreateHandlers()
	require.NoError(err)
	server := httptest.NewServer(handlers["/ext/"+Name])
	defer server.Close()

	ctx := context.Background()
	c := NewClient(server.URL)

	reply, err := c.Propose(ctx, alice, "pay dave", "first payment", &governance.TransferAction{Recipient: dave, Amount: 40}, nil)
	require.NoError(err)
	require.Equal(uint64(1), uint64(reply.ProposalID))
	require.Equal(uint64(1), uint64(reply.Height))
	require.Equal(executor.ProposeEvent, reply.Events[0].Type)

	_, err = c.Vote(ctx, dave, 1, governance.Yes)
	require.ErrorContains(err, executor.ErrUnauthorized.Error())

	reply, err = c.Vote(ctx, bob, 1, governance.Yes)
	require.NoError(err)
	status, _ := reply.Events[0].Get("status")
	require.Equal("passed", status)

	proposal, err := c.GetProposal(ctx, 1)
	require.NoError(err)
	require.Equal("pay dave", proposal.Title)
	require.Equal(governance.Passed, proposal.Status)
	require.Equal(governance.AtHeight(11), proposal.Expires)
	require.Equal(&governance.TransferAction{Recipient: dave, Amount: 40}, proposal.Action.Action)
	require.Equal(governance.Votes{Yes: 2}, proposal.Votes)

	_, err = c.Execute(ctx, carol, 1)
	require.NoError(err)
	_, err = c.Close(ctx, carol, 1)
	require.ErrorContains(err, executor.ErrWrongCloseStatus.Error())

	proposals, err := c.ListProposals(ctx, 0, 0)
	require.NoError(err)
	require.Len(proposals, 1)
	require.Equal(governance.Executed, proposals[0].Status)

	proposals, err = c.ReverseProposals(ctx, 0, 0)
	require.NoError(err)
	require.Len(proposals, 1)

	vote, err := c.GetVote(ctx, 1, bob)
	require.NoError(err)
	require.Equal(governance.Yes, vote.Vote)
	vote, err = c.GetVote(ctx, 1, carol)
	require.NoError(err)
	require.Nil(vote)

	votes, err := c.ListVotes(ctx, 1, ids.ShortEmpty, 10)
	require.NoError(err)
	require.Len(votes, 2)

	voter, err := c.GetVoter(ctx, alice)
	require.NoError(err)
	require.Equal(uint64(1), uint64(voter.Weight))
	voter, err = c.GetVoter(ctx, dave)
	require.NoError(err)
	require.Nil(voter)

	voters, err := c.ListVoters(ctx, ids.ShortEmpty, 2)
	require.NoError(err)
	require.Len(voters, 2)

	threshold, err := c.GetThreshold(ctx)
	require.NoError(err)
	require.Equal(governance.CountThreshold(2), threshold.Rule)
	require.Equal(uint64(3), uint64(threshold.TotalWeight))

	balance, err := c.GetBalance(ctx, dave)
	require.NoError(err)
	require.Equal(uint64(40), balance)

	height, err := c.GetHeight(ctx)
	require.NoError(err)
	require.Equal(uint64(3), uint64(height.Height))

	_, err = c.GetProposal(ctx, 2)
	require.ErrorContains(err, executor.ErrProposalNotFound.Error())
}
