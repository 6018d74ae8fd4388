// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/vms/foundationvm"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenesisInit(t *testing.T) {
	require := require.New(t)
	output := filepath.Join(t.TempDir(), "genesis.json")

	stdout, err := run(t, "genesis", "init",
		"--output", output,
		"--voter", alice.String()+":2:chair",
		"--voter", bob.String()+":1",
		"--allocation", dave.String()+":500",
		"--threshold", "count:2",
		"--max-voting-period", "72h",
		"--custody", dave.String(),
		"--start-time", "1000",
	)
	require.NoError(err)
	require.Contains(stdout, "wrote genesis with 2 voters")

	genesisConfig, err := genesis.FromFile(output)
	require.NoError(err)
	require.Equal(&genesis.Config{
		Threshold:       governance.CountThreshold(2),
		MaxVotingPeriod: governance.Seconds(72 * 60 * 60),
		Custody:         dave,
		StartTime:       1000,
		Voters: []genesis.Voter{
			{Address: alice, Weight: 2, Info: "chair"},
			{Address: bob, Weight: 1},
		},
		Allocations: []genesis.Allocation{{Address: dave, Amount: 500}},
	}, genesisConfig)
}

func TestGenesisInitRejectsInvalidGenesis(t *testing.T) {
	require := require.New(t)
	output := filepath.Join(t.TempDir(), "genesis.json")

	// 3 can't be reached with a total weight of 2
	_, err := run(t, "genesis", "init",
		"--output", output,
		"--voter", alice.String()+":1",
		"--voter", bob.String()+":1",
		"--threshold", "count:3",
		"--max-voting-period", "10",
		"--custody", dave.String(),
	)
	require.ErrorContains(err, "invalid genesis")
	require.NoFileExists(output)

	_, err = run(t, "genesis", "init", "--output", output)
	require.ErrorContains(err, "required flag")
}

func newTestNode(t *testing.T) string {
	t.Helper()
	require := require.New(t)

	vm := &foundationvm.VM{}
	require.NoError(vm.Initialize(logging.NoLog{}, memdb.New(), &genesis.Config{
		Threshold:       governance.CountThreshold(2),
		MaxVotingPeriod: governance.Blocks(10),
		Custody:         custody,
		Voters: []genesis.Voter{
			{Address: alice, Weight: 1, Info: "alice"},
			{Address: bob, Weight: 1},
			{Address: carol, Weight: 1},
		},
		Allocations: []genesis.Allocation{{Address: custody, Amount: 100}},
	}, "foundation", prometheus.NewRegistry()))

	handlers, err := vm.CreateHandlers()
	require.NoError(err)
	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.Handle(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		require.NoError(vm.Shutdown())
	})
	return server.URL
}

func TestClientCommands(t *testing.T) {
	require := require.New(t)
	uri := newTestNode(t)

	stdout, err := run(t, "propose", "transfer", dave.String(), "40",
		"--uri", uri,
		"--sender", alice.String(),
		"--title", "pay dave",
	)
	require.NoError(err)
	require.Contains(stdout, "accepted at height 1, proposal 1")
	require.Contains(stdout, "open")

	_, err = run(t, "vote", "1", "maybe", "--uri", uri, "--sender", bob.String())
	require.Error(err)
	_, err = run(t, "vote", "1", "yes", "--uri", uri, "--sender", dave.String())
	require.ErrorContains(err, "unauthorized")

	stdout, err = run(t, "vote", "1", "yes", "--uri", uri, "--sender", bob.String())
	require.NoError(err)
	require.Contains(stdout, "passed")

	stdout, err = run(t, "proposals", "show", "1", "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, "pay dave")
	require.Contains(stdout, dave.String())
	require.Contains(stdout, "passed")

	stdout, err = run(t, "votes", "1", "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, alice.String())
	require.Contains(stdout, bob.String())

	_, err = run(t, "votes", "1", carol.String(), "--uri", uri)
	require.ErrorIs(err, errVoteNotFound)

	stdout, err = run(t, "execute", "1", "--uri", uri, "--sender", carol.String())
	require.NoError(err)
	require.Contains(stdout, "transfer")

	stdout, err = run(t, "balance", dave.String(), "--uri", uri)
	require.NoError(err)
	require.Equal("40\n", stdout)

	stdout, err = run(t, "propose", "remove-voter", carol.String(),
		"--uri", uri,
		"--sender", alice.String(),
		"--title", "remove carol",
		"--expires-at-height", "5",
	)
	require.NoError(err)
	require.Contains(stdout, "proposal 2")

	_, err = run(t, "propose", "remove-voter", carol.String(),
		"--uri", uri,
		"--sender", alice.String(),
		"--title", "remove carol",
		"--expires-at-height", "5",
		"--never-expires",
	)
	require.Error(err)

	stdout, err = run(t, "proposals", "list", "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, "pay dave")
	require.Contains(stdout, "executed")
	require.Contains(stdout, "remove carol")

	stdout, err = run(t, "proposals", "list", "--reverse", "--limit", "1", "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, "remove carol")
	require.NotContains(stdout, "pay dave")

	stdout, err = run(t, "voters", "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, carol.String())

	stdout, err = run(t, "voters", alice.String(), "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, "alice")

	_, err = run(t, "voters", dave.String(), "--uri", uri)
	require.ErrorIs(err, errVoterNotFound)

	stdout, err = run(t, "threshold", "--uri", uri)
	require.NoError(err)
	require.Equal("absolute count 2 of total weight 3\n", stdout)

	stdout, err = run(t, "height", "--uri", uri)
	require.NoError(err)
	require.Contains(stdout, "height 4")
}
