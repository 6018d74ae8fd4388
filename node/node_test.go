// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/chain4travel/camino-foundation/config"
	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/vms/foundationvm"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	genesisConfig := &genesis.Config{
		Threshold:       governance.CountThreshold(1),
		MaxVotingPeriod: governance.Blocks(10),
		Custody:         ids.ShortID{0xff},
		StartTime:       1_000_000,
		Voters:          []genesis.Voter{{Address: ids.ShortID{1}, Weight: 1}},
		Allocations:     []genesis.Allocation{{Address: ids.ShortID{0xff}, Amount: 100}},
	}
	genesisBytes, err := genesisConfig.JSON()
	require.NoError(t, err)
	genesisFile := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(genesisFile, genesisBytes, 0o600))

	return config.Config{
		HTTPHost:            "127.0.0.1",
		HTTPAllowedOrigins:  []string{"*"},
		HTTPShutdownTimeout: time.Second,
		DBType:              config.MemDBType,
		GenesisFile:         genesisFile,
		LogLevel:            logging.Info,
		MetricsNamespace:    "foundation",
	}
}

func TestNodeServes(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
	require := require.New(t)

	n, err := New(testConfig(t), logging.NoLog{})
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- n.Serve(ctx, listener)
	}()

	client := foundationvm.NewClient("http://" + listener.Addr().String())
	balance, err := client.GetBalance(context.Background(), ids.ShortID{0xff})
	require.NoError(err)
	require.Equal(uint64(100), balance)

	reply, err := client.Propose(
		context.Background(),
		ids.ShortID{1},
		"pay bob",
		"",
		&governance.TransferAction{Recipient: ids.ShortID{2}, Amount: 10},
		nil,
	)
	require.NoError(err)
	require.Equal(uint64(1), uint64(reply.ProposalID))

	proposal, err := client.GetProposal(context.Background(), 1)
	require.NoError(err)
	require.Equal(governance.Passed, proposal.Status)

	cancel()
	require.NoError(<-done)
	require.NoError(n.Close())
}

func TestNodeWithoutGenesis(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	cfg.GenesisFile = filepath.Join(t.TempDir(), "missing.json")
	_, err := New(cfg, logging.NoLog{})
	require.ErrorContains(err, "no genesis")
}

func TestNodeInvalidGenesis(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	require.NoError(os.WriteFile(cfg.GenesisFile, []byte("{"), 0o600))
	_, err := New(cfg, logging.NoLog{})
	require.Error(err)
}

func TestNodeUnknownDBType(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBType = "rocksdb"
	_, err := New(cfg, logging.NoLog{})
	require.ErrorIs(t, err, errUnknownDBType)
}

func TestNodeLevelDBReopen(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	cfg.DBType = config.LevelDBType
	cfg.DBDir = t.TempDir()

	n, err := New(cfg, logging.NoLog{})
	require.NoError(err)
	require.NoError(n.Close())

	// the genesis is only read for an empty database
	require.NoError(os.Remove(cfg.GenesisFile))
	n, err = New(cfg, logging.NoLog{})
	require.NoError(err)
	require.NoError(n.Close())
}
