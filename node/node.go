// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chain4travel/camino-foundation/config"
	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/server"
	"github.com/chain4travel/camino-foundation/vms/foundationvm"
)

var errUnknownDBType = errors.New("unknown db type")

// Node wires the foundation vm to its database and HTTP server.
type Node struct {
	Log      logging.Logger
	config   config.Config
	registry *prometheus.Registry
	db       database.Database
	vm       *foundationvm.VM
	server   *server.Server
}

// New builds a node logging with [log]. A nil [log] is built from [config].
func New(config config.Config, log logging.Logger) (*Node, error) {
	if log == nil {
		log = newLogger(config)
	}
	n := &Node{
		Log:      log,
		config:   config,
		registry: prometheus.NewRegistry(),
		vm:       &foundationvm.VM{},
	}
	if err := n.init(); err != nil {
		_ = n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) init() error {
	var err error
	n.db, err = n.openDB()
	if err != nil {
		return fmt.Errorf("couldn't open %s database: %w", n.config.DBType, err)
	}

	genesisConfig, err := n.readGenesis()
	if err != nil {
		return err
	}
	if err := n.vm.Initialize(n.Log, n.db, genesisConfig, n.config.MetricsNamespace, n.registry); err != nil {
		return fmt.Errorf("couldn't initialize vm: %w", err)
	}

	n.server = server.New(n.Log, server.Config{
		AllowedOrigins:       n.config.HTTPAllowedOrigins,
		MaxRequestsPerSecond: n.config.APIMaxRequestsPerSecond,
		ShutdownTimeout:      n.config.HTTPShutdownTimeout,
	}, n.registry)
	handlers, err := n.vm.CreateHandlers()
	if err != nil {
		return fmt.Errorf("couldn't create vm handlers: %w", err)
	}
	for path, handler := range handlers {
		if err := n.server.AddRoute(path, handler); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) openDB() (database.Database, error) {
	switch n.config.DBType {
	case config.MemDBType:
		return memdb.New(), nil
	case config.LevelDBType:
		n.Log.Info("opening database", zap.String("path", n.config.DBDir))
		return leveldb.New(n.config.DBDir, nil, n.Log, "db", n.registry)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDBType, n.config.DBType)
	}
}

// readGenesis returns nil if there is no genesis file. The genesis is only
// required for an empty database.
func (n *Node) readGenesis() (*genesis.Config, error) {
	genesisConfig, err := genesis.FromFile(n.config.GenesisFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		n.Log.Debug("no genesis file", zap.String("path", n.config.GenesisFile))
		return nil, nil
	case err != nil:
		return nil, err
	}
	return genesisConfig, nil
}

// Run serves the node APIs until [ctx] is done.
func (n *Node) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", n.config.HTTPAddress())
	if err != nil {
		return fmt.Errorf("couldn't listen on %s: %w", n.config.HTTPAddress(), err)
	}
	return n.Serve(ctx, listener)
}

// Serve serves the node APIs on [listener] until [ctx] is done.
func (n *Node) Serve(ctx context.Context, listener net.Listener) error {
	return n.server.Serve(ctx, listener)
}

func (n *Node) Close() error {
	errs := wrappers.Errs{}
	errs.Add(n.vm.Shutdown())
	if n.db != nil {
		errs.Add(n.db.Close())
	}
	n.Log.Info("node closed")
	n.Log.Stop()
	return errs.Err
}
