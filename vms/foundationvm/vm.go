// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package foundationvm

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/avalanchego/version"
	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chain4travel/camino-foundation/genesis"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/metrics"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/query"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/state"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/token"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs"
	"github.com/chain4travel/camino-foundation/vms/foundationvm/txs/executor"
)

const Name = "foundation"

var (
	Version = &version.Semantic{
		Major: 0,
		Minor: 1,
		Patch: 0,
	}

	errMissingGenesis = errors.New("state is not initialized and no genesis was provided")
)

// Result is the outcome of an accepted call.
type Result struct {
	Height     uint64
	ProposalID uint64
	Events     []*executor.Event
}

// VM hosts the governance engine. Every call and query holds [lock], so calls
// are serialized and queries never observe a partially applied call.
type VM struct {
	lock sync.Mutex

	log     logging.Logger
	clock   mockable.Clock
	metrics metrics.Metrics
	state   state.State
	backend *executor.Backend
	querier *query.Querier
}

// Initialize loads the state stored in [db]. An uninitialized database is
// initialized from [genesisConfig].
func (vm *VM) Initialize(
	log logging.Logger,
	db database.Database,
	genesisConfig *genesis.Config,
	namespace string,
	registerer prometheus.Registerer,
) error {
	vm.log = log
	vm.log.Info("initializing foundation vm", zap.Stringer("version", Version))

	var err error
	vm.metrics, err = metrics.New(namespace, registerer)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	vm.state, err = state.New(db, registerer)
	if err != nil {
		return fmt.Errorf("failed to initialize state: %w", err)
	}

	if err := vm.initGenesis(genesisConfig); err != nil {
		return err
	}

	vm.backend = &executor.Backend{Log: log}
	vm.querier = query.NewQuerier(vm.state, &vm.clock)

	lastBlock := vm.state.GetLastBlock()
	vm.metrics.SetHeight(lastBlock.Height)
	vm.metrics.SetTotalWeight(vm.state.GetTotalWeight())
	vm.log.Info("initialized last block",
		zap.Uint64("height", lastBlock.Height),
		zap.Time("time", lastBlock.Time),
		zap.Uint64("totalWeight", vm.state.GetTotalWeight()),
	)
	return nil
}

func (vm *VM) initGenesis(genesisConfig *genesis.Config) error {
	stateInitialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}
	if stateInitialized {
		return nil
	}
	if genesisConfig == nil {
		return errMissingGenesis
	}
	if err := genesisConfig.Verify(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	vm.state.SetConfig(genesisConfig.StateConfig())
	for _, voter := range genesisConfig.Voters {
		if err := vm.state.UpsertVoter(voter.Address, &governance.Voter{
			Weight: voter.Weight,
			Since:  1,
			Info:   voter.Info,
		}); err != nil {
			return fmt.Errorf("couldn't add genesis voter %s: %w", voter.Address, err)
		}
	}
	for _, allocation := range genesisConfig.Allocations {
		vm.state.SetBalance(allocation.Address, allocation.Amount)
	}
	vm.state.SetNextProposalID(1)
	vm.state.SetLastBlock(governance.BlockInfo{
		Height: 0,
		Time:   time.Unix(int64(genesisConfig.StartTime), 0),
	})

	if err := vm.state.SetInitialized(); err != nil {
		return fmt.Errorf("error while setting db to initialized: %w", err)
	}
	vm.log.Info("initialized state from genesis",
		zap.Int("numVoters", len(genesisConfig.Voters)),
		zap.Stringer("threshold", genesisConfig.Threshold),
		zap.Stringer("maxVotingPeriod", genesisConfig.MaxVotingPeriod),
	)
	return vm.state.Commit()
}

// nextBlock returns the block a call is executed in. Time never goes back.
func (vm *VM) nextBlock() governance.BlockInfo {
	lastBlock := vm.state.GetLastBlock()
	now := vm.clock.Time()
	if now.Before(lastBlock.Time) {
		now = lastBlock.Time
	}
	return governance.BlockInfo{
		Height: lastBlock.Height + 1,
		Time:   now,
	}
}

// Issue executes [tx] in a new block and commits it. A failed call leaves the
// state untouched.
func (vm *VM) Issue(tx *txs.Tx) (*Result, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	result, executedAction, err := vm.issue(tx)
	if err != nil {
		if abortErr := vm.state.Abort(); abortErr != nil {
			vm.log.Error("failed to abort state",
				zap.Error(abortErr),
			)
		}
		vm.metrics.MarkFailed()
		return nil, err
	}

	errs := wrappers.Errs{}
	errs.Add(vm.metrics.MarkAccepted(tx))
	if executedAction != nil {
		errs.Add(vm.metrics.MarkExecuted(executedAction))
	}
	vm.metrics.SetHeight(result.Height)
	vm.metrics.SetTotalWeight(vm.state.GetTotalWeight())
	if errs.Err != nil {
		vm.log.Warn("failed to update metrics", zap.Error(errs.Err))
	}

	for _, event := range result.Events {
		vm.log.Info("accepted governance event",
			append([]zap.Field{zap.Uint64("height", result.Height)}, event.ZapFields()...)...,
		)
	}
	return result, nil
}

func (vm *VM) issue(tx *txs.Tx) (*Result, governance.Action, error) {
	block := vm.nextBlock()
	diff, err := state.NewDiff(vm.state)
	if err != nil {
		return nil, nil, err
	}
	config, err := diff.GetConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't get config: %w", err)
	}
	ledger := token.NewLedger(config.Custody, diff)

	txExecutor, err := executor.Execute(vm.backend, diff, ledger, block, tx)
	if err != nil {
		return nil, nil, err
	}

	diff.SetLastBlock(block)
	if err := diff.Apply(vm.state); err != nil {
		return nil, nil, fmt.Errorf("failed to apply state diff: %w", err)
	}
	if err := vm.state.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit state: %w", err)
	}
	return &Result{
		Height:     block.Height,
		ProposalID: txExecutor.ProposalID,
		Events:     txExecutor.Events,
	}, txExecutor.ExecutedAction, nil
}

// CreateHandlers returns the JSON-RPC handlers of the vm by endpoint.
func (vm *VM) CreateHandlers() (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(vm.metrics.InterceptRequest)
	server.RegisterAfterFunc(vm.metrics.AfterRequest)
	if err := server.RegisterService(&Service{vm: vm}, Name); err != nil {
		return nil, err
	}
	return map[string]http.Handler{
		"/ext/" + Name: server,
	}, nil
}

func (vm *VM) Shutdown() error {
	if vm.state == nil {
		return nil
	}

	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.state.Close()
}
