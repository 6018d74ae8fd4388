// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/cache/metercacher"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

const (
	proposalCacheSize = 1024
	voterCacheSize    = 1024
)

var (
	_ State = (*state)(nil)

	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonPrefix = []byte("singleton")
	voterPrefix     = []byte("voter")
	proposalPrefix  = []byte("proposal")
	ballotPrefix    = []byte("ballot")
	balancePrefix   = []byte("balance")

	errNotInitialized = errors.New("state is not initialized")
	errEmptyCustody   = errors.New("empty custody address")
)

// Config is the governance configuration set at genesis. It never changes.
type Config struct {
	Threshold       governance.Threshold `serialize:"true"`
	MaxVotingPeriod governance.Duration  `serialize:"true"`
	// Account holding the funds transfer actions pay out of
	Custody ids.ShortID `serialize:"true"`
}

func (c *Config) Verify() error {
	if c.Custody == ids.ShortEmpty {
		return errEmptyCustody
	}
	if err := c.Threshold.Verify(); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	if err := c.MaxVotingPeriod.Verify(); err != nil {
		return fmt.Errorf("max voting period: %w", err)
	}
	return nil
}

// Chain is the state a single call reads and modifies.
type Chain interface {
	GetConfig() (*Config, error)

	GetLastBlock() governance.BlockInfo
	SetLastBlock(block governance.BlockInfo)

	// Voters and the total weight are one aggregate: the total weight only
	// changes through UpsertVoter and RemoveVoter.
	GetTotalWeight() uint64
	GetVoter(address ids.ShortID) (*governance.Voter, error)
	UpsertVoter(address ids.ShortID, voter *governance.Voter) error
	RemoveVoter(address ids.ShortID) error

	GetNextProposalID() uint64
	SetNextProposalID(id uint64)
	GetProposal(id uint64) (*governance.Proposal, error)
	PutProposal(proposal *governance.Proposal)

	GetBallot(proposalID uint64, voter ids.ShortID) (*governance.Ballot, error)
	PutBallot(proposalID uint64, voter ids.ShortID, ballot *governance.Ballot)

	GetBalance(address ids.ShortID) (uint64, error)
	SetBalance(address ids.ShortID, balance uint64)
}

// State is the committed chain state. Listings only read committed data.
type State interface {
	Chain

	IsInitialized() (bool, error)
	SetInitialized() error
	SetConfig(config *Config)

	ListVoters(startAfter ids.ShortID, limit int) ([]VoterEntry, error)
	ListBallots(proposalID uint64, startAfter ids.ShortID, limit int) ([]BallotEntry, error)

	// Abort returns an error if the committed singletons couldn't be reloaded,
	// the in-memory singletons are stale then.
	Abort() error
	Commit() error
	CommitBatch() (database.Batch, error)
	Close() error
}

type state struct {
	baseDB *versiondb.Database

	singletonDB    database.Database
	config         *Config
	configModified bool
	totalWeight    uint64
	nextProposalID uint64
	lastBlock      governance.BlockInfo

	voterDB        database.Database
	voterCache     cache.Cacher[ids.ShortID, *governance.Voter] // nil cached means absent
	modifiedVoters map[ids.ShortID]*governance.Voter            // nil means removed

	proposalDB        database.Database
	proposalCache     cache.Cacher[uint64, *governance.Proposal]
	modifiedProposals map[uint64]*governance.Proposal

	ballotDB        database.Database
	modifiedBallots map[ballotKey]*governance.Ballot

	balanceDB        database.Database
	modifiedBalances map[ids.ShortID]uint64
}

// New returns the state stored in [db]. An initialized database is loaded.
func New(db database.Database, metricsReg prometheus.Registerer) (State, error) {
	baseDB := versiondb.New(db)

	voterCache, err := metercacher.New[ids.ShortID, *governance.Voter](
		"voter_cache",
		metricsReg,
		&cache.LRU[ids.ShortID, *governance.Voter]{Size: voterCacheSize},
	)
	if err != nil {
		return nil, err
	}
	proposalCache, err := metercacher.New[uint64, *governance.Proposal](
		"proposal_cache",
		metricsReg,
		&cache.LRU[uint64, *governance.Proposal]{Size: proposalCacheSize},
	)
	if err != nil {
		return nil, err
	}

	s := &state{
		baseDB: baseDB,

		singletonDB: prefixdb.New(singletonPrefix, baseDB),

		voterDB:        prefixdb.New(voterPrefix, baseDB),
		voterCache:     voterCache,
		modifiedVoters: make(map[ids.ShortID]*governance.Voter),

		proposalDB:        prefixdb.New(proposalPrefix, baseDB),
		proposalCache:     proposalCache,
		modifiedProposals: make(map[uint64]*governance.Proposal),

		ballotDB:        prefixdb.New(ballotPrefix, baseDB),
		modifiedBallots: make(map[ballotKey]*governance.Ballot),

		balanceDB:        prefixdb.New(balancePrefix, baseDB),
		modifiedBalances: make(map[ids.ShortID]uint64),
	}

	initialized, err := s.IsInitialized()
	if err != nil {
		return nil, err
	}
	if initialized {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
	}
	return s, nil
}

// Commit commits pending operations to baseDB. On failure every pending
// operation is dropped.
func (s *state) Commit() error {
	batch, err := s.CommitBatch()
	if err != nil {
		return s.abortAfter(err)
	}
	if err := batch.Write(); err != nil {
		return s.abortAfter(err)
	}
	s.baseDB.Abort()
	return nil
}

func (s *state) CommitBatch() (database.Batch, error) {
	if err := s.write(); err != nil {
		return nil, err
	}
	return s.baseDB.CommitBatch()
}

// Abort drops every uncommitted modification and reloads the committed
// singletons.
func (s *state) abortAfter(err error) error {
	if abortErr := s.Abort(); abortErr != nil {
		return fmt.Errorf("%w, then failed to abort: %w", err, abortErr)
	}
	return err
}

func (s *state) Abort() error {
	s.baseDB.Abort()

	s.modifiedVoters = make(map[ids.ShortID]*governance.Voter)
	s.modifiedProposals = make(map[uint64]*governance.Proposal)
	s.modifiedBallots = make(map[ballotKey]*governance.Ballot)
	s.modifiedBalances = make(map[ids.ShortID]uint64)
	s.voterCache.Flush()
	s.proposalCache.Flush()

	s.configModified = false
	if err := s.loadSingletons(); err != nil {
		return fmt.Errorf("failed to reload singletons: %w", err)
	}
	return nil
}

func (s *state) write() error {
	errs := wrappers.Errs{}
	errs.Add(
		s.writeSingletons(),
		s.writeVoters(),
		s.writeProposals(),
		s.writeBallots(),
		s.writeBalances(),
	)
	return errs.Err
}

func (s *state) load() error {
	if err := s.loadSingletons(); err != nil {
		return err
	}
	if s.config == nil {
		return errNotInitialized
	}
	return nil
}

// Close closes the underlying base database
func (s *state) Close() error {
	errs := wrappers.Errs{}
	errs.Add(
		s.singletonDB.Close(),
		s.voterDB.Close(),
		s.proposalDB.Close(),
		s.ballotDB.Close(),
		s.balanceDB.Close(),
		s.baseDB.Close(),
	)
	return errs.Err
}
