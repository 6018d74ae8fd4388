// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

const ballotKeyLen = wrappers.LongLen + ids.ShortIDLen

type ballotKey struct {
	proposalID uint64
	voter      ids.ShortID
}

// BallotEntry is a ballot together with its voter.
type BallotEntry struct {
	Voter  ids.ShortID
	Ballot *governance.Ballot
}

// bytes returns the proposal id in big-endian followed by the voter, so
// ballots of one proposal are adjacent and ordered by voter.
func (k ballotKey) bytes() []byte {
	key := make([]byte, 0, ballotKeyLen)
	key = append(key, database.PackUInt64(k.proposalID)...)
	return append(key, k.voter[:]...)
}

func (s *state) GetBallot(proposalID uint64, voter ids.ShortID) (*governance.Ballot, error) {
	key := ballotKey{proposalID: proposalID, voter: voter}
	if ballot, modified := s.modifiedBallots[key]; modified {
		ballotCopy := *ballot
		return &ballotCopy, nil
	}

	ballotBytes, err := s.ballotDB.Get(key.bytes())
	if err != nil {
		return nil, err
	}
	ballot := &governance.Ballot{}
	if _, err := governance.Codec.Unmarshal(ballotBytes, ballot); err != nil {
		return nil, fmt.Errorf("failed to parse ballot of %s on %d: %w", voter, proposalID, err)
	}
	return ballot, nil
}

func (s *state) PutBallot(proposalID uint64, voter ids.ShortID, ballot *governance.Ballot) {
	ballotCopy := *ballot
	s.modifiedBallots[ballotKey{proposalID: proposalID, voter: voter}] = &ballotCopy
}

// ListBallots returns up to [limit] committed ballots of [proposalID] cast by
// voters above [startAfter], in ascending voter order.
func (s *state) ListBallots(proposalID uint64, startAfter ids.ShortID, limit int) ([]BallotEntry, error) {
	start := ballotKey{proposalID: proposalID, voter: startAfter}
	it := s.ballotDB.NewIteratorWithStartAndPrefix(start.bytes(), database.PackUInt64(proposalID))
	defer it.Release()

	entries := []BallotEntry{}
	for len(entries) < limit && it.Next() {
		key := it.Key()
		if len(key) != ballotKeyLen {
			return nil, fmt.Errorf("unexpected ballot key length %d", len(key))
		}
		voter, err := ids.ToShortID(key[wrappers.LongLen:])
		if err != nil {
			return nil, err
		}
		if voter == startAfter {
			continue
		}
		ballot := &governance.Ballot{}
		if _, err := governance.Codec.Unmarshal(it.Value(), ballot); err != nil {
			return nil, fmt.Errorf("failed to parse ballot of %s on %d: %w", voter, proposalID, err)
		}
		entries = append(entries, BallotEntry{Voter: voter, Ballot: ballot})
	}
	return entries, it.Error()
}

func (s *state) writeBallots() error {
	for key, ballot := range s.modifiedBallots {
		delete(s.modifiedBallots, key)

		ballotBytes, err := governance.Codec.Marshal(governance.CodecVersion, ballot)
		if err != nil {
			return fmt.Errorf("failed to serialize ballot: %w", err)
		}
		if err := s.ballotDB.Put(key.bytes(), ballotBytes); err != nil {
			return fmt.Errorf("failed to write ballot: %w", err)
		}
	}
	return nil
}
