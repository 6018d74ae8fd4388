// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/chain4travel/camino-foundation/vms/foundationvm/governance"
)

// Proposals are keyed by their big-endian id, so the key order is the id order.
func (s *state) GetProposal(id uint64) (*governance.Proposal, error) {
	if proposal, modified := s.modifiedProposals[id]; modified {
		proposalCopy := *proposal
		return &proposalCopy, nil
	}

	if proposal, cached := s.proposalCache.Get(id); cached {
		if proposal == nil {
			return nil, database.ErrNotFound
		}
		proposalCopy := *proposal
		return &proposalCopy, nil
	}

	proposalBytes, err := s.proposalDB.Get(database.PackUInt64(id))
	if err == database.ErrNotFound {
		s.proposalCache.Put(id, nil)
		return nil, database.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	proposal := &governance.Proposal{}
	if _, err := governance.Codec.Unmarshal(proposalBytes, proposal); err != nil {
		return nil, fmt.Errorf("failed to parse proposal %d: %w", id, err)
	}
	s.proposalCache.Put(id, proposal)

	proposalCopy := *proposal
	return &proposalCopy, nil
}

func (s *state) PutProposal(proposal *governance.Proposal) {
	proposalCopy := *proposal
	s.modifiedProposals[proposal.ID] = &proposalCopy
}

func (s *state) writeProposals() error {
	for id, proposal := range s.modifiedProposals {
		delete(s.modifiedProposals, id)

		proposalBytes, err := governance.Codec.Marshal(governance.CodecVersion, proposal)
		if err != nil {
			return fmt.Errorf("failed to serialize proposal %d: %w", id, err)
		}
		s.proposalCache.Put(id, proposal)
		if err := s.proposalDB.Put(database.PackUInt64(id), proposalBytes); err != nil {
			return fmt.Errorf("failed to write proposal %d: %w", id, err)
		}
	}
	return nil
}
