// Copyright 2026 The gantry Authors
// This file is part of the gantry library.
//
// The gantry library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gantry library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gantry library. If not, see <http://www.gnu.org/licenses/>.

package prune

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/ethdb"
)

// pruneCheckpointPrefix + segment name -> checkpoint JSON
//
// The prefix starts with a byte unused by the stage-owned table prefixes,
// keeping the checkpoints out of reach of the table range deletions.
var pruneCheckpointPrefix = []byte("PruneCheckpoint")

// checkpointKey = pruneCheckpointPrefix + segment name
func checkpointKey(segment Segment) []byte {
	return append(pruneCheckpointPrefix, []byte(segment)...)
}

// CheckpointReader fetches prune checkpoints.
type CheckpointReader interface {
	// PruneCheckpoint returns the stored checkpoint of the given segment,
	// or nil when the segment has never been pruned.
	PruneCheckpoint(segment Segment) (*Checkpoint, error)
}

// CheckpointWriter persists prune checkpoints.
type CheckpointWriter interface {
	// SavePruneCheckpoint stores the checkpoint of the given segment,
	// replacing any previous one.
	SavePruneCheckpoint(segment Segment, checkpoint Checkpoint) error
}

// Store is a database-backed prune checkpoint store. Checkpoints live in the
// same key-value database as the chain data, as one JSON record per segment.
type Store struct {
	db ethdb.KeyValueStore
}

var (
	_ CheckpointReader = (*Store)(nil)
	_ CheckpointWriter = (*Store)(nil)
)

// NewStore creates a prune checkpoint store on top of the given database.
func NewStore(db ethdb.KeyValueStore) *Store {
	return &Store{db: db}
}

// PruneCheckpoint implements CheckpointReader.
func (s *Store) PruneCheckpoint(segment Segment) (*Checkpoint, error) {
	data, _ := s.db.Get(checkpointKey(segment))
	if len(data) == 0 {
		return nil, nil
	}
	checkpoint := new(Checkpoint)
	if err := json.Unmarshal(data, checkpoint); err != nil {
		return nil, fmt.Errorf("invalid prune checkpoint of segment %s: %w", segment, err)
	}
	return checkpoint, nil
}

// SavePruneCheckpoint implements CheckpointWriter.
func (s *Store) SavePruneCheckpoint(segment Segment, checkpoint Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to encode prune checkpoint of segment %s: %w", segment, err)
	}
	return s.db.Put(checkpointKey(segment), data)
}

// Checkpoints returns the stored checkpoint of every segment that has one.
func (s *Store) Checkpoints() (map[Segment]*Checkpoint, error) {
	checkpoints := make(map[Segment]*Checkpoint)
	for _, segment := range AllSegments {
		checkpoint, err := s.PruneCheckpoint(segment)
		if err != nil {
			return nil, err
		}
		if checkpoint != nil {
			checkpoints[segment] = checkpoint
		}
	}
	return checkpoints, nil
}
