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
	"testing"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/stretchr/testify/require"
)

func TestStoreMissingCheckpoint(t *testing.T) {
	store := NewStore(rawdb.NewMemoryDatabase())

	checkpoint, err := store.PruneCheckpoint(SegmentReceipts)
	require.NoError(t, err)
	require.Nil(t, checkpoint, "never-pruned segment must read as no checkpoint")
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(rawdb.NewMemoryDatabase())

	block, tx := uint64(500), uint64(21_000)
	saved := Checkpoint{
		BlockNumber: &block,
		TxNumber:    &tx,
		Mode:        ModeDistance(32),
	}
	require.NoError(t, store.SavePruneCheckpoint(SegmentTransactionLookup, saved))

	loaded, err := store.PruneCheckpoint(SegmentTransactionLookup)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, saved, *loaded)

	// A rerun of the pruner replaces the record wholesale. The old TxNumber
	// must not bleed into the new checkpoint.
	newBlock := uint64(800)
	replacement := Checkpoint{BlockNumber: &newBlock, Mode: ModeFull()}
	require.NoError(t, store.SavePruneCheckpoint(SegmentTransactionLookup, replacement))

	loaded, err = store.PruneCheckpoint(SegmentTransactionLookup)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, replacement, *loaded)
	require.Nil(t, loaded.TxNumber)
}

func TestStoreCheckpoints(t *testing.T) {
	store := NewStore(rawdb.NewMemoryDatabase())

	checkpoints, err := store.Checkpoints()
	require.NoError(t, err)
	require.Empty(t, checkpoints)

	block := uint64(128)
	require.NoError(t, store.SavePruneCheckpoint(SegmentAccountHistory, Checkpoint{BlockNumber: &block, Mode: ModeDistance(64)}))
	require.NoError(t, store.SavePruneCheckpoint(SegmentReceipts, Checkpoint{Mode: ModeFull()}))

	checkpoints, err = store.Checkpoints()
	require.NoError(t, err)
	require.Len(t, checkpoints, 2)
	require.Contains(t, checkpoints, SegmentAccountHistory)
	require.Contains(t, checkpoints, SegmentReceipts)
	require.Equal(t, uint64(128), *checkpoints[SegmentAccountHistory].BlockNumber)
	require.Equal(t, ModeFull(), checkpoints[SegmentReceipts].Mode)
}

func TestStoreInvalidCheckpoint(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	store := NewStore(db)
	require.NoError(t, db.Put(checkpointKey(SegmentHeaders), []byte("{")))

	_, err := store.PruneCheckpoint(SegmentHeaders)
	require.ErrorContains(t, err, "invalid prune checkpoint of segment Headers")

	_, err = store.Checkpoints()
	require.Error(t, err, "an unreadable record must fail the full listing")
}
