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

package stages

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

// Reset drops a sync stage back to genesis: the tables the stage owns are
// cleared, its checkpoint is rewritten to zero and, for stages anchored to
// the chain start, the genesis-derived header or state rows are reinserted.
// The shared Finish checkpoint is zeroed along with the stage's own so the
// pipeline knows the chain head has to be re-derived.
//
// Stages that produce immutable history segment files (Headers, Bodies,
// Execution) additionally have every stored segment file of their kind
// removed from segmentsDir, since a stage restarting from block zero
// invalidates all of them.
//
// A stage outside the recognized set performs no database writes; the
// operation reports so and succeeds.
func Reset(db ethdb.KeyValueStore, stage SyncStage, genesis *core.Genesis, segmentsDir string) error {
	switch stage {
	case Bodies, Execution, TotalDifficulty, TransactionLookup:
		if genesis == nil {
			return fmt.Errorf("reset of %s stage requires a chain definition", stage)
		}
	}
	handled := true
	switch stage {
	case Bodies:
		err := clearTables(db, blockBodyPrefix, transactionPrefix, txBlockPrefix, ommersPrefix, withdrawalsPrefix)
		if err != nil {
			return err
		}
		WriteStageCheckpoint(db, Bodies, 0)
		WriteGenesisHeader(db, genesis)

	case SenderRecovery:
		if err := clearTables(db, txSenderPrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, SenderRecovery, 0)

	case Execution:
		err := clearTables(db, accountStatePrefix, storageStatePrefix, accountChangesPrefix,
			storageChangesPrefix, bytecodePrefix, receiptsPrefix)
		if err != nil {
			return err
		}
		WriteStageCheckpoint(db, Execution, 0)
		WriteGenesisState(db, genesis)

	case AccountHashing:
		if err := clearTables(db, hashedAccountPrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, AccountHashing, 0)

	case StorageHashing:
		if err := clearTables(db, hashedStoragePrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, StorageHashing, 0)

	case MerkleExecute, MerkleUnwind:
		if err := clearTables(db, accountTriePrefix, storageTriePrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, MerkleExecute, 0)
		WriteStageCheckpoint(db, MerkleUnwind, 0)
		DeleteStageProgress(db, MerkleExecute)

	case IndexAccountHistory, IndexStorageHistory:
		if err := clearTables(db, accountHistoryPrefix, storageHistoryPrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, IndexAccountHistory, 0)
		WriteStageCheckpoint(db, IndexStorageHistory, 0)

	case TotalDifficulty:
		if err := clearTables(db, headerTDPrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, TotalDifficulty, 0)
		WriteGenesisHeader(db, genesis)

	case TransactionLookup:
		if err := clearTables(db, txLookupPrefix); err != nil {
			return err
		}
		WriteStageCheckpoint(db, TransactionLookup, 0)
		WriteGenesisHeader(db, genesis)

	default:
		log.Info("Nothing to do for stage", "stage", stage)
		handled = false
	}
	if handled {
		WriteStageCheckpoint(db, Finish, 0)
	}

	if kind := segmentKindForStage(stage); kind != "" {
		removed, err := DeleteSegmentsFrom(segmentsDir, kind, 0)
		if err != nil {
			return fmt.Errorf("failed to delete %s segment files: %w", kind, err)
		}
		if removed > 0 {
			log.Info("Deleted history segment files", "kind", kind, "files", removed)
		}
	}
	return nil
}

// clearTables removes every record of each given table prefix in turn.
func clearTables(db ethdb.KeyValueRangeDeleter, prefixes ...[]byte) error {
	for _, prefix := range prefixes {
		if err := clearTable(db, prefix); err != nil {
			return err
		}
	}
	return nil
}
