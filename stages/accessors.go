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
	"bytes"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// ReadStageCheckpoint retrieves the checkpoint of a sync stage, the highest
// block number the stage has fully processed. Missing checkpoints read as 0.
func ReadStageCheckpoint(db ethdb.KeyValueReader, stage SyncStage) uint64 {
	data, _ := db.Get(stageCheckpointKey(stage))
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteStageCheckpoint stores the checkpoint of a sync stage.
func WriteStageCheckpoint(db ethdb.KeyValueWriter, stage SyncStage, number uint64) {
	if err := db.Put(stageCheckpointKey(stage), encodeBlockNumber(number)); err != nil {
		log.Crit("Failed to store sync stage checkpoint", "stage", stage, "err", err)
	}
}

// ReadStageProgress retrieves the opaque mid-stage progress blob of a sync
// stage, or nil when the stage has none recorded.
func ReadStageProgress(db ethdb.KeyValueReader, stage SyncStage) []byte {
	data, _ := db.Get(stageProgressKey(stage))
	if len(data) == 0 {
		return nil
	}
	return data
}

// WriteStageProgress stores the mid-stage progress blob of a sync stage.
func WriteStageProgress(db ethdb.KeyValueWriter, stage SyncStage, progress []byte) {
	if err := db.Put(stageProgressKey(stage), progress); err != nil {
		log.Crit("Failed to store sync stage progress", "stage", stage, "err", err)
	}
}

// DeleteStageProgress removes the mid-stage progress blob of a sync stage.
func DeleteStageProgress(db ethdb.KeyValueWriter, stage SyncStage) {
	if err := db.Delete(stageProgressKey(stage)); err != nil {
		log.Crit("Failed to delete sync stage progress", "stage", stage, "err", err)
	}
}

// ReadCanonicalHash retrieves the hash assigned to a canonical block number.
func ReadCanonicalHash(db ethdb.KeyValueReader, number uint64) common.Hash {
	data, _ := db.Get(headerHashKey(number))
	if len(data) == 0 {
		return common.Hash{}
	}
	return common.BytesToHash(data)
}

// ReadHeaderNumber returns the block number assigned to a header hash.
func ReadHeaderNumber(db ethdb.KeyValueReader, hash common.Hash) *uint64 {
	data, _ := db.Get(headerNumberKey(hash))
	if len(data) != 8 {
		return nil
	}
	number := binary.BigEndian.Uint64(data)
	return &number
}

// ReadHeader retrieves the block header corresponding to the hash, nil if
// none is stored.
func ReadHeader(db ethdb.KeyValueReader, number uint64, hash common.Hash) *types.Header {
	data, _ := db.Get(headerKey(number, hash))
	if len(data) == 0 {
		return nil
	}
	header := new(types.Header)
	if err := rlp.DecodeBytes(data, header); err != nil {
		log.Error("Invalid block header RLP", "hash", hash, "err", err)
		return nil
	}
	return header
}

// ReadTd retrieves a block's total difficulty corresponding to the hash.
func ReadTd(db ethdb.KeyValueReader, number uint64, hash common.Hash) *big.Int {
	data, _ := db.Get(headerTDKey(number, hash))
	if len(data) == 0 {
		return nil
	}
	td := new(big.Int)
	if err := rlp.DecodeBytes(data, td); err != nil {
		log.Error("Invalid block total difficulty RLP", "hash", hash, "err", err)
		return nil
	}
	return td
}

// ReadAccount retrieves an account from the plain state table, nil if the
// address has no stored account.
func ReadAccount(db ethdb.KeyValueReader, addr common.Address) *types.StateAccount {
	data, _ := db.Get(accountStateKey(addr))
	if len(data) == 0 {
		return nil
	}
	account := new(types.StateAccount)
	if err := rlp.DecodeBytes(data, account); err != nil {
		log.Error("Invalid account RLP", "address", addr, "err", err)
		return nil
	}
	return account
}

// ReadStorageSlot retrieves a storage slot value from the plain state table.
// The value is returned as stored, with leading zeroes trimmed.
func ReadStorageSlot(db ethdb.KeyValueReader, addr common.Address, slot common.Hash) []byte {
	data, _ := db.Get(storageStateKey(addr, slot))
	return data
}

// ReadCode retrieves the contract code of the provided code hash.
func ReadCode(db ethdb.KeyValueReader, codeHash common.Hash) []byte {
	data, _ := db.Get(bytecodeKey(codeHash))
	return data
}

// clearTable removes every record stored under the given table prefix. The
// leveldb backend caps how many keys a single DeleteRange may remove, so the
// call is repeated until the whole range is gone.
func clearTable(db ethdb.KeyValueRangeDeleter, prefix []byte) error {
	end := prefixEnd(prefix)
	for {
		err := db.DeleteRange(prefix, end)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, leveldb.ErrTooManyKeys):
			continue
		default:
			return err
		}
	}
}

// prefixEnd returns the smallest key strictly greater than every key that
// begins with prefix, or nil when no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
