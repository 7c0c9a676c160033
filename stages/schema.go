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
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// The fields below define the low level database schema of the stage-owned
// tables. Every table is a distinct key prefix so that one stage's data can
// be range-deleted without touching its neighbours.
var (
	// The two fixed prefixes below deliberately start with bytes unused by
	// any single byte table prefix, keeping them out of reach of the table
	// range deletions.

	// stageCheckpointPrefix + stage name -> block number (uint64 big endian)
	stageCheckpointPrefix = []byte("Checkpoint")
	// stageProgressPrefix + stage name -> opaque stage progress blob
	stageProgressPrefix = []byte("Progress")

	headerPrefix       = []byte("h") // headerPrefix + num (uint64 big endian) + hash -> header RLP
	headerHashSuffix   = []byte("n") // headerPrefix + num (uint64 big endian) + headerHashSuffix -> canonical hash
	headerNumberPrefix = []byte("H") // headerNumberPrefix + hash -> num (uint64 big endian)
	headerTDPrefix     = []byte("t") // headerTDPrefix + num (uint64 big endian) + hash -> total difficulty RLP

	blockBodyPrefix   = []byte("b") // blockBodyPrefix + num (uint64 big endian) + hash -> body index RLP
	transactionPrefix = []byte("x") // transactionPrefix + tx num (uint64 big endian) -> transaction RLP
	txBlockPrefix     = []byte("m") // txBlockPrefix + tx num (uint64 big endian) -> block num (uint64 big endian)
	ommersPrefix      = []byte("u") // ommersPrefix + num (uint64 big endian) + hash -> ommer headers RLP
	withdrawalsPrefix = []byte("w") // withdrawalsPrefix + num (uint64 big endian) + hash -> withdrawals RLP

	txSenderPrefix = []byte("s") // txSenderPrefix + tx num (uint64 big endian) -> sender address
	txLookupPrefix = []byte("l") // txLookupPrefix + tx hash -> block num (uint64 big endian)

	accountStatePrefix   = []byte("a") // accountStatePrefix + address -> account RLP
	storageStatePrefix   = []byte("o") // storageStatePrefix + address + slot hash -> slot value, zeroes trimmed
	accountChangesPrefix = []byte("c") // accountChangesPrefix + block num (uint64 big endian) + address -> previous account RLP
	storageChangesPrefix = []byte("d") // storageChangesPrefix + block num (uint64 big endian) + address + slot hash -> previous value
	bytecodePrefix       = []byte("B") // bytecodePrefix + code hash -> contract bytecode
	receiptsPrefix       = []byte("r") // receiptsPrefix + num (uint64 big endian) -> block receipts RLP

	hashedAccountPrefix = []byte("A") // hashedAccountPrefix + address hash -> account RLP
	hashedStoragePrefix = []byte("O") // hashedStoragePrefix + address hash + slot hash -> slot value, zeroes trimmed

	accountTriePrefix = []byte("T") // accountTriePrefix + node path -> trie node
	storageTriePrefix = []byte("S") // storageTriePrefix + address hash + node path -> trie node

	accountHistoryPrefix = []byte("i") // accountHistoryPrefix + address + shard (uint64 big endian) -> block index
	storageHistoryPrefix = []byte("j") // storageHistoryPrefix + address + slot hash + shard (uint64 big endian) -> block index
)

// encodeBlockNumber encodes a block number as big endian uint64.
func encodeBlockNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// stageCheckpointKey = stageCheckpointPrefix + stage name
func stageCheckpointKey(stage SyncStage) []byte {
	return append(stageCheckpointPrefix, []byte(stage)...)
}

// stageProgressKey = stageProgressPrefix + stage name
func stageProgressKey(stage SyncStage) []byte {
	return append(stageProgressPrefix, []byte(stage)...)
}

// headerKey = headerPrefix + num (uint64 big endian) + hash
func headerKey(number uint64, hash common.Hash) []byte {
	return append(append(headerPrefix, encodeBlockNumber(number)...), hash.Bytes()...)
}

// headerHashKey = headerPrefix + num (uint64 big endian) + headerHashSuffix
func headerHashKey(number uint64) []byte {
	return append(append(headerPrefix, encodeBlockNumber(number)...), headerHashSuffix...)
}

// headerNumberKey = headerNumberPrefix + hash
func headerNumberKey(hash common.Hash) []byte {
	return append(headerNumberPrefix, hash.Bytes()...)
}

// headerTDKey = headerTDPrefix + num (uint64 big endian) + hash
func headerTDKey(number uint64, hash common.Hash) []byte {
	return append(append(headerTDPrefix, encodeBlockNumber(number)...), hash.Bytes()...)
}

// accountStateKey = accountStatePrefix + address
func accountStateKey(addr common.Address) []byte {
	return append(accountStatePrefix, addr.Bytes()...)
}

// storageStateKey = storageStatePrefix + address + slot hash
func storageStateKey(addr common.Address, slot common.Hash) []byte {
	return append(append(storageStatePrefix, addr.Bytes()...), slot.Bytes()...)
}

// bytecodeKey = bytecodePrefix + code hash
func bytecodeKey(codeHash common.Hash) []byte {
	return append(bytecodePrefix, codeHash.Bytes()...)
}
