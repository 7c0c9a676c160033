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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// WriteGenesisHeader derives the genesis block from the chain definition and
// stores its header, canonical hash, number index and total difficulty rows.
// A stage reset calls this so the chain anchor survives the wiped tables.
func WriteGenesisHeader(db ethdb.KeyValueWriter, genesis *core.Genesis) {
	block := genesis.ToBlock()
	hash, number := block.Hash(), block.NumberU64()

	data, err := rlp.EncodeToBytes(block.Header())
	if err != nil {
		log.Crit("Failed to RLP encode genesis header", "err", err)
	}
	if err := db.Put(headerKey(number, hash), data); err != nil {
		log.Crit("Failed to store genesis header", "err", err)
	}
	if err := db.Put(headerHashKey(number), hash.Bytes()); err != nil {
		log.Crit("Failed to store genesis canonical hash", "err", err)
	}
	if err := db.Put(headerNumberKey(hash), encodeBlockNumber(number)); err != nil {
		log.Crit("Failed to store genesis hash to number mapping", "err", err)
	}
	td, err := rlp.EncodeToBytes(block.Difficulty())
	if err != nil {
		log.Crit("Failed to RLP encode genesis total difficulty", "err", err)
	}
	if err := db.Put(headerTDKey(number, hash), td); err != nil {
		log.Crit("Failed to store genesis total difficulty", "err", err)
	}
}

// WriteGenesisState stores the genesis allocation into the plain state
// tables: one account row per allocated address, bytecode rows for contract
// accounts and one row per preset storage slot.
func WriteGenesisState(db ethdb.KeyValueWriter, genesis *core.Genesis) {
	for addr, alloc := range genesis.Alloc {
		account := types.StateAccount{
			Nonce:    alloc.Nonce,
			Balance:  new(uint256.Int),
			Root:     types.EmptyRootHash,
			CodeHash: types.EmptyCodeHash.Bytes(),
		}
		if alloc.Balance != nil {
			account.Balance, _ = uint256.FromBig(alloc.Balance)
		}
		if len(alloc.Code) > 0 {
			codeHash := crypto.Keccak256Hash(alloc.Code)
			account.CodeHash = codeHash.Bytes()
			if err := db.Put(bytecodeKey(codeHash), alloc.Code); err != nil {
				log.Crit("Failed to store genesis bytecode", "err", err)
			}
		}
		data, err := rlp.EncodeToBytes(&account)
		if err != nil {
			log.Crit("Failed to RLP encode genesis account", "err", err)
		}
		if err := db.Put(accountStateKey(addr), data); err != nil {
			log.Crit("Failed to store genesis account", "err", err)
		}
		for slot, value := range alloc.Storage {
			if value == (common.Hash{}) {
				continue
			}
			if err := db.Put(storageStateKey(addr, slot), common.TrimLeftZeroes(value.Bytes())); err != nil {
				log.Crit("Failed to store genesis storage slot", "err", err)
			}
		}
	}
}
