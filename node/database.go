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

package node

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/pebble"
	"github.com/ethereum/go-ethereum/log"
)

// OpenDatabase opens the node's key-value database. Nodes without a data
// directory are ephemeral and get a memory database instead of a persistent
// one. The engine choice follows the configuration:
//
//	                   DBEngine == ""        DBEngine != ""
//	                +----------------------------------------
//	db non-existent |  pebble default   |  configured engine
//	db existent     |  engine from db   |  configured engine (if compatible)
func OpenDatabase(config *Config, cache, handles int, readonly bool) (ethdb.Database, error) {
	if config.DataDir == "" {
		return rawdb.NewMemoryDatabase(), nil
	}
	// Reject any unsupported database type
	if len(config.DBEngine) != 0 && config.DBEngine != rawdb.DBLeveldb && config.DBEngine != rawdb.DBPebble {
		return nil, fmt.Errorf("unknown db.engine %v", config.DBEngine)
	}
	// Retrieve any pre-existing database's type and use that or the requested one
	// as long as there's no conflict between the two types
	dir := config.ResolvePath(datadirChainData)
	existingDb := rawdb.PreexistingDatabase(dir)
	if len(existingDb) != 0 && len(config.DBEngine) != 0 && config.DBEngine != existingDb {
		return nil, fmt.Errorf("db.engine choice was %v but found pre-existing %v database in specified data directory", config.DBEngine, existingDb)
	}
	if config.DBEngine == rawdb.DBLeveldb || existingDb == rawdb.DBLeveldb {
		log.Info("Using leveldb as the backing database")
		return newLevelDBDatabase(dir, cache, handles, readonly)
	}
	// No pre-existing database, no user-requested one either. Default to pebble.
	log.Info("Using pebble as the backing database")
	return newPebbleDBDatabase(dir, cache, handles, readonly)
}

// newLevelDBDatabase creates a persistent leveldb backed key-value database.
func newLevelDBDatabase(file string, cache int, handles int, readonly bool) (ethdb.Database, error) {
	db, err := leveldb.New(file, cache, handles, "gantry/db/chaindata/", readonly)
	if err != nil {
		return nil, err
	}
	return rawdb.NewDatabase(db), nil
}

// newPebbleDBDatabase creates a persistent pebble backed key-value database.
func newPebbleDBDatabase(file string, cache int, handles int, readonly bool) (ethdb.Database, error) {
	db, err := pebble.New(file, cache, handles, "gantry/db/chaindata/", readonly)
	if err != nil {
		return nil, err
	}
	return rawdb.NewDatabase(db), nil
}
