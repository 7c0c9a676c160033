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

// Package stages defines the identity, on-disk schema and maintenance
// operations of the staged-sync phases a pipeline component works through.
//
// Each sync stage owns a checkpoint record (the highest block it has fully
// processed) and a set of database tables it alone writes. The package keeps
// those tables addressable per stage so that a single stage can be dropped
// back to genesis without disturbing the others.
package stages

import "strings"

// SyncStage identifies one checkpointed phase of staged sync.
type SyncStage string

const (
	Headers             SyncStage = "Headers"
	Bodies              SyncStage = "Bodies"
	SenderRecovery      SyncStage = "SenderRecovery"
	Execution           SyncStage = "Execution"
	AccountHashing      SyncStage = "AccountHashing"
	StorageHashing      SyncStage = "StorageHashing"
	MerkleExecute       SyncStage = "MerkleExecute"
	MerkleUnwind        SyncStage = "MerkleUnwind"
	TransactionLookup   SyncStage = "TransactionLookup"
	IndexAccountHistory SyncStage = "IndexAccountHistory"
	IndexStorageHistory SyncStage = "IndexStorageHistory"
	TotalDifficulty     SyncStage = "TotalDifficulty"
	Finish              SyncStage = "Finish"
)

// AllStages lists every sync stage in pipeline execution order.
var AllStages = []SyncStage{
	Headers,
	TotalDifficulty,
	Bodies,
	SenderRecovery,
	Execution,
	AccountHashing,
	StorageHashing,
	MerkleExecute,
	MerkleUnwind,
	TransactionLookup,
	IndexAccountHistory,
	IndexStorageHistory,
	Finish,
}

// String implements fmt.Stringer.
func (s SyncStage) String() string { return string(s) }

// ParseStage resolves a user-supplied stage name to a SyncStage. Matching is
// case-insensitive and accepts the dashed spellings used on the command line
// ("sender-recovery", "tx-lookup"). The boolean reports whether the name was
// recognized. Umbrella spellings covering several stages at once ("hashing")
// are not single stages and are rejected here; the stage command expands them
// before calling ParseStage.
func ParseStage(name string) (SyncStage, bool) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "headers":
		return Headers, true
	case "bodies":
		return Bodies, true
	case "senders", "senderrecovery":
		return SenderRecovery, true
	case "execution":
		return Execution, true
	case "accounthashing":
		return AccountHashing, true
	case "storagehashing":
		return StorageHashing, true
	case "merkle", "merkleexecute":
		return MerkleExecute, true
	case "merkleunwind":
		return MerkleUnwind, true
	case "txlookup", "transactionlookup":
		return TransactionLookup, true
	case "accounthistory", "indexaccounthistory":
		return IndexAccountHistory, true
	case "storagehistory", "indexstoragehistory":
		return IndexStorageHistory, true
	case "totaldifficulty":
		return TotalDifficulty, true
	case "finish":
		return Finish, true
	}
	return "", false
}
