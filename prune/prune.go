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

// Package prune tracks how far historical chain data has been pruned, one
// checkpoint per prunable data segment.
package prune

import "fmt"

// Segment names a class of prunable historical data.
type Segment string

const (
	SegmentSenderRecovery    Segment = "SenderRecovery"
	SegmentTransactionLookup Segment = "TransactionLookup"
	SegmentReceipts          Segment = "Receipts"
	SegmentContractLogs      Segment = "ContractLogs"
	SegmentAccountHistory    Segment = "AccountHistory"
	SegmentStorageHistory    Segment = "StorageHistory"
	SegmentHeaders           Segment = "Headers"
	SegmentTransactions      Segment = "Transactions"
)

// AllSegments lists every prunable segment.
var AllSegments = []Segment{
	SegmentSenderRecovery,
	SegmentTransactionLookup,
	SegmentReceipts,
	SegmentContractLogs,
	SegmentAccountHistory,
	SegmentStorageHistory,
	SegmentHeaders,
	SegmentTransactions,
}

// ModeType discriminates the pruning policies a segment can run under.
type ModeType string

const (
	// ModeTypeFull prunes everything up to the chain tip.
	ModeTypeFull ModeType = "full"
	// ModeTypeDistance keeps the most recent Value blocks behind the tip.
	ModeTypeDistance ModeType = "distance"
	// ModeTypeBefore prunes all data of blocks below Value.
	ModeTypeBefore ModeType = "before"
)

// Mode is the pruning policy a segment's checkpoint was written under.
type Mode struct {
	Type  ModeType `json:"type"`
	Value uint64   `json:"value,omitempty"`
}

// ModeFull returns the prune-everything policy.
func ModeFull() Mode { return Mode{Type: ModeTypeFull} }

// ModeDistance returns a policy keeping the last distance blocks.
func ModeDistance(distance uint64) Mode {
	return Mode{Type: ModeTypeDistance, Value: distance}
}

// ModeBefore returns a policy pruning all blocks below the given number.
func ModeBefore(block uint64) Mode {
	return Mode{Type: ModeTypeBefore, Value: block}
}

// PruneTarget returns the highest block number that may be pruned given the
// current chain tip. The boolean is false when the policy permits no pruning
// yet (the chain is shorter than the configured distance, or the policy is
// unset).
func (m Mode) PruneTarget(tip uint64) (uint64, bool) {
	switch m.Type {
	case ModeTypeFull:
		return tip, true
	case ModeTypeDistance:
		if m.Value > tip {
			return 0, false
		}
		return tip - m.Value, true
	case ModeTypeBefore:
		if m.Value == 0 {
			return 0, false
		}
		return m.Value - 1, true
	}
	return 0, false
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m.Type {
	case ModeTypeFull:
		return "full"
	case ModeTypeDistance:
		return fmt.Sprintf("distance(%d)", m.Value)
	case ModeTypeBefore:
		return fmt.Sprintf("before(%d)", m.Value)
	}
	return "unset"
}

// Checkpoint records how far a segment has been pruned. BlockNumber and
// TxNumber are nil until the corresponding coordinate has been pruned at
// least once.
type Checkpoint struct {
	// BlockNumber is the highest pruned block, inclusive.
	BlockNumber *uint64 `json:"blockNumber,omitempty"`
	// TxNumber is the highest pruned transaction number, inclusive. Only
	// transaction-oriented segments track it.
	TxNumber *uint64 `json:"txNumber,omitempty"`
	// Mode is the policy the checkpoint was taken under.
	Mode Mode `json:"mode"`
}
