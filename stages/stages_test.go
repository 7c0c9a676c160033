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

import "testing"

func TestParseStage(t *testing.T) {
	tests := []struct {
		name string
		want SyncStage
	}{
		{"headers", Headers},
		{"Bodies", Bodies},
		{"senders", SenderRecovery},
		{"sender-recovery", SenderRecovery},
		{"SenderRecovery", SenderRecovery},
		{"execution", Execution},
		{"account-hashing", AccountHashing},
		{"storage-hashing", StorageHashing},
		{"merkle", MerkleExecute},
		{"merkle-execute", MerkleExecute},
		{"merkle-unwind", MerkleUnwind},
		{"tx-lookup", TransactionLookup},
		{"TransactionLookup", TransactionLookup},
		{"account-history", IndexAccountHistory},
		{"index-account-history", IndexAccountHistory},
		{"storage-history", IndexStorageHistory},
		{"total-difficulty", TotalDifficulty},
		{"finish", Finish},
	}
	for _, tt := range tests {
		stage, ok := ParseStage(tt.name)
		if !ok || stage != tt.want {
			t.Errorf("ParseStage(%q) = %s, %v, want %s", tt.name, stage, ok, tt.want)
		}
	}
	for _, name := range []string{"", "unknown", "merkle-execute-unwind", "header", "hashing"} {
		if stage, ok := ParseStage(name); ok {
			t.Errorf("ParseStage(%q) accepted as %s", name, stage)
		}
	}
}

func TestAllStagesCoversResettableSet(t *testing.T) {
	seen := make(map[SyncStage]bool, len(AllStages))
	for _, stage := range AllStages {
		if seen[stage] {
			t.Fatalf("stage %s listed twice", stage)
		}
		seen[stage] = true
		if parsed, ok := ParseStage(string(stage)); !ok || parsed != stage {
			t.Errorf("stage %s does not round-trip through ParseStage", stage)
		}
	}
	if AllStages[len(AllStages)-1] != Finish {
		t.Fatalf("pipeline order must end at %s", Finish)
	}
}
