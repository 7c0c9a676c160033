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
	"testing"
)

func TestPruneTarget(t *testing.T) {
	tests := []struct {
		mode   Mode
		tip    uint64
		target uint64
		ok     bool
	}{
		// Full pruning always reaches the tip.
		{ModeFull(), 0, 0, true},
		{ModeFull(), 100, 100, true},
		// Distance keeps the most recent blocks and yields nothing while the
		// chain is still shorter than the window.
		{ModeDistance(32), 100, 68, true},
		{ModeDistance(32), 32, 0, true},
		{ModeDistance(32), 31, 0, false},
		{ModeDistance(200), 100, 0, false},
		{ModeDistance(0), 100, 100, true},
		// Before prunes strictly below the marker block.
		{ModeBefore(0), 100, 0, false},
		{ModeBefore(1), 100, 0, true},
		{ModeBefore(90), 100, 89, true},
		// The zero Mode permits nothing.
		{Mode{}, 100, 0, false},
	}
	for _, tt := range tests {
		target, ok := tt.mode.PruneTarget(tt.tip)
		if target != tt.target || ok != tt.ok {
			t.Errorf("%s.PruneTarget(%d) = %d, %v, want %d, %v",
				tt.mode, tt.tip, target, ok, tt.target, tt.ok)
		}
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeFull(), "full"},
		{ModeDistance(32), "distance(32)"},
		{ModeBefore(1_000_000), "before(1000000)"},
		{Mode{}, "unset"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode%+v.String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestModeJSON(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeDistance(32), `{"type":"distance","value":32}`},
		{ModeBefore(90), `{"type":"before","value":90}`},
		{ModeFull(), `{"type":"full"}`}, // the zero value is elided
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.mode)
		if err != nil {
			t.Fatalf("failed to encode %s: %v", tt.mode, err)
		}
		if string(data) != tt.want {
			t.Errorf("encoded %s as %s, want %s", tt.mode, data, tt.want)
		}
		var decoded Mode
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("failed to decode %s: %v", data, err)
		}
		if decoded != tt.mode {
			t.Errorf("decoded %s as %+v, want %+v", data, decoded, tt.mode)
		}
	}
}

func TestCheckpointJSON(t *testing.T) {
	block, tx := uint64(500), uint64(21_000)
	checkpoint := Checkpoint{
		BlockNumber: &block,
		TxNumber:    &tx,
		Mode:        ModeDistance(32),
	}
	data, err := json.Marshal(checkpoint)
	if err != nil {
		t.Fatalf("failed to encode checkpoint: %v", err)
	}
	want := `{"blockNumber":500,"txNumber":21000,"mode":{"type":"distance","value":32}}`
	if string(data) != want {
		t.Errorf("encoded checkpoint as %s, want %s", data, want)
	}
	// Coordinates a segment never pruned stay out of the record entirely.
	data, err = json.Marshal(Checkpoint{Mode: ModeFull()})
	if err != nil {
		t.Fatalf("failed to encode checkpoint: %v", err)
	}
	if want := `{"mode":{"type":"full"}}`; string(data) != want {
		t.Errorf("encoded empty checkpoint as %s, want %s", data, want)
	}
}
