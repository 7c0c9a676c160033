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
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigEndpoints(t *testing.T) {
	cfg := Config{}
	if ep := cfg.HTTPEndpoint(); ep != "" {
		t.Fatalf("HTTP endpoint %q resolved without a host", ep)
	}
	if cfg.ExtRPCEnabled() {
		t.Fatalf("external RPC reported enabled without a host")
	}
	cfg.HTTPHost, cfg.HTTPPort = "127.0.0.1", 8545
	if ep := cfg.HTTPEndpoint(); ep != "127.0.0.1:8545" {
		t.Fatalf("HTTP endpoint = %q, want 127.0.0.1:8545", ep)
	}
	if !cfg.ExtRPCEnabled() {
		t.Fatalf("external RPC reported disabled with a host set")
	}

	if ep := cfg.AuthEndpoint(); ep != "" {
		t.Fatalf("auth endpoint %q resolved without a jwt secret", ep)
	}
	cfg.JWTSecret, cfg.AuthPort = "/tmp/jwt.hex", 8551
	if ep := cfg.AuthEndpoint(); ep != DefaultAuthHost+":8551" {
		t.Fatalf("auth endpoint = %q, want default host", ep)
	}
	cfg.AuthAddr = "0.0.0.0"
	if ep := cfg.AuthEndpoint(); ep != "0.0.0.0:8551" {
		t.Fatalf("auth endpoint = %q, want configured host", ep)
	}
}

func TestConfigResolvePath(t *testing.T) {
	cfg := Config{Name: "gantry"}
	if p := cfg.ResolvePath("chaindata"); p != "" {
		t.Fatalf("ephemeral node resolved path %q", p)
	}
	cfg.DataDir = filepath.Join("/", "data")
	if p, want := cfg.ResolvePath("chaindata"), filepath.Join("/", "data", "gantry", "chaindata"); p != want {
		t.Fatalf("resolved path = %q, want %q", p, want)
	}
	abs := filepath.Join("/", "elsewhere", "db")
	if p := cfg.ResolvePath(abs); p != abs {
		t.Fatalf("absolute path rewritten to %q", p)
	}
	if p, want := cfg.SegmentsDir(), filepath.Join("/", "data", "gantry", "segments"); p != want {
		t.Fatalf("segments dir = %q, want %q", p, want)
	}
}

func TestNodeName(t *testing.T) {
	cfg := Config{Name: "gantry", Version: "0.1.0"}
	if name := cfg.NodeName(); !strings.HasPrefix(name, "gantry/v0.1.0/") {
		t.Fatalf("node name = %q, want gantry/v0.1.0/ prefix", name)
	}
	cfg.UserIdent = "rig1"
	if name := cfg.NodeName(); !strings.HasPrefix(name, "gantry/rig1/v0.1.0/") {
		t.Fatalf("node name = %q, want identity before version", name)
	}
}
