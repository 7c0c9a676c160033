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
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

const (
	datadirJWTKey    = "jwtsecret" // Path within the datadir to the node's jwt secret
	datadirChainData = "chaindata" // Path within the datadir to the chain database
	datadirSegments  = "segments"  // Path within the datadir to the history segment files
)

// Config represents the collection of configuration values to fine tune a
// gantry node. These values are snapshotted into the launch context when the
// extension build starts; mutating a Config afterwards has no effect on a
// running build.
type Config struct {
	// Name sets the instance name of the node. It must not contain the /
	// character. If no value is specified, the basename of the current
	// executable is used.
	Name string `toml:"-"`

	// UserIdent, if set, is used as an additional component in the node identifier.
	UserIdent string `toml:",omitempty"`

	// Version should be set to the version number of the program. It is used
	// in the node identifier.
	Version string `toml:"-"`

	// DataDir is the file system folder the node should use for any data
	// storage requirements. An empty value makes the node ephemeral: all
	// state lives in memory and nothing is written to disk.
	DataDir string

	// DBEngine selects the backing key-value store, "leveldb" or "pebble".
	// An empty value reuses whatever database exists in the data directory
	// and defaults to pebble for fresh directories.
	DBEngine string `toml:",omitempty"`

	// HTTPHost is the host interface on which to start the HTTP RPC server.
	// If this field is empty, no HTTP API endpoint will be started.
	HTTPHost string

	// HTTPPort is the TCP port number on which to start the HTTP RPC server.
	// The default zero value is valid and will pick a port number randomly
	// (useful for ephemeral nodes).
	HTTPPort int `toml:",omitempty"`

	// HTTPCors is the Cross-Origin Resource Sharing header to send to
	// requesting clients. Please be aware that CORS is a browser enforced
	// security, it's fully useless for custom HTTP clients.
	HTTPCors []string `toml:",omitempty"`

	// HTTPVirtualHosts is the list of virtual hostnames which are allowed on
	// incoming requests. This is by default {'localhost'}. Using this
	// prevents attacks like DNS rebinding, which bypasses SOP by simply
	// masquerading as being within the same origin, by explicitly checking
	// the Host-header. Requests using an ip address directly are not affected.
	HTTPVirtualHosts []string `toml:",omitempty"`

	// HTTPModules is a list of API namespaces to expose via the HTTP RPC
	// interface. If the module list is empty, all public RPC API endpoints
	// will be exposed.
	HTTPModules []string

	// HTTPTimeouts allows for customization of the timeout values used by the
	// HTTP RPC interface.
	HTTPTimeouts rpc.HTTPTimeouts

	// WSOrigins is the list of domains to accept websocket requests from. The
	// websocket upgrade is served on the HTTP endpoint; an empty list rejects
	// browser-originated connections.
	WSOrigins []string `toml:",omitempty"`

	// AuthAddr is the listening address on which authenticated APIs are provided.
	AuthAddr string `toml:",omitempty"`

	// AuthPort is the port number on which authenticated APIs are provided.
	AuthPort int `toml:",omitempty"`

	// AuthVirtualHosts is the list of virtual hostnames which are allowed on
	// incoming requests for the authenticated api. This is by default
	// {'localhost'}.
	AuthVirtualHosts []string `toml:",omitempty"`

	// JWTSecret is the path to the hex-encoded jwt secret. An empty value
	// disables the authenticated endpoint.
	JWTSecret string `toml:",omitempty"`

	// BatchRequestLimit is the maximum number of requests in a batch.
	BatchRequestLimit int `toml:",omitempty"`

	// BatchResponseMaxSize is the maximum number of bytes returned from a
	// batched rpc call.
	BatchResponseMaxSize int `toml:",omitempty"`
}

// HTTPEndpoint resolves an HTTP endpoint based on the configured host
// interface and port parameters.
func (c *Config) HTTPEndpoint() string {
	if c.HTTPHost == "" {
		return ""
	}
	return net.JoinHostPort(c.HTTPHost, fmt.Sprintf("%d", c.HTTPPort))
}

// AuthEndpoint resolves the endpoint of the authenticated RPC server.
func (c *Config) AuthEndpoint() string {
	if c.JWTSecret == "" {
		return ""
	}
	addr := c.AuthAddr
	if addr == "" {
		addr = DefaultAuthHost
	}
	return net.JoinHostPort(addr, fmt.Sprintf("%d", c.AuthPort))
}

// ExtRPCEnabled returns the indicator whether node enables the external RPC.
func (c *Config) ExtRPCEnabled() bool {
	return c.HTTPHost != ""
}

// NodeName returns the node identifier.
func (c *Config) NodeName() string {
	name := c.name()
	if c.UserIdent != "" {
		name += "/" + c.UserIdent
	}
	if c.Version != "" {
		name += "/v" + c.Version
	}
	name += "/" + runtime.GOOS + "-" + runtime.GOARCH
	name += "/" + runtime.Version()
	return name
}

func (c *Config) name() string {
	if c.Name == "" {
		progname := strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
		if progname == "" {
			panic("empty executable name, set Config.Name")
		}
		return progname
	}
	return c.Name
}

// ResolvePath resolves path in the instance directory.
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.instanceDir(), path)
}

// SegmentsDir returns the directory holding the immutable history segment
// files, empty for an ephemeral node.
func (c *Config) SegmentsDir() string {
	return c.ResolvePath(datadirSegments)
}

func (c *Config) instanceDir() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, c.name())
}
