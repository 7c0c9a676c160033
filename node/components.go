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
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/gantry-eth/gantry/stages"
	"github.com/gantry-eth/gantry/txpool"
)

// CoreComponents is the read-only handle to the services every node carries
// regardless of which extensions are configured: the backing database, the
// chain configuration and the transaction pool. Build hooks consume these
// when constructing their components but never replace them.
type CoreComponents interface {
	Database() ethdb.Database
	ChainConfig() *params.ChainConfig
	TxPool() txpool.Pool
}

// PipelineComponent is an extension component occupying the staged-sync slot.
type PipelineComponent interface {
	Lifecycle

	// Progress reports the stage the pipeline is currently executing and the
	// block number its checkpoint has reached.
	Progress() (stages.SyncStage, uint64)
}

// EngineComponent is an extension component occupying the consensus-engine
// slot.
type EngineComponent interface {
	Lifecycle

	// ShutdownRx returns the receiver signalled when the engine winds down.
	// A nil receiver never fires.
	ShutdownRx() <-chan struct{}
}

// RPCComponent is an extension component occupying the RPC server slot.
type RPCComponent interface {
	Lifecycle

	// Handler returns the in-process request handler carrying the component's
	// registered API namespaces.
	Handler() *rpc.Server
}

// Components collects the node's components across the extension build. The
// core handle is set at construction and immutable; the three extension slots
// start empty and are filled by build hooks, at most once each. The container
// is owned by a single goroutine at any time: the stage driver hands it to one
// hook invocation at a time and only publishes it once the build reaches a
// terminal state.
type Components struct {
	core CoreComponents

	pipeline PipelineComponent
	engine   EngineComponent
	rpc      RPCComponent

	// engineShutdownRx buffers a shutdown receiver for an engine that is yet
	// to be built. It is moved out at most once, by TakeEngineShutdownRx.
	engineShutdownRx <-chan struct{}
}

// NewComponents creates a component container around the given core handle.
func NewComponents(core CoreComponents) *Components {
	if core == nil {
		panic("nil core components")
	}
	return &Components{core: core}
}

// Core returns the always-present core handle.
func (c *Components) Core() CoreComponents { return c.core }

// Pipeline returns the built sync pipeline, or nil if the node runs without one.
func (c *Components) Pipeline() PipelineComponent { return c.pipeline }

// Engine returns the built consensus engine, or nil if the node runs without one.
func (c *Components) Engine() EngineComponent { return c.engine }

// RPC returns the built RPC server, or nil if the node runs without one.
func (c *Components) RPC() RPCComponent { return c.rpc }

// SetPipeline fills the pipeline slot. A slot, once filled, is never cleared
// or replaced; refilling it is a programming error in the build hook.
func (c *Components) SetPipeline(pipeline PipelineComponent) {
	if pipeline == nil {
		panic("nil pipeline component")
	}
	if c.pipeline != nil {
		panic("pipeline component already built")
	}
	c.pipeline = pipeline
}

// SetEngine fills the engine slot. Refilling it is a programming error in the
// build hook.
func (c *Components) SetEngine(engine EngineComponent) {
	if engine == nil {
		panic("nil engine component")
	}
	if c.engine != nil {
		panic("engine component already built")
	}
	c.engine = engine
}

// SetRPC fills the RPC slot. Refilling it is a programming error in the build
// hook.
func (c *Components) SetRPC(rpc RPCComponent) {
	if rpc == nil {
		panic("nil rpc component")
	}
	if c.rpc != nil {
		panic("rpc component already built")
	}
	c.rpc = rpc
}

// SetEngineShutdownRx stores a shutdown receiver for the engine hook to pick
// up. Storing a second receiver before the first was taken is a programming
// error.
func (c *Components) SetEngineShutdownRx(rx <-chan struct{}) {
	if c.engineShutdownRx != nil {
		panic("engine shutdown receiver already stored")
	}
	c.engineShutdownRx = rx
}

// TakeEngineShutdownRx moves the stored shutdown receiver out of the
// container, leaving the nil default behind. Only the first call observes the
// stored receiver; later calls return nil, which denotes a receiver that
// never fires.
func (c *Components) TakeEngineShutdownRx() <-chan struct{} {
	rx := c.engineShutdownRx
	c.engineShutdownRx = nil
	return rx
}

// CoreNode is a plain bundle of the core services, satisfying CoreComponents.
// The launch code assembles one once the database and transaction pool are
// open, before any extension hook runs.
type CoreNode struct {
	db     ethdb.Database
	config *params.ChainConfig
	pool   txpool.Pool
}

// NewCoreNode bundles the given services into a core component handle.
func NewCoreNode(db ethdb.Database, config *params.ChainConfig, pool txpool.Pool) *CoreNode {
	return &CoreNode{db: db, config: config, pool: pool}
}

func (n *CoreNode) Database() ethdb.Database         { return n.db }
func (n *CoreNode) ChainConfig() *params.ChainConfig { return n.config }
func (n *CoreNode) TxPool() txpool.Pool              { return n.pool }
