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
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/gofrs/flock"
)

// LaunchContext is the immutable snapshot of the launch parameters shared by
// every build stage: the node configuration, the chain definition and the
// node logger. It is assembled once before the extension build starts and
// never mutated afterwards, so hooks may read it freely from any stage.
type LaunchContext struct {
	config  *Config
	genesis *core.Genesis
	logger  log.Logger

	dirLock *flock.Flock // prevents concurrent use of instance directory
}

// NewLaunchContext snapshots the given launch parameters. The configuration
// is copied to keep later caller mutations from leaking into the build.
func NewLaunchContext(conf *Config, genesis *core.Genesis, logger log.Logger) *LaunchContext {
	if conf == nil {
		conf = &DefaultConfig
	}
	confCopy := *conf
	conf = &confCopy
	if logger == nil {
		logger = log.New()
	}
	return &LaunchContext{
		config:  conf,
		genesis: genesis,
		logger:  logger,
	}
}

// Config returns the node configuration.
func (ctx *LaunchContext) Config() *Config { return ctx.config }

// Genesis returns the chain definition the node was launched with, or nil for
// a chainless node.
func (ctx *LaunchContext) Genesis() *core.Genesis { return ctx.genesis }

// ChainConfig returns the fork schedule of the launch chain, nil when no
// genesis is configured.
func (ctx *LaunchContext) ChainConfig() *params.ChainConfig {
	if ctx.genesis == nil {
		return nil
	}
	return ctx.genesis.Config
}

// DataDir returns the node's data directory, empty for an ephemeral node.
func (ctx *LaunchContext) DataDir() string { return ctx.config.DataDir }

// Logger returns the node logger.
func (ctx *LaunchContext) Logger() log.Logger { return ctx.logger }

// OpenDataDir creates the instance directory and acquires its file lock,
// guarding against concurrent use of the same data directory by another
// process. It is a no-op for ephemeral nodes.
func (ctx *LaunchContext) OpenDataDir() error {
	if ctx.config.DataDir == "" {
		return nil // ephemeral
	}
	instdir := ctx.config.instanceDir()
	if err := os.MkdirAll(instdir, 0700); err != nil {
		return err
	}
	// Lock the instance directory to prevent concurrent use by another instance as
	// well as accidental use of the instance directory as a database.
	ctx.dirLock = flock.New(filepath.Join(instdir, "LOCK"))

	if locked, err := ctx.dirLock.TryLock(); err != nil {
		return convertFileLockError(err)
	} else if !locked {
		return ErrDatadirUsed
	}
	return nil
}

// CloseDataDir releases the instance directory lock.
func (ctx *LaunchContext) CloseDataDir() error {
	// Release instance directory lock.
	if ctx.dirLock != nil && ctx.dirLock.Locked() {
		if err := ctx.dirLock.Unlock(); err != nil {
			ctx.logger.Error("Can't release datadir lock", "err", err)
			return err
		}
		ctx.dirLock = nil
	}
	return nil
}

// BuildContext is handed to a single build hook invocation. It pairs the
// immutable launch context with access to the in-progress component
// container. A build context is valid only for the duration of its hook: the
// stage driver invalidates it when the hook returns, and a retained context
// panics on container access. Each stage observes a fresh context carrying
// the container state left behind by the stages before it.
type BuildContext struct {
	launch     *LaunchContext
	components *Components
}

// NewBuildContext derives the hook-facing context for one stage from the
// launch parameters and the shared component container. It is the default
// context builder of a BuildStage.
func NewBuildContext(launch *LaunchContext, components *Components) *BuildContext {
	return &BuildContext{launch: launch, components: components}
}

// Config returns the node configuration.
func (ctx *BuildContext) Config() *Config { return ctx.launch.Config() }

// Genesis returns the chain definition the node was launched with.
func (ctx *BuildContext) Genesis() *core.Genesis { return ctx.launch.Genesis() }

// ChainConfig returns the fork schedule of the launch chain.
func (ctx *BuildContext) ChainConfig() *params.ChainConfig { return ctx.launch.ChainConfig() }

// DataDir returns the node's data directory, empty for an ephemeral node.
func (ctx *BuildContext) DataDir() string { return ctx.launch.DataDir() }

// Logger returns the node logger.
func (ctx *BuildContext) Logger() log.Logger { return ctx.launch.Logger() }

// Components returns the container being filled by the build. It panics if
// the context escaped the hook invocation it was created for.
func (ctx *BuildContext) Components() *Components {
	if ctx.components == nil {
		panic("build context used outside its hook invocation")
	}
	return ctx.components
}

// release invalidates the context once its hook invocation has returned.
func (ctx *BuildContext) release() {
	ctx.components = nil
}

// ContextBuilder derives the per-stage BuildContext handed to hooks. The
// default implementation is NewBuildContext; composition code can install a
// replacement on the BuildStage to decorate or substitute the context.
type ContextBuilder interface {
	BuildContext(launch *LaunchContext, components *Components) *BuildContext
}

// ContextBuilderFunc is a function adapter for ContextBuilder.
type ContextBuilderFunc func(launch *LaunchContext, components *Components) *BuildContext

func (f ContextBuilderFunc) BuildContext(launch *LaunchContext, components *Components) *BuildContext {
	return f(launch, components)
}
