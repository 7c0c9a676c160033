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
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-multierror"
)

// Build stage names, in the order the driver runs them.
const (
	StagePipeline = "pipeline"
	StageEngine   = "engine"
	StageRPC      = "rpc"
)

// Extension build states.
const (
	pipelinePending = iota
	enginePending
	rpcPending
	buildComplete
	buildFailed
)

// BuildStage sequences the construction of a node's optional extension
// components. Composition code registers at most one build hook per slot and
// any number of on-RPC-started hooks, then drives the build exactly once with
// Run. The driver walks the slots in a fixed order, pipeline first, engine
// second, RPC last, handing each registered hook a fresh build context over
// the shared component container. Slots without a hook are skipped, leaving
// the container slot empty.
type BuildStage struct {
	launch *LaunchContext
	log    log.Logger

	mu         sync.Mutex
	state      int
	started    bool
	ctxBuilder ContextBuilder

	pipelineHook BuildHook
	engineHook   BuildHook
	rpcHook      BuildHook
	postStart    []OnRPCStartedHook

	components *Components
	res        buildResult
}

// buildResult memoises the terminal outcome of the build so that repeated
// Run calls observe the first result instead of re-running hooks.
type buildResult struct {
	components *Components
	err        error
}

// NewBuildStage creates an extension build around the given launch parameters
// and core services. The returned stage has no hooks registered; driving it
// as-is completes immediately with all extension slots empty.
func NewBuildStage(launch *LaunchContext, core CoreComponents) *BuildStage {
	if launch == nil {
		panic("nil launch context")
	}
	return &BuildStage{
		launch:     launch,
		log:        launch.Logger(),
		ctxBuilder: ContextBuilderFunc(NewBuildContext),
		components: NewComponents(core),
	}
}

// RegisterPipelineHook installs the build step for the sync-pipeline stage,
// replacing any hook installed earlier.
func (s *BuildStage) RegisterPipelineHook(hook BuildHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkRegister("pipeline hook")
	s.pipelineHook = hook
}

// RegisterEngineHook installs the build step for the consensus-engine stage,
// replacing any hook installed earlier.
func (s *BuildStage) RegisterEngineHook(hook BuildHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkRegister("engine hook")
	s.engineHook = hook
}

// RegisterRPCHook installs the build step for the RPC stage, replacing any
// hook installed earlier.
func (s *BuildStage) RegisterRPCHook(hook BuildHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkRegister("rpc hook")
	s.rpcHook = hook
}

// RegisterOnRPCStarted appends a hook to run once the RPC stage has completed
// with a live server. All appended hooks are retained and run in registration
// order; if the build ends without an RPC component they are skipped.
func (s *BuildStage) RegisterOnRPCStarted(hook OnRPCStartedHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkRegister("on-rpc-started hook")
	s.postStart = append(s.postStart, hook)
}

// SetContextBuilder replaces the default per-stage context construction.
func (s *BuildStage) SetContextBuilder(builder ContextBuilder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if builder == nil {
		panic("nil context builder")
	}
	s.checkRegister("context builder")
	s.ctxBuilder = builder
}

func (s *BuildStage) checkRegister(what string) {
	if s.started {
		panic("can't register " + what + " on started extension build")
	}
}

// Run drives the extension build to a terminal state. Stages execute in
// order; a stage whose hook fails aborts the build and the error identifies
// the failing stage. Hooks that block should honor cancellation of ctx. Run
// is idempotent: after the first call has finished, later calls return the
// memoised outcome without re-running any hook, and a call made while the
// build is still in flight fails with ErrBuildRunning.
func (s *BuildStage) Run(ctx context.Context) (*Components, error) {
	s.mu.Lock()
	if s.started {
		if s.state == buildComplete || s.state == buildFailed {
			res := s.res
			s.mu.Unlock()
			return res.components, res.err
		}
		s.mu.Unlock()
		return nil, ErrBuildRunning
	}
	s.started = true
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("Building extension components")

	if err := s.runStage(ctx, StagePipeline); err != nil {
		return s.fail(err)
	}
	s.setState(enginePending)

	if err := s.runStage(ctx, StageEngine); err != nil {
		return s.fail(err)
	}
	s.setState(rpcPending)

	if err := s.runStage(ctx, StageRPC); err != nil {
		return s.fail(err)
	}

	// The primary stages are done, let the post-start hooks act on the live
	// RPC surface. Their failures are collected rather than aborting, every
	// registered hook gets its chance to run.
	var failures *multierror.Error
	if rpc := s.components.RPC(); rpc != nil {
		for i, hook := range s.postStart {
			if err := hook.OnRPCStarted(ctx, rpc); err != nil {
				s.log.Warn("On-RPC-started hook failed", "index", i, "err", err)
				failures = multierror.Append(failures, err)
			}
		}
	} else if len(s.postStart) > 0 {
		s.log.Debug("Skipping on-RPC-started hooks, no RPC component built", "hooks", len(s.postStart))
	}

	s.log.Info("Extension components built",
		"pipeline", s.components.Pipeline() != nil,
		"engine", s.components.Engine() != nil,
		"rpc", s.components.RPC() != nil,
		"elapsed", common.PrettyDuration(time.Since(start)))

	return s.complete(failures.ErrorOrNil())
}

// runStage invokes the hook registered for the given stage, if any. The hook
// is moved out of its slot first so it can never run twice.
func (s *BuildStage) runStage(ctx context.Context, stage string) error {
	hook := s.takeHook(stage)
	if hook == nil {
		s.log.Debug("No extension hook registered, skipping stage", "stage", stage)
		return nil
	}
	var (
		start = time.Now()
		bctx  = s.ctxBuilder.BuildContext(s.launch, s.components)
		err   = hook.Run(ctx, bctx)
	)
	bctx.release()
	stageTimer(stage).UpdateSince(start)
	if err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	s.log.Debug("Extension stage completed", "stage", stage, "elapsed", common.PrettyDuration(time.Since(start)))
	return nil
}

// takeHook clears the slot of the given stage and returns its previous
// content.
func (s *BuildStage) takeHook(stage string) BuildHook {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hook BuildHook
	switch stage {
	case StagePipeline:
		hook, s.pipelineHook = s.pipelineHook, nil
	case StageEngine:
		hook, s.engineHook = s.engineHook, nil
	case StageRPC:
		hook, s.rpcHook = s.rpcHook, nil
	}
	return hook
}

func (s *BuildStage) setState(state int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// fail records the terminal failure and surfaces it to the caller.
func (s *BuildStage) fail(err error) (*Components, error) {
	stageFailureMeter.Mark(1)
	if serr, ok := err.(*StageError); ok {
		s.log.Error("Extension component build failed", "stage", serr.Stage, "err", serr.Err)
	} else {
		s.log.Error("Extension component build failed", "err", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = buildFailed
	s.res = buildResult{err: err}
	return nil, err
}

// complete records the terminal success. A non-nil err carries collected
// post-start hook failures; the components remain usable regardless.
func (s *BuildStage) complete(err error) (*Components, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = buildComplete
	s.res = buildResult{components: s.components, err: err}
	return s.components, err
}

// Components exposes the container the build fills in. The container is not
// synchronized: while the build is in flight it belongs to the stage driver
// and the hook it is currently running, and other goroutines must not touch
// it before Run has returned.
func (s *BuildStage) Components() *Components {
	return s.components
}

// LaunchContext returns the immutable launch parameters of this build.
func (s *BuildStage) LaunchContext() *LaunchContext {
	return s.launch
}

// EngineShutdownRx resolves the shutdown receiver the engine stage should
// wire into the engine it constructs: the receiver of an engine built by an
// earlier composition layer when one exists, otherwise the receiver stored in
// the container, otherwise nil. The container copy is consumed by the lookup,
// so only one engine ever observes it.
func (s *BuildStage) EngineShutdownRx() <-chan struct{} {
	if engine := s.components.Engine(); engine != nil {
		if rx := engine.ShutdownRx(); rx != nil {
			return rx
		}
	}
	return s.components.TakeEngineShutdownRx()
}
