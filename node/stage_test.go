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
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"pgregory.net/rapid"

	"github.com/gantry-eth/gantry/txpool"
)

func newTestBuild(genesis *core.Genesis) *BuildStage {
	launch := NewLaunchContext(new(Config), genesis, log.NewLogger(log.DiscardHandler()))
	return NewBuildStage(launch, newTestCore())
}

// recordHook returns a build hook that appends name to order and fails with
// err, if set.
func recordHook(order *[]string, name string, err error) BuildHook {
	return BuildHookFunc(func(context.Context, *BuildContext) error {
		*order = append(*order, name)
		return err
	})
}

func TestBuildRunsStagesInOrder(t *testing.T) {
	var (
		s     = newTestBuild(nil)
		order []string
	)
	// Deliberately register out of execution order.
	s.RegisterRPCHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		order = append(order, StageRPC)
		bctx.Components().SetRPC(new(fakeRPC))
		return nil
	}))
	s.RegisterPipelineHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		order = append(order, StagePipeline)
		bctx.Components().SetPipeline(new(fakePipeline))
		return nil
	}))
	s.RegisterEngineHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		order = append(order, StageEngine)
		if bctx.Components().Pipeline() == nil {
			t.Errorf("engine hook can't see the pipeline built before it")
		}
		bctx.Components().SetEngine(new(fakeEngine))
		return nil
	}))

	components, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if want := []string{StagePipeline, StageEngine, StageRPC}; !reflect.DeepEqual(order, want) {
		t.Fatalf("stages ran in order %v, want %v", order, want)
	}
	if components.Pipeline() == nil || components.Engine() == nil || components.RPC() == nil {
		t.Fatalf("extension slots not filled: %+v", components)
	}
}

func TestBuildRegistrationOrderIrrelevant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var (
			s     = newTestBuild(nil)
			order []string
		)
		register := []func(){
			func() { s.RegisterPipelineHook(recordHook(&order, StagePipeline, nil)) },
			func() { s.RegisterEngineHook(recordHook(&order, StageEngine, nil)) },
			func() { s.RegisterRPCHook(recordHook(&order, StageRPC, nil)) },
		}
		perm := rapid.SliceOfNDistinct(rapid.IntRange(0, 2), 3, 3, rapid.ID[int]).Draw(t, "registrations")
		for _, i := range perm {
			register[i]()
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("build failed: %v", err)
		}
		if want := []string{StagePipeline, StageEngine, StageRPC}; !reflect.DeepEqual(order, want) {
			t.Fatalf("registration order %v changed execution order to %v", perm, order)
		}
	})
}

func TestBuildHooksRunAtMostOnce(t *testing.T) {
	var (
		s     = newTestBuild(nil)
		order []string
	)
	s.RegisterPipelineHook(recordHook(&order, StagePipeline, nil))
	s.RegisterEngineHook(recordHook(&order, StageEngine, nil))
	s.RegisterRPCHook(recordHook(&order, StageRPC, nil))

	first, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("rerun of finished build failed: %v", err)
	}
	if first != second {
		t.Fatalf("rerun returned a different component container")
	}
	if len(order) != 3 {
		t.Fatalf("hooks ran %d times across two runs, want 3", len(order))
	}
}

func TestBuildRunWhileRunning(t *testing.T) {
	var (
		s       = newTestBuild(nil)
		entered = make(chan struct{})
		release = make(chan struct{})
		done    = make(chan struct{})
	)
	s.RegisterPipelineHook(BuildHookFunc(func(context.Context, *BuildContext) error {
		close(entered)
		<-release
		return nil
	}))
	go func() {
		defer close(done)
		if _, err := s.Run(context.Background()); err != nil {
			t.Errorf("build failed: %v", err)
		}
	}()
	<-entered

	if _, err := s.Run(context.Background()); !errors.Is(err, ErrBuildRunning) {
		t.Fatalf("concurrent run error = %v, want %v", err, ErrBuildRunning)
	}
	close(release)
	<-done
}

func TestBuildStageFailure(t *testing.T) {
	for _, failing := range []string{StagePipeline, StageEngine, StageRPC} {
		t.Run(failing, func(t *testing.T) {
			var (
				s     = newTestBuild(nil)
				boom  = errors.New("hook exploded")
				order []string
			)
			mk := func(stage string) BuildHook {
				return BuildHookFunc(func(context.Context, *BuildContext) error {
					order = append(order, stage)
					if stage == failing {
						return boom
					}
					return nil
				})
			}
			s.RegisterPipelineHook(mk(StagePipeline))
			s.RegisterEngineHook(mk(StageEngine))
			s.RegisterRPCHook(mk(StageRPC))

			postRan := false
			s.RegisterOnRPCStarted(OnRPCStartedFunc(func(context.Context, RPCComponent) error {
				postRan = true
				return nil
			}))

			components, err := s.Run(context.Background())
			if components != nil {
				t.Fatalf("failed build returned components")
			}
			var serr *StageError
			if !errors.As(err, &serr) || serr.Stage != failing {
				t.Fatalf("error = %v, want stage error of %q", err, failing)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("stage error does not wrap the hook failure: %v", err)
			}
			// Everything up to and including the failing stage ran, nothing after.
			all := []string{StagePipeline, StageEngine, StageRPC}
			var want []string
			for _, stage := range all {
				want = append(want, stage)
				if stage == failing {
					break
				}
			}
			if !reflect.DeepEqual(order, want) {
				t.Fatalf("stages ran: %v, want %v", order, want)
			}
			if postRan {
				t.Fatalf("on-rpc-started hook ran on a failed build")
			}

			// The failure is memoised for later runs.
			if _, rerr := s.Run(context.Background()); !errors.Is(rerr, boom) {
				t.Fatalf("rerun error = %v, want memoised %v", rerr, boom)
			}
		})
	}
}

func TestBuildMissingDependency(t *testing.T) {
	s := newTestBuild(nil)
	s.RegisterEngineHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		if bctx.Components().Pipeline() == nil {
			return ErrMissingDependency
		}
		return nil
	}))

	_, err := s.Run(context.Background())
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("error = %v, want %v", err, ErrMissingDependency)
	}
	var serr *StageError
	if !errors.As(err, &serr) || serr.Stage != StageEngine {
		t.Fatalf("failure not attributed to the engine stage: %v", err)
	}
}

func TestOnRPCStartedHooks(t *testing.T) {
	var (
		s     = newTestBuild(nil)
		boom  = errors.New("post-start hook exploded")
		order []int
	)
	s.RegisterRPCHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		bctx.Components().SetRPC(new(fakeRPC))
		return nil
	}))
	for i := 0; i < 3; i++ {
		i := i
		s.RegisterOnRPCStarted(OnRPCStartedFunc(func(_ context.Context, rpc RPCComponent) error {
			if rpc == nil {
				t.Errorf("post-start hook %d observed no RPC component", i)
			}
			order = append(order, i)
			if i == 1 {
				return boom
			}
			return nil
		}))
	}

	components, err := s.Run(context.Background())
	if components == nil {
		t.Fatalf("post-start failure aborted the build")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("collected error %v does not carry the hook failure", err)
	}
	// A failing hook doesn't keep the remaining ones from running.
	if want := []int{0, 1, 2}; !reflect.DeepEqual(order, want) {
		t.Fatalf("post-start hooks ran as %v, want %v", order, want)
	}
}

func TestOnRPCStartedSkippedWithoutRPC(t *testing.T) {
	s := newTestBuild(nil)

	ran := false
	s.RegisterOnRPCStarted(OnRPCStartedFunc(func(context.Context, RPCComponent) error {
		ran = true
		return nil
	}))

	components, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if components.RPC() != nil {
		t.Fatalf("rpc slot filled without a hook")
	}
	if ran {
		t.Fatalf("on-rpc-started hook ran without an RPC component")
	}
}

func TestRegisterAfterRunPanics(t *testing.T) {
	s := newTestBuild(nil)
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	noop := BuildHookFunc(func(context.Context, *BuildContext) error { return nil })

	expectPanic(t, "pipeline hook after run", func() { s.RegisterPipelineHook(noop) })
	expectPanic(t, "engine hook after run", func() { s.RegisterEngineHook(noop) })
	expectPanic(t, "rpc hook after run", func() { s.RegisterRPCHook(noop) })
	expectPanic(t, "post-start hook after run", func() {
		s.RegisterOnRPCStarted(OnRPCStartedFunc(func(context.Context, RPCComponent) error { return nil }))
	})
	expectPanic(t, "context builder after run", func() {
		s.SetContextBuilder(ContextBuilderFunc(NewBuildContext))
	})
}

func TestRegisterReplacesHook(t *testing.T) {
	var (
		s     = newTestBuild(nil)
		order []string
	)
	s.RegisterPipelineHook(recordHook(&order, "first", nil))
	s.RegisterPipelineHook(recordHook(&order, "second", nil))

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if want := []string{"second"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("hooks ran: %v, want only the replacement", order)
	}
}

func TestBuildContextInvalidAfterHook(t *testing.T) {
	var (
		s      = newTestBuild(nil)
		leaked *BuildContext
	)
	s.RegisterPipelineHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		leaked = bctx
		return nil
	}))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	// Launch data stays reachable, the container does not.
	if leaked.Config() == nil {
		t.Fatalf("released context lost the launch config")
	}
	expectPanic(t, "container access on released context", func() { leaked.Components() })
}

func TestCustomContextBuilder(t *testing.T) {
	var (
		s     = newTestBuild(nil)
		built int
	)
	s.SetContextBuilder(ContextBuilderFunc(func(launch *LaunchContext, components *Components) *BuildContext {
		built++
		if components != s.Components() {
			t.Errorf("context builder handed a foreign container")
		}
		return NewBuildContext(launch, components)
	}))
	noop := BuildHookFunc(func(context.Context, *BuildContext) error { return nil })
	s.RegisterPipelineHook(noop)
	s.RegisterEngineHook(noop)
	s.RegisterRPCHook(noop)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if built != 3 {
		t.Fatalf("context builder ran %d times, want one per hooked stage", built)
	}
}

func TestBuildWithoutHooks(t *testing.T) {
	s := newTestBuild(nil)

	components, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("empty build failed: %v", err)
	}
	if components == nil {
		t.Fatalf("empty build returned no container")
	}
	if components.Pipeline() != nil || components.Engine() != nil || components.RPC() != nil {
		t.Fatalf("empty build filled extension slots")
	}
}

func TestEngineShutdownRxResolution(t *testing.T) {
	// An engine carrying its own receiver wins.
	own := make(chan struct{})
	s := newTestBuild(nil)
	s.Components().SetEngine(&fakeEngine{rx: own})
	if rx := s.EngineShutdownRx(); rx != own {
		t.Fatalf("engine receiver not preferred")
	}

	// Without an engine the stored receiver is moved out, once.
	stored := make(chan struct{})
	s = newTestBuild(nil)
	s.Components().SetEngineShutdownRx(stored)
	if rx := s.EngineShutdownRx(); rx != stored {
		t.Fatalf("stored receiver not resolved")
	}
	if rx := s.EngineShutdownRx(); rx != nil {
		t.Fatalf("stored receiver resolved twice")
	}

	// Nothing configured resolves to the never-firing nil receiver.
	if rx := newTestBuild(nil).EngineShutdownRx(); rx != nil {
		t.Fatalf("resolved a receiver out of thin air")
	}
}

// TestTxPoolAPIOverBuiltRPC drives a whole build whose RPC hook exposes the
// txpool namespace, then queries the pool through the in-process endpoint.
func TestTxPoolAPIOverBuiltRPC(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	var (
		from   = crypto.PubkeyToAddress(key.PublicKey)
		signer = types.LatestSigner(params.TestChainConfig)
		to     = crypto.CreateAddress(from, 7)
	)
	tx := types.MustSignNewTx(key, signer, &types.LegacyTx{
		Nonce:    0,
		To:       &to,
		Value:    big.NewInt(1000),
		Gas:      21000,
		GasPrice: big.NewInt(2),
	})
	pool := txpool.NewStaticPool()
	pool.AddPending(from, tx)

	var (
		genesis = &core.Genesis{Config: params.TestChainConfig}
		launch  = NewLaunchContext(new(Config), genesis, log.NewLogger(log.DiscardHandler()))
		s       = NewBuildStage(launch, NewCoreNode(rawdb.NewMemoryDatabase(), params.TestChainConfig, pool))
	)
	s.RegisterRPCHook(BuildHookFunc(func(_ context.Context, bctx *BuildContext) error {
		srv := NewRPCServer(bctx.Config(), bctx.Logger())
		err := srv.RegisterAPIs([]rpc.API{{
			Namespace: "txpool",
			Service:   txpool.NewTxPoolAPI(bctx.Components().Core().TxPool(), bctx.ChainConfig()),
		}})
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			return err
		}
		bctx.Components().SetRPC(srv)
		return nil
	}))

	components, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer components.RPC().Stop()

	client := rpc.DialInProc(components.RPC().Handler())
	defer client.Close()

	var status map[string]hexutil.Uint
	if err := client.Call(&status, "txpool_status"); err != nil {
		t.Fatalf("txpool_status failed: %v", err)
	}
	if status["pending"] != 1 || status["queued"] != 0 {
		t.Fatalf("status = %v, want 1 pending, 0 queued", status)
	}

	var content map[string]map[string]map[string]txpool.RPCTransaction
	if err := client.Call(&content, "txpool_content"); err != nil {
		t.Fatalf("txpool_content failed: %v", err)
	}
	got, ok := content["pending"][from.Hex()]["0"]
	if !ok {
		t.Fatalf("planted transaction missing from content: %v", content)
	}
	if got.Hash != tx.Hash() {
		t.Fatalf("content hash = %v, want %v", got.Hash, tx.Hash())
	}
	if got.From != from {
		t.Fatalf("content sender = %v, want %v", got.From, from)
	}
}
