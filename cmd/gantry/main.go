// Copyright 2026 The gantry Authors
// This file is part of gantry.
//
// gantry is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gantry is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gantry. If not, see <http://www.gnu.org/licenses/>.

// gantry is a hook-driven launcher for Ethereum-style node extensions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"

	"github.com/gantry-eth/gantry/cmd/utils"
	"github.com/gantry-eth/gantry/internal/debug"
	"github.com/gantry-eth/gantry/internal/flags"
	"github.com/gantry-eth/gantry/node"
	"github.com/gantry-eth/gantry/txpool"
)

const clientIdentifier = "gantry" // Client identifier to advertise over the network

var (
	// flags that configure the node
	nodeFlags = []cli.Flag{
		utils.IdentityFlag,
		utils.DataDirFlag,
		utils.DBEngineFlag,
		utils.MainnetFlag,
		utils.SepoliaFlag,
		utils.HoleskyFlag,
		utils.DeveloperFlag,
		utils.GenesisFlag,
		configFileFlag,
	}

	rpcFlags = []cli.Flag{
		utils.HTTPEnabledFlag,
		utils.HTTPListenAddrFlag,
		utils.HTTPPortFlag,
		utils.HTTPApiFlag,
		utils.HTTPCORSDomainFlag,
		utils.HTTPVirtualHostsFlag,
		utils.WSOriginsFlag,
		utils.AuthListenFlag,
		utils.AuthPortFlag,
		utils.AuthVirtualHostsFlag,
		utils.JWTSecretFlag,
		utils.BatchRequestLimitFlag,
		utils.BatchResponseMaxSizeFlag,
	}

	metricsFlags = []cli.Flag{
		utils.MetricsEnabledFlag,
	}
)

var app = flags.NewApp("the gantry command line interface")

func init() {
	// Initialize the CLI app and start gantry
	app.Action = gantry
	app.Commands = []*cli.Command{
		// See stagecmd.go:
		stageCommand,
		// See dbcmd.go:
		dbCommand,
		// See misccmd.go:
		versionCommand,
		// See config.go:
		dumpConfigCommand,
	}
	app.Flags = flags.Merge(
		nodeFlags,
		rpcFlags,
		metricsFlags,
		debug.Flags,
	)
	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// prepare logs the chain preset the node is starting on. It is called before
// the extension build kicks off.
func prepare(ctx *cli.Context) {
	switch {
	case ctx.IsSet(utils.SepoliaFlag.Name):
		log.Info("Starting gantry on Sepolia testnet...")

	case ctx.IsSet(utils.HoleskyFlag.Name):
		log.Info("Starting gantry on Holesky testnet...")

	case ctx.IsSet(utils.GenesisFlag.Name):
		log.Info("Starting gantry on custom chain", "genesis", ctx.String(utils.GenesisFlag.Name))

	case ctx.IsSet(utils.DeveloperFlag.Name):
		log.Info("Starting gantry in ephemeral dev mode...")

	case !ctx.IsSet(utils.MainnetFlag.Name):
		log.Info("Starting gantry on Ethereum mainnet...")
	}
}

// gantry is the main entry point into the system if no special subcommand is
// run. It assembles the extension components from the registered build hooks
// and blocks until the node is shut down.
func gantry(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	prepare(ctx)

	cfg := loadBaseConfig(ctx)
	genesis := utils.MakeGenesis(ctx)

	launch := node.NewLaunchContext(&cfg.Node, genesis, log.Root())
	if err := launch.OpenDataDir(); err != nil {
		utils.Fatalf("Failed to open data directory: %v", err)
	}
	defer launch.CloseDataDir()

	db := utils.MakeDatabase(launch.Config(), false)
	defer db.Close()

	pool := txpool.NewStaticPool()
	stage := node.NewBuildStage(launch, node.NewCoreNode(db, launch.ChainConfig(), pool))

	stage.RegisterRPCHook(node.BuildHookFunc(func(_ context.Context, bctx *node.BuildContext) error {
		srv := node.NewRPCServer(bctx.Config(), bctx.Logger())
		err := srv.RegisterAPIs([]rpc.API{{
			Namespace: "txpool",
			Service:   txpool.NewTxPoolAPI(pool, bctx.ChainConfig()),
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
	stage.RegisterOnRPCStarted(node.OnRPCStartedFunc(func(_ context.Context, component node.RPCComponent) error {
		if srv, ok := component.(*node.RPCServer); ok && srv.ListenAddr() != "" {
			log.Info("HTTP server started", "endpoint", "http://"+srv.ListenAddr())
		}
		return nil
	}))

	components, err := stage.Run(context.Background())
	if components == nil {
		utils.Fatalf("Failed to assemble the node: %v", err)
	}
	if err != nil {
		// The build itself succeeded, only post-start hooks misbehaved.
		log.Warn("On-RPC-started hooks reported failures", "err", err)
	}
	defer stopComponents(components)

	// Block until an interrupt arrives or the consensus engine, if one was
	// built, announces its shutdown.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case <-sigc:
		log.Info("Got interrupt, shutting down...")
	case <-stage.EngineShutdownRx():
		log.Info("Consensus engine wound down, shutting down...")
	}
	return nil
}

// stopComponents unwinds the built extension components in reverse build
// order, so that the RPC surface goes away before the services it fronts.
func stopComponents(components *node.Components) {
	if rpc := components.RPC(); rpc != nil {
		if err := rpc.Stop(); err != nil {
			log.Error("Failed to stop RPC component", "err", err)
		}
	}
	if engine := components.Engine(); engine != nil {
		if err := engine.Stop(); err != nil {
			log.Error("Failed to stop engine component", "err", err)
		}
	}
	if pipeline := components.Pipeline(); pipeline != nil {
		if err := pipeline.Stop(); err != nil {
			log.Error("Failed to stop pipeline component", "err", err)
		}
	}
}
