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

package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/gantry-eth/gantry/cmd/utils"
	"github.com/gantry-eth/gantry/internal/flags"
	"github.com/gantry-eth/gantry/stages"
)

var (
	stageCommand = &cli.Command{
		Name:      "stage",
		Usage:     "A set of commands operating on the staged-sync state",
		ArgsUsage: "",
		Subcommands: []*cli.Command{
			{
				Name:      "reset",
				Usage:     "Drop a sync stage back to its pre-sync state",
				ArgsUsage: "<stage>",
				Action:    stageReset,
				Flags: flags.Merge([]cli.Flag{
					utils.DataDirFlag,
					utils.DBEngineFlag,
					utils.MainnetFlag,
					utils.SepoliaFlag,
					utils.HoleskyFlag,
					utils.GenesisFlag,
				}),
				Description: `
Clears the database tables owned by the named sync stage, rewinds its
checkpoint to zero and deletes the stage's history segment files, forcing the
stage to run again from scratch on the next sync. Where the emptied tables
must still describe block zero, the genesis block of the selected chain is
written back.

Stages that later stages depend on are not reset transitively; resetting an
early stage generally requires resetting the ones after it as well.

Recognized stages:
  headers, total-difficulty, bodies, senders, execution, account-hashing,
  storage-hashing, hashing, merkle, tx-lookup, account-history,
  storage-history`,
			},
		},
	}
)

func stageReset(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	name := ctx.Args().First()

	// "hashing" spans the account and storage hashing stages.
	var targets []stages.SyncStage
	if strings.EqualFold(name, "hashing") {
		targets = []stages.SyncStage{stages.AccountHashing, stages.StorageHashing}
	} else if stage, ok := stages.ParseStage(name); ok {
		targets = []stages.SyncStage{stage}
	} else {
		log.Info("Nothing to do for stage", "stage", name)
		return nil
	}

	cfg := loadBaseConfig(ctx)
	genesis := utils.MakeGenesis(ctx)

	db := utils.MakeDatabase(&cfg.Node, false)
	defer db.Close()

	for _, stage := range targets {
		if err := stages.Reset(db, stage, genesis, cfg.Node.SegmentsDir()); err != nil {
			return err
		}
		log.Info("Stage reset", "stage", stage)
	}
	return nil
}
