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

	"github.com/urfave/cli/v2"

	"github.com/gantry-eth/gantry/cmd/utils"
	"github.com/gantry-eth/gantry/internal/flags"
	"github.com/gantry-eth/gantry/prune"
	"github.com/gantry-eth/gantry/stages"
)

var (
	databaseFlags = []cli.Flag{
		utils.DataDirFlag,
		utils.DBEngineFlag,
	}

	dbCommand = &cli.Command{
		Name:      "db",
		Usage:     "Low level database operations",
		ArgsUsage: "",
		Subcommands: []*cli.Command{
			{
				Name:        "stats",
				Usage:       "Print leveldb statistics",
				Action:      dbStats,
				Flags:       flags.Merge(databaseFlags),
				Description: `This command prints the backing key-value store's own usage statistics.`,
			},
			{
				Name:   "stage-checkpoints",
				Usage:  "Print the checkpoint of every sync stage",
				Action: dbStageCheckpoints,
				Flags:  flags.Merge(databaseFlags),
				Description: `
This command prints, for every sync stage, the highest block number the stage
has fully processed. A stage that never ran reports block zero.`,
			},
			{
				Name:   "prune-checkpoints",
				Usage:  "Print the stored pruning progress per data segment",
				Action: dbPruneCheckpoints,
				Flags:  flags.Merge(databaseFlags),
				Description: `
This command prints the pruning checkpoint of every data segment that has been
pruned at least once: the configured mode and the highest pruned block and
transaction numbers.`,
			},
		},
	}
)

func dbStats(ctx *cli.Context) error {
	cfg := loadBaseConfig(ctx)

	db := utils.MakeDatabase(&cfg.Node, true)
	defer db.Close()

	utils.ShowDBStats(db)
	return nil
}

func dbStageCheckpoints(ctx *cli.Context) error {
	cfg := loadBaseConfig(ctx)

	db := utils.MakeDatabase(&cfg.Node, true)
	defer db.Close()

	for _, stage := range stages.AllStages {
		fmt.Printf("%-22s %d\n", stage, stages.ReadStageCheckpoint(db, stage))
	}
	return nil
}

func dbPruneCheckpoints(ctx *cli.Context) error {
	cfg := loadBaseConfig(ctx)

	db := utils.MakeDatabase(&cfg.Node, true)
	defer db.Close()

	checkpoints, err := prune.NewStore(db).Checkpoints()
	if err != nil {
		return err
	}
	if len(checkpoints) == 0 {
		fmt.Println("No prune checkpoints stored")
		return nil
	}
	for _, segment := range prune.AllSegments {
		checkpoint, ok := checkpoints[segment]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-22s mode=%s", segment, checkpoint.Mode)
		if checkpoint.BlockNumber != nil {
			line += fmt.Sprintf(" block=%d", *checkpoint.BlockNumber)
		}
		if checkpoint.TxNumber != nil {
			line += fmt.Sprintf(" tx=%d", *checkpoint.TxNumber)
		}
		fmt.Println(line)
	}
	return nil
}
