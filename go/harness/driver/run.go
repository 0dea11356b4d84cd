// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"

	"github.com/CasperLabs/CasperLabs/go/harness"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Run scenario files",
	ArgsUsage: "<scenario.yaml>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "engine",
			Usage: "engine to run scenarios on, overriding the engine named in the scenario",
		},
	},
}

func doRun(context *cli.Context) error {
	if context.Args().Len() == 0 {
		return fmt.Errorf("no scenario files given")
	}
	engine := context.String("engine")

	failed := 0
	for _, path := range context.Args().Slice() {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			log.Error("Failed to load scenario", "path", path, "err", err)
			failed++
			continue
		}
		if engine != "" {
			scenario.Engine = engine
		}
		if err := scenario.Execute(log.Root()); err != nil {
			log.Error("Scenario failed", "name", scenario.Name, "path", path, "err", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, context.Args().Len())
	}
	fmt.Fprintf(context.App.Writer, "All %d scenarios passed\n", context.Args().Len())
	return nil
}
