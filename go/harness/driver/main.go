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
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var verbosityFlag = &cli.IntFlag{
	Name:  "verbosity",
	Usage: "log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
	Value: 3,
}

func main() {
	app := &cli.App{
		Name:      "driver",
		Usage:     "Session Test Harness Driver",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags:     []cli.Flag{verbosityFlag},
		Before:    setupLogging,
		Commands: []*cli.Command{
			&EnginesCmd,
			&RunCmd,
			&StressCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(context *cli.Context) error {
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	level := log.FromLegacyLevel(context.Int(verbosityFlag.Name))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)))
	return nil
}
