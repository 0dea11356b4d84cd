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
	"slices"
	"strings"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/CasperLabs/CasperLabs/go/engine/inmemory"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var EnginesCmd = cli.Command{
	Action: doEngines,
	Name:   "engines",
	Usage:  "List the registered engines and the session codes they support",
}

func doEngines(context *cli.Context) error {
	names := maps.Keys(casper.GetAllRegisteredEngines())
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintln(context.App.Writer, name)
	}
	fmt.Fprintf(context.App.Writer, "session codes: %s\n", strings.Join(inmemory.SessionCodes(), ", "))
	return nil
}
