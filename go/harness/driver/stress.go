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
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/CasperLabs/CasperLabs/go/harness"
	"github.com/dsnet/golib/unitconv"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var StressCmd = cli.Command{
	Action: doStress,
	Name:   "stress",
	Usage:  "Run random verified transfers on independent ledgers",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "seed for the random number generator",
		},
		&cli.IntFlag{
			Name:  "jobs",
			Usage: "number of ledgers processed simultaneously",
			Value: runtime.NumCPU(),
		},
		&cli.IntFlag{
			Name:  "accounts",
			Usage: "number of accounts per ledger",
			Value: 16,
		},
		&cli.IntFlag{
			Name:  "sessions",
			Usage: "number of sessions per ledger",
			Value: 1000,
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "engine to run sessions on",
			Value: harness.DefaultEngine,
		},
	},
}

const (
	stressMaxAmount = 1_000_000
)

var stressInitialBalance = casper.NewMotes(1_000_000_000_000)

func doStress(context *cli.Context) error {
	seed := context.Uint64("seed")
	numAccounts := context.Int("accounts")
	numSessions := context.Int("sessions")
	engine := context.String("engine")
	jobCount := context.Int("jobs")
	if jobCount <= 0 {
		jobCount = runtime.NumCPU()
	}

	var sessionCounter atomic.Int64
	var failureCounter atomic.Int64

	done := make(chan struct{})
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastCounter := int64(0)
		for {
			select {
			case <-done:
				return
			case curTime := <-ticker.C:
				cur := sessionCounter.Load()
				rate := float64(cur-lastCounter) / curTime.Sub(lastTime).Seconds()
				lastTime, lastCounter = curTime, cur
				relativeTime := curTime.Sub(startTime)
				fmt.Printf(
					"[t=%4d:%02d] - Processing ~%s sessions per second, total %d, failed %d\n",
					int(relativeTime.Seconds())/60, int(relativeTime.Seconds())%60,
					unitconv.FormatPrefix(rate, unitconv.SI, 0), cur, failureCounter.Load(),
				)
			}
		}
	}()

	fmt.Printf("Starting stress test with seed %d ...\n", seed)
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(jobCount)
	for i := 0; i < jobCount; i++ {
		go func(job uint64) {
			defer wg.Done()
			if err := stressLedger(seed+job, engine, numAccounts, numSessions, &sessionCounter); err != nil {
				failureCounter.Add(1)
				log.Error("Stress test failed", "job", job, "seed", seed+job, "err", err)
			}
		}(uint64(i))
	}
	wg.Wait()
	close(done)
	<-printerDone

	total := sessionCounter.Load()
	rate := float64(total) / time.Since(start).Seconds()
	fmt.Printf("Executed %d sessions, ~%s per second\n", total, unitconv.FormatPrefix(rate, unitconv.SI, 0))

	if failed := failureCounter.Load(); failed > 0 {
		return fmt.Errorf("%d of %d ledgers failed verification", failed, jobCount)
	}
	return nil
}

// stressLedger runs random transfers on a fresh ledger, verifying each.
func stressLedger(seed uint64, engine string, numAccounts, numSessions int, counter *atomic.Int64) error {
	generator, err := harness.NewTransferGenerator(seed, numAccounts, stressMaxAmount)
	if err != nil {
		return err
	}
	builder := harness.NewTestContextBuilder().WithEngine(engine, nil)
	ctx, err := generator.Configure(builder, stressInitialBalance).Build()
	if err != nil {
		return err
	}
	for i := 0; i < numSessions; i++ {
		session, err := generator.Next(ctx)
		if err != nil {
			return err
		}
		if err := ctx.Execute(session); err != nil {
			return fmt.Errorf("session %d: %w", i, err)
		}
		counter.Add(1)
	}
	return nil
}
