// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package harness

import (
	"fmt"
	"testing"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/log"

	// Engines available to test contexts by default.
	_ "github.com/CasperLabs/CasperLabs/go/engine/inmemory"
)

// DefaultEngine is the name of the engine used unless configured otherwise.
const DefaultEngine = "inmemory"

// TestContextBuilder collects the genesis accounts and the engine setup of
// a TestContext.
type TestContextBuilder struct {
	genesis      *casper.GenesisBuilder
	engineName   string
	engineConfig any
	engine       casper.Engine
	convRate     uint64
	logger       log.Logger
}

// NewTestContextBuilder creates a builder seeded with the default account.
func NewTestContextBuilder() *TestContextBuilder {
	return &TestContextBuilder{
		genesis:    casper.NewGenesisBuilder(),
		engineName: DefaultEngine,
		convRate:   casper.ConvRate,
	}
}

// WithAccount adds an account to the genesis configuration. Listing the
// same identity twice makes Build fail.
func (b *TestContextBuilder) WithAccount(identity casper.Identity, balance casper.Motes) *TestContextBuilder {
	b.genesis.WithAccount(identity, balance)
	return b
}

func (b *TestContextBuilder) WithoutDefaultAccount() *TestContextBuilder {
	b.genesis.WithoutDefaultAccount()
	return b
}

func (b *TestContextBuilder) WithCosts(costs casper.CostTable) *TestContextBuilder {
	b.genesis.WithCosts(costs)
	return b
}

func (b *TestContextBuilder) WithProtocolVersion(version casper.ProtocolVersion) *TestContextBuilder {
	b.genesis.WithProtocolVersion(version)
	return b
}

// WithEngine selects a registered engine by name. The optional config is
// passed to the engine's factory.
func (b *TestContextBuilder) WithEngine(name string, config any) *TestContextBuilder {
	b.engineName = name
	b.engineConfig = config
	b.engine = nil
	return b
}

// WithEngineInstance uses the given, not yet initialized engine instead of
// creating one from the registry.
func (b *TestContextBuilder) WithEngineInstance(engine casper.Engine) *TestContextBuilder {
	b.engine = engine
	return b
}

// WithConversionRate sets the rate used to convert execution costs into
// motes when verifying transfers. It must match the rate of the engine.
func (b *TestContextBuilder) WithConversionRate(rate uint64) *TestContextBuilder {
	b.convRate = rate
	return b
}

func (b *TestContextBuilder) WithLogger(logger log.Logger) *TestContextBuilder {
	b.logger = logger
	return b
}

// Build creates the engine and initializes it with the collected genesis
// configuration. Each resulting context has exactly one genesis run.
func (b *TestContextBuilder) Build() (*TestContext, error) {
	config, err := b.genesis.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid genesis configuration: %w", err)
	}
	request, err := config.Request()
	if err != nil {
		return nil, err
	}

	engine := b.engine
	if engine == nil {
		if b.engineConfig == nil {
			engine, err = casper.NewEngine(b.engineName)
		} else {
			engine, err = casper.NewEngine(b.engineName, b.engineConfig)
		}
		if err != nil {
			return nil, err
		}
	}

	logger := b.logger
	if logger == nil {
		logger = log.Root()
	}

	hash, err := engine.RunGenesis(request)
	if err != nil {
		return nil, fmt.Errorf("failed to run genesis: %w", err)
	}
	logger.Debug("Test context ready", "accounts", len(config.Accounts), "state", hash)

	return &TestContext{
		engine:   engine,
		convRate: b.convRate,
		log:      logger,
	}, nil
}

// MustBuild is like Build but fails the test on error.
func (b *TestContextBuilder) MustBuild(t testing.TB) *TestContext {
	t.Helper()
	context, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build test context: %v", err)
	}
	return context
}
