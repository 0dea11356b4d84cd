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
	"math"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/CasperLabs/CasperLabs/go/engine/inmemory"
	"pgregory.net/rand"
)

// TransferGenerator produces a reproducible stream of transfer sessions
// between a fixed set of random accounts. Each session carries a transfer
// expectation for its source and target purse.
type TransferGenerator struct {
	rnd       *rand.Rand
	accounts  []casper.Identity
	maxAmount uint64
	counter   uint64
}

// NewTransferGenerator creates numAccounts random accounts from the given
// seed. Transferred amounts are in the range [0, maxAmount].
func NewTransferGenerator(seed uint64, numAccounts int, maxAmount uint64) (*TransferGenerator, error) {
	if numAccounts < 2 {
		return nil, fmt.Errorf("at least two accounts are needed, got %d", numAccounts)
	}
	rnd := rand.New(seed)
	seen := map[casper.Identity]struct{}{
		casper.SystemIdentity:         {},
		casper.DefaultAccountIdentity: {},
	}
	accounts := make([]casper.Identity, 0, numAccounts)
	for len(accounts) < numAccounts {
		var identity casper.Identity
		rnd.Read(identity[:]) // never returns an error
		if _, found := seen[identity]; found {
			continue
		}
		seen[identity] = struct{}{}
		accounts = append(accounts, identity)
	}
	return &TransferGenerator{
		rnd:       rnd,
		accounts:  accounts,
		maxAmount: maxAmount,
	}, nil
}

// Accounts returns the identities used by the generator.
func (g *TransferGenerator) Accounts() []casper.Identity {
	return append([]casper.Identity(nil), g.accounts...)
}

// Configure adds all accounts of the generator with the given balance.
func (g *TransferGenerator) Configure(builder *TestContextBuilder, balance casper.Motes) *TestContextBuilder {
	for _, account := range g.accounts {
		builder.WithAccount(account, balance)
	}
	return builder
}

// Next produces a transfer between two distinct accounts of the generator.
// The purses are resolved through the given context.
func (g *TransferGenerator) Next(ctx *TestContext) (Session, error) {
	source := g.accounts[g.rnd.Intn(len(g.accounts))]
	target := source
	for target == source {
		target = g.accounts[g.rnd.Intn(len(g.accounts))]
	}
	sourcePurse, found := ctx.MainPurseAddress(source)
	if !found {
		return Session{}, fmt.Errorf("%w: %v", casper.ErrAccountNotFound, source)
	}
	targetPurse, found := ctx.MainPurseAddress(target)
	if !found {
		return Session{}, fmt.Errorf("%w: %v", casper.ErrAccountNotFound, target)
	}

	var amount casper.Motes
	if g.maxAmount == math.MaxUint64 {
		amount = casper.NewMotes(g.rnd.Uint64())
	} else {
		amount = casper.NewMotes(g.rnd.Uint64n(g.maxAmount + 1))
	}
	g.counter++
	return NewSessionBuilder(inmemory.TransferToAccount(target, amount)).
		WithAddress(source).
		WithTimestamp(g.counter).
		WithCheckTransferSuccess(TransferExpectation{
			SourcePurse: sourcePurse,
			TargetPurse: &targetPurse,
			Amount:      amount,
		}).
		Build(), nil
}
