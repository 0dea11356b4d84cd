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
	"errors"
	"testing"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/CasperLabs/CasperLabs/go/engine/inmemory"
)

var (
	accountA = casper.Identity{0xa}
	accountB = casper.Identity{0xb}
)

// cheapCosts allows accounts with small balances to pay for sessions.
var cheapCosts = casper.CostTable{Base: 10, PerArgByte: 0, Transfer: 5, CreatePurse: 5, Write: 1, Read: 1}

func mustMainPurse(t *testing.T, ctx *TestContext, identity casper.Identity) casper.PurseAddress {
	t.Helper()
	purse, found := ctx.MainPurseAddress(identity)
	if !found {
		t.Fatalf("account %v not found", identity)
	}
	return purse
}

func mustBalance(t *testing.T, ctx *TestContext, purse casper.PurseAddress) casper.Motes {
	t.Helper()
	balance, err := ctx.GetBalance(purse)
	if err != nil {
		t.Fatalf("failed to get balance: %v", err)
	}
	return balance
}

func TestIntegration_GenesisAccountsAreQueryable(t *testing.T) {
	ctx := NewTestContextBuilder().WithAccount(accountA, casper.NewMotes(1_000)).MustBuild(t)

	if want, got := casper.NewMotes(1_000), mustBalance(t, ctx, mustMainPurse(t, ctx, accountA)); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if want, got := casper.DefaultAccountInitialBalance, mustBalance(t, ctx, mustMainPurse(t, ctx, casper.DefaultAccountIdentity)); want != got {
		t.Errorf("unexpected default balance, wanted %v, got %v", want, got)
	}
	if _, found := ctx.MainPurseAddress(accountB); found {
		t.Errorf("unknown account has a main purse")
	}
	if _, found := ctx.LastResult(); found {
		t.Errorf("no session was run yet")
	}
}

func TestIntegration_TransferToUnknownAccountChecksSource(t *testing.T) {
	ctx := NewTestContextBuilder().
		WithCosts(cheapCosts).
		WithAccount(accountA, casper.NewMotes(1_000)).
		MustBuild(t)
	sourcePurse := mustMainPurse(t, ctx, accountA)

	session := NewSessionBuilder(inmemory.TransferToAccount(accountB, casper.NewMotes(100))).
		WithAddress(accountA).
		WithGasLimit(casper.NewGas(500)).
		WithCheckTransferSuccess(TransferExpectation{SourcePurse: sourcePurse, Amount: casper.NewMotes(100)}).
		Build()
	ctx.Run(t, session)

	result, _ := ctx.LastResult()
	fee, err := casper.MotesFromGas(result.Cost, casper.ConvRate)
	if err != nil {
		t.Fatal(err)
	}
	if result.Cost.IsZero() {
		t.Errorf("transfer should not be free")
	}
	want, _ := casper.NewMotes(900).CheckedSub(fee)
	if got := mustBalance(t, ctx, sourcePurse); want != got {
		t.Errorf("unexpected source balance, wanted %v, got %v", want, got)
	}
	if want, got := casper.NewMotes(100), mustBalance(t, ctx, mustMainPurse(t, ctx, accountB)); want != got {
		t.Errorf("unexpected target balance, wanted %v, got %v", want, got)
	}
}

func TestIntegration_TransferWithTargetIsVerified(t *testing.T) {
	ctx := NewTestContextBuilder().
		WithAccount(accountA, casper.NewMotes(0)).
		MustBuild(t)
	source := mustMainPurse(t, ctx, casper.DefaultAccountIdentity)
	target := mustMainPurse(t, ctx, accountA)

	for i := uint64(0); i < 3; i++ {
		session := NewSessionBuilder(inmemory.TransferToAccount(accountA, casper.NewMotes(1_000))).
			WithTimestamp(i).
			WithCheckTransferSuccess(TransferExpectation{SourcePurse: source, TargetPurse: &target, Amount: casper.NewMotes(1_000)}).
			Build()
		ctx.Run(t, session)
	}
	if want, got := casper.NewMotes(3_000), mustBalance(t, ctx, target); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
}

func TestIntegration_WrongAmountIsDetected(t *testing.T) {
	ctx := NewTestContextBuilder().WithAccount(accountA, casper.NewMotes(0)).MustBuild(t)
	source := mustMainPurse(t, ctx, casper.DefaultAccountIdentity)
	target := mustMainPurse(t, ctx, accountA)

	session := NewSessionBuilder(inmemory.TransferToAccount(accountA, casper.NewMotes(10))).
		WithCheckTransferSuccess(TransferExpectation{SourcePurse: source, TargetPurse: &target, Amount: casper.NewMotes(11)}).
		Build()
	err := ctx.Execute(session)
	var verificationErr *VerificationError
	if !errors.As(err, &verificationErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := TargetBalanceMismatch, verificationErr.Kind; want != got {
		t.Errorf("unexpected kind, wanted %v, got %v", want, got)
	}
}

func TestIntegration_ZeroTransferChecksFee(t *testing.T) {
	ctx := NewTestContextBuilder().MustBuild(t)
	source := mustMainPurse(t, ctx, casper.DefaultAccountIdentity)
	session := NewSessionBuilder(inmemory.DoNothing()).
		WithCheckTransferSuccess(TransferExpectation{SourcePurse: source}).
		Build()
	ctx.Run(t, session)
}

func TestIntegration_FailedSessionStillPaysFee(t *testing.T) {
	ctx := NewTestContextBuilder().MustBuild(t)
	source := mustMainPurse(t, ctx, casper.DefaultAccountIdentity)
	session := NewSessionBuilder(inmemory.Revert(3)).
		WithoutExpectSuccess().
		WithCheckTransferSuccess(TransferExpectation{SourcePurse: source}).
		Build()
	ctx.Run(t, session)

	result, _ := ctx.LastResult()
	var revert *casper.RevertError
	if !errors.As(result.Error, &revert) || revert.Code != 3 {
		t.Errorf("unexpected result error: %v", result.Error)
	}
}

func TestIntegration_UncommittedSessionLeavesStateUnchanged(t *testing.T) {
	ctx := NewTestContextBuilder().WithAccount(accountA, casper.NewMotes(0)).MustBuild(t)
	hash := ctx.PostStateHash()
	target := mustMainPurse(t, ctx, accountA)

	ctx.Run(t, NewSessionBuilder(inmemory.TransferToAccount(accountA, casper.NewMotes(5))).WithoutCommit().Build())

	if want, got := hash, ctx.PostStateHash(); want != got {
		t.Errorf("state changed without commit")
	}
	if want, got := casper.NewMotes(0), mustBalance(t, ctx, target); want != got {
		t.Errorf("uncommitted transfer visible, balance %v", got)
	}
}

func TestIntegration_GetBalanceIsIdempotent(t *testing.T) {
	ctx := NewTestContextBuilder().MustBuild(t)
	purse := mustMainPurse(t, ctx, casper.DefaultAccountIdentity)
	if a, b := mustBalance(t, ctx, purse), mustBalance(t, ctx, purse); a != b {
		t.Errorf("balance changed between reads: %v vs %v", a, b)
	}
}

func TestIntegration_QueryFollowsNamedKeys(t *testing.T) {
	ctx := NewTestContextBuilder().MustBuild(t)
	sender := casper.DefaultAccountIdentity

	if _, err := ctx.Query(sender, "counter", inmemory.CounterField); !errors.Is(err, casper.ErrValueNotFound) {
		t.Errorf("unexpected error before commit: %v", err)
	}

	ctx.Run(t, NewSessionBuilder(inmemory.CreateCounter("counter")).Build()).
		Run(t, NewSessionBuilder(inmemory.IncrementCounter("counter")).Build())

	value, err := ctx.Query(sender, "counter", inmemory.CounterField)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if count, err := value.CLValue.AsU64(); err != nil || count != 1 {
		t.Errorf("unexpected count %v, err %v", value.CLValue, err)
	}
}

func TestIntegration_ContextsAreDeterministic(t *testing.T) {
	run := func() casper.Hash {
		ctx := NewTestContextBuilder().WithAccount(accountA, casper.NewMotes(10)).MustBuild(t)
		ctx.Run(t, NewSessionBuilder(inmemory.TransferToAccount(accountB, casper.NewMotes(7))).Build())
		ctx.Run(t, NewSessionBuilder(inmemory.StoreValue("x", casper.NewU64Value(1))).Build())
		return ctx.PostStateHash()
	}
	if a, b := run(), run(); a != b {
		t.Errorf("state hashes differ: %v vs %v", a, b)
	}
}
