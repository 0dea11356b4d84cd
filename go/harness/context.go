// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package harness runs sessions against an execution engine and verifies
// that value moved as declared, net of the fees charged for the execution.
package harness

import (
	"fmt"
	"testing"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/log"
)

// TestContext owns an engine initialized by a genesis run and executes
// sessions against it. A TestContext is not safe for concurrent use.
type TestContext struct {
	engine     casper.Engine
	convRate   uint64
	lastResult *casper.ExecutionResult
	log        log.Logger
}

// Execute runs the given session exactly once. If the session declares a
// TransferExpectation, the balances of the involved purses are read before
// and after the execution and compared against the expected movement of
// value. Failed checks are reported as *ExecutionError or
// *VerificationError; errors wrapping casper.ErrPurseNotFound indicate
// that a purse named by the expectation does not exist.
func (c *TestContext) Execute(session Session) error {
	check := session.CheckTransfer
	if check == nil {
		_, err := c.exec(session)
		return err
	}

	sourceInitial, err := c.engine.GetPurseBalance(check.SourcePurse)
	if err != nil {
		return fmt.Errorf("failed to get source purse balance: %w", err)
	}
	var targetInitial casper.Motes
	if check.TargetPurse != nil {
		if targetInitial, err = c.engine.GetPurseBalance(*check.TargetPurse); err != nil {
			return fmt.Errorf("failed to get target purse balance: %w", err)
		}
	}

	result, err := c.exec(session)
	if err != nil {
		return err
	}

	if check.TargetPurse != nil {
		expected, ok := targetInitial.CheckedAdd(check.Amount)
		if !ok {
			return &VerificationError{Kind: ExpectedBalanceOverflow, Expected: check.Amount, Actual: targetInitial}
		}
		actual, err := c.engine.GetPurseBalance(*check.TargetPurse)
		if err != nil {
			return fmt.Errorf("failed to get target ending balance: %w", err)
		}
		if expected != actual {
			return &VerificationError{Kind: TargetBalanceMismatch, Expected: expected, Actual: actual}
		}
	}

	fee, err := casper.MotesFromGas(result.Cost, c.convRate)
	if err != nil {
		return &VerificationError{Kind: CostConversionFailed, Err: err}
	}
	underflow := &VerificationError{Kind: ExpectedBalanceUnderflow, Expected: check.Amount, Fee: fee, Actual: sourceInitial}
	debit, ok := check.Amount.CheckedAdd(fee)
	if !ok {
		return underflow
	}
	expected, ok := sourceInitial.CheckedSub(debit)
	if !ok {
		return underflow
	}
	actual, err := c.engine.GetPurseBalance(check.SourcePurse)
	if err != nil {
		return fmt.Errorf("failed to get source ending balance: %w", err)
	}
	if expected != actual {
		return &VerificationError{Kind: SourceBalanceMismatch, Expected: expected, Actual: actual}
	}
	return nil
}

// exec executes the deploy of the session and applies its success and
// commit policy.
func (c *TestContext) exec(session Session) (casper.ExecutionResult, error) {
	deploy := session.Deploy
	result, err := c.engine.Exec(deploy)
	if err != nil {
		return result, fmt.Errorf("failed to execute deploy %v: %w", deploy.Hash, err)
	}
	c.lastResult = &result
	c.log.Debug("Executed session",
		"deploy", deploy.Hash,
		"session", deploy.Session.Name,
		"success", result.Success,
		"cost", result.Cost,
	)
	if session.ExpectSuccess && !result.Success {
		return result, &ExecutionError{Deploy: deploy.Hash, Result: result}
	}
	if session.Commit {
		hash, err := c.engine.Commit()
		if err != nil {
			return result, fmt.Errorf("failed to commit deploy %v: %w", deploy.Hash, err)
		}
		c.log.Debug("Committed session", "deploy", deploy.Hash, "state", hash)
	}
	return result, nil
}

// Run executes the given session and fails the test on any error. The
// context is returned to allow chaining of sessions.
func (c *TestContext) Run(t testing.TB, session Session) *TestContext {
	t.Helper()
	if err := c.Execute(session); err != nil {
		t.Fatalf("session %q failed: %v", session.Deploy.Session.Name, err)
	}
	return c
}

// Query resolves the value reachable from the account of the given
// identity by following the given named keys. Only committed state is
// observed.
func (c *TestContext) Query(identity casper.Identity, path ...string) (casper.StoredValue, error) {
	return c.engine.Query(casper.NewAccountKey(identity), path)
}

// GetBalance returns the committed balance of the given purse.
func (c *TestContext) GetBalance(purse casper.PurseAddress) (casper.Motes, error) {
	return c.engine.GetPurseBalance(purse)
}

// MainPurseAddress returns the main purse of the given account, or false if
// the account does not exist.
func (c *TestContext) MainPurseAddress(identity casper.Identity) (casper.PurseAddress, bool) {
	account, found := c.engine.GetAccount(identity)
	if !found {
		return casper.PurseAddress{}, false
	}
	return account.MainPurse(), true
}

// GetAccount returns the committed account of the given identity, or false
// if it does not exist.
func (c *TestContext) GetAccount(identity casper.Identity) (casper.Account, bool) {
	return c.engine.GetAccount(identity)
}

// PostStateHash returns the hash of the committed state.
func (c *TestContext) PostStateHash() casper.Hash {
	return c.engine.PostStateHash()
}

// LastResult returns the result of the most recent execution, or false if
// no session has been executed yet.
func (c *TestContext) LastResult() (casper.ExecutionResult, bool) {
	if c.lastResult == nil {
		return casper.ExecutionResult{}, false
	}
	return *c.lastResult, true
}
