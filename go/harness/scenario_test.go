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
	"path/filepath"
	"strings"
	"testing"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/log"
)

func TestScenario_TestdataScenariosPass(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatalf("no scenarios found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}
			if err := scenario.Execute(log.New()); err != nil {
				t.Errorf("scenario failed: %v", err)
			}
		})
	}
}

func TestScenario_ParseResolvesValues(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: parse
accounts:
  - name: alice
    balance: 12345678901234567890123
steps:
  - session: do_nothing
    gas_limit: 100000
    expect_success: false
`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	var want casper.Motes
	if err := want.UnmarshalText([]byte("12345678901234567890123")); err != nil {
		t.Fatal(err)
	}
	if got := scenario.Accounts[0].Balance; want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	step := scenario.Steps[0]
	if step.GasLimit == nil || *step.GasLimit != casper.NewGas(100_000) {
		t.Errorf("unexpected gas limit %v", step.GasLimit)
	}
	if step.ExpectSuccess == nil || *step.ExpectSuccess {
		t.Errorf("expect_success not parsed")
	}
	if step.Commit != nil {
		t.Errorf("commit should default to unset")
	}
}

func TestScenario_InvalidScenariosAreRejected(t *testing.T) {
	tests := map[string]string{
		"unknown field":     "name: x\nstep: []\n",
		"missing name":      "steps:\n  - session: do_nothing\n",
		"no steps":          "name: x\n",
		"missing session":   "name: x\nsteps:\n  - sender: alice\n",
		"duplicate account": "name: x\naccounts:\n  - name: a\n  - name: a\nsteps:\n  - session: do_nothing\n",
		"default account":   "name: x\naccounts:\n  - name: default\nsteps:\n  - session: do_nothing\n",
		"invalid balance":   "name: x\naccounts:\n  - name: a\n    balance: lots\nsteps:\n  - session: do_nothing\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(data)); err == nil {
				t.Errorf("expected parsing to fail")
			}
		})
	}
}

func TestScenario_FailingExpectationIsReported(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong
accounts:
  - name: alice
    balance: 0
steps:
  - session: transfer_to_account
    args:
      - {type: identity, value: alice}
      - {type: motes, value: "10"}
    transfer:
      source: default
      target: alice
      amount: 11
`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	err = scenario.Execute(log.New())
	var verificationErr *VerificationError
	if !errors.As(err, &verificationErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "step 0") {
		t.Errorf("error does not name step: %v", err)
	}
}

func TestScenario_UnknownAccountInTransferIsUsageError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unknown
steps:
  - session: do_nothing
    transfer:
      source: nobody
      amount: 0
`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if err := scenario.Execute(nil); !errors.Is(err, casper.ErrPurseNotFound) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScenario_FinalBalanceMismatchIsReported(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: balances
accounts:
  - name: alice
    balance: 5
steps:
  - session: do_nothing
balances:
  alice: 6
`))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if err := scenario.Execute(nil); err == nil || !strings.Contains(err.Error(), "alice") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAccountIdentity_DefaultNameMapsToDefaultAccount(t *testing.T) {
	if want, got := casper.DefaultAccountIdentity, AccountIdentity(DefaultAccountName); want != got {
		t.Errorf("unexpected identity, wanted %v, got %v", want, got)
	}
	if AccountIdentity("alice") == AccountIdentity("bob") {
		t.Errorf("distinct names map to the same identity")
	}
}
