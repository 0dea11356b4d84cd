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
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"
)

// DefaultAccountName refers to casper.DefaultAccountIdentity in scenarios.
const DefaultAccountName = "default"

// Scenario is a sequence of sessions executed against a fresh ledger,
// described in YAML. Accounts are referred to by name.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Engine is the registered engine to run the scenario on, DefaultEngine
	// if empty.
	Engine string `yaml:"engine,omitempty"`

	// Costs overrides the default cost table of the genesis configuration.
	Costs *CostSpec `yaml:"costs,omitempty"`

	// Accounts are added to the genesis configuration next to the default
	// account.
	Accounts []AccountSpec `yaml:"accounts,omitempty"`

	Steps []StepSpec `yaml:"steps"`

	// Balances are the main purse balances expected after all steps.
	Balances map[string]casper.Motes `yaml:"balances,omitempty"`
}

type CostSpec struct {
	Base        uint64 `yaml:"base"`
	PerArgByte  uint64 `yaml:"per_arg_byte"`
	Transfer    uint64 `yaml:"transfer"`
	CreatePurse uint64 `yaml:"create_purse"`
	Write       uint64 `yaml:"write"`
	Read        uint64 `yaml:"read"`
}

type AccountSpec struct {
	Name    string       `yaml:"name"`
	Balance casper.Motes `yaml:"balance"`
}

// StepSpec describes a single session of a scenario.
type StepSpec struct {
	// Session is the name of the session code to run.
	Session string `yaml:"session"`

	// Sender is the name of the sending account, the default account if
	// empty.
	Sender string `yaml:"sender,omitempty"`

	GasLimit *casper.Gas `yaml:"gas_limit,omitempty"`

	Args []ArgSpec `yaml:"args,omitempty"`

	// ExpectSuccess and Commit default to true.
	ExpectSuccess *bool `yaml:"expect_success,omitempty"`
	Commit        *bool `yaml:"commit,omitempty"`

	Transfer *TransferSpec `yaml:"transfer,omitempty"`
}

// ArgSpec is a runtime argument of a session. Supported types are u64,
// motes, string, bytes, identity and purse. Identities and purses may be
// given as account names, purses resolving to the account's main purse.
type ArgSpec struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// TransferSpec is the TransferExpectation of a step. Source and Target
// name accounts whose main purses are checked.
type TransferSpec struct {
	Source string       `yaml:"source"`
	Target string       `yaml:"target,omitempty"`
	Amount casper.Motes `yaml:"amount"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}
	names := map[string]struct{}{DefaultAccountName: {}}
	for _, account := range s.Accounts {
		if account.Name == "" {
			return errors.New("account name is required")
		}
		if _, found := names[account.Name]; found {
			return fmt.Errorf("account %q is declared twice", account.Name)
		}
		names[account.Name] = struct{}{}
	}
	for i, step := range s.Steps {
		if step.Session == "" {
			return fmt.Errorf("step %d: session is required", i)
		}
		if step.Transfer != nil && step.Transfer.Source == "" {
			return fmt.Errorf("step %d: transfer source is required", i)
		}
	}
	return nil
}

// AccountIdentity maps account names used in scenarios to identities.
func AccountIdentity(name string) casper.Identity {
	if name == DefaultAccountName || name == "" {
		return casper.DefaultAccountIdentity
	}
	return casper.Identity(casper.HashOf([]byte(name)))
}

// Build creates a test context holding the accounts of the scenario.
func (s *Scenario) Build(logger log.Logger) (*TestContext, error) {
	builder := NewTestContextBuilder().WithLogger(logger)
	if s.Engine != "" {
		builder.WithEngine(s.Engine, nil)
	}
	if s.Costs != nil {
		builder.WithCosts(casper.CostTable{
			Base:        s.Costs.Base,
			PerArgByte:  s.Costs.PerArgByte,
			Transfer:    s.Costs.Transfer,
			CreatePurse: s.Costs.CreatePurse,
			Write:       s.Costs.Write,
			Read:        s.Costs.Read,
		})
	}
	for _, account := range s.Accounts {
		builder.WithAccount(AccountIdentity(account.Name), account.Balance)
	}
	return builder.Build()
}

// Execute runs all steps of the scenario on a fresh context and checks the
// final balances.
func (s *Scenario) Execute(logger log.Logger) error {
	if logger == nil {
		logger = log.Root()
	}
	logger = logger.New("scenario", s.Name)
	ctx, err := s.Build(logger)
	if err != nil {
		return err
	}
	for i, step := range s.Steps {
		session, err := step.session(ctx)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Session, err)
		}
		if err := ctx.Execute(session); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Session, err)
		}
	}
	for name, want := range s.Balances {
		purse, found := ctx.MainPurseAddress(AccountIdentity(name))
		if !found {
			return fmt.Errorf("final balance of %q: %w", name, casper.ErrAccountNotFound)
		}
		got, err := ctx.GetBalance(purse)
		if err != nil {
			return fmt.Errorf("final balance of %q: %w", name, err)
		}
		if want != got {
			return fmt.Errorf("final balance of %q does not match; expected: %v  actual: %v", name, want, got)
		}
	}
	logger.Info("Scenario passed", "steps", len(s.Steps))
	return nil
}

// session resolves the names used by the step against the given context.
func (step *StepSpec) session(ctx *TestContext) (Session, error) {
	args := make([]casper.CLValue, 0, len(step.Args))
	for i, arg := range step.Args {
		value, err := arg.value(ctx)
		if err != nil {
			return Session{}, fmt.Errorf("argument %d: %w", i, err)
		}
		args = append(args, value)
	}
	builder := NewSessionBuilder(casper.Code{Name: step.Session, Args: args}).
		WithAddress(AccountIdentity(step.Sender))
	if step.GasLimit != nil {
		builder.WithGasLimit(*step.GasLimit)
	}
	if step.ExpectSuccess != nil && !*step.ExpectSuccess {
		builder.WithoutExpectSuccess()
	}
	if step.Commit != nil && !*step.Commit {
		builder.WithoutCommit()
	}
	if step.Transfer != nil {
		source, err := mainPurseOf(ctx, step.Transfer.Source)
		if err != nil {
			return Session{}, err
		}
		expectation := TransferExpectation{SourcePurse: source, Amount: step.Transfer.Amount}
		if step.Transfer.Target != "" {
			target, err := mainPurseOf(ctx, step.Transfer.Target)
			if err != nil {
				return Session{}, err
			}
			expectation.TargetPurse = &target
		}
		builder.WithCheckTransferSuccess(expectation)
	}
	return builder.Build(), nil
}

func (arg *ArgSpec) value(ctx *TestContext) (casper.CLValue, error) {
	switch strings.ToLower(arg.Type) {
	case "u64":
		value, err := strconv.ParseUint(arg.Value, 10, 64)
		if err != nil {
			return casper.CLValue{}, err
		}
		return casper.NewU64Value(value), nil
	case "motes":
		var value casper.Motes
		if err := value.UnmarshalText([]byte(arg.Value)); err != nil {
			return casper.CLValue{}, err
		}
		return casper.NewMotesValue(value), nil
	case "string":
		return casper.NewStringValue(arg.Value), nil
	case "bytes":
		return casper.NewBytesValue([]byte(arg.Value)), nil
	case "identity":
		if strings.HasPrefix(arg.Value, "0x") {
			var value casper.Identity
			if err := value.UnmarshalText([]byte(arg.Value)); err != nil {
				return casper.CLValue{}, err
			}
			return casper.NewIdentityValue(value), nil
		}
		return casper.NewIdentityValue(AccountIdentity(arg.Value)), nil
	case "purse":
		if strings.HasPrefix(arg.Value, "0x") {
			var value casper.PurseAddress
			if err := value.UnmarshalText([]byte(arg.Value)); err != nil {
				return casper.CLValue{}, err
			}
			return casper.NewPurseValue(value), nil
		}
		purse, err := mainPurseOf(ctx, arg.Value)
		if err != nil {
			return casper.CLValue{}, err
		}
		return casper.NewPurseValue(purse), nil
	}
	return casper.CLValue{}, fmt.Errorf("unsupported argument type %q", arg.Type)
}

func mainPurseOf(ctx *TestContext, name string) (casper.PurseAddress, error) {
	purse, found := ctx.MainPurseAddress(AccountIdentity(name))
	if !found {
		return casper.PurseAddress{}, fmt.Errorf("%w: no account named %q", casper.ErrPurseNotFound, name)
	}
	return purse, nil
}
