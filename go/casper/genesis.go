// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package casper

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
)

var (
	// DefaultAccountIdentity is the account every genesis configuration is
	// seeded with unless explicitly disabled.
	DefaultAccountIdentity = Identity{6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6}

	// DefaultAccountInitialBalance is the balance of the default account.
	DefaultAccountInitialBalance = NewMotes(100_000_000_000)

	// DefaultProtocolVersion is the protocol version of new configurations.
	DefaultProtocolVersion = ProtocolVersion{Major: 1}

	// SystemIdentity is reserved for the account owning the purse collecting
	// execution fees.
	SystemIdentity = Identity{}
)

var (
	ErrDuplicateGenesisAccount = errors.New("duplicate genesis account")
	ErrReservedIdentity        = errors.New("identity is reserved")
)

// GenesisAccount is an account to be created by the genesis process.
type GenesisAccount struct {
	Identity     Identity
	Balance      Motes
	BondedAmount Motes
}

// GenesisConfig is the immutable description of the initial ledger state.
type GenesisConfig struct {
	Name            string
	Timestamp       uint64
	ProtocolVersion ProtocolVersion
	Accounts        []GenesisAccount
	Costs           CostTable
}

// Hash computes a content based hash of the configuration.
func (c *GenesisConfig) Hash() (Hash, error) {
	encoded, err := rlp.EncodeToBytes(c)
	if err != nil {
		return Hash{}, fmt.Errorf("failed to encode genesis config: %w", err)
	}
	return HashOf(encoded), nil
}

// Request produces the request consumed by Engine.RunGenesis.
func (c *GenesisConfig) Request() (GenesisRequest, error) {
	hash, err := c.Hash()
	if err != nil {
		return GenesisRequest{}, err
	}
	return GenesisRequest{
		ConfigHash:      hash,
		ProtocolVersion: c.ProtocolVersion,
		Accounts:        slices.Clone(c.Accounts),
		Costs:           c.Costs,
	}, nil
}

// GenesisRequest is the input of the one-time ledger initialization.
type GenesisRequest struct {
	ConfigHash      Hash
	ProtocolVersion ProtocolVersion
	Accounts        []GenesisAccount
	Costs           CostTable
}

// GenesisBuilder accumulates the accounts of a genesis configuration.
type GenesisBuilder struct {
	name           string
	timestamp      uint64
	version        ProtocolVersion
	costs          CostTable
	includeDefault bool
	accounts       []GenesisAccount
}

// NewGenesisBuilder creates a builder seeded with the default account, the
// default protocol version and the default cost table.
func NewGenesisBuilder() *GenesisBuilder {
	return &GenesisBuilder{
		name:           "test-chain",
		version:        DefaultProtocolVersion,
		costs:          DefaultCostTable(),
		includeDefault: true,
	}
}

// WithAccount adds an account with the given initial balance and no bonded
// amount. Duplicates are not filtered here; Build rejects them.
func (b *GenesisBuilder) WithAccount(identity Identity, balance Motes) *GenesisBuilder {
	b.accounts = append(b.accounts, GenesisAccount{
		Identity: identity,
		Balance:  balance,
	})
	return b
}

// WithoutDefaultAccount drops the pre-seeded default account.
func (b *GenesisBuilder) WithoutDefaultAccount() *GenesisBuilder {
	b.includeDefault = false
	return b
}

func (b *GenesisBuilder) WithTimestamp(timestamp uint64) *GenesisBuilder {
	b.timestamp = timestamp
	return b
}

func (b *GenesisBuilder) WithProtocolVersion(version ProtocolVersion) *GenesisBuilder {
	b.version = version
	return b
}

func (b *GenesisBuilder) WithCosts(costs CostTable) *GenesisBuilder {
	b.costs = costs
	return b
}

// Build freezes the accumulated accounts into a configuration. Identities
// may only be listed once and the system identity may not be used.
func (b *GenesisBuilder) Build() (GenesisConfig, error) {
	accounts := make([]GenesisAccount, 0, len(b.accounts)+1)
	if b.includeDefault {
		accounts = append(accounts, GenesisAccount{
			Identity: DefaultAccountIdentity,
			Balance:  DefaultAccountInitialBalance,
		})
	}
	accounts = append(accounts, b.accounts...)

	seen := map[Identity]struct{}{}
	for _, account := range accounts {
		if account.Identity == SystemIdentity {
			return GenesisConfig{}, fmt.Errorf("%w: %v", ErrReservedIdentity, account.Identity)
		}
		if _, found := seen[account.Identity]; found {
			return GenesisConfig{}, fmt.Errorf("%w: %v", ErrDuplicateGenesisAccount, account.Identity)
		}
		seen[account.Identity] = struct{}{}
	}

	return GenesisConfig{
		Name:            b.name,
		Timestamp:       b.timestamp,
		ProtocolVersion: b.version,
		Accounts:        accounts,
		Costs:           b.costs,
	}, nil
}
