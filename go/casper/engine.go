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
)

//go:generate mockgen -source engine.go -destination engine_mock.go -package casper

// LedgerView provides read access to the committed state of a ledger.
// Effects of executions that have not been committed are not visible.
type LedgerView interface {
	// GetPurseBalance returns the balance of the given purse. The error
	// wraps ErrPurseNotFound if no such purse exists.
	GetPurseBalance(PurseAddress) (Motes, error)

	// GetAccount returns the account of the given identity, if present.
	GetAccount(Identity) (Account, bool)

	// Query resolves the value reachable from base by following the given
	// sequence of named keys. The error wraps ErrValueNotFound if any step
	// of the path does not resolve.
	Query(base Key, path []string) (StoredValue, error)
}

// Engine is an execution engine maintaining a ledger. Engines are not
// required to be thread-safe; a single owner drives them sequentially.
type Engine interface {
	LedgerView

	// RunGenesis initializes the ledger. It may only be called once, before
	// any other mutating operation. The resulting state hash is returned.
	RunGenesis(GenesisRequest) (Hash, error)

	// Exec executes the given deploy against the committed state. Its
	// effects remain pending until Commit is called and are discarded by the
	// next Exec. A failing session is reported through the result; the error
	// is only non-nil if the engine itself failed.
	Exec(Deploy) (ExecutionResult, error)

	// Commit applies the pending effects of the last Exec to the committed
	// state and returns the new state hash.
	Commit() (Hash, error)

	// PostStateHash returns the hash of the committed state.
	PostStateHash() Hash
}

var (
	ErrPurseNotFound      = errors.New("purse not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOutOfGas           = errors.New("out of gas")
	ErrUnknownSessionCode = errors.New("unknown session code")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrForgedReference    = errors.New("forged reference")
	ErrNothingToCommit    = errors.New("no pending execution to commit")
	ErrGenesisAlreadyRun  = errors.New("genesis has already been run")
	ErrGenesisNotRun      = errors.New("genesis has not been run")
)

// RevertError is the failure of a session that explicitly aborted itself.
type RevertError struct {
	Code uint64
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("session reverted with code %d", e.Code)
}
