// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package inmemory

import (
	"fmt"

	"github.com/CasperLabs/CasperLabs/go/casper"
)

// Names of the session codes supported by this engine.
const (
	DoNothingCode            = "do_nothing"
	TransferToAccountCode    = "transfer_to_account"
	TransferPurseToPurseCode = "transfer_purse_to_purse"
	CreatePurseCode          = "create_purse"
	StoreValueCode           = "store_value"
	RevertCode               = "revert"
	CreateCounterCode        = "create_counter"
	IncrementCounterCode     = "increment_counter"
)

// CounterField is the name under which counter contracts keep their count.
const CounterField = "count"

type sessionCode func(r *runtime, args []casper.CLValue) error

var builtinCodes = map[string]sessionCode{
	DoNothingCode:            doNothing,
	TransferToAccountCode:    transferToAccount,
	TransferPurseToPurseCode: transferPurseToPurse,
	CreatePurseCode:          createNamedPurse,
	StoreValueCode:           storeValue,
	RevertCode:               revert,
	CreateCounterCode:        createCounter,
	IncrementCounterCode:     incrementCounter,
}

// SessionCodes lists the names of all supported session codes.
func SessionCodes() []string {
	return []string{
		DoNothingCode,
		TransferToAccountCode,
		TransferPurseToPurseCode,
		CreatePurseCode,
		StoreValueCode,
		RevertCode,
		CreateCounterCode,
		IncrementCounterCode,
	}
}

func DoNothing() casper.Code {
	return casper.Code{Name: DoNothingCode}
}

// TransferToAccount moves amount from the sender's main purse to the main
// purse of target. The target account is created if it does not exist.
func TransferToAccount(target casper.Identity, amount casper.Motes) casper.Code {
	return casper.Code{
		Name: TransferToAccountCode,
		Args: []casper.CLValue{casper.NewIdentityValue(target), casper.NewMotesValue(amount)},
	}
}

// TransferPurseToPurse moves amount between two purses. The source must be
// owned by the sender.
func TransferPurseToPurse(source, target casper.PurseAddress, amount casper.Motes) casper.Code {
	return casper.Code{
		Name: TransferPurseToPurseCode,
		Args: []casper.CLValue{casper.NewPurseValue(source), casper.NewPurseValue(target), casper.NewMotesValue(amount)},
	}
}

// CreatePurse creates a purse funded from the main purse and binds it to
// name in the sender's named keys.
func CreatePurse(name string, amount casper.Motes) casper.Code {
	return casper.Code{
		Name: CreatePurseCode,
		Args: []casper.CLValue{casper.NewStringValue(name), casper.NewMotesValue(amount)},
	}
}

// StoreValue stores value under a new uref bound to name.
func StoreValue(name string, value casper.CLValue) casper.Code {
	return casper.Code{
		Name: StoreValueCode,
		Args: []casper.CLValue{casper.NewStringValue(name), value},
	}
}

// Revert aborts the session with the given code.
func Revert(code uint64) casper.Code {
	return casper.Code{
		Name: RevertCode,
		Args: []casper.CLValue{casper.NewU64Value(code)},
	}
}

// CreateCounter installs a counter contract bound to name.
func CreateCounter(name string) casper.Code {
	return casper.Code{
		Name: CreateCounterCode,
		Args: []casper.CLValue{casper.NewStringValue(name)},
	}
}

// IncrementCounter increments the counter bound to name.
func IncrementCounter(name string) casper.Code {
	return casper.Code{
		Name: IncrementCounterCode,
		Args: []casper.CLValue{casper.NewStringValue(name)},
	}
}

// ----------------------------------------------------------------------------
// Implementations
// ----------------------------------------------------------------------------

func doNothing(_ *runtime, args []casper.CLValue) error {
	return expectArgCount(args, 0)
}

func transferToAccount(r *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 2); err != nil {
		return err
	}
	target, err := args[0].AsIdentity()
	if err != nil {
		return invalidArgument(0, err)
	}
	amount, err := args[1].AsMotes()
	if err != nil {
		return invalidArgument(1, err)
	}

	value, found, err := r.read(casper.NewAccountKey(target))
	if err != nil {
		return err
	}
	var targetPurse casper.PurseAddress
	if found {
		targetPurse = value.Account.MainPurse()
	} else {
		if targetPurse, err = r.newPurse(); err != nil {
			return err
		}
		account := casper.Account{Identity: target, Purse: targetPurse}
		if err := r.write(casper.NewAccountKey(target), casper.NewStoredAccount(account)); err != nil {
			return err
		}
	}
	return r.transfer(r.account.MainPurse(), targetPurse, amount)
}

func transferPurseToPurse(r *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 3); err != nil {
		return err
	}
	source, err := args[0].AsPurse()
	if err != nil {
		return invalidArgument(0, err)
	}
	target, err := args[1].AsPurse()
	if err != nil {
		return invalidArgument(1, err)
	}
	amount, err := args[2].AsMotes()
	if err != nil {
		return invalidArgument(2, err)
	}
	if !r.ownsPurse(source) {
		return fmt.Errorf("%w: purse %v is not owned by %v", casper.ErrForgedReference, source, r.account.Identity)
	}
	return r.transfer(source, target, amount)
}

func createNamedPurse(r *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 2); err != nil {
		return err
	}
	name, err := args[0].AsString()
	if err != nil {
		return invalidArgument(0, err)
	}
	amount, err := args[1].AsMotes()
	if err != nil {
		return invalidArgument(1, err)
	}
	purse, err := r.newPurse()
	if err != nil {
		return err
	}
	if err := r.transfer(r.account.MainPurse(), purse, amount); err != nil {
		return err
	}
	return r.putNamedKey(name, casper.NewURefKey(purse))
}

func storeValue(r *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 2); err != nil {
		return err
	}
	name, err := args[0].AsString()
	if err != nil {
		return invalidArgument(0, err)
	}
	key := casper.Key{Tag: casper.URefKey, Addr: r.newAddress()}
	if err := r.write(key, casper.NewStoredCLValue(args[1])); err != nil {
		return err
	}
	return r.putNamedKey(name, key)
}

func revert(_ *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 1); err != nil {
		return err
	}
	code, err := args[0].AsU64()
	if err != nil {
		return invalidArgument(0, err)
	}
	return &casper.RevertError{Code: code}
}

func createCounter(r *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 1); err != nil {
		return err
	}
	name, err := args[0].AsString()
	if err != nil {
		return invalidArgument(0, err)
	}
	countKey := casper.Key{Tag: casper.URefKey, Addr: r.newAddress()}
	if err := r.write(countKey, casper.NewStoredCLValue(casper.NewU64Value(0))); err != nil {
		return err
	}
	contractKey := casper.Key{Tag: casper.HashKey, Addr: r.newAddress()}
	contract := casper.Contract{
		Name:      name,
		NamedKeys: []casper.NamedKey{{Name: CounterField, Key: countKey}},
	}
	if err := r.write(contractKey, casper.NewStoredContract(contract)); err != nil {
		return err
	}
	return r.putNamedKey(name, contractKey)
}

func incrementCounter(r *runtime, args []casper.CLValue) error {
	if err := expectArgCount(args, 1); err != nil {
		return err
	}
	name, err := args[0].AsString()
	if err != nil {
		return invalidArgument(0, err)
	}
	contractKey, found := r.account.NamedKey(name)
	if !found || contractKey.Tag != casper.HashKey {
		return fmt.Errorf("%w: no counter named %q", casper.ErrInvalidArgument, name)
	}
	value, found, err := r.read(contractKey)
	if err != nil {
		return err
	}
	if !found || value.Kind != casper.StoredContract {
		return fmt.Errorf("%w: %v is not a contract", casper.ErrInvalidArgument, contractKey)
	}
	countKey, found := value.Contract.NamedKey(CounterField)
	if !found {
		return fmt.Errorf("%w: contract %q has no %s", casper.ErrInvalidArgument, name, CounterField)
	}
	value, found, err = r.read(countKey)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %v", casper.ErrValueNotFound, countKey)
	}
	count, err := value.CLValue.AsU64()
	if err != nil {
		return fmt.Errorf("%w: %w", casper.ErrInvalidArgument, err)
	}
	return r.write(countKey, casper.NewStoredCLValue(casper.NewU64Value(count+1)))
}

func expectArgCount(args []casper.CLValue, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: expected %d arguments, got %d", casper.ErrInvalidArgument, want, len(args))
	}
	return nil
}

func invalidArgument(index int, err error) error {
	return fmt.Errorf("%w: argument %d: %w", casper.ErrInvalidArgument, index, err)
}
