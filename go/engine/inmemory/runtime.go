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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/CasperLabs/CasperLabs/go/casper"
)

// runtime is the environment a session code is executed in. All state
// accesses of a session are metered through the runtime.
type runtime struct {
	state    *trackingCopy
	costs    casper.CostTable
	deploy   casper.Deploy
	account  casper.Account
	gasLimit uint64
	gasUsed  uint64
	nonce    uint64
}

func newRuntime(state *trackingCopy, costs casper.CostTable, deploy casper.Deploy, account casper.Account, gasLimit uint64) *runtime {
	return &runtime{
		state:    state,
		costs:    costs,
		deploy:   deploy,
		account:  account,
		gasLimit: gasLimit,
	}
}

// execute charges the intrinsic gas of the deploy and runs its session.
func (r *runtime) execute() error {
	if err := r.useGas(r.costs.Base); err != nil {
		return err
	}
	size := r.deploy.Session.ArgsSize()
	if r.costs.PerArgByte != 0 && size > math.MaxUint64/r.costs.PerArgByte {
		r.gasUsed = r.gasLimit
		return casper.ErrOutOfGas
	}
	if err := r.useGas(size * r.costs.PerArgByte); err != nil {
		return err
	}
	code, found := builtinCodes[r.deploy.Session.Name]
	if !found {
		return fmt.Errorf("%w: %q", casper.ErrUnknownSessionCode, r.deploy.Session.Name)
	}
	return code(r, r.deploy.Session.Args)
}

// useGas consumes the given amount of gas. If the remaining gas is not
// sufficient, all of it is consumed and ErrOutOfGas is returned.
func (r *runtime) useGas(amount uint64) error {
	if amount > r.gasLimit-r.gasUsed {
		r.gasUsed = r.gasLimit
		return casper.ErrOutOfGas
	}
	r.gasUsed += amount
	return nil
}

func (r *runtime) read(key casper.Key) (casper.StoredValue, bool, error) {
	if err := r.useGas(r.costs.Read); err != nil {
		return casper.StoredValue{}, false, err
	}
	value, found := r.state.read(key)
	return value, found, nil
}

func (r *runtime) write(key casper.Key, value casper.StoredValue) error {
	if err := r.useGas(r.costs.Write); err != nil {
		return err
	}
	r.state.write(key, value)
	return nil
}

// newAddress derives a fresh address from the deploy hash. Addresses that
// are already in use are skipped.
func (r *runtime) newAddress() [32]byte {
	for {
		r.nonce++
		addr := casper.HashOf(r.deploy.Hash[:], binary.BigEndian.AppendUint64(nil, r.nonce))
		if r.isUnused(addr) {
			return addr
		}
	}
}

func (r *runtime) isUnused(addr [32]byte) bool {
	for _, tag := range []casper.KeyTag{casper.AccountKey, casper.HashKey, casper.URefKey, casper.BalanceKey} {
		if _, found := r.state.read(casper.Key{Tag: tag, Addr: addr}); found {
			return false
		}
	}
	return true
}

// newPurse creates an empty purse.
func (r *runtime) newPurse() (casper.PurseAddress, error) {
	if err := r.useGas(r.costs.CreatePurse); err != nil {
		return casper.PurseAddress{}, err
	}
	purse := casper.PurseAddress(r.newAddress())
	createPurse(r.state, purse, casper.Motes{})
	return purse, nil
}

// transfer moves the given amount between two existing purses.
func (r *runtime) transfer(source, target casper.PurseAddress, amount casper.Motes) error {
	if err := r.useGas(r.costs.Transfer); err != nil {
		return err
	}
	sourceBalance, found := r.state.readBalance(source)
	if !found {
		return fmt.Errorf("%w: source %v", casper.ErrPurseNotFound, source)
	}
	if _, found := r.state.readBalance(target); !found {
		return fmt.Errorf("%w: target %v", casper.ErrPurseNotFound, target)
	}
	remaining, ok := sourceBalance.CheckedSub(amount)
	if !ok {
		return fmt.Errorf("%w: purse %v holds %v, needed %v", casper.ErrInsufficientFunds, source, sourceBalance, amount)
	}
	r.state.writeBalance(source, remaining)

	// Read after the debit, the target may be the source.
	targetBalance, _ := r.state.readBalance(target)
	credited, ok := targetBalance.CheckedAdd(amount)
	if !ok {
		return fmt.Errorf("%w: balance of %v overflows", casper.ErrInvalidArgument, target)
	}
	r.state.writeBalance(target, credited)
	return nil
}

// ownsPurse reports whether the sender may withdraw from the given purse.
func (r *runtime) ownsPurse(purse casper.PurseAddress) bool {
	if purse == r.account.MainPurse() {
		return true
	}
	for _, named := range r.account.NamedKeys {
		if named.Key == casper.NewURefKey(purse) {
			return true
		}
	}
	return false
}

// putNamedKey binds the name in the named keys of the sender.
func (r *runtime) putNamedKey(name string, key casper.Key) error {
	account := r.account.WithNamedKey(name, key)
	if err := r.write(casper.NewAccountKey(account.Identity), casper.NewStoredAccount(account)); err != nil {
		return err
	}
	r.account = account
	return nil
}

// createPurse writes a purse with the given balance. The purse itself is
// recorded under its uref so it can be reached through named keys.
func createPurse(state *trackingCopy, purse casper.PurseAddress, balance casper.Motes) {
	state.write(casper.NewURefKey(purse), casper.NewStoredCLValue(casper.NewPurseValue(purse)))
	state.writeBalance(purse, balance)
}
