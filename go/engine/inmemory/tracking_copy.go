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
	"github.com/CasperLabs/CasperLabs/go/casper"
)

// snapshot identifies a point in the journal of a trackingCopy.
type snapshot int

// trackingCopy collects the writes of a single execution on top of the
// committed state. Every write is journaled so that the effects of a failed
// session can be rolled back to a snapshot.
type trackingCopy struct {
	base   *committedState
	writes map[casper.Key]casper.StoredValue
	undo   []func()
}

func newTrackingCopy(base *committedState) *trackingCopy {
	return &trackingCopy{
		base:   base,
		writes: map[casper.Key]casper.StoredValue{},
	}
}

func (c *trackingCopy) read(key casper.Key) (casper.StoredValue, bool) {
	if value, found := c.writes[key]; found {
		return cloneStoredValue(value), true
	}
	return c.base.get(key)
}

func (c *trackingCopy) write(key casper.Key, value casper.StoredValue) {
	original, written := c.writes[key]
	c.writes[key] = cloneStoredValue(value)
	c.undo = append(c.undo, func() {
		if written {
			c.writes[key] = original
		} else {
			delete(c.writes, key)
		}
	})
}

func (c *trackingCopy) snapshot() snapshot {
	return snapshot(len(c.undo))
}

func (c *trackingCopy) restore(s snapshot) {
	for len(c.undo) > int(s) {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

// effects returns the writes collected so far.
func (c *trackingCopy) effects() map[casper.Key]casper.StoredValue {
	return c.writes
}

func (c *trackingCopy) readAccount(identity casper.Identity) (casper.Account, bool) {
	value, found := c.read(casper.NewAccountKey(identity))
	if !found || value.Kind != casper.StoredAccount {
		return casper.Account{}, false
	}
	return value.Account, true
}

func (c *trackingCopy) writeAccount(account casper.Account) {
	c.write(casper.NewAccountKey(account.Identity), casper.NewStoredAccount(account))
}

func (c *trackingCopy) readBalance(purse casper.PurseAddress) (casper.Motes, bool) {
	return readBalance(c.read, purse)
}

func (c *trackingCopy) writeBalance(purse casper.PurseAddress, balance casper.Motes) {
	c.write(casper.NewBalanceKey(purse), casper.NewStoredCLValue(casper.NewMotesValue(balance)))
}

func readBalance(get func(casper.Key) (casper.StoredValue, bool), purse casper.PurseAddress) (casper.Motes, bool) {
	value, found := get(casper.NewBalanceKey(purse))
	if !found || value.Kind != casper.StoredCLValue {
		return casper.Motes{}, false
	}
	balance, err := value.CLValue.AsMotes()
	if err != nil {
		return casper.Motes{}, false
	}
	return balance, true
}
