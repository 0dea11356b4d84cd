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
	"encoding/binary"
	"fmt"
)

// Code names a session program known to the engine and the runtime
// arguments it is invoked with.
type Code struct {
	Name string
	Args []CLValue
}

// ArgsSize is the number of bytes of all runtime arguments, used by engines
// to charge for the deploy size.
func (c Code) ArgsSize() uint64 {
	size := uint64(0)
	for _, arg := range c.Args {
		size += uint64(len(arg.Bytes))
	}
	return size
}

// Deploy is a unit of work submitted to an Engine.
type Deploy struct {
	Hash      Hash     // unique identifier, also used to derive new purse addresses
	Sender    Identity // the account paying for the execution
	Session   Code     // the program to execute on behalf of the sender
	GasLimit  Gas      // the maximum amount of gas that may be charged
	Timestamp uint64   // milliseconds since the epoch, informational
}

// ComputeHash derives a content based hash for the deploy. It ignores the
// Hash field itself.
func (d *Deploy) ComputeHash() Hash {
	parts := [][]byte{
		d.Sender[:],
		[]byte(d.Session.Name),
		d.GasLimit[:],
		binary.BigEndian.AppendUint64(nil, d.Timestamp),
	}
	for _, arg := range d.Session.Args {
		parts = append(parts, []byte{byte(arg.Type)}, binary.BigEndian.AppendUint64(nil, uint64(len(arg.Bytes))), arg.Bytes)
	}
	return HashOf(parts...)
}

// ExecutionResult summarizes the outcome of executing a single Deploy.
type ExecutionResult struct {
	Success bool  // false if the session failed and its effects got reverted
	Cost    Gas   // the gas charged to the sender, regardless of success
	Error   error // the reason of a failure, nil on success
}

// ProtocolVersion identifies the rules an engine runs a deploy with.
type ProtocolVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CostTable is the gas schedule of an engine.
type CostTable struct {
	Base        uint64 // charged once per deploy
	PerArgByte  uint64 // charged per byte of runtime arguments
	Transfer    uint64 // charged per balance transfer
	CreatePurse uint64 // charged per created purse or account
	Write       uint64 // charged per value written to the global state
	Read        uint64 // charged per value read from the global state
}

// DefaultCostTable returns the schedule used unless a genesis configuration
// overrides it.
func DefaultCostTable() CostTable {
	return CostTable{
		Base:        10_000,
		PerArgByte:  10,
		Transfer:    2_500,
		CreatePurse: 5_000,
		Write:       1_000,
		Read:        100,
	}
}
