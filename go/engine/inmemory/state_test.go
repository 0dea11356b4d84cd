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
	"testing"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/log"
)

func newTestState(t *testing.T) *committedState {
	t.Helper()
	state, err := newCommittedState(memorydb.New(), 16, log.Root())
	if err != nil {
		t.Fatalf("failed to create state: %v", err)
	}
	return state
}

func TestStoredValue_EncodingRoundTrip(t *testing.T) {
	tests := map[string]casper.StoredValue{
		"u64":    casper.NewStoredCLValue(casper.NewU64Value(42)),
		"empty":  casper.NewStoredCLValue(casper.NewBytesValue(nil)),
		"motes":  casper.NewStoredCLValue(casper.NewMotesValue(casper.NewMotes(1, 2, 3, 4))),
		"string": casper.NewStoredCLValue(casper.NewStringValue("hello")),
		"account": casper.NewStoredAccount(casper.Account{
			Identity:  casper.Identity{1},
			Purse:     casper.PurseAddress{2},
			NamedKeys: []casper.NamedKey{{Name: "a", Key: casper.NewURefKey(casper.PurseAddress{3})}},
		}),
		"contract": casper.NewStoredContract(casper.Contract{
			Name:      "counter",
			NamedKeys: []casper.NamedKey{{Name: "count", Key: casper.NewURefKey(casper.PurseAddress{4})}},
		}),
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := encodeStoredValue(value)
			if err != nil {
				t.Fatalf("failed to encode: %v", err)
			}
			restored, err := decodeStoredValue(data)
			if err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if want, got := value.Kind, restored.Kind; want != got {
				t.Errorf("unexpected kind, wanted %v, got %v", want, got)
			}
			switch value.Kind {
			case casper.StoredCLValue:
				if !value.CLValue.Equal(restored.CLValue) {
					t.Errorf("unexpected value, wanted %v, got %v", value.CLValue, restored.CLValue)
				}
			case casper.StoredAccount:
				if want, got := value.Account.Purse, restored.Account.Purse; want != got {
					t.Errorf("unexpected purse, wanted %v, got %v", want, got)
				}
				if want, got := len(value.Account.NamedKeys), len(restored.Account.NamedKeys); want != got {
					t.Errorf("unexpected number of named keys, wanted %d, got %d", want, got)
				}
			case casper.StoredContract:
				if want, got := value.Contract.Name, restored.Contract.Name; want != got {
					t.Errorf("unexpected name, wanted %v, got %v", want, got)
				}
			}
		})
	}
}

func TestStoredValue_DecodingInvalidDataFails(t *testing.T) {
	tests := map[string][]byte{
		"empty":        nil,
		"unknown kind": {42, 0xc0},
		"truncated":    {byte(casper.StoredAccount), 0xf8},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeStoredValue(data); err == nil {
				t.Errorf("expected decoding to fail")
			}
		})
	}
}

func TestCommittedState_ApplyUpdatesHash(t *testing.T) {
	state := newTestState(t)
	empty := state.hash

	key := casper.NewURefKey(casper.PurseAddress{1})
	if err := state.apply(map[casper.Key]casper.StoredValue{
		key: casper.NewStoredCLValue(casper.NewU64Value(1)),
	}); err != nil {
		t.Fatalf("failed to apply: %v", err)
	}
	if state.hash == empty {
		t.Errorf("hash not updated")
	}
	value, found := state.get(key)
	if !found {
		t.Fatalf("value not found")
	}
	if got, err := value.CLValue.AsU64(); err != nil || got != 1 {
		t.Errorf("unexpected value %v, err %v", value.CLValue, err)
	}
}

func TestCommittedState_HashIsIndependentOfWriteOrder(t *testing.T) {
	a, b := casper.NewURefKey(casper.PurseAddress{1}), casper.NewURefKey(casper.PurseAddress{2})
	valueA := casper.NewStoredCLValue(casper.NewU64Value(1))
	valueB := casper.NewStoredCLValue(casper.NewU64Value(2))

	s1 := newTestState(t)
	if err := s1.apply(map[casper.Key]casper.StoredValue{a: valueA}); err != nil {
		t.Fatal(err)
	}
	if err := s1.apply(map[casper.Key]casper.StoredValue{b: valueB}); err != nil {
		t.Fatal(err)
	}

	s2 := newTestState(t)
	if err := s2.apply(map[casper.Key]casper.StoredValue{b: valueB, a: valueA}); err != nil {
		t.Fatal(err)
	}

	if want, got := s1.hash, s2.hash; want != got {
		t.Errorf("hashes differ: %v vs %v", want, got)
	}
}

func TestCommittedState_ReturnedValuesAreCopies(t *testing.T) {
	state := newTestState(t)
	key := casper.NewAccountKey(casper.Identity{1})
	account := casper.Account{
		Identity:  casper.Identity{1},
		NamedKeys: []casper.NamedKey{{Name: "a"}},
	}
	if err := state.apply(map[casper.Key]casper.StoredValue{key: casper.NewStoredAccount(account)}); err != nil {
		t.Fatal(err)
	}

	first, _ := state.get(key)
	first.Account.NamedKeys[0].Name = "modified"

	second, _ := state.get(key)
	if want, got := "a", second.Account.NamedKeys[0].Name; want != got {
		t.Errorf("cached value was modified, wanted %v, got %v", want, got)
	}
}

func TestTrackingCopy_WritesAreNotVisibleInBase(t *testing.T) {
	state := newTestState(t)
	tc := newTrackingCopy(state)
	purse := casper.PurseAddress{1}
	tc.writeBalance(purse, casper.NewMotes(10))

	if balance, found := tc.readBalance(purse); !found || balance != casper.NewMotes(10) {
		t.Errorf("unexpected balance in tracking copy: %v, found %t", balance, found)
	}
	if _, found := readBalance(state.get, purse); found {
		t.Errorf("write leaked into committed state")
	}
}

func TestTrackingCopy_RestoreRevertsToSnapshot(t *testing.T) {
	state := newTestState(t)
	tc := newTrackingCopy(state)
	a, b := casper.PurseAddress{1}, casper.PurseAddress{2}

	tc.writeBalance(a, casper.NewMotes(1))
	snapshot := tc.snapshot()
	tc.writeBalance(a, casper.NewMotes(2))
	tc.writeBalance(b, casper.NewMotes(3))
	tc.restore(snapshot)

	if balance, _ := tc.readBalance(a); balance != casper.NewMotes(1) {
		t.Errorf("unexpected balance of a after restore: %v", balance)
	}
	if _, found := tc.readBalance(b); found {
		t.Errorf("b should not exist after restore")
	}
	if want, got := 1, len(tc.effects()); want != got {
		t.Errorf("unexpected number of effects, wanted %d, got %d", want, got)
	}
}
