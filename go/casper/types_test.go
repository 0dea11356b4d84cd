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
	"encoding/json"
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestIdentity_JSON_Encoding(t *testing.T) {
	tests := []struct {
		identity Identity
		json     string
	}{
		{Identity{}, "\"0x0000000000000000000000000000000000000000000000000000000000000000\""},
		{Identity{1}, "\"0x0100000000000000000000000000000000000000000000000000000000000000\""},
		{Identity{31: 0xAB}, "\"0x00000000000000000000000000000000000000000000000000000000000000ab\""},
	}

	for _, test := range tests {
		encoded, err := json.Marshal(test.identity)
		if err != nil {
			t.Fatalf("failed to encode into JSON: %v", err)
		}
		if want, got := test.json, string(encoded); want != got {
			t.Errorf("unexpected JSON encoding, wanted %v, got %v", want, got)
		}

		var restored Identity
		if err := json.Unmarshal(encoded, &restored); err != nil {
			t.Fatalf("failed to restore identity: %v", err)
		}
		if test.identity != restored {
			t.Errorf("unexpected restored value, wanted %v, got %v", test.identity, restored)
		}
	}
}

func TestPurseAddress_InvalidTextIsRejected(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no hex prefix": "0000000000000000000000000000000000000000000000000000000000000000",
		"too short":     "0x00",
		"invalid hex":   "0x0g00000000000000000000000000000000000000000000000000000000000000",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			var purse PurseAddress
			if err := purse.UnmarshalText([]byte(text)); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestMotes_NewMotes(t *testing.T) {
	tests := []struct {
		args []uint64
		want string
	}{
		{nil, "0"},
		{[]uint64{1}, "1"},
		{[]uint64{1000}, "1000"},
		{[]uint64{1, 0}, "18446744073709551616"},
	}
	for _, test := range tests {
		if want, got := test.want, NewMotes(test.args...).String(); want != got {
			t.Errorf("unexpected value for %v, wanted %v, got %v", test.args, want, got)
		}
	}
}

func TestMotes_NewMotesPanicsOnTooManyArguments(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic, got nil")
		}
	}()
	NewMotes(1, 2, 3, 4, 5)
}

func TestMotes_CheckedAdd(t *testing.T) {
	max := MotesFromUint256(new(uint256.Int).SetAllOne())
	tests := map[string]struct {
		a, b Motes
		want Motes
		ok   bool
	}{
		"zero":     {NewMotes(), NewMotes(), NewMotes(), true},
		"small":    {NewMotes(1), NewMotes(2), NewMotes(3), true},
		"carry":    {NewMotes(math.MaxUint64), NewMotes(1), NewMotes(1, 0), true},
		"overflow": {max, NewMotes(1), Motes{}, false},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := test.a.CheckedAdd(test.b)
			if want, got := test.ok, ok; want != got {
				t.Fatalf("unexpected success, wanted %v, got %v", want, got)
			}
			if want, got := test.want, got; want != got {
				t.Errorf("unexpected sum, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestMotes_CheckedSub(t *testing.T) {
	tests := map[string]struct {
		a, b Motes
		want Motes
		ok   bool
	}{
		"zero":      {NewMotes(), NewMotes(), NewMotes(), true},
		"equal":     {NewMotes(7), NewMotes(7), NewMotes(), true},
		"small":     {NewMotes(10), NewMotes(3), NewMotes(7), true},
		"borrow":    {NewMotes(1, 0), NewMotes(1), NewMotes(math.MaxUint64), true},
		"underflow": {NewMotes(1), NewMotes(2), Motes{}, false},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := test.a.CheckedSub(test.b)
			if want, got := test.ok, ok; want != got {
				t.Fatalf("unexpected success, wanted %v, got %v", want, got)
			}
			if want, got := test.want, got; want != got {
				t.Errorf("unexpected difference, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestMotes_TextEncodingIsDecimal(t *testing.T) {
	value := NewMotes(1, 5)
	text, err := value.MarshalText()
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	if want, got := "18446744073709551621", string(text); want != got {
		t.Errorf("unexpected encoding, wanted %v, got %v", want, got)
	}

	var restored Motes
	if err := restored.UnmarshalText(text); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if value != restored {
		t.Errorf("unexpected restored value, wanted %v, got %v", value, restored)
	}
}

func TestMotes_InvalidTextIsRejected(t *testing.T) {
	for _, text := range []string{"", "abc", "0x10", "1.5"} {
		var motes Motes
		if err := motes.UnmarshalText([]byte(text)); err == nil {
			t.Errorf("expected error for %q, got nil", text)
		}
	}
}

func TestGas_CheckedArithmetic(t *testing.T) {
	if got, ok := NewGas(5).CheckedAdd(NewGas(6)); !ok || got != NewGas(11) {
		t.Errorf("unexpected sum, got %v (ok=%v)", got, ok)
	}
	if got, ok := NewGas(5).CheckedSub(NewGas(5)); !ok || !got.IsZero() {
		t.Errorf("unexpected difference, got %v (ok=%v)", got, ok)
	}
	if _, ok := NewGas(5).CheckedSub(NewGas(6)); ok {
		t.Errorf("expected underflow to be detected")
	}
}

func TestHashOf_IsSensitiveToInput(t *testing.T) {
	a := HashOf([]byte("a"), []byte("b"))
	b := HashOf([]byte("ab"))
	c := HashOf([]byte("ba"))
	if a != b {
		t.Errorf("hash must only depend on the concatenated input")
	}
	if a == c {
		t.Errorf("different inputs should produce different hashes")
	}
}
