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
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"
)

// Identity is the public identifier of an account.
type Identity [32]byte

// PurseAddress identifies a value-holding purse. The address carries no
// access rights; within the harness every purse is readable.
type PurseAddress [32]byte

// Hash represents a 256-bit blake2b digest of deploys, configurations or
// global state.
type Hash [32]byte

// Motes is an amount of value in the smallest unit tracked by the ledger.
// It is a 256-bit unsigned integer; all arithmetic on it is checked.
type Motes [32]byte

// Gas is an amount of abstract execution cost. It is converted into Motes
// using a fixed conversion rate, see MotesFromGas.
type Gas [32]byte

func (i Identity) String() string {
	return fmt.Sprintf("0x%x", i[:])
}

func (i Identity) MarshalText() ([]byte, error) {
	return bytesToText(i[:])
}

func (i *Identity) UnmarshalText(data []byte) error {
	return textToBytes(i[:], data)
}

func (p PurseAddress) String() string {
	return fmt.Sprintf("0x%x", p[:])
}

func (p PurseAddress) MarshalText() ([]byte, error) {
	return bytesToText(p[:])
}

func (p *PurseAddress) UnmarshalText(data []byte) error {
	return textToBytes(p[:], data)
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return bytesToText(h[:])
}

func (h *Hash) UnmarshalText(data []byte) error {
	return textToBytes(h[:], data)
}

// HashOf computes the blake2b-256 digest of the concatenation of the given
// byte slices.
func HashOf(data ...[]byte) Hash {
	hasher, _ := blake2b.New256(nil) // < only fails for oversized keys
	for _, cur := range data {
		hasher.Write(cur)
	}
	var res Hash
	copy(res[:], hasher.Sum(nil))
	return res
}

// ----------------------------------------------------------------------------
// Motes
// ----------------------------------------------------------------------------

// NewMotes creates a new Motes instance from up to 4 uint64 arguments. The
// arguments are given in the order from most significant to least significant
// by padding leading zeros as needed. No argument results in zero.
func NewMotes(args ...uint64) Motes {
	return Motes(newWord(args...))
}

// MotesFromUint256 converts a *uint256.Int to Motes. A nil input is zero.
func MotesFromUint256(value *uint256.Int) Motes {
	if value == nil {
		return Motes{}
	}
	return value.Bytes32()
}

func (m Motes) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(m[:])
}

func (m Motes) String() string {
	return m.ToUint256().Dec()
}

func (m Motes) Cmp(o Motes) int {
	return bytes.Compare(m[:], o[:])
}

func (m Motes) IsZero() bool {
	return m == Motes{}
}

// CheckedAdd returns m+o and false if the sum overflows.
func (m Motes) CheckedAdd(o Motes) (Motes, bool) {
	res, overflow := new(uint256.Int).AddOverflow(m.ToUint256(), o.ToUint256())
	if overflow {
		return Motes{}, false
	}
	return MotesFromUint256(res), true
}

// CheckedSub returns m-o and false if the difference would be negative.
func (m Motes) CheckedSub(o Motes) (Motes, bool) {
	res, underflow := new(uint256.Int).SubOverflow(m.ToUint256(), o.ToUint256())
	if underflow {
		return Motes{}, false
	}
	return MotesFromUint256(res), true
}

func (m Motes) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Motes) UnmarshalText(data []byte) error {
	word, err := decimalToWord(data)
	if err != nil {
		return err
	}
	*m = Motes(word)
	return nil
}

// ----------------------------------------------------------------------------
// Gas
// ----------------------------------------------------------------------------

// NewGas creates a Gas amount the same way NewMotes creates Motes.
func NewGas(args ...uint64) Gas {
	return Gas(newWord(args...))
}

func GasFromUint256(value *uint256.Int) Gas {
	if value == nil {
		return Gas{}
	}
	return value.Bytes32()
}

func (g Gas) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(g[:])
}

func (g Gas) String() string {
	return g.ToUint256().Dec()
}

func (g Gas) Cmp(o Gas) int {
	return bytes.Compare(g[:], o[:])
}

func (g Gas) IsZero() bool {
	return g == Gas{}
}

func (g Gas) CheckedAdd(o Gas) (Gas, bool) {
	res, overflow := new(uint256.Int).AddOverflow(g.ToUint256(), o.ToUint256())
	if overflow {
		return Gas{}, false
	}
	return GasFromUint256(res), true
}

func (g Gas) CheckedSub(o Gas) (Gas, bool) {
	res, underflow := new(uint256.Int).SubOverflow(g.ToUint256(), o.ToUint256())
	if underflow {
		return Gas{}, false
	}
	return GasFromUint256(res), true
}

func (g Gas) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gas) UnmarshalText(data []byte) error {
	word, err := decimalToWord(data)
	if err != nil {
		return err
	}
	*g = Gas(word)
	return nil
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func newWord(args ...uint64) (result [32]byte) {
	if len(args) > 4 {
		panic("Too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		start := (offset * 8) + i*8
		binary.BigEndian.PutUint64(result[start:start+8], args[i])
	}
	return
}

func decimalToWord(data []byte) ([32]byte, error) {
	value, err := uint256.FromDecimal(strings.TrimSpace(string(data)))
	if err != nil {
		return [32]byte{}, fmt.Errorf("invalid amount %q: %w", data, err)
	}
	return value.Bytes32(), nil
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	data, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(trg), len(data); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg, data)
	return nil
}
