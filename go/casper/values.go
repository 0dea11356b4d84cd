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
	"errors"
	"fmt"
	"slices"
	"strings"
)

// KeyTag distinguishes the different name spaces of the global state.
type KeyTag uint8

const (
	AccountKey KeyTag = iota // < addresses an Account by its Identity
	HashKey                  // < addresses a Contract by its hash
	URefKey                  // < addresses a CLValue, including purses
	BalanceKey               // < addresses the balance of a purse
)

func (t KeyTag) String() string {
	switch t {
	case AccountKey:
		return "account"
	case HashKey:
		return "hash"
	case URefKey:
		return "uref"
	case BalanceKey:
		return "balance"
	}
	return fmt.Sprintf("KeyTag(%d)", t)
}

// Key locates a value in the global state.
type Key struct {
	Tag  KeyTag
	Addr [32]byte
}

func NewAccountKey(identity Identity) Key {
	return Key{Tag: AccountKey, Addr: identity}
}

func NewURefKey(purse PurseAddress) Key {
	return Key{Tag: URefKey, Addr: purse}
}

func NewBalanceKey(purse PurseAddress) Key {
	return Key{Tag: BalanceKey, Addr: purse}
}

func NewHashKey(hash Hash) Key {
	return Key{Tag: HashKey, Addr: hash}
}

func (k Key) String() string {
	return fmt.Sprintf("%v-0x%x", k.Tag, k.Addr[:])
}

// Bytes produces the canonical byte representation of the key, used as the
// key in key/value stores.
func (k Key) Bytes() []byte {
	res := make([]byte, 0, 33)
	res = append(res, byte(k.Tag))
	return append(res, k.Addr[:]...)
}

func KeyFromBytes(data []byte) (Key, error) {
	if len(data) != 33 {
		return Key{}, fmt.Errorf("invalid key length %d", len(data))
	}
	if KeyTag(data[0]) > BalanceKey {
		return Key{}, fmt.Errorf("invalid key tag %d", data[0])
	}
	res := Key{Tag: KeyTag(data[0])}
	copy(res.Addr[:], data[1:])
	return res, nil
}

// NamedKey binds a human readable name to a key in the global state.
type NamedKey struct {
	Name string
	Key  Key
}

// Account is the record stored under an AccountKey.
type Account struct {
	Identity  Identity
	Purse     PurseAddress
	NamedKeys []NamedKey
}

// MainPurse returns the default purse of the account.
func (a *Account) MainPurse() PurseAddress {
	return a.Purse
}

// NamedKey performs a lookup of the key bound to the given name.
func (a *Account) NamedKey(name string) (Key, bool) {
	return lookupNamedKey(a.NamedKeys, name)
}

// WithNamedKey returns a copy of the account with the given name bound to
// key, replacing a previous binding of the same name.
func (a *Account) WithNamedKey(name string, key Key) Account {
	return Account{
		Identity:  a.Identity,
		Purse:     a.Purse,
		NamedKeys: bindNamedKey(a.NamedKeys, name, key),
	}
}

// Contract is the record stored under a HashKey.
type Contract struct {
	Name      string
	NamedKeys []NamedKey
}

func (c *Contract) NamedKey(name string) (Key, bool) {
	return lookupNamedKey(c.NamedKeys, name)
}

func lookupNamedKey(keys []NamedKey, name string) (Key, bool) {
	for _, cur := range keys {
		if cur.Name == name {
			return cur.Key, true
		}
	}
	return Key{}, false
}

func bindNamedKey(keys []NamedKey, name string, key Key) []NamedKey {
	res := slices.Clone(keys)
	for i := range res {
		if res[i].Name == name {
			res[i].Key = key
			return res
		}
	}
	return append(res, NamedKey{Name: name, Key: key})
}

// ----------------------------------------------------------------------------
// CLValue
// ----------------------------------------------------------------------------

// CLType enumerates the types a CLValue may carry.
type CLType uint8

const (
	CLTypeBytes CLType = iota
	CLTypeU64
	CLTypeMotes
	CLTypeString
	CLTypeIdentity
	CLTypePurse
	CLTypeKey
)

func (t CLType) String() string {
	switch t {
	case CLTypeBytes:
		return "bytes"
	case CLTypeU64:
		return "u64"
	case CLTypeMotes:
		return "motes"
	case CLTypeString:
		return "string"
	case CLTypeIdentity:
		return "identity"
	case CLTypePurse:
		return "purse"
	case CLTypeKey:
		return "key"
	}
	return fmt.Sprintf("CLType(%d)", t)
}

// CLValue is a typed value passed as a runtime argument or stored in the
// global state.
type CLValue struct {
	Type  CLType
	Bytes []byte
}

var ErrUnexpectedType = errors.New("unexpected value type")

func NewBytesValue(data []byte) CLValue {
	return CLValue{Type: CLTypeBytes, Bytes: slices.Clone(data)}
}

func NewU64Value(value uint64) CLValue {
	return CLValue{Type: CLTypeU64, Bytes: binary.BigEndian.AppendUint64(nil, value)}
}

func NewMotesValue(value Motes) CLValue {
	return CLValue{Type: CLTypeMotes, Bytes: slices.Clone(value[:])}
}

func NewStringValue(value string) CLValue {
	return CLValue{Type: CLTypeString, Bytes: []byte(value)}
}

func NewIdentityValue(value Identity) CLValue {
	return CLValue{Type: CLTypeIdentity, Bytes: slices.Clone(value[:])}
}

func NewPurseValue(value PurseAddress) CLValue {
	return CLValue{Type: CLTypePurse, Bytes: slices.Clone(value[:])}
}

func NewKeyValue(value Key) CLValue {
	return CLValue{Type: CLTypeKey, Bytes: value.Bytes()}
}

func (v CLValue) expect(t CLType, size int) error {
	if v.Type != t {
		return fmt.Errorf("%w: wanted %v, got %v", ErrUnexpectedType, t, v.Type)
	}
	if size >= 0 && len(v.Bytes) != size {
		return fmt.Errorf("invalid %v encoding of %d bytes", t, len(v.Bytes))
	}
	return nil
}

func (v CLValue) AsBytes() ([]byte, error) {
	if err := v.expect(CLTypeBytes, -1); err != nil {
		return nil, err
	}
	return slices.Clone(v.Bytes), nil
}

func (v CLValue) AsU64() (uint64, error) {
	if err := v.expect(CLTypeU64, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v.Bytes), nil
}

func (v CLValue) AsMotes() (Motes, error) {
	if err := v.expect(CLTypeMotes, 32); err != nil {
		return Motes{}, err
	}
	return Motes(v.Bytes), nil
}

func (v CLValue) AsString() (string, error) {
	if err := v.expect(CLTypeString, -1); err != nil {
		return "", err
	}
	return string(v.Bytes), nil
}

func (v CLValue) AsIdentity() (Identity, error) {
	if err := v.expect(CLTypeIdentity, 32); err != nil {
		return Identity{}, err
	}
	return Identity(v.Bytes), nil
}

func (v CLValue) AsPurse() (PurseAddress, error) {
	if err := v.expect(CLTypePurse, 32); err != nil {
		return PurseAddress{}, err
	}
	return PurseAddress(v.Bytes), nil
}

func (v CLValue) AsKey() (Key, error) {
	if err := v.expect(CLTypeKey, 33); err != nil {
		return Key{}, err
	}
	return KeyFromBytes(v.Bytes)
}

func (v CLValue) Equal(o CLValue) bool {
	return v.Type == o.Type && slices.Equal(v.Bytes, o.Bytes)
}

func (v CLValue) String() string {
	switch v.Type {
	case CLTypeU64:
		if res, err := v.AsU64(); err == nil {
			return fmt.Sprintf("%d", res)
		}
	case CLTypeMotes:
		if res, err := v.AsMotes(); err == nil {
			return res.String()
		}
	case CLTypeString:
		return fmt.Sprintf("%q", v.Bytes)
	case CLTypeKey:
		if res, err := v.AsKey(); err == nil {
			return res.String()
		}
	}
	return fmt.Sprintf("%v(0x%x)", v.Type, v.Bytes)
}

// ----------------------------------------------------------------------------
// StoredValue
// ----------------------------------------------------------------------------

// StoredValueKind names the variant held by a StoredValue.
type StoredValueKind uint8

const (
	StoredCLValue StoredValueKind = iota
	StoredAccount
	StoredContract
)

// StoredValue is the content of the global state under a single key. Only
// the field matching Kind is meaningful.
type StoredValue struct {
	Kind     StoredValueKind
	CLValue  CLValue
	Account  Account
	Contract Contract
}

func NewStoredCLValue(value CLValue) StoredValue {
	return StoredValue{Kind: StoredCLValue, CLValue: value}
}

func NewStoredAccount(account Account) StoredValue {
	return StoredValue{Kind: StoredAccount, Account: account}
}

func NewStoredContract(contract Contract) StoredValue {
	return StoredValue{Kind: StoredContract, Contract: contract}
}

// namedKeys returns the named keys of accounts and contracts, or false for
// plain values that cannot be traversed.
func (v *StoredValue) namedKeys() ([]NamedKey, bool) {
	switch v.Kind {
	case StoredAccount:
		return v.Account.NamedKeys, true
	case StoredContract:
		return v.Contract.NamedKeys, true
	}
	return nil, false
}

// ErrValueNotFound is reported when a key or path does not resolve.
var ErrValueNotFound = errors.New("value not found")

// ResolvePath follows the given sequence of named keys starting at base,
// reading values through get. The traversal fails with ErrValueNotFound if
// the base or any intermediate name does not resolve.
func ResolvePath(get func(Key) (StoredValue, bool), base Key, path []string) (StoredValue, error) {
	current, found := get(base)
	if !found {
		return StoredValue{}, fmt.Errorf("%w: %v", ErrValueNotFound, base)
	}
	for i, name := range path {
		keys, ok := current.namedKeys()
		if !ok {
			return StoredValue{}, fmt.Errorf("%w: %v/%v is not traversable", ErrValueNotFound, base, pathPrefix(path, i))
		}
		next, ok := lookupNamedKey(keys, name)
		if !ok {
			return StoredValue{}, fmt.Errorf("%w: no name %q at %v/%v", ErrValueNotFound, name, base, pathPrefix(path, i))
		}
		current, found = get(next)
		if !found {
			return StoredValue{}, fmt.Errorf("%w: %v/%v", ErrValueNotFound, base, pathPrefix(path, i+1))
		}
	}
	return current, nil
}

func pathPrefix(path []string, n int) string {
	return strings.Join(path[:n], "/")
}
