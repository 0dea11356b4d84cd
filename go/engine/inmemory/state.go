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
	"slices"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/maps"
)

// committedState is the global state visible to queries. Values are stored
// in encoded form in a key/value store; decoded values are cached by the
// hash of their encoding.
type committedState struct {
	db    ethdb.KeyValueStore
	cache *lru.Cache[casper.Hash, casper.StoredValue]
	hash  casper.Hash
	log   log.Logger
}

func newCommittedState(db ethdb.KeyValueStore, cacheSize int, logger log.Logger) (*committedState, error) {
	cache, err := lru.New[casper.Hash, casper.StoredValue](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create value cache: %w", err)
	}
	res := &committedState{
		db:    db,
		cache: cache,
		log:   logger,
	}
	if res.hash, err = res.computeHash(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *committedState) get(key casper.Key) (casper.StoredValue, bool) {
	data, err := s.db.Get(key.Bytes())
	if err != nil || data == nil {
		return casper.StoredValue{}, false
	}
	hash := casper.HashOf(data)
	if value, found := s.cache.Get(hash); found {
		return cloneStoredValue(value), true
	}
	value, err := decodeStoredValue(data)
	if err != nil {
		// Only values written by apply are present in the store.
		s.log.Error("Failed to decode stored value", "key", key, "err", err)
		return casper.StoredValue{}, false
	}
	s.cache.Add(hash, value)
	return cloneStoredValue(value), true
}

// apply writes the given values into the store in a single batch and
// updates the state hash.
func (s *committedState) apply(writes map[casper.Key]casper.StoredValue) error {
	batch := s.db.NewBatch()
	keys := maps.Keys(writes)
	slices.SortFunc(keys, compareKeys)
	for _, key := range keys {
		data, err := encodeStoredValue(writes[key])
		if err != nil {
			return fmt.Errorf("failed to encode value for %v: %w", key, err)
		}
		if err := batch.Put(key.Bytes(), data); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	hash, err := s.computeHash()
	if err != nil {
		return err
	}
	s.hash = hash
	return nil
}

// computeHash digests all key/value pairs in key order.
func (s *committedState) computeHash() (casper.Hash, error) {
	hasher, _ := blake2b.New256(nil)
	it := s.db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		hasher.Write(binary.BigEndian.AppendUint32(nil, uint32(len(it.Key()))))
		hasher.Write(it.Key())
		hasher.Write(binary.BigEndian.AppendUint32(nil, uint32(len(it.Value()))))
		hasher.Write(it.Value())
	}
	if err := it.Error(); err != nil {
		return casper.Hash{}, fmt.Errorf("failed to iterate state: %w", err)
	}
	var res casper.Hash
	copy(res[:], hasher.Sum(nil))
	return res, nil
}

func compareKeys(a, b casper.Key) int {
	if a.Tag != b.Tag {
		return int(a.Tag) - int(b.Tag)
	}
	return slices.Compare(a.Addr[:], b.Addr[:])
}

// ----------------------------------------------------------------------------
// Encoding
// ----------------------------------------------------------------------------

// Stored values are encoded as a one-byte kind tag followed by the RLP
// encoding of the respective variant.

func encodeStoredValue(value casper.StoredValue) ([]byte, error) {
	var payload any
	switch value.Kind {
	case casper.StoredCLValue:
		payload = &value.CLValue
	case casper.StoredAccount:
		payload = &value.Account
	case casper.StoredContract:
		payload = &value.Contract
	default:
		return nil, fmt.Errorf("unknown stored value kind %d", value.Kind)
	}
	data, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(value.Kind)}, data...), nil
}

func decodeStoredValue(data []byte) (casper.StoredValue, error) {
	if len(data) == 0 {
		return casper.StoredValue{}, fmt.Errorf("empty encoding")
	}
	res := casper.StoredValue{Kind: casper.StoredValueKind(data[0])}
	var err error
	switch res.Kind {
	case casper.StoredCLValue:
		err = rlp.DecodeBytes(data[1:], &res.CLValue)
	case casper.StoredAccount:
		err = rlp.DecodeBytes(data[1:], &res.Account)
	case casper.StoredContract:
		err = rlp.DecodeBytes(data[1:], &res.Contract)
	default:
		err = fmt.Errorf("unknown stored value kind %d", data[0])
	}
	return res, err
}

func cloneStoredValue(value casper.StoredValue) casper.StoredValue {
	res := value
	res.CLValue.Bytes = slices.Clone(value.CLValue.Bytes)
	res.Account.NamedKeys = slices.Clone(value.Account.NamedKeys)
	res.Contract.NamedKeys = slices.Clone(value.Contract.NamedKeys)
	return res
}
