// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package inmemory provides a deterministic execution engine keeping its
// global state in memory. Sessions are selected by name from a fixed set of
// builtin session codes.
package inmemory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/CasperLabs/CasperLabs/go/casper"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

const DefaultCacheSize = 1024

// Config is the configuration of an in-memory engine. Zero fields are
// replaced by their defaults.
type Config struct {
	CacheSize int        // number of decoded values kept in memory, DefaultCacheSize if zero
	Logger    log.Logger // log.Root() if nil
}

func init() {
	if err := casper.RegisterEngineFactory("inmemory", newEngineFromConfig); err != nil {
		panic(err)
	}
}

func newEngineFromConfig(config any) (casper.Engine, error) {
	switch c := config.(type) {
	case nil:
		return NewEngine(Config{})
	case Config:
		return NewEngine(c)
	case *Config:
		if c == nil {
			return NewEngine(Config{})
		}
		return NewEngine(*c)
	}
	return nil, fmt.Errorf("unsupported configuration type %T", config)
}

// NewEngine creates an engine with an empty ledger. RunGenesis needs to be
// called before deploys can be executed.
func NewEngine(config Config) (*Engine, error) {
	if config.CacheSize < 0 {
		return nil, fmt.Errorf("invalid cache size %d", config.CacheSize)
	}
	if config.CacheSize == 0 {
		config.CacheSize = DefaultCacheSize
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Root()
	}
	logger = logger.New("engine", "inmemory")
	state, err := newCommittedState(memorydb.New(), config.CacheSize, logger)
	if err != nil {
		return nil, err
	}
	return &Engine{state: state, log: logger}, nil
}

// Engine is an in-memory implementation of casper.Engine.
type Engine struct {
	state        *committedState
	pending      *trackingCopy
	costs        casper.CostTable
	rewardsPurse casper.PurseAddress
	genesisDone  bool
	log          log.Logger
}

// RewardsPurse is the purse all execution fees are paid into. It is the
// main purse of the system account.
func (e *Engine) RewardsPurse() casper.PurseAddress {
	return e.rewardsPurse
}

func (e *Engine) RunGenesis(request casper.GenesisRequest) (casper.Hash, error) {
	if e.genesisDone {
		return casper.Hash{}, casper.ErrGenesisAlreadyRun
	}

	state := newTrackingCopy(e.state)
	seed := request.ConfigHash
	counter := uint64(0)
	nextPurse := func() casper.PurseAddress {
		counter++
		return casper.PurseAddress(casper.HashOf(seed[:], binary.BigEndian.AppendUint64(nil, counter)))
	}

	rewardsPurse := nextPurse()
	createPurse(state, rewardsPurse, casper.Motes{})
	state.writeAccount(casper.Account{Identity: casper.SystemIdentity, Purse: rewardsPurse})

	supply := casper.Motes{}
	for _, account := range request.Accounts {
		if _, found := state.readAccount(account.Identity); found {
			return casper.Hash{}, fmt.Errorf("%w: %v", casper.ErrDuplicateGenesisAccount, account.Identity)
		}
		var ok bool
		if supply, ok = supply.CheckedAdd(account.Balance); !ok {
			return casper.Hash{}, fmt.Errorf("%w: total supply overflows", casper.ErrInvalidArgument)
		}
		purse := nextPurse()
		createPurse(state, purse, account.Balance)
		state.writeAccount(casper.Account{Identity: account.Identity, Purse: purse})
	}

	// The protocol data is part of the state so that it is covered by the
	// state hash.
	protocol, err := rlp.EncodeToBytes(&struct {
		Version casper.ProtocolVersion
		Costs   casper.CostTable
	}{request.ProtocolVersion, request.Costs})
	if err != nil {
		return casper.Hash{}, fmt.Errorf("failed to encode protocol data: %w", err)
	}
	state.write(casper.Key{Tag: casper.URefKey, Addr: seed}, casper.NewStoredCLValue(casper.NewBytesValue(protocol)))

	if err := e.state.apply(state.effects()); err != nil {
		return casper.Hash{}, err
	}
	e.costs = request.Costs
	e.rewardsPurse = rewardsPurse
	e.genesisDone = true
	e.log.Info("Genesis completed",
		"accounts", len(request.Accounts),
		"protocol", request.ProtocolVersion,
		"supply", supply,
		"hash", e.state.hash,
	)
	return e.state.hash, nil
}

func (e *Engine) Exec(deploy casper.Deploy) (casper.ExecutionResult, error) {
	if !e.genesisDone {
		return casper.ExecutionResult{}, casper.ErrGenesisNotRun
	}
	e.pending = nil

	state := newTrackingCopy(e.state)
	result, err := e.exec(state, deploy)
	if err != nil {
		return casper.ExecutionResult{}, err
	}
	e.pending = state
	e.log.Debug("Executed deploy",
		"hash", deploy.Hash,
		"session", deploy.Session.Name,
		"success", result.Success,
		"cost", result.Cost,
		"err", result.Error,
	)
	return result, nil
}

func (e *Engine) exec(state *trackingCopy, deploy casper.Deploy) (casper.ExecutionResult, error) {
	failure := func(err error) (casper.ExecutionResult, error) {
		return casper.ExecutionResult{Success: false, Error: err}, nil
	}

	account, found := state.readAccount(deploy.Sender)
	if !found {
		return failure(fmt.Errorf("%w: %v", casper.ErrAccountNotFound, deploy.Sender))
	}
	purse := account.MainPurse()

	// Buy gas for the full limit up front.
	limitMotes, err := casper.MotesFromGas(deploy.GasLimit, casper.ConvRate)
	if err != nil {
		return failure(fmt.Errorf("%w: gas limit %v: %w", casper.ErrInsufficientFunds, deploy.GasLimit, err))
	}
	balance, found := state.readBalance(purse)
	if !found {
		return failure(fmt.Errorf("%w: main purse of %v", casper.ErrPurseNotFound, deploy.Sender))
	}
	remaining, ok := balance.CheckedSub(limitMotes)
	if !ok {
		return failure(fmt.Errorf("%w: balance %v does not cover gas limit %v", casper.ErrInsufficientFunds, balance, deploy.GasLimit))
	}
	state.writeBalance(purse, remaining)

	gasLimit := uint64(math.MaxUint64)
	if limit := deploy.GasLimit.ToUint256(); limit.IsUint64() {
		gasLimit = limit.Uint64()
	}

	snapshot := state.snapshot()
	rt := newRuntime(state, e.costs, deploy, account, gasLimit)
	sessionErr := rt.execute()
	if sessionErr != nil {
		state.restore(snapshot)
		if errors.Is(sessionErr, casper.ErrOutOfGas) {
			rt.gasUsed = gasLimit
		}
	}

	// Settle: the sender gets back what was not used, the fee goes to the
	// rewards purse.
	cost := casper.NewGas(rt.gasUsed)
	fee, err := casper.MotesFromGas(cost, casper.ConvRate)
	if err != nil {
		return casper.ExecutionResult{}, fmt.Errorf("failed to convert cost %v: %w", cost, err)
	}
	refund, ok := limitMotes.CheckedSub(fee)
	if !ok {
		return casper.ExecutionResult{}, fmt.Errorf("fee %v exceeds prepaid %v", fee, limitMotes)
	}
	if err := credit(state, purse, refund); err != nil {
		return casper.ExecutionResult{}, err
	}
	if err := credit(state, e.rewardsPurse, fee); err != nil {
		return casper.ExecutionResult{}, err
	}

	return casper.ExecutionResult{
		Success: sessionErr == nil,
		Cost:    cost,
		Error:   sessionErr,
	}, nil
}

func credit(state *trackingCopy, purse casper.PurseAddress, amount casper.Motes) error {
	balance, found := state.readBalance(purse)
	if !found {
		return fmt.Errorf("%w: %v", casper.ErrPurseNotFound, purse)
	}
	balance, ok := balance.CheckedAdd(amount)
	if !ok {
		return fmt.Errorf("balance of purse %v overflows", purse)
	}
	state.writeBalance(purse, balance)
	return nil
}

func (e *Engine) Commit() (casper.Hash, error) {
	if e.pending == nil {
		return casper.Hash{}, casper.ErrNothingToCommit
	}
	effects := e.pending.effects()
	e.pending = nil
	if err := e.state.apply(effects); err != nil {
		return casper.Hash{}, err
	}
	e.log.Debug("Committed effects", "writes", len(effects), "hash", e.state.hash)
	return e.state.hash, nil
}

func (e *Engine) PostStateHash() casper.Hash {
	return e.state.hash
}

func (e *Engine) GetPurseBalance(purse casper.PurseAddress) (casper.Motes, error) {
	balance, found := readBalance(e.state.get, purse)
	if !found {
		return casper.Motes{}, fmt.Errorf("%w: %v", casper.ErrPurseNotFound, purse)
	}
	return balance, nil
}

func (e *Engine) GetAccount(identity casper.Identity) (casper.Account, bool) {
	value, found := e.state.get(casper.NewAccountKey(identity))
	if !found || value.Kind != casper.StoredAccount {
		return casper.Account{}, false
	}
	return value.Account, true
}

func (e *Engine) Query(base casper.Key, path []string) (casper.StoredValue, error) {
	return casper.ResolvePath(e.state.get, base, path)
}
