// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package harness

import (
	"github.com/CasperLabs/CasperLabs/go/casper"
)

// DefaultGasLimit is the gas limit of sessions not specifying their own.
var DefaultGasLimit = casper.NewGas(10_000_000)

// Session is a deploy to be executed by a TestContext together with the
// policy for checking its outcome.
type Session struct {
	Deploy casper.Deploy

	// ExpectSuccess makes the execution fail if the deploy did not succeed.
	ExpectSuccess bool

	// Commit applies the effects of the deploy to the ledger. Without a
	// commit, balances read after the execution are those from before it,
	// so combining this with CheckTransfer is the caller's responsibility.
	Commit bool

	// CheckTransfer, if set, verifies the balance changes of the source and
	// the optional target purse, including the fee paid for the execution.
	CheckTransfer *TransferExpectation
}

// NewSession creates a session expecting success and committing its
// effects, without transfer checks.
func NewSession(deploy casper.Deploy) Session {
	return Session{
		Deploy:        deploy,
		ExpectSuccess: true,
		Commit:        true,
	}
}

// TransferExpectation describes the movement of value a session is
// expected to perform. The source is expected to be debited by Amount plus
// the execution fee. If TargetPurse is set, it is expected to be credited by
// Amount; otherwise the target is not checked.
type TransferExpectation struct {
	SourcePurse casper.PurseAddress
	TargetPurse *casper.PurseAddress
	Amount      casper.Motes
}

// SessionBuilder assembles a Session for the given session code.
type SessionBuilder struct {
	deploy        casper.Deploy
	hashSet       bool
	expectSuccess bool
	commit        bool
	check         *TransferExpectation
}

// NewSessionBuilder creates a builder for a session run by the default
// account with the default gas limit.
func NewSessionBuilder(code casper.Code) *SessionBuilder {
	return &SessionBuilder{
		deploy: casper.Deploy{
			Sender:   casper.DefaultAccountIdentity,
			Session:  code,
			GasLimit: DefaultGasLimit,
		},
		expectSuccess: true,
		commit:        true,
	}
}

// WithAddress sets the account sending the deploy.
func (b *SessionBuilder) WithAddress(sender casper.Identity) *SessionBuilder {
	b.deploy.Sender = sender
	return b
}

func (b *SessionBuilder) WithGasLimit(limit casper.Gas) *SessionBuilder {
	b.deploy.GasLimit = limit
	return b
}

// WithDeployHash overrides the hash otherwise derived from the content of
// the deploy.
func (b *SessionBuilder) WithDeployHash(hash casper.Hash) *SessionBuilder {
	b.deploy.Hash = hash
	b.hashSet = true
	return b
}

func (b *SessionBuilder) WithTimestamp(timestamp uint64) *SessionBuilder {
	b.deploy.Timestamp = timestamp
	return b
}

func (b *SessionBuilder) WithCheckTransferSuccess(expectation TransferExpectation) *SessionBuilder {
	if expectation.TargetPurse != nil {
		target := *expectation.TargetPurse
		expectation.TargetPurse = &target
	}
	b.check = &expectation
	return b
}

func (b *SessionBuilder) WithoutExpectSuccess() *SessionBuilder {
	b.expectSuccess = false
	return b
}

func (b *SessionBuilder) WithoutCommit() *SessionBuilder {
	b.commit = false
	return b
}

func (b *SessionBuilder) Build() Session {
	deploy := b.deploy
	deploy.Session.Args = append([]casper.CLValue(nil), deploy.Session.Args...)
	if !b.hashSet {
		deploy.Hash = deploy.ComputeHash()
	}
	var check *TransferExpectation
	if b.check != nil {
		c := *b.check
		check = &c
	}
	return Session{
		Deploy:        deploy,
		ExpectSuccess: b.expectSuccess,
		Commit:        b.commit,
		CheckTransfer: check,
	}
}
