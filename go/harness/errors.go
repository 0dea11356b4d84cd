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
	"fmt"

	"github.com/CasperLabs/CasperLabs/go/casper"
)

// ExecutionError is reported if a session expected to succeed failed.
type ExecutionError struct {
	Deploy casper.Hash
	Result casper.ExecutionResult
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution of deploy %v failed unexpectedly (cost %v): %v", e.Deploy, e.Result.Cost, e.Result.Error)
}

func (e *ExecutionError) Unwrap() error {
	return e.Result.Error
}

// VerificationKind names the check of a TransferExpectation that failed.
type VerificationKind int

const (
	TargetBalanceMismatch VerificationKind = iota
	SourceBalanceMismatch
	CostConversionFailed
	ExpectedBalanceUnderflow
	ExpectedBalanceOverflow
)

func (k VerificationKind) String() string {
	switch k {
	case TargetBalanceMismatch:
		return "TargetBalanceMismatch"
	case SourceBalanceMismatch:
		return "SourceBalanceMismatch"
	case CostConversionFailed:
		return "CostConversionFailed"
	case ExpectedBalanceUnderflow:
		return "ExpectedBalanceUnderflow"
	case ExpectedBalanceOverflow:
		return "ExpectedBalanceOverflow"
	}
	return fmt.Sprintf("VerificationKind(%d)", k)
}

// VerificationError is reported if the balances observed after executing a
// session do not match its TransferExpectation.
//
// For mismatches, Expected and Actual are the compared balances. For an
// underflow, Expected is the transferred amount, Fee the converted cost and
// Actual the initial source balance; for an overflow, Expected is the credit
// and Actual the initial target balance. Err holds the cause of a failed
// cost conversion.
type VerificationError struct {
	Kind     VerificationKind
	Expected casper.Motes
	Actual   casper.Motes
	Fee      casper.Motes
	Err      error
}

func (e *VerificationError) Error() string {
	switch e.Kind {
	case TargetBalanceMismatch:
		return fmt.Sprintf("target ending balance does not match; expected: %v  actual: %v", e.Expected, e.Actual)
	case SourceBalanceMismatch:
		return fmt.Sprintf("source ending balance does not match; expected: %v  actual: %v", e.Expected, e.Actual)
	case CostConversionFailed:
		return fmt.Sprintf("failed to convert execution cost to motes: %v", e.Err)
	case ExpectedBalanceUnderflow:
		return fmt.Sprintf("expected source ending balance underflows; amount: %v  fee: %v  initial: %v", e.Expected, e.Fee, e.Actual)
	case ExpectedBalanceOverflow:
		return fmt.Sprintf("expected target ending balance overflows; credit: %v  initial: %v", e.Expected, e.Actual)
	}
	return fmt.Sprintf("verification failed (%v); expected: %v  actual: %v", e.Kind, e.Expected, e.Actual)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
