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
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ConvRate is the number of Motes charged per unit of Gas. Engines and
// anything verifying their fee deductions must use the same rate.
const ConvRate uint64 = 1

var (
	ErrZeroConversionRate = errors.New("conversion rate must be positive")
	ErrConversionOverflow = errors.New("conversion overflows motes range")
)

// MotesFromGas converts a Gas amount into Motes by multiplying it with the
// given rate. The conversion is exact; it fails instead of truncating.
func MotesFromGas(gas Gas, rate uint64) (Motes, error) {
	if rate == 0 {
		return Motes{}, ErrZeroConversionRate
	}
	res, overflow := new(uint256.Int).MulOverflow(gas.ToUint256(), uint256.NewInt(rate))
	if overflow {
		return Motes{}, fmt.Errorf("%w: %v gas at rate %d", ErrConversionOverflow, gas, rate)
	}
	return MotesFromUint256(res), nil
}
