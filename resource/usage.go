// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package resource

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/txexec/thor"
)

// mulDiv returns x*y/d rounded down, saturated at the max uint64. A zero divisor yields zero.
func mulDiv(x, y, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	z, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(x), uint256.NewInt(y), uint256.NewInt(d))
	if overflow || !z.IsUint64() {
		return math.MaxUint64
	}
	return z.Uint64()
}

// mulDivCeil is mulDiv rounded up.
func mulDivCeil(x, y, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	n := new(uint256.Int).Mul(uint256.NewInt(x), uint256.NewInt(y))
	n.Add(n, uint256.NewInt(d-1))
	n.Div(n, uint256.NewInt(d))
	if !n.IsUint64() {
		return math.MaxUint64
	}
	return n.Uint64()
}

// increase folds usage consumed at slot now into lastUsage recorded at slot lastTime.
// The recorded usage decays linearly and reaches zero once a full window has elapsed.
// Averages are kept with thor.UsagePrecision so that small usages survive the decay.
func increase(lastUsage, usage, lastTime, now, window uint64) uint64 {
	if window == 0 {
		return lastUsage + usage
	}
	avgLast := mulDivCeil(lastUsage, thor.UsagePrecision, window)
	avgUsage := mulDivCeil(usage, thor.UsagePrecision, window)

	if now > lastTime {
		if elapsed := now - lastTime; elapsed < window {
			decay := float64(window-elapsed) / float64(window)
			avgLast = uint64(math.Round(float64(avgLast) * decay))
		} else {
			avgLast = 0
		}
	}
	return mulDiv(avgLast+avgUsage, window, thor.UsagePrecision)
}

// recovered returns lastUsage after decaying from lastTime to now.
func recovered(lastUsage, lastTime, now, window uint64) uint64 {
	return increase(lastUsage, 0, lastTime, now, window)
}

// quota returns the share of totalLimit backed by weight out of totalWeight.
func quota(weight, totalLimit, totalWeight uint64) uint64 {
	return mulDiv(weight, totalLimit, totalWeight)
}
