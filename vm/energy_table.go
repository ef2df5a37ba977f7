// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/vechain/txexec/thor"
)

// memoryEnergyCost calculates the quadratic energy for memory expansion. It does so
// only for the memory region that is expanded, not the total memory.
func memoryEnergyCost(mem *Memory, newMemSize uint64) (uint64, error) {
	if newMemSize == 0 {
		return 0, nil
	}
	// The maximum that will fit in a uint64 is max_word_count - 1. Anything above
	// that will result in an overflow. Additionally, a newMemSize which results in
	// a newMemSizeWords larger than 0xFFFFFFFF will cause the square operation to
	// overflow. The constant 0x1FFFFFFFE0 is the highest number that can be used
	// without overflowing the energy calculation.
	if newMemSize > 0x1FFFFFFFE0 {
		return 0, errEnergyOverflow
	}
	newMemSizeWords := toWordSize(newMemSize)
	newMemSize = newMemSizeWords * 32

	if newMemSize > uint64(mem.Len()) {
		square := newMemSizeWords * newMemSizeWords
		linCoef := newMemSizeWords * thor.EnergyMemory
		quadCoef := square / thor.EnergyQuadCoeffDiv
		newTotalFee := linCoef + quadCoef

		fee := newTotalFee - mem.lastEnergyCost
		mem.lastEnergyCost = newTotalFee

		return fee, nil
	}
	return 0, nil
}

func constEnergyFunc(energy uint64) energyFunc {
	return func(_ *VM, _ *Contract, _ *Stack, _ *Memory, _ uint64) (uint64, error) {
		return energy, nil
	}
}

// addEnergy sums energy parts, failing on overflow.
func addEnergy(parts ...uint64) (uint64, error) {
	var sum uint64
	for _, p := range parts {
		var overflow bool
		if sum, overflow = math.SafeAdd(sum, p); overflow {
			return 0, errEnergyOverflow
		}
	}
	return sum, nil
}

// wordEnergy returns perWord energy for every 32 byte word of size.
func wordEnergy(size *uint256.Int, perWord uint64) (uint64, error) {
	n, overflow := size.Uint64WithOverflow()
	if overflow {
		return 0, errEnergyOverflow
	}
	e, overflow := math.SafeMul(toWordSize(n), perWord)
	if overflow {
		return 0, errEnergyOverflow
	}
	return e, nil
}

// memoryEnergyFunc charges base plus memory expansion.
func memoryEnergyFunc(base uint64) energyFunc {
	return func(_ *VM, _ *Contract, _ *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		energy, err := memoryEnergyCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		return addEnergy(base, energy)
	}
}

// memoryCopierEnergy charges base, memory expansion and EnergyCopy per copied word. The
// copied length is the stack item at stackpos.
func memoryCopierEnergy(base uint64, stackpos int) energyFunc {
	return func(_ *VM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		energy, err := memoryEnergyCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		words, err := wordEnergy(stack.Back(stackpos), thor.EnergyCopy)
		if err != nil {
			return 0, err
		}
		return addEnergy(base, energy, words)
	}
}

var (
	energyCallDataCopy   = memoryCopierEnergy(thor.EnergyVeryLow, 2)
	energyCodeCopy       = memoryCopierEnergy(thor.EnergyVeryLow, 2)
	energyReturnDataCopy = memoryCopierEnergy(thor.EnergyVeryLow, 2)
	energyExtCodeCopy    = memoryCopierEnergy(thor.EnergyExtCode, 3)

	energyMLoad   = memoryEnergyFunc(thor.EnergyVeryLow)
	energyMStore  = memoryEnergyFunc(thor.EnergyVeryLow)
	energyMStore8 = memoryEnergyFunc(thor.EnergyVeryLow)
	energyReturn  = memoryEnergyFunc(thor.EnergyZero)
	energyRevert  = memoryEnergyFunc(thor.EnergyZero)
	energyCreate  = memoryEnergyFunc(thor.EnergyCreate)
)

func energySStore(vm *VM, contract *Contract, stack *Stack, _ *Memory, _ uint64) (uint64, error) {
	slot := thor.Bytes32(stack.Back(0).Bytes32())
	current, err := vm.state.GetStorage(contract.Address(), slot)
	if err != nil {
		return 0, err
	}
	val := stack.Back(1)
	switch {
	case current.IsZero() && !val.IsZero():
		return thor.EnergySstoreSet, nil
	case !current.IsZero() && val.IsZero():
		vm.refund += thor.EnergySstoreRefund
		return thor.EnergySstoreReset, nil
	default:
		return thor.EnergySstoreReset, nil
	}
}

func makeEnergyLog(n uint64) energyFunc {
	return func(_ *VM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		requestedSize, overflow := stack.Back(1).Uint64WithOverflow()
		if overflow {
			return 0, errEnergyOverflow
		}
		energy, err := memoryEnergyCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		data, overflow := math.SafeMul(requestedSize, thor.EnergyLogData)
		if overflow {
			return 0, errEnergyOverflow
		}
		return addEnergy(thor.EnergyLog, n*thor.EnergyLogTopic, energy, data)
	}
}

func energySha3(_ *VM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	energy, err := memoryEnergyCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words, err := wordEnergy(stack.Back(1), thor.EnergySha3Word)
	if err != nil {
		return 0, err
	}
	return addEnergy(thor.EnergySha3, energy, words)
}

func energyCreate2(_ *VM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	energy, err := memoryEnergyCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words, err := wordEnergy(stack.Back(2), thor.EnergySha3Word)
	if err != nil {
		return 0, err
	}
	return addEnergy(thor.EnergyCreate, energy, words)
}

func energyExp(_ *VM, _ *Contract, stack *Stack, _ *Memory, _ uint64) (uint64, error) {
	expByteLen := uint64((stack.Back(1).BitLen() + 7) / 8)
	return addEnergy(thor.EnergyExp, expByteLen*thor.EnergyExpByte)
}

// callEnergy returns the energy handed to a child frame: the requested amount capped by
// all but one 64th of what is left after base.
func callEnergy(available, base uint64, requested *uint256.Int) (uint64, error) {
	if available < base {
		return 0, errOutOfEnergy
	}
	available -= base
	energy := available - available/64
	if !requested.IsUint64() || energy < requested.Uint64() {
		return energy, nil
	}
	return requested.Uint64(), nil
}

// makeEnergyCall builds the energy function of the call family. valuePos is the stack
// position of the transferred amount, or -1 when the call moves no value; newAccount tells
// whether a transfer to a missing account is charged for creating it.
func makeEnergyCall(valuePos int, newAccount bool) energyFunc {
	return func(vm *VM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		energy, err := memoryEnergyCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		base := []uint64{thor.EnergyCall, energy}
		if valuePos >= 0 && !stack.Back(valuePos).IsZero() {
			base = append(base, thor.EnergyCallValue)
			if newAccount {
				exists, err := vm.state.Exists(addressOf(stack.Back(1)))
				if err != nil {
					return 0, err
				}
				if !exists {
					base = append(base, thor.EnergyCallNewAcct)
				}
			}
		}
		cost, err := addEnergy(base...)
		if err != nil {
			return 0, err
		}
		vm.callEnergyTemp, err = callEnergy(contract.Energy, cost, stack.Back(0))
		if err != nil {
			return 0, err
		}
		return addEnergy(cost, vm.callEnergyTemp)
	}
}

var (
	energyCall         = makeEnergyCall(2, true)
	energyCallCode     = makeEnergyCall(2, false)
	energyDelegateCall = makeEnergyCall(-1, false)
	energyStaticCall   = makeEnergyCall(-1, false)
	energyCallToken    = makeEnergyCall(2, true)
)

func energySelfdestruct(vm *VM, contract *Contract, stack *Stack, _ *Memory, _ uint64) (uint64, error) {
	beneficiary := addressOf(stack.Back(0))
	exists, err := vm.state.Exists(beneficiary)
	if err != nil {
		return 0, err
	}
	if exists {
		return thor.EnergySuicide, nil
	}
	balance, err := vm.state.GetBalance(contract.Address())
	if err != nil {
		return 0, err
	}
	if balance > 0 {
		return thor.EnergySuicide + thor.EnergyCallNewAcct, nil
	}
	return thor.EnergySuicide, nil
}
