// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

func opAdd(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

// strictDivisor fails a division by zero when strict math is enabled.
func strictDivisor(vm *VM, y *uint256.Int) error {
	if vm.cfg.AllowStrictMath && y.IsZero() {
		return errDivideByZero
	}
	return nil
}

func opDiv(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	if err := strictDivisor(vm, y); err != nil {
		return nil, err
	}
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	if err := strictDivisor(vm, y); err != nil {
		return nil, err
	}
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	if err := strictDivisor(vm, y); err != nil {
		return nil, err
	}
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	if err := strictDivisor(vm, y); err != nil {
		return nil, err
	}
	y.SMod(&x, y)
	return nil, nil
}

func opExp(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	base, exponent := stack.pop(), stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	back, num := stack.pop(), stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opNot(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.peek()
	x.Not(x)
	return nil, nil
}

func setBool(x *uint256.Int, b bool) {
	if b {
		x.SetOne()
	} else {
		x.Clear()
	}
}

func opLt(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	setBool(y, x.Lt(y))
	return nil, nil
}

func opGt(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	setBool(y, x.Gt(y))
	return nil, nil
}

func opSlt(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	setBool(y, x.Slt(y))
	return nil, nil
}

func opSgt(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	setBool(y, x.Sgt(y))
	return nil, nil
}

func opEq(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	setBool(y, x.Eq(y))
	return nil, nil
}

func opIszero(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.peek()
	setBool(x, x.IsZero())
	return nil, nil
}

func opAnd(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.pop(), stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opByte(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	th, val := stack.pop(), stack.peek()
	val.Byte(&th)
	return nil, nil
}

func opAddmod(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y, z := stack.pop(), stack.pop(), stack.peek()
	if err := strictDivisor(vm, z); err != nil {
		return nil, err
	}
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y, z := stack.pop(), stack.pop(), stack.peek()
	if err := strictDivisor(vm, z); err != nil {
		return nil, err
	}
	z.MulMod(&x, &y, z)
	return nil, nil
}

// strictShift fails a shift whose amount reads as negative when strict math is enabled.
func strictShift(vm *VM, shift *uint256.Int) error {
	if vm.cfg.AllowStrictMath && shift.Sign() < 0 {
		return errNegativeShift
	}
	return nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	shift, value := stack.pop(), stack.peek()
	if err := strictShift(vm, &shift); err != nil {
		return nil, err
	}
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSHR implements Logical Shift Right
func opSHR(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	shift, value := stack.pop(), stack.peek()
	if err := strictShift(vm, &shift); err != nil {
		return nil, err
	}
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSAR implements Arithmetic Shift Right
func opSAR(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	shift, value := stack.pop(), stack.peek()
	if err := strictShift(vm, &shift); err != nil {
		return nil, err
	}
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opSha3(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.pop(), stack.peek()
	data := memory.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))
	hash := thor.Keccak256(data)
	size.SetBytes(hash[:])
	return nil, nil
}

func opAddress(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(wordOf(contract.Address()))
	return nil, nil
}

func opBalance(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	slot := stack.peek()
	balance, err := vm.state.GetBalance(addressOf(slot))
	if err != nil {
		return nil, err
	}
	slot.SetUint64(balance)
	return nil, nil
}

func opOrigin(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(wordOf(vm.Origin))
	return nil, nil
}

func opCaller(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(wordOf(contract.Caller()))
	return nil, nil
}

func opCallValue(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(contract.Value))
	return nil, nil
}

func opCallDataLoad(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(uint64(len(contract.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var (
		memOffset  = stack.pop()
		dataOffset = stack.pop()
		length     = stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = math.MaxUint64
	}
	memory.Set(memOffset.Uint64(), length.Uint64(), getData(contract.Input, dataOffset64, length.Uint64()))
	return nil, nil
}

func opReturnDataSize(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(uint64(len(vm.interpreter.returnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var (
		memOffset  = stack.pop()
		dataOffset = stack.pop()
		length     = stack.pop()
	)
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, errReturnDataBounds
	}
	var end uint256.Int
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(vm.interpreter.returnData)) < end64 {
		return nil, errReturnDataBounds
	}
	memory.Set(memOffset.Uint64(), length.Uint64(), vm.interpreter.returnData[offset64:end64])
	return nil, nil
}

func opExtCodeSize(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	slot := stack.peek()
	code, err := vm.state.GetCode(addressOf(slot))
	if err != nil {
		return nil, err
	}
	slot.SetUint64(uint64(len(code)))
	return nil, nil
}

func opCodeSize(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(uint64(len(contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var (
		memOffset  = stack.pop()
		codeOffset = stack.pop()
		length     = stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	codeCopy := getData(contract.Code, uint64CodeOffset, length.Uint64())
	memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opExtCodeCopy(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var (
		a          = stack.pop()
		memOffset  = stack.pop()
		codeOffset = stack.pop()
		length     = stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	code, err := vm.state.GetCode(addressOf(&a))
	if err != nil {
		return nil, err
	}
	memory.Set(memOffset.Uint64(), length.Uint64(), getData(code, uint64CodeOffset, length.Uint64()))
	return nil, nil
}

// opExtCodeHash returns the code hash of an account: zero when the account does not exist and
// the hash of empty code for an account without code.
func opExtCodeHash(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	slot := stack.peek()
	addr := addressOf(slot)
	exists, err := vm.state.Exists(addr)
	if err != nil {
		return nil, err
	}
	if !exists {
		slot.Clear()
		return nil, nil
	}
	hash := emptyCodeHash
	meta, err := vm.state.GetContract(addr)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		hash = meta.CodeHash
	}
	slot.SetBytes(hash[:])
	return nil, nil
}

func opGasprice(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(vm.cfg.EnergyFee))
	return nil, nil
}

// opBlockhash returns the hash of one of the 256 most recent blocks, zero otherwise.
func opBlockhash(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	num := stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow || vm.GetHash == nil {
		num.Clear()
		return nil, nil
	}
	var lower uint64
	if vm.BlockNumber > 256 {
		lower = vm.BlockNumber - 256
	}
	if num64 >= lower && num64 < vm.BlockNumber {
		h := vm.GetHash(num64)
		num.SetBytes(h[:])
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(wordOf(vm.Witness))
	return nil, nil
}

func opTimestamp(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(vm.BlockTime / 1000))
	return nil, nil
}

func opNumber(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(vm.BlockNumber))
	return nil, nil
}

// opDifficulty and opGasLimit have no counterpart in a delegated proof of stake chain.
func opDifficulty(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int))
	return nil, nil
}

func opGasLimit(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int))
	return nil, nil
}

func opPop(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.pop()
	return nil, nil
}

func opMload(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := stack.peek()
	offset := int64(v.Uint64())
	v.SetBytes(memory.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	mStart, val := stack.pop(), stack.pop()
	memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	off, val := stack.pop(), stack.pop()
	memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	loc := stack.peek()
	val, err := vm.state.GetStorage(contract.Address(), thor.Bytes32(loc.Bytes32()))
	if err != nil {
		return nil, err
	}
	loc.SetBytes(val[:])
	return nil, nil
}

func opSstore(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	loc, val := stack.pop(), stack.pop()
	return nil, vm.state.SetStorage(contract.Address(), thor.Bytes32(loc.Bytes32()), thor.Bytes32(val.Bytes32()))
}

func opJump(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	pos := stack.pop()
	if !contract.validJumpdest(&pos) {
		return nil, errInvalidJump
	}
	*pc = pos.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	pos, cond := stack.pop(), stack.pop()
	if !cond.IsZero() {
		if !contract.validJumpdest(&pos) {
			return nil, errInvalidJump
		}
		*pc = pos.Uint64()
	} else {
		*pc++
	}
	return nil, nil
}

func opJumpdest(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(uint64(memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(contract.Energy))
	return nil, nil
}

// childResult pushes the outcome of a child frame and gives its unused energy back to the
// caller. Halts of the child push zero; a refused transfer halts the caller as well once
// Constantinople rules apply. Errors that are not halts come from the store and are fatal.
func childResult(vm *VM, contract *Contract, stack *Stack, success *uint256.Int, leftOver uint64, err error) error {
	contract.Energy += leftOver
	if err == nil {
		stack.push(success)
		return nil
	}
	if isTransferRefusal(err) && vm.cfg.AllowTvmConstantinople {
		return err
	}
	if _, ok := AsHalt(err); !ok {
		return err
	}
	stack.push(new(uint256.Int))
	return nil
}

func isRevert(err error) bool {
	h, ok := AsHalt(err)
	return ok && h.Kind == Reverted
}

// createEnergy takes all but one 64th of the remaining energy for a child creation.
func createEnergy(contract *Contract) uint64 {
	energy := contract.Energy
	energy -= energy / 64
	contract.UseEnergy(energy)
	return energy
}

func opCreate(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var (
		value  = stack.pop()
		offset = stack.pop()
		size   = stack.pop()
	)
	if !value.IsUint64() {
		stack.push(new(uint256.Int))
		return nil, nil
	}
	input := memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	energy := createEnergy(contract)

	res, addr, leftOver, err := vm.createInternal(contract.Address(), input, energy, value.Uint64())
	if err := childResult(vm, contract, stack, wordOf(addr), leftOver, err); err != nil {
		return nil, err
	}
	if isRevert(err) {
		return res, nil
	}
	return nil, nil
}

func opCreate2(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var (
		endowment = stack.pop()
		offset    = stack.pop()
		size      = stack.pop()
		salt      = stack.pop()
	)
	if !endowment.IsUint64() {
		stack.push(new(uint256.Int))
		return nil, nil
	}
	input := memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	energy := createEnergy(contract)

	res, addr, leftOver, err := vm.Create2(contract.Address(), input, energy, endowment.Uint64(), thor.Bytes32(salt.Bytes32()))
	if err := childResult(vm, contract, stack, wordOf(addr), leftOver, err); err != nil {
		return nil, err
	}
	if isRevert(err) {
		return res, nil
	}
	return nil, nil
}

// finishCall copies the child's return data into memory and pushes its result.
func finishCall(vm *VM, contract *Contract, memory *Memory, stack *Stack, retOffset, retSize *uint256.Int, ret []byte, leftOver uint64, err error) ([]byte, error) {
	if err == nil || isRevert(err) {
		memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	if err := childResult(vm, contract, stack, new(uint256.Int).SetOne(), leftOver, err); err != nil {
		return nil, err
	}
	return ret, nil
}

func opCall(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.pop()
	energy := vm.callEnergyTemp
	addr, value, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := addressOf(&addr)
	args := memory.GetPtr(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	if !value.IsUint64() {
		return finishCall(vm, contract, memory, stack, &retOffset, &retSize, nil, energy, errInsufficientBalance)
	}
	if !value.IsZero() {
		energy += thor.EnergyCallStipend
	}
	ret, leftOver, err := vm.Call(contract.Address(), toAddr, args, energy, value.Uint64(), TokenValue{})
	return finishCall(vm, contract, memory, stack, &retOffset, &retSize, ret, leftOver, err)
}

// opCallToken is CALL moving an amount of a TRC-10 asset instead of TRX.
func opCallToken(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.pop()
	energy := vm.callEnergyTemp
	addr, amount, tokenID := stack.pop(), stack.pop(), stack.pop()
	inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := addressOf(&addr)
	args := memory.GetPtr(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	if !amount.IsUint64() {
		return finishCall(vm, contract, memory, stack, &retOffset, &retSize, nil, energy, errInsufficientToken)
	}
	if !tokenID.IsUint64() {
		return finishCall(vm, contract, memory, stack, &retOffset, &retSize, nil, energy, errNoAsset)
	}
	if !amount.IsZero() {
		energy += thor.EnergyCallStipend
	}
	token := TokenValue{ID: tokenID.Uint64(), Amount: amount.Uint64()}
	ret, leftOver, err := vm.Call(contract.Address(), toAddr, args, energy, 0, token)
	return finishCall(vm, contract, memory, stack, &retOffset, &retSize, ret, leftOver, err)
}

func opCallCode(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.pop()
	energy := vm.callEnergyTemp
	addr, value, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := addressOf(&addr)
	args := memory.GetPtr(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	if !value.IsUint64() {
		return finishCall(vm, contract, memory, stack, &retOffset, &retSize, nil, energy, errInsufficientBalance)
	}
	if !value.IsZero() {
		energy += thor.EnergyCallStipend
	}
	ret, leftOver, err := vm.CallCode(contract.Address(), toAddr, args, energy, value.Uint64())
	return finishCall(vm, contract, memory, stack, &retOffset, &retSize, ret, leftOver, err)
}

func opDelegateCall(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.pop()
	energy := vm.callEnergyTemp
	addr, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := addressOf(&addr)
	args := memory.GetPtr(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	ret, leftOver, err := vm.DelegateCall(contract, toAddr, args, energy)
	return finishCall(vm, contract, memory, stack, &retOffset, &retSize, ret, leftOver, err)
}

func opStaticCall(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.pop()
	energy := vm.callEnergyTemp
	addr, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := addressOf(&addr)
	args := memory.GetPtr(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	ret, leftOver, err := vm.StaticCall(contract.Address(), toAddr, args, energy)
	return finishCall(vm, contract, memory, stack, &retOffset, &retSize, ret, leftOver, err)
}

func opReturn(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.pop(), stack.pop()
	return memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64())), nil
}

func opRevert(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.pop(), stack.pop()
	return memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64())), nil
}

func opStop(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opInvalid(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, halt(IllegalOperation, "invalid opcode INVALID")
}

// opSelfdestruct moves the balance and assets of the contract to the beneficiary and deletes
// the contract. Funds sent to the contract itself are burnt.
func opSelfdestruct(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	beneficiary := stack.pop()
	to := addressOf(&beneficiary)
	self := contract.Address()

	acc, err := vm.state.GetAccount(self)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = &state.Account{}
	}
	if to == self {
		if err := vm.state.AddDynamic(state.BurnedTotal, acc.Balance); err != nil {
			return nil, err
		}
	} else {
		recipient, err := vm.state.GetOrCreateAccount(to)
		if err != nil {
			return nil, err
		}
		if err := recipient.AddBalance(acc.Balance); err != nil {
			return nil, halt(TransferFailed, "%v", err)
		}
		for _, t := range acc.Tokens {
			if err := recipient.AddToken(t.ID, t.Amount); err != nil {
				return nil, halt(TransferFailed, "%v", err)
			}
		}
		if err := vm.state.SetAccount(to, recipient); err != nil {
			return nil, err
		}
	}
	vm.recordInternalTx(self, to, "suicide", acc.Balance, TokenValue{})
	return nil, vm.state.DeleteContract(self)
}

func opTokenBalance(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	tokenID, slot := stack.pop(), stack.peek()
	acc, err := vm.state.GetAccount(addressOf(slot))
	if err != nil {
		return nil, err
	}
	if acc == nil || !tokenID.IsUint64() {
		slot.Clear()
		return nil, nil
	}
	slot.SetUint64(acc.TokenBalance(tokenID.Uint64()))
	return nil, nil
}

func opCallTokenValue(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(contract.Token.Amount))
	return nil, nil
}

func opCallTokenID(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.push(new(uint256.Int).SetUint64(contract.Token.ID))
	return nil, nil
}

// make log instruction function
func makeLog(size int) executionFunc {
	return func(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		topics := make([]thor.Bytes32, size)
		mStart, mSize := stack.pop(), stack.pop()
		for i := range size {
			addr := stack.pop()
			topics[i] = addr.Bytes32()
		}

		d := memory.GetCopy(int64(mStart.Uint64()), int64(mSize.Uint64()))
		vm.logs = append(vm.logs, &tx.Log{
			Address: contract.Address(),
			Topics:  topics,
			Data:    d,
		})
		return nil, nil
	}
}

// make push instruction function
func makePush(size uint64, pushByteSize int) executionFunc {
	return func(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		codeLen := len(contract.Code)

		startMin := min(int(*pc+1), codeLen)
		endMin := min(startMin+pushByteSize, codeLen)

		integer := new(uint256.Int)
		stack.push(integer.SetBytes(common.RightPadBytes(contract.Code[startMin:endMin], pushByteSize)))

		*pc += size
		return nil, nil
	}
}

// make dup instruction function
func makeDup(size int64) executionFunc {
	return func(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		stack.dup(int(size))
		return nil, nil
	}
}

// make swap instruction function
func makeSwap(size int64) executionFunc {
	// switch n + 1 otherwise n would be swapped with n
	size++
	return func(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		stack.swap(int(size))
		return nil, nil
	}
}
