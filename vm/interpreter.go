// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/ethereum/go-ethereum/common/math"
)

// Interpreter runs contract code. One interpreter serves all frames of a VM.
type Interpreter struct {
	vm    *VM
	table *JumpTable

	readOnly   bool   // whether to throw on stateful modifications
	returnData []byte // last CALL's return data for subsequent reuse
}

// NewInterpreter returns a new instance of the Interpreter.
func NewInterpreter(vm *VM) *Interpreter {
	return &Interpreter{
		vm:    vm,
		table: instructionSetFor(&vm.cfg),
	}
}

// Run loops and evaluates the contract's code with the given input data and returns
// the return byte-slice and an error if one occurred.
//
// It's important to note that any errors returned by the interpreter should be
// considered a revert-and-consume-all-energy operation except for
// errReverted which means revert-and-keep-energy-left.
func (in *Interpreter) Run(contract *Contract, input []byte, readOnly bool) (ret []byte, err error) {
	in.vm.depth++
	defer func() { in.vm.depth-- }()

	// Make sure the readOnly is only set if we aren't in readOnly yet.
	// This makes also sure that the readOnly flag isn't removed for child calls.
	if readOnly && !in.readOnly {
		in.readOnly = true
		defer func() { in.readOnly = false }()
	}

	// Reset the previous call's return data. It's unimportant to preserve the old buffer
	// as every returning call will return new data anyway.
	in.returnData = nil

	if len(contract.Code) == 0 {
		return nil, nil
	}

	var (
		op     OpCode
		mem    = NewMemory()
		stack  = newstack()
		pc     = uint64(0)
		cost   uint64
		tracer = in.vm.vmCfg.Tracer
	)
	defer returnStack(stack)
	contract.Input = input

	for {
		if in.vm.steps == 0 {
			return nil, errOutOfTime
		}
		in.vm.steps--

		op = contract.GetOp(pc)
		operation := in.table[op]
		if operation == nil {
			return nil, halt(IllegalOperation, "invalid opcode 0x%x", int(op))
		}
		if err := operation.validateStack(stack); err != nil {
			return nil, err
		}
		if in.readOnly && in.writesState(operation, op, stack) {
			return nil, errWriteProtection
		}

		var memorySize uint64
		if operation.memorySize != nil {
			memSize, overflow := operation.memorySize(stack)
			if overflow {
				return nil, errEnergyOverflow
			}
			// memory is expanded in words of 32 bytes. Energy
			// is also calculated in words.
			if memorySize, overflow = math.SafeMul(toWordSize(memSize), 32); overflow {
				return nil, errEnergyOverflow
			}
			if memorySize > in.vm.cfg.MaxMemoryBytes {
				return nil, halt(OutOfMemory, "memory size %d exceeds %d", memorySize, in.vm.cfg.MaxMemoryBytes)
			}
		}
		cost, err = operation.energyCost(in.vm, contract, stack, mem, memorySize)
		if err != nil {
			return nil, err
		}
		if !contract.UseEnergy(cost) {
			return nil, halt(OutOfEnergy, "%v needs %d, %d left", op, cost, contract.Energy)
		}
		if memorySize > 0 {
			mem.Resize(memorySize)
		}

		if tracer != nil {
			tracer.CaptureState(pc, op, contract.Energy+cost, cost, mem, stack, contract, in.vm.depth)
		}

		var res []byte
		res, err = operation.execute(&pc, in.vm, contract, mem, stack)
		if operation.returns {
			in.returnData = res
		}

		switch {
		case err != nil:
			return nil, err
		case operation.reverts:
			return res, errReverted
		case operation.halts:
			return res, nil
		case !operation.jumps:
			pc++
		}
	}
}

// writesState reports whether op modifies state. Calls are writes only when they move value.
func (in *Interpreter) writesState(operation *operation, op OpCode, stack *Stack) bool {
	if operation.writes {
		return true
	}
	switch op {
	case CALL, CALLTOKEN:
		return !stack.Back(2).IsZero()
	}
	return false
}
