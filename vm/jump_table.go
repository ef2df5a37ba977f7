// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/vechain/txexec/thor"
)

type (
	executionFunc       func(pc *uint64, vm *VM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error)
	energyFunc          func(vm *VM, contract *Contract, stack *Stack, memory *Memory, memorySize uint64) (uint64, error) // last parameter is the requested memory size as a uint64
	stackValidationFunc func(*Stack) error
	memorySizeFunc      func(*Stack) (size uint64, overflow bool)
)

type operation struct {
	// execute is the operation function
	execute executionFunc
	// energyCost is the energy function and returns the energy required for execution
	energyCost energyFunc
	// validateStack validates the stack (size) for the operation
	validateStack stackValidationFunc
	// memorySize returns the memory size required for the operation
	memorySize memorySizeFunc

	halts   bool // indicates whether the operation should halt further execution
	jumps   bool // indicates whether the program counter should not increment
	writes  bool // determines whether this a state modifying operation
	reverts bool // determines whether the operation reverts state (implicitly halts)
	returns bool // determines whether the operations sets the return data content
}

// JumpTable contains the operations of an instruction set.
type JumpTable [256]*operation

// instructionSets is indexed by [AllowTvmTransferTrc10][AllowTvmConstantinople].
var instructionSets = func() (sets [2][2]*JumpTable) {
	for trc10 := range 2 {
		for constantinople := range 2 {
			tbl := newBaseInstructionSet()
			if trc10 == 1 {
				enableTrc10(tbl)
			}
			if constantinople == 1 {
				enableConstantinople(tbl)
			}
			sets[trc10][constantinople] = tbl
		}
	}
	return
}()

// instructionSetFor returns the instruction set enabled by the feature flags of cfg.
func instructionSetFor(cfg *thor.Config) *JumpTable {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return instructionSets[b(cfg.AllowTvmTransferTrc10)][b(cfg.AllowTvmConstantinople)]
}

func makeStackFunc(pop, push int) stackValidationFunc {
	return func(stack *Stack) error {
		if err := stack.require(pop); err != nil {
			return err
		}
		if stack.len()+push-pop > thor.StackLimit {
			return halt(StackOverflow, "stack limit reached %d (%d)", stack.len(), thor.StackLimit)
		}
		return nil
	}
}

func makeDupStackFunc(n int) stackValidationFunc {
	return makeStackFunc(n, n+1)
}

func makeSwapStackFunc(n int) stackValidationFunc {
	return makeStackFunc(n, n)
}

// enableConstantinople adds the bit shifts, EXTCODEHASH and CREATE2.
func enableConstantinople(tbl *JumpTable) {
	tbl[SHL] = &operation{
		execute:       opSHL,
		energyCost:    constEnergyFunc(thor.EnergyVeryLow),
		validateStack: makeStackFunc(2, 1),
	}
	tbl[SHR] = &operation{
		execute:       opSHR,
		energyCost:    constEnergyFunc(thor.EnergyVeryLow),
		validateStack: makeStackFunc(2, 1),
	}
	tbl[SAR] = &operation{
		execute:       opSAR,
		energyCost:    constEnergyFunc(thor.EnergyVeryLow),
		validateStack: makeStackFunc(2, 1),
	}
	tbl[EXTCODEHASH] = &operation{
		execute:       opExtCodeHash,
		energyCost:    constEnergyFunc(thor.EnergyExtCodeHash),
		validateStack: makeStackFunc(1, 1),
	}
	tbl[CREATE2] = &operation{
		execute:       opCreate2,
		energyCost:    energyCreate2,
		validateStack: makeStackFunc(4, 1),
		memorySize:    memoryCreate2,
		writes:        true,
		returns:       true,
	}
}

// enableTrc10 adds the TRC-10 token instructions.
func enableTrc10(tbl *JumpTable) {
	tbl[CALLTOKEN] = &operation{
		execute:       opCallToken,
		energyCost:    energyCallToken,
		validateStack: makeStackFunc(8, 1),
		memorySize:    memoryCallToken,
		returns:       true,
	}
	tbl[TOKENBALANCE] = &operation{
		execute:       opTokenBalance,
		energyCost:    constEnergyFunc(thor.EnergyTokenBalance),
		validateStack: makeStackFunc(2, 1),
	}
	tbl[CALLTOKENVALUE] = &operation{
		execute:       opCallTokenValue,
		energyCost:    constEnergyFunc(thor.EnergyBase),
		validateStack: makeStackFunc(0, 1),
	}
	tbl[CALLTOKENID] = &operation{
		execute:       opCallTokenID,
		energyCost:    constEnergyFunc(thor.EnergyBase),
		validateStack: makeStackFunc(0, 1),
	}
}

// newBaseInstructionSet returns the instructions that are always available.
func newBaseInstructionSet() *JumpTable {
	tbl := &JumpTable{
		STOP: {
			execute:       opStop,
			energyCost:    constEnergyFunc(thor.EnergyZero),
			validateStack: makeStackFunc(0, 0),
			halts:         true,
		},
		ADD: {
			execute:       opAdd,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		MUL: {
			execute:       opMul,
			energyCost:    constEnergyFunc(thor.EnergyLow),
			validateStack: makeStackFunc(2, 1),
		},
		SUB: {
			execute:       opSub,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		DIV: {
			execute:       opDiv,
			energyCost:    constEnergyFunc(thor.EnergyLow),
			validateStack: makeStackFunc(2, 1),
		},
		SDIV: {
			execute:       opSdiv,
			energyCost:    constEnergyFunc(thor.EnergyLow),
			validateStack: makeStackFunc(2, 1),
		},
		MOD: {
			execute:       opMod,
			energyCost:    constEnergyFunc(thor.EnergyLow),
			validateStack: makeStackFunc(2, 1),
		},
		SMOD: {
			execute:       opSmod,
			energyCost:    constEnergyFunc(thor.EnergyLow),
			validateStack: makeStackFunc(2, 1),
		},
		ADDMOD: {
			execute:       opAddmod,
			energyCost:    constEnergyFunc(thor.EnergyMid),
			validateStack: makeStackFunc(3, 1),
		},
		MULMOD: {
			execute:       opMulmod,
			energyCost:    constEnergyFunc(thor.EnergyMid),
			validateStack: makeStackFunc(3, 1),
		},
		EXP: {
			execute:       opExp,
			energyCost:    energyExp,
			validateStack: makeStackFunc(2, 1),
		},
		SIGNEXTEND: {
			execute:       opSignExtend,
			energyCost:    constEnergyFunc(thor.EnergyLow),
			validateStack: makeStackFunc(2, 1),
		},
		LT: {
			execute:       opLt,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		GT: {
			execute:       opGt,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		SLT: {
			execute:       opSlt,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		SGT: {
			execute:       opSgt,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		EQ: {
			execute:       opEq,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		ISZERO: {
			execute:       opIszero,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(1, 1),
		},
		AND: {
			execute:       opAnd,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		OR: {
			execute:       opOr,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		XOR: {
			execute:       opXor,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		NOT: {
			execute:       opNot,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(1, 1),
		},
		BYTE: {
			execute:       opByte,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(2, 1),
		},
		SHA3: {
			execute:       opSha3,
			energyCost:    energySha3,
			validateStack: makeStackFunc(2, 1),
			memorySize:    memorySha3,
		},
		ADDRESS: {
			execute:       opAddress,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		BALANCE: {
			execute:       opBalance,
			energyCost:    constEnergyFunc(thor.EnergyBalance),
			validateStack: makeStackFunc(1, 1),
		},
		ORIGIN: {
			execute:       opOrigin,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		CALLER: {
			execute:       opCaller,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		CALLVALUE: {
			execute:       opCallValue,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		CALLDATALOAD: {
			execute:       opCallDataLoad,
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(1, 1),
		},
		CALLDATASIZE: {
			execute:       opCallDataSize,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		CALLDATACOPY: {
			execute:       opCallDataCopy,
			energyCost:    energyCallDataCopy,
			validateStack: makeStackFunc(3, 0),
			memorySize:    memoryCallDataCopy,
		},
		CODESIZE: {
			execute:       opCodeSize,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		CODECOPY: {
			execute:       opCodeCopy,
			energyCost:    energyCodeCopy,
			validateStack: makeStackFunc(3, 0),
			memorySize:    memoryCodeCopy,
		},
		GASPRICE: {
			execute:       opGasprice,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		EXTCODESIZE: {
			execute:       opExtCodeSize,
			energyCost:    constEnergyFunc(thor.EnergyExtCode),
			validateStack: makeStackFunc(1, 1),
		},
		EXTCODECOPY: {
			execute:       opExtCodeCopy,
			energyCost:    energyExtCodeCopy,
			validateStack: makeStackFunc(4, 0),
			memorySize:    memoryExtCodeCopy,
		},
		RETURNDATASIZE: {
			execute:       opReturnDataSize,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		RETURNDATACOPY: {
			execute:       opReturnDataCopy,
			energyCost:    energyReturnDataCopy,
			validateStack: makeStackFunc(3, 0),
			memorySize:    memoryReturnDataCopy,
		},
		BLOCKHASH: {
			execute:       opBlockhash,
			energyCost:    constEnergyFunc(thor.EnergyExt),
			validateStack: makeStackFunc(1, 1),
		},
		COINBASE: {
			execute:       opCoinbase,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		TIMESTAMP: {
			execute:       opTimestamp,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		NUMBER: {
			execute:       opNumber,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		DIFFICULTY: {
			execute:       opDifficulty,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		GASLIMIT: {
			execute:       opGasLimit,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		POP: {
			execute:       opPop,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(1, 0),
		},
		MLOAD: {
			execute:       opMload,
			energyCost:    energyMLoad,
			validateStack: makeStackFunc(1, 1),
			memorySize:    memoryMLoad,
		},
		MSTORE: {
			execute:       opMstore,
			energyCost:    energyMStore,
			validateStack: makeStackFunc(2, 0),
			memorySize:    memoryMStore,
		},
		MSTORE8: {
			execute:       opMstore8,
			energyCost:    energyMStore8,
			memorySize:    memoryMStore8,
			validateStack: makeStackFunc(2, 0),
		},
		SLOAD: {
			execute:       opSload,
			energyCost:    constEnergyFunc(thor.EnergySload),
			validateStack: makeStackFunc(1, 1),
		},
		SSTORE: {
			execute:       opSstore,
			energyCost:    energySStore,
			validateStack: makeStackFunc(2, 0),
			writes:        true,
		},
		JUMP: {
			execute:       opJump,
			energyCost:    constEnergyFunc(thor.EnergyMid),
			validateStack: makeStackFunc(1, 0),
			jumps:         true,
		},
		JUMPI: {
			execute:       opJumpi,
			energyCost:    constEnergyFunc(thor.EnergyHigh),
			validateStack: makeStackFunc(2, 0),
			jumps:         true,
		},
		PC: {
			execute:       opPc,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		MSIZE: {
			execute:       opMsize,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		GAS: {
			execute:       opGas,
			energyCost:    constEnergyFunc(thor.EnergyBase),
			validateStack: makeStackFunc(0, 1),
		},
		JUMPDEST: {
			execute:       opJumpdest,
			energyCost:    constEnergyFunc(thor.EnergyJumpDest),
			validateStack: makeStackFunc(0, 0),
		},
		CREATE: {
			execute:       opCreate,
			energyCost:    energyCreate,
			validateStack: makeStackFunc(3, 1),
			memorySize:    memoryCreate,
			writes:        true,
			returns:       true,
		},
		CALL: {
			execute:       opCall,
			energyCost:    energyCall,
			validateStack: makeStackFunc(7, 1),
			memorySize:    memoryCall,
			returns:       true,
		},
		CALLCODE: {
			execute:       opCallCode,
			energyCost:    energyCallCode,
			validateStack: makeStackFunc(7, 1),
			memorySize:    memoryCall,
			returns:       true,
		},
		RETURN: {
			execute:       opReturn,
			energyCost:    energyReturn,
			validateStack: makeStackFunc(2, 0),
			memorySize:    memoryReturn,
			halts:         true,
		},
		DELEGATECALL: {
			execute:       opDelegateCall,
			energyCost:    energyDelegateCall,
			validateStack: makeStackFunc(6, 1),
			memorySize:    memoryDelegateCall,
			returns:       true,
		},
		STATICCALL: {
			execute:       opStaticCall,
			energyCost:    energyStaticCall,
			validateStack: makeStackFunc(6, 1),
			memorySize:    memoryStaticCall,
			returns:       true,
		},
		REVERT: {
			execute:       opRevert,
			energyCost:    energyRevert,
			validateStack: makeStackFunc(2, 0),
			memorySize:    memoryRevert,
			reverts:       true,
			returns:       true,
		},
		INVALID: {
			execute:       opInvalid,
			energyCost:    constEnergyFunc(thor.EnergyZero),
			validateStack: makeStackFunc(0, 0),
		},
		SELFDESTRUCT: {
			execute:       opSelfdestruct,
			energyCost:    energySelfdestruct,
			validateStack: makeStackFunc(1, 0),
			halts:         true,
			writes:        true,
		},
	}
	for i := range 32 {
		tbl[PUSH1+OpCode(i)] = &operation{
			execute:       makePush(uint64(i+1), i+1),
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeStackFunc(0, 1),
		}
	}
	for i := range 16 {
		tbl[DUP1+OpCode(i)] = &operation{
			execute:       makeDup(int64(i + 1)),
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeDupStackFunc(i + 1),
		}
		tbl[SWAP1+OpCode(i)] = &operation{
			execute:       makeSwap(int64(i + 1)),
			energyCost:    constEnergyFunc(thor.EnergyVeryLow),
			validateStack: makeSwapStackFunc(i + 2),
		}
	}
	for i := range 5 {
		tbl[LOG0+OpCode(i)] = &operation{
			execute:       makeLog(i),
			energyCost:    makeEnergyLog(uint64(i)),
			validateStack: makeStackFunc(2+i, 0),
			memorySize:    memoryLog,
			writes:        true,
		}
	}
	return tbl
}
