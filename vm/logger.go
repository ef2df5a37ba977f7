// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/thor"
)

// Logger is used to collect execution traces. CaptureState is called for each step of the VM
// with the current VM state.
// Note that reference types are actual VM data structures; make copies
// if you need to retain them beyond the current call.
type Logger interface {
	CaptureStart(vm *VM, from, to thor.Address, create bool, input []byte, energy, value uint64)
	CaptureState(pc uint64, op OpCode, energy, cost uint64, memory *Memory, stack *Stack, contract *Contract, depth int)
	CaptureEnd(output []byte, energyUsed uint64, err error)
}

// StepLogger writes every executed instruction to a log at trace level.
type StepLogger struct {
	log   log.Logger
	Steps int
}

// NewStepLogger creates a StepLogger writing to l.
func NewStepLogger(l log.Logger) *StepLogger {
	return &StepLogger{log: l}
}

func (l *StepLogger) CaptureStart(vm *VM, from, to thor.Address, create bool, input []byte, energy, value uint64) {
	l.log.Debug("start", "from", from, "to", to, "create", create, "input", len(input), "energy", energy, "value", value)
}

func (l *StepLogger) CaptureState(pc uint64, op OpCode, energy, cost uint64, _ *Memory, stack *Stack, contract *Contract, depth int) {
	l.Steps++
	var top string
	if stack.len() > 0 {
		top = stack.peek().Hex()
	}
	l.log.Trace("step", "depth", depth, "addr", contract.Address(), "pc", pc, "op", op, "energy", energy, "cost", cost, "stack", stack.len(), "top", top)
}

func (l *StepLogger) CaptureEnd(output []byte, energyUsed uint64, err error) {
	l.log.Debug("end", "output", len(output), "energyUsed", energyUsed, "steps", l.Steps, "err", err)
}
