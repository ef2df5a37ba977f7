// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"fmt"

	"github.com/vechain/txexec/tx"
)

// HaltKind classifies why a frame stopped before completing.
type HaltKind uint8

const (
	OutOfEnergy HaltKind = iota + 1
	OutOfTime
	Reverted
	IllegalOperation
	OutOfMemory
	PrecompiledContract
	TransferFailed
	StackUnderflow
	StackOverflow
	BadJumpDestination
	WriteProtection
	CallDepth
	InvalidCode
)

var haltKindInfo = [...]struct {
	name   string
	result tx.ResultCode
}{
	OutOfEnergy:         {"out of energy", tx.ResultOutOfEnergy},
	OutOfTime:           {"out of time", tx.ResultOutOfTime},
	Reverted:            {"reverted", tx.ResultRevert},
	IllegalOperation:    {"illegal operation", tx.ResultIllegalOperation},
	OutOfMemory:         {"out of memory", tx.ResultOutOfMemory},
	PrecompiledContract: {"precompiled contract failed", tx.ResultPrecompiledContract},
	TransferFailed:      {"transfer failed", tx.ResultTransferFailed},
	StackUnderflow:      {"stack underflow", tx.ResultStackTooSmall},
	StackOverflow:       {"stack overflow", tx.ResultStackTooLarge},
	BadJumpDestination:  {"bad jump destination", tx.ResultBadJumpDestination},
	WriteProtection:     {"write protection", tx.ResultIllegalOperation},
	CallDepth:           {"max call depth exceeded", tx.ResultCallDepth},
	InvalidCode:         {"invalid code", tx.ResultInvalidCode},
}

func (k HaltKind) String() string {
	if k > 0 && int(k) < len(haltKindInfo) {
		return haltKindInfo[k].name
	}
	return fmt.Sprintf("HaltKind(%d)", uint8(k))
}

// ResultCode maps the kind to the receipt result.
func (k HaltKind) ResultCode() tx.ResultCode {
	if k > 0 && int(k) < len(haltKindInfo) {
		return haltKindInfo[k].result
	}
	return tx.ResultUnknown
}

// spendsAll reports whether a frame halted with k forfeits its remaining energy.
func (k HaltKind) spendsAll() bool {
	return k != Reverted && k != TransferFailed
}

// Halt is the outcome of a frame that stopped abnormally. It is returned as an error up the
// frame stack. Any other error returned by the VM is a fault of the underlying store.
type Halt struct {
	Kind   HaltKind
	Reason string
}

func (h *Halt) Error() string {
	if h.Reason == "" {
		return h.Kind.String()
	}
	return h.Kind.String() + ": " + h.Reason
}

func halt(kind HaltKind, format string, args ...any) *Halt {
	return &Halt{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

var (
	errOutOfEnergy      = &Halt{Kind: OutOfEnergy}
	errOutOfTime        = &Halt{Kind: OutOfTime}
	errReverted         = &Halt{Kind: Reverted}
	errWriteProtection  = &Halt{Kind: WriteProtection}
	errCallDepth        = &Halt{Kind: CallDepth}
	errInvalidJump      = &Halt{Kind: BadJumpDestination}
	errReturnDataBounds = halt(OutOfMemory, "return data out of bounds")
	errDivideByZero     = halt(IllegalOperation, "divide by zero")
	errNegativeShift    = halt(IllegalOperation, "negative shift")
	errEnergyOverflow   = halt(OutOfEnergy, "energy uint64 overflow")
)

// AsHalt extracts the halt from err.
func AsHalt(err error) (*Halt, bool) {
	h, ok := err.(*Halt)
	return h, ok
}
