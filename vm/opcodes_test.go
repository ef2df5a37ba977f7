// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpCodeString(t *testing.T) {
	tests := []struct {
		op       OpCode
		expected string
	}{
		{STOP, "STOP"},
		{ADD, "ADD"},
		{SHL, "SHL"},
		{EXTCODEHASH, "EXTCODEHASH"},
		{CALLTOKEN, "CALLTOKEN"},
		{TOKENBALANCE, "TOKENBALANCE"},
		{CALLTOKENVALUE, "CALLTOKENVALUE"},
		{CALLTOKENID, "CALLTOKENID"},
		{CREATE2, "CREATE2"},
		{SELFDESTRUCT, "SELFDESTRUCT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.op.String())
	}
	assert.Contains(t, OpCode(0xef).String(), "not defined")
}

func TestStringToOp(t *testing.T) {
	for _, op := range []OpCode{STOP, MUL, PUSH32, DUP16, SWAP16, LOG4, CALLTOKEN, STATICCALL, REVERT} {
		assert.Equal(t, op, StringToOp(op.String()))
	}
}

func TestOpCodeIsPush(t *testing.T) {
	assert.True(t, PUSH1.IsPush())
	assert.True(t, PUSH32.IsPush())
	assert.False(t, STOP.IsPush())
	assert.False(t, DUP1.IsPush())
}

func TestOpCodeIsStaticJump(t *testing.T) {
	assert.True(t, JUMP.IsStaticJump())
	assert.False(t, JUMPI.IsStaticJump())
	assert.False(t, ADD.IsStaticJump())
}
