// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestStackOps(t *testing.T) {
	stack := newstack()
	defer returnStack(stack)

	for i := uint64(1); i <= 3; i++ {
		stack.push(uint256.NewInt(i))
	}
	assert.Equal(t, 3, stack.len())
	assert.Equal(t, uint64(3), stack.peek().Uint64())
	assert.Equal(t, uint64(2), stack.Back(1).Uint64())

	// 1 2 3 -> 1 2 3 2
	stack.dup(2)
	assert.Equal(t, 4, stack.len())
	assert.Equal(t, uint64(2), stack.peek().Uint64())

	// 1 2 3 2 -> 1 2 2 3
	stack.swap(2)
	assert.Equal(t, uint64(3), stack.peek().Uint64())
	assert.Equal(t, uint64(2), stack.Back(1).Uint64())

	var popped []uint64
	for stack.len() > 0 {
		v := stack.pop()
		popped = append(popped, v.Uint64())
	}
	assert.Equal(t, []uint64{3, 2, 2, 1}, popped)
}

func TestStackRequire(t *testing.T) {
	stack := newstack()
	defer returnStack(stack)

	stack.push(uint256.NewInt(1))
	assert.NoError(t, stack.require(1))

	err := stack.require(2)
	h, ok := AsHalt(err)
	assert.True(t, ok)
	assert.Equal(t, StackUnderflow, h.Kind)
}

func TestStackLimit(t *testing.T) {
	stack := newstack()
	defer returnStack(stack)

	for range 1023 {
		stack.push(uint256.NewInt(0))
	}
	validate := makeStackFunc(0, 1)
	assert.NoError(t, validate(stack))

	stack.push(uint256.NewInt(0))
	h, ok := AsHalt(validate(stack))
	assert.True(t, ok)
	assert.Equal(t, StackOverflow, h.Kind)
}
