// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/holiman/uint256"

	"github.com/vechain/txexec/thor"
)

// TokenValue is an amount of a TRC-10 asset attached to a call.
type TokenValue struct {
	ID     uint64
	Amount uint64
}

// Contract is the execution frame of one piece of code.
type Contract struct {
	CallerAddress thor.Address
	self          thor.Address

	jumpdests map[thor.Bytes32]bitvec // Aggregated result of JUMPDEST analysis.
	analysis  bitvec                  // Locally cached result of JUMPDEST analysis

	Code     []byte
	CodeHash thor.Bytes32
	CodeAddr thor.Address
	Input    []byte

	Energy uint64
	Value  uint64
	Token  TokenValue
}

// NewContract returns a new contract frame.
func NewContract(caller, object thor.Address, value uint64, token TokenValue, energy uint64) *Contract {
	return &Contract{
		CallerAddress: caller,
		self:          object,
		jumpdests:     make(map[thor.Bytes32]bitvec),
		Energy:        energy,
		Value:         value,
		Token:         token,
	}
}

func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	// PC cannot go beyond len(code) and certainly can't be bigger than 63bits.
	// Don't bother checking for JUMPDEST in that case.
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	// Only JUMPDESTs allowed for destinations
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

// isCode returns true if the provided PC location is an actual opcode, as
// opposed to a data-segment following a PUSHN operation.
func (c *Contract) isCode(udest uint64) bool {
	// Do we already have an analysis laying around?
	if c.analysis != nil {
		return c.analysis.codeSegment(udest)
	}
	// Do we have a contract hash already?
	// If we do have a hash, that means it's a 'regular' contract. For regular
	// contracts ( not temporary initcode), we store the analysis in a map
	if !c.CodeHash.IsZero() {
		// Does parent context have the analysis?
		analysis, exist := c.jumpdests[c.CodeHash]
		if !exist {
			// Do the analysis and save in parent context
			// We do not need to store it in c.analysis
			analysis = codeBitmap(c.Code)
			c.jumpdests[c.CodeHash] = analysis
		}
		// Also stash it in current contract for faster access
		c.analysis = analysis
		return analysis.codeSegment(udest)
	}
	// We don't have the code hash, most likely a piece of initcode not already
	// in state trie. In that case, we do an analysis, and save it locally, so
	// we don't have to recalculate it for every JUMP instruction in the execution
	// However, we don't save it within the parent context
	if c.analysis == nil {
		c.analysis = codeBitmap(c.Code)
	}
	return c.analysis.codeSegment(udest)
}

// AsDelegate sets the contract to be a delegate call and returns the current
// contract (for chaining calls)
func (c *Contract) AsDelegate(parent *Contract) *Contract {
	c.CallerAddress = parent.CallerAddress
	c.Value = parent.Value
	c.Token = parent.Token
	return c
}

// GetOp returns the n'th element in the contract's byte array
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// Caller returns the caller of the contract.
//
// Caller will recursively call caller when the contract is a delegate
// call, including that of caller's caller.
func (c *Contract) Caller() thor.Address {
	return c.CallerAddress
}

// UseEnergy attempts the use energy and subtracts it and returns true on success
func (c *Contract) UseEnergy(energy uint64) (ok bool) {
	if c.Energy < energy {
		return false
	}
	c.Energy -= energy
	return true
}

// Address returns the contracts address
func (c *Contract) Address() thor.Address {
	return c.self
}

// SetCallCode sets the code of the contract and address of the backing data
// object
func (c *Contract) SetCallCode(addr thor.Address, hash thor.Bytes32, code []byte) {
	c.Code = code
	c.CodeHash = hash
	c.CodeAddr = addr
}
