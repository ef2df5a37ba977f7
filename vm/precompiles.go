// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"encoding/binary"

	ethvm "github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
)

// precompiledContract is the native implementation of a contract at a fixed address.
type precompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

var errReservedContract = errors.New("precompiled contract not supported")

// reservedContract occupies an address whose native contract is not available. Calls to it
// always fail.
type reservedContract struct{}

func (reservedContract) RequiredGas([]byte) uint64 { return 0 }

func (reservedContract) Run([]byte) ([]byte, error) { return nil, errReservedContract }

// precompiledContracts holds ecrecover, sha256, ripemd160, identity, modexp and the bn256
// operations at 0x01 to 0x08. The chain specific contracts at 0x09, 0x0a and from 0x01000001
// are reserved.
var precompiledContracts = func() map[thor.Address]precompiledContract {
	m := make(map[thor.Address]precompiledContract)
	for addr, p := range ethvm.PrecompiledContractsIstanbul {
		if addr[19] > 8 {
			continue
		}
		m[thor.Address(addr)] = p
	}
	for _, addr := range []uint64{0x09, 0x0a, 0x01000001, 0x01000002, 0x01000003, 0x01000004} {
		m[thor.BytesToAddress(binary.BigEndian.AppendUint64(nil, addr))] = reservedContract{}
	}
	return m
}()

// runPrecompiledContract charges and runs a native contract.
func runPrecompiledContract(p precompiledContract, contract *Contract, input []byte) ([]byte, error) {
	energy := p.RequiredGas(input)
	if !contract.UseEnergy(energy) {
		return nil, halt(OutOfEnergy, "precompiled contract needs %d", energy)
	}
	output, err := p.Run(input)
	if err != nil {
		return nil, halt(PrecompiledContract, "%v", err)
	}
	return output, nil
}
