// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/txexec/thor"
)

var codeCache, _ = lru.NewARC(512)

// Contract is the metadata of a deployed contract.
type Contract struct {
	Origin                     thor.Address // the deployer
	CodeHash                   thor.Bytes32
	Name                       string
	ConsumeUserResourcePercent uint64
	OriginEnergyLimit          uint64
	TxID                       thor.Bytes32
}

// GetContract returns the contract metadata at addr, or nil if addr is not a contract.
func (s *State) GetContract(addr thor.Address) (*Contract, error) {
	var c Contract
	ok, err := s.getRLP(ContractSpace, addr[:], &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SetContract stores the contract metadata at addr.
func (s *State) SetContract(addr thor.Address, c *Contract) error {
	return s.putRLP(ContractSpace, addr[:], c)
}

// SetCode stores the code and returns its hash. The caller records the hash in the contract metadata.
func (s *State) SetCode(code []byte) thor.Bytes32 {
	hash := thor.Keccak256(code)
	s.Put(CodeSpace, hash[:], code)
	codeCache.Add(hash, code)
	return hash
}

// GetCode returns the code of the contract at addr, nil for a plain account.
func (s *State) GetCode(addr thor.Address) ([]byte, error) {
	c, err := s.GetContract(addr)
	if err != nil || c == nil {
		return nil, err
	}
	return s.GetCodeByHash(c.CodeHash)
}

// GetCodeByHash returns the code by its hash.
func (s *State) GetCodeByHash(hash thor.Bytes32) ([]byte, error) {
	if v, ok := codeCache.Get(hash); ok {
		return v.([]byte), nil
	}
	code, ok, err := s.Get(CodeSpace, hash[:])
	if err != nil || !ok {
		return nil, err
	}
	codeCache.Add(hash, code)
	return code, nil
}

// GetCodeHash returns the code hash of the contract at addr, zero for a plain account.
func (s *State) GetCodeHash(addr thor.Address) (thor.Bytes32, error) {
	c, err := s.GetContract(addr)
	if err != nil || c == nil {
		return thor.Bytes32{}, err
	}
	return c.CodeHash, nil
}

func storageKey(addr thor.Address, epoch uint64, slot thor.Bytes32) []byte {
	k := make([]byte, 0, thor.AddressLength+8+32)
	k = append(k, addr[:]...)
	k = binary.BigEndian.AppendUint64(k, epoch)
	return append(k, slot[:]...)
}

func (s *State) storageEpoch(addr thor.Address) (uint64, error) {
	acc, err := s.GetAccount(addr)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.StorageEpoch, nil
}

// GetStorage returns the storage value of contract addr at slot.
func (s *State) GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error) {
	epoch, err := s.storageEpoch(addr)
	if err != nil {
		return thor.Bytes32{}, err
	}
	raw, ok, err := s.Get(StorageSpace, storageKey(addr, epoch, slot))
	if err != nil || !ok {
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(raw), nil
}

// SetStorage sets the storage value of contract addr at slot. A zero value deletes the slot.
func (s *State) SetStorage(addr thor.Address, slot, value thor.Bytes32) error {
	epoch, err := s.storageEpoch(addr)
	if err != nil {
		return err
	}
	key := storageKey(addr, epoch, slot)
	if value.IsZero() {
		s.Delete(StorageSpace, key)
		return nil
	}
	s.Put(StorageSpace, key, bytes.TrimLeft(value[:], "\x00"))
	return nil
}

// DeleteContract removes the contract at addr. The account is zeroed and its storage epoch
// advanced, so the previous storage becomes unreachable.
func (s *State) DeleteContract(addr thor.Address) error {
	acc, err := s.GetOrCreateAccount(addr)
	if err != nil {
		return err
	}
	s.Delete(ContractSpace, addr[:])
	return s.SetAccount(addr, &Account{
		CreateTime:   acc.CreateTime,
		StorageEpoch: acc.StorageEpoch + 1,
	})
}
