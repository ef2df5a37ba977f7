// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
)

// Dynamic names a network wide property that changes with transactions.
type Dynamic string

const (
	LatestBlockTimestamp Dynamic = "latestBlockTimestamp"
	LatestBlockNumber    Dynamic = "latestBlockNumber"
	TotalNetWeight       Dynamic = "totalNetWeight"
	TotalEnergyWeight    Dynamic = "totalEnergyWeight"
	PublicNetUsage       Dynamic = "publicNetUsage"
	PublicNetTime        Dynamic = "publicNetTime"
	StoragePool          Dynamic = "storagePool"    // sun locked in the storage market
	StorageReserve       Dynamic = "storageReserve" // bytes left in the storage market
	NextTokenID          Dynamic = "nextTokenID"
	NextProposalID       Dynamic = "nextProposalID"
	BurnedTotal          Dynamic = "burnedTotal"
)

// TotalWeight returns the dynamic property holding the total frozen weight of r.
func TotalWeight(r thor.Resource) Dynamic {
	if r == thor.Energy {
		return TotalEnergyWeight
	}
	return TotalNetWeight
}

var dynamicDefaults = map[Dynamic]uint64{
	StoragePool:    100_000_000_000_000,
	StorageReserve: 128 * 1024 * 1024 * 1024,
	NextTokenID:    thor.TokenIDStart + 1,
	NextProposalID: 1,
}

// GetDynamic returns the value of a dynamic property.
func (s *State) GetDynamic(name Dynamic) (uint64, error) {
	raw, ok, err := s.Get(DynamicSpace, []byte(name))
	if err != nil {
		return 0, err
	}
	if !ok {
		return dynamicDefaults[name], nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

// SetDynamic sets the value of a dynamic property.
func (s *State) SetDynamic(name Dynamic, v uint64) {
	s.Put(DynamicSpace, []byte(name), binary.BigEndian.AppendUint64(nil, v))
}

// AddDynamic adds delta to a dynamic property.
func (s *State) AddDynamic(name Dynamic, delta uint64) error {
	v, err := s.GetDynamic(name)
	if err != nil {
		return err
	}
	sum, overflow := math.SafeAdd(v, delta)
	if overflow {
		return errors.Errorf("dynamic property %s overflow", name)
	}
	s.SetDynamic(name, sum)
	return nil
}

// SubDynamic subtracts delta from a dynamic property.
func (s *State) SubDynamic(name Dynamic, delta uint64) error {
	v, err := s.GetDynamic(name)
	if err != nil {
		return err
	}
	if v < delta {
		return errors.Errorf("dynamic property %s underflow", name)
	}
	s.SetDynamic(name, v-delta)
	return nil
}
