// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package resource

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
)

// StorageMarket exchanges sun against storage bytes with a Bancor style relay between
// the sun pool and the byte reserve held in dynamic properties.
type StorageMarket struct {
	st *state.State
}

// NewStorageMarket creates a market over st.
func NewStorageMarket(st *state.State) *StorageMarket {
	return &StorageMarket{st}
}

func (m *StorageMarket) balances() (pool, reserve uint64, err error) {
	if pool, err = m.st.GetDynamic(state.StoragePool); err != nil {
		return
	}
	reserve, err = m.st.GetDynamic(state.StorageReserve)
	return
}

// exchange converts quant of one side into the other side through the relay supply.
// toBytes selects the direction sun to bytes.
func exchange(pool, reserve, quant uint64, toBytes bool) uint64 {
	supply := float64(thor.StorageMarketSupply)

	from, to := float64(reserve), float64(pool)
	if toBytes {
		from, to = float64(pool), float64(reserve)
	}

	// the relay supply is back to its initial value once the issued part is redeemed
	issued := int64(-supply * (1.0 - math.Pow(1.0+float64(quant)/(from+float64(quant)), thor.StorageMarketBuyPower)))
	out := to * (math.Pow(1.0+float64(issued)/supply, thor.StorageMarketSellPower) - 1.0)
	if out <= 0 {
		return 0
	}
	if !toBytes {
		unit := float64(thor.StoragePoolRoundingUnit)
		return uint64(math.Round(out/unit)) * uint64(thor.StoragePoolRoundingUnit)
	}
	return uint64(out)
}

// TryBuy returns the bytes quant sun would buy.
func (m *StorageMarket) TryBuy(quant uint64) (uint64, error) {
	pool, reserve, err := m.balances()
	if err != nil {
		return 0, err
	}
	return exchange(pool, reserve, quant, true), nil
}

// TrySell returns the sun n bytes would sell for.
func (m *StorageMarket) TrySell(n uint64) (uint64, error) {
	pool, reserve, err := m.balances()
	if err != nil {
		return 0, err
	}
	return exchange(pool, reserve, n, false), nil
}

// Buy exchanges quant sun of acc into storage bytes.
func (m *StorageMarket) Buy(acc *state.Account, quant uint64) (uint64, error) {
	pool, reserve, err := m.balances()
	if err != nil {
		return 0, err
	}
	bought := exchange(pool, reserve, quant, true)
	if bought > reserve {
		return 0, errors.New("storage reserve exhausted")
	}
	if err := acc.SubBalance(quant); err != nil {
		return 0, err
	}
	acc.StorageLimit += bought
	if err := m.st.AddDynamic(state.StoragePool, quant); err != nil {
		return 0, err
	}
	m.st.SetDynamic(state.StorageReserve, reserve-bought)
	return bought, nil
}

// Sell exchanges n unused storage bytes of acc into sun.
func (m *StorageMarket) Sell(acc *state.Account, n uint64) (uint64, error) {
	pool, reserve, err := m.balances()
	if err != nil {
		return 0, err
	}
	if acc.StorageLimit < acc.StorageUsage || n > acc.StorageLimit-acc.StorageUsage {
		return 0, errors.New("storage in use")
	}
	quant := exchange(pool, reserve, n, false)
	if quant > pool {
		return 0, errors.New("storage pool exhausted")
	}
	if err := acc.AddBalance(quant); err != nil {
		return 0, err
	}
	acc.StorageLimit -= n
	m.st.SetDynamic(state.StoragePool, pool-quant)
	if err := m.st.AddDynamic(state.StorageReserve, n); err != nil {
		return 0, err
	}
	return quant, nil
}
