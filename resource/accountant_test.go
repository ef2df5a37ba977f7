// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package resource

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/txexec/lvldb"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func setAccount(t *testing.T, st *state.State, addr thor.Address, acc *state.Account) {
	require.NoError(t, st.SetAccount(addr, acc))
}

func getAccount(t *testing.T, st *state.State, addr thor.Address) *state.Account {
	acc, err := st.GetAccount(addr)
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc
}

func TestDelegatedLimit(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	st.SetDynamic(state.TotalNetWeight, 1000)

	a := &state.Account{
		Staked:         [2]uint64{1000 * thor.TrxPrecision, 0},
		DelegatedOutV2: [2]uint64{400 * thor.TrxPrecision, 0},
	}
	b := &state.Account{Acquired: [2]uint64{400 * thor.TrxPrecision, 0}}

	acct := New(st, cfg, 0)
	limitA, err := acct.Limit(a, thor.Bandwidth)
	require.NoError(t, err)
	limitB, err := acct.Limit(b, thor.Bandwidth)
	require.NoError(t, err)

	assert.Equal(t, cfg.TotalNetLimit*600/1000, limitA)
	assert.Equal(t, cfg.TotalNetLimit*400/1000, limitB)
	assert.Equal(t, cfg.TotalNetLimit, limitA+limitB)
}

func TestChargeBandwidth(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	setAccount(t, st, alice, &state.Account{Balance: thor.TrxPrecision})

	acct := New(st, cfg, 3000)

	// free allowance
	charge, err := acct.ChargeBandwidth(alice, 200, false)
	require.NoError(t, err)
	assert.Equal(t, &BandwidthCharge{FreeNetUsage: 200}, charge)
	assert.Equal(t, uint64(200), getAccount(t, st, alice).FreeNetUsage)
	public, err := st.GetDynamic(state.PublicNetUsage)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), public)

	// larger than the allowance, nothing frozen: paid
	charge, err = acct.ChargeBandwidth(alice, cfg.FreeNetLimit+1, false)
	require.NoError(t, err)
	assert.Equal(t, (cfg.FreeNetLimit+1)*cfg.TransactionFee, charge.NetFee)
	assert.Equal(t, thor.TrxPrecision-charge.NetFee, getAccount(t, st, alice).Balance)

	burned, err := st.GetDynamic(state.BurnedTotal)
	require.NoError(t, err)
	assert.Equal(t, charge.NetFee, burned)

	audit := acct.Audit()
	require.Len(t, audit, 2)
	assert.Equal(t, uint64(200), audit[0].Free)
	assert.Equal(t, charge.NetFee, audit[1].Fee)
}

func TestChargeBandwidthFrozen(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	cfg.FreeNetLimit = 0
	st.SetDynamic(state.TotalNetWeight, 10)
	setAccount(t, st, alice, &state.Account{Staked: [2]uint64{10 * thor.TrxPrecision, 0}})

	acct := New(st, cfg, 0)
	charge, err := acct.ChargeBandwidth(alice, 300, false)
	require.NoError(t, err)
	assert.Equal(t, &BandwidthCharge{NetUsage: 300}, charge)
	assert.Equal(t, uint64(300), getAccount(t, st, alice).NetUsage)
}

func TestChargeBandwidthInsufficient(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	cfg.FreeNetLimit = 0
	setAccount(t, st, alice, &state.Account{Balance: 10})

	acct := New(st, cfg, 0)
	_, err := acct.ChargeBandwidth(alice, 300, false)
	assert.True(t, errors.Is(err, ErrInsufficientResource))
	assert.Equal(t, uint64(10), getAccount(t, st, alice).Balance)
	assert.Empty(t, acct.Audit())

	_, err = acct.ChargeBandwidth(bob, 10, false)
	assert.Error(t, err)
}

func TestChargeCreateAccount(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	setAccount(t, st, alice, &state.Account{Balance: 2 * cfg.CreateNewAccountFee})

	acct := New(st, cfg, 0)
	charge, err := acct.ChargeBandwidth(alice, 200, true)
	require.NoError(t, err)
	assert.Equal(t, &BandwidthCharge{NetFee: cfg.CreateNewAccountFee}, charge)
	assert.Equal(t, cfg.CreateNewAccountFee, getAccount(t, st, alice).Balance)
}

func TestChargeAssetBandwidth(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	st.SetDynamic(state.TotalNetWeight, 1000)
	setAccount(t, st, alice, &state.Account{})
	setAccount(t, st, bob, &state.Account{Staked: [2]uint64{1000 * thor.TrxPrecision, 0}})
	require.NoError(t, st.SetAsset(&state.Asset{
		ID:                      thor.TokenIDStart + 1,
		Owner:                   bob,
		FreeAssetNetLimit:       300,
		PublicFreeAssetNetLimit: 500,
	}))
	getAsset := func() *state.Asset {
		asset, err := st.GetAsset(thor.TokenIDStart + 1)
		require.NoError(t, err)
		return asset
	}

	acct := New(st, cfg, 0)
	charge, err := acct.ChargeAssetBandwidth(alice, getAsset(), 200)
	require.NoError(t, err)
	assert.Equal(t, &BandwidthCharge{NetUsage: 200}, charge)
	assert.Equal(t, uint64(200), getAccount(t, st, bob).NetUsage)
	assert.Equal(t, uint64(200), getAccount(t, st, alice).AssetNetUsage(thor.TokenIDStart+1).Usage)
	assert.Zero(t, getAccount(t, st, alice).NetUsage)
	assert.Equal(t, uint64(200), getAsset().PublicFreeAssetNetUsage)
	assert.Equal(t, []AuditEntry{{Account: bob, Resource: thor.Bandwidth, Frozen: 200}}, acct.Audit())

	// the per-account limit is exhausted, the owner's own allowance pays
	charge, err = acct.ChargeAssetBandwidth(alice, getAsset(), 200)
	require.NoError(t, err)
	assert.Equal(t, &BandwidthCharge{FreeNetUsage: 200}, charge)
	assert.Equal(t, uint64(200), getAccount(t, st, bob).NetUsage)
	assert.Equal(t, uint64(200), getAsset().PublicFreeAssetNetUsage)

	// the issuer pays its own transfers as usual
	charge, err = acct.ChargeAssetBandwidth(bob, getAsset(), 100)
	require.NoError(t, err)
	assert.Equal(t, &BandwidthCharge{FreeNetUsage: 100}, charge)
	assert.Equal(t, uint64(200), getAsset().PublicFreeAssetNetUsage)
}

func TestEnergyLimit(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	setAccount(t, st, alice, &state.Account{Balance: 100 * thor.TrxPrecision})

	acct := New(st, cfg, 0)
	limit, err := acct.CallerEnergyLimit(alice, 10*thor.TrxPrecision, 0)
	require.NoError(t, err)
	assert.Equal(t, 10*thor.TrxPrecision/cfg.EnergyFee, limit)

	// balance minus call value is the bound
	limit, err = acct.CallerEnergyLimit(alice, 1000*thor.TrxPrecision, 99*thor.TrxPrecision)
	require.NoError(t, err)
	assert.Equal(t, thor.TrxPrecision/cfg.EnergyFee, limit)
}

func TestEnergyLimitSharing(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	st.SetDynamic(state.TotalEnergyWeight, 1)
	setAccount(t, st, alice, &state.Account{Balance: 100 * thor.TrxPrecision})
	setAccount(t, st, bob, &state.Account{Staked: [2]uint64{0, thor.TrxPrecision}})

	acct := New(st, cfg, 0)
	sharing := &Sharing{Origin: bob, ConsumeUserResourcePercent: 40, OriginEnergyLimit: 1_000_000}

	limit, err := acct.EnergyLimit(alice, 10*thor.TrxPrecision, 0, sharing)
	require.NoError(t, err)
	callerLimit := 10 * thor.TrxPrecision / cfg.EnergyFee
	assert.Equal(t, callerLimit+min(callerLimit*60/40, 1_000_000), limit)

	bill, err := acct.PayEnergyBill(alice, 1000, 10*thor.TrxPrecision, sharing)
	require.NoError(t, err)
	assert.Equal(t, &EnergyBill{OriginEnergyUsage: 600, EnergyFee: 400 * cfg.EnergyFee}, bill)
	assert.Equal(t, uint64(600), getAccount(t, st, bob).EnergyUsage)
	assert.Equal(t, 100*thor.TrxPrecision-400*cfg.EnergyFee, getAccount(t, st, alice).Balance)
}

func TestPayEnergyBillFrozenFirst(t *testing.T) {
	st := newState(t)
	cfg := thor.DefaultConfig()
	cfg.TotalEnergyLimit = 500
	st.SetDynamic(state.TotalEnergyWeight, 1)
	setAccount(t, st, alice, &state.Account{
		Balance: thor.TrxPrecision,
		Staked:  [2]uint64{0, thor.TrxPrecision},
	})

	acct := New(st, cfg, 0)
	bill, err := acct.PayEnergyBill(alice, 800, thor.TrxPrecision, nil)
	require.NoError(t, err)
	assert.Equal(t, &EnergyBill{EnergyUsage: 500, EnergyFee: 300 * cfg.EnergyFee}, bill)

	acc := getAccount(t, st, alice)
	assert.Equal(t, uint64(500), acc.EnergyUsage)
	assert.Equal(t, thor.TrxPrecision-300*cfg.EnergyFee, acc.Balance)

	// the fee never exceeds the limit
	bill, err = acct.PayEnergyBill(alice, 800, 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bill.EnergyFee)
}
