// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package resource

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
)

// BandwidthCharge is the settlement of the bandwidth of one transaction.
type BandwidthCharge struct {
	NetUsage     uint64 // bytes from frozen quota
	FreeNetUsage uint64 // bytes from the free allowance
	NetFee       uint64 // sun paid
}

// ChargeBandwidth charges size bytes to the owner. The free allowance is tried first,
// then the frozen quota, then the bytes are paid with balance. Each source either covers
// the whole size or is skipped.
//
// When the transaction creates an account, the frozen quota is consumed at the
// create-account rate or the create-account fee is paid instead.
func (a *Accountant) ChargeBandwidth(owner thor.Address, size uint64, createsAccount bool) (*BandwidthCharge, error) {
	return a.chargeBandwidth(owner, func(acc *state.Account) (*BandwidthCharge, thor.Address, error) {
		var (
			c   *BandwidthCharge
			err error
		)
		if createsAccount {
			c, err = a.chargeCreateAccount(acc, size)
		} else {
			c, err = a.chargeNet(acc, size)
		}
		return c, owner, err
	})
}

// ChargeAssetBandwidth charges a transfer of asset that creates no account. The issuer's
// frozen quota pays for the bytes first, within the free limits the issuer granted per
// account and in total. Otherwise, and for transfers by the issuer, it behaves as
// ChargeBandwidth.
func (a *Accountant) ChargeAssetBandwidth(owner thor.Address, asset *state.Asset, size uint64) (*BandwidthCharge, error) {
	return a.chargeBandwidth(owner, func(acc *state.Account) (*BandwidthCharge, thor.Address, error) {
		if asset != nil && asset.Owner != owner {
			ok, err := a.useAssetNet(acc, asset, size)
			if err != nil {
				return nil, owner, err
			}
			if ok {
				return &BandwidthCharge{NetUsage: size}, asset.Owner, nil
			}
		}
		c, err := a.chargeNet(acc, size)
		return c, owner, err
	})
}

// chargeBandwidth loads the owner, settles the bytes with charge and records the
// settlement against the account that paid it.
func (a *Accountant) chargeBandwidth(owner thor.Address, charge func(*state.Account) (*BandwidthCharge, thor.Address, error)) (*BandwidthCharge, error) {
	acc, err := a.account(owner)
	if err != nil {
		return nil, err
	}
	c, payer, err := charge(acc)
	if err != nil {
		return nil, err
	}
	if err := a.st.SetAccount(owner, acc); err != nil {
		return nil, err
	}
	a.record(AuditEntry{
		Account:  payer,
		Resource: thor.Bandwidth,
		Free:     c.FreeNetUsage,
		Frozen:   c.NetUsage,
		Fee:      c.NetFee,
	})
	return c, nil
}

func (a *Accountant) chargeCreateAccount(acc *state.Account, size uint64) (*BandwidthCharge, error) {
	cost, overflow := math.SafeMul(size, a.cfg.CreateNewAccountBandwidthRate)
	if !overflow {
		available, err := a.Available(acc, thor.Bandwidth)
		if err != nil {
			return nil, err
		}
		if cost <= available {
			a.consume(acc, thor.Bandwidth, cost)
			return &BandwidthCharge{NetUsage: cost}, nil
		}
	}
	if err := a.pay(acc, a.cfg.CreateNewAccountFee); err != nil {
		return nil, errors.Wrap(err, "create account bandwidth")
	}
	return &BandwidthCharge{NetFee: a.cfg.CreateNewAccountFee}, nil
}

func (a *Accountant) chargeNet(acc *state.Account, size uint64) (*BandwidthCharge, error) {
	ok, err := a.useFreeNet(acc, size)
	if err != nil {
		return nil, err
	}
	if ok {
		return &BandwidthCharge{FreeNetUsage: size}, nil
	}

	available, err := a.Available(acc, thor.Bandwidth)
	if err != nil {
		return nil, err
	}
	if size <= available {
		a.consume(acc, thor.Bandwidth, size)
		return &BandwidthCharge{NetUsage: size}, nil
	}

	fee, overflow := math.SafeMul(size, a.cfg.TransactionFee)
	if overflow {
		return nil, errors.Wrap(ErrInsufficientResource, "bandwidth fee overflow")
	}
	if err := a.pay(acc, fee); err != nil {
		return nil, errors.Wrap(err, "bandwidth")
	}
	return &BandwidthCharge{NetFee: fee}, nil
}

// useFreeNet consumes size bytes from both the account's free allowance and the
// public pool, if both can cover it.
func (a *Accountant) useFreeNet(acc *state.Account, size uint64) (bool, error) {
	window := a.cfg.WindowSlots()

	freeUsage := recovered(acc.FreeNetUsage, acc.LatestConsumeFreeTime, a.now, window)
	if freeUsage > a.cfg.FreeNetLimit || size > a.cfg.FreeNetLimit-freeUsage {
		return false, nil
	}

	publicUsage, err := a.st.GetDynamic(state.PublicNetUsage)
	if err != nil {
		return false, err
	}
	publicTime, err := a.st.GetDynamic(state.PublicNetTime)
	if err != nil {
		return false, err
	}
	publicRecovered := recovered(publicUsage, publicTime, a.now, window)
	if publicRecovered > a.cfg.PublicNetLimit || size > a.cfg.PublicNetLimit-publicRecovered {
		return false, nil
	}

	acc.FreeNetUsage = increase(acc.FreeNetUsage, size, acc.LatestConsumeFreeTime, a.now, window)
	acc.LatestConsumeFreeTime = a.now
	a.st.SetDynamic(state.PublicNetUsage, increase(publicUsage, size, publicTime, a.now, window))
	a.st.SetDynamic(state.PublicNetTime, a.now)
	return true, nil
}

// useAssetNet consumes size bytes from the issuer's frozen quota, the owner's free usage
// of the asset and the asset's public free usage, if all three can cover it.
func (a *Accountant) useAssetNet(acc *state.Account, asset *state.Asset, size uint64) (bool, error) {
	window := a.cfg.WindowSlots()

	publicUsage := recovered(asset.PublicFreeAssetNetUsage, asset.PublicLatestFreeNetTime, a.now, window)
	if publicUsage > asset.PublicFreeAssetNetLimit || size > asset.PublicFreeAssetNetLimit-publicUsage {
		return false, nil
	}
	u := acc.AssetNetUsage(asset.ID)
	freeUsage := recovered(u.Usage, u.LatestTime, a.now, window)
	if freeUsage > asset.FreeAssetNetLimit || size > asset.FreeAssetNetLimit-freeUsage {
		return false, nil
	}
	issuer, err := a.account(asset.Owner)
	if err != nil {
		return false, err
	}
	available, err := a.Available(issuer, thor.Bandwidth)
	if err != nil {
		return false, err
	}
	if size > available {
		return false, nil
	}

	a.consume(issuer, thor.Bandwidth, size)
	if err := a.st.SetAccount(asset.Owner, issuer); err != nil {
		return false, err
	}
	acc.SetAssetNetUsage(state.AssetNetUsage{
		ID:         asset.ID,
		Usage:      increase(u.Usage, size, u.LatestTime, a.now, window),
		LatestTime: a.now,
	})
	updated := *asset
	updated.PublicFreeAssetNetUsage = increase(asset.PublicFreeAssetNetUsage, size, asset.PublicLatestFreeNetTime, a.now, window)
	updated.PublicLatestFreeNetTime = a.now
	if err := a.st.SetAsset(&updated); err != nil {
		return false, err
	}
	return true, nil
}
