// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package resource

import (
	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
)

// Sharing describes how a contract splits energy between its origin and the caller.
// A nil sharing means the caller pays everything.
type Sharing struct {
	Origin                     thor.Address
	ConsumeUserResourcePercent uint64
	OriginEnergyLimit          uint64
}

// EnergyBill is the settlement of the energy of one transaction.
type EnergyBill struct {
	EnergyUsage       uint64 // caller's frozen quota
	EnergyFee         uint64 // sun paid by the caller
	OriginEnergyUsage uint64 // origin's frozen quota
}

// CallerEnergyLimit returns the energy the caller can afford: the unused frozen quota plus
// what the balance left after callValue buys, capped by what feeLimit buys.
func (a *Accountant) CallerEnergyLimit(caller thor.Address, feeLimit, callValue uint64) (uint64, error) {
	acc, err := a.account(caller)
	if err != nil {
		return 0, err
	}
	left, err := a.Available(acc, thor.Energy)
	if err != nil {
		return 0, err
	}
	var spendable uint64
	if acc.Balance > callValue {
		spendable = acc.Balance - callValue
	}
	fromBalance := spendable / a.cfg.EnergyFee
	available := left + fromBalance
	if available < left {
		available = ^uint64(0)
	}
	return min(available, feeLimit/a.cfg.EnergyFee), nil
}

// EnergyLimit returns the total energy a call may consume, the origin's share included.
func (a *Accountant) EnergyLimit(caller thor.Address, feeLimit, callValue uint64, sharing *Sharing) (uint64, error) {
	callerLimit, err := a.CallerEnergyLimit(caller, feeLimit, callValue)
	if err != nil {
		return 0, err
	}
	if sharing == nil || sharing.Origin == caller || sharing.ConsumeUserResourcePercent >= 100 {
		return callerLimit, nil
	}
	originLeft, err := a.originLeft(sharing)
	if err != nil {
		return 0, err
	}
	percent := sharing.ConsumeUserResourcePercent
	if percent == 0 {
		return callerLimit + originLeft, nil
	}
	share := mulDiv(callerLimit, 100-percent, percent)
	return callerLimit + min(share, originLeft), nil
}

// originLeft returns the energy the origin can still provide, capped by its per call limit.
func (a *Accountant) originLeft(sharing *Sharing) (uint64, error) {
	origin, err := a.account(sharing.Origin)
	if err != nil {
		return 0, err
	}
	left, err := a.Available(origin, thor.Energy)
	if err != nil {
		return 0, err
	}
	return min(left, sharing.OriginEnergyLimit), nil
}

// PayEnergyBill settles used energy. The origin's share is taken from its frozen quota,
// the rest from the caller's frozen quota, and the remainder is paid by the caller at
// the energy price, never more than feeLimit.
func (a *Accountant) PayEnergyBill(caller thor.Address, used, feeLimit uint64, sharing *Sharing) (*EnergyBill, error) {
	var bill EnergyBill
	callerUsed := used

	if sharing != nil && sharing.Origin != caller && sharing.ConsumeUserResourcePercent < 100 {
		originLeft, err := a.originLeft(sharing)
		if err != nil {
			return nil, err
		}
		originUsed := min(mulDiv(used, 100-sharing.ConsumeUserResourcePercent, 100), originLeft)
		if originUsed > 0 {
			origin, err := a.account(sharing.Origin)
			if err != nil {
				return nil, err
			}
			a.consume(origin, thor.Energy, originUsed)
			if err := a.st.SetAccount(sharing.Origin, origin); err != nil {
				return nil, err
			}
			a.record(AuditEntry{Account: sharing.Origin, Resource: thor.Energy, Origin: true, Frozen: originUsed})
		}
		bill.OriginEnergyUsage = originUsed
		callerUsed = used - originUsed
	}

	acc, err := a.account(caller)
	if err != nil {
		return nil, err
	}
	left, err := a.Available(acc, thor.Energy)
	if err != nil {
		return nil, err
	}
	frozen := min(left, callerUsed)
	if frozen > 0 {
		a.consume(acc, thor.Energy, frozen)
	}
	bill.EnergyUsage = frozen
	bill.EnergyFee = min(mulDiv(callerUsed-frozen, a.cfg.EnergyFee, 1), feeLimit)
	if err := a.pay(acc, bill.EnergyFee); err != nil {
		return nil, errors.Wrap(err, "energy")
	}
	if err := a.st.SetAccount(caller, acc); err != nil {
		return nil, err
	}
	a.record(AuditEntry{Account: caller, Resource: thor.Energy, Frozen: frozen, Fee: bill.EnergyFee})
	return &bill, nil
}
