// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package resource meters bandwidth and energy. It splits each charge into the free
// allowance, the quota backed by frozen stake and the part paid with balance, and keeps
// the rolling usage counters of accounts.
package resource

import (
	"github.com/pkg/errors"

	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
)

var logger = log.WithContext("pkg", "resource")

// ErrInsufficientResource is the cause of every charge that neither quota nor balance can cover.
var ErrInsufficientResource = errors.New("insufficient resource")

// AuditEntry records one settled charge.
type AuditEntry struct {
	Account  thor.Address
	Resource thor.Resource
	Origin   bool   // energy charged to the contract origin
	Free     uint64 // units from the free allowance
	Frozen   uint64 // units from frozen quota
	Fee      uint64 // sun paid
}

// Accountant charges resources of the block at a given timestamp against a state.
type Accountant struct {
	st    *state.State
	cfg   thor.Config
	now   uint64 // slot
	audit []AuditEntry
}

// New creates an accountant for the block with timestamp (milliseconds).
func New(st *state.State, cfg thor.Config, timestamp uint64) *Accountant {
	return &Accountant{
		st:  st,
		cfg: cfg,
		now: cfg.Slot(timestamp),
	}
}

// Audit returns the charges settled so far.
func (a *Accountant) Audit() []AuditEntry {
	return append([]AuditEntry(nil), a.audit...)
}

// Now returns the current slot.
func (a *Accountant) Now() uint64 {
	return a.now
}

func (a *Accountant) record(e AuditEntry) {
	a.audit = append(a.audit, e)
	logger.Debug("resource charged",
		"account", e.Account, "resource", e.Resource, "origin", e.Origin,
		"free", e.Free, "frozen", e.Frozen, "fee", e.Fee)
}

// Limit returns the quota of resource r backed by the account's frozen stake,
// delegations received included and delegations given excluded.
func (a *Accountant) Limit(acc *state.Account, r thor.Resource) (uint64, error) {
	totalWeight, err := a.st.GetDynamic(state.TotalWeight(r))
	if err != nil {
		return 0, err
	}
	totalLimit := a.cfg.TotalNetLimit
	if r == thor.Energy {
		totalLimit = a.cfg.TotalEnergyLimit
	}
	return quota(acc.FrozenFor(r)/thor.TrxPrecision, totalLimit, totalWeight), nil
}

// Usage returns the recovered usage of resource r at the current slot.
func (a *Accountant) Usage(acc *state.Account, r thor.Resource) uint64 {
	window := a.cfg.WindowSlots()
	if r == thor.Energy {
		return recovered(acc.EnergyUsage, acc.LatestConsumeTimeForEnergy, a.now, window)
	}
	return recovered(acc.NetUsage, acc.LatestConsumeTime, a.now, window)
}

// Available returns the unused part of the account's quota of resource r.
func (a *Accountant) Available(acc *state.Account, r thor.Resource) (uint64, error) {
	limit, err := a.Limit(acc, r)
	if err != nil {
		return 0, err
	}
	if used := a.Usage(acc, r); used < limit {
		return limit - used, nil
	}
	return 0, nil
}

// consume adds usage to the counter of resource r.
func (a *Accountant) consume(acc *state.Account, r thor.Resource, usage uint64) {
	window := a.cfg.WindowSlots()
	if r == thor.Energy {
		acc.EnergyUsage = increase(acc.EnergyUsage, usage, acc.LatestConsumeTimeForEnergy, a.now, window)
		acc.LatestConsumeTimeForEnergy = a.now
		return
	}
	acc.NetUsage = increase(acc.NetUsage, usage, acc.LatestConsumeTime, a.now, window)
	acc.LatestConsumeTime = a.now
}

// pay debits fee from the account and burns it.
func (a *Accountant) pay(acc *state.Account, fee uint64) error {
	if fee == 0 {
		return nil
	}
	if err := acc.SubBalance(fee); err != nil {
		return errors.Wrapf(ErrInsufficientResource, "fee %d exceeds balance %d", fee, acc.Balance)
	}
	return a.st.AddDynamic(state.BurnedTotal, fee)
}

func (a *Accountant) account(addr thor.Address) (*state.Account, error) {
	acc, err := a.st.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Errorf("account %v does not exist", addr)
	}
	return acc, nil
}
