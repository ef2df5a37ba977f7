// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

// weight converts a stake in sun to the whole-TRX weight counted in the network totals.
func weight(amount uint64) uint64 {
	return amount / thor.TrxPrecision
}

// subWeight removes a stake from the network total. Stakes are truncated to whole TRX
// one by one when added, so the total is clamped at zero.
func subWeight(ctx *Context, r thor.Resource, amount uint64) error {
	total, err := ctx.State.GetDynamic(state.TotalWeight(r))
	if err != nil {
		return err
	}
	ctx.State.SetDynamic(state.TotalWeight(r), total-min(total, weight(amount)))
	return nil
}

// clearVotes drops the votes of acc, keeping the previous ones for the tally.
func clearVotes(ctx *Context, addr thor.Address, acc *state.Account) error {
	if len(acc.Votes) == 0 {
		return nil
	}
	rec, err := ctx.State.GetVoteRecord(addr)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &state.VoteRecord{Old: acc.Votes}
	}
	rec.New = nil
	acc.Votes = nil
	return ctx.State.SetVoteRecord(addr, rec)
}

func validateFreezeBalance(ctx *Context, p *tx.FreezeBalance) error {
	cfg := &ctx.Config
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	switch {
	case p.Amount == 0:
		return invalid("frozenBalance must be positive")
	case p.Amount < thor.TrxPrecision:
		return invalid("frozenBalance must be more than 1TRX")
	case p.Amount > owner.Balance:
		return invalid("frozenBalance must be less than accountBalance")
	}
	if p.Duration < cfg.MinFrozenDays || p.Duration > cfg.MaxFrozenDays {
		return invalid("frozenDuration must be less than %d days and more than %d days",
			cfg.MaxFrozenDays, cfg.MinFrozenDays)
	}
	if err := validResource(p.Resource); err != nil {
		return err
	}
	if !p.Receiver.IsZero() {
		if !cfg.AllowDelegateResource {
			return invalid("delegate resource is not allowed")
		}
		if p.Receiver == p.Owner {
			return invalid("receiverAddress must not be the same as ownerAddress")
		}
		exists, err := ctx.State.Exists(p.Receiver)
		if err != nil {
			return err
		}
		if !exists {
			return invalid("Account[%v] not exists", p.Receiver)
		}
	}
	return nil
}

func executeFreezeBalance(ctx *Context, p *tx.FreezeBalance) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := owner.SubBalance(p.Amount); err != nil {
		return err
	}
	expire := ctx.BlockTime + p.Duration*thor.DayMillis
	r := p.Resource

	if p.Receiver.IsZero() {
		if err := addTo(&owner.Frozen[r].Amount, p.Amount, "frozen balance"); err != nil {
			return err
		}
		owner.Frozen[r].ExpireTime = expire
		if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
			return err
		}
		return ctx.State.AddDynamic(state.TotalWeight(r), weight(p.Amount))
	}

	d, err := ctx.State.GetDelegation(p.Owner, p.Receiver, false)
	if err != nil {
		return err
	}
	receiver, err := mustAccount(ctx, p.Receiver)
	if err != nil {
		return err
	}
	if err := addTo(&owner.DelegatedOut[r], p.Amount, "delegated balance"); err != nil {
		return err
	}
	if err := addTo(&d.Amount[r], p.Amount, "delegation"); err != nil {
		return err
	}
	if err := addTo(&receiver.Acquired[r], p.Amount, "acquired balance"); err != nil {
		return err
	}
	d.ExpireTime[r] = expire

	if err := ctx.State.SetDelegation(d, false); err != nil {
		return err
	}
	if err := ctx.State.SetAccount(p.Receiver, receiver); err != nil {
		return err
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}
	return ctx.State.AddDynamic(state.TotalWeight(r), weight(p.Amount))
}

// addTo adds delta to *v, failing instead of wrapping around.
func addTo(v *uint64, delta uint64, what string) error {
	sum, overflow := math.SafeAdd(*v, delta)
	if overflow {
		return errors.Errorf("%s overflow", what)
	}
	*v = sum
	return nil
}

func validateUnfreezeBalance(ctx *Context, p *tx.UnfreezeBalance) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if err := validResource(p.Resource); err != nil {
		return err
	}
	r := p.Resource
	if !p.Receiver.IsZero() {
		if p.Receiver == p.Owner {
			return invalid("receiverAddress must not be the same as ownerAddress")
		}
		d, err := ctx.State.GetDelegation(p.Owner, p.Receiver, false)
		if err != nil {
			return err
		}
		if d.Amount[r] == 0 {
			return invalid("no delegatedFrozenBalance(%v)", r)
		}
		if d.ExpireTime[r] > ctx.BlockTime {
			return invalid("It's not time to unfreeze.")
		}
		return nil
	}
	if owner.Frozen[r].Amount == 0 {
		return invalid("no frozenBalance(%v)", r)
	}
	if owner.Frozen[r].ExpireTime > ctx.BlockTime {
		return invalid("It's not time to unfreeze(%v).", r)
	}
	return nil
}

func executeUnfreezeBalance(ctx *Context, p *tx.UnfreezeBalance) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	r := p.Resource
	var amount uint64

	if p.Receiver.IsZero() {
		amount = owner.Frozen[r].Amount
		owner.Frozen[r] = state.Frozen{}
	} else {
		d, err := ctx.State.GetDelegation(p.Owner, p.Receiver, false)
		if err != nil {
			return err
		}
		amount = d.Amount[r]
		d.Amount[r], d.ExpireTime[r] = 0, 0
		if err := ctx.State.SetDelegation(d, false); err != nil {
			return err
		}
		if owner.DelegatedOut[r] < amount {
			return errors.New("delegated balance underflow")
		}
		owner.DelegatedOut[r] -= amount

		receiver, err := ctx.State.GetAccount(p.Receiver)
		if err != nil {
			return err
		}
		// the receiver may have been zeroed by a contract suicide meanwhile
		if receiver != nil {
			receiver.Acquired[r] -= min(receiver.Acquired[r], amount)
			if err := ctx.State.SetAccount(p.Receiver, receiver); err != nil {
				return err
			}
		}
	}
	if err := owner.AddBalance(amount); err != nil {
		return err
	}
	if err := clearVotes(ctx, p.Owner, owner); err != nil {
		return err
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}
	return subWeight(ctx, r, amount)
}

func validateFreezeBalanceV2(ctx *Context, p *tx.FreezeBalanceV2) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	switch {
	case p.Amount == 0:
		return invalid("frozenBalance must be positive")
	case p.Amount < thor.TrxPrecision:
		return invalid("frozenBalance must be greater than or equal to 1 TRX")
	case p.Amount > owner.Balance:
		return invalid("frozenBalance must be less than or equal to accountBalance")
	}
	if err := validResource(p.Resource); err != nil {
		return err
	}
	if _, overflow := math.SafeAdd(owner.Staked[p.Resource], p.Amount); overflow {
		return invalid("long overflow")
	}
	return nil
}

func executeFreezeBalanceV2(ctx *Context, p *tx.FreezeBalanceV2) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := owner.SubBalance(p.Amount); err != nil {
		return err
	}
	if err := addTo(&owner.Staked[p.Resource], p.Amount, "staked balance"); err != nil {
		return err
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}
	return ctx.State.AddDynamic(state.TotalWeight(p.Resource), weight(p.Amount))
}

// withdrawExpired moves the expired unstakes of acc into its balance.
func withdrawExpired(acc *state.Account, now uint64) (uint64, error) {
	var (
		total uint64
		left  []state.Unstake
	)
	for _, u := range acc.Unstakes {
		if u.ExpireTime > now {
			left = append(left, u)
			continue
		}
		sum, overflow := math.SafeAdd(total, u.Amount)
		if overflow {
			return 0, errors.New("unstake amount overflow")
		}
		total = sum
	}
	if err := acc.AddBalance(total); err != nil {
		return 0, err
	}
	acc.Unstakes = left
	return total, nil
}

func validateUnfreezeBalanceV2(ctx *Context, p *tx.UnfreezeBalanceV2) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if err := validResource(p.Resource); err != nil {
		return err
	}
	r := p.Resource
	if owner.Staked[r] == 0 {
		return invalid("no frozenBalance(%v)", r)
	}
	if p.Amount == 0 {
		return invalid("Invalid unfreeze_balance, [%d] must be positive", p.Amount)
	}
	available := owner.Staked[r] - owner.DelegatedOutV2[r]
	if p.Amount > available {
		return invalid("Invalid unfreeze_balance, [%d] is greater than frozen balance excluding delegated [%d]",
			p.Amount, available)
	}
	pending := 0
	for _, u := range owner.Unstakes {
		if u.ExpireTime > ctx.BlockTime {
			pending++
		}
	}
	if pending >= thor.MaxUnfreezingListSize {
		return invalid("Invalid unfreeze operation, unfreezing times is over limit")
	}
	return nil
}

func executeUnfreezeBalanceV2(ctx *Context, p *tx.UnfreezeBalanceV2) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if _, err := withdrawExpired(owner, ctx.BlockTime); err != nil {
		return err
	}
	r := p.Resource
	if owner.Staked[r]-owner.DelegatedOutV2[r] < p.Amount {
		return errors.New("unstake exceeds undelegated stake")
	}
	owner.Staked[r] -= p.Amount
	owner.Unstakes = append(owner.Unstakes, state.Unstake{
		Resource:   r,
		Amount:     p.Amount,
		ExpireTime: ctx.BlockTime + ctx.Config.UnfreezeDelayDays*thor.DayMillis,
	})
	if owner.UsedVotes() > owner.TronPower() {
		if err := clearVotes(ctx, p.Owner, owner); err != nil {
			return err
		}
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}
	return subWeight(ctx, r, p.Amount)
}

func validateWithdrawExpireUnfreeze(ctx *Context, p *tx.WithdrawExpireUnfreeze) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	acc := owner.Copy()
	total, err := withdrawExpired(acc, ctx.BlockTime)
	if err != nil {
		return invalid("%v", err)
	}
	if total == 0 {
		return invalid("no unFreeze balance to withdraw ")
	}
	return nil
}

func executeWithdrawExpireUnfreeze(ctx *Context, p *tx.WithdrawExpireUnfreeze) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if _, err := withdrawExpired(owner, ctx.BlockTime); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}

func validateDelegateResource(ctx *Context, p *tx.DelegateResource) error {
	if !ctx.Config.AllowDelegateResource {
		return invalid("No support for resource delegate")
	}
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if err := validResource(p.Resource); err != nil {
		return err
	}
	if p.Amount < thor.TrxPrecision {
		return invalid("delegateBalance must be greater than or equal to 1 TRX")
	}
	r := p.Resource
	if p.Amount > owner.Staked[r]-owner.DelegatedOutV2[r] {
		return invalid("delegateBalance must be less than or equal to available FreezeV2 balance")
	}
	if p.Receiver.IsZero() {
		return invalid("Invalid receiverAddress")
	}
	if p.Receiver == p.Owner {
		return invalid("receiverAddress must not be the same as ownerAddress")
	}
	exists, err := ctx.State.Exists(p.Receiver)
	if err != nil {
		return err
	}
	if !exists {
		return invalid("Account[%v] not exists", p.Receiver)
	}
	contract, err := ctx.State.GetContract(p.Receiver)
	if err != nil {
		return err
	}
	if contract != nil {
		return invalid("Do not allow delegate resources to contract addresses")
	}
	return nil
}

func executeDelegateResource(ctx *Context, p *tx.DelegateResource) error {
	r := p.Resource
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	owner.DelegatedOutV2[r] += p.Amount
	if owner.DelegatedOutV2[r] > owner.Staked[r] {
		return errors.New("delegation exceeds stake")
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}

	receiver, err := mustAccount(ctx, p.Receiver)
	if err != nil {
		return err
	}
	sum, overflow := math.SafeAdd(receiver.Acquired[r], p.Amount)
	if overflow {
		return errors.New("acquired balance overflow")
	}
	receiver.Acquired[r] = sum
	if err := ctx.State.SetAccount(p.Receiver, receiver); err != nil {
		return err
	}

	d, err := ctx.State.GetDelegation(p.Owner, p.Receiver, true)
	if err != nil {
		return err
	}
	d.Amount[r] += p.Amount
	return ctx.State.SetDelegation(d, true)
}

func validateUnDelegateResource(ctx *Context, p *tx.UnDelegateResource) error {
	if !ctx.Config.AllowDelegateResource {
		return invalid("No support for resource delegate")
	}
	if _, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists"); err != nil {
		return err
	}
	if err := validResource(p.Resource); err != nil {
		return err
	}
	if p.Receiver.IsZero() {
		return invalid("Invalid receiverAddress")
	}
	if p.Receiver == p.Owner {
		return invalid("receiverAddress must not be the same as ownerAddress")
	}
	if p.Amount == 0 {
		return invalid("unDelegateBalance must be more than 0 TRX")
	}
	d, err := ctx.State.GetDelegation(p.Owner, p.Receiver, true)
	if err != nil {
		return err
	}
	if d.Amount[p.Resource] < p.Amount {
		return invalid("insufficient delegatedFrozenBalance(%v), request=%d, unfreezable=%d",
			p.Resource, p.Amount, d.Amount[p.Resource])
	}
	return nil
}

func executeUnDelegateResource(ctx *Context, p *tx.UnDelegateResource) error {
	r := p.Resource
	d, err := ctx.State.GetDelegation(p.Owner, p.Receiver, true)
	if err != nil {
		return err
	}
	if d.Amount[r] < p.Amount {
		return errors.New("undelegation exceeds delegation")
	}
	d.Amount[r] -= p.Amount
	if err := ctx.State.SetDelegation(d, true); err != nil {
		return err
	}

	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	owner.DelegatedOutV2[r] -= min(owner.DelegatedOutV2[r], p.Amount)
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}

	receiver, err := ctx.State.GetAccount(p.Receiver)
	if err != nil || receiver == nil {
		return err
	}
	receiver.Acquired[r] -= min(receiver.Acquired[r], p.Amount)
	return ctx.State.SetAccount(p.Receiver, receiver)
}
