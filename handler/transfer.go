// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

func validateTransfer(ctx *Context, p *tx.Transfer) error {
	if p.To.IsZero() {
		return invalid("Invalid toAddress!")
	}
	if p.To == p.Owner {
		return invalid("Cannot transfer TRX to yourself.")
	}
	owner, err := ownerAccount(ctx, p.Owner, "Validate TransferContract error, no OwnerAccount[%v].")
	if err != nil {
		return err
	}
	if p.Amount == 0 {
		return invalid("Amount must be greater than 0.")
	}
	if owner.Balance < p.Amount {
		return invalid("Validate TransferContract error, balance is not sufficient.")
	}
	to, err := ctx.State.GetAccount(p.To)
	if err != nil {
		return err
	}
	if to != nil {
		if _, overflow := math.SafeAdd(to.Balance, p.Amount); overflow {
			return invalid("long overflow")
		}
	}
	return nil
}

func executeTransfer(ctx *Context, p *tx.Transfer) error {
	if err := ctx.State.SubBalance(p.Owner, p.Amount); err != nil {
		return err
	}
	return ctx.State.AddBalance(p.To, p.Amount)
}

// resolveAsset finds the asset named by a payload. Before same token names are allowed
// the payload carries the unique asset name, afterwards the decimal token id.
func resolveAsset(ctx *Context, name string) (*state.Asset, error) {
	var id uint64
	if ctx.Config.AllowSameTokenName {
		parsed, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			return nil, nil
		}
		id = parsed
	} else {
		found, ok, err := ctx.State.GetAssetIDByName(name)
		if err != nil || !ok {
			return nil, err
		}
		id = found
	}
	return ctx.State.GetAsset(id)
}

func validateTransferAsset(ctx *Context, p *tx.TransferAsset) error {
	if p.To.IsZero() {
		return invalid("Invalid toAddress")
	}
	if p.Amount == 0 {
		return invalid("Amount must be greater than 0.")
	}
	if p.Owner == p.To {
		return invalid("Cannot transfer asset to yourself.")
	}
	owner, err := ownerAccount(ctx, p.Owner, "No owner account[%v]!")
	if err != nil {
		return err
	}
	asset, err := resolveAsset(ctx, p.Asset)
	if err != nil {
		return err
	}
	if asset == nil {
		return invalid("No asset!")
	}
	bal := owner.TokenBalance(asset.ID)
	if bal == 0 {
		return invalid("assetBalance must be greater than 0.")
	}
	if bal < p.Amount {
		return invalid("assetBalance is not sufficient.")
	}
	to, err := ctx.State.GetAccount(p.To)
	if err != nil {
		return err
	}
	if to != nil {
		if _, overflow := math.SafeAdd(to.TokenBalance(asset.ID), p.Amount); overflow {
			return invalid("long overflow")
		}
	}
	return nil
}

func executeTransferAsset(ctx *Context, p *tx.TransferAsset) error {
	asset, err := resolveAsset(ctx, p.Asset)
	if err != nil {
		return err
	}
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := owner.SubToken(asset.ID, p.Amount); err != nil {
		return err
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}
	to, err := ctx.State.GetOrCreateAccount(p.To)
	if err != nil {
		return err
	}
	if err := to.AddToken(asset.ID, p.Amount); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.To, to)
}

func validateAccountCreate(ctx *Context, p *tx.AccountCreate) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if owner.Balance < ctx.Config.CreateAccountFee {
		return invalid("Validate CreateAccountActuator error, insufficient fee.")
	}
	if p.Account.IsZero() {
		return invalid("Invalid account address")
	}
	exists, err := ctx.State.Exists(p.Account)
	if err != nil {
		return err
	}
	if exists {
		return invalid("Account has existed")
	}
	return nil
}

func executeAccountCreate(ctx *Context, p *tx.AccountCreate) error {
	if _, err := ctx.State.CreateAccount(p.Account); err != nil {
		return err
	}
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := ctx.burn(owner, ctx.Config.CreateAccountFee); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}

func validAccountName(name string) bool {
	return name != "" && len(name) <= thor.MaxAccountNameLength
}

func validateAccountUpdate(ctx *Context, p *tx.AccountUpdate) error {
	if !validAccountName(p.Name) {
		return invalid("Invalid accountName")
	}
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] does not exist")
	if err != nil {
		return err
	}
	if owner.Name != "" && !ctx.Config.AllowUpdateAccountName {
		return invalid("This account name is already existed")
	}
	return nil
}

func executeAccountUpdate(ctx *Context, p *tx.AccountUpdate) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	owner.Name = p.Name
	return ctx.State.SetAccount(p.Owner, owner)
}
