// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"github.com/vechain/txexec/resource"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

func validateBuyStorage(ctx *Context, p *tx.BuyStorage) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	switch {
	case p.Quant == 0:
		return invalid("quantity must be positive")
	case p.Quant < thor.TrxPrecision:
		return invalid("quantity must be larger than 1TRX")
	case p.Quant > owner.Balance:
		return invalid("quantity must be less than accountBalance")
	}
	bytes, err := resource.NewStorageMarket(ctx.State).TryBuy(p.Quant)
	if err != nil {
		return err
	}
	if bytes < 1 {
		return invalid("storage_bytes must be larger than 1,current storage_bytes[%d]", bytes)
	}
	return nil
}

func executeBuyStorage(ctx *Context, p *tx.BuyStorage) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if _, err := resource.NewStorageMarket(ctx.State).Buy(owner, p.Quant); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}

func validateSellStorage(ctx *Context, p *tx.SellStorage) error {
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if p.StorageBytes == 0 {
		return invalid("bytes must be positive")
	}
	var unused uint64
	if owner.StorageLimit > owner.StorageUsage {
		unused = owner.StorageLimit - owner.StorageUsage
	}
	if p.StorageBytes > unused {
		return invalid("bytes must be less than currentUnusedStorage[%d]", unused)
	}
	quant, err := resource.NewStorageMarket(ctx.State).TrySell(p.StorageBytes)
	if err != nil {
		return err
	}
	if quant <= thor.TrxPrecision {
		return invalid("quantity must be larger than 1TRX,current quantity[%d]", quant)
	}
	return nil
}

func executeSellStorage(ctx *Context, p *tx.SellStorage) error {
	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if _, err := resource.NewStorageMarket(ctx.State).Sell(owner, p.StorageBytes); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}
