// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

// validAssetName accepts visible ascii without spaces.
func validAssetName(name string, maxLen int) bool {
	if name == "" || len(name) > maxLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x21 || name[i] > 0x7e {
			return false
		}
	}
	return true
}

func validURL(url string) bool {
	return url != "" && len(url) <= thor.MaxURLLength
}

func validateAssetIssue(ctx *Context, p *tx.AssetIssue) error {
	cfg := &ctx.Config
	if p.Owner.IsZero() {
		return invalid("Invalid ownerAddress")
	}
	if !validAssetName(p.Name, thor.MaxAssetNameLength) {
		return invalid("Invalid assetName")
	}
	if cfg.AllowSameTokenName {
		if strings.ToLower(p.Name) == "trx" {
			return invalid("assetName can't be trx")
		}
		if p.Precision > cfg.MaxAssetPrecision {
			return invalid("precision cannot exceed %d", cfg.MaxAssetPrecision)
		}
	}
	if p.Abbr != "" && !validAssetName(p.Abbr, thor.MaxAssetAbbrLength) {
		return invalid("Invalid abbreviation for token")
	}
	if !validURL(p.URL) {
		return invalid("Invalid url")
	}
	if len(p.Description) > thor.MaxDescriptionLength {
		return invalid("Invalid description")
	}
	switch {
	case p.StartTime == 0:
		return invalid("Start time should be not empty")
	case p.EndTime == 0:
		return invalid("End time should be not empty")
	case p.EndTime <= p.StartTime:
		return invalid("End time should be greater than start time")
	case p.StartTime <= ctx.BlockTime:
		return invalid("Start time should be greater than HeadBlockTime")
	}
	if !cfg.AllowSameTokenName {
		_, exists, err := ctx.State.GetAssetIDByName(p.Name)
		if err != nil {
			return err
		}
		if exists {
			return invalid("Token exists")
		}
	}
	switch {
	case p.TotalSupply == 0:
		return invalid("TotalSupply must greater than 0!")
	case p.TrxNum == 0:
		return invalid("TrxNum must greater than 0!")
	case p.Num == 0:
		return invalid("Num must greater than 0!")
	}
	if p.FreeAssetNetLimit >= cfg.TotalNetLimit {
		return invalid("Invalid FreeAssetNetLimit")
	}
	if p.PublicFreeAssetNetLimit >= cfg.TotalNetLimit {
		return invalid("Invalid PublicFreeAssetNetLimit")
	}

	if len(p.FrozenSupply) > cfg.MaxFrozenSupplyNumber {
		return invalid("Frozen supply list length is too long")
	}
	remain := p.TotalSupply
	for _, fs := range p.FrozenSupply {
		if fs.Amount == 0 {
			return invalid("Frozen supply must be greater than 0!")
		}
		if fs.Amount > remain {
			return invalid("Frozen supply cannot exceed total supply")
		}
		if fs.Days < cfg.MinFrozenSupplyDays || fs.Days > cfg.MaxFrozenSupplyDays {
			return invalid("frozenDuration must be less than %d days and more than %d days",
				cfg.MaxFrozenSupplyDays, cfg.MinFrozenSupplyDays)
		}
		remain -= fs.Amount
	}

	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] not exists")
	if err != nil {
		return err
	}
	if owner.IssuedAssetID != 0 {
		return invalid("An account can only issue one asset")
	}
	if owner.Balance < cfg.AssetIssueFee {
		return invalid("No enough balance for fee!")
	}
	return nil
}

func executeAssetIssue(ctx *Context, p *tx.AssetIssue) error {
	id, err := ctx.State.GetDynamic(state.NextTokenID)
	if err != nil {
		return err
	}
	if err := ctx.State.AddDynamic(state.NextTokenID, 1); err != nil {
		return err
	}

	asset := &state.Asset{
		ID:                      id,
		Owner:                   p.Owner,
		Name:                    p.Name,
		Abbr:                    p.Abbr,
		TotalSupply:             p.TotalSupply,
		TrxNum:                  p.TrxNum,
		Num:                     p.Num,
		Precision:               p.Precision,
		StartTime:               p.StartTime,
		EndTime:                 p.EndTime,
		URL:                     p.URL,
		Description:             p.Description,
		FreeAssetNetLimit:       p.FreeAssetNetLimit,
		PublicFreeAssetNetLimit: p.PublicFreeAssetNetLimit,
	}
	if !ctx.Config.AllowSameTokenName {
		asset.Precision = 0
	}
	remain := p.TotalSupply
	for _, fs := range p.FrozenSupply {
		if fs.Amount > remain {
			return errors.New("frozen supply exceeds total supply")
		}
		expire, overflow := math.SafeAdd(p.StartTime, fs.Days*thor.DayMillis)
		if overflow {
			return errors.New("frozen supply expire time overflow")
		}
		asset.FrozenSupply = append(asset.FrozenSupply, state.Frozen{Amount: fs.Amount, ExpireTime: expire})
		remain -= fs.Amount
	}
	if err := ctx.State.SetAsset(asset); err != nil {
		return err
	}
	if !ctx.Config.AllowSameTokenName {
		ctx.State.SetAssetName(p.Name, id)
	}

	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	owner.IssuedAssetID = id
	if err := owner.AddToken(id, remain); err != nil {
		return err
	}
	if err := ctx.burn(owner, ctx.Config.AssetIssueFee); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.Owner, owner)
}

func validateParticipateAssetIssue(ctx *Context, p *tx.ParticipateAssetIssue) error {
	if p.To.IsZero() {
		return invalid("Invalid toAddress")
	}
	if p.Amount == 0 {
		return invalid("Amount must greater than 0!")
	}
	if p.Owner == p.To {
		return invalid("Cannot participate asset Issue yourself !")
	}
	owner, err := ownerAccount(ctx, p.Owner, "Account[%v] does not exist!")
	if err != nil {
		return err
	}
	if owner.Balance < p.Amount {
		return invalid("No enough balance !")
	}
	asset, err := resolveAsset(ctx, p.Asset)
	if err != nil {
		return err
	}
	if asset == nil {
		return invalid("No asset named %s", p.Asset)
	}
	if asset.Owner != p.To {
		return invalid("The asset is not issued by %v", p.To)
	}
	if ctx.BlockTime < asset.StartTime || ctx.BlockTime >= asset.EndTime {
		return invalid("No longer valid period!")
	}
	exchange, overflow := math.SafeMul(p.Amount, asset.Num)
	if overflow {
		return invalid("long overflow")
	}
	exchange /= asset.TrxNum
	if exchange == 0 {
		return invalid("Can not process the exchange!")
	}
	to, err := ctx.State.GetAccount(p.To)
	if err != nil {
		return err
	}
	if to == nil {
		return invalid("To account does not exist!")
	}
	if to.TokenBalance(asset.ID) < exchange {
		return invalid("Asset balance is not enough !")
	}
	if _, overflow := math.SafeAdd(owner.TokenBalance(asset.ID), exchange); overflow {
		return invalid("long overflow")
	}
	return nil
}

func executeParticipateAssetIssue(ctx *Context, p *tx.ParticipateAssetIssue) error {
	asset, err := resolveAsset(ctx, p.Asset)
	if err != nil {
		return err
	}
	exchange, overflow := math.SafeMul(p.Amount, asset.Num)
	if overflow {
		return errors.New("exchange overflow")
	}
	exchange /= asset.TrxNum

	owner, err := mustAccount(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := owner.SubBalance(p.Amount); err != nil {
		return err
	}
	if err := owner.AddToken(asset.ID, exchange); err != nil {
		return err
	}
	if err := ctx.State.SetAccount(p.Owner, owner); err != nil {
		return err
	}

	issuer, err := mustAccount(ctx, p.To)
	if err != nil {
		return err
	}
	if err := issuer.AddBalance(p.Amount); err != nil {
		return err
	}
	if err := issuer.SubToken(asset.ID, exchange); err != nil {
		return err
	}
	return ctx.State.SetAccount(p.To, issuer)
}
