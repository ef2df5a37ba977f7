// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"github.com/pkg/errors"

	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

// validateCallToken checks the token attached to a contract call.
func validateCallToken(ctx *Context, acc *state.Account, tokenID, value uint64) error {
	if tokenID == 0 && value == 0 {
		return nil
	}
	if !ctx.Config.AllowTvmTransferTrc10 {
		return invalid("tokenId and tokenValue are not allowed before the trc10 transfer fork")
	}
	if tokenID <= thor.TokenIDStart {
		return invalid("tokenId must be > %d", thor.TokenIDStart)
	}
	asset, err := ctx.State.GetAsset(tokenID)
	if err != nil {
		return err
	}
	if asset == nil {
		return invalid("No asset !")
	}
	if acc.TokenBalance(tokenID) < value {
		return invalid("assetBalance is not sufficient.")
	}
	return nil
}

func validateCreateSmartContract(ctx *Context, p *tx.CreateSmartContract) error {
	if !ctx.Config.AllowCreationOfContracts {
		return invalid("contract creation is not allowed")
	}
	owner, err := ownerAccount(ctx, p.Owner, "OwnerAddress[%v] not exists")
	if err != nil {
		return err
	}
	if len(p.Name) > thor.MaxContractNameLength {
		return invalid("contractName's length cannot be greater than %d", thor.MaxContractNameLength)
	}
	if p.ConsumeUserResourcePercent > thor.MaxConsumeUserResourcePercent {
		return invalid("percent must be >= 0 and <= %d", thor.MaxConsumeUserResourcePercent)
	}
	if p.OriginEnergyLimit == 0 {
		return invalid("The originEnergyLimit must be > 0")
	}
	if len(p.Bytecode) == 0 {
		return invalid("bytecode is empty")
	}
	if owner.Balance < p.CallValue {
		return invalid("balance is not sufficient")
	}
	return validateCallToken(ctx, owner, p.TokenID, p.CallTokenValue)
}

func validateTriggerSmartContract(ctx *Context, p *tx.TriggerSmartContract) error {
	owner, err := ownerAccount(ctx, p.Owner, "OwnerAddress[%v] not exists")
	if err != nil {
		return err
	}
	contract, err := ctx.State.GetContract(p.Contract)
	if err != nil {
		return err
	}
	if contract == nil {
		return invalid("No contract or not a valid smart contract")
	}
	if owner.Balance < p.CallValue {
		return invalid("balance is not sufficient")
	}
	return validateCallToken(ctx, owner, p.TokenID, p.CallTokenValue)
}

// ownedContract loads a contract whose origin must be the owner.
func ownedContract(ctx *Context, owner, addr thor.Address) (*state.Contract, error) {
	if _, err := ownerAccount(ctx, owner, "Account[%v] does not exist"); err != nil {
		return nil, err
	}
	contract, err := ctx.State.GetContract(addr)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, invalid("Contract does not exist")
	}
	if contract.Origin != owner {
		return nil, invalid("Account[%v] is not the owner of the contract", owner)
	}
	return contract, nil
}

func validateUpdateSetting(ctx *Context, p *tx.UpdateSetting) error {
	if p.ConsumeUserResourcePercent > thor.MaxConsumeUserResourcePercent {
		return invalid("percent not in [0, %d]", thor.MaxConsumeUserResourcePercent)
	}
	_, err := ownedContract(ctx, p.Owner, p.Contract)
	return err
}

func executeUpdateSetting(ctx *Context, p *tx.UpdateSetting) error {
	contract, err := ctx.State.GetContract(p.Contract)
	if err != nil {
		return err
	}
	if contract == nil {
		return errors.New("contract does not exist")
	}
	contract.ConsumeUserResourcePercent = p.ConsumeUserResourcePercent
	return ctx.State.SetContract(p.Contract, contract)
}

func validateUpdateEnergyLimit(ctx *Context, p *tx.UpdateEnergyLimit) error {
	if p.OriginEnergyLimit == 0 {
		return invalid("origin energy limit must be > 0")
	}
	_, err := ownedContract(ctx, p.Owner, p.Contract)
	return err
}

func executeUpdateEnergyLimit(ctx *Context, p *tx.UpdateEnergyLimit) error {
	contract, err := ctx.State.GetContract(p.Contract)
	if err != nil {
		return err
	}
	if contract == nil {
		return errors.New("contract does not exist")
	}
	contract.OriginEnergyLimit = p.OriginEnergyLimit
	return ctx.State.SetContract(p.Contract, contract)
}
