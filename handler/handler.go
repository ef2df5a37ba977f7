// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package handler implements the state transitions of the contract kinds.
// Validation is side-effect free, execution assumes a validated contract.
package handler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/resource"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

var logger = log.WithContext("pkg", "handler")

// Context is what handlers execute against.
type Context struct {
	State      *state.State
	Config     thor.Config
	Accountant *resource.Accountant
	BlockTime  uint64 // milliseconds
}

// ValidationError rejects a contract before any mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{fmt.Sprintf(format, args...)}
}

// ExecutionError is a fault found while applying a validated contract.
type ExecutionError struct {
	Type  tx.ContractType
	cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %v: %v", e.Type, e.cause)
}

// Cause returns the underlying fault.
func (e *ExecutionError) Cause() error {
	return e.cause
}

// Unwrap implements the errors unwrapping.
func (e *ExecutionError) Unwrap() error {
	return e.cause
}

// IsVMKind reports whether contracts of type t are executed by the VM.
func IsVMKind(t tx.ContractType) bool {
	return t == tx.CreateSmartContractType || t == tx.TriggerSmartContractType
}

// Validate checks the preconditions of the contract against the current state.
func Validate(ctx *Context, c *tx.Contract) error {
	switch p := c.Payload.(type) {
	case *tx.Transfer:
		return validateTransfer(ctx, p)
	case *tx.TransferAsset:
		return validateTransferAsset(ctx, p)
	case *tx.AccountCreate:
		return validateAccountCreate(ctx, p)
	case *tx.AccountUpdate:
		return validateAccountUpdate(ctx, p)
	case *tx.AssetIssue:
		return validateAssetIssue(ctx, p)
	case *tx.ParticipateAssetIssue:
		return validateParticipateAssetIssue(ctx, p)
	case *tx.FreezeBalance:
		return validateFreezeBalance(ctx, p)
	case *tx.UnfreezeBalance:
		return validateUnfreezeBalance(ctx, p)
	case *tx.FreezeBalanceV2:
		return validateFreezeBalanceV2(ctx, p)
	case *tx.UnfreezeBalanceV2:
		return validateUnfreezeBalanceV2(ctx, p)
	case *tx.WithdrawExpireUnfreeze:
		return validateWithdrawExpireUnfreeze(ctx, p)
	case *tx.DelegateResource:
		return validateDelegateResource(ctx, p)
	case *tx.UnDelegateResource:
		return validateUnDelegateResource(ctx, p)
	case *tx.VoteWitness:
		return validateVoteWitness(ctx, p)
	case *tx.WitnessCreate:
		return validateWitnessCreate(ctx, p)
	case *tx.WitnessUpdate:
		return validateWitnessUpdate(ctx, p)
	case *tx.WithdrawBalance:
		return validateWithdrawBalance(ctx, p)
	case *tx.ProposalCreate:
		return validateProposalCreate(ctx, p)
	case *tx.ProposalApprove:
		return validateProposalApprove(ctx, p)
	case *tx.ProposalDelete:
		return validateProposalDelete(ctx, p)
	case *tx.BuyStorage:
		return validateBuyStorage(ctx, p)
	case *tx.SellStorage:
		return validateSellStorage(ctx, p)
	case *tx.CreateSmartContract:
		return validateCreateSmartContract(ctx, p)
	case *tx.TriggerSmartContract:
		return validateTriggerSmartContract(ctx, p)
	case *tx.UpdateSetting:
		return validateUpdateSetting(ctx, p)
	case *tx.UpdateEnergyLimit:
		return validateUpdateEnergyLimit(ctx, p)
	}
	return invalid("contract type error, unsupported type %v", c.Type())
}

// Execute applies a validated contract. Contracts run by the VM are rejected.
func Execute(ctx *Context, c *tx.Contract) error {
	var err error
	switch p := c.Payload.(type) {
	case *tx.Transfer:
		err = executeTransfer(ctx, p)
	case *tx.TransferAsset:
		err = executeTransferAsset(ctx, p)
	case *tx.AccountCreate:
		err = executeAccountCreate(ctx, p)
	case *tx.AccountUpdate:
		err = executeAccountUpdate(ctx, p)
	case *tx.AssetIssue:
		err = executeAssetIssue(ctx, p)
	case *tx.ParticipateAssetIssue:
		err = executeParticipateAssetIssue(ctx, p)
	case *tx.FreezeBalance:
		err = executeFreezeBalance(ctx, p)
	case *tx.UnfreezeBalance:
		err = executeUnfreezeBalance(ctx, p)
	case *tx.FreezeBalanceV2:
		err = executeFreezeBalanceV2(ctx, p)
	case *tx.UnfreezeBalanceV2:
		err = executeUnfreezeBalanceV2(ctx, p)
	case *tx.WithdrawExpireUnfreeze:
		err = executeWithdrawExpireUnfreeze(ctx, p)
	case *tx.DelegateResource:
		err = executeDelegateResource(ctx, p)
	case *tx.UnDelegateResource:
		err = executeUnDelegateResource(ctx, p)
	case *tx.VoteWitness:
		err = executeVoteWitness(ctx, p)
	case *tx.WitnessCreate:
		err = executeWitnessCreate(ctx, p)
	case *tx.WitnessUpdate:
		err = executeWitnessUpdate(ctx, p)
	case *tx.WithdrawBalance:
		err = executeWithdrawBalance(ctx, p)
	case *tx.ProposalCreate:
		err = executeProposalCreate(ctx, p)
	case *tx.ProposalApprove:
		err = executeProposalApprove(ctx, p)
	case *tx.ProposalDelete:
		err = executeProposalDelete(ctx, p)
	case *tx.BuyStorage:
		err = executeBuyStorage(ctx, p)
	case *tx.SellStorage:
		err = executeSellStorage(ctx, p)
	case *tx.UpdateSetting:
		err = executeUpdateSetting(ctx, p)
	case *tx.UpdateEnergyLimit:
		err = executeUpdateEnergyLimit(ctx, p)
	default:
		return errors.Errorf("contract type %v is not executed by handlers", c.Type())
	}
	if err == nil {
		logger.Debug("contract executed", "type", c.Type(), "owner", c.Owner())
		return nil
	}
	if _, ok := err.(*state.Error); ok {
		return err
	}
	return &ExecutionError{c.Type(), err}
}

// Fee returns the fixed fee burnt by a contract kind.
func Fee(ctx *Context, c *tx.Contract) uint64 {
	switch c.Type() {
	case tx.AssetIssueType:
		return ctx.Config.AssetIssueFee
	case tx.WitnessCreateType:
		return ctx.Config.AccountUpgradeCost
	case tx.AccountCreateType:
		return ctx.Config.CreateAccountFee
	}
	return 0
}

// CreatesAccount reports whether executing the contract activates a new account,
// which is charged bandwidth at the create-account rate.
func CreatesAccount(ctx *Context, c *tx.Contract) (bool, error) {
	var to thor.Address
	switch p := c.Payload.(type) {
	case *tx.AccountCreate:
		return true, nil
	case *tx.Transfer:
		to = p.To
	case *tx.TransferAsset:
		to = p.To
	default:
		return false, nil
	}
	exists, err := ctx.State.Exists(to)
	return !exists, err
}

// TransferredAsset returns the asset moved by a TransferAsset contract, or nil for any
// other contract or an unknown asset.
func TransferredAsset(ctx *Context, c *tx.Contract) (*state.Asset, error) {
	p, ok := c.Payload.(*tx.TransferAsset)
	if !ok {
		return nil, nil
	}
	return resolveAsset(ctx, p.Asset)
}

// ownerAccount loads the owner account, failing validation with reason when absent.
func ownerAccount(ctx *Context, owner thor.Address, reason string) (*state.Account, error) {
	if owner.IsZero() {
		return nil, invalid("Invalid address")
	}
	acc, err := ctx.State.GetAccount(owner)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, invalid(reason, owner)
	}
	return acc, nil
}

// mustAccount loads an account that validation proved to exist.
func mustAccount(ctx *Context, addr thor.Address) (*state.Account, error) {
	acc, err := ctx.State.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errors.Errorf("account %v does not exist", addr)
	}
	return acc, nil
}

func (ctx *Context) burn(acc *state.Account, fee uint64) error {
	if err := acc.SubBalance(fee); err != nil {
		return err
	}
	return ctx.State.AddDynamic(state.BurnedTotal, fee)
}

func validResource(r thor.Resource) error {
	if !r.Valid() {
		return invalid("ResourceCode error, valid ResourceCode[BANDWIDTH、ENERGY]")
	}
	return nil
}
