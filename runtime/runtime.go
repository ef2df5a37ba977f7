// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes transactions of a block against the deposit cache. Each
// transaction is charged bandwidth, dispatched to its contract handler or the VM, settled
// for energy and checked against the accountant's records before its changes are kept.
package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/txexec/handler"
	"github.com/vechain/txexec/kv"
	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
	"github.com/vechain/txexec/vm"
)

var logger = log.WithContext("pkg", "runtime")

// Output is what the block assembler receives for an applied transaction.
type Output struct {
	Receipt   *tx.Receipt
	Changeset state.Changeset
	// VMErr is the halt of a smart contract execution, nil on success.
	VMErr error
}

// Runtime is to support transaction execution.
type Runtime struct {
	vmConfig vm.Config
	getHash  func(uint64) thor.Bytes32
	state    *state.State
	config   thor.Config

	// block env
	witness     thor.Address
	blockNumber uint64
	blockTime   uint64
}

// New create a Runtime object.
func New(
	state *state.State,
	config thor.Config,
	witness thor.Address,
	blockNumber,
	blockTime uint64,
	getHash func(uint64) thor.Bytes32) *Runtime {
	return &Runtime{
		getHash:     getHash,
		state:       state,
		config:      config,
		witness:     witness,
		blockNumber: blockNumber,
		blockTime:   blockTime,
	}
}

func (rt *Runtime) State() *state.State   { return rt.state }
func (rt *Runtime) Config() thor.Config   { return rt.config }
func (rt *Runtime) Witness() thor.Address { return rt.witness }
func (rt *Runtime) BlockNumber() uint64   { return rt.blockNumber }
func (rt *Runtime) BlockTime() uint64     { return rt.blockTime }

// SetVMConfig config VM.
// Returns this runtime.
func (rt *Runtime) SetVMConfig(config vm.Config) *Runtime {
	rt.vmConfig = config
	return rt
}

// ExecuteTransaction executes a transaction.
// A rejected transaction returns an error and leaves the state untouched. A transaction
// whose VM execution halts is still applied, with its failure receipt and fees.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (*Output, error) {
	rtx, err := ResolveTransaction(trx)
	if err != nil {
		return nil, err
	}
	if err := rtx.Check(&rt.config, rt.blockTime); err != nil {
		return nil, err
	}

	checkpoint := rt.state.NewCheckpoint()
	trace := newTrace(rt, rtx)
	receipt, err := trace.run()
	contractType := rtx.Contract.Type().String()
	if err != nil {
		rt.state.RevertTo(checkpoint)
		metricTxResultCount().AddWithLabel(1, map[string]string{"type": contractType, "result": "rejected"})
		if _, ok := err.(*ReceiptCheckError); ok {
			logger.Error("receipt check failed", "id", trx.ID(), "err", err)
		} else {
			logger.Debug("tx rejected", "id", trx.ID(), "state", trace.State(), "err", err)
		}
		return nil, err
	}

	changes := rt.state.Changes(checkpoint)
	rt.state.Commit(checkpoint)

	metricTxResultCount().AddWithLabel(1, map[string]string{"type": contractType, "result": receipt.Result.String()})
	logger.Debug("tx executed", "id", trx.ID(), "type", contractType, "result", receipt.Result, "fee", receipt.Fee())
	return &Output{
		Receipt:   receipt,
		Changeset: changes,
		VMErr:     trace.vmErr,
	}, nil
}

// Commit writes every change applied so far into store.
func (rt *Runtime) Commit(store kv.Store) error {
	stage, err := rt.state.Stage()
	if err != nil {
		return err
	}
	if err := stage.Commit(store); err != nil {
		return err
	}
	logger.Debug("state committed", "changes", len(stage.Changes()))
	return nil
}

// Simulate runs a contract call without charging anything and discards its changes.
// The call may consume the energy the maximum fee limit buys.
func (rt *Runtime) Simulate(p *tx.TriggerSmartContract) (*tx.Receipt, error) {
	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)

	ctx := &handler.Context{State: rt.state, Config: rt.config, BlockTime: rt.blockTime}
	if err := handler.Validate(ctx, &tx.Contract{Payload: p}); err != nil {
		return nil, err
	}

	env := vm.New(vm.Context{
		Origin:      p.Owner,
		Witness:     rt.witness,
		BlockNumber: rt.blockNumber,
		BlockTime:   rt.blockTime,
		GetHash:     rt.getHash,
	}, rt.state, rt.config, rt.vmConfig)

	limit := rt.config.MaxFeeLimit / rt.config.EnergyFee
	ret, left, err := env.Call(p.Owner, p.Contract, p.Data, limit, p.CallValue,
		vm.TokenValue{ID: p.TokenID, Amount: p.CallTokenValue})

	receipt := &tx.Receipt{
		ReturnValue:      ret,
		EnergyUsageTotal: limit - left,
		Logs:             env.Logs(),
		InternalTxs:      env.InternalTxs(),
	}
	if err != nil {
		h, ok := vm.AsHalt(err)
		if !ok {
			return nil, errors.WithMessage(err, "vm")
		}
		receipt.Result = h.Kind.ResultCode()
		receipt.RuntimeError = h.Error()
	}
	return receipt, nil
}
