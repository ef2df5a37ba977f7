// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/txexec/handler"
	"github.com/vechain/txexec/resource"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
	"github.com/vechain/txexec/vm"
)

// TraceState is the progress of a transaction through the runtime.
type TraceState uint8

const (
	Created TraceState = iota
	BandwidthCharged
	Executed
	Finalized
	Checked
)

func (s TraceState) String() string {
	switch s {
	case Created:
		return "created"
	case BandwidthCharged:
		return "bandwidth charged"
	case Executed:
		return "executed"
	case Finalized:
		return "finalized"
	case Checked:
		return "checked"
	}
	return fmt.Sprintf("TraceState(%d)", uint8(s))
}

// ReceiptCheckError reports a receipt disagreeing with the charges actually settled.
// It is an internal fault, the transaction is never applied.
type ReceiptCheckError struct {
	Field    string
	Declared uint64
	Computed uint64
}

func (e *ReceiptCheckError) Error() string {
	return fmt.Sprintf("receipt check: %s declared %d, computed %d", e.Field, e.Declared, e.Computed)
}

// settlement is what a charge observably did to the payer.
type settlement struct {
	paid   uint64 // balance decrease
	burned uint64 // burnt total increase
}

// Trace drives one transaction from bandwidth charge to the checked receipt.
type Trace struct {
	rt       *Runtime
	rtx      *ResolvedTransaction
	ctx      *handler.Context
	state    TraceState
	receipt  *tx.Receipt
	sharing  *resource.Sharing
	env      *vm.VM
	vmErr    error
	netPaid  settlement
	feePaid  settlement
	billPaid settlement
}

func newTrace(rt *Runtime, rtx *ResolvedTransaction) *Trace {
	return &Trace{
		rt:  rt,
		rtx: rtx,
		ctx: &handler.Context{
			State:      rt.state,
			Config:     rt.config,
			Accountant: resource.New(rt.state, rt.config, rt.blockTime),
			BlockTime:  rt.blockTime,
		},
		receipt: &tx.Receipt{},
	}
}

// State returns the progress of the trace.
func (t *Trace) State() TraceState {
	return t.state
}

func (t *Trace) advance(from, to TraceState) error {
	if t.state != from {
		return errors.Errorf("trace: cannot move to %v from %v", to, t.state)
	}
	t.state = to
	return nil
}

// observe runs fn and measures how much the owner paid and how much got burnt meanwhile.
func (t *Trace) observe(fn func() error) (settlement, error) {
	st := t.rt.state
	balance, err := st.GetBalance(t.rtx.Owner)
	if err != nil {
		return settlement{}, err
	}
	burned, err := st.GetDynamic(state.BurnedTotal)
	if err != nil {
		return settlement{}, err
	}
	if err := fn(); err != nil {
		return settlement{}, err
	}
	balanceAfter, err := st.GetBalance(t.rtx.Owner)
	if err != nil {
		return settlement{}, err
	}
	burnedAfter, err := st.GetDynamic(state.BurnedTotal)
	if err != nil {
		return settlement{}, err
	}
	var s settlement
	if balance > balanceAfter {
		s.paid = balance - balanceAfter
	}
	s.burned = burnedAfter - burned
	return s, nil
}

// run validates the contract and takes the trace through every state.
func (t *Trace) run() (*tx.Receipt, error) {
	if err := handler.Validate(t.ctx, t.rtx.Contract); err != nil {
		return nil, err
	}
	if err := t.chargeBandwidth(); err != nil {
		return nil, err
	}
	if err := t.execute(); err != nil {
		return nil, err
	}
	if err := t.finalize(); err != nil {
		return nil, err
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.receipt, nil
}

// chargeBandwidth charges the encoded size of the transaction to the owner.
func (t *Trace) chargeBandwidth() error {
	if err := t.advance(Created, BandwidthCharged); err != nil {
		return err
	}
	createsAccount, err := handler.CreatesAccount(t.ctx, t.rtx.Contract)
	if err != nil {
		return err
	}
	var asset *state.Asset
	if !createsAccount {
		if asset, err = handler.TransferredAsset(t.ctx, t.rtx.Contract); err != nil {
			return err
		}
	}
	size := uint64(t.rtx.tx.Size())
	var charge *resource.BandwidthCharge
	t.netPaid, err = t.observe(func() (err error) {
		if asset != nil {
			charge, err = t.ctx.Accountant.ChargeAssetBandwidth(t.rtx.Owner, asset, size)
		} else {
			charge, err = t.ctx.Accountant.ChargeBandwidth(t.rtx.Owner, size, createsAccount)
		}
		return err
	})
	if err != nil {
		return errors.WithMessage(err, "charge bandwidth")
	}
	t.receipt.NetUsage = charge.NetUsage
	t.receipt.FreeNetUsage = charge.FreeNetUsage
	t.receipt.NetFee = charge.NetFee
	metricBandwidthBytes().Observe(int64(size))
	return nil
}

// execute applies the contract through its handler or the VM.
func (t *Trace) execute() error {
	if err := t.advance(BandwidthCharged, Executed); err != nil {
		return err
	}
	c := t.rtx.Contract
	if handler.IsVMKind(c.Type()) {
		return t.executeVM()
	}
	t.receipt.HandlerFee = handler.Fee(t.ctx, c)
	var err error
	t.feePaid, err = t.observe(func() error {
		return handler.Execute(t.ctx, c)
	})
	return err
}

func (t *Trace) executeVM() error {
	var (
		st       = t.rt.state
		owner    = t.rtx.Owner
		feeLimit = t.rtx.tx.FeeLimit()
		ret      []byte
		left     uint64
		limit    uint64
		err      error
	)
	t.env = vm.New(vm.Context{
		TxID:        t.rtx.tx.ID(),
		Origin:      owner,
		Witness:     t.rt.witness,
		BlockNumber: t.rt.blockNumber,
		BlockTime:   t.rt.blockTime,
		GetHash:     t.rt.getHash,
	}, st, t.rt.config, t.rt.vmConfig)

	switch p := t.rtx.Contract.Payload.(type) {
	case *tx.CreateSmartContract:
		t.sharing = &resource.Sharing{
			Origin:                     p.Owner,
			ConsumeUserResourcePercent: p.ConsumeUserResourcePercent,
			OriginEnergyLimit:          p.OriginEnergyLimit,
		}
		if limit, err = t.ctx.Accountant.EnergyLimit(owner, feeLimit, p.CallValue, t.sharing); err != nil {
			return err
		}
		meta := state.Contract{
			Origin:                     p.Owner,
			Name:                       p.Name,
			ConsumeUserResourcePercent: p.ConsumeUserResourcePercent,
			OriginEnergyLimit:          p.OriginEnergyLimit,
		}
		var addr thor.Address
		ret, addr, left, err = t.env.Create(owner, p.Bytecode, limit, p.CallValue,
			vm.TokenValue{ID: p.TokenID, Amount: p.CallTokenValue}, meta)
		t.receipt.ContractAddress = addr
	case *tx.TriggerSmartContract:
		var meta *state.Contract
		if meta, err = st.GetContract(p.Contract); err != nil {
			return err
		}
		if meta == nil {
			return errors.Errorf("contract %v does not exist", p.Contract)
		}
		t.sharing = &resource.Sharing{
			Origin:                     meta.Origin,
			ConsumeUserResourcePercent: meta.ConsumeUserResourcePercent,
			OriginEnergyLimit:          meta.OriginEnergyLimit,
		}
		if limit, err = t.ctx.Accountant.EnergyLimit(owner, feeLimit, p.CallValue, t.sharing); err != nil {
			return err
		}
		ret, left, err = t.env.Call(owner, p.Contract, p.Data, limit, p.CallValue,
			vm.TokenValue{ID: p.TokenID, Amount: p.CallTokenValue})
	default:
		return errors.Errorf("contract type %v is not executed by the vm", t.rtx.Contract.Type())
	}

	if err != nil {
		h, ok := vm.AsHalt(err)
		if !ok {
			return errors.WithMessage(err, "vm")
		}
		t.vmErr = h
		t.receipt.Result = h.Kind.ResultCode()
		t.receipt.RuntimeError = h.Error()
		if h.Kind == vm.Reverted {
			t.receipt.ReturnValue = ret
		}
	} else {
		t.receipt.ReturnValue = ret
	}

	used := limit - left
	used -= min(t.env.Refund(), used/2)
	t.receipt.EnergyUsageTotal = used
	t.receipt.Logs = t.env.Logs()
	t.receipt.InternalTxs = t.env.InternalTxs()
	return nil
}

// finalize settles the energy bill.
func (t *Trace) finalize() error {
	if err := t.advance(Executed, Finalized); err != nil {
		return err
	}
	if t.env == nil {
		return nil
	}
	var (
		bill *resource.EnergyBill
		err  error
	)
	t.billPaid, err = t.observe(func() (err error) {
		bill, err = t.ctx.Accountant.PayEnergyBill(t.rtx.Owner, t.receipt.EnergyUsageTotal, t.rtx.tx.FeeLimit(), t.sharing)
		return err
	})
	if err != nil {
		return errors.WithMessage(err, "pay energy bill")
	}
	t.receipt.EnergyUsage = bill.EnergyUsage
	t.receipt.EnergyFee = bill.EnergyFee
	t.receipt.OriginEnergyUsage = bill.OriginEnergyUsage
	metricEnergyUsed().Observe(int64(t.receipt.EnergyUsageTotal))
	return nil
}

// check recomputes the receipt totals from the accountant's audit trail and the observed
// balance changes.
func (t *Trace) check() error {
	if err := t.advance(Finalized, Checked); err != nil {
		return err
	}
	var free, netFrozen, netFee, energyFrozen, energyFee, originFrozen uint64
	for _, e := range t.ctx.Accountant.Audit() {
		switch {
		case e.Resource == thor.Bandwidth:
			free += e.Free
			netFrozen += e.Frozen
			netFee += e.Fee
		case e.Origin:
			originFrozen += e.Frozen
		default:
			energyFrozen += e.Frozen
			energyFee += e.Fee
		}
	}

	r := t.receipt
	checks := []ReceiptCheckError{
		{"freeNetUsage", r.FreeNetUsage, free},
		{"netUsage", r.NetUsage, netFrozen},
		{"netFee", r.NetFee, netFee},
		{"netFee paid", r.NetFee, t.netPaid.paid},
		{"netFee burnt", r.NetFee, t.netPaid.burned},
		{"energyUsage", r.EnergyUsage, energyFrozen},
		{"originEnergyUsage", r.OriginEnergyUsage, originFrozen},
		{"energyFee", r.EnergyFee, energyFee},
		{"energyFee paid", r.EnergyFee, t.billPaid.paid},
		{"energyFee burnt", r.EnergyFee, t.billPaid.burned},
		{"handlerFee burnt", r.HandlerFee, t.feePaid.burned},
	}
	for _, c := range checks {
		if c.Declared != c.Computed {
			return &c
		}
	}
	if frozen := r.EnergyUsage + r.OriginEnergyUsage; frozen > r.EnergyUsageTotal {
		return &ReceiptCheckError{"energyUsageTotal", r.EnergyUsageTotal, frozen}
	}
	if bound := (r.EnergyUsageTotal - r.EnergyUsage - r.OriginEnergyUsage) * t.rt.config.EnergyFee; r.EnergyFee > bound {
		return &ReceiptCheckError{"energyFee bound", r.EnergyFee, bound}
	}
	return nil
}
