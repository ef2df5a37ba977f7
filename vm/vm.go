// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vm is the stack based bytecode interpreter executing smart contracts. Energy is
// charged before each instruction takes effect, and every call frame runs in its own deposit
// cache checkpoint which is committed when the frame succeeds and reverted when it halts.
package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

var logger = log.WithContext("pkg", "vm")

var emptyCodeHash = thor.Keccak256(nil)

// Context provides the VM with block and transaction information.
type Context struct {
	TxID        thor.Bytes32
	Origin      thor.Address
	Witness     thor.Address
	BlockNumber uint64
	BlockTime   uint64 // milliseconds
	GetHash     func(num uint64) thor.Bytes32
}

// Config are the optional settings of the VM.
type Config struct {
	Tracer Logger
}

// VM executes the contract calls of one transaction. It is not thread safe and must
// only ever be used once.
type VM struct {
	Context
	cfg         thor.Config
	vmCfg       Config
	state       *state.State
	interpreter *Interpreter

	depth          int
	steps          uint64 // instruction budget left
	nonce          uint64 // internal creations
	refund         uint64
	callEnergyTemp uint64
	logs           []*tx.Log
	internalTxs    []*tx.InternalTransaction
	jumpdests      map[thor.Bytes32]bitvec
}

// New creates a VM executing against st.
func New(ctx Context, st *state.State, cfg thor.Config, vmCfg Config) *VM {
	vm := &VM{
		Context:   ctx,
		cfg:       cfg,
		vmCfg:     vmCfg,
		state:     st,
		steps:     cfg.MaxInstructionSteps,
		jumpdests: make(map[thor.Bytes32]bitvec),
	}
	vm.interpreter = NewInterpreter(vm)
	return vm
}

// Logs returns the logs emitted by frames that did not revert.
func (vm *VM) Logs() []*tx.Log {
	return vm.logs
}

// InternalTxs returns the calls and creations made by contracts.
func (vm *VM) InternalTxs() []*tx.InternalTransaction {
	return vm.internalTxs
}

// Refund returns the energy refund accumulated by storage clears of frames that did not revert.
func (vm *VM) Refund() uint64 {
	return vm.refund
}

// Steps returns the number of instructions executed so far.
func (vm *VM) Steps() uint64 {
	return vm.cfg.MaxInstructionSteps - vm.steps
}

// frameMark records what a frame must roll back when it halts.
type frameMark struct {
	revision    int
	logs        int
	internalTxs int
	refund      uint64
}

func (vm *VM) mark() frameMark {
	return frameMark{
		revision:    vm.state.NewCheckpoint(),
		logs:        len(vm.logs),
		internalTxs: len(vm.internalTxs),
		refund:      vm.refund,
	}
}

func (vm *VM) revert(m frameMark) {
	vm.state.RevertTo(m.revision)
	vm.logs = vm.logs[:m.logs]
	for _, itx := range vm.internalTxs[m.internalTxs:] {
		itx.Rejected = true
	}
	vm.refund = m.refund
}

// settle commits or reverts the frame opened at m and returns the energy handed back to the
// caller along with the error the caller sees. A transfer refused inside the frame halts that
// frame only, so it leaves as a plain TransferFailed halt.
func (vm *VM) settle(m frameMark, contract *Contract, err error) (uint64, error) {
	if err == nil {
		vm.state.Commit(m.revision)
		return contract.Energy, nil
	}
	vm.revert(m)
	if h, ok := err.(*Halt); ok {
		logger.Debug("frame halted", "address", contract.Address(), "depth", vm.depth, "halt", h)
		if h.Kind.spendsAll() {
			contract.Energy = 0
		}
		if isTransferRefusal(h) {
			err = &Halt{Kind: h.Kind, Reason: h.Reason}
		}
	}
	return contract.Energy, err
}

// recordInternalTx records a call made by contract code. Calls made by the transaction itself
// are not recorded.
func (vm *VM) recordInternalTx(caller, to thor.Address, note string, value uint64, token TokenValue) *tx.InternalTransaction {
	if vm.depth == 0 {
		return nil
	}
	itx := &tx.InternalTransaction{
		Caller:     caller,
		To:         to,
		Note:       note,
		Value:      value,
		TokenID:    token.ID,
		TokenValue: token.Amount,
	}
	vm.internalTxs = append(vm.internalTxs, itx)
	return itx
}

func reject(itx *tx.InternalTransaction, err error) {
	if itx != nil && err != nil {
		itx.Rejected = true
	}
}

// Transfer refusals. They are returned before a frame opens and leave the energy untouched.
var (
	errSelfTransfer        = halt(TransferFailed, "transfer to itself")
	errInsufficientBalance = halt(TransferFailed, "insufficient balance")
	errNoAsset             = halt(TransferFailed, "no asset")
	errInsufficientToken   = halt(TransferFailed, "insufficient token balance")
)

func isTransferRefusal(err error) bool {
	switch err {
	case errSelfTransfer, errInsufficientBalance, errNoAsset, errInsufficientToken:
		return true
	}
	return false
}

// checkTransfer reports whether from can send value and token to to.
func (vm *VM) checkTransfer(from, to thor.Address, value uint64, token TokenValue) error {
	if value == 0 && token.Amount == 0 {
		return nil
	}
	if from == to && vm.cfg.AllowTvmConstantinople {
		return errSelfTransfer
	}
	acc, err := vm.state.GetAccount(from)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &state.Account{}
	}
	if acc.Balance < value {
		return errInsufficientBalance
	}
	if token.Amount > 0 {
		if token.ID <= thor.TokenIDStart {
			return errNoAsset
		}
		asset, err := vm.state.GetAsset(token.ID)
		if err != nil {
			return err
		}
		if asset == nil {
			return errNoAsset
		}
		if acc.TokenBalance(token.ID) < token.Amount {
			return errInsufficientToken
		}
	}
	return nil
}

// transfer moves value and token, creating the recipient. checkTransfer must have passed.
func (vm *VM) transfer(from, to thor.Address, value uint64, token TokenValue) error {
	if value == 0 && token.Amount == 0 {
		return nil
	}
	sender, err := vm.state.GetAccount(from)
	if err != nil {
		return err
	}
	if err := sender.SubBalance(value); err != nil {
		return err
	}
	if err := sender.SubToken(token.ID, token.Amount); err != nil {
		return err
	}
	if err := vm.state.SetAccount(from, sender); err != nil {
		return err
	}
	recipient, err := vm.state.GetOrCreateAccount(to)
	if err != nil {
		return err
	}
	if err := recipient.AddBalance(value); err != nil {
		return halt(TransferFailed, "%v", err)
	}
	if err := recipient.AddToken(token.ID, token.Amount); err != nil {
		return halt(TransferFailed, "%v", err)
	}
	return vm.state.SetAccount(to, recipient)
}

func (vm *VM) newContract(caller, addr thor.Address, value uint64, token TokenValue, energy uint64) *Contract {
	c := NewContract(caller, addr, value, token, energy)
	c.jumpdests = vm.jumpdests
	return c
}

// setCode loads the code deployed at addr into the contract.
func (vm *VM) setCode(contract *Contract, addr thor.Address) error {
	contract.CodeAddr = addr
	meta, err := vm.state.GetContract(addr)
	if err != nil || meta == nil {
		return err
	}
	code, err := vm.state.GetCodeByHash(meta.CodeHash)
	if err != nil {
		return err
	}
	contract.SetCallCode(addr, meta.CodeHash, code)
	return nil
}

// run executes the contract, dispatching precompiled addresses to native code.
func (vm *VM) run(contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	if p, ok := precompiledContracts[contract.CodeAddr]; ok {
		return runPrecompiledContract(p, contract, input)
	}
	if len(contract.Code) == 0 {
		return nil, nil
	}
	return vm.interpreter.Run(contract, input, readOnly)
}

func (vm *VM) captureStart(from, to thor.Address, create bool, input []byte, energy, value uint64) {
	if vm.depth == 0 && vm.vmCfg.Tracer != nil {
		vm.vmCfg.Tracer.CaptureStart(vm, from, to, create, input, energy, value)
	}
}

func (vm *VM) captureEnd(output []byte, energy, leftOver uint64, err error) {
	if vm.depth == 0 && vm.vmCfg.Tracer != nil {
		vm.vmCfg.Tracer.CaptureEnd(output, energy-leftOver, err)
	}
}

// Call executes the code at addr with input, after moving value and token from caller to addr.
func (vm *VM) Call(caller, addr thor.Address, input []byte, energy, value uint64, token TokenValue) (ret []byte, leftOverEnergy uint64, err error) {
	note := "call"
	if token.Amount > 0 {
		note = "callToken"
	}
	itx := vm.recordInternalTx(caller, addr, note, value, token)
	defer func() { reject(itx, err) }()

	if vm.depth >= vm.cfg.MaxCallDepth {
		return nil, energy, errCallDepth
	}
	if err := vm.checkTransfer(caller, addr, value, token); err != nil {
		return nil, energy, err
	}
	vm.captureStart(caller, addr, false, input, energy, value)

	m := vm.mark()
	contract := vm.newContract(caller, addr, value, token, energy)
	if err = vm.transfer(caller, addr, value, token); err == nil {
		if err = vm.setCode(contract, addr); err == nil {
			ret, err = vm.run(contract, input, false)
		}
	}
	leftOverEnergy, err = vm.settle(m, contract, err)
	vm.captureEnd(ret, energy, leftOverEnergy, err)
	return ret, leftOverEnergy, err
}

// CallCode executes the code at addr in the context of caller.
func (vm *VM) CallCode(caller, addr thor.Address, input []byte, energy, value uint64) (ret []byte, leftOverEnergy uint64, err error) {
	itx := vm.recordInternalTx(caller, addr, "callcode", value, TokenValue{})
	defer func() { reject(itx, err) }()

	if vm.depth >= vm.cfg.MaxCallDepth {
		return nil, energy, errCallDepth
	}
	balance, err := vm.state.GetBalance(caller)
	if err != nil {
		return nil, energy, err
	}
	if balance < value {
		return nil, energy, errInsufficientBalance
	}

	m := vm.mark()
	contract := vm.newContract(caller, caller, value, TokenValue{}, energy)
	if err = vm.setCode(contract, addr); err == nil {
		ret, err = vm.run(contract, input, false)
	}
	leftOverEnergy, err = vm.settle(m, contract, err)
	return ret, leftOverEnergy, err
}

// DelegateCall executes the code at addr in the context of the parent frame, keeping its
// caller and value.
func (vm *VM) DelegateCall(parent *Contract, addr thor.Address, input []byte, energy uint64) (ret []byte, leftOverEnergy uint64, err error) {
	itx := vm.recordInternalTx(parent.Address(), addr, "delegatecall", 0, TokenValue{})
	defer func() { reject(itx, err) }()

	if vm.depth >= vm.cfg.MaxCallDepth {
		return nil, energy, errCallDepth
	}

	m := vm.mark()
	contract := vm.newContract(parent.Address(), parent.Address(), 0, TokenValue{}, energy).AsDelegate(parent)
	if err = vm.setCode(contract, addr); err == nil {
		ret, err = vm.run(contract, input, false)
	}
	leftOverEnergy, err = vm.settle(m, contract, err)
	return ret, leftOverEnergy, err
}

// StaticCall executes the code at addr, failing any instruction that modifies state.
func (vm *VM) StaticCall(caller, addr thor.Address, input []byte, energy uint64) (ret []byte, leftOverEnergy uint64, err error) {
	itx := vm.recordInternalTx(caller, addr, "staticcall", 0, TokenValue{})
	defer func() { reject(itx, err) }()

	if vm.depth >= vm.cfg.MaxCallDepth {
		return nil, energy, errCallDepth
	}

	m := vm.mark()
	contract := vm.newContract(caller, addr, 0, TokenValue{}, energy)
	if err = vm.setCode(contract, addr); err == nil {
		ret, err = vm.run(contract, input, true)
	}
	leftOverEnergy, err = vm.settle(m, contract, err)
	return ret, leftOverEnergy, err
}

// Create deploys a contract on behalf of the transaction. The address derives from the
// transaction id and the creator.
func (vm *VM) Create(caller thor.Address, code []byte, energy, value uint64, token TokenValue, meta state.Contract) (ret []byte, addr thor.Address, leftOverEnergy uint64, err error) {
	addr = thor.CreateContractAddress(vm.TxID, caller)
	ret, leftOverEnergy, err = vm.create(caller, addr, code, energy, value, token, meta, "create")
	return ret, addr, leftOverEnergy, err
}

// createInternal deploys a contract for the CREATE instruction.
func (vm *VM) createInternal(caller thor.Address, code []byte, energy, value uint64) (ret []byte, addr thor.Address, leftOverEnergy uint64, err error) {
	addr = thor.CreateInternalContractAddress(vm.TxID, vm.nonce)
	vm.nonce++
	ret, leftOverEnergy, err = vm.create(caller, addr, code, energy, value, TokenValue{}, vm.internalMeta(), "create")
	return ret, addr, leftOverEnergy, err
}

// Create2 deploys a contract at an address derived from the caller, salt and code.
func (vm *VM) Create2(caller thor.Address, code []byte, energy, value uint64, salt thor.Bytes32) (ret []byte, addr thor.Address, leftOverEnergy uint64, err error) {
	addr = thor.Address(crypto.CreateAddress2(common.Address(caller), salt, crypto.Keccak256(code)))
	ret, leftOverEnergy, err = vm.create(caller, addr, code, energy, value, TokenValue{}, vm.internalMeta(), "create2")
	return ret, addr, leftOverEnergy, err
}

// internalMeta is the metadata of contracts created by contracts: they belong to the
// transaction origin and consume only the caller's resources.
func (vm *VM) internalMeta() state.Contract {
	return state.Contract{
		Origin:                     vm.Origin,
		ConsumeUserResourcePercent: thor.MaxConsumeUserResourcePercent,
	}
}

func (vm *VM) create(caller, addr thor.Address, code []byte, energy, value uint64, token TokenValue, meta state.Contract, note string) (ret []byte, leftOverEnergy uint64, err error) {
	itx := vm.recordInternalTx(caller, addr, note, value, token)
	defer func() { reject(itx, err) }()

	if vm.depth >= vm.cfg.MaxCallDepth {
		return nil, energy, errCallDepth
	}
	if err := vm.checkTransfer(caller, addr, value, token); err != nil {
		return nil, energy, err
	}
	existing, err := vm.state.GetContract(addr)
	if err != nil {
		return nil, energy, err
	}
	if existing != nil {
		return nil, 0, halt(IllegalOperation, "contract address collision %v", addr)
	}
	vm.captureStart(caller, addr, true, code, energy, value)

	m := vm.mark()
	contract := vm.newContract(caller, addr, value, token, energy)
	contract.SetCallCode(addr, thor.Bytes32{}, code)
	if _, err = vm.state.GetOrCreateAccount(addr); err == nil {
		if err = vm.transfer(caller, addr, value, token); err == nil {
			ret, err = vm.run(contract, nil, false)
		}
	}
	if err == nil {
		err = vm.deployCode(contract, addr, ret, meta)
	}
	leftOverEnergy, err = vm.settle(m, contract, err)
	vm.captureEnd(ret, energy, leftOverEnergy, err)
	return ret, leftOverEnergy, err
}

// deployCode charges the code deposit and stores the runtime code with its metadata.
func (vm *VM) deployCode(contract *Contract, addr thor.Address, code []byte, meta state.Contract) error {
	if vm.cfg.MaxCodeSize > 0 && len(code) > vm.cfg.MaxCodeSize {
		return halt(InvalidCode, "max code size exceeded")
	}
	if !contract.UseEnergy(uint64(len(code)) * thor.EnergyCreateData) {
		return halt(OutOfEnergy, "code deposit")
	}
	meta.CodeHash = vm.state.SetCode(code)
	meta.TxID = vm.TxID
	return errors.WithMessage(vm.state.SetContract(addr, &meta), "deploy")
}
