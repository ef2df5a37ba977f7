// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/txexec/log"
	"github.com/vechain/txexec/lvldb"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

var (
	alice    = thor.BytesToAddress([]byte("alice"))
	bob      = thor.BytesToAddress([]byte("bob"))
	contract = thor.BytesToAddress([]byte("contract"))
)

const testTokenID = thor.TokenIDStart + 1

func newTestVM(t *testing.T, cfg thor.Config) (*VM, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	ctx := Context{
		TxID:        thor.Keccak256([]byte("tx")),
		Origin:      alice,
		BlockNumber: 10,
		BlockTime:   30_000,
	}
	return New(ctx, st, cfg, Config{}), st
}

func deploy(t *testing.T, st *state.State, addr thor.Address, code string) {
	_, err := st.GetOrCreateAccount(addr)
	require.NoError(t, err)
	hash := st.SetCode(common.Hex2Bytes(code))
	require.NoError(t, st.SetContract(addr, &state.Contract{Origin: alice, CodeHash: hash}))
}

func requireHalt(t *testing.T, err error, kind HaltKind) {
	h, ok := AsHalt(err)
	require.True(t, ok, "expected halt %v, got %v", kind, err)
	assert.Equal(t, kind, h.Kind, h.Error())
}

func storageAt(t *testing.T, st *state.State, addr thor.Address, slot byte) thor.Bytes32 {
	v, err := st.GetStorage(addr, thor.Bytes32{31: slot})
	require.NoError(t, err)
	return v
}

func TestOutOfEnergy(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	// loop: sstore(0, 1); jump(0)
	deploy(t, st, contract, "5b600160005560005600")

	_, leftOver, err := vm.Call(alice, contract, nil, 10_000, 0, TokenValue{})
	requireHalt(t, err, OutOfEnergy)
	assert.Zero(t, leftOver)
	assert.True(t, storageAt(t, st, contract, 0).IsZero())
}

func TestOutOfTime(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.MaxInstructionSteps = 300
	vm, st := newTestVM(t, cfg)
	deploy(t, st, contract, "5b600056")

	_, leftOver, err := vm.Call(alice, contract, nil, 1_000_000, 0, TokenValue{})
	requireHalt(t, err, OutOfTime)
	assert.Zero(t, leftOver)
	assert.Equal(t, uint64(300), vm.Steps())
	assert.Equal(t, tx.ResultOutOfTime, OutOfTime.ResultCode())
}

func TestRevertKeepsEnergy(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	// sstore(0, 1); revert(0, 0)
	deploy(t, st, contract, "600160005560006000fd")

	_, leftOver, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	requireHalt(t, err, Reverted)
	assert.Equal(t, uint64(100_000-3-3-thor.EnergySstoreSet-3-3), leftOver)
	assert.True(t, storageAt(t, st, contract, 0).IsZero())
}

func TestStrictMath(t *testing.T) {
	code := "600060010400" // 1 / 0

	vm, st := newTestVM(t, thor.DefaultConfig())
	deploy(t, st, contract, code)
	_, _, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	assert.NoError(t, err)

	cfg := thor.DefaultConfig()
	cfg.AllowStrictMath = true
	vm, st = newTestVM(t, cfg)
	deploy(t, st, contract, code)
	_, leftOver, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	requireHalt(t, err, IllegalOperation)
	assert.Zero(t, leftOver)
}

func TestIllegalOpcodes(t *testing.T) {
	tests := []struct {
		name string
		code string
		kind HaltKind
	}{
		{"invalid", "fe", IllegalOperation},
		{"undefined", "ef", IllegalOperation},
		{"shl before constantinople", "600160011b00", IllegalOperation},
		{"token op before trc10", "d200", IllegalOperation},
		{"bad jump", "600356", BadJumpDestination},
		{"stack underflow", "01", StackUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, st := newTestVM(t, thor.DefaultConfig())
			deploy(t, st, contract, tt.code)
			_, leftOver, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
			requireHalt(t, err, tt.kind)
			assert.Zero(t, leftOver)
		})
	}

	cfg := thor.DefaultConfig()
	cfg.AllowTvmConstantinople = true
	vm, st := newTestVM(t, cfg)
	deploy(t, st, contract, "600160011b00")
	_, _, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	assert.NoError(t, err)
}

func TestSelfTransfer(t *testing.T) {
	// call(0, address(), 100, 0, 0, 0, 0)
	code := "60006000600060006064306000f100"

	setup := func(cfg thor.Config) (*VM, *state.State) {
		vm, st := newTestVM(t, cfg)
		deploy(t, st, contract, code)
		require.NoError(t, st.AddBalance(contract, 1000))
		return vm, st
	}

	cfg := thor.DefaultConfig()
	cfg.AllowTvmConstantinople = true
	vm, st := setup(cfg)
	_, leftOver, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	requireHalt(t, err, TransferFailed)
	// pushes and the call cost are spent, the unused stipend comes back
	assert.Equal(t, uint64(100_000-20-thor.EnergyCall-thor.EnergyCallValue+thor.EnergyCallStipend), leftOver)
	balance, err := st.GetBalance(contract)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	vm, st = setup(thor.DefaultConfig())
	_, _, err = vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	assert.NoError(t, err)
	// the nested frame runs out of energy on its own call
	require.Len(t, vm.InternalTxs(), 1)
	assert.True(t, vm.InternalTxs()[0].Rejected)
	balance, err = st.GetBalance(contract)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)
}

func TestNestedTransferFailure(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AllowTvmConstantinople = true
	vm, st := newTestVM(t, cfg)

	// the callee sends 100 to itself
	callee := thor.BytesToAddress([]byte("callee"))
	deploy(t, st, callee, "60006000600060006064306000f100")
	require.NoError(t, st.AddBalance(callee, 1000))
	// call(gas(), callee, 0, 0, 0, 0, 0); pop; sstore(0, 1)
	deploy(t, st, contract, "6000600060006000600073"+common.Bytes2Hex(callee[:])+"5af150600160005500")

	_, leftOver, err := vm.Call(alice, contract, nil, 200_000, 0, TokenValue{})
	require.NoError(t, err)
	assert.NotZero(t, leftOver)
	assert.Equal(t, thor.Bytes32{31: 1}, storageAt(t, st, contract, 0), "the caller keeps running")

	balance, err := st.GetBalance(callee)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	itxs := vm.InternalTxs()
	require.Len(t, itxs, 2)
	assert.Equal(t, callee, itxs[0].To)
	assert.Equal(t, callee, itxs[1].Caller)
	assert.True(t, itxs[0].Rejected)
	assert.True(t, itxs[1].Rejected)
}

func TestCallDepth(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.MaxCallDepth = 4
	vm, st := newTestVM(t, cfg)
	// call(gas(), address(), 0, 0, 0, 0, 0)
	deploy(t, st, contract, "60006000600060006000305af100")

	_, leftOver, err := vm.Call(alice, contract, nil, 1_000_000, 0, TokenValue{})
	assert.NoError(t, err)
	assert.NotZero(t, leftOver)

	itxs := vm.InternalTxs()
	require.Len(t, itxs, 4)
	for i, itx := range itxs {
		assert.Equal(t, contract, itx.Caller)
		assert.Equal(t, "call", itx.Note)
		assert.Equal(t, i == 3, itx.Rejected, "internal tx %d", i)
	}
}

func TestSstoreRefund(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	deploy(t, st, contract, "600060005500")
	require.NoError(t, st.SetStorage(contract, thor.Bytes32{}, thor.Bytes32{31: 1}))

	_, leftOver, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000-3-3-thor.EnergySstoreReset), leftOver)
	assert.Equal(t, thor.EnergySstoreRefund, vm.Refund())
	assert.True(t, storageAt(t, st, contract, 0).IsZero())

	// the refund of a reverted frame is dropped
	vm, st = newTestVM(t, thor.DefaultConfig())
	deploy(t, st, contract, "600060005560006000fd")
	require.NoError(t, st.SetStorage(contract, thor.Bytes32{}, thor.Bytes32{31: 1}))
	_, _, err = vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	requireHalt(t, err, Reverted)
	assert.Zero(t, vm.Refund())
	assert.Equal(t, thor.Bytes32{31: 1}, storageAt(t, st, contract, 0))
}

func TestCreate(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	// the init code returns the runtime code: mstore(0, 42); return(0, 32)
	initCode := common.Hex2Bytes("69602a60005260206000f3600052600a6016f3")

	meta := state.Contract{Origin: alice, Name: "answer", ConsumeUserResourcePercent: 100}
	ret, addr, leftOver, err := vm.Create(alice, initCode, 1_000_000, 0, TokenValue{}, meta)
	require.NoError(t, err)
	assert.Equal(t, thor.CreateContractAddress(vm.TxID, alice), addr)
	assert.Len(t, ret, 10)
	assert.Less(t, leftOver, uint64(1_000_000-10*thor.EnergyCreateData))

	deployed, err := st.GetContract(addr)
	require.NoError(t, err)
	require.NotNil(t, deployed)
	assert.Equal(t, "answer", deployed.Name)
	assert.Equal(t, vm.TxID, deployed.TxID)
	assert.Equal(t, thor.Keccak256(ret), deployed.CodeHash)

	out, _, err := vm.Call(bob, addr, nil, 100_000, 0, TokenValue{})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), new(uint256.Int).SetBytes(out).Uint64())

	// a second creation at the same address collides
	_, _, leftOver, err = vm.Create(alice, initCode, 1_000_000, 0, TokenValue{}, meta)
	requireHalt(t, err, IllegalOperation)
	assert.Zero(t, leftOver)
}

func TestCreateCodeSize(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.MaxCodeSize = 4
	vm, st := newTestVM(t, cfg)
	initCode := common.Hex2Bytes("69602a60005260206000f3600052600a6016f3")

	_, addr, _, err := vm.Create(alice, initCode, 1_000_000, 0, TokenValue{}, state.Contract{})
	requireHalt(t, err, InvalidCode)
	deployed, err := st.GetContract(addr)
	require.NoError(t, err)
	assert.Nil(t, deployed)
}

func TestInternalCreate(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	// mstore the init code at 0 and create(0, 13, 19)
	deploy(t, st, contract, "7269602a60005260206000f3600052600a6016f36000526013600d6000f000")

	_, _, err := vm.Call(alice, contract, nil, 1_000_000, 0, TokenValue{})
	require.NoError(t, err)

	created := thor.CreateInternalContractAddress(vm.TxID, 0)
	meta, err := st.GetContract(created)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, alice, meta.Origin)

	require.Len(t, vm.InternalTxs(), 1)
	assert.Equal(t, "create", vm.InternalTxs()[0].Note)
	assert.Equal(t, created, vm.InternalTxs()[0].To)
}

func TestPrecompiled(t *testing.T) {
	vm, _ := newTestVM(t, thor.DefaultConfig())

	identity := thor.BytesToAddress([]byte{0x04})
	ret, leftOver, err := vm.Call(alice, identity, []byte("hello"), 1000, 0, TokenValue{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), ret)
	assert.Equal(t, uint64(1000-15-3), leftOver)

	reserved := thor.BytesToAddress([]byte{0x09})
	_, leftOver, err = vm.Call(alice, reserved, nil, 1000, 0, TokenValue{})
	requireHalt(t, err, PrecompiledContract)
	assert.Zero(t, leftOver)

	_, _, err = vm.Call(alice, thor.BytesToAddress([]byte{0x01, 0x00, 0x00, 0x01}), nil, 1000, 0, TokenValue{})
	requireHalt(t, err, PrecompiledContract)
}

func TestLogs(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	// log1(0, 0, topic 7)
	deploy(t, st, contract, "600760006000a100")
	_, _, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	require.NoError(t, err)
	require.Len(t, vm.Logs(), 1)
	assert.Equal(t, contract, vm.Logs()[0].Address)
	assert.Equal(t, []thor.Bytes32{{31: 7}}, vm.Logs()[0].Topics)

	vm, st = newTestVM(t, thor.DefaultConfig())
	deploy(t, st, contract, "600760006000a160006000fd")
	_, _, err = vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	requireHalt(t, err, Reverted)
	assert.Empty(t, vm.Logs())
}

func TestStaticCallWriteProtection(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	deploy(t, st, contract, "600160005500")

	_, leftOver, err := vm.StaticCall(alice, contract, nil, 100_000)
	requireHalt(t, err, WriteProtection)
	assert.Zero(t, leftOver)
	assert.Equal(t, tx.ResultIllegalOperation, WriteProtection.ResultCode())
}

func TestMemoryLimit(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.MaxMemoryBytes = 1024
	vm, st := newTestVM(t, cfg)
	// mstore(0x0fffff, 0)
	deploy(t, st, contract, "6000620fffff5200")

	_, _, err := vm.Call(alice, contract, nil, 10_000_000, 0, TokenValue{})
	requireHalt(t, err, OutOfMemory)
}

func TestTransfers(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())

	_, leftOver, err := vm.Call(bob, alice, nil, 1000, 5, TokenValue{})
	assert.Equal(t, errInsufficientBalance, err)
	assert.Equal(t, uint64(1000), leftOver)

	require.NoError(t, st.AddBalance(alice, 100))
	_, _, err = vm.Call(alice, bob, nil, 1000, 40, TokenValue{})
	require.NoError(t, err)
	balance, err := st.GetBalance(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), balance)

	_, _, err = vm.Call(alice, bob, nil, 1000, 0, TokenValue{ID: 5, Amount: 1})
	assert.Equal(t, errNoAsset, err)

	require.NoError(t, st.SetAsset(&state.Asset{ID: testTokenID, Name: "token"}))
	acc, err := st.GetAccount(alice)
	require.NoError(t, err)
	acc.SetTokenBalance(testTokenID, 50)
	require.NoError(t, st.SetAccount(alice, acc))

	_, _, err = vm.Call(alice, bob, nil, 1000, 0, TokenValue{ID: testTokenID, Amount: 60})
	assert.Equal(t, errInsufficientToken, err)
	_, _, err = vm.Call(alice, bob, nil, 1000, 0, TokenValue{ID: testTokenID, Amount: 20})
	require.NoError(t, err)
	acc, err = st.GetAccount(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), acc.TokenBalance(testTokenID))
}

func TestCallTokenValue(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AllowTvmTransferTrc10 = true
	vm, st := newTestVM(t, cfg)
	// mstore(0, calltokenvalue()); return(0, 32)
	deploy(t, st, contract, "d260005260206000f3")
	require.NoError(t, st.SetAsset(&state.Asset{ID: testTokenID, Name: "token"}))
	acc, err := st.GetOrCreateAccount(alice)
	require.NoError(t, err)
	acc.SetTokenBalance(testTokenID, 50)
	require.NoError(t, st.SetAccount(alice, acc))

	out, _, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{ID: testTokenID, Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, uint64(20), new(uint256.Int).SetBytes(out).Uint64())
}

func TestSelfdestruct(t *testing.T) {
	vm, st := newTestVM(t, thor.DefaultConfig())
	// selfdestruct(caller())
	deploy(t, st, contract, "33ff")
	require.NoError(t, st.AddBalance(contract, 500))
	require.NoError(t, st.AddBalance(alice, 1))

	_, leftOver, err := vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000-2-thor.EnergySuicide), leftOver)

	balance, err := st.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(501), balance)
	meta, err := st.GetContract(contract)
	require.NoError(t, err)
	assert.Nil(t, meta)

	require.Len(t, vm.InternalTxs(), 1)
	assert.Equal(t, "suicide", vm.InternalTxs()[0].Note)
	assert.Equal(t, uint64(500), vm.InternalTxs()[0].Value)
}

func TestStepLogger(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st := state.New(db)
	deploy(t, st, contract, "600760006000a100")

	tracer := NewStepLogger(log.WithContext("pkg", "vm-test"))
	vm := New(Context{}, st, thor.DefaultConfig(), Config{Tracer: tracer})
	_, _, err = vm.Call(alice, contract, nil, 100_000, 0, TokenValue{})
	require.NoError(t, err)
	assert.Equal(t, 5, tracer.Steps)
	assert.Equal(t, uint64(5), vm.Steps())
}
