// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/txexec/handler"
	"github.com/vechain/txexec/lvldb"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

const now = 1_000 * thor.DayMillis

var (
	aliceKey = mustKey("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	alice    = thor.Address(crypto.PubkeyToAddress(aliceKey.PublicKey))
	bob      = thor.BytesToAddress([]byte("bob"))
	carol    = thor.BytesToAddress([]byte("carol"))
	target   = thor.BytesToAddress([]byte("contract"))
)

func mustKey(hex string) *ecdsa.PrivateKey {
	key, err := crypto.HexToECDSA(hex)
	if err != nil {
		panic(err)
	}
	return key
}

func newRuntime(t *testing.T, cfg thor.Config) (*Runtime, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	st.SetDynamic(state.LatestBlockTimestamp, now)
	return New(st, cfg, carol, 100, now, nil), db
}

func fund(t *testing.T, rt *Runtime, addr thor.Address, amount uint64) {
	require.NoError(t, rt.State().AddBalance(addr, amount))
}

func balance(t *testing.T, rt *Runtime, addr thor.Address) uint64 {
	b, err := rt.State().GetBalance(addr)
	require.NoError(t, err)
	return b
}

func deploy(t *testing.T, rt *Runtime, addr thor.Address, code string) {
	st := rt.State()
	_, err := st.GetOrCreateAccount(addr)
	require.NoError(t, err)
	hash := st.SetCode(common.Hex2Bytes(code))
	require.NoError(t, st.SetContract(addr, &state.Contract{
		Origin:                     carol,
		CodeHash:                   hash,
		ConsumeUserResourcePercent: thor.MaxConsumeUserResourcePercent,
	}))
}

func newTx(p tx.Payload, feeLimit uint64) *tx.Transaction {
	trx := tx.NewBuilder().
		Contract(p).
		BlockRef(tx.NewBlockRef(99)).
		Expiration(now + 60_000).
		Timestamp(now - 3000).
		FeeLimit(feeLimit).
		Build()
	return tx.MustSign(trx, aliceKey)
}

func trigger(contract thor.Address, feeLimit uint64) *tx.Transaction {
	return newTx(&tx.TriggerSmartContract{Owner: alice, Contract: contract}, feeLimit)
}

func storageAt(t *testing.T, rt *Runtime, addr thor.Address, slot byte) thor.Bytes32 {
	v, err := rt.State().GetStorage(addr, thor.Bytes32{31: slot})
	require.NoError(t, err)
	return v
}

func TestTransfer(t *testing.T) {
	cfg := thor.DefaultConfig()
	rt, db := newRuntime(t, cfg)
	fund(t, rt, alice, 10*thor.TrxPrecision)

	out, err := rt.ExecuteTransaction(newTx(&tx.Transfer{Owner: alice, To: bob, Amount: 100}, 0))
	require.NoError(t, err)
	r := out.Receipt
	assert.Equal(t, tx.ResultSuccess, r.Result)
	assert.Nil(t, out.VMErr)

	// bob is a new account, alice has no frozen bandwidth to cover it
	assert.Equal(t, cfg.CreateNewAccountFee, r.NetFee)
	assert.Equal(t, cfg.CreateNewAccountFee, r.Fee())
	assert.Equal(t, uint64(100), balance(t, rt, bob))
	assert.Equal(t, 10*thor.TrxPrecision-100-cfg.CreateNewAccountFee, balance(t, rt, alice))
	assert.NotEmpty(t, out.Changeset)

	// the second transfer rides on the free allowance
	out, err = rt.ExecuteTransaction(newTx(&tx.Transfer{Owner: alice, To: bob, Amount: 1}, 0))
	require.NoError(t, err)
	assert.Zero(t, out.Receipt.NetFee)
	assert.NotZero(t, out.Receipt.FreeNetUsage)

	require.NoError(t, rt.Commit(db))
	persisted := state.New(db)
	got, err := persisted.GetBalance(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), got)
}

func TestAssetIssue(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AssetIssueFee = 10
	rt, _ := newRuntime(t, cfg)
	fund(t, rt, alice, 10)

	issue := &tx.AssetIssue{
		Owner:       alice,
		Name:        "X",
		TotalSupply: 10000,
		TrxNum:      10000,
		Num:         100000,
		StartTime:   now + 1000,
		EndTime:     now + thor.DayMillis,
		URL:         "https://x.example",
	}
	out, err := rt.ExecuteTransaction(newTx(issue, 0))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), out.Receipt.HandlerFee)
	assert.Equal(t, uint64(10), out.Receipt.Fee())
	assert.Zero(t, balance(t, rt, alice))

	id, ok, err := rt.State().GetAssetIDByName("X")
	require.NoError(t, err)
	require.True(t, ok)
	acc, err := rt.State().GetAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), acc.TokenBalance(id))
}

func TestRejectedTxLeavesStateUntouched(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AssetIssueFee = 10
	rt, _ := newRuntime(t, cfg)
	fund(t, rt, alice, 10)
	rev := rt.State().NewCheckpoint()

	issue := &tx.AssetIssue{
		Owner:     alice,
		Name:      "X",
		TrxNum:    10000,
		Num:       100000,
		StartTime: now + 1000,
		EndTime:   now + thor.DayMillis,
		URL:       "https://x.example",
	}
	_, err := rt.ExecuteTransaction(newTx(issue, 0))
	var verr *handler.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "TotalSupply must greater than 0!", verr.Reason)

	assert.Empty(t, rt.State().Changes(rev))
	assert.Equal(t, rev+1, rt.State().Depth())
	assert.Equal(t, uint64(10), balance(t, rt, alice))
}

func TestInsufficientBandwidth(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.FreeNetLimit = 0
	rt, _ := newRuntime(t, cfg)
	fund(t, rt, alice, 200)
	fund(t, rt, bob, 1)

	_, err := rt.ExecuteTransaction(newTx(&tx.Transfer{Owner: alice, To: bob, Amount: 1}, 0))
	assert.Error(t, err)
	assert.Equal(t, uint64(200), balance(t, rt, alice))
	assert.Equal(t, uint64(1), balance(t, rt, bob))
}

func TestInfiniteLoop(t *testing.T) {
	tests := []struct {
		name   string
		steps  uint64
		code   string
		result tx.ResultCode
	}{
		// slot0 += 1 forever
		{"out of energy", 5_000_000, "5b600054600101600055600056", tx.ResultOutOfEnergy},
		// jump forever
		{"out of time", 100, "5b600056", tx.ResultOutOfTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := thor.DefaultConfig()
			cfg.MaxInstructionSteps = tt.steps
			rt, _ := newRuntime(t, cfg)
			fund(t, rt, alice, 100*thor.TrxPrecision)
			deploy(t, rt, target, tt.code)

			feeLimit := 100_000 * cfg.EnergyFee
			out, err := rt.ExecuteTransaction(trigger(target, feeLimit))
			require.NoError(t, err)
			r := out.Receipt
			assert.Equal(t, tt.result, r.Result)
			assert.NotNil(t, out.VMErr)
			assert.Equal(t, feeLimit/cfg.EnergyFee, r.EnergyUsageTotal)
			assert.Equal(t, feeLimit, r.EnergyFee)
			assert.Equal(t, thor.Bytes32{}, storageAt(t, rt, target, 0))
			assert.Equal(t, 100*thor.TrxPrecision-r.Fee(), balance(t, rt, alice))
		})
	}
}

func TestFeeCap(t *testing.T) {
	cfg := thor.DefaultConfig()
	for _, feeLimit := range []uint64{0, 1, 99, 150_000, 1_000_000, 7_777_777} {
		rt, _ := newRuntime(t, cfg)
		fund(t, rt, alice, 100*thor.TrxPrecision)
		deploy(t, rt, target, "5b600054600101600055600056")

		out, err := rt.ExecuteTransaction(trigger(target, feeLimit))
		require.NoError(t, err)
		assert.LessOrEqual(t, out.Receipt.EnergyFee, feeLimit, "fee limit %d", feeLimit)
	}
}

func TestSelfTransferFails(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AllowTvmConstantinople = true
	rt, _ := newRuntime(t, cfg)
	fund(t, rt, alice, 100*thor.TrxPrecision)
	// call(gas, address, 1, 0, 0, 0, 0) with a zero balance
	deploy(t, rt, target, "60006000600060006001305af100")

	limit := uint64(100_000)
	out, err := rt.ExecuteTransaction(trigger(target, limit*cfg.EnergyFee))
	require.NoError(t, err)
	r := out.Receipt
	assert.Equal(t, tx.ResultTransferFailed, r.Result)
	assert.NotZero(t, r.EnergyUsageTotal)
	assert.Less(t, r.EnergyUsageTotal, limit/4)
	assert.Zero(t, balance(t, rt, target))
	assert.Equal(t, 100*thor.TrxPrecision-r.Fee(), balance(t, rt, alice))
}

func TestRevertDiscardsWrites(t *testing.T) {
	cfg := thor.DefaultConfig()
	rt, _ := newRuntime(t, cfg)
	fund(t, rt, alice, 100*thor.TrxPrecision)
	// sstore(0, 1) then revert(0, 0)
	deploy(t, rt, target, "600160005560006000fd")

	limit := uint64(100_000)
	out, err := rt.ExecuteTransaction(trigger(target, limit*cfg.EnergyFee))
	require.NoError(t, err)
	r := out.Receipt
	assert.Equal(t, tx.ResultRevert, r.Result)
	assert.Less(t, r.EnergyUsageTotal, limit)
	assert.Equal(t, r.EnergyUsageTotal*cfg.EnergyFee, r.EnergyFee)
	assert.Equal(t, thor.Bytes32{}, storageAt(t, rt, target, 0))
}

func TestCreateAndCall(t *testing.T) {
	cfg := thor.DefaultConfig()
	rt, _ := newRuntime(t, cfg)
	fund(t, rt, alice, 100*thor.TrxPrecision)

	// deploys code returning 42
	create := newTx(&tx.CreateSmartContract{
		Owner:                      alice,
		Name:                       "answer",
		Bytecode:                   common.Hex2Bytes("69602a60005260206000f3600052600a6016f3"),
		ConsumeUserResourcePercent: 50,
		OriginEnergyLimit:          10_000,
	}, 10*thor.TrxPrecision)
	out, err := rt.ExecuteTransaction(create)
	require.NoError(t, err)
	r := out.Receipt
	require.Equal(t, tx.ResultSuccess, r.Result, r.RuntimeError)
	addr := thor.CreateContractAddress(create.ID(), alice)
	assert.Equal(t, addr, r.ContractAddress)
	assert.NotZero(t, r.EnergyUsageTotal)

	meta, err := rt.State().GetContract(addr)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, alice, meta.Origin)
	assert.Equal(t, "answer", meta.Name)
	assert.Equal(t, uint64(50), meta.ConsumeUserResourcePercent)
	assert.Equal(t, create.ID(), meta.TxID)

	want := thor.Bytes32{31: 42}
	out, err = rt.ExecuteTransaction(trigger(addr, 10*thor.TrxPrecision))
	require.NoError(t, err)
	assert.Equal(t, want[:], out.Receipt.ReturnValue)

	depth := rt.State().Depth()
	before := balance(t, rt, alice)
	simulated, err := rt.Simulate(&tx.TriggerSmartContract{Owner: alice, Contract: addr})
	require.NoError(t, err)
	assert.Equal(t, tx.ResultSuccess, simulated.Result)
	assert.Equal(t, want[:], simulated.ReturnValue)
	assert.NotZero(t, simulated.EnergyUsageTotal)
	assert.Equal(t, depth, rt.State().Depth())
	assert.Equal(t, before, balance(t, rt, alice))
}

func TestDeterminism(t *testing.T) {
	cfg := thor.DefaultConfig()
	trx := newTx(&tx.CreateSmartContract{
		Owner:                      alice,
		Bytecode:                   common.Hex2Bytes("69602a60005260206000f3600052600a6016f3"),
		ConsumeUserResourcePercent: 100,
		OriginEnergyLimit:          1,
	}, thor.TrxPrecision)

	run := func() *Output {
		rt, _ := newRuntime(t, cfg)
		fund(t, rt, alice, 100*thor.TrxPrecision)
		out, err := rt.ExecuteTransaction(trx)
		require.NoError(t, err)
		return out
	}
	a, b := run(), run()
	assert.Equal(t, a.Receipt, b.Receipt)
	assert.Equal(t, a.Changeset, b.Changeset)
}
