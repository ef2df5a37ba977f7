// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package handler

import (
	"math"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/txexec/lvldb"
	"github.com/vechain/txexec/resource"
	"github.com/vechain/txexec/state"
	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
	carol = thor.BytesToAddress([]byte("carol"))
)

const now = 1_000 * thor.DayMillis

func newContext(t *testing.T, cfg thor.Config) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	st.SetDynamic(state.LatestBlockTimestamp, now)
	return &Context{
		State:      st,
		Config:     cfg,
		Accountant: resource.New(st, cfg, now),
		BlockTime:  now,
	}
}

func fund(t *testing.T, ctx *Context, addr thor.Address, amount uint64) {
	require.NoError(t, ctx.State.AddBalance(addr, amount))
}

func account(t *testing.T, ctx *Context, addr thor.Address) *state.Account {
	acc, err := ctx.State.GetAccount(addr)
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc
}

func apply(ctx *Context, p tx.Payload) error {
	c := &tx.Contract{Payload: p}
	if err := Validate(ctx, c); err != nil {
		return err
	}
	return Execute(ctx, c)
}

func assertInvalid(t *testing.T, err error, reason string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want validation error, got %v", err)
	assert.Equal(t, reason, verr.Reason)
}

func issue(totalSupply uint64) *tx.AssetIssue {
	return &tx.AssetIssue{
		Owner:       alice,
		Name:        "X",
		TotalSupply: totalSupply,
		TrxNum:      10000,
		Num:         100000,
		StartTime:   now + 1000,
		EndTime:     now + thor.DayMillis,
		URL:         "https://x.example",
	}
}

func TestAssetIssue(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AssetIssueFee = 10
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, 10)

	c := &tx.Contract{Payload: issue(10000)}
	require.NoError(t, Validate(ctx, c))
	require.NoError(t, Execute(ctx, c))
	assert.Equal(t, uint64(10), Fee(ctx, c))

	acc := account(t, ctx, alice)
	assert.Equal(t, uint64(0), acc.Balance)
	id, ok, err := ctx.State.GetAssetIDByName("X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, thor.TokenIDStart+1, id)
	assert.Equal(t, id, acc.IssuedAssetID)
	assert.Equal(t, uint64(10000), acc.TokenBalance(id))

	asset, err := ctx.State.GetAsset(id)
	require.NoError(t, err)
	assert.Equal(t, alice, asset.Owner)
	assert.Equal(t, uint64(10000), asset.TotalSupply)

	burned, err := ctx.State.GetDynamic(state.BurnedTotal)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), burned)

	// the name is taken, and an account issues once
	assertInvalid(t, Validate(ctx, c), "Token exists")
}

func TestAssetIssueZeroSupply(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AssetIssueFee = 10
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, 10)
	rev := ctx.State.NewCheckpoint()

	err := apply(ctx, issue(0))
	assertInvalid(t, err, "TotalSupply must greater than 0!")

	assert.Empty(t, ctx.State.Changes(rev))
	assert.Equal(t, uint64(10), account(t, ctx, alice).Balance)
	_, ok, err := ctx.State.GetAssetIDByName("X")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssetIssueValidation(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AssetIssueFee = 10
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, 10)

	tests := []struct {
		name   string
		modify func(p *tx.AssetIssue)
		reason string
	}{
		{"bad name", func(p *tx.AssetIssue) { p.Name = "a b" }, "Invalid assetName"},
		{"no url", func(p *tx.AssetIssue) { p.URL = "" }, "Invalid url"},
		{"past start", func(p *tx.AssetIssue) { p.StartTime = now }, "Start time should be greater than HeadBlockTime"},
		{"end before start", func(p *tx.AssetIssue) { p.EndTime = p.StartTime }, "End time should be greater than start time"},
		{"zero trx num", func(p *tx.AssetIssue) { p.TrxNum = 0 }, "TrxNum must greater than 0!"},
		{"frozen too large", func(p *tx.AssetIssue) {
			p.FrozenSupply = []tx.FrozenSupply{{Amount: p.TotalSupply + 1, Days: 1}}
		}, "Frozen supply cannot exceed total supply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := issue(10000)
			tt.modify(p)
			assertInvalid(t, Validate(ctx, &tx.Contract{Payload: p}), tt.reason)
		})
	}
}

func TestTransferAssetIdentity(t *testing.T) {
	for _, same := range []bool{false, true} {
		t.Run(strconv.FormatBool(same), func(t *testing.T) {
			cfg := thor.DefaultConfig()
			cfg.AssetIssueFee = 0
			cfg.AllowSameTokenName = same
			ctx := newContext(t, cfg)
			fund(t, ctx, alice, 1)
			require.NoError(t, apply(ctx, issue(100)))

			asset := "X"
			if same {
				asset = strconv.FormatUint(thor.TokenIDStart+1, 10)
				assertInvalid(t, apply(ctx, &tx.TransferAsset{Owner: alice, To: bob, Asset: "X", Amount: 1}), "No asset!")
			}
			require.NoError(t, apply(ctx, &tx.TransferAsset{Owner: alice, To: bob, Asset: asset, Amount: 40}))
			assert.Equal(t, uint64(40), account(t, ctx, bob).TokenBalance(thor.TokenIDStart+1))
			assert.Equal(t, uint64(60), account(t, ctx, alice).TokenBalance(thor.TokenIDStart+1))
		})
	}
}

func TestExecutionError(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AssetIssueFee = 0
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, 1)
	require.NoError(t, apply(ctx, issue(100)))

	c := &tx.Contract{Payload: &tx.TransferAsset{Owner: alice, To: bob, Asset: "X", Amount: 100}}
	require.NoError(t, Validate(ctx, c))

	// state changed between validation and execution
	acc := account(t, ctx, alice)
	acc.SetTokenBalance(thor.TokenIDStart+1, 1)
	require.NoError(t, ctx.State.SetAccount(alice, acc))

	err := Execute(ctx, c)
	var eerr *ExecutionError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, tx.TransferAssetType, eerr.Type)
	assert.Equal(t, state.ErrInsufficientToken, eerr.Cause())

	assert.Error(t, Execute(ctx, &tx.Contract{Payload: &tx.TriggerSmartContract{Owner: alice}}))
}

func TestTransfer(t *testing.T) {
	ctx := newContext(t, thor.DefaultConfig())
	fund(t, ctx, alice, 100)

	c := &tx.Contract{Payload: &tx.Transfer{Owner: alice, To: bob, Amount: 30}}
	creates, err := CreatesAccount(ctx, c)
	require.NoError(t, err)
	assert.True(t, creates)

	require.NoError(t, apply(ctx, c.Payload))
	assert.Equal(t, uint64(70), account(t, ctx, alice).Balance)
	assert.Equal(t, uint64(30), account(t, ctx, bob).Balance)
	assert.Equal(t, now, account(t, ctx, bob).CreateTime)

	creates, err = CreatesAccount(ctx, c)
	require.NoError(t, err)
	assert.False(t, creates)

	assertInvalid(t, apply(ctx, &tx.Transfer{Owner: alice, To: alice, Amount: 1}), "Cannot transfer TRX to yourself.")
	assertInvalid(t, apply(ctx, &tx.Transfer{Owner: alice, To: bob, Amount: 71}),
		"Validate TransferContract error, balance is not sufficient.")
	assertInvalid(t, apply(ctx, &tx.Transfer{Owner: carol, To: bob, Amount: 1}),
		"Validate TransferContract error, no OwnerAccount["+carol.String()+"].")
}

func TestAccountCreateAndUpdate(t *testing.T) {
	cfg := thor.DefaultConfig()
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, cfg.CreateAccountFee)

	require.NoError(t, apply(ctx, &tx.AccountCreate{Owner: alice, Account: bob}))
	assert.Equal(t, uint64(0), account(t, ctx, alice).Balance)
	assertInvalid(t, apply(ctx, &tx.AccountCreate{Owner: alice, Account: carol}),
		"Validate CreateAccountActuator error, insufficient fee.")

	require.NoError(t, apply(ctx, &tx.AccountUpdate{Owner: bob, Name: "bob"}))
	assert.Equal(t, "bob", account(t, ctx, bob).Name)
	assertInvalid(t, apply(ctx, &tx.AccountUpdate{Owner: bob, Name: "robert"}), "This account name is already existed")
}

func TestResourceDelegation(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AllowDelegateResource = true
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, 2000*thor.TrxPrecision)
	fund(t, ctx, bob, 1)

	require.NoError(t, apply(ctx, &tx.FreezeBalanceV2{Owner: alice, Amount: 1000 * thor.TrxPrecision, Resource: thor.Bandwidth}))
	total, err := ctx.State.GetDynamic(state.TotalNetWeight)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), total)

	limits := func() (uint64, uint64) {
		a, err := ctx.Accountant.Limit(account(t, ctx, alice), thor.Bandwidth)
		require.NoError(t, err)
		b, err := ctx.Accountant.Limit(account(t, ctx, bob), thor.Bandwidth)
		require.NoError(t, err)
		return a, b
	}
	a0, b0 := limits()
	assert.Equal(t, cfg.TotalNetLimit, a0)
	assert.Equal(t, uint64(0), b0)

	require.NoError(t, apply(ctx, &tx.DelegateResource{
		Owner: alice, Receiver: bob, Resource: thor.Bandwidth, Amount: 400 * thor.TrxPrecision,
	}))
	a1, b1 := limits()
	assert.Equal(t, b1-b0, a0-a1)
	assert.Equal(t, cfg.TotalNetLimit*400/1000, b1)

	// the delegated part is locked
	assertInvalid(t, apply(ctx, &tx.UnfreezeBalanceV2{Owner: alice, Amount: 601 * thor.TrxPrecision, Resource: thor.Bandwidth}),
		"Invalid unfreeze_balance, [601000000] is greater than frozen balance excluding delegated [600000000]")

	require.NoError(t, apply(ctx, &tx.UnDelegateResource{
		Owner: alice, Receiver: bob, Resource: thor.Bandwidth, Amount: 400 * thor.TrxPrecision,
	}))
	d, err := ctx.State.GetDelegation(alice, bob, true)
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())
	assert.Equal(t, uint64(0), account(t, ctx, bob).Acquired[thor.Bandwidth])

	require.NoError(t, apply(ctx, &tx.UnfreezeBalanceV2{Owner: alice, Amount: 1000 * thor.TrxPrecision, Resource: thor.Bandwidth}))
	acc := account(t, ctx, alice)
	assert.Equal(t, uint64(0), acc.Staked[thor.Bandwidth])
	require.Len(t, acc.Unstakes, 1)
	assert.Equal(t, now+cfg.UnfreezeDelayDays*thor.DayMillis, acc.Unstakes[0].ExpireTime)

	assertInvalid(t, apply(ctx, &tx.WithdrawExpireUnfreeze{Owner: alice}), "no unFreeze balance to withdraw ")

	later := &Context{State: ctx.State, Config: cfg, Accountant: ctx.Accountant, BlockTime: acc.Unstakes[0].ExpireTime}
	require.NoError(t, apply(later, &tx.WithdrawExpireUnfreeze{Owner: alice}))
	assert.Equal(t, 2000*thor.TrxPrecision, account(t, ctx, alice).Balance)
}

func TestLegacyFreeze(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AllowDelegateResource = true
	ctx := newContext(t, cfg)
	fund(t, ctx, alice, 10*thor.TrxPrecision)
	fund(t, ctx, bob, 1)

	assertInvalid(t, apply(ctx, &tx.FreezeBalance{Owner: alice, Amount: thor.TrxPrecision, Duration: 1, Resource: thor.Energy}),
		"frozenDuration must be less than 3 days and more than 3 days")
	require.NoError(t, apply(ctx, &tx.FreezeBalance{Owner: alice, Amount: 4 * thor.TrxPrecision, Duration: 3, Resource: thor.Energy}))
	require.NoError(t, apply(ctx, &tx.FreezeBalance{
		Owner: alice, Amount: 2 * thor.TrxPrecision, Duration: 3, Resource: thor.Energy, Receiver: bob,
	}))

	acc := account(t, ctx, alice)
	assert.Equal(t, 4*thor.TrxPrecision, acc.Frozen[thor.Energy].Amount)
	assert.Equal(t, 2*thor.TrxPrecision, acc.DelegatedOut[thor.Energy])
	assert.Equal(t, uint64(6), acc.TronPower())
	assert.Equal(t, 2*thor.TrxPrecision, account(t, ctx, bob).FrozenFor(thor.Energy))

	assertInvalid(t, apply(ctx, &tx.UnfreezeBalance{Owner: alice, Resource: thor.Energy}), "It's not time to unfreeze(ENERGY).")

	later := &Context{State: ctx.State, Config: cfg, Accountant: ctx.Accountant, BlockTime: now + 3*thor.DayMillis}
	require.NoError(t, apply(later, &tx.UnfreezeBalance{Owner: alice, Resource: thor.Energy, Receiver: bob}))
	require.NoError(t, apply(later, &tx.UnfreezeBalance{Owner: alice, Resource: thor.Energy}))
	assert.Equal(t, 10*thor.TrxPrecision, account(t, ctx, alice).Balance)
	assert.Equal(t, uint64(0), account(t, ctx, bob).Acquired[thor.Energy])

	total, err := ctx.State.GetDynamic(state.TotalEnergyWeight)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), total)
}

func TestFreezeOverflow(t *testing.T) {
	cfg := thor.DefaultConfig()
	cfg.AllowDelegateResource = true
	near := uint64(math.MaxUint64 - thor.TrxPrecision/2)

	tests := []struct {
		name     string
		receiver thor.Address
		preset   func(owner, receiver *state.Account)
	}{
		{"frozen", thor.Address{}, func(owner, _ *state.Account) { owner.Frozen[thor.Bandwidth].Amount = near }},
		{"delegated out", bob, func(owner, _ *state.Account) { owner.DelegatedOut[thor.Bandwidth] = near }},
		{"acquired", bob, func(_, receiver *state.Account) { receiver.Acquired[thor.Bandwidth] = near }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t, cfg)
			fund(t, ctx, alice, 2*thor.TrxPrecision)
			fund(t, ctx, bob, 1)
			owner, receiver := account(t, ctx, alice), account(t, ctx, bob)
			tt.preset(owner, receiver)
			require.NoError(t, ctx.State.SetAccount(alice, owner))
			require.NoError(t, ctx.State.SetAccount(bob, receiver))

			err := apply(ctx, &tx.FreezeBalance{
				Owner:    alice,
				Amount:   thor.TrxPrecision,
				Duration: cfg.MinFrozenDays,
				Resource: thor.Bandwidth,
				Receiver: tt.receiver,
			})
			var eerr *ExecutionError
			require.True(t, errors.As(err, &eerr), "want execution error, got %v", err)
			assert.Equal(t, tx.FreezeBalanceType, eerr.Type)

			after, got := account(t, ctx, alice), account(t, ctx, bob)
			assert.Equal(t, 2*thor.TrxPrecision, after.Balance)
			assert.Equal(t, owner.Frozen, after.Frozen)
			assert.Equal(t, owner.DelegatedOut, after.DelegatedOut)
			assert.Equal(t, receiver.Acquired, got.Acquired)
			d, err := ctx.State.GetDelegation(alice, bob, false)
			require.NoError(t, err)
			assert.True(t, d.IsEmpty())
		})
	}
}

func TestCounterOverflow(t *testing.T) {
	assertExhausted := func(t *testing.T, err error, typ tx.ContractType) {
		var eerr *ExecutionError
		require.True(t, errors.As(err, &eerr), "want execution error, got %v", err)
		assert.Equal(t, typ, eerr.Type)
	}

	ctx := newContext(t, thor.DefaultConfig())
	fund(t, ctx, alice, ctx.Config.AssetIssueFee)
	ctx.State.SetDynamic(state.NextTokenID, math.MaxUint64)
	assertExhausted(t, apply(ctx, issue(10000)), tx.AssetIssueType)
	_, ok, err := ctx.State.GetAssetIDByName("X")
	require.NoError(t, err)
	assert.False(t, ok)

	ctx = newWitnessContext(t)
	ctx.State.SetDynamic(state.NextProposalID, math.MaxUint64)
	params := []thor.ChainParam{{Code: thor.ParamEnergyFee, Value: 140}}
	assertExhausted(t, apply(ctx, &tx.ProposalCreate{Owner: alice, Params: params}), tx.ProposalCreateType)
	p, err := ctx.State.GetProposal(math.MaxUint64)
	require.NoError(t, err)
	assert.Nil(t, p)
}
