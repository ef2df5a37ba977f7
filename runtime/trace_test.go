// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

func newTestTrace(t *testing.T) *Trace {
	rt, _ := newRuntime(t, thor.DefaultConfig())
	fund(t, rt, alice, 10*thor.TrxPrecision)
	fund(t, rt, bob, 1)
	rtx, err := ResolveTransaction(newTx(&tx.Transfer{Owner: alice, To: bob, Amount: 100}, 0))
	require.NoError(t, err)
	return newTrace(rt, rtx)
}

func TestTraceStates(t *testing.T) {
	trace := newTestTrace(t)
	assert.Equal(t, Created, trace.State())

	err := trace.finalize()
	assert.EqualError(t, err, "trace: cannot move to finalized from created")

	receipt, err := trace.run()
	require.NoError(t, err)
	assert.Equal(t, Checked, trace.State())
	assert.Equal(t, tx.ResultSuccess, receipt.Result)
	assert.NotZero(t, receipt.FreeNetUsage)

	assert.Error(t, trace.chargeBandwidth())
	assert.Equal(t, "bandwidth charged", BandwidthCharged.String())
	assert.Equal(t, "TraceState(9)", TraceState(9).String())
}

func TestReceiptCheck(t *testing.T) {
	trace := newTestTrace(t)
	_, err := trace.run()
	require.NoError(t, err)

	// a receipt declaring a fee nobody paid
	trace.state = Finalized
	trace.receipt.NetFee = 7
	err = trace.check()
	var cerr *ReceiptCheckError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "netFee", cerr.Field)
	assert.Equal(t, uint64(7), cerr.Declared)
	assert.Zero(t, cerr.Computed)
	assert.EqualError(t, err, "receipt check: netFee declared 7, computed 0")

	trace.state = Finalized
	trace.receipt.NetFee = 0
	trace.receipt.FreeNetUsage++
	err = trace.check()
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "freeNetUsage", cerr.Field)
}
