// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptFee(t *testing.T) {
	r := &Receipt{NetFee: 10, EnergyFee: 200, HandlerFee: 3}
	assert.Equal(t, uint64(213), r.Fee())
}

func TestResultCode(t *testing.T) {
	assert.Equal(t, "OUT_OF_ENERGY", ResultOutOfEnergy.String())
	assert.Equal(t, "JVM_STACK_OVER_FLOW", ResultCallDepth.String())
	assert.Equal(t, "UNKNOWN", ResultCode(200).String())

	data, err := json.Marshal(&Receipt{Result: ResultTransferFailed})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result":"TRANSFER_FAILED"`)
}

func TestReceiptsRootHash(t *testing.T) {
	empty := Receipts{}.RootHash()
	one := Receipts{{Result: ResultSuccess}}.RootHash()
	other := Receipts{{Result: ResultRevert}}.RootHash()

	assert.NotEqual(t, empty, one)
	assert.NotEqual(t, one, other)
	assert.Equal(t, one, Receipts{{Result: ResultSuccess}}.RootHash())
}
