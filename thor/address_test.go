// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"0X7567D83B7B8D80ADDCB281A71D54FC7B3364FFED", false},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"0x7567d83b", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", true},
	}
	for _, tt := range tests {
		addr, err := ParseAddress(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
	}
}

func TestAddressJSON(t *testing.T) {
	addr := MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")

	data, err := json.Marshal(&addr)
	require.NoError(t, err)
	assert.Equal(t, `"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
}

func TestCreateContractAddress(t *testing.T) {
	txID := Blake2b([]byte("tx"))
	creator := BytesToAddress([]byte("creator"))

	a1 := CreateContractAddress(txID, creator)
	a2 := CreateContractAddress(txID, BytesToAddress([]byte("other")))
	assert.NotEqual(t, a1, a2)
	assert.Equal(t, a1, CreateContractAddress(txID, creator))

	n0 := CreateInternalContractAddress(txID, 0)
	n1 := CreateInternalContractAddress(txID, 1)
	assert.NotEqual(t, n0, n1)
	assert.False(t, n0.IsZero())
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress(make([]byte, 20)))
	assert.False(t, ValidAddress(make([]byte, 21)))
	assert.False(t, ValidAddress(nil))
}
