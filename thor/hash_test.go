// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/rand/v2"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/blake2b"
)

func BenchmarkHash(b *testing.B) {
	data := make([]byte, 100)

	rng := rand.New(rand.NewPCG(1, 0)) //#nosec G404
	for i := range data {
		data[i] = byte(rng.Uint64())
	}

	b.Run("keccak", func(b *testing.B) {
		for b.Loop() {
			Keccak256(data)
		}
	})

	b.Run("blake2b", func(b *testing.B) {
		for b.Loop() {
			Blake2b(data)
		}
	})
}

func TestBlake2b(t *testing.T) {
	single := Blake2b([]byte("multipledata"))
	multi := Blake2b([]byte("multi"), []byte("ple"), []byte("data"))

	assert.Equal(t, Bytes32(blake2b.Sum256([]byte("multipledata"))), single)
	assert.Equal(t, single, multi, "split input hashes the same as joined input")
	assert.NotEqual(t, single, Blake2b([]byte("data")))
}

func TestKeccak256(t *testing.T) {
	h := Keccak256([]byte("multi"), []byte("ple"), []byte("data"))

	assert.Equal(t, BytesToBytes32(crypto.Keccak256([]byte("multipledata"))), h)
	// pooled hasher must be reset between uses
	assert.Equal(t, h, Keccak256([]byte("multipledata")))
}
