// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Sign appends a secp256k1 signature over the transaction id. Every contract owner
// of a transaction signs the same id, in any order.
func Sign(trx *Transaction, key *ecdsa.PrivateKey) (*Transaction, error) {
	id := trx.ID()
	sig, err := crypto.Sign(id.Bytes(), key)
	if err != nil {
		return nil, errors.Wrap(err, "sign tx")
	}
	return trx.WithSignature(sig), nil
}

// MustSign is Sign for keys known to be valid, as in tests and tooling.
func MustSign(trx *Transaction, key *ecdsa.PrivateKey) *Transaction {
	signed, err := Sign(trx, key)
	if err != nil {
		panic(err)
	}
	return signed
}
