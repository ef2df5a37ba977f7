// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
	"github.com/vechain/txexec/tx"
)

// MaxExpirationMillis is how far past the block time a transaction may expire.
const MaxExpirationMillis = thor.DayMillis

// ResolvedTransaction resolve the transaction and performs basic validation.
type ResolvedTransaction struct {
	tx       *tx.Transaction
	Owner    thor.Address
	Contract *tx.Contract
}

// ResolveTransaction resolves the transaction and performs basic validation.
func ResolveTransaction(trx *tx.Transaction) (*ResolvedTransaction, error) {
	contract := trx.Contract()
	if contract == nil {
		return nil, errors.Errorf("tx should carry exactly one contract, got %d", len(trx.Contracts()))
	}
	signers, err := trx.Signers()
	if err != nil {
		return nil, err
	}
	owner := contract.Owner()
	if !slices.Contains(signers, owner) {
		return nil, errors.Errorf("tx is not signed by the owner %v", owner)
	}
	return &ResolvedTransaction{
		tx:       trx,
		Owner:    owner,
		Contract: contract,
	}, nil
}

// Check verifies the transaction can be included in a block at blockTime.
func (r *ResolvedTransaction) Check(cfg *thor.Config, blockTime uint64) error {
	exp := r.tx.Expiration()
	if exp <= blockTime {
		return errors.Errorf("tx expired: expiration %d, block time %d", exp, blockTime)
	}
	if exp > blockTime+MaxExpirationMillis {
		return errors.Errorf("tx expiration %d is too far from block time %d", exp, blockTime)
	}
	if r.tx.FeeLimit() > cfg.MaxFeeLimit {
		return errors.Errorf("fee limit %d exceeds maximum %d", r.tx.FeeLimit(), cfg.MaxFeeLimit)
	}
	return nil
}
