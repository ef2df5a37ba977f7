// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"bytes"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/vechain/txexec/thor"
)

// Receipts slice of receipts.
type Receipts []*Receipt

// RootHash computes merkle root hash of receipts.
func (rs Receipts) RootHash() thor.Bytes32 {
	if len(rs) == 0 {
		// optimized
		return thor.Bytes32(types.EmptyReceiptsHash)
	}
	return thor.Bytes32(types.DeriveSha(derivableReceipts(rs), trie.NewStackTrie(nil)))
}

// implements types.DerivableList
type derivableReceipts Receipts

func (rs derivableReceipts) Len() int {
	return len(rs)
}

func (rs derivableReceipts) EncodeIndex(i int, w *bytes.Buffer) {
	if err := rlp.Encode(w, rs[i]); err != nil {
		panic(err)
	}
}
