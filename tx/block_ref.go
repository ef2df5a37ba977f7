// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/txexec/thor"
)

// BlockRef pins a transaction to a recent block: the low two bytes of its number
// followed by bytes [8,16) of its id.
type BlockRef [10]byte

// Number is the low 16 bits of the referenced block number.
func (br BlockRef) Number() uint16 {
	return binary.BigEndian.Uint16(br[:2])
}

// Matches reports whether the block numbered num with the given id is the referenced one.
func (br BlockRef) Matches(num uint64, id thor.Bytes32) bool {
	return br == NewBlockRefFromID(num, id)
}

// NewBlockRef references a block by number alone. The id part is left zero.
func NewBlockRef(num uint64) BlockRef {
	var br BlockRef
	binary.BigEndian.PutUint16(br[:2], uint16(num))
	return br
}

func NewBlockRefFromID(num uint64, id thor.Bytes32) BlockRef {
	br := NewBlockRef(num)
	copy(br[2:], id[8:16])
	return br
}

func (br BlockRef) String() string {
	return hexutil.Encode(br[:])
}
