// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/txexec/thor"
)

// SignatureLength is the length of a secp256k1 recoverable signature.
const SignatureLength = crypto.SignatureLength

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		id      atomic.Value
		size    atomic.Value
		signers atomic.Value
	}
}

// raw is the signed part of a transaction.
type raw struct {
	Contracts  []*Contract
	RefBlock   BlockRef
	Expiration uint64
	Timestamp  uint64
	FeeLimit   uint64
	Memo       []byte
}

// body describes details of a tx.
type body struct {
	Raw        raw
	Signatures [][]byte
}

// ID returns id of tx, the BLAKE2b hash of the unsigned part. It is also the signing hash.
func (t *Transaction) ID() (id thor.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(thor.Bytes32)
	}
	defer func() { t.cache.id.Store(id) }()

	data, err := rlp.EncodeToBytes(&t.body.Raw)
	if err != nil {
		panic(err)
	}
	return thor.Blake2b(data)
}

// Contracts returns the contracts of the tx.
func (t *Transaction) Contracts() []*Contract {
	return append([]*Contract(nil), t.body.Raw.Contracts...)
}

// Contract returns the single contract of the tx, or nil if the tx does not carry exactly one.
func (t *Transaction) Contract() *Contract {
	if len(t.body.Raw.Contracts) != 1 {
		return nil
	}
	return t.body.Raw.Contracts[0]
}

// RefBlock returns the block reference.
func (t *Transaction) RefBlock() BlockRef {
	return t.body.Raw.RefBlock
}

// Expiration returns the timestamp in milliseconds after which the tx is no longer valid.
func (t *Transaction) Expiration() uint64 {
	return t.body.Raw.Expiration
}

// Timestamp returns the creation time in milliseconds.
func (t *Transaction) Timestamp() uint64 {
	return t.body.Raw.Timestamp
}

// FeeLimit returns the max sun the sender pays for energy.
func (t *Transaction) FeeLimit() uint64 {
	return t.body.Raw.FeeLimit
}

// Memo returns the memo data.
func (t *Transaction) Memo() []byte {
	return append([]byte(nil), t.body.Raw.Memo...)
}

// Signatures returns the signatures.
func (t *Transaction) Signatures() [][]byte {
	sigs := make([][]byte, len(t.body.Signatures))
	for i, sig := range t.body.Signatures {
		sigs[i] = append([]byte(nil), sig...)
	}
	return sigs
}

// WithSignature creates a new tx with sig appended.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{body: t.body}
	newTx.body.Signatures = append(t.Signatures(), append([]byte(nil), sig...))
	return &newTx
}

// Signers recovers the addresses of all signatures, in order.
func (t *Transaction) Signers() (signers []thor.Address, err error) {
	if cached := t.cache.signers.Load(); cached != nil {
		return append([]thor.Address(nil), cached.([]thor.Address)...), nil
	}
	defer func() {
		if err == nil {
			t.cache.signers.Store(append([]thor.Address(nil), signers...))
		}
	}()

	if len(t.body.Signatures) == 0 {
		return nil, errors.New("tx is not signed")
	}
	id := t.ID()
	for i, sig := range t.body.Signatures {
		if len(sig) != SignatureLength {
			return nil, errors.Errorf("signature %d: invalid length %d", i, len(sig))
		}
		pub, err := crypto.SigToPub(id[:], sig)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, thor.Address(crypto.PubkeyToAddress(*pub)))
	}
	return signers, nil
}

// Size returns the size in bytes of the encoded tx, the bandwidth it consumes.
func (t *Transaction) Size() thor.StorageSize {
	if cached := t.cache.size.Load(); cached != nil {
		return cached.(thor.StorageSize)
	}
	var size thor.StorageSize
	rlp.Encode(&size, t)
	t.cache.size.Store(size)
	return size
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	return nil
}

func (t *Transaction) String() string {
	var kind string
	if c := t.Contract(); c != nil {
		kind = c.Type().String()
	} else {
		kind = fmt.Sprintf("%d contracts", len(t.body.Raw.Contracts))
	}
	return fmt.Sprintf(`
	Tx(%v, %v)
	Contract:       %v
	RefBlock:       %v
	Expiration:     %v
	Timestamp:      %v
	FeeLimit:       %v
	Signatures:     %v
`, t.ID(), t.Size(), kind, t.body.Raw.RefBlock, t.body.Raw.Expiration,
		t.body.Raw.Timestamp, t.body.Raw.FeeLimit, len(t.body.Signatures))
}
