// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

// Builder to make it easy to build transaction.
type Builder struct {
	body body
}

// NewBuilder creates a builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Contract adds a contract signed under the owner permission.
func (b *Builder) Contract(p Payload) *Builder {
	b.body.Raw.Contracts = append(b.body.Raw.Contracts, &Contract{Payload: p})
	return b
}

// BlockRef set block reference.
func (b *Builder) BlockRef(br BlockRef) *Builder {
	b.body.Raw.RefBlock = br
	return b
}

// Expiration set expiration time in milliseconds.
func (b *Builder) Expiration(exp uint64) *Builder {
	b.body.Raw.Expiration = exp
	return b
}

// Timestamp set creation time in milliseconds.
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.body.Raw.Timestamp = ts
	return b
}

// FeeLimit set max sun paid for energy.
func (b *Builder) FeeLimit(limit uint64) *Builder {
	b.body.Raw.FeeLimit = limit
	return b
}

// Memo set memo data.
func (b *Builder) Memo(memo []byte) *Builder {
	b.body.Raw.Memo = append([]byte(nil), memo...)
	return b
}

// Build build tx object.
func (b *Builder) Build() *Transaction {
	tx := Transaction{body: b.body}
	tx.body.Raw.Contracts = append([]*Contract(nil), b.body.Raw.Contracts...)
	return &tx
}
