// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv describes the key-value store the deposit cache reads through and commits into.
package kv

// Getter reads values. Missing keys are reported by an error that IsNotFound recognizes.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Store is a persistent database, such as the leveldb backend of the node.
type Store interface {
	Getter
	Putter

	// Snapshot pins the current content for reading.
	Snapshot() Snapshot
	// Bulk buffers writes until Write commits them together.
	Bulk() Bulk
	// Iterate walks r in ascending key order.
	Iterate(r Range) Iterator
}

type Snapshot interface {
	Getter
	Release()
}

type Bulk interface {
	Putter
	// Len is the number of buffered writes.
	Len() int
	Write() error
}

type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range selects keys k with Start <= k < Limit. An empty Limit is unbounded.
type Range struct {
	Start []byte
	Limit []byte
}
