// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket is a key prefix that partitions a store into namespaces,
// one per kind of record the deposit cache keeps.
type Bucket string

// Key prefixes key with the bucket name.
func (b Bucket) Key(key []byte) []byte {
	full := make([]byte, len(b)+len(key))
	copy(full[copy(full, b):], key)
	return full
}

// NewGetter scopes src to the bucket.
func (b Bucket) NewGetter(src Getter) Getter {
	return bucketGetter{b, src}
}

// NewPutter scopes src to the bucket.
func (b Bucket) NewPutter(src Putter) Putter {
	return bucketPutter{b, src}
}

// NewStore scopes src to the bucket. Iterated keys come back without the prefix.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Snapshot {
			snap := src.Snapshot()
			return &struct {
				Getter
				ReleaseFunc
			}{b.NewGetter(snap), snap.Release}
		},
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				LenFunc
				WriteFunc
			}{b.NewPutter(bulk), bulk.Len, bulk.Write}
		},
		b.iterate(src),
	}
}

func (b Bucket) iterate(src Store) IterateFunc {
	return func(r Range) Iterator {
		scoped := Range{Start: b.Key(r.Start)}
		if len(r.Limit) > 0 {
			scoped.Limit = b.Key(r.Limit)
		} else {
			scoped.Limit = util.BytesPrefix([]byte(b)).Limit
		}
		it := src.Iterate(scoped)
		return &struct {
			NextFunc
			KeyFunc
			ValueFunc
			ReleaseFunc
			ErrorFunc
		}{
			it.Next,
			func() []byte { return it.Key()[len(b):] },
			it.Value,
			it.Release,
			it.Error,
		}
	}
}

type bucketGetter struct {
	b   Bucket
	src Getter
}

func (g bucketGetter) Get(key []byte) ([]byte, error) { return g.src.Get(g.b.Key(key)) }
func (g bucketGetter) Has(key []byte) (bool, error)   { return g.src.Has(g.b.Key(key)) }
func (g bucketGetter) IsNotFound(err error) bool      { return g.src.IsNotFound(err) }

type bucketPutter struct {
	b   Bucket
	dst Putter
}

func (p bucketPutter) Put(key, val []byte) error { return p.dst.Put(p.b.Key(key), val) }
func (p bucketPutter) Delete(key []byte) error   { return p.dst.Delete(p.b.Key(key)) }
