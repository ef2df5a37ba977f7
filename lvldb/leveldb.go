// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb is the goleveldb backed kv.Store the deposit cache commits into.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/txexec/kv"
)

var _ kv.Store = (*LevelDB)(nil)

const minCacheMiB = 16

// Options tune a disk database. Values below 16 are raised to 16.
type Options struct {
	CacheSize              int // MiB, split between block cache and write buffers
	OpenFilesCacheCapacity int
}

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}
	// iteration is for dumps and scans, keep it out of the block cache
	scanOpt = &opt.ReadOptions{DontFillCache: true}
)

// LevelDB implements kv.Store on goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the database in dir, creating it when missing.
func New(dir string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(dir, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open storage %v", dir)
	}
	return open(stg, opts)
}

// NewMem returns an empty database living in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cache := max(opts.CacheSize, minCacheMiB)
	db, err := leveldb.Open(stg, &opt.Options{
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		OpenFilesCacheCapacity: max(opts.OpenFilesCacheCapacity, minCacheMiB),
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{db}, nil
}

func (ldb *LevelDB) IsNotFound(err error) bool { return errors.Is(err, leveldb.ErrNotFound) }

func (ldb *LevelDB) Get(key []byte) ([]byte, error) { return ldb.db.Get(key, readOpt) }
func (ldb *LevelDB) Has(key []byte) (bool, error)   { return ldb.db.Has(key, readOpt) }
func (ldb *LevelDB) Put(key, val []byte) error      { return ldb.db.Put(key, val, writeOpt) }
func (ldb *LevelDB) Delete(key []byte) error        { return ldb.db.Delete(key, writeOpt) }

// Close releases the database. Any later call fails.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// Snapshot pins the current content. A snapshot that could not be taken
// reports the failure on every read.
func (ldb *LevelDB) Snapshot() kv.Snapshot {
	snap, err := ldb.db.GetSnapshot()
	return &snapshot{snap, err}
}

// Bulk buffers writes into a batch applied by Write in one go.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &bulk{ldb.db, new(leveldb.Batch)}
}

func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, scanOpt)
}

type snapshot struct {
	snap *leveldb.Snapshot
	err  error
}

func (s *snapshot) Get(key []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap.Get(key, readOpt)
}

func (s *snapshot) Has(key []byte) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.snap.Has(key, readOpt)
}

func (s *snapshot) IsNotFound(err error) bool { return errors.Is(err, leveldb.ErrNotFound) }

func (s *snapshot) Release() {
	if s.snap != nil {
		s.snap.Release()
	}
}

type bulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *bulk) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *bulk) Len() int { return b.batch.Len() }

func (b *bulk) Write() error {
	if b.batch.Len() == 0 {
		return nil
	}
	if err := b.db.Write(b.batch, writeOpt); err != nil {
		return errors.Wrap(err, "write batch")
	}
	b.batch.Reset()
	return nil
}
