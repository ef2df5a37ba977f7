// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/txexec/kv"
	"github.com/vechain/txexec/stackedmap"
)

// Namespaces of the deposit cache. Each one is a key prefix in the store.
const (
	AccountSpace    kv.Bucket = "a"
	CodeSpace       kv.Bucket = "c"
	ContractSpace   kv.Bucket = "m"
	StorageSpace    kv.Bucket = "s"
	AssetSpace      kv.Bucket = "t"
	AssetNameSpace  kv.Bucket = "n"
	WitnessSpace    kv.Bucket = "w"
	VotesSpace      kv.Bucket = "v"
	ProposalSpace   kv.Bucket = "p"
	DelegationSpace kv.Bucket = "d"
	DynamicSpace    kv.Bucket = "g"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Cause returns the underlying error.
func (e *Error) Cause() error {
	return e.cause
}

type cacheKey struct {
	ns  kv.Bucket
	key string
}

// entry is a pending value. A deleted entry is a tombstone shadowing the store.
type entry struct {
	value   []byte
	deleted bool
}

// State is the deposit cache. It is not safe for concurrent use.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[cacheKey, entry]
}

// New creates a deposit cache reading through src. The outermost scope is opened already.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
	return s
}

// load implements stackedmap.MapGetter.
func (s *State) load(k cacheKey) (entry, bool, error) {
	val, err := k.ns.NewGetter(s.src).Get([]byte(k.key))
	if err != nil {
		if s.src.IsNotFound(err) {
			return entry{}, false, nil
		}
		return entry{}, false, err
	}
	return entry{value: val}, true, nil
}

// Get returns the value stored under (ns, key). The second return value
// reports whether the key exists.
func (s *State) Get(ns kv.Bucket, key []byte) ([]byte, bool, error) {
	e, ok, err := s.sm.Get(cacheKey{ns, string(key)})
	if err != nil {
		return nil, false, &Error{err}
	}
	if !ok || e.deleted {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Put records value under (ns, key) in the current scope.
func (s *State) Put(ns kv.Bucket, key, value []byte) {
	s.sm.Put(cacheKey{ns, string(key)}, entry{value: value})
}

// Delete records a tombstone for (ns, key) in the current scope.
func (s *State) Delete(ns kv.Bucket, key []byte) {
	s.sm.Put(cacheKey{ns, string(key)}, entry{deleted: true})
}

// NewCheckpoint opens a child scope.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// Commit merges every scope opened since the checkpoint into its parent.
func (s *State) Commit(revision int) {
	if revision < 1 {
		panic("state: commit of the outermost scope")
	}
	s.sm.MergeTo(revision)
	metricScopeCounter().AddWithLabel(1, map[string]string{"op": "commit"})
}

// RevertTo discards every scope opened since the checkpoint.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic("state: revert of the outermost scope")
	}
	s.sm.PopTo(revision)
	metricScopeCounter().AddWithLabel(1, map[string]string{"op": "revert"})
}

// Depth returns the number of open scopes, the outermost included.
func (s *State) Depth() int {
	return s.sm.Depth()
}

// getRLP decodes the record under (ns, key) into out.
func (s *State) getRLP(ns kv.Bucket, key []byte, out any) (bool, error) {
	data, ok, err := s.Get(ns, key)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, &Error{err}
	}
	return true, nil
}

// putRLP encodes val and records it under (ns, key).
func (s *State) putRLP(ns kv.Bucket, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return &Error{err}
	}
	s.Put(ns, key, data)
	return nil
}
