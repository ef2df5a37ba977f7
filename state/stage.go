// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/txexec/kv"
)

// Change is one entry of a changeset.
type Change struct {
	Namespace kv.Bucket `json:"namespace"`
	Key       []byte    `json:"key"`
	Value     []byte    `json:"value,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// Changeset is a list of changes ordered by namespace then key.
type Changeset []Change

// Changes returns the final value of every key written since the checkpoint,
// ordered by namespace then key.
func (s *State) Changes(revision int) Changeset {
	last := make(map[cacheKey]entry)
	s.sm.JournalSince(revision, func(k cacheKey, e entry) bool {
		last[k] = e
		return true
	})

	changes := make(Changeset, 0, len(last))
	for k, e := range last {
		changes = append(changes, Change{
			Namespace: k.ns,
			Key:       []byte(k.key),
			Value:     e.value,
			Deleted:   e.deleted,
		})
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Namespace != changes[j].Namespace {
			return changes[i].Namespace < changes[j].Namespace
		}
		return bytes.Compare(changes[i].Key, changes[j].Key) < 0
	})
	return changes
}

// Stage makes a stage object holding all pending changes of the outermost scope.
// It fails if child scopes are still open.
func (s *State) Stage() (*Stage, error) {
	if s.sm.Depth() != 1 {
		return nil, errors.Errorf("state: stage with %d open scopes", s.sm.Depth()-1)
	}
	return &Stage{changes: s.Changes(0)}, nil
}

// Stage abstracts pending changes ready to be written.
type Stage struct {
	changes Changeset
}

// Changes returns the staged changeset.
func (st *Stage) Changes() Changeset {
	return st.changes
}

// Commit writes all staged changes into the store in one bulk.
func (st *Stage) Commit(store kv.Store) error {
	bulk := store.Bulk()
	for _, c := range st.changes {
		putter := c.Namespace.NewPutter(bulk)
		var err error
		if c.Deleted {
			err = putter.Delete(c.Key)
		} else {
			err = putter.Put(c.Key, c.Value)
		}
		if err != nil {
			return errors.Wrap(err, "stage commit")
		}
	}
	return bulk.Write()
}
