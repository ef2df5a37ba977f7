// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/txexec/stackedmap"
)

func M(a ...any) []any {
	return a
}

func newStringMap(src map[string]string) *stackedmap.StackedMap[string, string] {
	return stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	sm := newStringMap(map[string]string{"foo": "bar"})
	sm.Push()

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
		}
	}
}

func TestStackedMapMerge(t *testing.T) {
	sm := newStringMap(map[string]string{"foo": "bar"})
	sm.Push()
	sm.Put("a", "1")

	rev := sm.Push()
	assert.Equal(t, 1, rev)
	sm.Put("a", "2")
	sm.Put("b", "3")

	sm.Push()
	sm.Put("b", "4")
	sm.Put("foo", "baz")

	sm.MergeTo(rev)
	assert.Equal(t, 1, sm.Depth())
	assert.Equal(t, M("2", true, nil), M(sm.Get("a")))
	assert.Equal(t, M("4", true, nil), M(sm.Get("b")))
	assert.Equal(t, M("baz", true, nil), M(sm.Get("foo")))

	// merged values are owned by the base level now
	sm.Push()
	sm.Put("a", "5")
	sm.Pop()
	assert.Equal(t, M("2", true, nil), M(sm.Get("a")))

	var journal []string
	sm.Journal(func(k, v string) bool {
		journal = append(journal, k+"="+v)
		return true
	})
	assert.Equal(t, []string{"a=1", "a=2", "b=3", "b=4", "foo=baz"}, journal)

	sm.Pop()
	assert.Equal(t, M("bar", true, nil), M(sm.Get("foo")))
	assert.Equal(t, M("", false, nil), M(sm.Get("a")))
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(key string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}
	i := 0
	sm.Journal(func(k, v string) bool {
		assert.Equal(kvs[i].k, k)
		assert.Equal(kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(len(kvs), i, "Journal traverse should not abort")

	i = 0
	sm.Journal(func(k, v string) bool {
		i++
		return false
	})

	assert.Equal(1, i, "Journal traverse should abort")
}

// model is a naive copy-on-push reference for the stacked map.
type model []map[uint8]uint16

func (m *model) push() { *m = append(*m, map[uint8]uint16{}) }
func (m *model) pop()  { *m = (*m)[:len(*m)-1] }
func (m *model) merge() {
	n := len(*m)
	for k, v := range (*m)[n-1] {
		(*m)[n-2][k] = v
	}
	m.pop()
}

func (m model) get(k uint8) (uint16, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if v, ok := m[i][k]; ok {
			return v, true
		}
	}
	return 0, false
}

func TestStackedMapFuzz(t *testing.T) {
	type op struct {
		Kind  uint8
		Key   uint8
		Value uint16
	}

	f := fuzz.NewWithSeed(42).NilChance(0).NumElements(200, 400)
	for round := range 20 {
		var ops []op
		f.Fuzz(&ops)

		sm := stackedmap.New(func(uint8) (uint16, bool, error) { return 0, false, nil })
		ref := model{}
		sm.Push()
		ref.push()

		for i, o := range ops {
			key := o.Key % 16
			switch o.Kind % 5 {
			case 0, 1:
				sm.Put(key, o.Value)
				ref[len(ref)-1][key] = o.Value
			case 2:
				sm.Push()
				ref.push()
			case 3:
				if sm.Depth() > 1 {
					sm.Pop()
					ref.pop()
				}
			case 4:
				if sm.Depth() > 1 {
					sm.Merge()
					ref.merge()
				}
			}
			require.Equal(t, len(ref), sm.Depth(), "round %d", round)
			for k := range uint8(16) {
				want, wantOK := ref.get(k)
				got, ok, err := sm.Get(k)
				require.NoError(t, err)
				if ok != wantOK || got != want {
					t.Fatalf("round %d key %d: got (%d, %v), want (%d, %v) after\n%s",
						round, k, got, ok, want, wantOK, spew.Sdump(ops[:i+1]))
				}
			}
		}
	}
}
