package odag

import "testing"
import "github.com/stretchr/testify/assert"

import (
	"sync"
)

import (
	"github.com/winkyWang/Arabesque/embedding"
	"github.com/winkyWang/Arabesque/graph"
	"github.com/winkyWang/Arabesque/pattern"
)

func collectUnits(t *testing.T, it UnitIterator) []*Unit {
	units := make([]*Unit, 0, 10)
	var u *Unit
	var err error
	for u, err, it = it(); it != nil; u, err, it = it() {
		units = append(units, u)
	}
	if err != nil {
		t.Fatal(err)
	}
	return units
}

func mustParse(t *testing.T, s string) *pattern.Basic {
	p, err := pattern.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestStashKeysStoragesByPatternLabel(t *testing.T) {
	x := assert.New(t)
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	path := mustParse(t, "3;0-1,1-2")

	a, err := st.Storage(edge, 2)
	x.Nil(err)
	b, err := st.Storage(path, 3)
	x.Nil(err)
	x.Equal(2, st.NumPatterns())

	// an equal pattern built separately must reach the same storage
	again, err := st.Storage(mustParse(t, "2;0-1"), 2)
	x.Nil(err)
	x.True(a == again)
	x.False(a == b)
}

func TestStashAddEmbeddingIsConcurrent(t *testing.T) {
	x := assert.New(t)
	g := graph.NewMemory(false)
	for i := 0; i < 64; i++ {
		g.AddVertex(0)
	}
	for i := 0; i+1 < 64; i += 2 {
		if _, err := g.AddEdge(i, i+1, 0); err != nil {
			t.Fatal(err)
		}
	}
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w * 8; i+1 < (w+1)*8; i += 2 {
				emb := embedding.NewVertexInduced(g)
				emb.AddWord(i)
				emb.AddWord(i + 1)
				if err := st.AddEmbedding(edge, emb); err != nil {
					t.Error(err)
				}
			}
		}(w)
	}
	wg.Wait()
	x.Equal(1, st.NumPatterns())
	s, err := st.Storage(edge, 2)
	x.Nil(err)
	x.Equal(int64(32), s.NumEmbeddings())
	x.Equal(32, s.Domain(0).Size())
	x.Equal(32, s.Domain(1).Size())
}

func TestFlushByPatternHonorsTheAggregationFilter(t *testing.T) {
	x := assert.New(t)
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	path := mustParse(t, "3;0-1,1-2")
	es, err := st.Storage(edge, 2)
	x.Nil(err)
	_, err = st.Storage(path, 3)
	x.Nil(err)

	comp := &testComp{}
	comp.aggregation = func(p pattern.Pattern) bool {
		return p.NumberOfVertices() == 2
	}
	units := collectUnits(t, st.Flush(FlushByPattern, comp, 1))
	x.Len(units, 1)
	x.Equal(edge.Label(), units[0].Pattern.Label())
	x.Equal(-1, units[0].DomainID)
	x.Equal(-1, units[0].WordID)
	x.Equal(-1, units[0].PartID)
	x.True(units[0].Storage == es)
}

func TestFlushOrderIsInsertionOrderIndependent(t *testing.T) {
	x := assert.New(t)
	edge := mustParse(t, "2;0-1")
	path := mustParse(t, "3;0-1,1-2")

	labels := func(pats ...*pattern.Basic) [][]byte {
		st := NewStash()
		for _, p := range pats {
			if _, err := st.Storage(p, p.NumberOfVertices()); err != nil {
				t.Fatal(err)
			}
		}
		out := make([][]byte, 0, len(pats))
		for _, u := range collectUnits(t, st.Flush(FlushByPattern, &testComp{}, 1)) {
			out = append(out, u.Pattern.Label())
		}
		return out
	}
	x.Equal(labels(edge, path), labels(path, edge))
}

func TestFlushByEntriesEmitsOneUnitPerWord(t *testing.T) {
	x := assert.New(t)
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	s, err := st.Storage(edge, 2)
	x.Nil(err)
	x.Nil(s.AddWord(0, 3))
	x.Nil(s.AddWord(1, 7))
	x.Nil(s.AddWord(1, 8))
	s.numEmbeddings.Store(5)

	units := collectUnits(t, st.Flush(FlushByEntries, &testComp{}, 1))
	x.Len(units, 3)

	type key struct{ domainID, wordID int }
	got := make([]key, 0, 3)
	for _, u := range units {
		got = append(got, key{u.DomainID, u.WordID})
		x.Equal(-1, u.PartID)
		x.Equal(2, u.Storage.NumberOfDomains())
		x.Equal([]int{u.WordID}, u.Storage.Domain(u.DomainID).Words())
		x.Equal(0, u.Storage.Domain(1-u.DomainID).Size())
		x.Equal(int64(5), u.Storage.NumEmbeddings())
		x.False(u.Storage == s, "units must not alias the accumulated storage")
	}
	x.Equal([]key{{0, 3}, {1, 7}, {1, 8}}, got)

	// mutating a unit must leave the stash's storage alone
	x.Nil(units[0].Storage.AddWord(1, 99))
	x.Equal([]int{7, 8}, s.Domain(1).Words())
}

func TestFlushByPartsRoundTrips(t *testing.T) {
	x := assert.New(t)
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	s, err := st.Storage(edge, 2)
	x.Nil(err)
	for _, w := range []int{0, 1, 2, 3, 4} {
		x.Nil(s.AddWord(0, w))
	}
	x.Nil(s.AddWord(1, 9))
	s.numEmbeddings.Store(11)

	units := collectUnits(t, st.Flush(FlushByParts, &testComp{}, 3))
	x.Len(units, 3)

	merged, err := NewDomainStorage(2)
	x.Nil(err)
	for i, u := range units {
		x.Equal(i, u.PartID)
		x.Nil(u.Storage)
		part, err := NewDomainStorage(1)
		x.Nil(err)
		x.Nil(part.UnmarshalBinary(u.Bytes))
		x.Equal([]int{9}, part.Domain(1).Words())
		for _, w := range part.Domain(0).Words() {
			x.Equal(u.PartID, w%3)
		}
		x.Nil(merged.Aggregate(part))
	}
	x.Equal([]int{0, 1, 2, 3, 4}, merged.Domain(0).Words())
	x.Equal([]int{9}, merged.Domain(1).Words())
}

func TestFlushByPartsSkipsEmptyParts(t *testing.T) {
	x := assert.New(t)
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	s, err := st.Storage(edge, 2)
	x.Nil(err)
	// every domain 0 word is even, so part 1 of 2 is empty
	for _, w := range []int{0, 2, 4} {
		x.Nil(s.AddWord(0, w))
	}
	x.Nil(s.AddWord(1, 5))

	units := collectUnits(t, st.Flush(FlushByParts, &testComp{}, 2))
	x.Len(units, 1)
	x.Equal(0, units[0].PartID)
}

func TestFlushByPartsRejectsBadPartitionCounts(t *testing.T) {
	x := assert.New(t)
	st := NewStash()
	edge := mustParse(t, "2;0-1")
	if _, err := st.Storage(edge, 2); err != nil {
		t.Fatal(err)
	}
	it := st.Flush(FlushByParts, &testComp{}, 0)
	var u *Unit
	var err error
	seen := 0
	for u, err, it = it(); it != nil; u, err, it = it() {
		_ = u
		seen++
	}
	x.NotNil(err)
	x.Equal(0, seen)
}

func TestParseFlushMethod(t *testing.T) {
	x := assert.New(t)
	for _, m := range []FlushMethod{FlushByPattern, FlushByEntries, FlushByParts} {
		parsed, err := ParseFlushMethod(m.String())
		x.Nil(err)
		x.Equal(m, parsed)
	}
	_, err := ParseFlushMethod("bogus")
	x.NotNil(err)
}
