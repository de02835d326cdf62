package odag

import (
	"bytes"
	"io"
	"sort"
	"sync"
)

import (
	"github.com/timtadh/data-structures/errors"
	"github.com/timtadh/data-structures/hashtable"
	"github.com/timtadh/data-structures/types"
)

import (
	"github.com/winkyWang/Arabesque/computation"
	"github.com/winkyWang/Arabesque/embedding"
	"github.com/winkyWang/Arabesque/pattern"
)

// FlushMethod selects the granularity at which accumulated storages
// are cut into units for redistribution. It changes how work is sliced
// across the next round's workers, never what the storages encode.
type FlushMethod int

const (
	FlushByPattern FlushMethod = iota
	FlushByEntries
	FlushByParts
)

func (m FlushMethod) String() string {
	switch m {
	case FlushByPattern:
		return "pattern"
	case FlushByEntries:
		return "entries"
	case FlushByParts:
		return "parts"
	}
	return "unknown"
}

func ParseFlushMethod(name string) (FlushMethod, error) {
	switch name {
	case "pattern":
		return FlushByPattern, nil
	case "entries":
		return FlushByEntries, nil
	case "parts":
		return FlushByParts, nil
	}
	return 0, errors.Errorf("unknown flush method %q (want pattern, entries, or parts)", name)
}

// Unit is one keyed redistribution unit. DomainID/WordID are -1 except
// for by-entries units; PartID is -1 except for by-parts units, which
// carry serialized bytes instead of a storage.
type Unit struct {
	Pattern  pattern.Pattern
	DomainID int
	WordID   int
	PartID   int
	Storage  *DomainStorage
	Bytes    []byte
}

// UnitIterator lazily yields flush units. Iterate with
//
//	for u, err, it = it(); it != nil; u, err, it = it() { ... }
//
// and check err once the returned iterator is nil: a failure ends the
// iteration with a non-nil error and a nil continuation.
type UnitIterator func() (*Unit, error, UnitIterator)

type stashEntry struct {
	pat     pattern.Pattern
	storage *DomainStorage
}

// Stash accumulates one DomainStorage per pattern over a processing
// round. Accumulation is concurrent; Flush is called once the round's
// producers are done.
type Stash struct {
	mu      sync.Mutex
	table   *hashtable.LinearHash
	entries []*stashEntry
}

func NewStash() *Stash {
	return &Stash{
		table:   hashtable.NewLinearHash(),
		entries: make([]*stashEntry, 0, 10),
	}
}

// Storage returns the stash's storage for pat, creating it with
// numberOfDomains domains on first use.
func (st *Stash) Storage(pat pattern.Pattern, numberOfDomains int) (*DomainStorage, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	key := types.ByteSlice(pat.Label())
	if v, err := st.table.Get(key); err == nil {
		return v.(*stashEntry).storage, nil
	}
	s, err := NewDomainStorage(numberOfDomains)
	if err != nil {
		return nil, err
	}
	e := &stashEntry{pat: pat, storage: s}
	if err := st.table.Put(key, e); err != nil {
		return nil, err
	}
	st.entries = append(st.entries, e)
	return s, nil
}

func (st *Stash) AddEmbedding(pat pattern.Pattern, emb embedding.Embedding) error {
	s, err := st.Storage(pat, emb.NumWords())
	if err != nil {
		return err
	}
	return s.AddEmbedding(emb)
}

func (st *Stash) NumPatterns() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// surviving returns the entries admitted by the computation's
// aggregation filter, in ascending pattern-label order so every worker
// flushes the same round in the same order.
func (st *Stash) surviving(comp computation.Computation) []*stashEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	entries := make([]*stashEntry, 0, len(st.entries))
	for _, e := range st.entries {
		if comp.AggregationFilter(e.pat) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].pat.Label(), entries[j].pat.Label()) < 0
	})
	return entries
}

// Flush lazily emits the round's units at the selected granularity.
// numPartitions is only consulted by the by-parts method.
func (st *Stash) Flush(method FlushMethod, comp computation.Computation, numPartitions int) UnitIterator {
	entries := st.surviving(comp)
	switch method {
	case FlushByPattern:
		return flushByPattern(entries)
	case FlushByEntries:
		return flushByEntries(entries)
	case FlushByParts:
		return flushByParts(entries, numPartitions)
	}
	return func() (*Unit, error, UnitIterator) {
		return nil, errors.Errorf("unknown flush method %v", int(method)), nil
	}
}

func flushByPattern(entries []*stashEntry) (it UnitIterator) {
	i := 0
	it = func() (*Unit, error, UnitIterator) {
		if i >= len(entries) {
			return nil, nil, nil
		}
		e := entries[i]
		i++
		return &Unit{Pattern: e.pat, DomainID: -1, WordID: -1, PartID: -1, Storage: e.storage}, nil, it
	}
	return it
}

func flushByEntries(entries []*stashEntry) (it UnitIterator) {
	ei := 0
	di := 0
	var words []int
	wi := 0
	it = func() (*Unit, error, UnitIterator) {
		for {
			if ei >= len(entries) {
				return nil, nil, nil
			}
			e := entries[ei]
			if di >= e.storage.NumberOfDomains() {
				ei++
				di = 0
				words = nil
				continue
			}
			if words == nil {
				words = e.storage.Domain(di).Words()
				wi = 0
			}
			if wi >= len(words) {
				di++
				words = nil
				continue
			}
			w := words[wi]
			wi++
			single, err := singleEntryStorage(e.storage, di, w)
			if err != nil {
				return nil, err, nil
			}
			return &Unit{Pattern: e.pat, DomainID: di, WordID: w, PartID: -1, Storage: single}, nil, it
		}
	}
	return it
}

// singleEntryStorage builds an independent storage of the same shape
// holding only (domainID, wordID). It shares nothing with src, so the
// emitted unit stays valid however src is used afterwards.
func singleEntryStorage(src *DomainStorage, domainID, wordID int) (*DomainStorage, error) {
	s, err := NewDomainStorage(src.NumberOfDomains())
	if err != nil {
		return nil, err
	}
	if err := s.AddWord(domainID, wordID); err != nil {
		return nil, err
	}
	s.numEmbeddings.Store(src.NumEmbeddings())
	return s, nil
}

func flushByParts(entries []*stashEntry, numPartitions int) (it UnitIterator) {
	ei := 0
	var parts [][]byte
	pi := 0
	it = func() (*Unit, error, UnitIterator) {
		for {
			if ei >= len(entries) {
				return nil, nil, nil
			}
			e := entries[ei]
			if parts == nil {
				if numPartitions <= 0 {
					return nil, errors.Errorf("flush by parts needs a positive partition count, got %v", numPartitions), nil
				}
				bufs := make([]*bytes.Buffer, numPartitions)
				outputs := make([]io.Writer, numPartitions)
				hasContent := make([]bool, numPartitions)
				for p := range bufs {
					bufs[p] = new(bytes.Buffer)
					outputs[p] = bufs[p]
				}
				if err := e.storage.WriteInParts(outputs, hasContent); err != nil {
					return nil, err, nil
				}
				parts = make([][]byte, numPartitions)
				for p := range bufs {
					if hasContent[p] {
						parts[p] = bufs[p].Bytes()
					}
				}
				pi = 0
			}
			for pi < len(parts) && parts[pi] == nil {
				pi++
			}
			if pi >= len(parts) {
				ei++
				parts = nil
				continue
			}
			p := pi
			pi++
			return &Unit{Pattern: e.pat, DomainID: -1, WordID: -1, PartID: p, Bytes: parts[p]}, nil, it
		}
	}
	return it
}
