package odag

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

import (
	"github.com/timtadh/data-structures/errors"
)

import (
	"github.com/winkyWang/Arabesque/embedding"
)

// DomainStorage is the compressed encoding of an embedding set for one
// pattern: one Domain per pattern position. The combination universe
// it represents is the cross product of its domains; readers
// reconstruct only the valid members.
//
// The build phase (AddEmbedding, AddWord, Aggregate) is concurrent.
// Reading requires a snapshot: constructing a reader initializes an
// immutable view of the current domains, and the domains must not be
// mutated while any reader built from that view is live.
type DomainStorage struct {
	numberOfDomains int
	domains         []*Domain
	numEmbeddings   atomic.Int64
	dirty           atomic.Bool

	mu                   sync.Mutex
	storage              [][]int
	domain0OrderedKeys   []int
	domainCounters       []int64
	numberOfEnumerations int64
	initialized          bool
}

func NewDomainStorage(numberOfDomains int) (*DomainStorage, error) {
	if numberOfDomains <= 0 {
		return nil, errors.Errorf("a domain storage needs at least 1 domain, got %v", numberOfDomains)
	}
	s := &DomainStorage{}
	s.setNumberOfDomains(numberOfDomains)
	s.dirty.Store(true)
	return s, nil
}

func (s *DomainStorage) setNumberOfDomains(numberOfDomains int) {
	s.numberOfDomains = numberOfDomains
	s.domains = make([]*Domain, numberOfDomains)
	for i := range s.domains {
		s.domains[i] = newDomain()
	}
}

func (s *DomainStorage) NumberOfDomains() int {
	return s.numberOfDomains
}

func (s *DomainStorage) Domain(i int) *Domain {
	return s.domains[i]
}

func (s *DomainStorage) NumEmbeddings() int64 {
	return s.numEmbeddings.Load()
}

// AddEmbedding records one embedding: word i goes into domain i. Safe
// to call from many goroutines during the build phase.
func (s *DomainStorage) AddEmbedding(emb embedding.Embedding) error {
	words := emb.Words()
	if len(words) != s.numberOfDomains {
		return errors.Errorf("embedding has %v words, storage has %v domains", len(words), s.numberOfDomains)
	}
	for i, w := range words {
		s.domains[i].Add(w)
	}
	s.numEmbeddings.Add(1)
	s.dirty.Store(true)
	return nil
}

// AddWord adds a single word to a single domain without touching the
// embedding count.
func (s *DomainStorage) AddWord(domainID, wordID int) error {
	if domainID < 0 || domainID >= s.numberOfDomains {
		return errors.Errorf("no domain %v in a storage of %v domains", domainID, s.numberOfDomains)
	}
	s.domains[domainID].Add(wordID)
	s.dirty.Store(true)
	return nil
}

// Aggregate unions other into s: domain-wise set union plus the sum of
// the logical embedding counts. Both storages must have the same
// number of domains.
func (s *DomainStorage) Aggregate(other *DomainStorage) error {
	if other.numberOfDomains != s.numberOfDomains {
		return errors.Errorf("cannot aggregate a %v domain storage into a %v domain storage", other.numberOfDomains, s.numberOfDomains)
	}
	for i, d := range other.domains {
		for _, w := range d.Words() {
			s.domains[i].Add(w)
		}
	}
	s.numEmbeddings.Add(other.NumEmbeddings())
	s.dirty.Store(true)
	return nil
}

// initStorage builds the read-optimized snapshot: per-domain word
// arrays in ascending order, the sorted domain 0 key array, and the
// downstream combination counters. Rebuilt lazily whenever the
// domains changed since the last snapshot.
func (s *DomainStorage) initStorage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized && !s.dirty.Load() {
		return
	}
	s.dirty.Store(false)
	s.storage = make([][]int, s.numberOfDomains)
	for i, d := range s.domains {
		s.storage[i] = d.Words()
	}
	s.domain0OrderedKeys = s.storage[0]
	s.domainCounters = make([]int64, s.numberOfDomains)
	s.domainCounters[s.numberOfDomains-1] = 1
	for i := s.numberOfDomains - 2; i >= 0; i-- {
		s.domainCounters[i] = s.domainCounters[i+1] * int64(len(s.storage[i+1]))
	}
	s.numberOfEnumerations = s.domainCounters[0] * int64(len(s.storage[0]))
	s.initialized = true
}

// NumberOfEnumerations is the size of the combination universe, the
// product of all domain sizes.
func (s *DomainStorage) NumberOfEnumerations() int64 {
	s.initStorage()
	return s.numberOfEnumerations
}

func (s *DomainStorage) wordsOfDomain(domainID int) []int {
	if domainID < 0 || domainID >= s.numberOfDomains {
		panic(errors.Errorf("should not access domain %v while numberOfDomains=%v", domainID, s.numberOfDomains))
	}
	return s.storage[domainID]
}

// Serialize writes the storage in its wire layout: int64 embedding
// count, int32 domain count, then each domain as an int32 size
// followed by that many int32 word ids, all big-endian.
func (s *DomainStorage) Serialize() []byte {
	s.initStorage()
	size := 8 + 4
	for _, words := range s.storage {
		size += 4 + 4*len(words)
	}
	bytes := make([]byte, size)
	binary.BigEndian.PutUint64(bytes[0:8], uint64(s.NumEmbeddings()))
	binary.BigEndian.PutUint32(bytes[8:12], uint32(s.numberOfDomains))
	off := 12
	for _, words := range s.storage {
		binary.BigEndian.PutUint32(bytes[off:off+4], uint32(len(words)))
		off += 4
		for _, w := range words {
			binary.BigEndian.PutUint32(bytes[off:off+4], uint32(w))
			off += 4
		}
	}
	return bytes
}

func (s *DomainStorage) MarshalBinary() ([]byte, error) {
	return s.Serialize(), nil
}

// UnmarshalBinary replaces s's contents with the serialized storage in
// bytes. On a malformed input s is reset to an empty single-domain
// state before the error is returned, so it can be reused.
func (s *DomainStorage) UnmarshalBinary(bytes []byte) error {
	s.clear()
	err := s.unmarshal(bytes)
	if err != nil {
		s.clear()
		return err
	}
	s.dirty.Store(true)
	s.initStorage()
	return nil
}

func (s *DomainStorage) unmarshal(bytes []byte) error {
	if len(bytes) < 12 {
		return errors.Errorf("domain storage header needs 12 bytes, got %v", len(bytes))
	}
	numEmbeddings := int64(binary.BigEndian.Uint64(bytes[0:8]))
	numberOfDomains := int(int32(binary.BigEndian.Uint32(bytes[8:12])))
	if numberOfDomains <= 0 {
		return errors.Errorf("serialized storage has %v domains", numberOfDomains)
	}
	s.setNumberOfDomains(numberOfDomains)
	off := 12
	for i := 0; i < numberOfDomains; i++ {
		if len(bytes) < off+4 {
			return errors.Errorf("truncated storage: missing size of domain %v", i)
		}
		domainSize := int(int32(binary.BigEndian.Uint32(bytes[off : off+4])))
		off += 4
		if domainSize < 0 || len(bytes) < off+4*domainSize {
			return errors.Errorf("truncated storage: domain %v claims %v entries", i, domainSize)
		}
		for j := 0; j < domainSize; j++ {
			s.domains[i].Add(int(binary.BigEndian.Uint32(bytes[off : off+4])))
			off += 4
		}
	}
	s.numEmbeddings.Store(numEmbeddings)
	return nil
}

func (s *DomainStorage) clear() {
	s.mu.Lock()
	s.setNumberOfDomains(1)
	s.numEmbeddings.Store(0)
	s.storage = nil
	s.domain0OrderedKeys = nil
	s.domainCounters = nil
	s.numberOfEnumerations = 0
	s.initialized = false
	s.dirty.Store(true)
	s.mu.Unlock()
}

// WriteInParts splits the storage across len(outputs) serialized
// chunks: part p holds the domain 0 words with wordID mod parts == p
// plus every other domain in full, so each chunk is itself a
// well-formed storage image and the originals merge back by
// aggregation. hasContent[p] reports whether part p got any domain 0
// words.
func (s *DomainStorage) WriteInParts(outputs []io.Writer, hasContent []bool) error {
	if len(outputs) != len(hasContent) {
		return errors.Errorf("%v outputs but %v content flags", len(outputs), len(hasContent))
	}
	if len(outputs) == 0 {
		return errors.Errorf("cannot write a storage into 0 parts")
	}
	s.initStorage()
	numParts := len(outputs)
	for p := 0; p < numParts; p++ {
		subset := make([]int, 0, len(s.storage[0])/numParts+1)
		for _, w := range s.storage[0] {
			if w%numParts == p {
				subset = append(subset, w)
			}
		}
		if len(subset) == 0 {
			hasContent[p] = false
			continue
		}
		hasContent[p] = true
		if _, err := outputs[p].Write(s.serializePart(subset)); err != nil {
			return err
		}
	}
	return nil
}

func (s *DomainStorage) serializePart(domain0 []int) []byte {
	size := 8 + 4 + 4 + 4*len(domain0)
	for i := 1; i < s.numberOfDomains; i++ {
		size += 4 + 4*len(s.storage[i])
	}
	bytes := make([]byte, size)
	binary.BigEndian.PutUint64(bytes[0:8], uint64(s.NumEmbeddings()))
	binary.BigEndian.PutUint32(bytes[8:12], uint32(s.numberOfDomains))
	off := 12
	write := func(words []int) {
		binary.BigEndian.PutUint32(bytes[off:off+4], uint32(len(words)))
		off += 4
		for _, w := range words {
			binary.BigEndian.PutUint32(bytes[off:off+4], uint32(w))
			off += 4
		}
	}
	write(domain0)
	for i := 1; i < s.numberOfDomains; i++ {
		write(s.storage[i])
	}
	return bytes
}

func (s *DomainStorage) String() string {
	sizes := make([]string, 0, s.numberOfDomains)
	for _, d := range s.domains {
		sizes = append(sizes, fmt.Sprintf("%v", d.Size()))
	}
	return fmt.Sprintf("DomainStorage{embeddings: %v, domains: [%v]}", s.NumEmbeddings(), strings.Join(sizes, " "))
}
