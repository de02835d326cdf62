package odag

import ()

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/timtadh/data-structures/errors"
)

import (
	"github.com/winkyWang/Arabesque/computation"
	"github.com/winkyWang/Arabesque/embedding"
	"github.com/winkyWang/Arabesque/graph"
	"github.com/winkyWang/Arabesque/pattern"
)

type stepKind int

const (
	stepDomain0 stepKind = iota
	stepDomainN
)

// enumStep is one frame of the backtracking stack. currentID is the
// global combination id reached before this frame's word was chosen;
// wordID is -1 until a word is committed. A stepDomain0 frame cursors
// the sorted domain 0 key array through index; a stepDomainN frame
// cursors its words slice through pos.
type enumStep struct {
	kind      stepKind
	currentID int64
	wordID    int
	index     int
	words     []int
	pos       int
}

// Reader is a resumable cursor over one storage's combination
// universe, restricted to the blocks owned by one partition. It is
// single-threaded: exactly one goroutine drives it to exhaustion.
type Reader struct {
	storage *DomainStorage
	pat     pattern.Pattern
	comp    computation.Computation
	g       graph.MainGraph
	emb     embedding.Embedding
	extend  extender

	numberOfEnumerations int64
	blockSize            int64
	partitionID          int
	numPartitions        int
	superstep            int

	stack        []*enumStep
	targetEnumID int64

	report                         *StorageReport
	numCompleteEnumerationsVisited int64
	numSpuriousEmbeddings          int64
}

// GetReader builds a reader over the storage's current snapshot for
// the worker identified by comp.PartitionID(). The domains must not be
// mutated while the reader is live.
func (s *DomainStorage) GetReader(pat pattern.Pattern, comp computation.Computation, numPartitions, numBlocks, maxBlockSize int) (*Reader, error) {
	if numPartitions <= 0 || numBlocks <= 0 || maxBlockSize <= 0 {
		return nil, errors.Errorf(
			"reader parameters must be positive, got numPartitions=%v numBlocks=%v maxBlockSize=%v",
			numPartitions, numBlocks, maxBlockSize)
	}
	partitionID := comp.PartitionID()
	if partitionID < 0 || partitionID >= numPartitions {
		return nil, errors.Errorf("partition %v outside [0, %v)", partitionID, numPartitions)
	}
	s.initStorage()
	emb, err := comp.NewEmbedding()
	if err != nil {
		return nil, err
	}
	r := &Reader{
		storage:              s,
		pat:                  pat,
		comp:                 comp,
		g:                    comp.Graph(),
		emb:                  emb,
		numberOfEnumerations: s.numberOfEnumerations,
		partitionID:          partitionID,
		numPartitions:        numPartitions,
		superstep:            comp.Step(),
		targetEnumID:         -1,
		report:               newStorageReport(s.numberOfDomains),
	}
	r.blockSize = r.numberOfEnumerations / int64(numBlocks)
	if r.blockSize < 1 {
		r.blockSize = 1
	}
	if r.blockSize > int64(maxBlockSize) {
		r.blockSize = int64(maxBlockSize)
	}
	singleton := roaring.New()
	switch e := emb.(type) {
	case *embedding.VertexInduced:
		if s.numberOfDomains != pat.NumberOfVertices() {
			return nil, errors.Errorf(
				"vertex-induced pattern has %v positions, storage has %v domains",
				pat.NumberOfVertices(), s.numberOfDomains)
		}
		r.extend = &vertexExtender{comp: comp, emb: e, singleton: singleton}
	case *embedding.EdgeInduced:
		if s.numberOfDomains != pattern.NumberOfEdges(pat) {
			return nil, errors.Errorf(
				"edge-induced pattern has %v positions, storage has %v domains",
				pattern.NumberOfEdges(pat), s.numberOfDomains)
		}
		r.extend = &edgeExtender{
			comp:      comp,
			g:         r.g,
			pat:       pat,
			emb:       e,
			singleton: singleton,
			labelled:  r.g.EdgeLabelled(),
		}
	default:
		return nil, errors.Errorf("incompatible embedding type %T", emb)
	}
	r.stack = append(r.stack, &enumStep{kind: stepDomain0, currentID: 0, wordID: -1, index: -1})
	return r, nil
}

// GetMultiPatternReader always fails: a simple domain storage encodes
// a single pattern's embeddings.
func (s *DomainStorage) GetMultiPatternReader(pats []pattern.Pattern, comp computation.Computation, numPartitions, numBlocks, maxBlockSize int) (*Reader, error) {
	return nil, errors.Errorf("multi-pattern reading is not available with a simple domain storage")
}

// Next advances to the next valid complete embedding owned by this
// reader's partition. The returned embedding is the reader's reusable
// instance: its contents are only valid until the next call, copy them
// to keep them.
func (r *Reader) Next() (embedding.Embedding, bool) {
	if r.moveNext() {
		return r.emb, true
	}
	return nil, false
}

// EnumerationID is the global combination id of the embedding last
// returned by Next, or -1 before the first call.
func (r *Reader) EnumerationID() int64 {
	return r.targetEnumID
}

// Report finalizes and returns the reader's enumeration statistics.
func (r *Reader) Report() *StorageReport {
	r.report.NumEnumerations = r.numberOfEnumerations
	r.report.NumCompleteEnumerationsVisited = r.numCompleteEnumerationsVisited
	r.report.NumSpuriousEmbeddings = r.numSpuriousEmbeddings
	r.report.NumActualEmbeddings = r.storage.NumEmbeddings()
	for i := 0; i < r.storage.numberOfDomains; i++ {
		r.report.DomainSize[i] = len(r.storage.wordsOfDomain(i))
	}
	return r.report
}

func (r *Reader) Close() error {
	return nil
}

func (r *Reader) moveNext() bool {
	for {
		r.targetEnumID = r.nextEnumerationID(r.targetEnumID)
		if r.targetEnumID == -1 {
			return false
		}
		if r.enumerationWithStack(r.storage.numberOfDomains) {
			return true
		}
	}
}

// nextEnumerationID is the smallest global id strictly greater than
// enumID that falls in a block owned by this partition, or -1 when the
// universe is exhausted.
func (r *Reader) nextEnumerationID(enumID int64) int64 {
	for enumID < r.numberOfEnumerations-1 {
		enumID++
		blockID := enumID / r.blockSize
		if BlockOwner(blockID, r.numPartitions) == r.partitionID {
			return enumID
		}
		skip := int64(BlocksToSkip(blockID, r.partitionID, r.numPartitions))
		// -1 because the loop increments first
		enumID = (blockID+skip)*r.blockSize - 1
	}
	return -1
}

// enumerationWithStack rebuilds the embedding for targetEnumID,
// reusing whatever prefix of the stack still lies below the target.
// Returns true when the reconstructed combination is a valid complete
// embedding.
func (r *Reader) enumerationWithStack(targetSize int) bool {
	currentID := int64(0)
	for len(r.stack) > 0 && r.targetEnumID >= currentID {
		last := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		depth := len(r.stack)
		currentID = last.currentID
		if last.wordID >= 0 {
			currentID += r.storage.domainCounters[depth]
			r.emb.RemoveLastWord()
		}
		counter := r.storage.domainCounters[depth]
		switch last.kind {
		case stepDomain0:
			keys := r.storage.domain0OrderedKeys
			for idx := last.index + 1; idx < len(keys); idx++ {
				wordID := keys[idx]
				if (depth < targetSize-1 && currentID+counter > r.targetEnumID) ||
					(depth == targetSize-1 && currentID == r.targetEnumID) {
					last.index = idx
					last.currentID = currentID
					last.wordID = wordID
					if r.commit(last, wordID, depth, counter) {
						if len(r.stack) != targetSize {
							r.stack = append(r.stack, &enumStep{
								kind:      stepDomainN,
								currentID: currentID,
								wordID:    -1,
								words:     r.storage.wordsOfDomain(1),
								pos:       -1,
							})
						}
						break
					}
					return false
				}
				currentID += counter
			}
		case stepDomainN:
			var nextWords []int
			if depth+1 != r.storage.numberOfDomains {
				nextWords = r.storage.wordsOfDomain(depth + 1)
			}
			for i := last.pos + 1; i < len(last.words); i++ {
				wordID := last.words[i]
				if (depth < targetSize-1 && currentID+counter > r.targetEnumID) ||
					(depth == targetSize-1 && currentID == r.targetEnumID) {
					last.currentID = currentID
					last.wordID = wordID
					last.pos = i
					if r.commit(last, wordID, depth, counter) {
						if len(r.stack) != targetSize {
							r.stack = append(r.stack, &enumStep{
								kind:      stepDomainN,
								currentID: currentID,
								wordID:    -1,
								words:     nextWords,
								pos:       -1,
							})
						}
						break
					}
					return false
				}
				currentID += counter
			}
		default:
			panic(errors.Errorf("unknown enumeration step kind %v", last.kind))
		}
		if len(r.stack) == targetSize && r.stack[len(r.stack)-1].wordID >= 0 {
			break
		}
	}
	r.numCompleteEnumerationsVisited++
	valid := r.testCompleteEmbedding()
	sized := r.emb.NumWords() == targetSize
	if !(valid && sized) {
		r.numSpuriousEmbeddings++
	}
	return valid && sized
}

// commit pushes last back with its chosen word. On a failed extension
// every combination under the word is invalid: the target id jumps to
// the end of the word's range, and the word is committed anyway so the
// next pop rewinds it through the ordinary path. Reports whether the
// extension succeeded.
func (r *Reader) commit(last *enumStep, wordID int, depth int, counter int64) bool {
	ok := r.extend.tryAddWord(wordID)
	if !ok {
		r.targetEnumID = last.currentID + counter - 1
		r.emb.AddWord(wordID)
	}
	r.stack = append(r.stack, last)
	if !ok {
		r.numSpuriousEmbeddings++
		r.report.Pruned[depth]++
		return false
	}
	r.report.Explored[depth]++
	return true
}

// testCompleteEmbedding checks a full-size combination: exact
// vertex/edge counts against the pattern, pattern-edge consistency for
// vertex-induced embeddings, then the computation's acceptance gates.
func (r *Reader) testCompleteEmbedding() bool {
	if r.emb.NumVertices() != r.pat.NumberOfVertices() {
		return false
	}
	if vemb, ok := r.emb.(*embedding.VertexInduced); ok {
		patternEdges := r.pat.Edges()
		if vemb.NumEdges() != len(patternEdges) {
			return false
		}
		verts := vemb.Vertices()
		edges := vemb.Edges()
		for i := range patternEdges {
			pe := &patternEdges[i]
			e := r.g.Edge(edges[i])
			if !e.HasVertex(verts[pe.SrcPos]) || !e.HasVertex(verts[pe.TargPos]) {
				return false
			}
		}
	}
	return r.comp.Filter(r.emb) && r.comp.ShouldExpand(r.emb)
}

// extender is the embedding-kind specific extension legality check,
// chosen once at reader construction.
type extender interface {
	tryAddWord(wordID int) bool
}

type vertexExtender struct {
	comp      computation.Computation
	emb       *embedding.VertexInduced
	singleton *roaring.Bitmap
}

func (x *vertexExtender) tryAddWord(wordID int) bool {
	for _, v := range x.emb.Vertices() {
		if v == wordID {
			return false
		}
	}
	x.singleton.Clear()
	x.singleton.Add(uint32(wordID))
	x.comp.FilterCandidates(x.emb, x.singleton)
	if x.singleton.IsEmpty() {
		return false
	}
	if !x.comp.FilterWord(x.emb, wordID) {
		return false
	}
	x.emb.AddWord(wordID)
	return true
}

type edgeExtender struct {
	comp      computation.Computation
	g         graph.MainGraph
	pat       pattern.Pattern
	emb       *embedding.EdgeInduced
	singleton *roaring.Bitmap
	labelled  bool
}

func (x *edgeExtender) tryAddWord(wordID int) bool {
	x.singleton.Clear()
	x.singleton.Add(uint32(wordID))
	x.comp.FilterCandidates(x.emb, x.singleton)
	if x.singleton.IsEmpty() {
		return false
	}
	pe := &x.pat.Edges()[x.emb.NumWords()]
	// the pattern edge must connect two already-determined positions;
	// probe the vertex view with the word tentatively added
	x.emb.AddWord(wordID)
	verts := x.emb.Vertices()
	determined := pe.SrcPos < len(verts) && pe.TargPos < len(verts)
	var src, targ int
	if determined {
		src = verts[pe.SrcPos]
		targ = verts[pe.TargPos]
	}
	x.emb.RemoveLastWord()
	if !determined {
		return false
	}
	if !x.edgeExists(src, targ, pe, wordID) {
		return false
	}
	if !x.comp.FilterWord(x.emb, wordID) {
		return false
	}
	x.emb.AddWord(wordID)
	return true
}

func (x *edgeExtender) edgeExists(src, targ int, pe *pattern.Edge, wordID int) bool {
	found := false
	x.g.ForEachEdgeBetween(src, targ, func(eid int) {
		if found || eid != wordID {
			return
		}
		if x.labelled && x.g.Edge(eid).Label != pe.Label {
			return
		}
		found = true
	})
	return found
}
