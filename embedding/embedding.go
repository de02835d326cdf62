package embedding

import (
	"fmt"
	"strings"
)

import (
	"github.com/winkyWang/Arabesque/graph"
)

// Embedding is a partial or complete assignment of graph words
// (vertex or edge ids) to pattern positions. Implementations are
// mutable and reused in place by the enumeration reader: AddWord and
// RemoveLastWord must be exact inverses, and callers must not retain
// the slices returned by Words, Vertices, or Edges across mutations —
// copy what you need to keep.
type Embedding interface {
	Words() []int
	NumWords() int
	AddWord(word int)
	RemoveLastWord()
	Vertices() []int
	NumVertices() int
	Edges() []int
	NumEdges() int
}

func contains(xs []int, x int) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}

func format(kind string, words []int) string {
	strs := make([]string, 0, len(words))
	for _, w := range words {
		strs = append(strs, fmt.Sprintf("%v", w))
	}
	return fmt.Sprintf("%v<%v>", kind, strings.Join(strs, " "))
}

// VertexInduced maps each pattern position to a vertex. The edge view
// holds every graph edge between embedded vertices and is maintained
// incrementally as words are added and removed.
type VertexInduced struct {
	g            graph.MainGraph
	words        []int
	edges        []int
	edgesPerWord []int
}

func NewVertexInduced(g graph.MainGraph) *VertexInduced {
	return &VertexInduced{
		g:            g,
		words:        make([]int, 0, 10),
		edges:        make([]int, 0, 10),
		edgesPerWord: make([]int, 0, 10),
	}
}

func (emb *VertexInduced) Words() []int {
	return emb.words
}

func (emb *VertexInduced) NumWords() int {
	return len(emb.words)
}

func (emb *VertexInduced) AddWord(word int) {
	added := 0
	for _, u := range emb.words {
		emb.g.ForEachEdgeBetween(u, word, func(eid int) {
			emb.edges = append(emb.edges, eid)
			added++
		})
	}
	emb.words = append(emb.words, word)
	emb.edgesPerWord = append(emb.edgesPerWord, added)
}

func (emb *VertexInduced) RemoveLastWord() {
	last := len(emb.words) - 1
	if last < 0 {
		return
	}
	emb.edges = emb.edges[:len(emb.edges)-emb.edgesPerWord[last]]
	emb.edgesPerWord = emb.edgesPerWord[:last]
	emb.words = emb.words[:last]
}

func (emb *VertexInduced) Vertices() []int {
	return emb.words
}

func (emb *VertexInduced) NumVertices() int {
	return len(emb.words)
}

func (emb *VertexInduced) Edges() []int {
	return emb.edges
}

func (emb *VertexInduced) NumEdges() int {
	return len(emb.edges)
}

func (emb *VertexInduced) String() string {
	return format("vertices", emb.words)
}

// EdgeInduced maps each pattern position to an edge. The vertex view
// lists endpoint vertices in first-appearance order, which is the
// order pattern positions are discovered by the pattern edge sequence.
type EdgeInduced struct {
	g               graph.MainGraph
	words           []int
	vertices        []int
	verticesPerWord []int
}

func NewEdgeInduced(g graph.MainGraph) *EdgeInduced {
	return &EdgeInduced{
		g:               g,
		words:           make([]int, 0, 10),
		vertices:        make([]int, 0, 10),
		verticesPerWord: make([]int, 0, 10),
	}
}

func (emb *EdgeInduced) Words() []int {
	return emb.words
}

func (emb *EdgeInduced) NumWords() int {
	return len(emb.words)
}

func (emb *EdgeInduced) AddWord(word int) {
	e := emb.g.Edge(word)
	added := 0
	if !contains(emb.vertices, e.Src) {
		emb.vertices = append(emb.vertices, e.Src)
		added++
	}
	if !contains(emb.vertices, e.Targ) {
		emb.vertices = append(emb.vertices, e.Targ)
		added++
	}
	emb.words = append(emb.words, word)
	emb.verticesPerWord = append(emb.verticesPerWord, added)
}

func (emb *EdgeInduced) RemoveLastWord() {
	last := len(emb.words) - 1
	if last < 0 {
		return
	}
	emb.vertices = emb.vertices[:len(emb.vertices)-emb.verticesPerWord[last]]
	emb.verticesPerWord = emb.verticesPerWord[:last]
	emb.words = emb.words[:last]
}

func (emb *EdgeInduced) Vertices() []int {
	return emb.vertices
}

func (emb *EdgeInduced) NumVertices() int {
	return len(emb.vertices)
}

func (emb *EdgeInduced) Edges() []int {
	return emb.words
}

func (emb *EdgeInduced) NumEdges() int {
	return len(emb.words)
}

func (emb *EdgeInduced) String() string {
	return format("edges", emb.words)
}
