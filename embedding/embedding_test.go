package embedding

import "testing"
import "github.com/stretchr/testify/assert"

import (
	"github.com/winkyWang/Arabesque/graph"
)

func triangle(t *testing.T) (*graph.Memory, []int) {
	g := graph.NewMemory(false)
	for i := 0; i < 3; i++ {
		g.AddVertex(0)
	}
	eids := make([]int, 0, 3)
	for _, pair := range [][2]int{{0, 1}, {1, 2}, {2, 0}} {
		id, err := g.AddEdge(pair[0], pair[1], 0)
		if err != nil {
			t.Fatal(err)
		}
		eids = append(eids, id)
	}
	return g, eids
}

func TestVertexInducedMaintainsTheEdgeView(t *testing.T) {
	x := assert.New(t)
	g, eids := triangle(t)
	emb := NewVertexInduced(g)

	emb.AddWord(0)
	x.Equal(1, emb.NumWords())
	x.Equal(0, emb.NumEdges())

	emb.AddWord(1)
	x.Equal([]int{0, 1}, emb.Vertices())
	x.Equal([]int{eids[0]}, emb.Edges())

	emb.AddWord(2)
	x.Equal(3, emb.NumVertices())
	// vertex 2 closes the triangle: both its edges join at once
	x.Equal([]int{eids[0], eids[1], eids[2]}, emb.Edges())
}

func TestVertexInducedRemoveLastWordIsAnExactInverse(t *testing.T) {
	x := assert.New(t)
	g, eids := triangle(t)
	emb := NewVertexInduced(g)
	emb.AddWord(0)
	emb.AddWord(1)
	emb.AddWord(2)

	emb.RemoveLastWord()
	x.Equal([]int{0, 1}, emb.Words())
	x.Equal([]int{eids[0]}, emb.Edges())

	emb.AddWord(2)
	x.Equal([]int{eids[0], eids[1], eids[2]}, emb.Edges())

	emb.RemoveLastWord()
	emb.RemoveLastWord()
	emb.RemoveLastWord()
	x.Equal(0, emb.NumWords())
	x.Equal(0, emb.NumEdges())
	// removing past empty is a no-op
	emb.RemoveLastWord()
	x.Equal(0, emb.NumWords())
}

func TestEdgeInducedMaintainsTheVertexView(t *testing.T) {
	x := assert.New(t)
	g, eids := triangle(t)
	emb := NewEdgeInduced(g)

	emb.AddWord(eids[0])
	x.Equal([]int{0, 1}, emb.Vertices())

	emb.AddWord(eids[1])
	// edge (1,2) only contributes the unseen endpoint
	x.Equal([]int{0, 1, 2}, emb.Vertices())
	x.Equal([]int{eids[0], eids[1]}, emb.Edges())

	emb.AddWord(eids[2])
	x.Equal([]int{0, 1, 2}, emb.Vertices(), "the closing edge adds no vertices")
	x.Equal(3, emb.NumEdges())

	emb.RemoveLastWord()
	x.Equal([]int{0, 1, 2}, emb.Vertices())
	emb.RemoveLastWord()
	x.Equal([]int{0, 1}, emb.Vertices())
	x.Equal([]int{eids[0]}, emb.Words())
}

func TestEmbeddingStrings(t *testing.T) {
	x := assert.New(t)
	g, eids := triangle(t)
	v := NewVertexInduced(g)
	v.AddWord(0)
	v.AddWord(1)
	x.Equal("vertices<0 1>", v.String())
	e := NewEdgeInduced(g)
	e.AddWord(eids[2])
	x.Equal("edges<2>", e.String())
}
