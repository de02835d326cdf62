package graph

import ()

// Edge is an undirected labelled edge of the data graph. Src and Targ
// record the orientation the edge was loaded with; matching treats the
// edge as connecting the pair in either direction.
type Edge struct {
	ID    int
	Src   int
	Targ  int
	Label int
}

func (e *Edge) HasVertex(v int) bool {
	return e.Src == v || e.Targ == v
}

// MainGraph is the graph store the enumeration reader runs against.
// Implementations must be safe for concurrent readers; the reader
// never mutates the graph.
type MainGraph interface {
	NumVertices() int
	NumEdges() int
	// Edge panics if id is out of range. Edge ids are dense in
	// [0, NumEdges()).
	Edge(id int) Edge
	// ForEachEdgeBetween calls do with the id of every edge
	// connecting src and targ (in either orientation).
	ForEachEdgeBetween(src, targ int, do func(edgeId int))
	// EdgeLabelled reports whether edge labels are meaningful for
	// this graph. Unlabelled graphs carry label 0 on every edge.
	EdgeLabelled() bool
}
