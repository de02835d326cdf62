package graph

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

import (
	"github.com/timtadh/data-structures/errors"
)

// Memory is an in-memory undirected labelled multigraph. Vertices and
// edges get dense ids in insertion order. Construction is
// single-threaded; once built the graph is safe for concurrent reads.
type Memory struct {
	labelled bool
	vertices []int
	edges    []Edge
	adj      [][]int
}

func NewMemory(labelled bool) *Memory {
	return &Memory{
		labelled: labelled,
		vertices: make([]int, 0, 10),
		edges:    make([]Edge, 0, 10),
		adj:      make([][]int, 0, 10),
	}
}

func (g *Memory) AddVertex(label int) int {
	id := len(g.vertices)
	g.vertices = append(g.vertices, label)
	g.adj = append(g.adj, make([]int, 0, 5))
	return id
}

func (g *Memory) AddEdge(src, targ, label int) (int, error) {
	if src < 0 || src >= len(g.vertices) || targ < 0 || targ >= len(g.vertices) {
		return 0, errors.Errorf("edge (%v, %v) references an unknown vertex", src, targ)
	}
	id := len(g.edges)
	g.edges = append(g.edges, Edge{ID: id, Src: src, Targ: targ, Label: label})
	g.adj[src] = append(g.adj[src], id)
	if targ != src {
		g.adj[targ] = append(g.adj[targ], id)
	}
	return id, nil
}

func (g *Memory) NumVertices() int {
	return len(g.vertices)
}

func (g *Memory) NumEdges() int {
	return len(g.edges)
}

func (g *Memory) VertexLabel(id int) int {
	return g.vertices[id]
}

func (g *Memory) Edge(id int) Edge {
	return g.edges[id]
}

func (g *Memory) ForEachEdgeBetween(src, targ int, do func(edgeId int)) {
	if src < 0 || src >= len(g.adj) {
		return
	}
	for _, eid := range g.adj[src] {
		e := &g.edges[eid]
		if (e.Src == src && e.Targ == targ) || (e.Src == targ && e.Targ == src) {
			do(eid)
		}
	}
}

func (g *Memory) EdgeLabelled() bool {
	return g.labelled
}

// Load reads a line-oriented graph description:
//
//	v <label>
//	e <src> <targ> [<label>]
//
// Vertices take ids in file order. Blank lines and lines starting with
// # are skipped.
func Load(input io.Reader, labelled bool) (*Memory, error) {
	g := NewMemory(labelled)
	scanner := bufio.NewScanner(input)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) != 2 {
				return nil, errors.Errorf("line %v: expected 'v <label>' got %v", lineno, line)
			}
			label, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Errorf("line %v: bad vertex label %v", lineno, fields[1])
			}
			g.AddVertex(label)
		case "e":
			if len(fields) != 3 && len(fields) != 4 {
				return nil, errors.Errorf("line %v: expected 'e <src> <targ> [<label>]' got %v", lineno, line)
			}
			src, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Errorf("line %v: bad edge src %v", lineno, fields[1])
			}
			targ, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Errorf("line %v: bad edge targ %v", lineno, fields[2])
			}
			label := 0
			if len(fields) == 4 {
				label, err = strconv.Atoi(fields[3])
				if err != nil {
					return nil, errors.Errorf("line %v: bad edge label %v", lineno, fields[3])
				}
			}
			if _, err := g.AddEdge(src, targ, label); err != nil {
				return nil, errors.Errorf("line %v: %v", lineno, err)
			}
		default:
			return nil, errors.Errorf("line %v: unknown record type %v", lineno, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}
