package pattern

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

import (
	"github.com/timtadh/data-structures/errors"
)

// Edge connects two vertex positions of a pattern. Positions index the
// pattern's vertices in the order they are discovered by the pattern's
// edge sequence.
type Edge struct {
	SrcPos  int
	TargPos int
	Label   int
}

// Pattern is the canonical subgraph topology a storage is keyed by.
// Consumed read-only; Label() must be deterministic as it keys flush
// units and stash entries.
type Pattern interface {
	NumberOfVertices() int
	Edges() []Edge
	Label() []byte
}

func NumberOfEdges(p Pattern) int {
	return len(p.Edges())
}

// Basic is a plain positional pattern.
type Basic struct {
	V int
	E []Edge
}

func (p *Basic) NumberOfVertices() int {
	return p.V
}

func (p *Basic) Edges() []Edge {
	return p.E
}

func (p *Basic) Label() []byte {
	size := 8 + len(p.E)*12
	label := make([]byte, size)
	binary.BigEndian.PutUint32(label[0:4], uint32(len(p.E)))
	binary.BigEndian.PutUint32(label[4:8], uint32(p.V))
	off := 8
	for i := range p.E {
		e := &p.E[i]
		s := off + i*12
		binary.BigEndian.PutUint32(label[s:s+4], uint32(e.SrcPos))
		binary.BigEndian.PutUint32(label[s+4:s+8], uint32(e.TargPos))
		binary.BigEndian.PutUint32(label[s+8:s+12], uint32(e.Label))
	}
	return label
}

func (p *Basic) String() string {
	E := make([]string, 0, len(p.E))
	for i := range p.E {
		E = append(E, fmt.Sprintf("[%v-%v:%v]", p.E[i].SrcPos, p.E[i].TargPos, p.E[i].Label))
	}
	return fmt.Sprintf("{%v:%v}%v", len(p.E), p.V, strings.Join(E, ""))
}

// Parse reads the text form "<vertices>;<src>-<targ>[:<label>],...",
// e.g. "3;0-1,1-2" for a path on three positions.
func Parse(s string) (*Basic, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ";", 2)
	if len(parts) != 2 {
		return nil, errors.Errorf("pattern %q must look like '<vertices>;<edges>'", s)
	}
	v, err := strconv.Atoi(parts[0])
	if err != nil || v <= 0 {
		return nil, errors.Errorf("pattern %q has a bad vertex count %q", s, parts[0])
	}
	edges := make([]Edge, 0, 5)
	for _, es := range strings.Split(parts[1], ",") {
		es = strings.TrimSpace(es)
		if es == "" {
			continue
		}
		label := 0
		if colon := strings.IndexByte(es, ':'); colon >= 0 {
			label, err = strconv.Atoi(es[colon+1:])
			if err != nil {
				return nil, errors.Errorf("pattern edge %q has a bad label", es)
			}
			es = es[:colon]
		}
		ends := strings.SplitN(es, "-", 2)
		if len(ends) != 2 {
			return nil, errors.Errorf("pattern edge %q must look like '<src>-<targ>[:<label>]'", es)
		}
		src, err := strconv.Atoi(ends[0])
		if err != nil {
			return nil, errors.Errorf("pattern edge %q has a bad src position", es)
		}
		targ, err := strconv.Atoi(ends[1])
		if err != nil {
			return nil, errors.Errorf("pattern edge %q has a bad targ position", es)
		}
		if src < 0 || src >= v || targ < 0 || targ >= v {
			return nil, errors.Errorf("pattern edge %q references a position outside [0, %v)", es, v)
		}
		edges = append(edges, Edge{SrcPos: src, TargPos: targ, Label: label})
	}
	if len(edges) == 0 {
		return nil, errors.Errorf("pattern %q has no edges", s)
	}
	return &Basic{V: v, E: edges}, nil
}
