package computation

import ()

import (
	"github.com/RoaringBitmap/roaring/v2"
)

import (
	"github.com/winkyWang/Arabesque/embedding"
	"github.com/winkyWang/Arabesque/graph"
	"github.com/winkyWang/Arabesque/pattern"
)

// Computation is the mining logic and job context supplied by the
// user of the enumeration core. One Computation instance belongs to
// one worker; the reader calls its filters from a single goroutine.
type Computation interface {
	// Graph is the data graph every reader constructed with this
	// computation runs against.
	Graph() graph.MainGraph

	// NewEmbedding creates the reusable embedding a reader mutates
	// in place (vertex- or edge-induced, per the mining task).
	NewEmbedding() (embedding.Embedding, error)

	// Step is the current superstep of the distributed job.
	Step() int

	// PartitionID is this worker's id in [0, number of workers).
	PartitionID() int

	// FilterCandidates prunes candidates down to the words that may
	// legally extend emb, mutating the set in place.
	FilterCandidates(emb embedding.Embedding, candidates *roaring.Bitmap)

	// FilterWord reports whether extending emb with word keeps it
	// canonical.
	FilterWord(emb embedding.Embedding, word int) bool

	// Filter is the global acceptance gate for a complete embedding.
	Filter(emb embedding.Embedding) bool

	// ShouldExpand reports whether a complete embedding should feed
	// the next expansion round.
	ShouldExpand(emb embedding.Embedding) bool

	// AggregationFilter admits or drops a whole pattern at flush
	// time.
	AggregationFilter(p pattern.Pattern) bool
}
