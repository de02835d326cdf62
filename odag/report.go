package odag

import (
	"fmt"
	"strings"
)

// StorageReport is the per-reader enumeration statistics, finalized
// once when the reader is done. Explored and Pruned count extension
// attempts per domain depth; spurious counts combinations that were
// structurally reachable but semantically invalid.
type StorageReport struct {
	DomainSize                     []int
	Explored                       []int64
	Pruned                         []int64
	NumEnumerations                int64
	NumCompleteEnumerationsVisited int64
	NumSpuriousEmbeddings          int64
	NumActualEmbeddings            int64
}

func newStorageReport(numberOfDomains int) *StorageReport {
	return &StorageReport{
		DomainSize: make([]int, numberOfDomains),
		Explored:   make([]int64, numberOfDomains),
		Pruned:     make([]int64, numberOfDomains),
	}
}

func (r *StorageReport) String() string {
	domains := make([]string, 0, len(r.DomainSize))
	for i := range r.DomainSize {
		domains = append(domains, fmt.Sprintf(
			"{size: %v, explored: %v, pruned: %v}",
			r.DomainSize[i], r.Explored[i], r.Pruned[i],
		))
	}
	return fmt.Sprintf(
		"StorageReport{universe: %v, visited: %v, spurious: %v, embeddings: %v, domains: [%v]}",
		r.NumEnumerations,
		r.NumCompleteEnumerationsVisited,
		r.NumSpuriousEmbeddings,
		r.NumActualEmbeddings,
		strings.Join(domains, " "),
	)
}
