package odag

import (
	"sync"
)

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Domain is the candidate set for one pattern position: an append-only
// set of non-negative word ids. Adds are safe from many goroutines;
// each domain carries its own lock so producers touching different
// domains never contend. Reads (Size, Words, Each) take the same lock
// and see a consistent snapshot.
type Domain struct {
	mu    sync.Mutex
	words *roaring.Bitmap
}

func newDomain() *Domain {
	return &Domain{words: roaring.New()}
}

func (d *Domain) Add(word int) {
	d.mu.Lock()
	d.words.Add(uint32(word))
	d.mu.Unlock()
}

func (d *Domain) Has(word int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.words.Contains(uint32(word))
}

func (d *Domain) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.words.GetCardinality())
}

// Words returns the domain's ids in ascending order.
func (d *Domain) Words() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	arr := d.words.ToArray()
	words := make([]int, len(arr))
	for i, w := range arr {
		words[i] = int(w)
	}
	return words
}

// Each visits the domain's ids in ascending order.
func (d *Domain) Each(do func(word int)) {
	for _, w := range d.Words() {
		do(w)
	}
}

func (d *Domain) clear() {
	d.mu.Lock()
	d.words.Clear()
	d.mu.Unlock()
}
