package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter answers "has this content been shared" without a database round trip.
// It only knows ids this process added; true may be a false positive.
type BloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewBloomFilter sizes the filter for expectedItems at the given false positive rate (e.g. 0.01).
func NewBloomFilter(expectedItems uint, falsePositiveRate float64) *BloomFilter {
	return &BloomFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (b *BloomFilter) Add(contentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(contentID)
}

func (b *BloomFilter) MightExist(contentID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(contentID)
}

// Count estimates how many distinct ids were added.
func (b *BloomFilter) Count() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.ApproximatedSize()
}
