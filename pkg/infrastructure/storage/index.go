package storage

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// Index is an exact string set fronted by a Bloom filter. Misses, the common
// case when scanning millions of fresh candidates, are answered by the filter
// without touching the map. It is not safe for concurrent use.
type Index struct {
	filter  *bloom.BloomFilter
	members map[string]struct{}
}

// Config holds Bloom filter configuration
type Config struct {
	Size              uint
	FalsePositiveRate float64
}

// DefaultConfig is sized for a few million identifiers
func DefaultConfig() Config {
	return Config{Size: 1 << 22, FalsePositiveRate: 0.01}
}

// NewIndex creates an empty index
func NewIndex(config Config) *Index {
	if config.Size == 0 {
		config.Size = DefaultConfig().Size
	}
	if config.FalsePositiveRate <= 0 || config.FalsePositiveRate >= 1 {
		config.FalsePositiveRate = DefaultConfig().FalsePositiveRate
	}
	return &Index{
		filter:  bloom.NewWithEstimates(config.Size, config.FalsePositiveRate),
		members: make(map[string]struct{}),
	}
}

// Contains checks if an identifier is in the set
func (x *Index) Contains(id string) bool {
	if !x.filter.TestString(id) {
		return false
	}
	_, ok := x.members[id]
	return ok
}

// Add inserts an identifier and reports whether it was new
func (x *Index) Add(id string) bool {
	if x.Contains(id) {
		return false
	}
	x.filter.AddString(id)
	x.members[id] = struct{}{}
	return true
}

// Len returns the number of distinct identifiers
func (x *Index) Len() int {
	return len(x.members)
}
