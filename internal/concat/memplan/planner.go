// Package memplan derives the per-file cache threshold from a total
// memory ceiling. Cache memory is the dominant cost of a run: every file
// at or below the threshold is held in memory for all of its passes, so
// the worst case is threshold * file count plus the two chunk buffers.
package memplan

import "github.com/Sumatoshi-tech/replicat/pkg/units"

// BaseOverhead is the fixed allowance for the Go runtime and incidental
// allocations outside the caches and chunk buffers.
const BaseOverhead = 32 * units.MiB

// Planner resolves a memory budget to an effective cache threshold.
type Planner struct {
	// MemoryBudget is the total ceiling in bytes. Zero or negative means
	// no ceiling: DefaultThreshold wins.
	MemoryBudget int64

	// FileCount is the number of distinct input files.
	FileCount int

	// ChunkCapacity is the size of one chunk buffer. Two are live at once.
	ChunkCapacity int64

	// DefaultThreshold is the threshold used when no budget is set.
	DefaultThreshold int64
}

// CacheThreshold returns the per-file cache limit. Under a budget the
// available memory is split evenly across files; the result never rises
// above DefaultThreshold and never falls below one chunk capacity, since a
// file that fits a single chunk buffer is effectively buffered wholesale
// during any read anyway.
func (p *Planner) CacheThreshold() int64 {
	if p.MemoryBudget <= 0 || p.FileCount <= 0 {
		return p.DefaultThreshold
	}

	available := p.MemoryBudget - BaseOverhead - 2*p.ChunkCapacity
	if available < 0 {
		available = 0
	}

	threshold := available / int64(p.FileCount)

	if threshold > p.DefaultThreshold {
		threshold = p.DefaultThreshold
	}

	if threshold < p.ChunkCapacity {
		threshold = p.ChunkCapacity
	}

	return threshold
}

// PeakCacheMemory estimates the worst-case cache footprint for the given
// threshold: every file exactly at the limit.
func PeakCacheMemory(threshold int64, fileCount int) int64 {
	return threshold * int64(fileCount)
}
