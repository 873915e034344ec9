// Package concat implements the buffered copy-and-repeat engine behind
// replicat: it streams a planned sequence of input-file passes into one
// output stream, caching small files in memory across passes and re-reading
// large ones, with two fixed-size chunk buffers alternating between the
// read and write sides.
package concat

import "github.com/Sumatoshi-tech/replicat/pkg/units"

// DefaultChunkCapacity is the chunk buffer size used when the caller does
// not override it. Large enough to amortize syscall cost on sequential
// writes, small enough that two in-flight buffers stay cheap.
const DefaultChunkCapacity = 4 * units.MiB

// DefaultCacheThreshold is the per-file size limit below which a file is
// held in memory across passes. Total cache memory is bounded by
// threshold * number_of_files regardless of repeat counts.
const DefaultCacheThreshold = 16 * units.MiB

// ChunkBuffer is a reusable fixed-capacity byte buffer. Two instances
// rotate between the reader (filling) and the writer (draining); the
// filled length never exceeds the capacity set at construction.
type ChunkBuffer struct {
	data []byte
	n    int
}

// NewChunkBuffer allocates a buffer of the given capacity. Panics if the
// capacity is not positive; callers validate configuration first.
func NewChunkBuffer(capacity int) *ChunkBuffer {
	if capacity <= 0 {
		panic("concat: chunk buffer capacity must be positive")
	}

	return &ChunkBuffer{data: make([]byte, capacity)}
}

// Cap returns the buffer capacity.
func (b *ChunkBuffer) Cap() int { return len(b.data) }

// Len returns the filled length.
func (b *ChunkBuffer) Len() int { return b.n }

// Bytes returns the filled portion of the buffer.
func (b *ChunkBuffer) Bytes() []byte { return b.data[:b.n] }

// Raw returns the full backing slice for a read to fill. The caller
// reports how much was filled via SetFilled.
func (b *ChunkBuffer) Raw() []byte { return b.data }

// SetFilled records how many bytes of the backing slice hold valid data.
func (b *ChunkBuffer) SetFilled(n int) {
	if n < 0 || n > len(b.data) {
		panic("concat: filled length out of range")
	}

	b.n = n
}

// Reset clears the filled length so the buffer can be filled again.
func (b *ChunkBuffer) Reset() { b.n = 0 }
