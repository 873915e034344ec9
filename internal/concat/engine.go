package concat

import (
	"errors"
	"io"
)

// EngineConfig configures a WriteEngine.
type EngineConfig struct {
	// Out receives every chunk in order. Exclusively owned by the engine;
	// nothing else writes to it during a run.
	Out io.Writer

	// OutPath names the destination in errors. Empty means "output".
	OutPath string

	// ChunkCapacity is the size of each of the two chunk buffers.
	ChunkCapacity int

	// Pipelined runs reads and writes on two goroutines exchanging the
	// buffers over bounded channels. When false the engine degenerates to
	// strict two-slot alternation on one goroutine.
	Pipelined bool

	// OnChunk, if set, is called after every completed chunk write with
	// the cumulative byte count. Called from the engine's own goroutine.
	OnChunk func(written int64)
}

// WriteEngine drains chunk sequences into the output stream. It owns the
// two ChunkBuffers that alternate between the read and write sides and
// tracks cumulative bytes written across tasks.
type WriteEngine struct {
	out       io.Writer
	outPath   string
	bufs      [2]*ChunkBuffer
	pipelined bool
	onChunk   func(int64)
	written   int64
}

// NewWriteEngine validates the configuration and allocates the two chunk
// buffers. These are the only per-chunk allocations of the whole run.
func NewWriteEngine(cfg EngineConfig) (*WriteEngine, error) {
	if cfg.ChunkCapacity <= 0 {
		return nil, ErrInvalidChunkCapacity
	}

	outPath := cfg.OutPath
	if outPath == "" {
		outPath = "output"
	}

	return &WriteEngine{
		out:       cfg.Out,
		outPath:   outPath,
		bufs:      [2]*ChunkBuffer{NewChunkBuffer(cfg.ChunkCapacity), NewChunkBuffer(cfg.ChunkCapacity)},
		pipelined: cfg.Pipelined,
		onChunk:   cfg.OnChunk,
	}, nil
}

// BytesWritten returns the cumulative bytes written across all tasks.
func (e *WriteEngine) BytesWritten() int64 { return e.written }

// WriteTask streams one full pass over src to the output and returns the
// bytes written for this task. Chunks are written in the exact order
// produced; a failure surfaces the destination path and offset.
func (e *WriteEngine) WriteTask(src *SourceReader) (int64, error) {
	seq, err := src.Chunks()
	if err != nil {
		return 0, err
	}

	start := e.written

	// Pipelining pays off only when the read side touches the disk. A
	// cached pass is a memory slice per chunk, so it stays sequential.
	if e.pipelined && src.Policy() == StreamedPerPass {
		err = e.writePipelined(seq)
	} else {
		err = e.writeSequential(seq)
	}

	return e.written - start, err
}

// writeSequential alternates the two buffer slots on one goroutine:
// read into A, write A, read into B, write B.
func (e *WriteEngine) writeSequential(seq *ChunkSeq) error {
	for i := 0; ; i++ {
		chunk, err := seq.Next(e.bufs[i&1])
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		if err := e.writeFull(chunk); err != nil {
			return err
		}
	}
}

// filledChunk is one buffer handed from the reader to the writer together
// with the view of its valid bytes.
type filledChunk struct {
	buf  *ChunkBuffer
	view []byte
}

// writePipelined overlaps reading the next chunk with writing the previous
// one: a reader goroutine fills buffers taken from the free channel and
// hands them over the filled channel; this goroutine drains them and
// returns each buffer once written. Both channels are bounded by the two
// buffer slots, so peak memory stays at two chunks.
func (e *WriteEngine) writePipelined(seq *ChunkSeq) error {
	free := make(chan *ChunkBuffer, len(e.bufs))
	filled := make(chan filledChunk, len(e.bufs))
	readErr := make(chan error, 1)
	done := make(chan struct{})

	defer close(done)

	for _, buf := range e.bufs {
		free <- buf
	}

	go func() {
		for {
			var buf *ChunkBuffer
			select {
			case buf = <-free:
			case <-done:
				return
			}

			chunk, err := seq.Next(buf)
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}

				readErr <- err
				close(filled)

				return
			}

			select {
			case filled <- filledChunk{buf: buf, view: chunk}:
			case <-done:
				return
			}
		}
	}()

	for fc := range filled {
		if err := e.writeFull(fc.view); err != nil {
			return err
		}

		free <- fc.buf
	}

	return <-readErr
}

// writeFull writes the whole chunk, continuing from the partial offset on
// a short write. This is the only retry loop in the engine; a hard error
// or a zero-progress write aborts with the current output offset.
func (e *WriteEngine) writeFull(chunk []byte) error {
	off := 0
	for off < len(chunk) {
		n, err := e.out.Write(chunk[off:])

		off += n
		e.written += int64(n)

		if err != nil {
			return ioError("write", e.outPath, e.written, err)
		}

		if n == 0 {
			return ioError("write", e.outPath, e.written, io.ErrShortWrite)
		}
	}

	if e.onChunk != nil {
		e.onChunk(e.written)
	}

	return nil
}
