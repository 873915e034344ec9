package concat

import (
	"io"
	"os"
)

// CachePolicy selects how a source file's content is produced for repeated
// passes. It is decided once at open time and never changes.
type CachePolicy int

const (
	// StreamedPerPass re-reads the file from offset zero on every pass.
	StreamedPerPass CachePolicy = iota

	// FullyCached reads the whole file into memory on the first pass and
	// serves every later pass from that buffer with no disk I/O.
	FullyCached
)

// String returns the policy name for logs.
func (p CachePolicy) String() string {
	switch p {
	case FullyCached:
		return "cached"
	case StreamedPerPass:
		return "streamed"
	default:
		return "unknown"
	}
}

// SourceReader wraps one input file and produces its content as a
// restartable sequence of chunks, one sequence per pass. The file size and
// cache policy are fixed at open time; the cache buffer, if any, is
// populated on the first pass and immutable afterwards, so later passes
// may share it freely.
type SourceReader struct {
	path   string
	size   int64
	policy CachePolicy

	file   *os.File
	cache  []byte
	cached bool
	closed bool
}

// OpenSource opens path and decides its cache policy: files no larger
// than cacheThreshold are fully cached, everything else is re-read per
// pass. The size observed here is authoritative for the whole run.
func OpenSource(path string, cacheThreshold int64) (*SourceReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, 0, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()

		return nil, ioError("open", path, 0, err)
	}

	policy := StreamedPerPass
	if info.Size() <= cacheThreshold {
		policy = FullyCached
	}

	return &SourceReader{
		path:   path,
		size:   info.Size(),
		policy: policy,
		file:   file,
	}, nil
}

// Path returns the file path the reader was opened with.
func (s *SourceReader) Path() string { return s.path }

// Size returns the file size observed at open time.
func (s *SourceReader) Size() int64 { return s.size }

// Policy returns the cache policy decided at open time.
func (s *SourceReader) Policy() CachePolicy { return s.policy }

// Chunks starts a new pass over the file content. Each call restarts from
// the beginning and yields the identical byte sequence; at most one pass
// may be active at a time. For a FullyCached source the first call
// populates the cache and releases the file handle.
func (s *SourceReader) Chunks() (*ChunkSeq, error) {
	if s.closed {
		return nil, ioError("read", s.path, 0, ErrSourceClosed)
	}

	if s.policy == FullyCached {
		if err := s.populateCache(); err != nil {
			return nil, err
		}

		return &ChunkSeq{src: s}, nil
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, ioError("read", s.path, 0, err)
	}

	return &ChunkSeq{src: s}, nil
}

// populateCache reads the whole file into the owned cache buffer. The
// handle is closed afterwards; every later pass is pure memory.
func (s *SourceReader) populateCache() error {
	if s.cached {
		return nil
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return ioError("read", s.path, 0, err)
	}

	buf := make([]byte, s.size)

	n, err := io.ReadFull(s.file, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return ioError("read", s.path, int64(n), ErrTruncatedSource)
		}

		return ioError("read", s.path, int64(n), err)
	}

	if err := s.file.Close(); err != nil {
		return ioError("close", s.path, s.size, err)
	}

	s.file = nil
	s.cache = buf
	s.cached = true

	return nil
}

// Close releases the file handle and the cache buffer. The reader must
// not be used afterwards.
func (s *SourceReader) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.cache = nil

	if s.file == nil {
		return nil
	}

	file := s.file
	s.file = nil

	if err := file.Close(); err != nil {
		return ioError("close", s.path, 0, err)
	}

	return nil
}

// ChunkSeq yields one pass over a source's content in chunks. Next returns
// views that remain valid only until the next call with the same buffer,
// except for cached sources, whose views alias the immutable cache.
type ChunkSeq struct {
	src *SourceReader
	off int64
}

// Next produces the next chunk of at most buf.Cap() bytes. For streamed
// sources the chunk is read into buf; for cached sources buf is untouched
// and the returned slice aliases the shared cache. Returns io.EOF after
// the last chunk.
func (cs *ChunkSeq) Next(buf *ChunkBuffer) ([]byte, error) {
	if cs.src.closed {
		return nil, ioError("read", cs.src.path, cs.off, ErrSourceClosed)
	}

	remaining := cs.src.size - cs.off
	if remaining <= 0 {
		return nil, io.EOF
	}

	want := int64(buf.Cap())
	if remaining < want {
		want = remaining
	}

	if cs.src.policy == FullyCached {
		chunk := cs.src.cache[cs.off : cs.off+want]
		cs.off += want

		return chunk, nil
	}

	n, err := io.ReadFull(cs.src.file, buf.Raw()[:want])
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ioError("read", cs.src.path, cs.off+int64(n), ErrTruncatedSource)
		}

		return nil, ioError("read", cs.src.path, cs.off+int64(n), err)
	}

	buf.SetFilled(n)
	cs.off += int64(n)

	return buf.Bytes(), nil
}

// Offset returns the number of bytes produced so far in this pass.
func (cs *ChunkSeq) Offset() int64 { return cs.off }
