package concat

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

// drainPass collects one full pass over src using a fresh chunk buffer.
func drainPass(t *testing.T, src *SourceReader, chunkCap int) []byte {
	t.Helper()

	seq, err := src.Chunks()
	require.NoError(t, err)

	buf := NewChunkBuffer(chunkCap)

	var out bytes.Buffer

	for {
		chunk, err := seq.Next(buf)
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)
		out.Write(chunk)
	}

	return out.Bytes()
}

func TestOpenSource_PolicyDecision(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("q"), 100)
	path := writeTempFile(t, "input.bin", content)

	tests := []struct {
		name      string
		threshold int64
		want      CachePolicy
	}{
		{"below threshold is cached", 1000, FullyCached},
		{"exactly at threshold is cached", 100, FullyCached},
		{"above threshold is streamed", 99, StreamedPerPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := OpenSource(path, tt.threshold)
			require.NoError(t, err)

			defer src.Close()

			assert.Equal(t, tt.want, src.Policy())
			assert.Equal(t, int64(100), src.Size())
		})
	}
}

func TestOpenSource_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenSource(filepath.Join(t.TempDir(), "absent"), 0)
	require.Error(t, err)

	var ioErr *IOError

	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Op)
}

func TestSourceReader_CachedReplayIsIdentical(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("abcdefg"), 500)
	path := writeTempFile(t, "input.bin", content)

	src, err := OpenSource(path, int64(len(content)))
	require.NoError(t, err)

	defer src.Close()

	require.Equal(t, FullyCached, src.Policy())

	// Five passes, chunk capacity deliberately misaligned with the size.
	for range 5 {
		assert.Equal(t, content, drainPass(t, src, 111))
	}
}

func TestSourceReader_CachedIgnoresDiskAfterFirstPass(t *testing.T) {
	t.Parallel()

	content := []byte("cached once, replayed forever")
	path := writeTempFile(t, "input.bin", content)

	src, err := OpenSource(path, int64(len(content)))
	require.NoError(t, err)

	defer src.Close()

	first := drainPass(t, src, 8)
	require.Equal(t, content, first)

	// Rewriting the file on disk must not affect later passes.
	require.NoError(t, os.WriteFile(path, []byte("trampled"), 0o600))

	assert.Equal(t, content, drainPass(t, src, 8))
}

func TestSourceReader_StreamedRestartsEachPass(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte{0xAB, 0xCD}, 4096)
	path := writeTempFile(t, "input.bin", content)

	src, err := OpenSource(path, 0)
	require.NoError(t, err)

	defer src.Close()

	require.Equal(t, StreamedPerPass, src.Policy())

	for range 3 {
		assert.Equal(t, content, drainPass(t, src, 1000))
	}
}

func TestSourceReader_ZeroByteFile(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "empty.bin", nil)

	for _, threshold := range []int64{0, 1024} {
		src, err := OpenSource(path, threshold)
		require.NoError(t, err)

		assert.Empty(t, drainPass(t, src, 64))
		require.NoError(t, src.Close())
	}
}

func TestSourceReader_TruncatedMidRun(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("z"), 10000)
	path := writeTempFile(t, "input.bin", content)

	src, err := OpenSource(path, 0)
	require.NoError(t, err)

	defer src.Close()

	// Shrink the file after open; the streamed pass must fail, not
	// silently deliver a short output.
	require.NoError(t, os.Truncate(path, 100))

	seq, err := src.Chunks()
	require.NoError(t, err)

	buf := NewChunkBuffer(4096)

	var lastErr error

	for {
		_, err := seq.Next(buf)
		if err != nil {
			lastErr = err

			break
		}
	}

	require.ErrorIs(t, lastErr, ErrTruncatedSource)

	var ioErr *IOError

	require.ErrorAs(t, lastErr, &ioErr)
	assert.Equal(t, path, ioErr.Path)
	assert.Equal(t, int64(100), ioErr.Offset)
}

func TestSourceReader_UseAfterClose(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "input.bin", []byte("x"))

	src, err := OpenSource(path, 1024)
	require.NoError(t, err)
	require.NoError(t, src.Close())

	_, err = src.Chunks()
	require.ErrorIs(t, err, ErrSourceClosed)

	// Closing twice is harmless.
	require.NoError(t, src.Close())
}
