package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OrderedEntries(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`
files:
  - path: header.bin
  - path: payload.bin
    repeat: 64
  - path: trailer.bin
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"header.bin", "payload.bin", "trailer.bin"}, m.Paths())
	assert.Equal(t, []int{1, 64, 1}, m.RepeatCounts(1))
	assert.Equal(t, []int{3, 64, 3}, m.RepeatCounts(3))
}

func TestParse_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty document", "", ErrNoFiles},
		{"no files key", "other: 1\n", ErrNoFiles},
		{"entry without path", "files:\n  - repeat: 2\n", ErrMissingPath},
		{"negative repeat", "files:\n  - path: a\n    repeat: -1\n", ErrNegativeRepeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("files: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse manifest")
}

func TestLoad_FromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "inputs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files:\n  - path: a.bin\n"), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin"}, m.Paths())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
