package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicCreatesDirectoriesAndReplacesContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "data.json")

	require.NoError(t, WriteAtomic(path, []byte("first"), PrivateFileMode))
	require.NoError(t, WriteAtomic(path, []byte("second"), PrivateFileMode))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(PrivateFileMode), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
