package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem(t *testing.T) {
	t.Parallel()

	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "results", "figures")

	require.NoError(t, fsys.MkdirAll(dir, 0o755))
	assert.True(t, fsys.Exists(dir))

	path := filepath.Join(dir, "sub01.png")
	assert.False(t, fsys.Exists(path))
	require.NoError(t, fsys.WriteFile(path, []byte("png"), 0o644))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())

	_, err = fsys.ReadFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	t.Parallel()

	mfs := NewMemoryFileSystem()
	input := []byte("EDA\n1.0\n")
	require.NoError(t, mfs.WriteFile("/raw/sub01.csv", input, 0o644))

	// Mutating the caller's slice must not change the stored file.
	input[0] = 'X'
	data, err := mfs.ReadFile("/raw/sub01.csv")
	require.NoError(t, err)
	assert.Equal(t, "EDA\n1.0\n", string(data))

	// Nor must mutating the returned copy.
	data[0] = 'Y'
	again, err := mfs.ReadFile("/raw/./sub01.csv")
	require.NoError(t, err)
	assert.Equal(t, "EDA\n1.0\n", string(again))

	require.NoError(t, mfs.WriteFile("/raw/sub01.csv", []byte("EDA\n"), 0o600))
	info, err := mfs.Stat("/raw/sub01.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size())
	assert.Equal(t, fs.FileMode(0o600), info.Mode())
	assert.False(t, info.IsDir())
	assert.Equal(t, "sub01.csv", info.Name())
}

func TestMemoryFileSystem_NotExist(t *testing.T) {
	t.Parallel()

	mfs := NewMemoryFileSystem()
	_, err := mfs.ReadFile("/raw/missing.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = mfs.Stat("/raw/missing.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, mfs.Exists("/raw/missing.csv"))
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	t.Parallel()

	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/data/results/figures", 0o755))
	for _, dir := range []string{"/data/results/figures", "/data/results", "/data", "/"} {
		assert.True(t, mfs.Exists(dir), dir)
	}
	info, err := mfs.Stat("/data/results")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Directories are not files.
	err = mfs.WriteFile("/data/results", []byte("x"), 0o644)
	assert.True(t, errors.Is(err, fs.ErrExist))

	// Files block directories.
	require.NoError(t, mfs.WriteFile("/data/table.csv", nil, 0o644))
	err = mfs.MkdirAll("/data/table.csv/sub", 0o755)
	assert.True(t, errors.Is(err, fs.ErrExist))

	require.NoError(t, mfs.MkdirAll("relative/dir", 0o755))
	assert.True(t, mfs.Exists("relative"))
}

func TestMemoryFileSystem_Files(t *testing.T) {
	t.Parallel()

	mfs := NewMemoryFileSystem()
	for _, name := range []string{"/results/b.png", "/results/a.png", "/raw/a.csv", "/resultsx/c.png"} {
		require.NoError(t, mfs.WriteFile(name, nil, 0o644))
	}

	assert.Equal(t, []string{"/results/a.png", "/results/b.png"}, mfs.Files("/results"))
	assert.Len(t, mfs.Files("/"), 4)
	assert.Empty(t, mfs.Files("/nothing"))
}
