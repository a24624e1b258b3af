package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalFileStoreSaveAndRemove(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	filename, path, err := store.Save("фото.png", strings.NewReader("payload"))
	require.NoError(t, err)
	require.Equal(t, ".png", filepath.Ext(filename))
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	require.NoError(t, store.Remove(path))
	require.NoFileExists(t, path)

	// Removing twice is not an error.
	require.NoError(t, store.Remove(path))
}

func TestLocalFileStoreUniqueNames(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	first, _, err := store.Save("same.png", strings.NewReader("a"))
	require.NoError(t, err)
	second, _, err := store.Save("same.png", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestLocalFileStoreCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewLocalFileStore(base)
	require.NoError(t, err)
	require.DirExists(t, base)
}
