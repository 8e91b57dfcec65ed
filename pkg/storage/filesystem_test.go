package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "exports"))
	require.NoError(t, err)

	path, err := store.Save("marks.csv", []byte("CODE\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "marks.csv"), path)

	f, err := store.Open("marks.csv")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	names, err := store.List(".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"marks.csv"}, names)

	require.NoError(t, store.Delete("marks.csv"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, store.Delete("marks.csv"))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	assert.Error(t, err)
	_, err = store.Save("/tmp/abs.csv", []byte("x"))
	assert.Error(t, err)
	assert.Empty(t, store.Path("../outside.csv"))
}
