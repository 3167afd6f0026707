package filesystem_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagarc03/switchyard/filesystem"
	"github.com/sagarc03/switchyard/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := filesystem.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestStore_Get(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mynewfile1.txt"), []byte("Hello content!"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder"), 0o755))

	t.Run("existing file", func(t *testing.T) {
		f, err := store.Get(context.Background(), "mynewfile1.txt")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "Hello content!", string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		f, err := store.Get(context.Background(), "missing.txt")
		assert.Nil(t, f)
		assert.ErrorIs(t, err, upload.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := store.Get(context.Background(), "folder")
		assert.ErrorIs(t, err, upload.ErrNotFound)
	})

	t.Run("escape attempt", func(t *testing.T) {
		_, err := store.Get(context.Background(), "../outside.txt")
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Get(ctx, "mynewfile1.txt")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStore_Write(t *testing.T) {
	store, dir := newStore(t)

	res, err := store.Write(context.Background(), "a/b/mynewfile3.txt", strings.NewReader("Hello content! By writeFile"))
	require.NoError(t, err)
	assert.Equal(t, int64(27), res.BytesWritten)
	assert.Equal(t, sum("Hello content! By writeFile"), res.Etag)

	res, err = store.Write(context.Background(), "a/b/mynewfile3.txt", strings.NewReader("Replaced!"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.BytesWritten)

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "mynewfile3.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Replaced!", string(data))
}

func TestStore_Write_FailureKeepsPreviousContent(t *testing.T) {
	store, dir := newStore(t)

	_, err := store.Write(context.Background(), "keep.txt", strings.NewReader("original"))
	require.NoError(t, err)

	_, err = store.Write(context.Background(), "keep.txt", failingReader{})
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be removed")
}

func TestStore_Append(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	res, err := store.Append(ctx, "mynewfile1.txt", strings.NewReader("Hello content!"))
	require.NoError(t, err)
	assert.Equal(t, int64(14), res.BytesWritten)

	res, err = store.Append(ctx, "mynewfile1.txt", strings.NewReader(" Updated!"))
	require.NoError(t, err)
	assert.Equal(t, int64(23), res.BytesWritten)
	assert.Equal(t, sum("Hello content! Updated!"), res.Etag)

	data, err := os.ReadFile(filepath.Join(dir, "mynewfile1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello content! Updated!", string(data))
}

func TestStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "gone.txt", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "gone.txt"))
	assert.ErrorIs(t, store.Delete(ctx, "gone.txt"), upload.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = store.Write(ctx, "docs/readme.txt", strings.NewReader("read me"))
	require.NoError(t, err)
	_, err = store.Write(ctx, "index.html", strings.NewReader("<h1>hi</h1>"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tinflight"), []byte("partial"), 0o644))

	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byPath := make(map[string]upload.Entry)
	for _, e := range entries {
		byPath[e.Path] = e
	}

	assert.Equal(t, int64(7), byPath["docs/readme.txt"].Size)
	assert.Equal(t, sum("read me"), byPath["docs/readme.txt"].ETag)
	assert.Equal(t, "text/html; charset=utf-8", byPath["index.html"].ContentType)
}
