package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/switchyard/filesystem"
	"github.com/sagarc03/switchyard/upload"
)

func newUploadService(t *testing.T) *upload.Service {
	t.Helper()
	store, err := filesystem.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return upload.NewService(store, upload.ServiceConfig{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readStored(t *testing.T, service *upload.Service, name string) string {
	t.Helper()
	f, err := service.Open(context.Background(), name)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func destPaths(entries []fileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.destPath
	}
	return out
}

func TestCollectFiles(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a")
	writeFile(t, filepath.Join(src, "nested", "b.css"), "b")

	tests := []struct {
		name      string
		path      string
		recursive bool
		dest      string
		want      []string
		wantErr   bool
	}{
		{name: "single file", path: filepath.Join(src, "a.txt"), want: []string{"a.txt"}},
		{name: "single file with dest", path: filepath.Join(src, "a.txt"), dest: "/docs", want: []string{"docs/a.txt"}},
		{name: "directory requires recursive", path: src, wantErr: true},
		{name: "recursive directory", path: src, recursive: true, dest: "assets/", want: []string{"assets/a.txt", "assets/nested/b.css"}},
		{name: "missing path", path: filepath.Join(src, "missing"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := collectFiles(tt.path, tt.recursive, tt.dest)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, destPaths(entries))
		})
	}
}

func TestAddFiles(t *testing.T) {
	ctx := context.Background()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "new a")
	writeFile(t, filepath.Join(src, "b.txt"), "new b")

	files, err := collectFiles(src, true, "docs")
	require.NoError(t, err)

	t.Run("copies every file", func(t *testing.T) {
		service := newUploadService(t)

		added, skipped, err := addFiles(ctx, service, files, addOptions{quiet: true})
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, 0, skipped)
		assert.Equal(t, "new a", readStored(t, service, "docs/a.txt"))
		assert.Equal(t, "new b", readStored(t, service, "docs/b.txt"))
	})

	t.Run("overwrites by default", func(t *testing.T) {
		service := newUploadService(t)
		_, err := service.Save(ctx, "docs/a.txt", stringsReader("old a"))
		require.NoError(t, err)

		added, _, err := addFiles(ctx, service, files, addOptions{quiet: true})
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, "new a", readStored(t, service, "docs/a.txt"))
	})

	t.Run("no clobber skips existing", func(t *testing.T) {
		service := newUploadService(t)
		_, err := service.Save(ctx, "docs/a.txt", stringsReader("old a"))
		require.NoError(t, err)

		added, skipped, err := addFiles(ctx, service, files, addOptions{noClobber: true, quiet: true})
		require.NoError(t, err)
		assert.Equal(t, 1, added)
		assert.Equal(t, 1, skipped)
		assert.Equal(t, "old a", readStored(t, service, "docs/a.txt"))
		assert.Equal(t, "new b", readStored(t, service, "docs/b.txt"))
	})

	t.Run("invalid destination fails", func(t *testing.T) {
		service := newUploadService(t)
		bad := []fileEntry{{sourcePath: filepath.Join(src, "a.txt"), destPath: "../a.txt"}}

		added, _, err := addFiles(ctx, service, bad, addOptions{quiet: true})
		assert.ErrorIs(t, err, upload.ErrInvalidInput)
		assert.Equal(t, 0, added)
	})
}
