// Package filesystem stores uploaded files in a directory on disk. Writes go
// through a temp file and a rename, appends are hashed after the fact, and
// every path is resolved inside an os.Root so names cannot escape it.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/switchyard/upload"
)

// Store implements upload.FileStorage on a local directory.
type Store struct {
	root *os.Root
}

// New returns a Store rooted at root.
func New(root *os.Root) *Store {
	return &Store{root: root}
}

// Open opens dir as an os.Root, creating it when missing, and returns a
// Store on it. The caller closes the Store.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open storage %s: %w", dir, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", dir, err)
	}
	return New(root), nil
}

func (s *Store) Close() error {
	return s.root.Close()
}

func (s *Store) Get(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, upload.ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, upload.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write copies content into a temp file, syncs it and renames it over path.
// A failed write leaves any previous file untouched.
func (s *Store) Write(ctx context.Context, path string, content io.Reader) (upload.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return upload.SaveResult{}, err
	}

	tmp := fmt.Sprintf(".t%s", uuid.New().String())
	f, err := s.root.Create(tmp)
	if err != nil {
		return upload.SaveResult{}, fmt.Errorf("create temp file: %w", err)
	}

	committed := false
	defer func() {
		if closeErr := f.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close temp file", "err", closeErr)
		}
		if !committed {
			if rmErr := s.root.Remove(tmp); rmErr != nil {
				slog.Warn("failed to remove temp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(h, f), &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return upload.SaveResult{}, fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		return upload.SaveResult{}, fmt.Errorf("sync %s: %w", path, err)
	}

	if err := s.mkdirParent(path); err != nil {
		return upload.SaveResult{}, err
	}

	if err := s.root.Rename(tmp, path); err != nil {
		return upload.SaveResult{}, fmt.Errorf("rename %s: %w", path, err)
	}
	committed = true

	return upload.SaveResult{BytesWritten: n, Etag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Append opens path in append mode, creating it when missing, and returns
// the size and etag of the whole file afterwards.
func (s *Store) Append(ctx context.Context, path string, content io.Reader) (upload.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return upload.SaveResult{}, err
	}

	if err := s.mkdirParent(path); err != nil {
		return upload.SaveResult{}, err
	}

	f, err := s.root.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return upload.SaveResult{}, fmt.Errorf("open %s for append: %w", path, err)
	}

	_, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: content})
	closeErr := f.Close()
	if copyErr != nil {
		return upload.SaveResult{}, fmt.Errorf("append %s: %w", path, copyErr)
	}
	if closeErr != nil {
		return upload.SaveResult{}, fmt.Errorf("append %s: %w", path, closeErr)
	}

	size, etag, err := s.hash(path)
	if err != nil {
		return upload.SaveResult{}, fmt.Errorf("append %s: %w", path, err)
	}
	return upload.SaveResult{BytesWritten: size, Etag: etag}, nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return upload.ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// List walks the whole directory and hashes every file. Temp files from
// in-flight writes are skipped.
func (s *Store) List(ctx context.Context) ([]upload.Entry, error) {
	entries := []upload.Entry{}

	err := fs.WalkDir(s.root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".t") {
			return nil
		}

		size, etag, err := s.hash(path)
		if err != nil {
			return err
		}

		entries = append(entries, upload.Entry{
			Path:        filepath.ToSlash(path),
			Size:        size,
			ETag:        etag,
			ContentType: upload.ContentType(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return entries, nil
}

func (s *Store) hash(path string) (int64, string, error) {
	f, err := s.root.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", path, "err", closeErr)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) mkdirParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directories for %s: %w", path, err)
	}
	return nil
}
