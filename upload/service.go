package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxSize bounds a single upload when ServiceConfig.MaxSize is zero.
const DefaultMaxSize = 32 << 20

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	MaxSize int64 // Largest accepted file in bytes (default: 32 MiB)
}

// Service validates file names and sizes before handing content to a
// FileStorage.
type Service struct {
	storage FileStorage
	maxSize int64
}

func NewService(storage FileStorage, cfg ServiceConfig) *Service {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		storage: storage,
		maxSize: maxSize,
	}
}

// Save stores content under name, replacing any existing file.
func (s *Service) Save(ctx context.Context, name string, content io.Reader) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, fmt.Errorf("save file: %w", err)
	}

	if !IsValidPath(name) {
		return Entry{}, fmt.Errorf("save file %q: %w", name, ErrInvalidInput)
	}

	if content == nil {
		return Entry{}, fmt.Errorf("save file %s: %w: content cannot be nil", name, ErrInvalidInput)
	}

	res, err := s.storage.Write(ctx, name, s.limit(content))
	if err != nil {
		return Entry{}, fmt.Errorf("save file %s: %w", name, err)
	}

	return s.entry(name, res), nil
}

// Append adds content to the end of name, creating the file when missing.
func (s *Service) Append(ctx context.Context, name string, content io.Reader) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, fmt.Errorf("append file: %w", err)
	}

	if !IsValidPath(name) {
		return Entry{}, fmt.Errorf("append file %q: %w", name, ErrInvalidInput)
	}

	if content == nil {
		return Entry{}, fmt.Errorf("append file %s: %w: content cannot be nil", name, ErrInvalidInput)
	}

	res, err := s.storage.Append(ctx, name, s.limit(content))
	if err != nil {
		return Entry{}, fmt.Errorf("append file %s: %w", name, err)
	}

	return s.entry(name, res), nil
}

// Open returns the content of name. The caller closes it.
func (s *Service) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	if !IsValidPath(name) {
		return nil, fmt.Errorf("open file %q: %w", name, ErrInvalidInput)
	}

	f, err := s.storage.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", name, err)
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if !IsValidPath(name) {
		return fmt.Errorf("delete file %q: %w", name, ErrInvalidInput)
	}

	if err := s.storage.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

// List returns stored files whose path starts with prefix, sorted by path.
func (s *Service) List(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	all, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if strings.HasPrefix(e.Path, prefix) {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func (s *Service) entry(name string, res SaveResult) Entry {
	return Entry{
		Path:        name,
		Size:        res.BytesWritten,
		ETag:        res.Etag,
		ContentType: ContentType(name),
	}
}

func (s *Service) limit(r io.Reader) io.Reader {
	return &limitedReader{r: r, remaining: s.maxSize}
}

// ContentType guesses a content type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// limitedReader fails with ErrTooLarge instead of silently truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
