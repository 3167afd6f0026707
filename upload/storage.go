package upload

import (
	"context"
	"io"
)

// Entry describes a stored file.
type Entry struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ETag        string `json:"etag"`
	ContentType string `json:"content_type"`
}

// SaveResult reports the outcome of a write.
type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// FileStorage is the physical storage behind a Service. Implementations
// must be safe for concurrent use.
type FileStorage interface {
	// Get opens a file for reading. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write replaces the file at path with content, creating parent
	// directories as needed. Writes should be atomic.
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Append adds content to the end of the file at path, creating it when
	// missing. The returned result covers the whole file.
	Append(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Delete removes a file. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, path string) error

	// List returns every stored file. It returns an empty slice, not nil,
	// when nothing is stored.
	List(ctx context.Context) ([]Entry, error)
}
