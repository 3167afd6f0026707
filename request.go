package switchyard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Values is a single-valued string map. When built from a query string or
// form the last occurrence of a key wins.
type Values map[string]string

// Get returns the value for key, or "" when absent.
func (v Values) Get(key string) string {
	return v[key]
}

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// Int parses the value for key as an integer.
func (v Values) Int(key string) (int, error) {
	raw, ok := v[key]
	if !ok {
		return 0, fmt.Errorf("value %q: missing", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", key, err)
	}
	return n, nil
}

// ValuesFrom flattens multi-valued url.Values keeping the last value.
func ValuesFrom(src url.Values) Values {
	out := make(Values, len(src))
	for k, vs := range src {
		if len(vs) > 0 {
			out[k] = vs[len(vs)-1]
		}
	}
	return out
}

// File is an uploaded file attached to a request body.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	// Open returns the file content. Adapters back it with their own
	// storage, for example a parsed multipart form.
	Open func() (io.ReadCloser, error)
}

// Body is the request payload as negotiated by the transport adapter.
type Body struct {
	ContentType string
	Raw         []byte
	Form        Values
	Files       []File
}

// ErrEmptyBody is returned when decoding a request without payload.
var ErrEmptyBody = errors.New("empty body")

// JSON decodes the raw payload into v.
func (b Body) JSON(v any) error {
	if len(b.Raw) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(b.Raw, v); err != nil {
		return fmt.Errorf("decode json body: %w", err)
	}
	return nil
}

// File returns the first uploaded file for field.
func (b Body) File(field string) (File, bool) {
	for _, f := range b.Files {
		if f.Field == field {
			return f, true
		}
	}
	return File{}, false
}

// Request is the transport-agnostic description of an incoming request.
// Dispatch never mutates it.
type Request struct {
	Method     string
	Path       string
	Query      Values
	Header     http.Header
	Body       Body
	RemoteAddr string
}

// NewRequest builds a Request from a method and a target such as
// "/users/7?expand=books".
func NewRequest(method, target string) (*Request, error) {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	return &Request{
		Method: method,
		Path:   u.Path,
		Query:  ValuesFrom(u.Query()),
		Header: make(http.Header),
	}, nil
}
