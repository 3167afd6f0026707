package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/switchyard"
)

// DefaultMaxUploadSize bounds request bodies when AdapterConfig.MaxUploadSize
// is zero.
const DefaultMaxUploadSize = 32 << 20

// multipartMemory is the share of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

type AdapterConfig struct {
	MaxUploadSize int64
	Logger        *slog.Logger
}

// Adapter serves net/http requests through a switchyard.Dispatcher.
type Adapter struct {
	dispatcher *switchyard.Dispatcher
	maxBody    int64
	logger     *slog.Logger
}

// NewAdapter creates an Adapter dispatching to d.
func NewAdapter(d *switchyard.Dispatcher, cfg AdapterConfig) *Adapter {
	maxBody := cfg.MaxUploadSize
	if maxBody <= 0 {
		maxBody = DefaultMaxUploadSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		dispatcher: d,
		maxBody:    maxBody,
		logger:     logger,
	}
}

func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := a.newRequest(w, r)
	if err != nil {
		HandleError(w, err)
		return
	}

	out := a.dispatcher.Dispatch(r.Context(), req)
	status := a.write(w, r, out)

	a.logger.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"outcome", out.Kind.String(),
		"duration", time.Since(start),
		"params", out.Match.Params,
		"request_id", middleware.GetReqID(r.Context()),
	)
}

// newRequest converts r into a switchyard.Request, negotiating the body by
// content type.
func (a *Adapter) newRequest(w http.ResponseWriter, r *http.Request) (*switchyard.Request, error) {
	req := &switchyard.Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      switchyard.ValuesFrom(r.URL.Query()),
		Header:     r.Header.Clone(),
		RemoteAddr: r.RemoteAddr,
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBody)

	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return req, nil
}

func readBody(r *http.Request) (switchyard.Body, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	body := switchyard.Body{ContentType: mediaType}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return switchyard.Body{}, bodyError(err)
		}
		body.Form = switchyard.ValuesFrom(r.MultipartForm.Value)
		body.Files = multipartFiles(r)

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return switchyard.Body{}, bodyError(err)
		}
		body.Form = switchyard.ValuesFrom(r.PostForm)

	default:
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return switchyard.Body{}, bodyError(err)
		}
		body.Raw = raw
	}

	return body, nil
}

func multipartFiles(r *http.Request) []switchyard.File {
	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var files []switchyard.File
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			files = append(files, switchyard.File{
				Field:       field,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					f, err := fh.Open()
					if err != nil {
						return nil, err
					}
					return f, nil
				},
			})
		}
	}
	return files
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("read body: %w (limit %d bytes)", ErrBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("read body: %w: %w", ErrMalformedBody, err)
}

// write sends out to w and returns the status written.
func (a *Adapter) write(w http.ResponseWriter, r *http.Request, out switchyard.Outcome) int {
	switch out.Kind {
	case switchyard.OutcomeResponse:
		resp := out.Response
		for k, vs := range resp.Header {
			w.Header()[k] = vs
		}
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = w.Write(resp.Body)
		}
		return status

	case switchyard.OutcomeNotFound:
		if wantsHTML(r) {
			writeDefaultNotFound(w)
		} else {
			WriteError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
		}
		return http.StatusNotFound

	case switchyard.OutcomeMethodNotAllowed:
		w.Header().Set("Allow", out.Response.Header.Get("Allow"))
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
		return http.StatusMethodNotAllowed

	case switchyard.OutcomeTimeout:
		WriteError(w, http.StatusGatewayTimeout, "timeout", "Request timed out")
		return http.StatusGatewayTimeout

	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return http.StatusInternalServerError
	}
}
