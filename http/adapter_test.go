package http_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/switchyard"
	switchyardhttp "github.com/sagarc03/switchyard/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestAdapter(t *testing.T, cfg switchyardhttp.AdapterConfig, timeout time.Duration, register func(*switchyard.Registry)) http.Handler {
	t.Helper()

	reg := switchyard.NewRegistry(switchyard.RegistryConfig{})
	register(reg)

	d := switchyard.NewDispatcher(reg, switchyard.DispatcherConfig{Timeout: timeout, Logger: discard})
	cfg.Logger = discard
	return switchyardhttp.NewAdapter(d, cfg)
}

func TestAdapter_Response(t *testing.T) {
	adapter := newTestAdapter(t, switchyardhttp.AdapterConfig{}, 0, func(reg *switchyard.Registry) {
		require.NoError(t, reg.Get("/users/:userId/books/:bookId", func(c *switchyard.Context, next switchyard.Next) {
			c.SetHeader("X-Query", c.Query("expand"))
			_ = c.JSON(http.StatusOK, c.Params())
		}))
	})

	req := httptest.NewRequest("GET", "/users/34/books/8989?expand=all", nil)
	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", rec.Header().Get("X-Query"))
	assert.JSONEq(t, `{"userId":"34","bookId":"8989"}`, rec.Body.String())
}

func TestAdapter_Head(t *testing.T) {
	adapter := newTestAdapter(t, switchyardhttp.AdapterConfig{}, 0, func(reg *switchyard.Registry) {
		require.NoError(t, reg.Get("/", func(c *switchyard.Context, next switchyard.Next) {
			_ = c.String(http.StatusOK, "Hello World!")
		}))
	})

	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, httptest.NewRequest("HEAD", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAdapter_Bodies(t *testing.T) {
	echo := func(c *switchyard.Context, next switchyard.Next) {
		b := c.Body()
		_ = c.JSON(http.StatusOK, map[string]any{
			"contentType": b.ContentType,
			"raw":         string(b.Raw),
			"form":        b.Form,
			"files":       len(b.Files),
		})
	}
	adapter := newTestAdapter(t, switchyardhttp.AdapterConfig{}, 0, func(reg *switchyard.Registry) {
		require.NoError(t, reg.Post("/echo", echo))
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "json",
			contentType: "application/json; charset=utf-8",
			body:        `{"username":"Emma"}`,
			want:        `{"contentType":"application/json","raw":"{\"username\":\"Emma\"}","form":null,"files":0}`,
		},
		{
			name:        "urlencoded",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=Emma&name=Anna&email=a%40b.c",
			want:        `{"contentType":"application/x-www-form-urlencoded","raw":"","form":{"name":"Anna","email":"a@b.c"},"files":0}`,
		},
		{
			name: "no content type",
			body: "plain",
			want: `{"contentType":"","raw":"plain","form":null,"files":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/echo", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			adapter.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestAdapter_Multipart(t *testing.T) {
	adapter := newTestAdapter(t, switchyardhttp.AdapterConfig{}, 0, func(reg *switchyard.Registry) {
		require.NoError(t, reg.Post("/upload", func(c *switchyard.Context, next switchyard.Next) {
			f, ok := c.Body().File("filetoupload")
			if !ok {
				_ = c.SendStatus(http.StatusBadRequest)
				return
			}
			rc, err := f.Open()
			if err != nil {
				next(err)
				return
			}
			defer func() { _ = rc.Close() }()
			data, err := io.ReadAll(rc)
			if err != nil {
				next(err)
				return
			}
			_ = c.String(http.StatusOK, c.Body().Form.Get("note")+":"+f.Filename+":"+string(data))
		}))
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "hi"))
	fw, err := mw.CreateFormFile("filetoupload", "a.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi:a.txt:content", rec.Body.String())
}

func TestAdapter_BodyTooLarge(t *testing.T) {
	called := false
	adapter := newTestAdapter(t, switchyardhttp.AdapterConfig{MaxUploadSize: 8}, 0, func(reg *switchyard.Registry) {
		require.NoError(t, reg.Post("/echo", func(c *switchyard.Context, next switchyard.Next) {
			called = true
			_ = c.SendStatus(http.StatusOK)
		}))
	})

	req := httptest.NewRequest("POST", "/echo", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "too_large")
	assert.False(t, called)
}

func TestAdapter_Outcomes(t *testing.T) {
	adapter := newTestAdapter(t, switchyardhttp.AdapterConfig{}, 50*time.Millisecond, func(reg *switchyard.Registry) {
		require.NoError(t, reg.Path("/book").
			Get(func(c *switchyard.Context, next switchyard.Next) { _ = c.String(200, "Get a random book") }).
			Post(func(c *switchyard.Context, next switchyard.Next) { _ = c.String(200, "Add a book") }).
			Err())
		require.NoError(t, reg.Get("/hang", func(c *switchyard.Context, next switchyard.Next) {}))
		require.NoError(t, reg.Get("/panic", func(c *switchyard.Context, next switchyard.Next) { panic("boom") }))
		require.NoError(t, reg.Get("/pass", func(c *switchyard.Context, next switchyard.Next) { next(nil) }))
	})

	tests := []struct {
		name       string
		method     string
		target     string
		accept     string
		wantStatus int
		wantBody   string
		wantAllow  string
	}{
		{name: "not found json", method: "GET", target: "/nope", wantStatus: 404, wantBody: `"error":"not_found"`},
		{name: "not found html", method: "GET", target: "/nope", accept: "text/html,*/*", wantStatus: 404, wantBody: "<h1>404 Not Found</h1>"},
		{name: "method not allowed", method: "DELETE", target: "/book", wantStatus: 405, wantBody: "method_not_allowed", wantAllow: "GET, POST"},
		{name: "timeout", method: "GET", target: "/hang", wantStatus: 504, wantBody: `"error":"timeout"`},
		{name: "panic", method: "GET", target: "/panic", wantStatus: 500, wantBody: "internal_error"},
		{name: "exhausted", method: "GET", target: "/pass", wantStatus: 500, wantBody: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			adapter.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantAllow != "" {
				assert.Equal(t, tt.wantAllow, rec.Header().Get("Allow"))
			}
		})
	}
}
