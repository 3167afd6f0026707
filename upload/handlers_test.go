package upload_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/sagarc03/switchyard"
	"github.com/sagarc03/switchyard/filesystem"
	"github.com/sagarc03/switchyard/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadDispatcher(t *testing.T) *switchyard.Dispatcher {
	t.Helper()

	store, err := filesystem.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := switchyard.NewRegistry(switchyard.RegistryConfig{})
	h := upload.NewHandlers(upload.NewService(store, upload.ServiceConfig{}))
	require.NoError(t, h.Register(reg))

	return switchyard.NewDispatcher(reg, switchyard.DispatcherConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func send(t *testing.T, d *switchyard.Dispatcher, method, target string, body switchyard.Body) switchyard.Outcome {
	t.Helper()
	req, err := switchyard.NewRequest(method, target)
	require.NoError(t, err)
	req.Body = body
	return d.Dispatch(context.Background(), req)
}

func TestHandlers_Form(t *testing.T) {
	d := newUploadDispatcher(t)

	out := send(t, d, "GET", "/fileupload", switchyard.Body{})
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, "text/html; charset=utf-8", out.Response.Header.Get("Content-Type"))
	assert.Contains(t, string(out.Response.Body), `name="filetoupload"`)
	assert.Contains(t, string(out.Response.Body), `enctype="multipart/form-data"`)
}

func TestHandlers_Upload(t *testing.T) {
	d := newUploadDispatcher(t)

	body := switchyard.Body{
		ContentType: "multipart/form-data",
		Files: []switchyard.File{{
			Field:    upload.FormField,
			Filename: "../../notes.txt",
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("uploaded content")), nil
			},
		}},
	}

	out := send(t, d, "POST", "/fileupload", body)
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, http.StatusOK, out.Response.Status)
	assert.Equal(t, "File uploaded and moved!", string(out.Response.Body))

	out = send(t, d, "GET", "/files/notes.txt", switchyard.Body{})
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, "uploaded content", string(out.Response.Body))
	assert.Equal(t, "text/plain; charset=utf-8", out.Response.Header.Get("Content-Type"))
}

func TestHandlers_Upload_MissingFile(t *testing.T) {
	d := newUploadDispatcher(t)

	out := send(t, d, "POST", "/fileupload", switchyard.Body{Form: switchyard.Values{"other": "x"}})
	require.Equal(t, switchyard.OutcomeFailure, out.Kind)
	assert.ErrorIs(t, out.Err, upload.ErrInvalidInput)
}

func TestHandlers_FilesLifecycle(t *testing.T) {
	d := newUploadDispatcher(t)

	out := send(t, d, "PUT", "/files/logs/mynewfile1.txt", switchyard.Body{Raw: []byte("Hello content!")})
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.NotEmpty(t, out.Response.Header.Get("ETag"))

	out = send(t, d, "POST", "/files/logs/mynewfile1.txt", switchyard.Body{Raw: []byte(" Updated!")})
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)

	var entry upload.Entry
	require.NoError(t, json.Unmarshal(out.Response.Body, &entry))
	assert.Equal(t, "logs/mynewfile1.txt", entry.Path)
	assert.Equal(t, int64(23), entry.Size)

	out = send(t, d, "GET", "/files/logs/mynewfile1.txt", switchyard.Body{})
	assert.Equal(t, "Hello content! Updated!", string(out.Response.Body))

	out = send(t, d, "GET", "/files?prefix=logs/", switchyard.Body{})
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)

	var listing struct {
		Items []upload.Entry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(out.Response.Body, &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "logs/mynewfile1.txt", listing.Items[0].Path)

	out = send(t, d, "DELETE", "/files/logs/mynewfile1.txt", switchyard.Body{})
	require.Equal(t, switchyard.OutcomeResponse, out.Kind)
	assert.Equal(t, http.StatusNoContent, out.Response.Status)

	out = send(t, d, "GET", "/files/logs/mynewfile1.txt", switchyard.Body{})
	require.Equal(t, switchyard.OutcomeFailure, out.Kind)
	assert.ErrorIs(t, out.Err, upload.ErrNotFound)
}

func TestHandlers_InvalidName(t *testing.T) {
	d := newUploadDispatcher(t)

	out := send(t, d, "PUT", "/files/bad~name", switchyard.Body{Raw: []byte("x")})
	require.Equal(t, switchyard.OutcomeFailure, out.Kind)
	assert.ErrorIs(t, out.Err, upload.ErrInvalidInput)
}
