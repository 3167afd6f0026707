package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/sagarc03/switchyard"
)

// FormField is the multipart field the upload form posts the file under.
const FormField = "filetoupload"

const uploadForm = `<form action="fileupload" method="post" enctype="multipart/form-data">` +
	`<input type="file" name="` + FormField + `"><br>` +
	`<input type="submit">` +
	`</form>`

// Handlers serves the upload form and the /files API.
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Register adds the upload routes to reg.
func (h *Handlers) Register(reg *switchyard.Registry) error {
	return errors.Join(
		reg.Path("/fileupload").Get(h.form).Post(h.upload).Err(),
		reg.Get("/files", h.list),
		reg.Path("/files/*").
			Get(h.get).
			Put(h.write).
			Post(h.append).
			Delete(h.delete).
			Err(),
	)
}

func (h *Handlers) form(c *switchyard.Context, next switchyard.Next) {
	_ = c.HTML(http.StatusOK, uploadForm)
}

func (h *Handlers) upload(c *switchyard.Context, next switchyard.Next) {
	file, ok := c.Body().File(FormField)
	if !ok {
		next(fmt.Errorf("upload: %w: missing %s file", ErrInvalidInput, FormField))
		return
	}

	rc, err := file.Open()
	if err != nil {
		next(fmt.Errorf("upload: %w", err))
		return
	}
	defer func() { _ = rc.Close() }()

	entry, err := h.service.Save(c.Context(), path.Base(file.Filename), rc)
	if err != nil {
		next(fmt.Errorf("upload: %w", err))
		return
	}

	c.Logger().Info("file uploaded", "path", entry.Path, "size", entry.Size)
	_ = c.String(http.StatusOK, "File uploaded and moved!")
}

func (h *Handlers) list(c *switchyard.Context, next switchyard.Next) {
	entries, err := h.service.List(c.Context(), c.Query("prefix"))
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusOK, map[string]any{"items": entries})
}

func (h *Handlers) get(c *switchyard.Context, next switchyard.Next) {
	name := c.Param("*")

	f, err := h.service.Open(c.Context(), name)
	if err != nil {
		next(err)
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		next(fmt.Errorf("read %s: %w", name, err))
		return
	}

	c.SetHeader("Content-Type", ContentType(name))
	_ = c.Status(http.StatusOK).Send(data)
}

func (h *Handlers) write(c *switchyard.Context, next switchyard.Next) {
	entry, err := h.service.Save(c.Context(), c.Param("*"), bytes.NewReader(c.Body().Raw))
	if err != nil {
		next(err)
		return
	}
	c.SetHeader("ETag", `"`+entry.ETag+`"`)
	_ = c.JSON(http.StatusOK, entry)
}

func (h *Handlers) append(c *switchyard.Context, next switchyard.Next) {
	entry, err := h.service.Append(c.Context(), c.Param("*"), bytes.NewReader(c.Body().Raw))
	if err != nil {
		next(err)
		return
	}
	c.SetHeader("ETag", `"`+entry.ETag+`"`)
	_ = c.JSON(http.StatusOK, entry)
}

func (h *Handlers) delete(c *switchyard.Context, next switchyard.Next) {
	if err := h.service.Delete(c.Context(), c.Param("*")); err != nil {
		next(err)
		return
	}
	_ = c.SendStatus(http.StatusNoContent)
}
