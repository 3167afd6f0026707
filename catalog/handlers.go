package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/sagarc03/switchyard"
)

// Handlers serves users and books.
type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// Register adds the /users and /books routes to reg.
func (h *Handlers) Register(reg *switchyard.Registry) error {
	return errors.Join(
		reg.Path("/users").
			Get(h.listUsers).
			Post(h.createUsers).
			Err(),
		reg.Path("/users/:id([0-9]+)").
			Get(h.getUser).
			Put(h.updateUser).
			Delete(h.deleteUser).
			Err(),
		reg.Path("/books").
			Get(h.listBooks).
			Post(h.createBook).
			Err(),
		reg.Get("/books/:id([0-9]+)", h.getBook),
	)
}

func (h *Handlers) listUsers(c *switchyard.Context, next switchyard.Next) {
	q := UserQuery{
		FirstName: c.Query("firstName"),
		ByAgeDesc: c.Query("order") == "age",
	}

	var err error
	if c.Request().Query.Has("limit") {
		if q.Limit, err = c.QueryInt("limit"); err != nil {
			next(fmt.Errorf("list users: %w: %w", ErrInvalidInput, err))
			return
		}
	}
	if c.Request().Query.Has("offset") {
		if q.Offset, err = c.QueryInt("offset"); err != nil {
			next(fmt.Errorf("list users: %w: %w", ErrInvalidInput, err))
			return
		}
	}

	users, err := h.svc.ListUsers(c.Context(), q)
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusOK, users)
}

// createUsers accepts a single user object or an array for bulk creation.
func (h *Handlers) createUsers(c *switchyard.Context, next switchyard.Next) {
	body := c.Body()

	if raw := bytes.TrimSpace(body.Raw); len(raw) > 0 && raw[0] == '[' {
		var us []User
		if err := body.JSON(&us); err != nil {
			next(fmt.Errorf("create users: %w: %w", ErrInvalidInput, err))
			return
		}
		created, err := h.svc.CreateUsers(c.Context(), us)
		if err != nil {
			next(err)
			return
		}
		_ = c.JSON(http.StatusCreated, created)
		return
	}

	var u User
	if err := body.JSON(&u); err != nil {
		next(fmt.Errorf("create user: %w: %w", ErrInvalidInput, err))
		return
	}
	created, err := h.svc.CreateUser(c.Context(), u)
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusCreated, created)
}

func (h *Handlers) getUser(c *switchyard.Context, next switchyard.Next) {
	id, err := c.ParamInt("id")
	if err != nil {
		next(fmt.Errorf("get user: %w: %w", ErrInvalidInput, err))
		return
	}

	u, err := h.svc.GetUser(c.Context(), int64(id))
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusOK, u)
}

func (h *Handlers) updateUser(c *switchyard.Context, next switchyard.Next) {
	id, err := c.ParamInt("id")
	if err != nil {
		next(fmt.Errorf("update user: %w: %w", ErrInvalidInput, err))
		return
	}

	var u User
	if err := c.Body().JSON(&u); err != nil {
		next(fmt.Errorf("update user: %w: %w", ErrInvalidInput, err))
		return
	}
	u.ID = int64(id)

	updated, err := h.svc.UpdateUser(c.Context(), u)
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusOK, updated)
}

func (h *Handlers) deleteUser(c *switchyard.Context, next switchyard.Next) {
	id, err := c.ParamInt("id")
	if err != nil {
		next(fmt.Errorf("delete user: %w: %w", ErrInvalidInput, err))
		return
	}

	if err := h.svc.DeleteUser(c.Context(), int64(id)); err != nil {
		next(err)
		return
	}
	_ = c.SendStatus(http.StatusNoContent)
}

func (h *Handlers) listBooks(c *switchyard.Context, next switchyard.Next) {
	books, err := h.svc.ListBooks(c.Context())
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusOK, books)
}

func (h *Handlers) createBook(c *switchyard.Context, next switchyard.Next) {
	var b Book
	if err := c.Body().JSON(&b); err != nil {
		next(fmt.Errorf("create book: %w: %w", ErrInvalidInput, err))
		return
	}

	created, err := h.svc.CreateBook(c.Context(), b)
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusCreated, created)
}

func (h *Handlers) getBook(c *switchyard.Context, next switchyard.Next) {
	id, err := c.ParamInt("id")
	if err != nil {
		next(fmt.Errorf("get book: %w: %w", ErrInvalidInput, err))
		return
	}

	b, err := h.svc.GetBook(c.Context(), int64(id))
	if err != nil {
		next(err)
		return
	}
	_ = c.JSON(http.StatusOK, b)
}
