package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sagarc03/switchyard"
)

// UserKey is the attachment Authenticate stores the verified *Claims under.
const UserKey = "user"

// Post is a blog post owned by a user.
type Post struct {
	Username string `json:"username"`
	Title    string `json:"title"`
}

// DefaultPosts is the sample data served by GET /posts.
var DefaultPosts = []Post{
	{Username: "Emma", Title: "Post 1"},
	{Username: "Anna", Title: "Post 2"},
}

// Handlers serves the token endpoints.
type Handlers struct {
	issuer *Issuer
	tokens TokenStore
	posts  []Post
}

func NewHandlers(issuer *Issuer, tokens TokenStore, posts []Post) *Handlers {
	return &Handlers{
		issuer: issuer,
		tokens: tokens,
		posts:  posts,
	}
}

// Register adds POST /login, POST /token, DELETE /logout and GET /posts to
// reg.
func (h *Handlers) Register(reg *switchyard.Registry) error {
	return errors.Join(
		reg.Post("/login", h.login),
		reg.Post("/token", h.token),
		reg.Delete("/logout", h.logout),
		reg.Get("/posts", Authenticate(h.issuer), h.listPosts),
	)
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (h *Handlers) login(c *switchyard.Context, next switchyard.Next) {
	username := bodyField(c.Body(), "username")
	if username == "" {
		next(fmt.Errorf("login: %w", ErrMissingUsername))
		return
	}

	access, err := h.issuer.Access(username)
	if err != nil {
		next(fmt.Errorf("login: %w", err))
		return
	}

	refresh, err := h.issuer.Refresh(username)
	if err != nil {
		next(fmt.Errorf("login: %w", err))
		return
	}

	if err := h.tokens.Add(c.Context(), refresh); err != nil {
		next(fmt.Errorf("login: store refresh token: %w", err))
		return
	}

	c.Logger().Info("user logged in", "username", username)
	_ = c.JSON(http.StatusOK, tokenPair{AccessToken: access, RefreshToken: refresh})
}

func (h *Handlers) token(c *switchyard.Context, next switchyard.Next) {
	refresh := bodyField(c.Body(), "token")
	if refresh == "" {
		_ = c.SendStatus(http.StatusUnauthorized)
		return
	}

	known, err := h.tokens.Contains(c.Context(), refresh)
	if err != nil {
		next(fmt.Errorf("refresh: %w", err))
		return
	}
	if !known {
		c.Logger().Debug("refresh token rejected", "err", ErrRevokedToken)
		_ = c.SendStatus(http.StatusForbidden)
		return
	}

	claims, err := h.issuer.Verify(refresh, KindRefresh)
	if err != nil {
		c.Logger().Debug("refresh token rejected", "err", err)
		_ = c.SendStatus(http.StatusForbidden)
		return
	}

	access, err := h.issuer.Access(claims.Name)
	if err != nil {
		next(fmt.Errorf("refresh: %w", err))
		return
	}

	_ = c.JSON(http.StatusOK, tokenPair{AccessToken: access})
}

func (h *Handlers) logout(c *switchyard.Context, next switchyard.Next) {
	if refresh := bodyField(c.Body(), "token"); refresh != "" {
		if err := h.tokens.Remove(c.Context(), refresh); err != nil {
			next(fmt.Errorf("logout: %w", err))
			return
		}
	}
	_ = c.SendStatus(http.StatusNoContent)
}

func (h *Handlers) listPosts(c *switchyard.Context, next switchyard.Next) {
	claims, ok := switchyard.Value[*Claims](c, UserKey)
	if !ok {
		_ = c.SendStatus(http.StatusUnauthorized)
		return
	}

	out := make([]Post, 0, len(h.posts))
	for _, p := range h.posts {
		if p.Username == claims.Name {
			out = append(out, p)
		}
	}
	_ = c.JSON(http.StatusOK, out)
}

// Authenticate verifies the access token in the Authorization header, with
// or without a Bearer prefix. A missing token yields 401 and an invalid one
// 403. On success the claims are attached under UserKey.
func Authenticate(issuer *Issuer) switchyard.HandlerFunc {
	return func(c *switchyard.Context, next switchyard.Next) {
		token := strings.TrimSpace(c.Header("Authorization"))
		if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}

		if token == "" {
			_ = c.SendStatus(http.StatusUnauthorized)
			return
		}

		claims, err := issuer.Verify(token, KindAccess)
		if err != nil {
			c.Logger().Debug("access token rejected", "err", err)
			_ = c.SendStatus(http.StatusForbidden)
			return
		}

		c.Set(UserKey, claims)
		next(nil)
	}
}

// bodyField reads a string field from a form or JSON body.
func bodyField(b switchyard.Body, name string) string {
	if v := b.Form.Get(name); v != "" {
		return v
	}

	var fields map[string]any
	if err := b.JSON(&fields); err != nil {
		return ""
	}
	s, _ := fields[name].(string)
	return s
}
