package switchyard

import (
	"fmt"
	"strings"
)

// Method is the request method a route is registered under.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
	MethodAll    Method = "ALL"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodAll:
		return true
	default:
		return false
	}
}

// Accepts reports whether a route registered under m accepts a request
// made with method.
func (m Method) Accepts(method string) bool {
	return m == MethodAll || string(m) == method
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("parse method %q: %w (valid methods: GET, POST, PUT, PATCH, DELETE, ALL)", s, ErrInvalidMethod)
	}
	return m, nil
}

// HandlerFunc is a link in a dispatch chain. It either responds through c,
// calls next(nil) to pass control on, or calls next(err) to fail.
type HandlerFunc func(c *Context, next Next)

// ErrorHandlerFunc handles a failure raised by a HandlerFunc. Calling
// next(nil) passes the same error to the next error handler; next(err)
// replaces it.
type ErrorHandlerFunc func(c *Context, err error, next Next)

// Next is the continuation handed to every handler. Only the first call
// has an effect.
type Next func(err error)

// Params holds path parameters captured by a pattern match.
type Params map[string]string

// Get returns the named parameter and whether it was captured.
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
