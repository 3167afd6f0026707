package switchyard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch is returned when no route matches the request method and path
	ErrNoMatch = errors.New("no matching route")
	// ErrMethodNotAllowed is returned when the path matches routes registered under other methods
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrChainExhausted is returned when every handler ran and none produced a response
	ErrChainExhausted = errors.New("chain exhausted without response")
	// ErrHandlerTimeout is returned when a handler neither responds nor continues before the deadline
	ErrHandlerTimeout = errors.New("handler timed out")
	// ErrConflict is returned when a duplicate route is registered under a strict registry
	ErrConflict = errors.New("route conflict")
	// ErrRegistrySealed is returned when registering after the registry was sealed
	ErrRegistrySealed = errors.New("registry sealed")
	// ErrInvalidMethod is returned for methods outside GET, POST, PUT, PATCH, DELETE and ALL
	ErrInvalidMethod = errors.New("invalid method")
	// ErrResponseSent is returned when writing a response twice
	ErrResponseSent = errors.New("response already sent")
	// ErrNoHandlers is returned when registering a route or binding without a handler
	ErrNoHandlers = errors.New("no handlers")
	// ErrInvalidPattern is matched by every PatternCompileError
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidMount is returned when mounting a nil registry or a registry onto itself
	ErrInvalidMount = errors.New("invalid mount")
)

// PatternCompileError reports a malformed route pattern or middleware prefix.
type PatternCompileError struct {
	Pattern string
	Reason  string
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("compile pattern %q: %s", e.Pattern, e.Reason)
}

func (e *PatternCompileError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// NoMatchError reports that no route accepted the request. Allowed is
// non-empty when the path matched routes registered under other methods.
type NoMatchError struct {
	Method  string
	Path    string
	Allowed []Method
}

func (e *NoMatchError) Error() string {
	if len(e.Allowed) > 0 {
		allowed := make([]string, len(e.Allowed))
		for i, m := range e.Allowed {
			allowed[i] = string(m)
		}
		return fmt.Sprintf("%s %s: method not allowed (allow: %s)", e.Method, e.Path, strings.Join(allowed, ", "))
	}
	return fmt.Sprintf("%s %s: no matching route", e.Method, e.Path)
}

func (e *NoMatchError) Is(target error) bool {
	if target == ErrMethodNotAllowed {
		return len(e.Allowed) > 0
	}
	return target == ErrNoMatch
}

// HandlerError wraps a failure signalled by a handler through its
// continuation, a recovered panic, or a timeout.
type HandlerError struct {
	Link  string
	Err   error
	Panic bool
}

func (e *HandlerError) Error() string {
	if e.Panic {
		return fmt.Sprintf("handler %s panicked: %v", e.Link, e.Err)
	}
	return fmt.Sprintf("handler %s: %v", e.Link, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// ChainExhaustedError reports a matched route whose handlers all passed
// control on without responding. It indicates a configuration defect.
type ChainExhaustedError struct {
	Method  string
	Path    string
	Pattern string
}

func (e *ChainExhaustedError) Error() string {
	return fmt.Sprintf("%s %s: route %s produced no response", e.Method, e.Path, e.Pattern)
}

func (e *ChainExhaustedError) Is(target error) bool {
	return target == ErrChainExhausted
}

// ConflictError reports a duplicate (method, pattern) registration.
type ConflictError struct {
	Method  Method
	Pattern string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("route %s %s already registered", e.Method, e.Pattern)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
