package switchyard

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Route is a registered (method, pattern) pair with its handlers.
type Route struct {
	Method   Method
	Pattern  *Pattern
	Handlers []HandlerFunc
	index    int
}

func (r *Route) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Pattern)
}

// Binding describes a registered middleware or error handler.
type Binding struct {
	Kind   LinkKind
	Prefix string
	Index  int
}

type binding struct {
	Binding
	segs    []string
	handler HandlerFunc
	onError ErrorHandlerFunc
}

// MatchStatus is the result of matching a request against the registry.
type MatchStatus int

const (
	MatchNotFound MatchStatus = iota
	MatchFound
	MatchMethodNotAllowed
)

func (s MatchStatus) String() string {
	switch s {
	case MatchFound:
		return "found"
	case MatchMethodNotAllowed:
		return "method not allowed"
	default:
		return "not found"
	}
}

// MatchResult is returned by Registry.Match.
type MatchResult struct {
	Status MatchStatus
	Route  *Route
	Params Params
	// Allowed lists the methods registered for the path when Status is
	// MatchMethodNotAllowed.
	Allowed []Method
}

// Err converts a failed match into a NoMatchError.
func (m MatchResult) Err(method, path string) error {
	if m.Status == MatchFound {
		return nil
	}
	return &NoMatchError{Method: method, Path: path, Allowed: m.Allowed}
}

// RegistryConfig holds registration policy.
type RegistryConfig struct {
	// RejectDuplicates makes registering the same method and pattern twice
	// fail with a ConflictError. By default later duplicates are shadowed.
	RejectDuplicates bool
}

// Registry stores routes and middleware in registration order. Register
// everything during startup and Seal before serving. All methods are safe
// for concurrent use.
type Registry struct {
	cfg RegistryConfig

	mu         sync.RWMutex
	routes     []*Route
	middleware []binding
	onError    []binding
	sealed     atomic.Bool
}

func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{cfg: cfg}
}

// Seal freezes the registry. Registrations racing with Seal either finish
// before it or fail with ErrRegistrySealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Route registers handlers for method and pattern. Handlers run left to
// right.
func (r *Registry) Route(method Method, pattern string, handlers ...HandlerFunc) error {
	rt, err := newRoute(method, pattern, handlers)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addRoutes([]*Route{rt})
}

func newRoute(method Method, pattern string, handlers []HandlerFunc) (*Route, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("route %s %s: %w", method, pattern, ErrInvalidMethod)
	}

	if len(handlers) == 0 {
		return nil, fmt.Errorf("route %s %s: %w", method, pattern, ErrNoHandlers)
	}
	for i, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("route %s %s: handler %d is nil: %w", method, pattern, i, ErrNoHandlers)
		}
	}

	p, err := CompilePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", method, err)
	}

	return &Route{
		Method:   method,
		Pattern:  p,
		Handlers: append([]HandlerFunc(nil), handlers...),
	}, nil
}

// addRoutes appends rts, or none of them. r.mu must be held for writing.
func (r *Registry) addRoutes(rts []*Route) error {
	if r.Sealed() {
		if len(rts) == 1 {
			return fmt.Errorf("route %s: %w", rts[0], ErrRegistrySealed)
		}
		return ErrRegistrySealed
	}

	if r.cfg.RejectDuplicates {
		seen := make(map[string]bool, len(r.routes)+len(rts))
		for _, rt := range r.routes {
			seen[rt.String()] = true
		}
		for _, rt := range rts {
			if seen[rt.String()] {
				return &ConflictError{Method: rt.Method, Pattern: rt.Pattern.String()}
			}
			seen[rt.String()] = true
		}
	}

	for _, rt := range rts {
		rt.index = len(r.routes)
		r.routes = append(r.routes, rt)
	}
	return nil
}

func (r *Registry) Get(pattern string, handlers ...HandlerFunc) error {
	return r.Route(MethodGet, pattern, handlers...)
}

func (r *Registry) Post(pattern string, handlers ...HandlerFunc) error {
	return r.Route(MethodPost, pattern, handlers...)
}

func (r *Registry) Put(pattern string, handlers ...HandlerFunc) error {
	return r.Route(MethodPut, pattern, handlers...)
}

func (r *Registry) Patch(pattern string, handlers ...HandlerFunc) error {
	return r.Route(MethodPatch, pattern, handlers...)
}

func (r *Registry) Delete(pattern string, handlers ...HandlerFunc) error {
	return r.Route(MethodDelete, pattern, handlers...)
}

// All registers handlers for every method.
func (r *Registry) All(pattern string, handlers ...HandlerFunc) error {
	return r.Route(MethodAll, pattern, handlers...)
}

// Use binds middleware to every request whose path starts with prefix,
// regardless of method. Prefix "/" matches all paths.
func (r *Registry) Use(prefix string, handlers ...HandlerFunc) error {
	if len(handlers) == 0 {
		return fmt.Errorf("use %s: %w", prefix, ErrNoHandlers)
	}

	segs, err := compilePrefix(prefix)
	if err != nil {
		return fmt.Errorf("use: %w", err)
	}

	for _, h := range handlers {
		if h == nil {
			return fmt.Errorf("use %s: nil handler: %w", prefix, ErrNoHandlers)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Sealed() {
		return fmt.Errorf("use %s: %w", prefix, ErrRegistrySealed)
	}

	for _, h := range handlers {
		r.middleware = append(r.middleware, binding{
			Binding: Binding{Kind: LinkMiddleware, Prefix: normalizePrefix(prefix), Index: len(r.middleware)},
			segs:    segs,
			handler: h,
		})
	}
	return nil
}

// UseError binds an error handler to every request whose path starts with
// prefix.
func (r *Registry) UseError(prefix string, handler ErrorHandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("use error %s: %w", prefix, ErrNoHandlers)
	}

	segs, err := compilePrefix(prefix)
	if err != nil {
		return fmt.Errorf("use error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Sealed() {
		return fmt.Errorf("use error %s: %w", prefix, ErrRegistrySealed)
	}

	r.onError = append(r.onError, binding{
		Binding: Binding{Kind: LinkError, Prefix: normalizePrefix(prefix), Index: len(r.onError)},
		segs:    segs,
		onError: handler,
	})
	return nil
}

// Mount copies child's routes, middleware and error handlers under prefix,
// the way a sub-router is mounted. Child patterns and prefixes are joined
// onto prefix: "/" becomes prefix itself and the catch-all "*" becomes
// prefix + "/*". Child middleware keeps its relative order and runs after
// middleware already registered on r. Later changes to child are not seen.
// Either everything is mounted or nothing is.
func (r *Registry) Mount(prefix string, child *Registry) error {
	if child == nil || child == r {
		return fmt.Errorf("mount %s: %w", prefix, ErrInvalidMount)
	}

	base, err := compilePrefix(prefix)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	root := "/" + strings.Join(base, "/")

	child.mu.RLock()
	childRoutes := append([]*Route(nil), child.routes...)
	childMiddleware := append([]binding(nil), child.middleware...)
	childErrors := append([]binding(nil), child.onError...)
	child.mu.RUnlock()

	rts := make([]*Route, 0, len(childRoutes))
	for _, rt := range childRoutes {
		mounted, err := newRoute(rt.Method, mountPattern(root, rt.Pattern.String()), rt.Handlers)
		if err != nil {
			return fmt.Errorf("mount %s: %w", prefix, err)
		}
		rts = append(rts, mounted)
	}

	rebase := func(b binding) binding {
		b.Prefix = mountPattern(root, b.Prefix)
		b.segs = append(append([]string(nil), base...), b.segs...)
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.addRoutes(rts); err != nil {
		return fmt.Errorf("mount %s: %w", prefix, err)
	}

	for _, b := range childMiddleware {
		b = rebase(b)
		b.Index = len(r.middleware)
		r.middleware = append(r.middleware, b)
	}
	for _, b := range childErrors {
		b = rebase(b)
		b.Index = len(r.onError)
		r.onError = append(r.onError, b)
	}
	return nil
}

// mountPattern joins a child pattern onto a literal root such as "/" or
// "/movies".
func mountPattern(root, pattern string) string {
	if root == "/" {
		return pattern
	}
	switch pattern {
	case "", "/":
		return root
	case "*":
		return root + "/*"
	}
	return root + pattern
}

// Match returns the first route, in registration order, whose pattern
// matches path and whose method accepts method. HEAD requests are served by
// GET routes.
func (r *Registry) Match(method, path string) MatchResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match(method, path)
}

func (r *Registry) match(method, path string) MatchResult {
	var allowed []Method

	for _, rt := range r.routes {
		params, ok := rt.Pattern.Match(path)
		if !ok {
			continue
		}

		if rt.Method.Accepts(method) || (method == http.MethodHead && rt.Method == MethodGet) {
			return MatchResult{Status: MatchFound, Route: rt, Params: params}
		}

		if !containsMethod(allowed, rt.Method) {
			allowed = append(allowed, rt.Method)
		}
	}

	if len(allowed) > 0 {
		return MatchResult{Status: MatchMethodNotAllowed, Allowed: allowed}
	}

	return MatchResult{Status: MatchNotFound}
}

// Chain builds the dispatch chain for a request: every middleware binding
// whose prefix matches path, in registration order, followed by the matched
// route's handlers.
func (r *Registry) Chain(method, path string) (Chain, MatchResult) {
	segs := splitPath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain Chain
	for _, b := range r.middleware {
		if hasPathPrefix(segs, b.segs) {
			chain = append(chain, Link{Kind: LinkMiddleware, Scope: b.Prefix, Index: b.Index, Handler: b.handler})
		}
	}

	m := r.match(method, path)
	if m.Status == MatchFound {
		for i, h := range m.Route.Handlers {
			chain = append(chain, Link{Kind: LinkRoute, Scope: m.Route.String(), Index: i, Handler: h})
		}
	}

	return chain, m
}

// errorHandlers returns the error bindings that apply to path, most
// specific prefix first, then in registration order.
func (r *Registry) errorHandlers(path string) []binding {
	segs := splitPath(path)

	r.mu.RLock()
	var out []binding
	for _, b := range r.onError {
		if hasPathPrefix(segs, b.segs) {
			out = append(out, b)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].segs) > len(out[j].segs)
	})
	return out
}

// Routes returns the registered routes in registration order.
func (r *Registry) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Route(nil), r.routes...)
}

// Bindings returns the registered middleware followed by the error
// handlers.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.middleware)+len(r.onError))
	for _, b := range r.middleware {
		out = append(out, b.Binding)
	}
	for _, b := range r.onError {
		out = append(out, b.Binding)
	}
	return out
}

// PathBuilder registers several methods on one pattern.
type PathBuilder struct {
	reg     *Registry
	pattern string
	err     error
}

// Path starts registering handlers for pattern under several methods.
func (r *Registry) Path(pattern string) *PathBuilder {
	return &PathBuilder{reg: r, pattern: pattern}
}

func (b *PathBuilder) add(method Method, handlers []HandlerFunc) *PathBuilder {
	if err := b.reg.Route(method, b.pattern, handlers...); err != nil {
		b.err = errors.Join(b.err, err)
	}
	return b
}

func (b *PathBuilder) Get(handlers ...HandlerFunc) *PathBuilder {
	return b.add(MethodGet, handlers)
}

func (b *PathBuilder) Post(handlers ...HandlerFunc) *PathBuilder {
	return b.add(MethodPost, handlers)
}

func (b *PathBuilder) Put(handlers ...HandlerFunc) *PathBuilder {
	return b.add(MethodPut, handlers)
}

func (b *PathBuilder) Patch(handlers ...HandlerFunc) *PathBuilder {
	return b.add(MethodPatch, handlers)
}

func (b *PathBuilder) Delete(handlers ...HandlerFunc) *PathBuilder {
	return b.add(MethodDelete, handlers)
}

func (b *PathBuilder) All(handlers ...HandlerFunc) *PathBuilder {
	return b.add(MethodAll, handlers)
}

// Err returns every registration error collected so far.
func (b *PathBuilder) Err() error {
	return b.err
}

func containsMethod(ms []Method, m Method) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

func normalizePrefix(prefix string) string {
	if prefix == "" || prefix == "*" {
		return "/"
	}
	return prefix
}
