package switchyard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
)

// Response is the outcome a handler produced.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Context is the per-dispatch view of a Request. It carries captured path
// parameters, attachments handlers share with downstream handlers, and the
// buffered response.
type Context struct {
	ctx    context.Context
	req    *Request
	params Params
	logger *slog.Logger

	mu     sync.Mutex
	items  map[string]any
	status int
	resp   Response
	sent   bool
	sentCh chan struct{}
	closed bool
	link   *linkState
}

// linkState tracks the work started for one link of the chain: the handler
// call itself and every goroutine started with Context.Go.
type linkState struct {
	wg     sync.WaitGroup
	panics chan any
}

func newLinkState() *linkState {
	return &linkState{panics: make(chan any, 1)}
}

func (l *linkState) recovered(p any) {
	select {
	case l.panics <- p:
	default:
	}
}

func newContext(ctx context.Context, req *Request, params Params, logger *slog.Logger) *Context {
	if params == nil {
		params = Params{}
	}
	return &Context{
		ctx:    ctx,
		req:    req,
		params: params,
		logger: logger,
		resp:   Response{Header: make(http.Header)},
		sentCh: make(chan struct{}),
	}
}

// Context returns the dispatch context. It is cancelled when the dispatch
// deadline passes.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Request returns the request being dispatched.
func (c *Context) Request() *Request {
	return c.req
}

func (c *Context) Method() string {
	return c.req.Method
}

func (c *Context) Path() string {
	return c.req.Path
}

// Logger returns a logger annotated with the request method and path.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Param returns a captured path parameter, or "" when absent.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// ParamInt parses a captured path parameter as an integer.
func (c *Context) ParamInt(name string) (int, error) {
	raw, ok := c.params[name]
	if !ok {
		return 0, fmt.Errorf("param %q: missing", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", name, err)
	}
	return n, nil
}

// Params returns a copy of every captured path parameter.
func (c *Context) Params() Params {
	return c.params.clone()
}

// Query returns a query parameter, or "" when absent.
func (c *Context) Query(key string) string {
	return c.req.Query.Get(key)
}

// QueryInt parses a query parameter as an integer.
func (c *Context) QueryInt(key string) (int, error) {
	return c.req.Query.Int(key)
}

// Header returns a request header value.
func (c *Context) Header(key string) string {
	if c.req.Header == nil {
		return ""
	}
	return c.req.Header.Get(key)
}

// Body returns the negotiated request payload.
func (c *Context) Body() Body {
	return c.req.Body
}

// Set attaches a value for downstream handlers.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]any)
	}
	c.items[key] = value
}

// Get returns an attachment set by an upstream handler.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Value returns the attachment under key when it holds a T.
func Value[T any](c *Context, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Go runs fn in a goroutine that belongs to the current link. The
// dispatcher treats the link as running until the handler and every
// goroutine it started with Go have returned, so fn may respond and then
// call next. Go must be called before the handler returns. A panic in fn is
// reported like a panic in the handler.
func (c *Context) Go(fn func()) {
	c.mu.Lock()
	l := c.link
	c.mu.Unlock()

	if l == nil {
		l = newLinkState()
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				l.recovered(p)
			}
		}()
		fn()
	}()
}

func (c *Context) beginLink() *linkState {
	l := newLinkState()
	c.mu.Lock()
	c.link = l
	c.mu.Unlock()
	return l
}

// ResponseHeader returns a copy of the response header set so far.
func (c *Context) ResponseHeader() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resp.Header.Clone()
}

// SetHeader sets a response header. Headers set after the response is sent
// are dropped.
func (c *Context) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent || c.closed {
		return
	}
	c.resp.Header.Set(key, value)
}

// AddHeader appends a response header value. Headers added after the
// response is sent are dropped.
func (c *Context) AddHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent || c.closed {
		return
	}
	c.resp.Header.Add(key, value)
}

// Status sets the status code used by the next Send.
func (c *Context) Status(code int) *Context {
	c.mu.Lock()
	c.status = code
	c.mu.Unlock()
	return c
}

// Send writes body as the response. Only the first response counts.
func (c *Context) Send(body []byte) error {
	return c.send(0, "", body, "")
}

// String responds with a plain text body.
func (c *Context) String(code int, s string) error {
	return c.send(code, "text/plain; charset=utf-8", []byte(s), "")
}

// HTML responds with an HTML body.
func (c *Context) HTML(code int, s string) error {
	return c.send(code, "text/html; charset=utf-8", []byte(s), "")
}

// JSON responds with v encoded as JSON.
func (c *Context) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json response: %w", err)
	}
	return c.send(code, "application/json", append(data, '\n'), "")
}

// SendStatus responds with code and its status text as body.
func (c *Context) SendStatus(code int) error {
	if code == http.StatusNoContent || code == http.StatusNotModified {
		return c.send(code, "", nil, "")
	}
	return c.send(code, "text/plain; charset=utf-8", []byte(http.StatusText(code)), "")
}

// Redirect responds with a redirect to url.
func (c *Context) Redirect(code int, url string) error {
	return c.send(code, "", nil, url)
}

// Responded reports whether a response was written.
func (c *Context) Responded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

func (c *Context) send(code int, contentType string, body []byte, location string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%w: dispatch finished", ErrResponseSent)
	}
	if c.sent {
		return ErrResponseSent
	}

	switch {
	case code != 0:
	case c.status != 0:
		code = c.status
	default:
		code = http.StatusOK
	}

	if location != "" {
		c.resp.Header.Set("Location", location)
	}
	if contentType != "" && c.resp.Header.Get("Content-Type") == "" {
		c.resp.Header.Set("Content-Type", contentType)
	}

	c.resp.Status = code
	c.resp.Body = body
	c.sent = true
	close(c.sentCh)
	return nil
}

// finish stops accepting writes and returns the response, if any.
func (c *Context) finish() (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return Response{Status: c.resp.Status, Header: c.resp.Header.Clone(), Body: c.resp.Body}, c.sent
}
