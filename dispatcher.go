package switchyard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a dispatch when DispatcherConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// OutcomeKind classifies the result of a dispatch.
type OutcomeKind int

const (
	// OutcomeResponse means a handler responded.
	OutcomeResponse OutcomeKind = iota
	// OutcomeNotFound means no handler responded and no route matched.
	OutcomeNotFound
	// OutcomeMethodNotAllowed means no handler responded and the path only
	// matched routes registered under other methods.
	OutcomeMethodNotAllowed
	// OutcomeFailure means a handler failed and no error handler responded.
	OutcomeFailure
	// OutcomeTimeout means a handler neither responded nor continued before
	// the deadline.
	OutcomeTimeout
	// OutcomeExhausted means a route matched but no handler responded.
	OutcomeExhausted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResponse:
		return "response"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeMethodNotAllowed:
		return "method_not_allowed"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of dispatching one request.
type Outcome struct {
	Kind     OutcomeKind
	Response Response
	// Err is set for every non-response outcome, and for responses written
	// by an error handler.
	Err   error
	Match MatchResult
	// Trace lists the links that ran, in order.
	Trace []string
}

// DispatcherConfig holds dispatcher options.
type DispatcherConfig struct {
	// Timeout bounds how long a dispatch waits for its handlers. Zero means
	// DefaultTimeout, a negative value disables the deadline.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Dispatcher executes dispatch chains against a sealed Registry.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDispatcher seals reg and returns a Dispatcher serving it.
func NewDispatcher(reg *Registry, cfg DispatcherConfig) *Dispatcher {
	reg.Seal()

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		registry: reg,
		timeout:  timeout,
		logger:   logger,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

type signal struct {
	next bool
	err  *HandlerError
}

// Dispatch matches req, runs its chain and reports the outcome. It never
// panics on handler failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) Outcome {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	chain, match := d.registry.Chain(req.Method, req.Path)
	logger := d.logger.With("method", req.Method, "path", req.Path)
	c := newContext(ctx, req, match.Params, logger)
	out := Outcome{Match: match}

	for _, link := range chain {
		name := link.String()
		out.Trace = append(out.Trace, name)

		sig := d.run(c, name, link.Handler)
		if sig.err != nil {
			return d.recover(c, req, sig.err, out)
		}
		if !sig.next {
			break
		}
	}

	resp, sent := c.finish()
	if sent {
		out.Kind = OutcomeResponse
		out.Response = resp
		return out
	}

	switch match.Status {
	case MatchFound:
		err := &ChainExhaustedError{Method: req.Method, Path: req.Path, Pattern: match.Route.Pattern.String()}
		logger.Error("chain exhausted without response", "route", match.Route.String(), "err", err)
		out.Kind = OutcomeExhausted
		out.Err = err
		out.Response = Response{Status: http.StatusInternalServerError, Header: make(http.Header)}
	case MatchMethodNotAllowed:
		allowed := make([]string, len(match.Allowed))
		for i, m := range match.Allowed {
			allowed[i] = string(m)
		}
		out.Kind = OutcomeMethodNotAllowed
		out.Err = match.Err(req.Method, req.Path)
		out.Response = Response{Status: http.StatusMethodNotAllowed, Header: http.Header{"Allow": {strings.Join(allowed, ", ")}}}
		logger.Debug("method not allowed", "allow", allowed)
	default:
		out.Kind = OutcomeNotFound
		out.Err = match.Err(req.Method, req.Path)
		out.Response = Response{Status: http.StatusNotFound, Header: make(http.Header)}
		logger.Debug("no matching route")
	}

	return out
}

// recover runs the error handlers that apply to the request. Timeouts skip
// them: the deadline has already passed.
func (d *Dispatcher) recover(c *Context, req *Request, failure *HandlerError, out Outcome) Outcome {
	var current error = failure

	if !errors.Is(failure, ErrHandlerTimeout) {
		for _, b := range d.registry.errorHandlers(req.Path) {
			name := fmt.Sprintf("%s %s #%d", b.Kind, b.Prefix, b.Index)
			out.Trace = append(out.Trace, name)

			handler := b.onError
			passed := current
			sig := d.run(c, name, func(c *Context, next Next) {
				handler(c, passed, next)
			})

			if sig.err != nil {
				if sig.err.Panic || errors.Is(sig.err, ErrHandlerTimeout) {
					current = sig.err
					if errors.Is(sig.err, ErrHandlerTimeout) {
						break
					}
					continue
				}
				current = sig.err.Err
				continue
			}

			if !sig.next {
				break
			}
		}
	}

	out.Err = current

	resp, sent := c.finish()
	if sent {
		out.Kind = OutcomeResponse
		out.Response = resp
		return out
	}

	status := http.StatusInternalServerError
	out.Kind = OutcomeFailure
	if errors.Is(current, ErrHandlerTimeout) {
		status = http.StatusGatewayTimeout
		out.Kind = OutcomeTimeout
	}

	c.Logger().Error("handler failed", "err", current, "outcome", out.Kind.String())
	out.Response = Response{Status: status, Header: make(http.Header)}
	return out
}

// run executes one handler and waits for its signal. The link is running
// until the handler and the goroutines it started with Context.Go have
// returned; next(nil) during that time continues the chain even after a
// response. Once the link has returned, a written response halts the chain,
// including one written later by a goroutine started with a bare go
// statement. Such goroutines are not part of the link, so responding from
// one and then calling next only continues if next wins the race.
func (d *Dispatcher) run(c *Context, name string, h HandlerFunc) signal {
	nextCh := make(chan error, 1)
	var once sync.Once
	next := func(err error) {
		once.Do(func() { nextCh <- err })
	}

	l := c.beginLink()
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				l.recovered(p)
			}
		}()
		h(c, next)
	}()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	continued := func(err error) signal {
		if err == nil {
			return signal{next: true}
		}
		return signal{err: &HandlerError{Link: name, Err: err}}
	}

	panicked := func(p any) signal {
		err, ok := p.(error)
		if !ok {
			err = fmt.Errorf("%v", p)
		}
		return signal{err: &HandlerError{Link: name, Err: err, Panic: true}}
	}

	doneCh := done
	var sentCh chan struct{}
	for {
		select {
		case err := <-nextCh:
			return continued(err)
		case p := <-l.panics:
			return panicked(p)
		case <-doneCh:
			// Everything the link started happened before done closed.
			select {
			case p := <-l.panics:
				return panicked(p)
			default:
			}
			select {
			case err := <-nextCh:
				return continued(err)
			default:
			}
			if c.Responded() {
				return signal{}
			}
			doneCh = nil
			sentCh = c.sentCh
		case <-sentCh:
			select {
			case err := <-nextCh:
				return continued(err)
			default:
			}
			return signal{}
		case <-c.ctx.Done():
			select {
			case err := <-nextCh:
				return continued(err)
			default:
			}
			if c.Responded() {
				return signal{}
			}
			return signal{err: &HandlerError{Link: name, Err: fmt.Errorf("%w: %w", ErrHandlerTimeout, c.ctx.Err())}}
		}
	}
}
