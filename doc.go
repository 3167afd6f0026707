// Package switchyard provides a request-routing and middleware-dispatch core
// that is independent of any transport.
//
// Routes, middleware and error handlers are registered on a Registry during
// startup. A Dispatcher then seals the registry and, for each Request, builds
// the ordered chain of handlers that apply to it and runs them one at a time.
//
// # Key Components
//
//   - Registry: ordered storage for routes, prefix-scoped middleware and
//     error handlers. Registration order is execution order.
//   - Pattern: compiled path patterns with literal segments, named params
//     (:id), constrained params (:id([0-9]{5})), compound params
//     (:from-:to, :genus.:species) and wildcards (*).
//   - Dispatcher: runs a chain, honouring short-circuit responses,
//     asynchronous continuation, error handlers, panics and a deadline.
//   - Context: the per-dispatch view of a request with captured params,
//     attachments shared downstream and the buffered response.
//
// # Handler Contract
//
// A HandlerFunc receives the Context and a Next continuation. It either
// responds (which halts the chain), calls next(nil) to pass control on, or
// calls next(err) to divert to the error handlers. next may be called from
// another goroutine; only the first call counts.
//
// # Example Usage
//
//	reg := switchyard.NewRegistry(switchyard.RegistryConfig{})
//	_ = reg.Use("/things", func(c *switchyard.Context, next switchyard.Next) {
//	    c.Logger().Info("things accessed")
//	    next(nil)
//	})
//	_ = reg.Get("/users/:userId/books/:bookId", func(c *switchyard.Context, next switchyard.Next) {
//	    _ = c.JSON(http.StatusOK, c.Params())
//	})
//
//	d := switchyard.NewDispatcher(reg, switchyard.DispatcherConfig{})
//	req, _ := switchyard.NewRequest("GET", "/users/34/books/8989")
//	out := d.Dispatch(ctx, req)
//
// See the http package for the net/http adapter.
package switchyard
