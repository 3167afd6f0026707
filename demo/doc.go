// Package demo registers the sample routes that exercise the routing core:
// plain and ALL-method routes, named, compound and constrained params,
// handler arrays, the path builder, prefix-scoped middleware and form
// echoing.
//
// Register the fallback with RegisterFallback after every other package so
// it only answers GET requests nothing else matched.
package demo
