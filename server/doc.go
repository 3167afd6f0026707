// Package server assembles the application: it opens the database and the
// upload directory, builds the signing keys and token issuer, registers
// every route package on one registry and serves it through the HTTP
// adapter and router.
package server
