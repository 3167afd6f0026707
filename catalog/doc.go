// Package catalog manages users and books.
//
// The Service applies model rules on top of a Repo: users get a favorite
// color of "green" unless one is given, book codes are stored as SHA-256 hex
// digests and book titles are reported in upper case. Repos are provided by
// the database/sqlite and database/postgres packages.
//
// Handlers exposes the service over a switchyard.Registry under /users and
// /books.
package catalog
