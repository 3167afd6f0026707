// Package internal holds table naming shared by the database backends.
package internal

import (
	"errors"
	"fmt"
	"regexp"
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// IsValidTableName reports whether name can be used as an unquoted SQL
// identifier in both SQLite and PostgreSQL.
func IsValidTableName(name string) bool {
	return tableNameRe.MatchString(name)
}

// Tables names the tables the backends create and query.
type Tables struct {
	Users         string `mapstructure:"users" yaml:"users"`
	Books         string `mapstructure:"books" yaml:"books"`
	RefreshTokens string `mapstructure:"refresh_tokens" yaml:"refresh_tokens"`
}

// DefaultTables are used when no names are configured.
var DefaultTables = Tables{
	Users:         "users",
	Books:         "books",
	RefreshTokens: "refresh_tokens",
}

// Validate checks every name is a valid and distinct table name.
func (t Tables) Validate() error {
	seen := make(map[string]string, 3)
	var errs []error

	for _, entry := range []struct{ field, name string }{
		{"users", t.Users},
		{"books", t.Books},
		{"refresh_tokens", t.RefreshTokens},
	} {
		if !IsValidTableName(entry.name) {
			errs = append(errs, fmt.Errorf("tables.%s: invalid table name %q", entry.field, entry.name))
			continue
		}
		if other, dup := seen[entry.name]; dup {
			errs = append(errs, fmt.Errorf("tables.%s: name %q already used by tables.%s", entry.field, entry.name, other))
			continue
		}
		seen[entry.name] = entry.field
	}

	return errors.Join(errs...)
}
