package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/switchyard/database/internal"
)

var usersSchema = internal.Schema{
	"id":             {Type: "integer"},
	"first_name":     {Type: "text"},
	"last_name":      {Type: "text"},
	"favorite_color": {Type: "text"},
	"age":            {Type: "integer"},
	"cash":           {Type: "integer"},
}

var booksSchema = internal.Schema{
	"id":     {Type: "integer"},
	"title":  {Type: "text"},
	"author": {Type: "text"},
	"code":   {Type: "text"},
	"price":  {Type: "integer"},
}

var refreshTokensSchema = internal.Schema{
	"token_hash": {Type: "text"},
	"created_at": {Type: "text"},
}

// ValidateSchema checks every table exists with the expected columns.
func ValidateSchema(ctx context.Context, db *sql.DB, tables Tables) error {
	checks := []struct {
		table  string
		schema internal.Schema
	}{
		{tables.Users, usersSchema},
		{tables.Books, booksSchema},
		{tables.RefreshTokens, refreshTokensSchema},
	}

	for _, c := range checks {
		if !internal.IsValidTableName(c.table) {
			return fmt.Errorf("validate schema: invalid table name: %s", c.table)
		}

		actual, err := readColumns(ctx, db, c.table)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", c.table, err)
		}

		if err := c.schema.Check(c.table, actual); err != nil {
			return fmt.Errorf("validate schema %s: %w", c.table, err)
		}
	}
	return nil
}

// readColumns returns the columns of table as reported by PRAGMA
// table_info. A table with no columns does not exist.
func readColumns(ctx context.Context, db *sql.DB, table string) (internal.Schema, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := internal.Schema{}
	for rows.Next() {
		var (
			cid       int
			name      string
			dataType  string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = internal.Column{Type: dataType, Nullable: notNull == 0 && pk == 0}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return columns, nil
}
