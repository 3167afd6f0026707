package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/switchyard/database/internal"
)

var usersSchema = internal.Schema{
	"id":             {Type: "bigint"},
	"first_name":     {Type: "text"},
	"last_name":      {Type: "text"},
	"favorite_color": {Type: "text"},
	"age":            {Type: "integer"},
	"cash":           {Type: "bigint"},
}

var booksSchema = internal.Schema{
	"id":     {Type: "bigint"},
	"title":  {Type: "text"},
	"author": {Type: "text"},
	"code":   {Type: "text"},
	"price":  {Type: "bigint"},
}

var refreshTokensSchema = internal.Schema{
	"token_hash": {Type: "text"},
	"created_at": {Type: "timestamp with time zone"},
}

// ValidateSchema checks every table exists in the public schema with the
// expected columns.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables Tables) error {
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

		actual, err := readColumns(ctx, pool, c.table)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", c.table, err)
		}

		if err := c.schema.Check(c.table, actual); err != nil {
			return fmt.Errorf("validate schema %s: %w", c.table, err)
		}
	}
	return nil
}

func readColumns(ctx context.Context, pool *pgxpool.Pool, table string) (internal.Schema, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := internal.Schema{}
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = internal.Column{Type: dataType, Nullable: nullable == "YES"}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return columns, nil
}
