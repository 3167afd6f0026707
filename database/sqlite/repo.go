// Package sqlite implements the catalog repo and refresh token store using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/switchyard/catalog"
)

// Repo implements catalog.Repo on two SQLite tables.
type Repo struct {
	db    *sql.DB
	users string
	books string
}

const userColumns = `id, first_name, last_name, favorite_color, age, cash`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (catalog.User, error) {
	var u catalog.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.FavoriteColor, &u.Age, &u.Cash)
	return u, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repo) insertUser(ctx context.Context, ex execer, u catalog.User) (catalog.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (first_name, last_name, favorite_color, age, cash)
		VALUES (?, ?, ?, ?, ?)`, quoteIdentifier(r.users))

	res, err := ex.ExecContext(ctx, query, u.FirstName, u.LastName, u.FavoriteColor, u.Age, u.Cash)
	if err != nil {
		return catalog.User{}, err
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return catalog.User{}, fmt.Errorf("last insert id: %w", err)
	}
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u catalog.User) (catalog.User, error) {
	created, err := r.insertUser(ctx, r.db, u)
	if err != nil {
		return catalog.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// CreateUsers inserts every user in one transaction.
func (r *Repo) CreateUsers(ctx context.Context, us []catalog.User) ([]catalog.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create users: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]catalog.User, 0, len(us))
	for _, u := range us {
		c, err := r.insertUser(ctx, tx, u)
		if err != nil {
			return nil, fmt.Errorf("create users: %w", err)
		}
		created = append(created, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create users: commit: %w", err)
	}
	return created, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (catalog.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ?`, userColumns, quoteIdentifier(r.users))

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.User{}, catalog.ErrNotFound
		}
		return catalog.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repo) ListUsers(ctx context.Context, q catalog.UserQuery) ([]catalog.User, error) {
	var (
		query strings.Builder
		args  []any
	)

	fmt.Fprintf(&query, `SELECT %s FROM %s`, userColumns, quoteIdentifier(r.users))

	if q.FirstName != "" {
		query.WriteString(` WHERE first_name = ?`)
		args = append(args, q.FirstName)
	}

	if q.ByAgeDesc {
		query.WriteString(` ORDER BY age DESC, id ASC`)
	} else {
		query.WriteString(` ORDER BY id ASC`)
	}

	// SQLite needs a LIMIT before OFFSET; -1 means no limit.
	limit := q.Limit
	if limit == 0 {
		limit = -1
	}
	query.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []catalog.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: scan: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: rows: %w", err)
	}

	return users, nil
}

func (r *Repo) UpdateUser(ctx context.Context, u catalog.User) (catalog.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET first_name = ?, last_name = ?, favorite_color = ?, age = ?, cash = ?
		WHERE id = ?`, quoteIdentifier(r.users))

	res, err := r.db.ExecContext(ctx, query, u.FirstName, u.LastName, u.FavoriteColor, u.Age, u.Cash, u.ID)
	if err != nil {
		return catalog.User{}, fmt.Errorf("update user: %w", err)
	}

	if err := expectAffected(res); err != nil {
		return catalog.User{}, fmt.Errorf("update user: %w", err)
	}

	return u, nil
}

func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE id = ?`, quoteIdentifier(r.users))

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := expectAffected(res); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

func (r *Repo) CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (title, author, code, price) VALUES (?, ?, ?, ?)`, quoteIdentifier(r.books))

	res, err := r.db.ExecContext(ctx, query, b.Title, b.Author, b.Code, b.Price)
	if err != nil {
		return catalog.Book{}, fmt.Errorf("create book: %w", err)
	}

	b.ID, err = res.LastInsertId()
	if err != nil {
		return catalog.Book{}, fmt.Errorf("create book: last insert id: %w", err)
	}
	return b, nil
}

func (r *Repo) GetBook(ctx context.Context, id int64) (catalog.Book, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, title, author, code, price FROM %s WHERE id = ?`, quoteIdentifier(r.books))

	var b catalog.Book
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Title, &b.Author, &b.Code, &b.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Book{}, catalog.ErrNotFound
		}
		return catalog.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *Repo) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, title, author, code, price FROM %s ORDER BY id ASC`, quoteIdentifier(r.books))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := []catalog.Book{}
	for rows.Next() {
		var b catalog.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Code, &b.Price); err != nil {
			return nil, fmt.Errorf("list books: scan: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: rows: %w", err)
	}

	return books, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
