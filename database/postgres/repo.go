// Package postgres implements the catalog repo and refresh token store for PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/switchyard/catalog"
)

// Repo implements catalog.Repo on two PostgreSQL tables.
type Repo struct {
	pool  *pgxpool.Pool
	users string
	books string
}

// NewRepo returns a repo over an existing pool.
func NewRepo(pool *pgxpool.Pool, tables Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, users: tables.Users, books: tables.Books}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const userColumns = `id, first_name, last_name, favorite_color, age, cash`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanUser(row pgx.Row) (catalog.User, error) {
	var u catalog.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.FavoriteColor, &u.Age, &u.Cash)
	return u, err
}

func (r *Repo) insertUser(ctx context.Context, q querier, u catalog.User) (catalog.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (first_name, last_name, favorite_color, age, cash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, pgx.Identifier{r.users}.Sanitize())

	if err := q.QueryRow(ctx, query, u.FirstName, u.LastName, u.FavoriteColor, u.Age, u.Cash).Scan(&u.ID); err != nil {
		return catalog.User{}, err
	}
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u catalog.User) (catalog.User, error) {
	created, err := r.insertUser(ctx, r.pool, u)
	if err != nil {
		return catalog.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// CreateUsers inserts every user in one transaction.
func (r *Repo) CreateUsers(ctx context.Context, us []catalog.User) ([]catalog.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create users: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := make([]catalog.User, 0, len(us))
	for _, u := range us {
		c, err := r.insertUser(ctx, tx, u)
		if err != nil {
			return nil, fmt.Errorf("create users: %w", err)
		}
		created = append(created, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create users: commit: %w", err)
	}
	return created, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (catalog.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, pgx.Identifier{r.users}.Sanitize())

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	fmt.Fprintf(&query, `SELECT %s FROM %s`, userColumns, pgx.Identifier{r.users}.Sanitize())

	if q.FirstName != "" {
		args = append(args, q.FirstName)
		fmt.Fprintf(&query, ` WHERE first_name = $%d`, len(args))
	}

	if q.ByAgeDesc {
		query.WriteString(` ORDER BY age DESC, id ASC`)
	} else {
		query.WriteString(` ORDER BY id ASC`)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&query, ` LIMIT $%d`, len(args))
	}

	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&query, ` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	if users == nil {
		users = []catalog.User{}
	}
	return users, nil
}

func (r *Repo) UpdateUser(ctx context.Context, u catalog.User) (catalog.User, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET first_name = $1, last_name = $2, favorite_color = $3, age = $4, cash = $5
		WHERE id = $6
	`, pgx.Identifier{r.users}.Sanitize())

	tag, err := r.pool.Exec(ctx, query, u.FirstName, u.LastName, u.FavoriteColor, u.Age, u.Cash, u.ID)
	if err != nil {
		return catalog.User{}, fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return catalog.User{}, fmt.Errorf("update user: %w", catalog.ErrNotFound)
	}

	return u, nil
}

func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pgx.Identifier{r.users}.Sanitize())

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete user: %w", catalog.ErrNotFound)
	}

	return nil
}

func (r *Repo) CreateBook(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, author, code, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, pgx.Identifier{r.books}.Sanitize())

	if err := r.pool.QueryRow(ctx, query, b.Title, b.Author, b.Code, b.Price).Scan(&b.ID); err != nil {
		return catalog.Book{}, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

func (r *Repo) GetBook(ctx context.Context, id int64) (catalog.Book, error) {
	query := fmt.Sprintf(`SELECT id, title, author, code, price FROM %s WHERE id = $1`, pgx.Identifier{r.books}.Sanitize())

	var b catalog.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Title, &b.Author, &b.Code, &b.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Book{}, catalog.ErrNotFound
		}
		return catalog.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *Repo) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	query := fmt.Sprintf(`SELECT id, title, author, code, price FROM %s ORDER BY id ASC`, pgx.Identifier{r.books}.Sanitize())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Book, error) {
		var b catalog.Book
		err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Code, &b.Price)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if books == nil {
		books = []catalog.Book{}
	}
	return books, nil
}
