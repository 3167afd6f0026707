package catalog

import "context"

// Repo persists users and books. Get, Update and Delete return ErrNotFound
// for unknown ids.
type Repo interface {
	CreateUser(ctx context.Context, u User) (User, error)
	CreateUsers(ctx context.Context, us []User) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, q UserQuery) ([]User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateBook(ctx context.Context, b Book) (Book, error)
	GetBook(ctx context.Context, id int64) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
}
