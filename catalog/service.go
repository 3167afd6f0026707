package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxListLimit caps ListUsers page sizes.
const MaxListLimit = 1000

type Service struct {
	repo     Repo
	validate *validator.Validate
}

func NewService(repo Repo) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *Service) CreateUser(ctx context.Context, u User) (User, error) {
	u, err := s.prepareUser(u)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// CreateUsers validates every user before inserting any of them.
func (s *Service) CreateUsers(ctx context.Context, us []User) ([]User, error) {
	if len(us) == 0 {
		return nil, fmt.Errorf("create users: %w: no users given", ErrInvalidInput)
	}

	prepared := make([]User, len(us))
	for i, u := range us {
		p, err := s.prepareUser(u)
		if err != nil {
			return nil, fmt.Errorf("create users: user %d: %w", i, err)
		}
		prepared[i] = p
	}

	created, err := s.repo.CreateUsers(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return created, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, q UserQuery) ([]User, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("list users: %w: negative limit or offset", ErrInvalidInput)
	}
	q.Limit = min(q.Limit, MaxListLimit)

	users, err := s.repo.ListUsers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, u User) (User, error) {
	u, err := s.prepareUser(u)
	if err != nil {
		return User{}, fmt.Errorf("update user %d: %w", u.ID, err)
	}

	updated, err := s.repo.UpdateUser(ctx, u)
	if err != nil {
		return User{}, fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// CreateBook stores b with its code hashed. The returned book reports the
// title in upper case.
func (s *Service) CreateBook(ctx context.Context, b Book) (Book, error) {
	if err := s.validate.Struct(b); err != nil {
		return Book{}, fmt.Errorf("create book: %w: %w", ErrInvalidInput, err)
	}
	if b.Code != "" {
		b.Code = HashCode(b.Code)
	}

	created, err := s.repo.CreateBook(ctx, b)
	if err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	return present(created), nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (Book, error) {
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return present(b), nil
}

func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	for i := range books {
		books[i] = present(books[i])
	}
	return books, nil
}

func (s *Service) prepareUser(u User) (User, error) {
	if err := s.validate.Struct(u); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if u.FavoriteColor == "" {
		u.FavoriteColor = DefaultFavoriteColor
	}
	return u, nil
}

// present applies read-time formatting. Stored titles keep their case.
func present(b Book) Book {
	b.Title = strings.ToUpper(b.Title)
	return b
}
