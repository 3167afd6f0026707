package catalog

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultFavoriteColor is assigned to users created without one.
const DefaultFavoriteColor = "green"

// User is a person record.
type User struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"firstName" validate:"required,max=255"`
	LastName      string `json:"lastName,omitempty" validate:"max=255"`
	FavoriteColor string `json:"favoriteColor"`
	Age           int    `json:"age,omitempty" validate:"min=0,max=200"`
	Cash          int64  `json:"cash,omitempty" validate:"min=0"`
}

// Book is a catalog entry. Code holds the SHA-256 hex digest of the code
// it was created with.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author,omitempty" validate:"max=255"`
	Code   string `json:"code,omitempty"`
	Price  int64  `json:"price" validate:"min=0"`
}

// UserQuery filters and orders ListUsers results.
type UserQuery struct {
	// FirstName matches exactly when non-empty.
	FirstName string
	// ByAgeDesc orders by age, oldest first. The default order is by id.
	ByAgeDesc bool
	// Limit of zero returns every match.
	Limit  int
	Offset int
}

// HashCode returns the hex encoded SHA-256 digest of code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
