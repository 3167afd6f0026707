package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/switchyard/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// randomTables returns table names unique to one test.
func randomTables(t *testing.T) sqlite.Tables {
	t.Helper()
	suffix := getRandomString(t)
	return sqlite.Tables{
		Users:         "users_" + suffix,
		Books:         "books_" + suffix,
		RefreshTokens: "refresh_tokens_" + suffix,
	}
}

// setupTestDB connects to a migrated in-memory database.
func setupTestDB(t *testing.T) *sqlite.Database {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", randomTables(t))
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db
}
