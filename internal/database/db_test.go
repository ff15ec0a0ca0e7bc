package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLiteIsRepeatable(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, "sqlite"))
	require.NoError(t, Migrate(ctx, db, "sqlite"))

	for _, table := range []string{
		"users", "user_profiles", "videos", "subscriptions", "payments",
		"watch_history", "watchlist_items", "reviews", "refresh_tokens",
	} {
		var n int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestMigrateUnknownDriver(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Error(t, Migrate(context.Background(), db, "oracle"))
}
