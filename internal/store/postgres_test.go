package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	s, err := NewPostgresStore(dsn, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, table := range pgTables {
			_, _ = s.database.ExecContext(context.Background(), "DELETE FROM "+table)
		}
		_ = s.Close()
	})
	for _, table := range pgTables {
		_, err := s.database.ExecContext(context.Background(), "DELETE FROM "+table)
		require.NoError(t, err)
	}

	runStoreContract(t, s)
}
