package helpers

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xiaot623/gogo/governor/internal/repository"
)

// NewTestSQLiteStore opens a private in-memory store closed at test cleanup.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return OpenTestSQLiteStore(t, ":memory:")
}

// FileDSN returns a shared-cache DSN for a database file in the test's temp dir,
// in the same form as the default database.dsn.
func FileDSN(t *testing.T, name string) string {
	t.Helper()
	return fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(t.TempDir(), name))
}

// OpenTestSQLiteStore opens a store on dsn and closes it at test cleanup.
func OpenTestSQLiteStore(t *testing.T, dsn string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
