package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	log, err := logger.New("test")
	require.NoError(t, err)

	svc, err := Open(log, Config{SQLitePath: filepath.Join(t.TempDir(), "sv.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	assert.Equal(t, "sqlite", svc.Dialect())

	require.NoError(t, svc.AutoMigrateAll())
	require.NoError(t, svc.AutoMigrateAll(), "migrations are re-runnable")

	for _, m := range types.Models() {
		assert.True(t, svc.DB().WithContext(context.Background()).Migrator().HasTable(m))
	}
}
