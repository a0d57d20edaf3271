package database

import (
	"path/filepath"
	"testing"

	"autolynx-portal/internal/config"
	"autolynx-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLocal_SQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "nested", "portal.db"),
	}

	db, err := OpenLocal(cfg)
	require.NoError(t, err)

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestOpenSQLite_MemorySharesConnection(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.SystemSetting{Key: "k", Value: `"v"`}).Error)

	var got models.SystemSetting
	require.NoError(t, db.First(&got, "key = ?", "k").Error)
	assert.Equal(t, `"v"`, got.Value)
}
