package bootstrap

import (
	"path/filepath"
	"testing"

	"workshophub/internal/cache"
	"workshophub/internal/config"
	"workshophub/internal/database"
	"workshophub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: filepath.Join(t.TempDir(), "runtime.db"),
		RedisURL:     redisAddr,
	}
}

func TestInitRuntime_SeedsCatalog(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { _ = cache.Close() })

	db, rdb, err := InitRuntime(testConfig(t, mr.Addr()), Options{SeedCatalog: true, DemoUsers: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	assert.NotNil(t, rdb)

	var react models.Workshop
	require.NoError(t, db.Where("slug = ?", "reactjs-workshop").First(&react).Error)
	assert.Equal(t, 30, react.MaxStudents)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
}

func TestInitRuntime_WithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Cleanup(func() { _ = cache.Close() })

	db, rdb, err := InitRuntime(testConfig(t, addr), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	assert.Nil(t, rdb)

	var workshops int64
	require.NoError(t, db.Model(&models.Workshop{}).Count(&workshops).Error)
	assert.Zero(t, workshops)
}

func TestInitRuntime_BadCatalogPath(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { _ = cache.Close() })

	cfg := testConfig(t, mr.Addr())
	cfg.SeedCatalog = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err := InitRuntime(cfg, Options{SeedCatalog: true})
	assert.Error(t, err)
}
