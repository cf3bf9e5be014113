package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Falls back to defaults when config.yaml is absent", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "order-service", cfg.Service.Name)
		assert.Equal(t, 8080, cfg.Service.Port)
		assert.Equal(t, "info", cfg.Service.LogLevel)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "order_system.db", cfg.Sqlite.Path)
		assert.Equal(t, 20, cfg.Orders.DefaultPerPage)
		assert.Equal(t, 100, cfg.Orders.MaxPerPage)
		assert.False(t, cfg.Orders.StrictDates)
		assert.True(t, cfg.Orders.Seed)
		assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
		assert.Empty(t, cfg.Redis.Address)
	})

	t.Run("Reads values from config.yaml", func(t *testing.T) {
		dir := t.TempDir()
		yaml := `
service:
  name: orders-test
  port: 9090
database:
  driver: mysql
mysql:
  host: db.internal
  port: 3307
  user: orders
  password: secret
  dbname: db_orders
orders:
  max_per_page: 50
  strict_dates: true
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "orders-test", cfg.Service.Name)
		assert.Equal(t, 9090, cfg.Service.Port)
		assert.Equal(t, "mysql", cfg.Database.Driver)
		assert.Equal(t, "db.internal", cfg.Mysql.Host)
		assert.Equal(t, 3307, cfg.Mysql.Port)
		assert.Equal(t, "db_orders", cfg.Mysql.DbName)
		assert.Equal(t, 50, cfg.Orders.MaxPerPage)
		assert.True(t, cfg.Orders.StrictDates)
		// untouched keys keep their defaults
		assert.Equal(t, 20, cfg.Orders.DefaultPerPage)
	})

	t.Run("Environment overrides file and defaults", func(t *testing.T) {
		t.Setenv("MYSQL_HOST", "mysql-from-env")
		t.Setenv("SERVICE_PORT", "7070")
		t.Setenv("ORDERS_SEED", "false")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "mysql-from-env", cfg.Mysql.Host)
		assert.Equal(t, 7070, cfg.Service.Port)
		assert.False(t, cfg.Orders.Seed)
	})

	t.Run("Returns an error for a malformed config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("service: [unterminated"), 0o600))

		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}
