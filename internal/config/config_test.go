package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: access
  refresh_secret: refresh
database:
  host: db.internal
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, 5, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, "careconnect.events", cfg.Redis.Channel)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
  refresh_secret: refresh
database:
  host: db.internal
  port: 5432
`)
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SMTP_PASSWORD", "smtp")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "smtp", cfg.Email.Password)
}

func TestValidateRequiresSecrets(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
	assert.Contains(t, err.Error(), "jwt.refresh_secret is required")
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.URL())
	assert.Contains(t, db.DSN(), "dbname=n")
}
