package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(`
env = "staging"

[database]
driver = "mysql"
host = "db"
port = "3307"

[auth]
token_secret = "from-file"
max_failed_attempts = 3

[auth.access_token]
expiration = "10m"

[feed]
enrich_concurrency = 4
`), 0600)
	require.NoError(t, err)

	t.Setenv(envPrefix+"TOKEN_SECRET", "from-env")
	t.Setenv(envPrefix+"API_PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "staging", cfg.Env)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, "db", cfg.Database.Host)
	require.Equal(t, "3307", cfg.Database.Port)
	require.Equal(t, "from-env", cfg.Auth.TokenSecret)
	require.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
	require.Equal(t, 10*time.Minute, cfg.Auth.AccessToken.Expiration)
	require.Equal(t, "9000", cfg.ApiServer.Port)
	require.Equal(t, 4, cfg.Feed.EnrichConcurrency)

	// Untouched sections keep their defaults.
	require.Equal(t, "media_likes", cfg.Notification.LikeTopic)
	require.Equal(t, 5, cfg.Client.ProvisionAttempts)
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv(envPrefix+"TOKEN_SECRET", "secret")
	t.Setenv(envPrefix+"ACCESS_TOKEN_EXPIRATION", "soon")

	_, err := Load("")
	require.Error(t, err)
}

func TestDatabaseConfigs_ConnectionString(t *testing.T) {
	db := DatabaseConfigs{Driver: "sqlite", File: "test.db"}
	require.Equal(t, "test.db", db.ConnectionString())

	db = DatabaseConfigs{
		Driver:   "mysql",
		User:     "root",
		Password: "pw",
		Host:     "localhost",
		Port:     "3306",
		Database: "mediashare",
	}
	require.Equal(t,
		"root:pw@tcp(localhost:3306)/mediashare?charset=utf8mb4&parseTime=True&loc=Local",
		db.ConnectionString())
}
