package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":              "www.example:9000",
		"database_dsn":                    "blogpulse.db",
		"access_secret_key":               "my_access_key",
		"refresh_secret_key":              "my_refresh_key",
		"access_token_validity_duration":  "15m",
		"refresh_token_validity_duration": "168h",
		"admin_emails":                    "admin@example.com",
		"redis_addr":                      "127.0.0.1:6379",
		"redis_channel":                   "push",
		"environment":                     "production",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "blogpulse.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_access_key", cfg.AccessSecretKey)
		assert.Equal(t, "my_refresh_key", cfg.RefreshSecretKey)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "admin@example.com", cfg.AdminEmails)
		assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
		assert.Equal(t, "push", cfg.RedisChannel)
		assert.Equal(t, "production", cfg.Environment)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP: "defaults:1234",
			DatabaseDSN:      "blogpulse.db",
			AccessSecretKey:  "key",
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "blogpulse.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.AccessSecretKey)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
