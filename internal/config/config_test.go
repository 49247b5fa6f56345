package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Mode)
	assert.Equal(t, ModeStatic, cfg.Data.Mode)
	assert.Equal(t, []string{"utf-8", "euc-kr"}, cfg.Data.Encodings)
	assert.Equal(t, ModeStatic, cfg.Models.Mode)
	assert.Equal(t, "fs", cfg.Models.Source)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 30, cfg.Scoring.TimeoutSeconds)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("BRAI_DB_URL", "postgres://brai@localhost/brai")
	t.Setenv("BRAI_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(writeConfig(t, `
store:
  driver: postgres
  dsn: ${BRAI_DB_URL}
auth:
  enabled: true
  jwt_secret: ${BRAI_JWT_SECRET}
`))
	require.NoError(t, err)
	assert.Equal(t, "postgres://brai@localhost/brai", cfg.Store.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadConfigSQLiteDefaultPath(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "store:\n  driver: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "./data/predictions.db", cfg.Store.DSN)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"data mode":      "data:\n  mode: excel\n",
		"encoding":       "data:\n  encodings: [klingon]\n",
		"model mode":     "models:\n  mode: remote\n",
		"model source":   "models:\n  source: ftp\n",
		"s3 bucket":      "models:\n  mode: file\n  source: s3\n",
		"store driver":   "store:\n  driver: redis\n",
		"postgres dsn":   "store:\n  driver: postgres\n",
		"auth secret":    "auth:\n  enabled: true\n",
		"malformed yaml": "server: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8000", cfg.Server.Port)
}
