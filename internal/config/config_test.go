package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Storage.Engine)
	assert.Equal(t, "./data", cfg.Storage.DataPath)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 10, cfg.Matching.TopK)
	assert.Equal(t, 0.3, cfg.Matching.MinScore)
	assert.Equal(t, 5, cfg.Matching.RecommendationTopK)
	assert.Equal(t, time.Hour, cfg.Notify.SnapshotTTL)
	assert.Empty(t, cfg.Security.APIToken)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MATCHING_PORT", "9090")
	t.Setenv("MATCHING_STORAGE_ENGINE", "postgres")
	t.Setenv("MATCHING_POSTGRES_DSN", "postgres://localhost/matching")
	t.Setenv("MATCHING_EMBEDDING_PROVIDER", "openai")
	t.Setenv("MATCHING_OPENAI_API_KEY", "sk-test")
	t.Setenv("MATCHING_EMBEDDING_TIMEOUT", "45s")
	t.Setenv("MATCHING_MIN_SCORE", "0.5")
	t.Setenv("MATCHING_SNAPSHOT_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Engine)
	assert.Equal(t, "postgres://localhost/matching", cfg.Storage.PostgresDSN)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "sk-test", cfg.Embedding.OpenAIAPIKey)
	assert.Equal(t, 45*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 0.5, cfg.Matching.MinScore)
	assert.Equal(t, 2*time.Hour, cfg.Notify.SnapshotTTL)
}

func TestLoadConfigInvalidEnvValuesKeepDefaults(t *testing.T) {
	t.Setenv("MATCHING_PORT", "not-a-number")
	t.Setenv("MATCHING_MIN_SCORE", "lots")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 0.3, cfg.Matching.MinScore)
}

func TestLoadConfigFileThenEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matching.yaml")
	yaml := `
server:
  port: 7070
  host: 0.0.0.0
matching:
  top_k: 25
  min_score: 0.4
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("MATCHING_TOP_K", "50")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	// File overrides defaults.
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 0.4, cfg.Matching.MinScore)

	// Env overrides the file.
	assert.Equal(t, 50, cfg.Matching.TopK)
}

func TestLoadConfigFileViaEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matching.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 6061\n"), 0o644))

	t.Setenv("MATCHING_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 6061, cfg.Server.Port)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadConfigFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("MATCHING_PORT", "70000")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server port")
	})

	t.Run("unknown engine", func(t *testing.T) {
		t.Setenv("MATCHING_STORAGE_ENGINE", "cassandra")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage engine")
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("MATCHING_STORAGE_ENGINE", "postgres")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires MATCHING_POSTGRES_DSN")
	})

	t.Run("min score out of range", func(t *testing.T) {
		t.Setenv("MATCHING_MIN_SCORE", "1.5")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})
}
