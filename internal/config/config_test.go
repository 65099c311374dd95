package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "grades.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Batch.MaxConcurrentSubmissions)

	assert.Equal(t, 37.5, cfg.Grading.MaxPoints)
	assert.Equal(t, 0.40, cfg.Grading.Weights.Technical)
	assert.Equal(t, 0.30, cfg.Grading.Weights.Analysis)
	assert.Equal(t, 0.25, cfg.Grading.Weights.Communication)
	assert.Equal(t, 0.05, cfg.Grading.Weights.Bonus)
	assert.Equal(t, 4096, cfg.Grading.MaxTokens)
	assert.Equal(t, 120, cfg.Grading.TimeoutSecs)

	assert.Equal(t, 0.80, cfg.Compare.SimilarityThreshold)
	assert.Equal(t, 5, cfg.Compare.RowCountTolerance)
	assert.Equal(t, 0.05, cfg.Compare.NumericTolerancePct)
	assert.Equal(t, 2, cfg.Compare.CountTolerance)

	assert.Equal(t, "openai", cfg.CodeLLM.Provider)
	assert.Equal(t, "anthropic", cfg.TextLLM.Provider)
}

func TestLoadConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/grades
grading:
  max_points: 50
server:
  port: 9090
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/grades", cfg.Store.DatabaseURL)
	assert.Equal(t, 50.0, cfg.Grading.MaxPoints)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.40, cfg.Grading.Weights.Technical)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GRADER_STORE_DRIVER", "postgres")
	t.Setenv("GRADER_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadBadConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte("store: ["), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestToCompare(t *testing.T) {
	c := CompareConfig{SimilarityThreshold: 0.9, RowCountTolerance: 3, NumericTolerancePct: 0.1, CountTolerance: 1}
	cc := c.ToCompare()
	assert.Equal(t, 0.9, cc.SimilarityThreshold)
	assert.Equal(t, 3, cc.RowCountTolerance)
	assert.Equal(t, 0.1, cc.NumericTolerancePct)
	assert.Equal(t, 1, cc.CountTolerance)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
