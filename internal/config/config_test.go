package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examinfo/internal/score"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "REDIS_ADDR", "CACHE_TTL", "SYNC_CONCURRENCY", "REDIS_PREFIX", "SYNC_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.SyncConcurrency)
	assert.Equal(t, "examinfo:", cfg.RedisPrefix)
	assert.Equal(t, 30*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, cfg.CORSOriginsOffline, cfg.CORSOrigins())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SYNC_CONCURRENCY", "9")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("VERBOSE", "yes")
	t.Setenv("REDIS_PREFIX", "examinfo-staging:")
	t.Setenv("SYNC_TIMEOUT", "2h")

	cfg := FromEnv()
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 9, cfg.SyncConcurrency)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "examinfo-staging:", cfg.RedisPrefix)
	assert.Equal(t, 2*time.Hour, cfg.SyncTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestLoadRulesDefaults(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, score.SubjectOrder, r.SubjectOrder)
	assert.Equal(t, score.CommonToken, r.CommonToken)
	assert.Equal(t, score.DefaultRuleSet, *r.Validation)
}

func TestLoadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
subject_order: [数学, 英語]
validation:
  min: 0
  max: 200
`), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"数学", "英語"}, r.SubjectOrder)
	assert.Equal(t, score.CommonToken, r.CommonToken)
	assert.Equal(t, score.RuleSet{Name: "custom", Min: 0, Max: 200}, *r.Validation)

	chart := r.Service().Chart(score.SubjectScoreRecord{"英語R": {CommonTest: 1}, "数学": {CommonTest: 1}})
	require.Len(t, chart.Points, 2)
	assert.Equal(t, "数学", chart.Points[0].Name)
}

func TestLoadRulesRejectsInvertedRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validation: {min: 10, max: 1}\n"), 0o644))
	_, err := LoadRules(path)
	assert.Error(t, err)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
