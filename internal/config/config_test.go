package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create temporary config file
	content := `
server:
  port: 9090
  host: "127.0.0.1"

database:
  host: "testdb"
  port: 5432
  user: "testuser"
  password: "testpass"
  dbname: "testdb"

transcript:
  ttlMinutes: 45

llm:
  provider: groq
`

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Load config
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Server.Host)
	}

	if cfg.Database.Host != "testdb" {
		t.Errorf("Expected database host testdb, got %s", cfg.Database.Host)
	}

	assert.Equal(t, 45*time.Minute, cfg.Transcript.TTL())
	assert.Equal(t, "groq", cfg.LLM.Provider)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Transcript.TTLMinutes)
	assert.Equal(t, 10, cfg.Tokens.PerVideo)
	assert.Equal(t, 10*time.Second, cfg.Transcript.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, time.Second, cfg.LLM.InitialDelay)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, 8192, cfg.LLM.Gemini.MaxTokens)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TRANSCRIPT_TTL_MINUTES", "60")
	t.Setenv("TOKENS_PER_VIDEO", "25")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Transcript.TTLMinutes)
	assert.Equal(t, 25, cfg.Tokens.PerVideo)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("TRANSCRIPT_TTL_MINUTES", "0")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error when loading nonexistent file")
	}
}
