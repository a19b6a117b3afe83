package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "STORAGE_TYPE", "REDIS_URL", "DATABASE_URL", "DEFAULT_GRAVITY", "TOP_N", "WS_ORIGIN_PATTERNS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.DefaultGravity)
	assert.Equal(t, 5, cfg.TopN)
	assert.Nil(t, cfg.OriginPatterns)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "3000")
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/tetris")
	t.Setenv("DEFAULT_GRAVITY", "false")
	t.Setenv("TOP_N", "3")
	t.Setenv("WS_ORIGIN_PATTERNS", "example.com, *.example.org,,")

	cfg := Load()

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "postgres", cfg.StorageType)
	assert.Equal(t, "postgres://localhost/tetris", cfg.DatabaseURL)
	assert.False(t, cfg.DefaultGravity)
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.OriginPatterns)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "abc")
	t.Setenv("TOP_N", "five")
	t.Setenv("DEFAULT_GRAVITY", "sometimes")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.TopN)
	assert.True(t, cfg.DefaultGravity)
}
