package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the server configuration read from the environment
type Config struct {
	Host           string
	Port           int
	StorageType    string // memory, redis or postgres
	RedisURL       string
	DatabaseURL    string
	DefaultGravity bool
	TopN           int
	OriginPatterns []string
}

// Load reads the configuration, falling back to defaults for unset or
// unparsable values
func Load() Config {
	return Config{
		Host:           getEnv("HOST", ""),
		Port:           getEnvInt("PORT", 8080),
		StorageType:    getEnv("STORAGE_TYPE", "memory"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DefaultGravity: getEnvBool("DEFAULT_GRAVITY", true),
		TopN:           getEnvInt("TOP_N", 5),
		OriginPatterns: getEnvList("WS_ORIGIN_PATTERNS"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
