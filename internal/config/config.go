package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"blade-trans-sync/internal/translation"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DefaultLanguage   string
	IdentityLanguages []string
	WorkerCount       int
	WatchDebounce     time.Duration
	DatabaseURL       string
	Neo4jURI          string
	Neo4jUser         string
	Neo4jPassword     string
	LogLevel          string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DefaultLanguage:   getEnv("BLADESYNC_DEFAULT_LANGUAGE", translation.DefaultLanguage),
		IdentityLanguages: getEnvList("BLADESYNC_IDENTITY_LANGUAGES", translation.DefaultIdentityLanguages),
		WorkerCount:       getEnvInt("WORKER_COUNT", 8),
		WatchDebounce:     time.Duration(getEnvInt("WATCH_DEBOUNCE_MS", 300)) * time.Millisecond,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Neo4jURI:          getEnv("NEO4J_URI", ""),
		Neo4jUser:         getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:     getEnv("NEO4J_PASSWORD", "password"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// Policy returns the merge policy described by the language settings.
func (c *Config) Policy() translation.Policy {
	identity := make([]string, len(c.IdentityLanguages))
	copy(identity, c.IdentityLanguages)

	return translation.Policy{
		DefaultLanguage:   c.DefaultLanguage,
		IdentityLanguages: identity,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvList reads a comma-separated list, dropping blank items.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}
	return SplitList(v)
}

// SplitList splits a comma-separated list and trims each item.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
