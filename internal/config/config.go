// Package config provides configuration for the platform.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the platform configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Text generation
	LLMURL     string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Content memory (vector store)
	MemoryURL         string
	MemoryAPIKey      string
	MemoryTimeout     time.Duration
	MemoryStoreDrafts bool

	// Social posting
	SocialAPIURL       string
	SocialOAuthURL     string
	SocialAccessToken  string
	SocialRefreshToken string
	SocialClientID     string
	SocialClientSecret string
	SocialTimeout      time.Duration

	// Pipeline
	StageTimeout time.Duration
	SyncMaxWait  time.Duration

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
	StreamBuffer   int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", "file:campaigns.db?cache=shared&mode=rwc"),

		LLMURL:     getEnv("LLM_URL", "http://localhost:4000"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "claude-sonnet-4-5"),
		LLMTimeout: time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,

		MemoryURL:         getEnv("MEMORY_URL", "http://localhost:7700"),
		MemoryAPIKey:      getEnv("MEMORY_API_KEY", ""),
		MemoryTimeout:     time.Duration(getEnvInt("MEMORY_TIMEOUT_MS", 15000)) * time.Millisecond,
		MemoryStoreDrafts: getEnvBool("MEMORY_STORE_DRAFTS", true),

		SocialAPIURL:       getEnv("SOCIAL_API_URL", ""),
		SocialOAuthURL:     getEnv("SOCIAL_OAUTH_URL", ""),
		SocialAccessToken:  getEnv("LINKEDIN_ACCESS_TOKEN", ""),
		SocialRefreshToken: getEnv("LINKEDIN_REFRESH_TOKEN", ""),
		SocialClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		SocialClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		SocialTimeout:      time.Duration(getEnvInt("SOCIAL_TIMEOUT_MS", 30000)) * time.Millisecond,

		StageTimeout: time.Duration(getEnvInt("STAGE_TIMEOUT_MS", 120000)) * time.Millisecond,
		SyncMaxWait:  time.Duration(getEnvInt("SYNC_MAX_WAIT_MS", 300000)) * time.Millisecond,

		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		StreamBuffer:   getEnvInt("STREAM_BUFFER", 64),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
