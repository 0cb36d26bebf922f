// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	RedisURL    string

	SessionTTL      time.Duration
	CleanupInterval time.Duration

	MaxMessageLength int
	MaxGraphLoops    int

	Inference InferenceConfig
	Retrieval RetrievalConfig
}

// InferenceConfig holds the Ollama model endpoints. The legal model does the
// heavy reasoning; the language model simplifies complex responses.
type InferenceConfig struct {
	LegalEndpoint    string
	LegalModel       string
	LanguageEndpoint string
	LanguageModel    string
	Temperature      float64
	MaxTokens        int
	Timeout          time.Duration
}

// RetrievalConfig holds the semantic-search and case-law backends.
type RetrievalConfig struct {
	VectorSearchURL string
	VectorTopK      int
	CaseLawURL      string
	CaseLawAPIKey   string
	CaseLawLimit    int
	Timeout         time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/sessions.db"),
		RedisURL:    getEnv("REDIS_URL", ""),

		SessionTTL:      getEnvDuration("SESSION_TTL", time.Hour),
		CleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute),

		MaxMessageLength: getEnvInt("MAX_MESSAGE_LENGTH", 1000),
		MaxGraphLoops:    getEnvInt("MAX_GRAPH_LOOPS", 3),

		Inference: InferenceConfig{
			LegalEndpoint:    getEnv("AI_LEGAL_MODEL_ENDPOINT", "http://localhost:11434"),
			LegalModel:       getEnv("AI_LEGAL_MODEL_NAME", "llama3.2:3b"),
			LanguageEndpoint: getEnv("AI_LANGUAGE_MODEL_ENDPOINT", "http://localhost:11434"),
			LanguageModel:    getEnv("AI_LANGUAGE_MODEL_NAME", "gemma3"),
			Temperature:      getEnvFloat("AI_TEMPERATURE", 0.7),
			MaxTokens:        getEnvInt("AI_MAX_TOKENS", 2048),
			Timeout:          getEnvDuration("AI_TIMEOUT", 120*time.Second),
		},
		Retrieval: RetrievalConfig{
			VectorSearchURL: getEnv("VECTOR_SEARCH_URL", "http://localhost:8002"),
			VectorTopK:      getEnvInt("RAG_TOP_K", 5),
			CaseLawURL:      getEnv("CASE_LAW_BASE_URL", "http://localhost:8001"),
			CaseLawAPIKey:   getEnv("CASE_LAW_API_KEY", ""),
			CaseLawLimit:    getEnvInt("CASE_LAW_LIMIT", 5),
			Timeout:         getEnvDuration("RETRIEVAL_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" && c.RedisURL == "" {
		return fmt.Errorf("either DB_PATH or REDIS_URL must be set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be > 0")
	}
	if c.MaxGraphLoops <= 0 {
		return fmt.Errorf("MAX_GRAPH_LOOPS must be > 0")
	}
	if c.Inference.LegalEndpoint == "" || c.Inference.LegalModel == "" {
		return fmt.Errorf("legal model endpoint and name must be set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
