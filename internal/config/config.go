// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey string
	OpenAIAPIKey string // optional embedding fallback

	// Source settings
	SourcesConfigPath string
	WindowHours       int
	Timezone          string

	// Dedup settings
	VectorThreshold float64 // cosine similarity above which articles are duplicates
	TitleThreshold  float64 // Jaro-Winkler score above which same-domain titles collide
	EmbedBatchSize  int

	// Clustering / collapsing settings
	MaxArticlesPerEntity int // cap on articles submitted to the clusterer
	MaxTopicsPerEntity   int
	MinTopicOverlap      int // shared articles needed before two topics merge
	MergeSampleLimit     int // topics submitted to the LLM merge pass

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Rate limit settings
	MaxAICalls   int
	AICallWindow time.Duration

	// Cache / output settings
	CacheTTLHours     int
	ReportPath        string
	DatabaseURL       string // optional Postgres report store
	ThumbnailFetchMax int
}

func Load() (*Config, error) {
	cfg := &Config{
		SourcesConfigPath:    "configs/sources.yaml",
		WindowHours:          24,
		Timezone:             "Europe/Bucharest",
		VectorThreshold:      0.90,
		TitleThreshold:       0.92,
		EmbedBatchSize:       16,
		MaxArticlesPerEntity: 40,
		MaxTopicsPerEntity:   3,
		MinTopicOverlap:      2,
		MergeSampleLimit:     24,
		RequestTimeout:       30 * time.Second,
		RetryAttempts:        3,
		RetryDelay:           5 * time.Second,
		MaxAICalls:           60,
		AICallWindow:         time.Minute,
		CacheTTLHours:        24,
		ReportPath:           "report.json",
		ThumbnailFetchMax:    5,
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.ReportPath = getEnvOrDefault("REPORT_PATH", cfg.ReportPath)
	cfg.Timezone = getEnvOrDefault("REPORT_TIMEZONE", cfg.Timezone)

	cfg.WindowHours = getEnvIntOrDefault("NEWS_WINDOW_HOURS", cfg.WindowHours)
	cfg.CacheTTLHours = getEnvIntOrDefault("CACHE_TTL_HOURS", cfg.CacheTTLHours)
	cfg.EmbedBatchSize = getEnvIntOrDefault("EMBED_BATCH_SIZE", cfg.EmbedBatchSize)
	cfg.MaxArticlesPerEntity = getEnvIntOrDefault("MAX_ARTICLES_PER_ENTITY", cfg.MaxArticlesPerEntity)
	cfg.MaxTopicsPerEntity = getEnvIntOrDefault("MAX_TOPICS_PER_ENTITY", cfg.MaxTopicsPerEntity)
	cfg.MinTopicOverlap = getEnvIntOrDefault("MIN_TOPIC_OVERLAP", cfg.MinTopicOverlap)
	cfg.MergeSampleLimit = getEnvIntOrDefault("MERGE_SAMPLE_LIMIT", cfg.MergeSampleLimit)
	cfg.MaxAICalls = getEnvIntOrDefault("MAX_AI_CALLS", cfg.MaxAICalls)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.ThumbnailFetchMax = getEnvIntOrDefault("THUMBNAIL_FETCH_MAX", cfg.ThumbnailFetchMax)

	cfg.VectorThreshold = getEnvFloatOrDefault("VECTOR_DEDUP_THRESHOLD", cfg.VectorThreshold)
	cfg.TitleThreshold = getEnvFloatOrDefault("TITLE_DEDUP_THRESHOLD", cfg.TitleThreshold)

	if v := os.Getenv("AI_CALL_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.AICallWindow = d
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 && f <= 1 {
			return f
		}
	}
	return defaultValue
}

// Validate runs at startup, before any pipeline stage. A missing credential is
// the only fatal class of configuration error.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.WindowHours <= 0 {
		return fmt.Errorf("NEWS_WINDOW_HOURS must be positive")
	}
	if c.MinTopicOverlap < 1 {
		return fmt.Errorf("MIN_TOPIC_OVERLAP must be at least 1")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
