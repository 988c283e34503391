// Package config holds the immutable runtime configuration. It is built
// once from the environment at startup, validated, and passed to the
// components that need it; no component reads environment variables on
// its own after construction.
package config

import (
	"fmt"
	"strings"

	"github.com/doclens/doclens/internal/util"

	"github.com/go-playground/validator"
)

// Adapter names accepted in AI_ADAPTER.
const (
	AdapterOpenAI = "openai"
	AdapterOllama = "ollama"
)

// Config is the complete runtime configuration. Instances are immutable
// after FromEnv returns.
type Config struct {
	Debug bool

	Adapter string `validate:"required,oneof=openai ollama"`

	ExtractionModel string `validate:"required"`
	ImageModel      string

	ChatURL  string
	ChatKey  string
	ImageURL string
	ImageKey string

	PageThreshold       int `validate:"gt=0"`
	ChunkSize           int `validate:"gt=0"`
	FineGrained         bool
	NoiseThreshold      int `validate:"gt=0"`
	ContextOverlap      int `validate:"gt=0"`
	MaxConcurrentChunks int `validate:"gt=0"`
	OracleRetries       int `validate:"gt=0"`

	OutputDir     string
	LanguageHints []string
}

// FromEnv builds and validates the configuration from the process
// environment. Defaults match the standard pipeline parameters.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Debug: util.GetEnvBool("DEBUG", false),

		Adapter: util.GetEnvString("AI_ADAPTER", AdapterOpenAI),

		ExtractionModel: util.GetEnvString("EXTRACTION_MODEL", "gpt-4o-mini"),
		ImageModel:      util.GetEnvString("IMAGE_MODEL", ""),

		ChatURL:  util.GetEnv("CHAT_URL"),
		ChatKey:  util.GetEnv("CHAT_API_KEY"),
		ImageURL: util.GetEnv("IMAGE_URL"),
		ImageKey: util.GetEnv("IMAGE_API_KEY"),

		PageThreshold:       util.GetEnvInt("PAGE_THRESHOLD", 50),
		ChunkSize:           util.GetEnvInt("CHUNK_SIZE", 50),
		FineGrained:         util.GetEnvBool("FINE_GRAINED", false),
		NoiseThreshold:      util.GetEnvInt("NOISE_THRESHOLD", 50),
		ContextOverlap:      util.GetEnvInt("CONTEXT_OVERLAP", 200),
		MaxConcurrentChunks: util.GetEnvInt("MAX_CONCURRENT_CHUNKS", 4),
		OracleRetries:       util.GetEnvInt("ORACLE_RETRIES", 3),

		OutputDir: util.GetEnvString("OUTPUT_DIR", "."),
	}

	if hints := util.GetEnv("LANGUAGE_HINTS"); hints != "" {
		cfg.LanguageHints = splitHints(hints)
	}

	if cfg.ImageModel == "" {
		cfg.ImageModel = cfg.ExtractionModel
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func splitHints(s string) []string {
	var hints []string
	for _, part := range strings.Split(s, ",") {
		if hint := strings.TrimSpace(part); hint != "" {
			hints = append(hints, hint)
		}
	}
	return hints
}
