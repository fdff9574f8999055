package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from the environment with an
// optional .env file on top.
type Config struct {
	// Classification backend: "openai" or "anthropic".
	Backend string `env:"CLASSIFY_BACKEND" envDefault:"openai"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-5-20250929"`

	// Token budget for a single classification call. Sections whose rendered
	// prompt exceeds this are chunked to half the budget.
	ContextTokens  int  `env:"CONTEXT_TOKENS" envDefault:"8000"`
	MaxChunkDepth  int  `env:"MAX_CHUNK_DEPTH" envDefault:"3"`
	SplitOversized bool `env:"SPLIT_OVERSIZED_PARAGRAPHS" envDefault:"false"`

	ClassifyTimeout       time.Duration `env:"CLASSIFY_TIMEOUT" envDefault:"120s"`
	MaxConcurrentClassify int           `env:"MAX_CONCURRENT_CLASSIFY" envDefault:"1"`

	OutputDir string `env:"OUTPUT_DIR" envDefault:"./organized"`

	// Server mode
	Port           string        `env:"PORT" envDefault:"8090"`
	APIKey         string        `env:"DOCORGANIZER_API_KEY"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	MaxQueueSize   int           `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	WorkerCount    int           `env:"WORKER_COUNT" envDefault:"4"`
	JobTTL         time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ContextTokens <= 0 {
		cfg.ContextTokens = 8000
	}
	if cfg.MaxChunkDepth <= 0 {
		cfg.MaxChunkDepth = 3
	}
	if cfg.MaxConcurrentClassify <= 0 {
		cfg.MaxConcurrentClassify = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}

	return cfg, nil
}

// Validate checks that the selected backend has its credentials.
func (c Config) Validate() error {
	switch c.Backend {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai backend")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic backend")
		}
	default:
		return fmt.Errorf("unknown CLASSIFY_BACKEND %q (want openai or anthropic)", c.Backend)
	}
	return nil
}

// ValidateServer checks server-mode settings on top of Validate.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCORGANIZER_API_KEY is required in server mode")
	}
	return nil
}
