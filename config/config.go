package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Estimator strategies
const (
	StrategyTemplate = "template"
	StrategyExternal = "external"
	StrategyKeyword  = "keyword"
)

// Completion providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"5250"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Allowed CORS origins, comma separated
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Estimator struct {
		// One of template, external or keyword
		Strategy string `env:"ESTIMATOR_STRATEGY" envDefault:"template"`

		// Fixed seed for every request; 0 seeds from the clock
		RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`

		// Optional YAML file replacing the embedded template replies
		TemplateFile string `env:"TEMPLATE_FILE"`

		MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	}

	Completion struct {
		Provider    string        `env:"COMPLETION_PROVIDER" envDefault:"gemini"`
		APIKey      string        `env:"COMPLETION_API_KEY"`
		Model       string        `env:"COMPLETION_MODEL"`
		BaseURL     string        `env:"COMPLETION_BASE_URL" envDefault:"https://api.openai.com/v1"`
		Timeout     time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"60s"`
		MaxAttempts int           `env:"COMPLETION_MAX_ATTEMPTS" envDefault:"2"`
	}

	History struct {
		Enabled bool   `env:"HISTORY_ENABLED" envDefault:"false"`
		DBPath  string `env:"HISTORY_DB_PATH" envDefault:"database/history.db"`

		// Records older than this are pruned; 0 keeps everything
		Retention     time.Duration `env:"HISTORY_RETENTION" envDefault:"2160h"`
		PruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" envDefault:"1h"`
	}

	// BatchProcessing configuration for history writes
	BatchProcessing struct {
		// Maximum number of records to accumulate before flushing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Maximum time to wait before flushing a non-full batch (in seconds)
		MaxBatchWaitTime int `env:"BATCH_WAIT_TIME" envDefault:"30"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

// LoadConfig reads an optional .env file and parses the environment into a Config
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	c.Estimator.Strategy = strings.ToLower(strings.TrimSpace(c.Estimator.Strategy))
	switch c.Estimator.Strategy {
	case StrategyTemplate, StrategyExternal, StrategyKeyword:
	default:
		return fmt.Errorf("unknown ESTIMATOR_STRATEGY %q", c.Estimator.Strategy)
	}

	c.Completion.Provider = strings.ToLower(strings.TrimSpace(c.Completion.Provider))
	switch c.Completion.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown COMPLETION_PROVIDER %q", c.Completion.Provider)
	}

	if c.Estimator.Strategy == StrategyExternal && c.Completion.APIKey == "" {
		return fmt.Errorf("COMPLETION_API_KEY is required for the %s strategy", StrategyExternal)
	}
	if c.Completion.MaxAttempts < 1 {
		c.Completion.MaxAttempts = 1
	}
	if c.BatchProcessing.MaxBatchSize < 1 {
		c.BatchProcessing.MaxBatchSize = 1
	}
	return nil
}
