package gateway

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the gateway service.
type Config struct {
	// Server configuration
	Addr string `envconfig:"ADDR" default:":8080"`

	// Upstream API configuration
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" required:"true"`
	TextModel    string `envconfig:"TEXT_MODEL" default:""` // defaults to the provider's text model
	LiveModel    string `envconfig:"LIVE_MODEL" default:""` // defaults to the live client's model

	// Game configuration
	QuestionCount    int `envconfig:"QUESTION_COUNT" default:"5"`  // questions prepared per session
	MaxQuestionCount int `envconfig:"MAX_QUESTION_COUNT" default:"10"`

	// Observability configuration
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	LogPretty        bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"quizhost"`

	// Shutdown grace period in seconds
	ShutdownTimeout int `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// LoadConfig reads configuration from a .env file when present, then
// from the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("QUIZHOST", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.QuestionCount < 1 {
		return nil, fmt.Errorf("QUIZHOST_QUESTION_COUNT must be >= 1")
	}
	if cfg.MaxQuestionCount < cfg.QuestionCount {
		return nil, fmt.Errorf("QUIZHOST_MAX_QUESTION_COUNT must be >= QUIZHOST_QUESTION_COUNT")
	}
	return &cfg, nil
}
