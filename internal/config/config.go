package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/compare"
	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Grading GradingConfig `yaml:"grading" mapstructure:"grading"`
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	CodeLLM LLMConfig     `yaml:"code_llm" mapstructure:"code_llm"`
	TextLLM LLMConfig     `yaml:"text_llm" mapstructure:"text_llm"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GradingConfig configures scoring behavior.
type GradingConfig struct {
	MaxPoints   float64                `yaml:"max_points" mapstructure:"max_points"`
	Weights     model.ComponentWeights `yaml:"weights" mapstructure:"weights"`
	MaxTokens   int                    `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int                    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CompareConfig configures output comparison tolerances.
type CompareConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	RowCountTolerance   int     `yaml:"row_count_tolerance" mapstructure:"row_count_tolerance"`
	NumericTolerancePct float64 `yaml:"numeric_tolerance_pct" mapstructure:"numeric_tolerance_pct"`
	CountTolerance      int     `yaml:"count_tolerance" mapstructure:"count_tolerance"`
}

// ToCompare converts the tolerances into a comparison config.
func (c CompareConfig) ToCompare() compare.Config {
	return compare.Config{
		SimilarityThreshold: c.SimilarityThreshold,
		RowCountTolerance:   c.RowCountTolerance,
		NumericTolerancePct: c.NumericTolerancePct,
		CountTolerance:      c.CountTolerance,
	}
}

// LLMConfig configures one of the two model backends. Provider is either
// "anthropic" or "openai"; BaseURL points openai-compatible requests at a
// local inference server when set.
type LLMConfig struct {
	Provider          string `yaml:"provider" mapstructure:"provider"`
	Model             string `yaml:"model" mapstructure:"model"`
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// BatchConfig configures batch grading.
type BatchConfig struct {
	MaxConcurrentSubmissions int `yaml:"max_concurrent_submissions" mapstructure:"max_concurrent_submissions"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "grades.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_submissions", 1)
	v.SetDefault("grading.max_points", 37.5)
	v.SetDefault("grading.weights.technical", 0.40)
	v.SetDefault("grading.weights.analysis", 0.30)
	v.SetDefault("grading.weights.communication", 0.25)
	v.SetDefault("grading.weights.bonus", 0.05)
	v.SetDefault("grading.max_tokens", 4096)
	v.SetDefault("grading.timeout_secs", 120)
	v.SetDefault("compare.similarity_threshold", 0.80)
	v.SetDefault("compare.row_count_tolerance", 5)
	v.SetDefault("compare.numeric_tolerance_pct", 0.05)
	v.SetDefault("compare.count_tolerance", 2)
	v.SetDefault("code_llm.provider", "openai")
	v.SetDefault("code_llm.model", "qwen2.5-coder-32b")
	v.SetDefault("code_llm.base_url", "http://localhost:8080/v1")
	v.SetDefault("text_llm.provider", "anthropic")
	v.SetDefault("text_llm.model", "claude-sonnet-4-5-20250929")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
