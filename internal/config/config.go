// Package config loads service configuration and initializes logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Models   ModelsConfig   `yaml:"models" mapstructure:"models"`
	AWS      AWSConfig      `yaml:"aws" mapstructure:"aws"`
	Kafka    KafkaConfig    `yaml:"kafka" mapstructure:"kafka"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int    `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs    int    `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	CORSAllowOrigins    string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DatabaseConfig configures the prediction log store. An empty URL selects
// the no-op mock repository.
type DatabaseConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// ModelsConfig names the trained model artifacts. A location may be a file
// path, an s3://bucket/key URI, or an http(s) model service base URL.
type ModelsConfig struct {
	ROIArtifact     string  `yaml:"roi_artifact" mapstructure:"roi_artifact"`
	ClusterArtifact string  `yaml:"cluster_artifact" mapstructure:"cluster_artifact"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RemoteRPS       float64 `yaml:"remote_rps" mapstructure:"remote_rps"`
}

// Timeout returns the remote model call timeout.
func (m ModelsConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSecs) * time.Second
}

// AWSConfig configures S3 artifact access.
type AWSConfig struct {
	Region string `yaml:"region" mapstructure:"region"`
}

// KafkaConfig configures prediction event streaming.
type KafkaConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Brokers string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string `yaml:"topic" mapstructure:"topic"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxLocations   int `yaml:"max_locations" mapstructure:"max_locations"`
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_secs", 10)
	v.SetDefault("server.write_timeout_secs", 10)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("server.shutdown_timeout_secs", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.url", "")
	v.SetDefault("models.roi_artifact", "models/roi_model.json")
	v.SetDefault("models.cluster_artifact", "models/cluster_model.json")
	v.SetDefault("models.timeout_secs", 10)
	v.SetDefault("models.remote_rps", 0)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "ev-site-predictions")
	v.SetDefault("batch.max_locations", 500)
	v.SetDefault("batch.max_concurrency", 4)

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
