package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Driver string `mapstructure:"driver" yaml:"driver"`
		DSN    string `mapstructure:"dsn" yaml:"-"` // May embed credentials; never serialize
	} `mapstructure:"database" yaml:"database"`

	Seeds struct {
		RulesFile      string `mapstructure:"rules_file" yaml:"rules_file"`
		MerchantsFile  string `mapstructure:"merchants_file" yaml:"merchants_file"`
		CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
	} `mapstructure:"seeds" yaml:"seeds"`

	Engine struct {
		Workers             int      `mapstructure:"workers" yaml:"workers"`
		RuleMatchConfidence float64  `mapstructure:"rule_match_confidence" yaml:"rule_match_confidence"`
		FallbackConfidence  float64  `mapstructure:"fallback_confidence" yaml:"fallback_confidence"`
		OwnerNames          []string `mapstructure:"owner_names" yaml:"owner_names"`
	} `mapstructure:"engine" yaml:"engine"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then SPENDSENSE_* environment
// variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.spendsense")
	v.AddConfigPath(".spendsense")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SPENDSENSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// The database DSN is conventionally supplied unprefixed
	if err := v.BindEnv("database.dsn", "DATABASE_URL"); err != nil {
		fmt.Printf("Warning: failed to bind DATABASE_URL environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "spendsense.db")

	v.SetDefault("seeds.rules_file", "rules.yaml")
	v.SetDefault("seeds.merchants_file", "merchants.yaml")
	v.SetDefault("seeds.categories_file", "categories.yaml")

	v.SetDefault("engine.workers", 0) // 0 means one worker per CPU
	v.SetDefault("engine.rule_match_confidence", 0.9)
	v.SetDefault("engine.fallback_confidence", 0.5)
	v.SetDefault("engine.owner_names", []string{})
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s (must be 'sqlite' or 'postgres')", config.Database.Driver)
	}

	if config.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must be >= 0, got: %d", config.Engine.Workers)
	}

	if config.Engine.RuleMatchConfidence < 0.0 || config.Engine.RuleMatchConfidence > 1.0 {
		return fmt.Errorf("engine.rule_match_confidence must be between 0.0 and 1.0, got: %f", config.Engine.RuleMatchConfidence)
	}

	if config.Engine.FallbackConfidence < 0.0 || config.Engine.FallbackConfidence > 1.0 {
		return fmt.Errorf("engine.fallback_confidence must be between 0.0 and 1.0, got: %f", config.Engine.FallbackConfidence)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
