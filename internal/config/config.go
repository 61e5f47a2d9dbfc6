// Package config loads Engram's configuration via viper, with .env
// file support through godotenv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all tunables the analysis engine needs.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig locates the embedded database.
type StorageConfig struct {
	// RelativePath is joined onto the repo root, e.g. ".engram/engram.db".
	RelativePath string `mapstructure:"relative_path" yaml:"relative_path"`
}

// AnalysisConfig carries the scorer's and coordinator's tunable
// constants so they are not hardcoded magic numbers scattered across
// packages.
type AnalysisConfig struct {
	ChurnSaturation       int           `mapstructure:"churn_saturation" yaml:"churn_saturation"`
	RecencyWindow         time.Duration `mapstructure:"recency_window" yaml:"recency_window"`
	CouplingGateThreshold float64       `mapstructure:"coupling_gate_threshold" yaml:"coupling_gate_threshold"`
	CriticalThreshold     float64       `mapstructure:"critical_threshold" yaml:"critical_threshold"`
	HighThreshold         float64       `mapstructure:"high_threshold" yaml:"high_threshold"`
	MediumThreshold       float64       `mapstructure:"medium_threshold" yaml:"medium_threshold"`
	HardCap               int           `mapstructure:"hard_cap" yaml:"hard_cap"`
	TestIntentsPerFile    int           `mapstructure:"test_intents_per_file" yaml:"test_intents_per_file"`
	SoftDeadline          time.Duration `mapstructure:"soft_deadline" yaml:"soft_deadline"`
	HardDeadline          time.Duration `mapstructure:"hard_deadline" yaml:"hard_deadline"`
	AdaptiveWalkThreshold int           `mapstructure:"adaptive_walk_threshold" yaml:"adaptive_walk_threshold"`
}

// LoggingConfig controls the core structured logger.
type LoggingConfig struct {
	Debug      bool `mapstructure:"debug" yaml:"debug"`
	JSONFormat bool `mapstructure:"json_format" yaml:"json_format"`
}

// Default returns the engine's built-in tuning constants.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			RelativePath: filepath.Join(".engram", "engram.db"),
		},
		Analysis: AnalysisConfig{
			ChurnSaturation:       100,
			RecencyWindow:         180 * 24 * time.Hour,
			CouplingGateThreshold: 0.50,
			CriticalThreshold:     0.80,
			HighThreshold:         0.60,
			MediumThreshold:       0.30,
			HardCap:               10,
			TestIntentsPerFile:    5,
			SoftDeadline:          200 * time.Millisecond,
			HardDeadline:          2000 * time.Millisecond,
			AdaptiveWalkThreshold: 50000,
		},
		Logging: LoggingConfig{
			JSONFormat: true,
		},
	}
}

// Load reads configuration from an optional file plus ENGRAM_*
// environment variables, falling back to Default() for anything
// unset.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("analysis", cfg.Analysis)
	v.SetDefault("logging", cfg.Logging)

	v.SetEnvPrefix("ENGRAM")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".engram")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence. Missing files
// are silently skipped.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// DBPath resolves the absolute database path for a given repo root.
func (c *Config) DBPath(repoRoot string) string {
	return filepath.Join(repoRoot, c.Storage.RelativePath)
}

// WriteDefault writes the default configuration as YAML to path,
// refusing to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
