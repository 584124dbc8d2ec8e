// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port         int           `yaml:"port"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log      LogConfig   `yaml:"log"`
	Model    ModelConfig `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ModelConfig locates the classifier. SourceID must name a JSON tree export
// (ml.Artifact); a pickled model is downloaded but rejected by validation.
type ModelConfig struct {
	Type         string        `yaml:"type"`
	Path         string        `yaml:"path"`
	SourceID     string        `yaml:"source_id"`
	SourceURL    string        `yaml:"source_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8501
	cfg.Http.Timeout = 30 * time.Second
	cfg.Http.MaxBodyBytes = 64 << 10
	cfg.Log = LogConfig{
		Level:      "info",
		File:       "logs/heartcheck.log",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
	cfg.Model = ModelConfig{
		Type:         "random_forest",
		Path:         "heart_disease_model.json",
		SourceID:     "1_OqUNI5f3q_BgvjtNnepRIebqgg_6VHR",
		SourceURL:    "https://drive.google.com/uc",
		FetchTimeout: 2 * time.Minute,
	}
	cfg.Database.Path = "data/heartcheck.db"
	cfg.Cache.Size = 256
	return cfg
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Model.FetchTimeout <= 0 {
		return errors.New("model.fetch_timeout must be positive")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	return nil
}

func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
