// Package config loads service settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the synthesizer, gateway and CLI.
type Config struct {
	SynthesizerAddr string        `yaml:"synthesizer_addr"`
	GatewayAddr     string        `yaml:"gateway_addr"`
	ArtifactsRoot   string        `yaml:"artifacts_root"`
	Logging         LoggingConfig `yaml:"logging"`
	Output          OutputConfig  `yaml:"output"`
	Batch           BatchConfig   `yaml:"batch"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// OutputConfig is the default normalization applied to every artifact.
type OutputConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Quality int    `yaml:"quality"`
	Format  string `yaml:"format"`
}

// BatchConfig configures batch generation.
type BatchConfig struct {
	Delay    Duration  `yaml:"delay"`
	Kind     string    `yaml:"kind"`
	Products []Product `yaml:"products"`
}

// Product is one entry of a batch product list.
type Product struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// Duration is a time.Duration that reads "500ms" style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SynthesizerAddr: "localhost:9091",
		GatewayAddr:     ":8084",
		ArtifactsRoot:   "artifacts",
		Logging: LoggingConfig{
			Dir:   ".log",
			Level: "info",
		},
		Output: OutputConfig{
			Width:   800,
			Height:  800,
			Quality: 90,
			Format:  "jpeg",
		},
		Batch: BatchConfig{
			Delay:    Duration(500 * time.Millisecond),
			Kind:     "products",
			Products: DefaultProducts(),
		},
	}
}

// DefaultProducts is the stock list used when none is configured.
func DefaultProducts() []Product {
	return []Product{
		{Name: "Elegant Silk Saree", Category: "Sarees"},
		{Name: "Banarasi Wedding Saree", Category: "Sarees"},
		{Name: "Bridal Lehenga Choli", Category: "Lehengas"},
		{Name: "Designer Party Lehenga", Category: "Lehengas"},
		{Name: "Cotton Anarkali Kurti", Category: "Kurtis"},
		{Name: "Embroidered Straight Kurti", Category: "Kurtis"},
		{Name: "Kundan Necklace Set", Category: "Jewelry"},
		{Name: "Temple Gold Jhumkas", Category: "Jewelry"},
	}
}

// Load reads path over the defaults, then applies environment overrides. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.SynthesizerAddr = envOrDefault("SYNTHESIZER_ADDR", cfg.SynthesizerAddr)
	cfg.GatewayAddr = envOrDefault("GATEWAY_ADDR", cfg.GatewayAddr)
	cfg.ArtifactsRoot = envOrDefault("ARTIFACTS_ROOT", cfg.ArtifactsRoot)
	cfg.Logging.Dir = envOrDefault("LOG_DIR", cfg.Logging.Dir)
	cfg.Logging.Level = envOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Output.Quality = envIntOrDefault("OUTPUT_QUALITY", cfg.Output.Quality)
	if value := os.Getenv("BATCH_DELAY"); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			cfg.Batch.Delay = Duration(parsed)
		}
	}
}

// Validate checks ranges that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	var errs []error
	if c.Output.Width < 0 || c.Output.Height < 0 {
		errs = append(errs, fmt.Errorf("output size %dx%d is negative", c.Output.Width, c.Output.Height))
	}
	if c.Output.Quality < 0 || c.Output.Quality > 100 {
		errs = append(errs, fmt.Errorf("output quality %d out of range", c.Output.Quality))
	}
	if c.Batch.Delay < 0 {
		errs = append(errs, errors.New("batch delay is negative"))
	}
	for i, p := range c.Batch.Products {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("batch product %d has no name", i))
		}
	}
	return errors.Join(errs...)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
