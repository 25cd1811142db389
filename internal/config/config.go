// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-ethcrypto.
//
// go-ethcrypto is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-ethcrypto/pkg/crypto/rand"
)

// Config represents the complete ethcrypto CLI configuration
type Config struct {
	RNG     rand.Config   `yaml:"rng"`
	Logging LoggingConfig `yaml:"logging"`
	Output  string        `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Textfile is written in the Prometheus text format after each
	// command when set.
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		RNG:     rand.Config{Mode: rand.ModeAuto},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Output:  "text",
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads configuration from a YAML file on top of Default, applies
// environment variable overrides and validates the result
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply further
// overrides (such as command line flags) and call Validate themselves
func Read(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// FromEnv returns Default with environment variable overrides applied,
// validated
func FromEnv() (*Config, error) {
	cfg := Env()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Env returns Default with environment variable overrides applied and
// no validation
func Env() *Config {
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides applies ETHCRYPTO_* environment variables
func applyEnvOverrides(cfg *Config) {
	if mode := os.Getenv("ETHCRYPTO_RNG"); mode != "" {
		cfg.RNG.Mode = rand.Mode(strings.ToLower(mode))
	}
	if mode := os.Getenv("ETHCRYPTO_RNG_FALLBACK"); mode != "" {
		cfg.RNG.FallbackMode = rand.Mode(strings.ToLower(mode))
	}

	// TPM2 settings
	if dev := os.Getenv("ETHCRYPTO_TPM_DEVICE"); dev != "" {
		if cfg.RNG.TPM2 == nil {
			cfg.RNG.TPM2 = &rand.TPM2Config{}
		}
		cfg.RNG.TPM2.Device = dev
	}

	// PKCS#11 settings
	if module := os.Getenv("ETHCRYPTO_PKCS11_MODULE"); module != "" {
		if cfg.RNG.PKCS11 == nil {
			cfg.RNG.PKCS11 = &rand.PKCS11Config{}
		}
		cfg.RNG.PKCS11.Module = module
	}
	if pin := os.Getenv("ETHCRYPTO_PKCS11_PIN"); pin != "" {
		if cfg.RNG.PKCS11 == nil {
			log.Printf("Warning: ETHCRYPTO_PKCS11_PIN set without a PKCS#11 module, ignoring")
		} else {
			cfg.RNG.PKCS11.PIN = pin
		}
	}

	// Logging
	if level := os.Getenv("ETHCRYPTO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("ETHCRYPTO_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if output := os.Getenv("ETHCRYPTO_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if path := os.Getenv("ETHCRYPTO_METRICS_FILE"); path != "" {
		cfg.Metrics.Textfile = path
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := rand.ParseMode(string(c.RNG.Mode)); err != nil {
		return err
	}
	if c.RNG.FallbackMode != "" {
		if _, err := rand.ParseMode(string(c.RNG.FallbackMode)); err != nil {
			return fmt.Errorf("fallback: %w", err)
		}
	}
	if c.RNG.Mode == rand.ModePKCS11 && (c.RNG.PKCS11 == nil || c.RNG.PKCS11.Module == "") {
		return fmt.Errorf("rng.pkcs11.module is required when rng.mode is pkcs11")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	validOutputs := map[string]bool{"text": true, "json": true, "yaml": true}
	if !validOutputs[strings.ToLower(c.Output)] {
		return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", c.Output)
	}

	return nil
}

// Debug reports whether the log level enables debug records
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Logging.Level, "debug")
}
