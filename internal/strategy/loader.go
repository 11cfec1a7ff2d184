package strategy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load reads and validates a strategy file. KnownFields(true) makes a
// typo in the YAML an immediate error instead of a silently ignored
// field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy file: %w", err)
	}

	return Parse(data)
}

// Parse decodes strategy YAML, applies defaults and validates ranges.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode strategy: %w", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply strategy defaults: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate strategy: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in strategy: no filters, standard tier
// tables, legacy RSI. Scans run with it when no strategy file exists.
func Default() *Config {
	cfg := &Config{
		Meta: Meta{StrategyID: "momentum-default"},
	}
	// Set cannot fail on the zero Config
	_ = defaults.Set(cfg)
	return cfg
}

// Hash returns a reproducible SHA-256 of the config, used to stamp
// reports so two runs can be compared. Struct (not map) marshalling
// keeps the field order deterministic.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
