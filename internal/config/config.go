// Package config loads the optional .bit.yaml file at the repository root.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up at the repository root.
const FileName = ".bit.yaml"

const (
	DefaultBaseline = "HEAD"
	DefaultScope    = "top-level"
	DefaultTimeout  = 30 * time.Second
	DefaultAddr     = "127.0.0.1:8000"
	maxWorkers      = 8
)

// Config holds analysis and service settings.
type Config struct {
	Baseline  string        `yaml:"baseline" validate:"required"`
	Languages []string      `yaml:"languages" validate:"min=1,dive,oneof=python go ruby"`
	Scope     string        `yaml:"scope" validate:"oneof=top-level all"`
	Workers   int           `yaml:"workers" validate:"min=1,max=256"`
	Timeout   time.Duration `yaml:"timeout"`
	Ignore    []string      `yaml:"ignore,omitempty"`
	Server    ServerConfig  `yaml:"server"`
}

// ServerConfig configures `bit serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Baseline:  DefaultBaseline,
		Languages: []string{"python"},
		Scope:     DefaultScope,
		Workers:   DefaultWorkers(),
		Timeout:   DefaultTimeout,
		Server:    ServerConfig{Addr: DefaultAddr},
	}
}

// DefaultWorkers sizes the per-file worker pool.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > maxWorkers {
		return maxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}

// Load reads root/.bit.yaml over the defaults. A missing file is not an error.
func Load(root string) (Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("invalid %s: timeout must not be negative", FileName)
	}
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid %s: %s", FileName, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Config) normalize() {
	c.Baseline = strings.TrimSpace(c.Baseline)
	c.Scope = strings.ToLower(strings.TrimSpace(c.Scope))
	for i, lang := range c.Languages {
		c.Languages[i] = strings.ToLower(strings.TrimSpace(lang))
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())
