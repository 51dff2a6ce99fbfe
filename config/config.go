// Package config reads the configuration file shared by the engine options
// and the mut command.
//
// A configuration file is YAML:
//
//	strictCreate: true
//	ids: sequence
//	idPrefix: tx-
//	format: json
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/signadot/mutator/format"
	"github.com/signadot/mutator/mutation"
	"github.com/signadot/mutator/txid"
)

const (
	IDsULID     = "ulid"
	IDsSequence = "sequence"
)

// Config represents the configuration file structure.
type Config struct {
	// StrictCreate makes create fail when the document already exists.
	StrictCreate bool `yaml:"strictCreate"`
	// IDs selects the transaction id generator, "ulid" or "sequence".
	IDs string `yaml:"ids"`
	// IDPrefix prefixes ids from the sequence generator.
	IDPrefix string `yaml:"idPrefix"`
	// Format is the output format, "yaml" or "json". Can be overridden by
	// CLI flag.
	Format string `yaml:"format"`
}

// Load loads a configuration file. Fields not present keep their default
// values; unknown fields are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		IDs:    IDsULID,
		Format: "yaml",
	}
}

func (c *Config) Validate() error {
	switch c.IDs {
	case "", IDsULID, IDsSequence:
	default:
		return fmt.Errorf("unknown id generator %q", c.IDs)
	}
	if c.Format != "" {
		if _, err := format.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	return nil
}

// OutputFormat returns the configured format, YAML if none is set.
func (c *Config) OutputFormat() format.Format {
	f, err := format.ParseFormat(c.Format)
	if err != nil {
		return format.YAMLFormat
	}
	return f
}

// IDGenerator returns a new generator of the configured kind.
func (c *Config) IDGenerator() txid.Generator {
	if c.IDs == IDsSequence {
		return txid.NewSequence(c.IDPrefix)
	}
	return txid.Default()
}

// MutationOptions returns the options to create mutations with.
func (c *Config) MutationOptions() []mutation.Option {
	return []mutation.Option{
		mutation.WithStrictCreate(c.StrictCreate),
		mutation.WithIDGenerator(c.IDGenerator()),
	}
}
