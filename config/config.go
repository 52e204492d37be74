// Package config holds the settings of a psxsim run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/psxsim/mem/bus"
	"github.com/sarchlab/psxsim/mem/icache"
)

// Config describes the machine and how to run it.
type Config struct {
	// BIOS is the path of the BIOS ROM image. Empty runs without one.
	BIOS string `json:"bios" yaml:"bios"`

	// EXE is the path of a program (PS-X EXE or MIPS ELF) to load.
	EXE string `json:"exe" yaml:"exe"`

	// RAMSize is the main RAM size in bytes.
	RAMSize uint32 `json:"ram_size" yaml:"ram_size"`

	// MaxSteps stops the run after this many instructions. 0 means no limit.
	MaxSteps uint64 `json:"max_steps" yaml:"max_steps"`

	// ICacheFill is the instruction cache fill policy, "word" or "line_end".
	ICacheFill string `json:"icache_fill" yaml:"icache_fill"`

	// VectorExceptions makes exceptions enter the COP0 handler instead of
	// stopping the run.
	VectorExceptions bool `json:"vector_exceptions" yaml:"vector_exceptions"`

	// LogLevel is one of "error", "warn", "info", "debug" or "trace".
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Trace logs every executed instruction.
	Trace bool `json:"trace" yaml:"trace"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RAMSize:    bus.RAMRange.Length,
		ICacheFill: icache.FillWord.String(),
		LogLevel:   "info",
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads a configuration file. Fields missing from the file keep their
// default values. Files ending in .yaml or .yml are YAML, anything else JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path in the format chosen by its
// extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var logLevels = map[string]bool{
	"error": true, "warn": true, "info": true, "debug": true, "trace": true,
}

// Validate checks that the configuration describes a runnable machine.
func (c *Config) Validate() error {
	if c.RAMSize == 0 || c.RAMSize > bus.RAMRange.Length {
		return fmt.Errorf("ram_size must be in (0, %d]", bus.RAMRange.Length)
	}
	if c.RAMSize&(c.RAMSize-1) != 0 {
		return fmt.Errorf("ram_size must be a power of two")
	}
	if _, err := c.FillPolicy(); err != nil {
		return err
	}
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// FillPolicy returns the parsed instruction cache fill policy.
func (c *Config) FillPolicy() (icache.FillPolicy, error) {
	return icache.ParseFillPolicy(c.ICacheFill)
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
