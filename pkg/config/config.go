// Package config supplies environment-specific settings for spawning
// process workers: where named scripts live, which runtime executes them,
// and which execution flags a spawn inherits.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/ports"
)

// Config holds worker spawn settings.
type Config struct {
	// ScriptDirs are the base paths searched when resolving a named
	// script, in order.
	ScriptDirs []string `mapstructure:"script_dirs"`

	// Runtime is the bootstrap command executed for process workers.
	Runtime string `mapstructure:"runtime"`

	// ExecArgv are the execution flags a process spawn inherits. Inspector
	// flags among them are rewritten per spawn.
	ExecArgv []string `mapstructure:"exec_argv"`

	// InspectBasePort seeds the inspector-port allocator.
	InspectBasePort int `mapstructure:"inspect_base_port"`

	allocOnce sync.Once
	alloc     ports.PortAllocator
}

// PortAllocator returns the inspector-port allocator seeded from
// InspectBasePort. Configs on the default base share the process-wide
// allocator; a custom base gets one allocator per config, so ports stay
// unique across every spawn using that config.
func (c *Config) PortAllocator() ports.PortAllocator {
	if c.InspectBasePort <= 0 || c.InspectBasePort == process.DefaultBasePort {
		return process.SharedAllocator
	}
	c.allocOnce.Do(func() {
		c.alloc = process.NewCounterAllocator(c.InspectBasePort)
	})
	return c.alloc
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ScriptDirs:      []string{"."},
		InspectBasePort: process.DefaultBasePort,
	}
}

// Load reads a YAML config file. A missing file is not an error: it yields
// the defaults, matching the zero-configuration path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if err := mapstructure.Decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.InspectBasePort <= 0 {
		cfg.InspectBasePort = process.DefaultBasePort
	}
	if len(cfg.ScriptDirs) == 0 {
		cfg.ScriptDirs = []string{"."}
	}
	return cfg, nil
}

// ResolveScript maps a script name to a path using the configured base
// dirs. Absolute paths and paths that exist as given are returned as-is.
func (c *Config) ResolveScript(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	for _, dir := range c.ScriptDirs {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("script %q not found in %v", name, c.ScriptDirs)
}
