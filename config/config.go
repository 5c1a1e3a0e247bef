// Package config loads an optional YAML file supplying defaults for the
// sweeper subcommands. Flags set explicitly on the command line always
// override config values, and the config cannot extend the scan allow
// list.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so values like "500ms" parse from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

type Config struct {
	Scan   ScanConfig   `yaml:"scan"`
	Serve  ServeConfig  `yaml:"serve"`
	Client ClientConfig `yaml:"client"`
}

type ScanConfig struct {
	Workers int      `yaml:"workers"`
	Timeout Duration `yaml:"timeout"`
	Delay   Duration `yaml:"delay"`
}

type ServeConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	MaxClients int64  `yaml:"max_clients"`
}

type ClientConfig struct {
	Host    string   `yaml:"host"`
	Port    int      `yaml:"port"`
	Timeout Duration `yaml:"timeout"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers: 50,
			Timeout: Duration(500 * time.Millisecond),
			Delay:   Duration(5 * time.Millisecond),
		},
		Serve: ServeConfig{
			Host:       "127.0.0.1",
			Port:       9000,
			MaxClients: 256,
		},
		Client: ClientConfig{
			Host:    "127.0.0.1",
			Port:    9000,
			Timeout: Duration(5 * time.Second),
		},
	}
}

// Load reads path, layering its values over the defaults. Unknown keys
// are rejected so typos fail loudly.
func Load(path string) (*Config, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return errors.New("scan.workers must be at least 1")
	}
	if c.Scan.Timeout < 0 || c.Scan.Delay < 0 {
		return errors.New("scan.timeout and scan.delay cannot be negative")
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d is outside 1-65535", c.Serve.Port)
	}
	if c.Serve.MaxClients < 1 {
		return errors.New("serve.max_clients must be at least 1")
	}
	if c.Client.Port < 1 || c.Client.Port > 65535 {
		return fmt.Errorf("client.port %d is outside 1-65535", c.Client.Port)
	}
	if c.Client.Timeout < 0 {
		return errors.New("client.timeout cannot be negative")
	}
	return nil
}
