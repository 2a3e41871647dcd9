package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/Andrej220/go-utils/stealpool/internal/workload"
)

var (
	errUnsupportedFormat = errors.New("stealload: unsupported config format")
	errLoadConfig        = errors.New("stealload: load config")
)

type poolConfig struct {
	Workers int   `koanf:"workers"`
	Pin     bool  `koanf:"pin"`
	CPUs    []int `koanf:"cpus"`
}

type config struct {
	Pool     poolConfig      `koanf:"pool"`
	Workload workload.Config `koanf:"workload"`
}

func defaultConfig() config {
	return config{Workload: workload.Default()}
}

// loadConfig reads a YAML or JSON file over the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	parser, err := parserFor(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", errLoadConfig, err)
	}
	return parseConfig(data, parser)
}

func parseConfig(data []byte, parser koanf.Parser) (config, error) {
	cfg := defaultConfig()
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return cfg, fmt.Errorf("%w: %w", errLoadConfig, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", errLoadConfig, err)
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
	}
}
