package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults that flags may override.
type Config struct {
	Type        string `toml:"type" yaml:"type"`
	VarName     string `toml:"var_name" yaml:"var_name"`
	Compress    bool   `toml:"compress" yaml:"compress"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	MaxElements int64  `toml:"max_elements" yaml:"max_elements"`
}

func Default() Config {
	return Config{
		Type:        "mat",
		VarName:     "Zmat",
		LogLevel:    "warn",
		MaxElements: 1 << 26,
	}
}

// Load reads a .toml, .yaml or .yml file over Default.
func Load(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return loadTOML(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	}
	return Config{}, fmt.Errorf("load config: unsupported extension %q", filepath.Ext(path))
}

func loadTOML(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("type") {
		cfg.Type = strings.TrimSpace(raw.Type)
	}
	if meta.IsDefined("var_name") {
		cfg.VarName = strings.TrimSpace(raw.VarName)
	}
	if meta.IsDefined("compress") {
		cfg.Compress = raw.Compress
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_elements") {
		cfg.MaxElements = raw.MaxElements
	}
	return cfg, nil
}

func loadYAML(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Type = strings.TrimSpace(cfg.Type)
	cfg.VarName = strings.TrimSpace(cfg.VarName)
	cfg.LogLevel = strings.TrimSpace(cfg.LogLevel)
	return cfg, nil
}
