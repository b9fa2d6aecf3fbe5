package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Config - tool configuration parsed from yaml or json.
	Config struct {
		Compression *CompressionConfig `yaml:"compression" json:"compression"`
		Logging     *LoggingConfig     `yaml:"logging" json:"logging"`
	}

	// CompressionConfig - codec settings applied to every stream.
	CompressionConfig struct {
		Level       int `yaml:"level" json:"level"`
		BufferSize  int `yaml:"buffer_size" json:"buffer_size"`
		ScratchSize int `yaml:"scratch_size" json:"scratch_size"`
	}

	// LoggingConfig - logger level and optional log directory.
	LoggingConfig struct {
		Level  string `yaml:"level" json:"level"`
		Output string `yaml:"output" json:"output"`
	}
)

// GetConfig - loads configuration from path, falling back to defaults when
// the file does not exist.
func GetConfig(path string) (Config, error) {
	configContent, err := GetConfigReader(path)
	if err != nil {
		return Config{}, err
	}

	return ParseConfig(configContent)
}

// ParseConfig - parses configuration, trying yaml first, then json. The
// input is buffered once so each parser sees the whole document.
func ParseConfig(input io.ReadCloser) (Config, error) {
	defer input.Close()

	raw, err := io.ReadAll(input)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var parseErr strings.Builder
	for _, parser := range []func(io.Reader, *Config) error{yamlParser, jsonParser} {
		var cfg Config
		err := parser(bytes.NewReader(raw), &cfg)
		if err == nil {
			return cfg, nil
		}
		_, _ = parseErr.WriteString(fmt.Sprintf("Error parsing config: %s\n", err.Error()))
	}

	return Config{}, errors.New(parseErr.String())
}

func yamlParser(input io.Reader, config *Config) error {
	decoder := yaml.NewDecoder(input)
	if err := decoder.Decode(config); err != nil {
		return fmt.Errorf("cant decode yaml config: %w", err)
	}

	return nil
}

func jsonParser(input io.Reader, config *Config) error {
	decoder := json.NewDecoder(input)
	if err := decoder.Decode(config); err != nil {
		return fmt.Errorf("cant decode json config: %w", err)
	}

	return nil
}
