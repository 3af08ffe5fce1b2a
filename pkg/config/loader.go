package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a switch configuration from path. Files ending in .json are
// decoded as JSON; everything else is treated as YAML. Unknown fields are
// rejected in both formats. The result has passed format validation.
func Load(path string) (*SwitchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	var cfg *SwitchConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err = ParseJSON(data)
	} else {
		cfg, err = ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML decodes and validates a YAML configuration document. An empty
// document yields the defaults.
func ParseYAML(data []byte) (*SwitchConfig, error) {
	cfg := New()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseJSON decodes and validates a JSON configuration document.
func ParseJSON(data []byte) (*SwitchConfig, error) {
	cfg := New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
