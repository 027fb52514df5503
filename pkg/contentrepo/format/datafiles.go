package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// YAML reads and writes pure YAML documents.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) FromFile(raw string) (map[string]any, error) {
	data := map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return data, nil
}

func (YAML) ToFile(data map[string]any) (string, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("serialize yaml: %w", err)
	}
	return string(out), nil
}

// TOML reads and writes pure TOML documents.
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) FromFile(raw string) (map[string]any, error) {
	data := map[string]any{}
	if err := toml.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return data, nil
}

func (TOML) ToFile(data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return "", fmt.Errorf("serialize toml: %w", err)
	}
	return buf.String(), nil
}

// JSON reads and writes pure JSON documents.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) FromFile(raw string) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return data, nil
}

func (JSON) ToFile(data map[string]any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize json: %w", err)
	}
	return string(out) + "\n", nil
}
