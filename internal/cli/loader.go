package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verist/cdl/internal/constraint"
)

// LoadDefinition reads a constraint definition from a .json, .yaml, or
// .yml file into the untyped form the parser consumes.
func LoadDefinition(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var def map[string]any
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decode YAML definition: %w", err)
		}
		return def, nil
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var def map[string]any
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("decode JSON definition: %w", err)
		}
		return def, nil
	}
}

// LoadRecord reads an evaluation input record from a .json, .yaml, or
// .yml file.
func LoadRecord(path string) (constraint.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode YAML record: %w", err)
		}
		v, err := constraint.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("convert record: %w", err)
		}
		return v.(constraint.Map), nil
	default:
		record, err := constraint.RecordFromJSON(data)
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}
