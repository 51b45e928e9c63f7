// Package catalog loads the static list of plant identifiers (ESP field codes
// and similar) that exist before any record references them.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of the static identifier list.
type File struct {
	ESPCodes    []string `yaml:"esp_codes"`
	Identifiers []string `yaml:"identifiers"`
}

// All returns ESP codes followed by the other identifiers.
func (f File) All() []string {
	out := make([]string, 0, len(f.ESPCodes)+len(f.Identifiers))
	out = append(out, f.ESPCodes...)
	return append(out, f.Identifiers...)
}

// Parse decodes a static identifier list.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse identifier file: %w", err)
	}
	return f, nil
}

// Load reads the list at path. An empty path yields an empty list.
func Load(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identifier file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.All(), nil
}
