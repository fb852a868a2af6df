package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads a JSON agent definition.
func Decode(r io.Reader) (*Library, error) {
	var lib Library
	if err := json.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("agent: decode json: %w", err)
	}
	return &lib, nil
}

// DecodeYAML reads a YAML agent definition. It uses the same field names as
// the JSON form.
func DecodeYAML(r io.Reader) (*Library, error) {
	var lib Library
	if err := yaml.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("agent: decode yaml: %w", err)
	}
	return &lib, nil
}

// Parse decodes data according to the extension of filename.
func Parse(filename string, data []byte) (*Library, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	case ".json":
		return Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("agent: unsupported definition format %q", filename)
	}
}
