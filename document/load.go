package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a serialization format for documents and projects.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// Load decodes and validates a base document.
func Load(r io.Reader, format Format) (*BaseDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read base document: %w", err)
	}

	var d BaseDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", ErrMalformed, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrMalformed, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &d); err != nil {
			return nil, fmt.Errorf("%w: decode toml: %v", ErrMalformed, err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads a base document, choosing the format from the extension.
func LoadFile(path string) (*BaseDocument, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base document %q: %w", path, err)
	}
	defer f.Close()

	d, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	return d, nil
}
