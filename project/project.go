// Package project persists a layer stack: the selected base document, the
// layer set and the layer order.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/layer"
)

// CurrentVersion is the project file version written by Save.
const CurrentVersion = 1

var (
	// ErrInvalid is returned for project files that fail validation.
	ErrInvalid = errors.New("invalid project")

	// ErrDuplicateLayer is returned when two layers share an ID.
	ErrDuplicateLayer = errors.New("duplicate layer id")
)

const schemaURL = "mem://layerstack/project.json"

const schema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["baseDocumentId", "layers"],
	"properties": {
		"version": {"type": "integer", "minimum": 0},
		"baseDocumentId": {"type": "string", "minLength": 1},
		"order": {"type": ["array", "null"], "items": {"type": "string"}},
		"layers": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["id", "name", "patch"],
				"properties": {
					"id": {"type": "string"},
					"name": {"type": "string"},
					"enabled": {"type": "boolean"},
					"patch": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["op", "path"],
							"properties": {
								"op": {"enum": ["add", "remove", "replace"]},
								"path": {"type": "string"}
							}
						}
					}
				}
			}
		}
	}
}`

var validator = jsonschema.MustCompileString(schemaURL, schema)

// Project is the persisted form of a layer stack.
type Project struct {
	Version        int           `json:"version" yaml:"version"`
	BaseDocumentID string        `json:"baseDocumentId" yaml:"baseDocumentId"`
	Layers         []layer.Layer `json:"layers" yaml:"layers"`
	Order          []string      `json:"order" yaml:"order"`
}

// Validate checks every layer and rejects duplicate layer IDs.
func (p *Project) Validate() error {
	if p.BaseDocumentID == "" {
		return fmt.Errorf("%w: missing base document id", ErrInvalid)
	}
	var errs []error
	seen := make(map[string]bool, len(p.Layers))
	for _, l := range p.Layers {
		if err := layer.Validate(l); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("%w %q", ErrDuplicateLayer, l.ID))
		}
		seen[l.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Normalize removes unknown and repeated IDs from the order and returns how
// many entries were dropped.
func (p *Project) Normalize() int {
	order, dropped := layer.NormalizeOrder(p.Layers, p.Order)
	p.Order = order
	return dropped
}

// Load decodes a project and validates it. format must be JSON or YAML.
func Load(r io.Reader, format document.Format) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var raw any
	var p Project
	switch format {
	case document.FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", ErrInvalid, err)
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", ErrInvalid, err)
		}
	case document.FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalid, err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalid, err)
		}
	default:
		return nil, fmt.Errorf("unsupported project format %q", format)
	}

	if err := validateRaw(raw); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads a project, choosing the format from the extension.
func LoadFile(path string) (*Project, error) {
	format, err := document.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project %q: %w", path, err)
	}
	defer f.Close()

	p, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	return p, nil
}

// Save encodes the project. A zero Version is written as CurrentVersion.
func (p *Project) Save(w io.Writer, format document.Format) error {
	out := *p
	if out.Version == 0 {
		out.Version = CurrentVersion
	}

	switch format {
	case document.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(&out)
	case document.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported project format %q", format)
	}
}

// SaveFile writes the project, choosing the format from the extension.
func (p *Project) SaveFile(path string) error {
	format, err := document.FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.Save(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write project %q: %w", path, err)
	}
	return nil
}

func validateRaw(raw any) error {
	// Round trip through JSON so YAML-decoded values have the shapes the
	// validator expects.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validator.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			for len(ve.Causes) > 0 {
				ve = ve.Causes[0]
			}
			return fmt.Errorf("%w: at %s: %s", ErrInvalid, ve.InstanceLocation, ve.Message)
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
