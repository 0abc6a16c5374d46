// Package document holds the read-only base documents that layers are
// compiled against.
//
// A base document is a set of named sections, each a flat map of fields to
// primitive values (string, number, bool) or arrays of primitives. That shape
// is what a downstream exporter needs to emit "[section]" / "field = value"
// lines, and it is enforced by Validate.
package document

import (
	"fmt"
	"sort"

	"github.com/barkimedes/go-deepcopy"
)

// Sections is a section → field → value document.
type Sections map[string]map[string]any

// BaseDocument is the starting configuration that layers are stacked on. It
// is owned by the caller and never mutated by this module.
type BaseDocument struct {
	ID       string            `json:"id" yaml:"id" toml:"id"`
	Name     string            `json:"name" yaml:"name" toml:"name"`
	Version  string            `json:"version,omitempty" yaml:"version,omitempty" toml:"version"`
	Sections Sections          `json:"sections" yaml:"sections" toml:"sections"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata"`
}

// Clone returns a deep copy of the document. Nil maps stay nil.
func (d *BaseDocument) Clone() (*BaseDocument, error) {
	if d == nil {
		return nil, nil
	}
	dst, err := deepcopy.Anything(d)
	if err != nil {
		return nil, fmt.Errorf("clone base document %q: %w", d.ID, err)
	}
	out := dst.(*BaseDocument)
	if d.Sections == nil {
		out.Sections = nil
	}
	if d.Metadata == nil {
		out.Metadata = nil
	}
	return out, nil
}

// SectionNames returns the section names in sorted order.
func (s Sections) SectionNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldNames returns the field names of a section in sorted order.
func (s Sections) FieldNames(section string) []string {
	fields := s[section]
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of section/field.
func (s Sections) Get(section, field string) (any, bool) {
	fields, ok := s[section]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}
