package preview

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/brunoga/layerstack/patch"
)

// Info is the display metadata for a settings path.
type Info struct {
	Label   string `json:"label" yaml:"label"`
	Unit    string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Table resolves display metadata by canonical path. Tables are owned by the
// host and can be extended without touching the generator.
type Table interface {
	Lookup(path string) (Info, bool)
}

// StaticTable is a Table backed by a map keyed by canonical path.
type StaticTable map[string]Info

// Lookup implements Table.
func (t StaticTable) Lookup(path string) (Info, bool) {
	info, ok := t[path]
	return info, ok
}

// Merge returns a new table with the entries of other layered over t.
func (t StaticTable) Merge(other StaticTable) StaticTable {
	out := make(StaticTable, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// LoadTable reads a YAML table of the form
//
//	/print_settings/perimeter_speed:
//	  label: Perimeter speed
//	  unit: mm/s
//	  section: Speed
func LoadTable(r io.Reader) (StaticTable, error) {
	var raw map[string]Info
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return StaticTable{}, nil
		}
		return nil, fmt.Errorf("decode preview table: %w", err)
	}

	t := make(StaticTable, len(raw))
	for path, info := range raw {
		p, err := patch.ParsePath(path)
		if err != nil {
			return nil, fmt.Errorf("preview table: %w", err)
		}
		t[p.String()] = info
	}
	return t, nil
}
