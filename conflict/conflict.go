// Package conflict finds the fields that more than one layer writes and
// decides which layer wins.
//
// Resolution is positional last-writer-wins: among the layers writing a
// path, the one that comes last in the candidate order supplies the final
// value, regardless of operation kind or value equality.
package conflict

import (
	"fmt"
	"sort"

	"github.com/brunoga/layerstack/internal/core"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/patch"
)

// Override is a value written by a layer that lost a conflict.
type Override struct {
	LayerID   string `json:"layerId" yaml:"layerId"`
	LayerName string `json:"layerName" yaml:"layerName"`
	Value     any    `json:"value" yaml:"value"`
}

// Conflict describes a path written by two or more candidate layers.
type Conflict struct {
	Path       string     `json:"path" yaml:"path"`
	Layers     []string   `json:"layers" yaml:"layers"`
	FinalValue any        `json:"finalValue" yaml:"finalValue"`
	Overridden []Override `json:"overriddenValues" yaml:"overriddenValues"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("conflict at %s: %s wins with %v over %d layer(s)", c.Path, c.Winner(), c.FinalValue, len(c.Overridden))
}

// Winner returns the ID of the layer whose value is final.
func (c Conflict) Winner() string {
	if len(c.Layers) == 0 {
		return ""
	}
	return c.Layers[len(c.Layers)-1]
}

// Map holds conflicts keyed by canonical path.
type Map map[string]Conflict

// Paths returns the conflicting paths in sorted order.
func (m Map) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Winner returns the winning layer ID for path.
func (m Map) Winner(path string) (string, bool) {
	c, ok := m[patch.CanonicalPath(path)]
	if !ok {
		return "", false
	}
	return c.Winner(), true
}

// entry is one layer's write to a path.
type entry struct {
	position int
	layer    *layer.Layer
	value    any
}

// Detect computes the conflict map for candidates, which must already be in
// application order. Only add and replace operations take part. A layer that
// writes the same path more than once contributes a single entry carrying
// its last value.
func Detect(candidates []layer.Layer) Map {
	touched := make(map[string][]entry)
	for pos := range candidates {
		l := &candidates[pos]
		for _, op := range l.Patch {
			if !op.Writes() {
				continue
			}
			key := patch.CanonicalPath(op.Path)
			entries := touched[key]
			if n := len(entries); n > 0 && entries[n-1].position == pos {
				entries[n-1].value = op.Value
				continue
			}
			touched[key] = append(entries, entry{position: pos, layer: l, value: op.Value})
		}
	}

	conflicts := make(Map)
	for path, entries := range touched {
		if len(entries) < 2 {
			continue
		}
		conflicts[path] = resolve(path, entries)
	}
	return conflicts
}

// resolve applies positional last-writer-wins to the entries of one path.
func resolve(path string, entries []entry) Conflict {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].position < entries[j].position
	})

	winner := entries[len(entries)-1]
	c := Conflict{
		Path:       path,
		Layers:     make([]string, 0, len(entries)),
		FinalValue: core.Clone(winner.value),
		Overridden: make([]Override, 0, len(entries)-1),
	}
	for i, e := range entries {
		c.Layers = append(c.Layers, e.layer.ID)
		if i == len(entries)-1 {
			break
		}
		c.Overridden = append(c.Overridden, Override{
			LayerID:   e.layer.ID,
			LayerName: e.layer.Name,
			Value:     core.Clone(e.value),
		})
	}
	return c
}
