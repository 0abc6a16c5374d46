// Package preview renders a layer's edits as before/after pairs relative to
// a base document.
//
// Previews depend on the base document through OldValue, so they must be
// regenerated whenever the active base document changes, even though the
// layer itself is not tied to any base document.
package preview

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/internal/core"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/patch"
)

// SettingChange is one previewed add or replace operation.
type SettingChange = layer.SettingChange

// Generator produces previews using a metadata table.
type Generator struct {
	table Table
}

// New creates a generator. A nil table falls back to labels derived from the
// path for every entry.
func New(table Table) *Generator {
	if table == nil {
		table = StaticTable{}
	}
	return &Generator{table: table}
}

// Generate returns one SettingChange per add or replace operation of l, in
// patch order. Remove operations are not previewed. The result is freshly
// allocated and does not alias l or sections.
func (g *Generator) Generate(l layer.Layer, sections document.Sections) []SettingChange {
	var changes []SettingChange
	for _, op := range l.Patch {
		if !op.Writes() {
			continue
		}
		changes = append(changes, g.change(op, sections))
	}
	return changes
}

func (g *Generator) change(op patch.Operation, sections document.Sections) SettingChange {
	c := SettingChange{
		Path:     op.Path,
		NewValue: core.Clone(op.Value),
	}

	path, err := patch.ParsePath(op.Path)
	if err != nil {
		c.Key = humanize(lastSegment(op.Path))
		c.Section = humanize(firstSegment(op.Path))
		return c
	}

	c.Path = path.String()
	if old, ok := path.Lookup(sections); ok {
		c.OldValue = core.Clone(old)
	}

	if info, ok := g.table.Lookup(c.Path); ok {
		c.Key = info.Label
		c.Unit = info.Unit
		c.Section = info.Section
	}
	if c.Key == "" {
		c.Key = label(path)
	}
	if c.Section == "" {
		c.Section = humanize(path.Section())
	}
	return c
}

// UpdateAll returns copies of layers with their Preview recomputed against
// base. The input layers are not modified.
func (g *Generator) UpdateAll(layers []layer.Layer, base *document.BaseDocument) []layer.Layer {
	var sections document.Sections
	if base != nil {
		sections = base.Sections
	}

	out := make([]layer.Layer, len(layers))
	for i, l := range layers {
		c := l.Clone()
		c.Preview = g.Generate(l, sections)
		out[i] = c
	}
	return out
}

// GeneratePreview is Generate with no metadata table.
func GeneratePreview(l layer.Layer, sections document.Sections) []SettingChange {
	return New(nil).Generate(l, sections)
}

// UpdatePreviews is UpdateAll with no metadata table.
func UpdatePreviews(layers []layer.Layer, base *document.BaseDocument) []layer.Layer {
	return New(nil).UpdateAll(layers, base)
}

// label derives a display label from the path. Element paths are labelled
// after their field, e.g. "Temperature [1]".
func label(path patch.Path) string {
	if path.IsElement() {
		return humanize(path.Field()) + " [" + path.Last() + "]"
	}
	return humanize(path.Last())
}

// humanize turns "perimeter_speed" into "Perimeter Speed". Only the first
// letter of each word is changed.
func humanize(segment string) string {
	words := strings.ReplaceAll(segment, "_", " ")
	return cases.Title(language.Und, cases.NoLower).String(words)
}

func firstSegment(s string) string {
	s = strings.TrimPrefix(s, "/")
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i]
	}
	return s
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
