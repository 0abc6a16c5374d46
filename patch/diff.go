package patch

import (
	"sort"
	"strconv"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/internal/core"
)

// DiffOption configures Diff.
type DiffOption interface {
	applyDiff(*diffConfig)
}

type diffOptionFunc func(*diffConfig)

func (f diffOptionFunc) applyDiff(c *diffConfig) {
	f(c)
}

type diffConfig struct {
	ignoredPaths map[string]bool
}

// DiffIgnorePath tells Diff to skip a section or field. The path uses the
// pointer form, e.g. "/print_settings/perimeter_speed".
func DiffIgnorePath(path string) DiffOption {
	return diffOptionFunc(func(c *diffConfig) {
		c.ignoredPaths[CanonicalPath(path)] = true
	})
}

// Diff returns a patch that turns from into to. Applying the result to from
// yields a document equal to to. Operations are ordered by section and field
// name, so the result is deterministic. Equal documents give an empty patch.
//
// Arrays of equal length are diffed element by element; arrays whose length
// changed are replaced as a whole.
func Diff(from, to document.Sections, opts ...DiffOption) Patch {
	config := &diffConfig{ignoredPaths: make(map[string]bool)}
	for _, opt := range opts {
		opt.applyDiff(config)
	}

	p := New()
	for _, section := range from.SectionNames() {
		if _, ok := to[section]; ok || config.ignored(section) {
			continue
		}
		p = append(p, Operation{Op: OperationTypeRemove, Path: core.Path{section}.String()})
	}

	for _, section := range to.SectionNames() {
		if config.ignored(section) {
			continue
		}
		fromFields, ok := from[section]
		if !ok {
			p = append(p, Operation{
				Op:    OperationTypeAdd,
				Path:  core.Path{section}.String(),
				Value: core.Clone(map[string]any(to[section])),
			})
			continue
		}
		p = append(p, diffFields(section, fromFields, to[section], config)...)
	}
	return p
}

func diffFields(section string, from, to map[string]any, config *diffConfig) Patch {
	var p Patch
	for _, field := range sortedKeys(from) {
		if _, ok := to[field]; ok || config.ignored(section, field) {
			continue
		}
		p = append(p, Operation{Op: OperationTypeRemove, Path: core.Path{section, field}.String()})
	}

	for _, field := range sortedKeys(to) {
		if config.ignored(section, field) {
			continue
		}
		path := core.Path{section, field}
		newValue := to[field]
		oldValue, ok := from[field]
		switch {
		case !ok:
			p = append(p, Operation{Op: OperationTypeAdd, Path: path.String(), Value: core.Clone(newValue)})
		case core.Equal(oldValue, newValue):
		default:
			p = append(p, diffValue(path, oldValue, newValue)...)
		}
	}
	return p
}

func diffValue(path core.Path, oldValue, newValue any) Patch {
	oldElems, okOld := oldValue.([]any)
	newElems, okNew := newValue.([]any)
	if !okOld || !okNew || len(oldElems) != len(newElems) {
		return Patch{{Op: OperationTypeReplace, Path: path.String(), Value: core.Clone(newValue)}}
	}

	var p Patch
	for i := range newElems {
		if core.Equal(oldElems[i], newElems[i]) {
			continue
		}
		elem := append(core.Path{}, path...)
		elem = append(elem, strconv.Itoa(i))
		p = append(p, Operation{Op: OperationTypeReplace, Path: elem.String(), Value: newElems[i]})
	}
	return p
}

func (c *diffConfig) ignored(segments ...string) bool {
	return c.ignoredPaths[core.Path(segments).String()]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
