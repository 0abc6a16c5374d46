// Package layer defines the named, orderable, toggleable edit bundles that
// are stacked on a base document.
package layer

import (
	"time"

	"github.com/google/uuid"

	"github.com/brunoga/layerstack/internal/core"
	"github.com/brunoga/layerstack/patch"
)

// Metadata describes who wrote a layer and how it is classified.
type Metadata struct {
	Author   string   `json:"author,omitempty" yaml:"author,omitempty"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Created  string   `json:"created,omitempty" yaml:"created,omitempty"`
	Modified string   `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// SettingChange is the human-readable rendering of one add or replace
// operation relative to a base document. A nil OldValue means the path did
// not resolve in the base document.
type SettingChange struct {
	Path     string `json:"path" yaml:"path"`
	Key      string `json:"key" yaml:"key"`
	OldValue any    `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue any    `json:"newValue" yaml:"newValue"`
	Unit     string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Section  string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Layer is an identified bundle of field edits. Layers are plain data: they
// round-trip through JSON and YAML without loss and are only ever changed by
// replacing whole fields.
type Layer struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool            `json:"enabled" yaml:"enabled"`
	Patch       patch.Patch     `json:"patch" yaml:"patch"`
	Metadata    Metadata        `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Preview     []SettingChange `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// Option configures a layer created by New.
type Option func(*Layer)

// WithDescription sets the layer description.
func WithDescription(description string) Option {
	return func(l *Layer) {
		l.Description = description
	}
}

// WithAuthor sets the author metadata.
func WithAuthor(author string) Option {
	return func(l *Layer) {
		l.Metadata.Author = author
	}
}

// WithCategory sets the category metadata.
func WithCategory(category string) Option {
	return func(l *Layer) {
		l.Metadata.Category = category
	}
}

// WithTags sets the tag metadata.
func WithTags(tags ...string) Option {
	return func(l *Layer) {
		l.Metadata.Tags = append([]string(nil), tags...)
	}
}

// WithID overrides the generated ID.
func WithID(id string) Option {
	return func(l *Layer) {
		l.ID = id
	}
}

// Disabled creates the layer switched off.
func Disabled() Option {
	return func(l *Layer) {
		l.Enabled = false
	}
}

// New creates an enabled layer with a random ID and creation timestamps.
func New(name string, p patch.Patch, opts ...Option) Layer {
	now := time.Now().UTC().Format(time.RFC3339)
	l := Layer{
		ID:      uuid.NewString(),
		Name:    name,
		Enabled: true,
		Patch:   core.Clone(p),
		Metadata: Metadata{
			Created:  now,
			Modified: now,
		},
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	return core.Clone(l)
}

// WithEnabled returns a copy of the layer with Enabled set.
func (l Layer) WithEnabled(enabled bool) Layer {
	c := l.Clone()
	c.Enabled = enabled
	return c
}

// WithPatch returns a copy of the layer with its patch replaced. The cached
// preview is dropped because it no longer describes the patch.
func (l Layer) WithPatch(p patch.Patch) Layer {
	c := l.Clone()
	c.Patch = core.Clone(p)
	c.Preview = nil
	c.Metadata.Modified = time.Now().UTC().Format(time.RFC3339)
	return c
}
