package patch

import (
	"github.com/brunoga/layerstack/internal/core"
)

// OperationType defines the allowed patch operation types.
type OperationType string

const (
	OperationTypeAdd     OperationType = "add"
	OperationTypeRemove  OperationType = "remove"
	OperationTypeReplace OperationType = "replace"
)

// Valid reports whether t is one of the supported operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OperationTypeAdd, OperationTypeRemove, OperationTypeReplace:
		return true
	}
	return false
}

// Operation represents a single field-level edit in a Patch.
type Operation struct {
	Op    OperationType `json:"op" yaml:"op"`
	Path  string        `json:"path" yaml:"path"`
	Value any           `json:"value,omitempty" yaml:"value,omitempty"` // Used for "add" and "replace"
}

// Writes reports whether the operation writes a value (add or replace).
// Only writing operations take part in conflicts and previews.
func (op Operation) Writes() bool {
	return op.Op == OperationTypeAdd || op.Op == OperationTypeReplace
}

// ParsedPath parses the operation's pointer.
func (op Operation) ParsedPath() (Path, error) {
	return core.ParsePath(op.Path)
}

// Path is a parsed pointer into a settings document.
type Path = core.Path

// ParsePath parses a slash-delimited pointer such as "/print/speed". Segment
// names are not unescaped: "~0" and "~1" are taken literally.
func ParsePath(s string) (Path, error) {
	return core.ParsePath(s)
}

// ErrInvalidPath is returned for pointers that do not parse.
var ErrInvalidPath = core.ErrInvalidPath
