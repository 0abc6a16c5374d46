// Package patch implements the edit vocabulary of a layer: an ordered list
// of add, replace and remove operations addressed by slash-delimited
// pointers, applied atomically to a settings document.
package patch

import (
	"errors"
	"fmt"

	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/internal/core"
)

var (
	// ErrPathNotFound is returned when an operation targets a section,
	// field or element that does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrTypeMismatch is returned when an operation's value or target does
	// not fit the document shape.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownOp is returned for operation types outside add, replace and
	// remove.
	ErrUnknownOp = errors.New("unknown operation")

	// ErrMissingValue is returned by Validate for add or replace operations
	// without a value.
	ErrMissingValue = errors.New("missing value")

	// ErrEmptyPatch is returned by Validate for a patch with no operations.
	ErrEmptyPatch = errors.New("empty patch")
)

// OperationError reports the operation that made a patch fail to apply or
// validate.
type OperationError struct {
	Index int
	Op    Operation
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s %s): %v", e.Index, e.Op.Op, e.Op.Path, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Patch is an ordered list of Operations.
type Patch []Operation

// New creates a new empty Patch.
func New() Patch {
	return Patch{}
}

// Add appends an operation that adds or overwrites the value at path.
func (p Patch) Add(path string, value any) Patch {
	mustParse("Add", path)
	return append(p, Operation{Op: OperationTypeAdd, Path: path, Value: value})
}

// Replace appends an operation that replaces the existing value at path.
func (p Patch) Replace(path string, value any) Patch {
	mustParse("Replace", path)
	return append(p, Operation{Op: OperationTypeReplace, Path: path, Value: value})
}

// Remove appends an operation that removes the value at path.
func (p Patch) Remove(path string) Patch {
	mustParse("Remove", path)
	return append(p, Operation{Op: OperationTypeRemove, Path: path})
}

func mustParse(kind, path string) {
	if _, err := core.ParsePath(path); err != nil {
		panic(fmt.Sprintf("invalid %s operation: %v", kind, err))
	}
}

// Validate checks the patch structurally, without looking at any document:
// the patch must not be empty, every operation must have a known type and a
// parseable path, and add/replace operations must carry a value of the right
// shape for their target.
func (p Patch) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPatch
	}
	var errs []error
	for i, op := range p {
		if err := validateOperation(op); err != nil {
			errs = append(errs, &OperationError{Index: i, Op: op, Err: err})
		}
	}
	return errors.Join(errs...)
}

func validateOperation(op Operation) error {
	if !op.Op.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownOp, op.Op)
	}
	path, err := core.ParsePath(op.Path)
	if err != nil {
		return err
	}
	if !op.Writes() {
		if path.Last() == core.AppendSegment {
			return fmt.Errorf("%w: cannot remove %q", ErrInvalidPath, op.Path)
		}
		return nil
	}
	if op.Value == nil {
		return ErrMissingValue
	}
	_, err = valueFor(path, op.Value)
	return err
}

// Touched returns the canonical paths written by add and replace operations,
// in patch order. Operations with unparseable paths are reported verbatim.
func (p Patch) Touched() []string {
	var paths []string
	for _, op := range p {
		if !op.Writes() {
			continue
		}
		paths = append(paths, CanonicalPath(op.Path))
	}
	return paths
}

// CanonicalPath returns the canonical form of a pointer, or the input itself
// when it does not parse.
func CanonicalPath(s string) string {
	if path, err := core.ParsePath(s); err == nil {
		return path.String()
	}
	return s
}

// Apply applies the patch to the document pointed to by target as a single
// atomic unit. Either every operation succeeds and *target is replaced by
// the patched document, or an *OperationError is returned and *target is left
// untouched. The document *target referred to before the call is never
// mutated.
func (p Patch) Apply(target *document.Sections) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrTypeMismatch)
	}

	working := document.Sections(core.CloneSections(*target))
	for i, op := range p {
		if err := applyOperation(working, op); err != nil {
			return &OperationError{Index: i, Op: op, Err: err}
		}
	}
	*target = working
	return nil
}

// applyOperation applies a single operation to doc in place.
func applyOperation(doc document.Sections, op Operation) error {
	path, err := core.ParsePath(op.Path)
	if err != nil {
		return err
	}

	switch op.Op {
	case OperationTypeAdd:
		return applyAdd(doc, path, op.Value)
	case OperationTypeRemove:
		return applyRemove(doc, path)
	case OperationTypeReplace:
		return applyReplace(doc, path, op.Value)
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, op.Op)
	}
}

func applyAdd(doc document.Sections, path Path, value any) error {
	v, err := valueFor(path, value)
	if err != nil {
		return err
	}

	switch {
	case path.IsSection():
		doc[path.Section()] = v.(map[string]any)
		return nil

	case path.IsField():
		fields, ok := doc[path.Section()]
		if !ok {
			return fmt.Errorf("%w: section %q", ErrPathNotFound, path.Section())
		}
		fields[path.Field()] = v
		return nil

	default:
		elems, err := elementsAt(doc, path)
		if err != nil {
			return err
		}
		idx, _ := path.Index()
		if idx == -1 {
			idx = len(elems)
		}
		if idx > len(elems) {
			return fmt.Errorf("%w: index %d out of bounds [0:%d]", ErrPathNotFound, idx, len(elems))
		}
		grown := make([]any, 0, len(elems)+1)
		grown = append(grown, elems[:idx]...)
		grown = append(grown, v)
		grown = append(grown, elems[idx:]...)
		doc[path.Section()][path.Field()] = grown
		return nil
	}
}

func applyReplace(doc document.Sections, path Path, value any) error {
	v, err := valueFor(path, value)
	if err != nil {
		return err
	}

	switch {
	case path.IsSection():
		if _, ok := doc[path.Section()]; !ok {
			return fmt.Errorf("%w: section %q", ErrPathNotFound, path.Section())
		}
		doc[path.Section()] = v.(map[string]any)
		return nil

	case path.IsField():
		fields, ok := doc[path.Section()]
		if !ok {
			return fmt.Errorf("%w: section %q", ErrPathNotFound, path.Section())
		}
		if _, ok := fields[path.Field()]; !ok {
			return fmt.Errorf("%w: field %q", ErrPathNotFound, path.String())
		}
		fields[path.Field()] = v
		return nil

	default:
		elems, err := elementsAt(doc, path)
		if err != nil {
			return err
		}
		idx, _ := path.Index()
		if idx < 0 || idx >= len(elems) {
			return fmt.Errorf("%w: index %s out of bounds [0:%d)", ErrPathNotFound, path.Last(), len(elems))
		}
		elems[idx] = v
		return nil
	}
}

func applyRemove(doc document.Sections, path Path) error {
	switch {
	case path.IsSection():
		if _, ok := doc[path.Section()]; !ok {
			return fmt.Errorf("%w: section %q", ErrPathNotFound, path.Section())
		}
		delete(doc, path.Section())
		return nil

	case path.IsField():
		fields, ok := doc[path.Section()]
		if !ok {
			return fmt.Errorf("%w: section %q", ErrPathNotFound, path.Section())
		}
		if _, ok := fields[path.Field()]; !ok {
			return fmt.Errorf("%w: field %q", ErrPathNotFound, path.String())
		}
		delete(fields, path.Field())
		return nil

	default:
		elems, err := elementsAt(doc, path)
		if err != nil {
			return err
		}
		idx, _ := path.Index()
		if idx < 0 || idx >= len(elems) {
			return fmt.Errorf("%w: index %s out of bounds [0:%d)", ErrPathNotFound, path.Last(), len(elems))
		}
		shrunk := make([]any, 0, len(elems)-1)
		shrunk = append(shrunk, elems[:idx]...)
		shrunk = append(shrunk, elems[idx+1:]...)
		doc[path.Section()][path.Field()] = shrunk
		return nil
	}
}

// elementsAt returns the array stored at the field of an element path.
func elementsAt(doc document.Sections, path Path) ([]any, error) {
	fields, ok := doc[path.Section()]
	if !ok {
		return nil, fmt.Errorf("%w: section %q", ErrPathNotFound, path.Section())
	}
	value, ok := fields[path.Field()]
	if !ok {
		return nil, fmt.Errorf("%w: field /%s/%s", ErrPathNotFound, path.Section(), path.Field())
	}
	elems, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: /%s/%s holds %T, not an array", ErrTypeMismatch, path.Section(), path.Field(), value)
	}
	return elems, nil
}

// valueFor checks that value fits the target of path and returns an owned
// copy of it.
func valueFor(path Path, value any) (any, error) {
	switch {
	case path.IsSection():
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: section %q needs an object, got %T", ErrTypeMismatch, path.Section(), value)
		}
		for name, v := range fields {
			if !document.IsValue(v) {
				return nil, fmt.Errorf("%w: field %q of section %q holds %T", ErrTypeMismatch, name, path.Section(), v)
			}
		}
		return core.Clone(fields), nil

	case path.IsField():
		if !document.IsValue(value) {
			return nil, fmt.Errorf("%w: %s needs a primitive or an array of primitives, got %T", ErrTypeMismatch, path, value)
		}
		return core.Clone(value), nil

	default:
		if !document.IsPrimitive(value) {
			return nil, fmt.Errorf("%w: %s needs a primitive, got %T", ErrTypeMismatch, path, value)
		}
		return value, nil
	}
}
