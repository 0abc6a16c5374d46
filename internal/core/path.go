package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDepth is the deepest pointer a settings document can address:
// section, field and an optional array element.
const MaxDepth = 3

// AppendSegment is the array-append marker accepted as the last segment of
// an element path.
const AppendSegment = "-"

// ErrInvalidPath is returned when a pointer string cannot be parsed.
var ErrInvalidPath = errors.New("invalid path")

// Path is a parsed pointer into a settings document. It is an ordered list
// of segments: section, field and optionally an array element.
//
// Segments are taken verbatim. There is no RFC 6901 style escaping, so a
// field name containing "/" or "~" cannot be addressed.
type Path []string

// ParsePath parses a slash-delimited pointer such as "/print/speed".
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPath, s)
	}

	segments := strings.Split(s[1:], "/")
	if len(segments) > MaxDepth {
		return nil, fmt.Errorf("%w: %q is deeper than %d segments", ErrInvalidPath, s, MaxDepth)
	}
	for i, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment at %d", ErrInvalidPath, s, i)
		}
		if segment == AppendSegment && i != MaxDepth-1 {
			return nil, fmt.Errorf("%w: %q uses %q outside an element position", ErrInvalidPath, s, AppendSegment)
		}
	}
	if len(segments) == MaxDepth {
		last := segments[MaxDepth-1]
		if last != AppendSegment {
			if idx, err := strconv.Atoi(last); err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: %q element segment %q is not an index", ErrInvalidPath, s, last)
			}
		}
	}

	return Path(segments), nil
}

// MustParsePath is like ParsePath but panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical pointer form of the path.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, segment := range p {
		b.WriteByte('/')
		b.WriteString(segment)
	}
	return b.String()
}

// Section returns the first segment.
func (p Path) Section() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Field returns the second segment, or "" for a section path.
func (p Path) Field() string {
	if len(p) < 2 {
		return ""
	}
	return p[1]
}

// Last returns the final segment.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// IsSection reports whether the path addresses a whole section.
func (p Path) IsSection() bool {
	return len(p) == 1
}

// IsField reports whether the path addresses a field inside a section.
func (p Path) IsField() bool {
	return len(p) == 2
}

// IsElement reports whether the path addresses an element of an array field.
func (p Path) IsElement() bool {
	return len(p) == MaxDepth
}

// Index returns the element index of an element path. Append paths return
// (-1, true).
func (p Path) Index() (int, bool) {
	if !p.IsElement() {
		return 0, false
	}
	if p.Last() == AppendSegment {
		return -1, true
	}
	idx, err := strconv.Atoi(p.Last())
	if err != nil {
		return 0, false
	}
	return idx, true
}

// Equals reports whether both paths have the same segments.
func (p Path) Equals(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Lookup walks sections along the path and returns the value found. It never
// fails: a missing segment or a value that cannot be traversed yields
// (nil, false).
func (p Path) Lookup(sections map[string]map[string]any) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	section, ok := sections[p[0]]
	if !ok {
		return nil, false
	}
	if p.IsSection() {
		return section, true
	}
	value, ok := section[p[1]]
	if !ok {
		return nil, false
	}
	if p.IsField() {
		return value, true
	}

	idx, ok := p.Index()
	if !ok || idx < 0 {
		return nil, false
	}
	elems, ok := value.([]any)
	if !ok || idx >= len(elems) {
		return nil, false
	}
	return elems[idx], true
}
