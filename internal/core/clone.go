package core

import (
	clone "github.com/huandu/go-clone"
)

// Clone returns a deep copy of src. Maps, slices and values stored behind
// interfaces are all duplicated, so the copy shares no mutable state with
// the source.
func Clone[T any](src T) T {
	if dst, ok := clone.Clone(src).(T); ok {
		return dst
	}
	var zero T
	return zero
}

// CloneSections deep copies a section → field → value document.
func CloneSections(src map[string]map[string]any) map[string]map[string]any {
	if src == nil {
		return make(map[string]map[string]any)
	}
	return Clone(src)
}
