package history

import (
	"fmt"
	"sync"

	"github.com/mitchellh/copystructure"

	"github.com/brunoga/layerstack/internal/core"
	"github.com/brunoga/layerstack/layer"
)

// DefaultMaxSize is used when New is given a non-positive size.
const DefaultMaxSize = 50

// Entry is a snapshot of the undoable state of a layer stack.
type Entry struct {
	BaseDocumentID string        `json:"baseDocumentId" yaml:"baseDocumentId"`
	Layers         []layer.Layer `json:"layers" yaml:"layers"`
	Order          []string      `json:"order" yaml:"order"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	if dup, err := copystructure.Copy(e); err == nil {
		if out, ok := dup.(Entry); ok {
			return out
		}
	}
	return core.Clone(e)
}

// Equal reports whether two entries describe the same state.
func (e Entry) Equal(other Entry) bool {
	return core.Equal(e, other)
}

// Direction tells which way a Navigation moved.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "undo"
	case Forward:
		return "redo"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Navigation is returned by Undo and Redo. Entry is the state to restore.
// Restoring it must not be recorded as a new edit.
type Navigation struct {
	Entry     Entry
	Direction Direction
}

// Manager is a bounded, linear undo/redo buffer. It is safe for concurrent
// use.
type Manager struct {
	mu      sync.Mutex
	entries []Entry
	cursor  int
	maxSize int
}

// New creates a Manager holding initial as its only entry.
func New(maxSize int, initial Entry) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Manager{
		entries: []Entry{initial.Clone()},
		maxSize: maxSize,
	}
}

// Push records e as the newest state. Entries after the cursor are
// discarded first. Push returns false, and records nothing, when e equals
// the entry at the cursor.
func (m *Manager) Push(e Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor < len(m.entries) && m.entries[m.cursor].Equal(e) {
		return false
	}

	m.entries = append(m.entries[:m.cursor+1], e.Clone())
	if len(m.entries) > m.maxSize {
		excess := len(m.entries) - m.maxSize
		m.entries = append([]Entry(nil), m.entries[excess:]...)
	}
	m.cursor = len(m.entries) - 1
	return true
}

// Undo moves the cursor one entry back and returns the state to restore.
// It returns false when there is nothing to undo.
func (m *Manager) Undo() (Navigation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor == 0 {
		return Navigation{}, false
	}
	m.cursor--
	return Navigation{Entry: m.entries[m.cursor].Clone(), Direction: Backward}, true
}

// Redo moves the cursor one entry forward and returns the state to restore.
// It returns false when there is nothing to redo.
func (m *Manager) Redo() (Navigation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= len(m.entries)-1 {
		return Navigation{}, false
	}
	m.cursor++
	return Navigation{Entry: m.entries[m.cursor].Clone(), Direction: Forward}, true
}

// Reset discards the history and starts again from e.
func (m *Manager) Reset(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = []Entry{e.Clone()}
	m.cursor = 0
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor < len(m.entries)-1
}

// Len returns the number of entries in the buffer.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Cursor returns the index of the current entry.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Current returns a copy of the entry at the cursor.
func (m *Manager) Current() Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.cursor].Clone()
}

// MaxSize returns the buffer capacity.
func (m *Manager) MaxSize() int {
	return m.maxSize
}
