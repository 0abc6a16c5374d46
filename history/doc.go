// Package history records the edit history of a layer stack so it can be
// undone and redone.
//
// # Entries
//
// An Entry is a full snapshot of the undoable state: the selected base
// document, the layer set and the layer order. Entries are copied on the way
// in and on the way out, so nothing outside the Manager can change a
// recorded state.
//
// # Linear history
//
// The Manager keeps entries in a bounded buffer with a cursor pointing at
// the current state:
//
//	h := history.New(50, initial)
//	h.Push(next)         // records next, drops anything that could be redone
//	nav, ok := h.Undo()  // moves the cursor back
//	nav, ok = h.Redo()   // moves it forward again
//
// Pushing after an undo truncates the redo branch. When the buffer is full
// the oldest entry is evicted.
//
// # Navigation
//
// Undo and Redo return a Navigation. Restoring Navigation.Entry is a
// navigation, not an edit, and must not be pushed. A caller that pushes it
// anyway gets a no-op, because Push ignores an entry equal to the one at the
// cursor.
package history
