package layerstack

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brunoga/layerstack/compiler"
	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/history"
	"github.com/brunoga/layerstack/internal/logging"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/metrics"
	"github.com/brunoga/layerstack/patch"
	"github.com/brunoga/layerstack/preview"
	"github.com/brunoga/layerstack/project"
)

var (
	// ErrUnknownLayer is returned for layer IDs that are not in the stack.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrDuplicateLayer is returned when a layer ID is used twice.
	ErrDuplicateLayer = errors.New("duplicate layer")

	// ErrUnknownBase is returned for base document IDs missing from the
	// catalog.
	ErrUnknownBase = errors.New("unknown base document")
)

type options struct {
	logger      logrus.FieldLogger
	metrics     *metrics.Collector
	historySize int
	table       preview.Table
}

// Option configures a Stack.
type Option func(*options)

// WithLogger sets the logger for the stack and its compiler.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records compilations and history size in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithHistorySize bounds the undo history. Non-positive sizes use
// history.DefaultMaxSize.
func WithHistorySize(n int) Option {
	return func(o *options) {
		o.historySize = n
	}
}

// WithPreviewTable sets the labels and units used in previews.
func WithPreviewTable(t preview.Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// Stack is an editable layer stack over a catalog of base documents. It is
// safe for concurrent use.
type Stack struct {
	mu sync.Mutex

	catalog  *document.Catalog
	compiler *compiler.Compiler
	previews *preview.Generator
	history  *history.Manager
	logger   logrus.FieldLogger
	metrics  *metrics.Collector

	base     *document.BaseDocument
	layers   []layer.Layer
	order    []string
	compiled *compiler.CompiledDocument
}

// New creates an empty stack on the base document baseID.
func New(catalog *document.Catalog, baseID string, opts ...Option) (*Stack, error) {
	return newStack(catalog, baseID, nil, nil, opts)
}

// FromProject creates a stack holding the layers and order of p. Order
// entries that name no layer are dropped.
func FromProject(catalog *document.Catalog, p *project.Project, opts ...Option) (*Stack, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	order, _ := layer.NormalizeOrder(p.Layers, p.Order)
	return newStack(catalog, p.BaseDocumentID, p.Layers, order, opts)
}

func newStack(catalog *document.Catalog, baseID string, layers []layer.Layer, order []string, opts []Option) (*Stack, error) {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	s := &Stack{
		catalog:  catalog,
		compiler: compiler.New(compiler.WithLogger(o.logger), compiler.WithMetrics(o.metrics)),
		previews: preview.New(o.table),
		logger:   o.logger,
		metrics:  o.metrics,
	}

	base, err := s.lookupBase(baseID)
	if err != nil {
		return nil, err
	}
	layers = s.previews.UpdateAll(layers, base)
	if err := s.commit(base, layers, slices.Clone(order)); err != nil {
		return nil, err
	}
	s.history = history.New(o.historySize, s.snapshotLocked())
	s.metrics.SetHistorySize(s.history.Len())
	return s, nil
}

func (s *Stack) lookupBase(id string) (*document.BaseDocument, error) {
	base, err := s.catalog.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownBase, err)
	}
	return base, nil
}

// commit compiles the given state and makes it current. The state is left
// unchanged when compilation fails.
func (s *Stack) commit(base *document.BaseDocument, layers []layer.Layer, order []string) error {
	compiled, err := s.compiler.Compile(base, layers, order)
	if err != nil {
		return err
	}
	s.base = base
	s.layers = layers
	s.order = order
	s.compiled = compiled
	return nil
}

// record commits a new state and pushes it to the history.
func (s *Stack) record(base *document.BaseDocument, layers []layer.Layer, order []string) error {
	if err := s.commit(base, layers, order); err != nil {
		return err
	}
	if s.history.Push(s.snapshotLocked()) {
		s.metrics.SetHistorySize(s.history.Len())
	}
	return nil
}

// SelectBase switches to another base document. Every preview is refreshed.
func (s *Stack) SelectBase(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.lookupBase(id)
	if err != nil {
		return err
	}
	s.logger.WithField("base_id", id).Debug("selecting base document")
	return s.record(base, s.previews.UpdateAll(s.layers, base), s.order)
}

// AddLayer validates l and appends it to the layers and to the end of the
// order.
func (s *Stack) AddLayer(l layer.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := layer.Validate(l); err != nil {
		return err
	}
	if _, ok := layer.Find(s.layers, l.ID); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateLayer, l.ID)
	}

	l = l.Clone()
	l.Preview = s.previews.Generate(l, s.base.Sections)
	layers := append(slices.Clone(s.layers), l)
	order := append(slices.Clone(s.order), l.ID)
	return s.record(s.base, layers, order)
}

// UpdateLayer replaces the layer with the same ID as l. Its position in the
// order is kept.
func (s *Stack) UpdateLayer(l layer.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := layer.Validate(l); err != nil {
		return err
	}
	i := slices.IndexFunc(s.layers, func(x layer.Layer) bool { return x.ID == l.ID })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, l.ID)
	}

	l = l.Clone()
	l.Preview = s.previews.Generate(l, s.base.Sections)
	layers := slices.Clone(s.layers)
	layers[i] = l
	return s.record(s.base, layers, s.order)
}

// RemoveLayer deletes a layer and its order entry.
func (s *Stack) RemoveLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.layers, func(x layer.Layer) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}
	layers := slices.Delete(slices.Clone(s.layers), i, i+1)
	order := slices.DeleteFunc(slices.Clone(s.order), func(x string) bool { return x == id })
	return s.record(s.base, layers, order)
}

// SetEnabled toggles a layer. Disabled layers stay in the order but are
// not compiled.
func (s *Stack) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.layers, func(x layer.Layer) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}
	layers := slices.Clone(s.layers)
	layers[i] = layers[i].WithEnabled(enabled)
	return s.record(s.base, layers, s.order)
}

// Reorder replaces the order. Every ID must name a layer and appear once.
// Layers left out of the order are kept but not compiled.
func (s *Stack) Reorder(order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := layer.Find(s.layers, id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: %q appears twice in the order", ErrDuplicateLayer, id)
		}
		seen[id] = true
	}
	return s.record(s.base, s.layers, slices.Clone(order))
}

// LayerFromEdits returns a new layer whose patch turns the current compiled
// settings into edited. The layer is not added to the stack.
func (s *Stack) LayerFromEdits(name string, edited document.Sections, opts ...layer.Option) (layer.Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := patch.Diff(s.compiled.FinalData, edited)
	if len(p) == 0 {
		return layer.Layer{}, fmt.Errorf("no changes to capture: %w", patch.ErrEmptyPatch)
	}
	l := layer.New(name, p, opts...)
	l.Preview = s.previews.Generate(l, s.base.Sections)
	return l, nil
}

// Undo restores the previous state. It returns false when there is nothing
// to undo.
func (s *Stack) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nav, ok := s.history.Undo()
	if !ok {
		return false, nil
	}
	return true, s.restore(nav)
}

// Redo restores the state undone last. It returns false when there is
// nothing to redo.
func (s *Stack) Redo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nav, ok := s.history.Redo()
	if !ok {
		return false, nil
	}
	return true, s.restore(nav)
}

// restore makes a navigated entry current. Navigations are never pushed.
func (s *Stack) restore(nav history.Navigation) error {
	base, err := s.lookupBase(nav.Entry.BaseDocumentID)
	if err != nil {
		return err
	}
	layers := nav.Entry.Layers
	if base.ID != s.base.ID {
		layers = s.previews.UpdateAll(layers, base)
	}
	s.logger.WithFields(logrus.Fields{
		"direction": nav.Direction.String(),
		"base_id":   base.ID,
		"layers":    len(layers),
	}).Debug("restoring history entry")
	return s.commit(base, layers, nav.Entry.Order)
}

// Compiled returns the current compilation. The result is shared and must
// be treated as read-only.
func (s *Stack) Compiled() *compiler.CompiledDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compiled
}

// Layers returns a copy of the layers, previews included.
func (s *Stack) Layers() []layer.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]layer.Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Clone()
	}
	return out
}

// Order returns a copy of the layer order.
func (s *Stack) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// BaseDocument returns the selected base document.
func (s *Stack) BaseDocument() *document.BaseDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// CanUndo reports whether Undo would restore a state.
func (s *Stack) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would restore a state.
func (s *Stack) CanRedo() bool {
	return s.history.CanRedo()
}

// Snapshot returns the current undoable state.
func (s *Stack) Snapshot() history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Stack) snapshotLocked() history.Entry {
	return history.Entry{
		BaseDocumentID: s.base.ID,
		Layers:         s.layers,
		Order:          s.order,
	}.Clone()
}

// Project returns the stack in its persisted form.
func (s *Stack) Project() *project.Project {
	e := s.Snapshot()
	return &project.Project{
		Version:        project.CurrentVersion,
		BaseDocumentID: e.BaseDocumentID,
		Layers:         e.Layers,
		Order:          e.Order,
	}
}
