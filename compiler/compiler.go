// Package compiler stacks an ordered list of layers on a base document and
// produces the compiled document together with its conflict report.
package compiler

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brunoga/layerstack/conflict"
	"github.com/brunoga/layerstack/document"
	"github.com/brunoga/layerstack/internal/core"
	"github.com/brunoga/layerstack/internal/logging"
	"github.com/brunoga/layerstack/layer"
	"github.com/brunoga/layerstack/metrics"
)

// SkippedLayer records a candidate layer whose patch could not be applied.
// None of its operations reached the compiled document.
type SkippedLayer struct {
	LayerID   string `json:"layerId" yaml:"layerId"`
	LayerName string `json:"layerName" yaml:"layerName"`
	// Reason is Err as text, kept for serialized reports.
	Reason string `json:"reason" yaml:"reason"`
	Err    error  `json:"-" yaml:"-"`
}

// CompiledDocument is the result of a compilation. Every field is owned by
// the result: nothing in it aliases the inputs of Compile.
type CompiledDocument struct {
	BaseDocument  *document.BaseDocument `json:"baseDocument" yaml:"baseDocument"`
	AppliedLayers []layer.Layer          `json:"appliedLayers" yaml:"appliedLayers"`
	FinalData     document.Sections      `json:"finalData" yaml:"finalData"`
	Conflicts     conflict.Map           `json:"conflicts" yaml:"conflicts"`
	Skipped       []SkippedLayer         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	CompiledAt    time.Time              `json:"compiledAt" yaml:"compiledAt"`
	LayerCount    int                    `json:"layerCount" yaml:"layerCount"`
	ConflictCount int                    `json:"conflictCount" yaml:"conflictCount"`
}

// Applied reports whether the layer with the given ID made it into the
// compiled document.
func (c *CompiledDocument) Applied(id string) bool {
	_, ok := layer.Find(c.AppliedLayers, id)
	return ok
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for per-layer diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every compilation in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Compiler) {
		c.metrics = m
	}
}

// WithClock overrides the clock used for CompiledAt and durations.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) {
		if now != nil {
			c.now = now
		}
	}
}

// Compiler compiles layer stacks. The zero value is not usable; create one
// with New. A Compiler holds no per-compilation state and may be shared
// between goroutines.
type Compiler struct {
	logger  logrus.FieldLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = New()

// Compile compiles with a default Compiler. See Compiler.Compile.
func Compile(base *document.BaseDocument, layers []layer.Layer, order []string) (*CompiledDocument, error) {
	return defaultCompiler.Compile(base, layers, order)
}

// Compile applies the enabled layers named by order on top of base.
//
// Each layer applies atomically: when any of its operations fails, the
// layer is reported in Skipped and compilation continues with the next
// one. Conflicts are computed over every enabled layer named by order,
// including skipped ones.
//
// The only error returned is a malformed base document, wrapping
// document.ErrMalformed.
func (c *Compiler) Compile(base *document.BaseDocument, layers []layer.Layer, order []string) (*CompiledDocument, error) {
	start := c.now()

	if base == nil {
		c.metrics.RecordRejected()
		return nil, fmt.Errorf("%w: nil document", document.ErrMalformed)
	}
	if err := document.Validate(base); err != nil {
		c.metrics.RecordRejected()
		return nil, err
	}

	candidates := layer.Candidates(layers, order)
	working := document.Sections(core.CloneSections(base.Sections))

	applied := make([]layer.Layer, 0, len(candidates))
	var skipped []SkippedLayer
	for _, l := range candidates {
		log := c.logger.WithFields(logrus.Fields{
			"layer_id":   l.ID,
			"layer_name": l.Name,
		})
		if err := l.Patch.Apply(&working); err != nil {
			log.WithError(err).Warn("skipping layer")
			skipErr := fmt.Errorf("layer %q: %w", l.ID, err)
			skipped = append(skipped, SkippedLayer{
				LayerID:   l.ID,
				LayerName: l.Name,
				Reason:    skipErr.Error(),
				Err:       skipErr,
			})
			continue
		}
		log.Debug("applied layer")
		applied = append(applied, l.Clone())
	}

	conflicts := conflict.Detect(candidates)

	baseCopy, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("copy base document: %w", err)
	}

	result := &CompiledDocument{
		BaseDocument:  baseCopy,
		AppliedLayers: applied,
		FinalData:     working,
		Conflicts:     conflicts,
		Skipped:       skipped,
		CompiledAt:    start,
		LayerCount:    len(applied),
		ConflictCount: len(conflicts),
	}

	c.logger.WithFields(logrus.Fields{
		"applied":   result.LayerCount,
		"skipped":   len(skipped),
		"conflicts": result.ConflictCount,
	}).Debug("compiled document")
	c.metrics.RecordCompile(result.LayerCount, len(skipped), result.ConflictCount, c.now().Sub(start))

	return result, nil
}
