// Package reconcile joins the independently keyed country sources into one record per M49 code.
//
// Every component here absorbs malformed rows locally: a row that cannot be used is skipped,
// reported to the ports.SkipObserver and logged at debug level. Nothing in this package returns an
// error for bad data except the crosswalk, whose header must be readable.
package reconcile

import (
	"log/slog"

	"PopulationSnapshot/internal/ports"
)

// Component names reported with skipped rows.
const (
	ComponentCrosswalk  = "crosswalk"
	ComponentRegistry   = "registry"
	ComponentPopulation = "population"
	ComponentCapitals   = "capitals"
	ComponentLeaders    = "leaders"
	ComponentAssembler  = "assembler"
)

// Options configures an Engine.
type Options struct {
	Logger   *slog.Logger
	Observer ports.SkipObserver
	Images   ImagePolicy
}

// Engine runs the reconciliation components.
type Engine struct {
	logger   *slog.Logger
	observer ports.SkipObserver
	images   ImagePolicy
}

// New builds an engine; a zero ImagePolicy falls back to DefaultImagePolicy.
func New(opts Options) *Engine {
	images := opts.Images
	if images.Width <= 0 {
		images.Width = DefaultImageWidth
	}
	if len(images.AllowedHosts) == 0 {
		images.AllowedHosts = DefaultImagePolicy().AllowedHosts
	}
	return &Engine{
		logger:   opts.Logger,
		observer: opts.Observer,
		images:   images,
	}
}

func (e *Engine) skip(component, reason string, args ...any) {
	if e.observer != nil {
		e.observer.RowSkipped(component, reason)
	}
	if e.logger != nil {
		e.logger.Debug("row skipped", append([]any{"component", component, "reason", reason}, args...)...)
	}
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
