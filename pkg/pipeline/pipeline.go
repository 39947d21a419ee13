// Package pipeline runs the build, trace and render stages for the CLI.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Load an expression document and evaluate it into a scalar
//     value, optionally annotating leaves with finite-difference gradients
//  2. Trace: Expand the value's history into a graph
//  3. Render: Generate output in the requested formats (DOT, SVG, PNG, PDF, JSON)
//
// Each stage can be run on its own or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "examples/loss.toml",
//	    Formats: []string{"dot", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dot := result.Artifacts["dot"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/exprgraph/pkg/dag"
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/exprfile"
	"github.com/matzehuels/exprgraph/pkg/gradcheck"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidRankDirs is the set of accepted Graphviz rank directions. The empty
// string keeps Graphviz's default (top to bottom).
var ValidRankDirs = map[string]bool{
	"":   true,
	"TB": true,
	"LR": true,
	"BT": true,
	"RL": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Build options
	Source   string             `json:"source,omitempty"` // Document path or afs URL
	Inputs   map[string]float64 `json:"inputs,omitempty"` // Leaf value overrides
	Estimate bool               `json:"estimate,omitempty"`
	Step     float64            `json:"step,omitempty"` // Finite-difference step

	// Trace options
	ShowGrad  bool `json:"show_grad,omitempty"`
	Precision int  `json:"precision,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	RankDir string   `json:"rank_dir,omitempty"`
	Scale   float64  `json:"scale,omitempty"`   // PNG resolution multiplier; 0 or 1 renders PNG directly
	Refresh bool     `json:"refresh,omitempty"` // Re-render even when cached

	// Runtime options (not serialized)
	Document *exprfile.Document `json:"-"` // Used instead of Source when set
	Logger   *log.Logger        `json:"-"` // Overrides Runner.Logger for this run

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the evaluated expression.
	Root scalar.Value

	// Partials holds finite-difference estimates when Options.Estimate is set.
	Partials []gradcheck.Partial

	// Graph is the traced graph.
	Graph *dag.DAG

	// DOT is the rendered DOT text, always produced.
	DOT string

	// Fingerprint is the HighwayHash of DOT.
	Fingerprint string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	OperatorCount int
	Depth         int
	BuildTime     time.Duration
	TraceTime     time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache use during rendering. Only formats that need a
// Graphviz layout (svg, png, pdf) are cached.
type CacheInfo struct {
	Hits   []string // Formats served from the cache
	Misses []string // Formats rendered and stored
}

// RenderHit reports whether every cacheable format came from the cache.
func (c CacheInfo) RenderHit() bool {
	return len(c.Hits) > 0 && len(c.Misses) == 0
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRankDir checks that a rank direction is valid.
func ValidateRankDir(dir string) error {
	if !ValidRankDirs[dir] {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid rankdir: %q (must be one of: TB, LR, BT, RL)", dir)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" && o.Document == nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "source or document is required")
	}
	for name := range o.Inputs {
		if err := apperrors.ValidateInputName(name); err != nil {
			return err
		}
	}
	if o.Precision < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "precision must not be negative")
	}
	if o.Precision == 0 {
		o.Precision = scalar.DefaultPrecision
	}
	if o.Step <= 0 {
		o.Step = gradcheck.DefaultStep
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateRankDir(o.RankDir); err != nil {
		return err
	}
	if o.Scale < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "scale must not be negative")
	}
	o.validated = true
	return nil
}

// scaled reports whether PNG output goes through a scaled SVG conversion.
func (o *Options) scaled() bool {
	return o.Scale > 0 && o.Scale != 1
}

// FormatOptions returns the display options used for data nodes.
func (o *Options) FormatOptions() scalar.FormatOptions {
	return scalar.FormatOptions{ShowGrad: o.ShowGrad || o.Estimate, Precision: o.Precision}
}
