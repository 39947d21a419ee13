package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/exprgraph/pkg/cache"
	"github.com/matzehuels/exprgraph/pkg/dag"
	"github.com/matzehuels/exprgraph/pkg/exprfile"
	"github.com/matzehuels/exprgraph/pkg/gradcheck"
	"github.com/matzehuels/exprgraph/pkg/observability"
	"github.com/matzehuels/exprgraph/pkg/render/nodelink"
	"github.com/matzehuels/exprgraph/pkg/scalar"
	"github.com/matzehuels/exprgraph/pkg/trace"
)

// Runner executes pipeline stages with artifact caching and logs a summary
// of each.
//
// The Runner holds no pipeline results, so multiple goroutines can share
// one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and logger.
// If c is nil, a NullCache is used (caching disabled).
// If logger is nil, log.Default() is used.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete build → trace → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := r.logger(opts)
	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	root, partials, err := r.Build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Root = root
	result.Partials = partials
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Depth = scalar.Depth(root)

	logger.Info("built expression",
		"root", rootLabel(root),
		"value", root.Data(),
		"depth", result.Stats.Depth,
		"duration", result.Stats.BuildTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Trace
	traceStart := time.Now()
	g, err := r.Trace(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	result.Graph = g
	result.Stats.TraceTime = time.Since(traceStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.OperatorCount = g.CountKind(dag.NodeKindOperator)

	logger.Info("traced graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"operators", result.Stats.OperatorCount,
		"duration", result.Stats.TraceTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	rendered, err := r.Render(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = rendered.Artifacts
	result.DOT = rendered.DOT
	result.Fingerprint = nodelink.Fingerprint(rendered.DOT)
	result.CacheInfo = rendered.CacheInfo
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"fingerprint", result.Fingerprint,
		"cached", result.CacheInfo.Hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build loads the document (unless one is supplied), evaluates it and, when
// requested, annotates leaves with finite-difference estimates.
func (r *Runner) Build(ctx context.Context, opts Options) (root scalar.Value, partials []gradcheck.Partial, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return scalar.Value{}, nil, err
	}

	source := opts.Source
	if source == "" {
		source = "<document>"
	}
	hooks := observability.Trace()
	hooks.OnBuildStart(ctx, source)
	start := time.Now()
	defer func() {
		hooks.OnBuildComplete(ctx, source, rootLabel(root), time.Since(start), err)
	}()

	doc := opts.Document
	if doc == nil {
		doc, err = exprfile.Load(ctx, opts.Source)
		if err != nil {
			return scalar.Value{}, nil, err
		}
		r.logger(opts).Debug("loaded document", "source", opts.Source, "leaves", len(doc.Leaves), "ops", len(doc.Ops))
	}

	inputs := doc.Inputs()
	for name, v := range opts.Inputs {
		inputs[name] = v
	}

	root, err = doc.Build(inputs)
	if err != nil {
		return scalar.Value{}, nil, err
	}

	if opts.Estimate {
		partials, err = gradcheck.EstimateAll(doc.Build, inputs, opts.Step)
		if err != nil {
			return scalar.Value{}, nil, fmt.Errorf("estimate gradients: %w", err)
		}
		n := gradcheck.Annotate(root, partials)
		r.logger(opts).Debug("annotated leaves", "count", n, "step", opts.Step)
	}
	return root, partials, nil
}

// Trace expands root into a graph.
func (r *Runner) Trace(ctx context.Context, root scalar.Value, opts Options) (g *dag.DAG, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	label := rootLabel(root)
	hooks := observability.Trace()
	hooks.OnTraceStart(ctx, label)
	start := time.Now()
	defer func() {
		n := 0
		if g != nil {
			n = g.NodeCount()
		}
		hooks.OnTraceComplete(ctx, label, n, time.Since(start), err)
	}()

	return trace.Trace(root, trace.Options{Format: opts.FormatOptions()})
}

// logger returns opts.Logger when set, otherwise the runner's logger.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func rootLabel(v scalar.Value) string {
	if !v.Valid() {
		return ""
	}
	label, _ := v.Label()
	return label
}
