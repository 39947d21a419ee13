package pipeline

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/exprgraph/pkg/cache"
	"github.com/matzehuels/exprgraph/pkg/dag"
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	graphio "github.com/matzehuels/exprgraph/pkg/io"
	"github.com/matzehuels/exprgraph/pkg/observability"
	"github.com/matzehuels/exprgraph/pkg/render"
	"github.com/matzehuels/exprgraph/pkg/render/nodelink"
)

// Rendered is the output of the render stage.
type Rendered struct {
	DOT       string
	Artifacts map[string][]byte
	CacheInfo CacheInfo
}

// layoutFormats need a Graphviz layout and are worth caching.
var layoutFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// Render renders g in every requested format and reports which artifacts
// came from the cache. Cache keys combine the DOT fingerprint with the format.
func (r *Runner) Render(ctx context.Context, g *dag.DAG, opts Options) (out *Rendered, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Trace()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	dot := nodelink.ToDOT(g, nodelink.Options{RankDir: opts.RankDir})
	fingerprint := nodelink.Fingerprint(dot)
	out = &Rendered{DOT: dot, Artifacts: make(map[string][]byte, len(opts.Formats))}

	for _, format := range opts.Formats {
		if !layoutFormats[format] {
			data, err := renderFormat(ctx, g, dot, format, opts)
			if err != nil {
				return nil, err
			}
			out.Artifacts[format] = data
			continue
		}

		key := cache.ArtifactKey(fingerprint, cacheFormat(format, opts))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, format)
				r.logger(opts).Debug("artifact cache hit", "format", format)
				out.Artifacts[format] = data
				out.CacheInfo.Hits = append(out.CacheInfo.Hits, format)
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, format)

		data, err := renderFormat(ctx, g, dot, format, opts)
		if err != nil {
			return nil, err
		}
		out.Artifacts[format] = data
		out.CacheInfo.Misses = append(out.CacheInfo.Misses, format)

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.logger(opts).Warn("failed to cache artifact", "format", format, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, format, len(data))
		}
	}

	return out, nil
}

// cacheFormat distinguishes scaled PNGs from direct ones in cache keys.
func cacheFormat(format string, opts Options) string {
	if format == FormatPNG && opts.scaled() {
		return format + "@" + strconv.FormatFloat(opts.Scale, 'f', 2, 64)
	}
	return format
}

func renderFormat(ctx context.Context, g *dag.DAG, dot, format string, opts Options) ([]byte, error) {
	var data []byte
	var err error

	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		if !opts.scaled() {
			data, err = nodelink.RenderPNG(ctx, dot)
			break
		}
		var svg []byte
		if svg, err = nodelink.RenderSVG(ctx, dot); err == nil {
			data, err = render.ToPNG(ctx, svg, opts.Scale)
		}
	case FormatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case FormatJSON:
		var buf bytes.Buffer
		err = graphio.WriteJSON(g, &buf)
		data = buf.Bytes()
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}

	if err != nil {
		if apperrors.GetCode(err) != "" {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return data, nil
}
