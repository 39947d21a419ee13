package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/minio/highwayhash"

	"github.com/matzehuels/exprgraph/pkg/dag"
	"github.com/matzehuels/exprgraph/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// RankDir, when set, adds a rankdir attribute ("LR", "TB", ...) to the
	// graph. Leave it empty to get the plain envelope.
	RankDir string
}

const indent = "    "

// ToDOT converts a traced graph to Graphviz DOT text.
//
// Nodes are emitted before edges, both in insertion order:
//
//	digraph {
//	    0 [ label = "{ L| data: -8.0000 }" shape=record]
//	    1 [ label = "*" ]
//	    1 -> 0 [ ]
//	}
//
// Data nodes get shape=record; operator nodes carry no style. The layout is
// byte-stable and tests compare it literally.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph {\n")
	if opts.RankDir != "" {
		fmt.Fprintf(&buf, "%srankdir = %q\n", indent, opts.RankDir)
	}

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "%s%d [ label = \"%s\" %s]\n", indent, n.ID, escape(n.Label), fmtStyle(*n))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "%s%d -> %d [ ]\n", indent, e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtStyle(n dag.Node) string {
	if n.IsOperator() {
		return ""
	}
	return "shape=record"
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escape(s string) string { return escaper.Replace(s) }

// hashKey seeds Fingerprint; it is fixed so digests are comparable across runs.
var hashKey = []byte("exprgraph-nodelink-fingerprint-0")

// Fingerprint returns a 64-bit HighwayHash of the DOT text as 16 hex digits.
// Identical expressions traced in the same order share a fingerprint.
func Fingerprint(dot string) string {
	return fmt.Sprintf("%016x", highwayhash.Sum64([]byte(dot), hashKey))
}

// RenderSVG lays out DOT text with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out DOT text with Graphviz and returns PNG bytes.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing starts at the
// origin and carries explicit width/height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
