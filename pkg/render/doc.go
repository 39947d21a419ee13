// Package render turns traced expression graphs into visual outputs.
//
// The [nodelink] subpackage produces the Graphviz DOT text and lays it out
// as SVG or PNG. This package holds the format conversions shared by
// renderers:
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (librsvg); [Available]
// reports whether it is installed.
//
// [nodelink]: github.com/matzehuels/exprgraph/pkg/render/nodelink
package render
