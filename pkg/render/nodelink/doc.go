// Package nodelink renders traced expression graphs as node-link diagrams.
//
// # Overview
//
// [ToDOT] serializes a graph from the trace package into Graphviz DOT text.
// The text is a committed output format: node declarations come first,
// then edges, both in insertion order, indented by four spaces:
//
//	digraph {
//	    0 [ label = "{ L| data: -8.0000 }" shape=record]
//	    1 [ label = "*" ]
//	    2 [ label = "{ d| data: 4.0000 }" shape=record]
//	    1 -> 0 [ ]
//	    2 -> 1 [ ]
//	}
//
// Data nodes are drawn as records (the "{ label| data: ... }" string is
// Graphviz record syntax); operator nodes are bare symbols. The style comes
// from the node kind recorded by the tracer, not from the label text.
//
// # Rendering
//
// The DOT text can be laid out in-process:
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//	pdf, err := nodelink.RenderPDF(ctx, dot) // needs rsvg-convert
//
// [Fingerprint] hashes DOT text so callers can compare renderings cheaply.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for SVG and PNG output
// and [github.com/minio/highwayhash] for fingerprints. PDF conversion
// requires librsvg (rsvg-convert).
package nodelink
