// Package trace flattens a scalar value's history into an explicit graph.
//
// # Algorithm
//
// [Trace] walks the operand tree depth-first in pre-order, left operand
// before right, and adds one graph node every time it reaches a value:
//
//  1. The root is added first with its display string.
//  2. For every operator result, a synthetic operator node (the bare symbol)
//     is added with an edge operator -> result.
//  3. Each operand is added with its display string and an edge
//     operand -> operator, then expanded recursively.
//
// Nothing is memoized. A value reachable along two paths (for example a
// node marked shared in the scalar package) appears twice. Edges point from
// producer to consumer so diagrams read as data flowing into each result.
//
// Because insertion order determines node IDs, and renderers emit nodes and
// edges in ID order, tracing the same expression always produces identical
// output.
//
// # Example
//
//	l := buildLoss() // L = (a*b + c) * f
//	g, err := trace.Trace(l, trace.Options{})
//	dot := nodelink.ToDOT(g, nodelink.Options{})
package trace
