// Package dag provides the directed acyclic graph produced by tracing a
// scalar expression.
//
// # Overview
//
// Nodes are addressed by their insertion index, and both nodes and edges
// keep insertion order. That order is part of the rendering contract: the
// nodelink renderer emits nodes and edges exactly as they were added, so the
// same construction sequence always yields byte-identical output.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode] (which returns
// the new node's ID), and connect them with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	op := g.AddNode(dag.Node{Label: "+", Kind: dag.NodeKindOperator})
//	out := g.AddNode(dag.Node{Label: "{ d| data: 4.0000 }"})
//	g.AddEdge(dag.Edge{From: op, To: out})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. Use [DAG.Validate] to check that a hand-built graph is
// acyclic; traced graphs always are.
//
// # Node Kinds
//
//   - [NodeKindData]: a value (leaf input or operator result), drawn as a record
//   - [NodeKindOperator]: a synthetic node for one operator application
//
// The kind is set explicitly when the node is added. Nothing in this module
// infers it from the label text.
//
// # Metadata
//
// Both nodes and the graph itself support arbitrary metadata via [Metadata]
// maps. The tracer stores each data node's numeric payload under [MetaData],
// [MetaGrad] and [MetaLabel], and each operator node's symbol under [MetaOp].
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package dag
