// Package scalar provides scalar values that record how they were computed.
//
// # Overview
//
// Every [Value] carries its own derivation history: the operator that
// produced it and the operand values it was produced from. Building an
// expression therefore also builds a tree that can later be traced into an
// explicit graph (see the trace package) and rendered as a diagram.
//
// # Arenas
//
// Nodes are stored in an [Arena], a flat slice of node records addressed by
// stable [ID]s. A [Value] is a small handle (arena pointer plus ID), so it can
// be passed around by value. Operand links are IDs, never embedded structs.
//
// [New] creates a leaf in a fresh arena, which is convenient for small
// expressions. Use [NewArena] and [Arena.Leaf] when building larger
// expressions or when nodes must be shared.
//
// # Copy Semantics
//
// [Add] and [Mul] deep-copy both operand histories into new arena slots owned
// by the result. The values passed in stay independent: relabeling or
// setting the gradient on them afterwards does not change the result's
// history, and reusing one value in two places yields two distinct subtrees.
//
// To reuse one node in several places, mark it with [Value.Shared] before
// applying operators. Shared nodes are linked by ID instead of copied, so a
// gradient set through one alias is visible through every other alias.
// Shared nodes cannot cross arenas.
//
// # Node Kinds
//
// A node is either a leaf ([KindLeaf]: a labeled input) or an operator result
// ([KindOp]: produced by + or *). The kind is fixed at construction time.
// Operator results start unlabeled; callers typically name them afterwards:
//
//	a := scalar.New(2.0, "a")
//	b := scalar.New(-3.0, "b")
//	e := a.Mul(b)
//	e.SetLabel("e")
//
// # Concurrency
//
// Arena access is guarded by a read/write mutex, so handles to shared nodes
// may be read and mutated from several goroutines.
package scalar
