package dag

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [DAG.AddEdge] when From == To.
	ErrSelfLoop = errors.New("edge endpoints must differ")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Graphs built by tracing scalar values never contain cycles; this
	// indicates a hand-built graph is not a valid DAG. Cycles are detected
	// using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Traced graphs store the numeric payload of data nodes here (data, grad,
// label, op) so exporters do not have to parse display strings.
// Metadata maps are never nil after AddNode.
type Metadata map[string]any

// Metadata keys set by the tracer.
const (
	MetaData  = "data"
	MetaGrad  = "grad"
	MetaLabel = "label"
	MetaOp    = "op"
)

// NodeKind distinguishes data nodes from the operator nodes a tracer inserts.
type NodeKind int

const (
	// NodeKindData is a value: a leaf input or a labeled operator result.
	// Renderers draw data nodes as records.
	NodeKindData NodeKind = iota
	// NodeKindOperator is a synthetic node standing for one application of
	// an operator. Its label is the bare operator symbol.
	NodeKindOperator
)

// String returns "data" or "operator".
func (k NodeKind) String() string {
	if k == NodeKindOperator {
		return "operator"
	}
	return "data"
}

// Node is a vertex of the graph. ID is the insertion index.
type Node struct {
	ID    int      // Insertion index, assigned by AddNode
	Label string   // Display string
	Kind  NodeKind // Data or operator
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// IsOperator reports whether the node stands for an operator application.
func (n Node) IsOperator() bool { return n.Kind == NodeKindOperator }

// Edge is a directed connection. Traced graphs point from producer to
// consumer: operand -> operator -> result.
type Edge struct {
	From int      // Source node ID
	To   int      // Target node ID
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// DAG is a directed acyclic graph whose nodes are addressed by insertion
// index. Node and edge order is insertion order, which renderers preserve.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    []*Node
	edges    []Edge
	outgoing map[int][]int // nodeID -> target IDs
	incoming map[int][]int // nodeID -> source IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		outgoing: make(map[int][]int),
		incoming: make(map[int][]int),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends a node and returns its ID. The ID field of n is ignored
// and overwritten. Labels need not be unique: tracing adds one node per
// reference, so identical display strings are common.
func (d *DAG) AddNode(n Node) int {
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	n.ID = len(d.nodes)
	node := n
	d.nodes = append(d.nodes, &node)
	return n.ID
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist,
// ErrUnknownTargetNode if the To node doesn't exist, or ErrSelfLoop.
// The edge's Meta field is automatically initialized to an empty map if nil.
//
// Multiple edges between the same nodes are allowed.
func (d *DAG) AddEdge(e Edge) error {
	if !d.has(e.From) {
		return ErrUnknownSourceNode
	}
	if !d.has(e.To) {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

func (d *DAG) has(id int) bool { return id >= 0 && id < len(d.nodes) }

// Nodes returns all nodes in insertion order. The returned slice is a copy,
// but it holds pointers to the actual node structs, so modifications to
// labels or metadata affect the graph.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.nodes) }

// Edges returns a copy of all edges in the graph.
// The order matches insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id int) (*Node, bool) {
	if !d.has(id) {
		return nil, false
	}
	return d.nodes[id], true
}

// Children returns the IDs of nodes this node has edges to (its consumers in
// a traced graph). The returned slice should not be modified.
func (d *DAG) Children(id int) []int { return d.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node (its inputs
// in a traced graph). The returned slice should not be modified.
func (d *DAG) Parents(id int) []int { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id int) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id int) int { return len(d.incoming[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
// In a traced graph these are the leaf inputs.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.nodes {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
// A traced graph has exactly one sink: the traced root.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.nodes {
		if len(d.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// CountKind returns the number of nodes of the given kind.
func (d *DAG) CountKind(k NodeKind) int {
	count := 0
	for _, n := range d.nodes {
		if n.Kind == k {
			count++
		}
	}
	return count
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle.
// Edge endpoints are checked by AddEdge, so they are always valid here.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id int)
	dfs = func(id int) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for id := range d.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// NodeLabels extracts the label of each node in a slice.
// Returns a new slice containing the labels in the same order as the input.
func NodeLabels(nodes []*Node) []string {
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = n.Label
	}
	return labels
}
