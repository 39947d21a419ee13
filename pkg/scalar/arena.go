package scalar

import (
	"fmt"
	"sync"
)

// ID addresses a node inside its [Arena]. IDs are stable for the lifetime of
// the arena; nodes are never removed.
type ID int

// Kind distinguishes input leaves from operator results.
type Kind int

const (
	// KindLeaf is an input value with no recorded history. Leaves carry a label.
	KindLeaf Kind = iota
	// KindOp is the result of applying an [Op] to two operands.
	KindOp
)

// String returns "leaf" or "op".
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindOp:
		return "op"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type node struct {
	data     float64
	grad     float64
	label    string
	hasLabel bool
	kind     Kind
	op       Op
	left     ID
	right    ID
	shared   bool
}

// Arena owns the nodes of one or more expressions.
//
// The zero value is not usable - use NewArena.
type Arena struct {
	mu    sync.RWMutex
	nodes []node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of nodes stored in the arena, including every copy
// made by operators.
func (ar *Arena) Len() int {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return len(ar.nodes)
}

// Leaf adds an input node with the given value and label.
// An empty label leaves the node unlabeled, which makes it malformed: it can
// be built but not formatted until a label is assigned.
func (ar *Arena) Leaf(data float64, label string) Value {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	id := ar.push(node{data: data, label: label, hasLabel: label != "", kind: KindLeaf})
	return Value{arena: ar, id: id}
}

// push appends n and returns its ID. Callers hold the write lock.
func (ar *Arena) push(n node) ID {
	ar.nodes = append(ar.nodes, n)
	return ID(len(ar.nodes) - 1)
}

func (ar *Arena) get(id ID) node {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return ar.nodes[id]
}

func (ar *Arena) update(id ID, fn func(n *node)) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	fn(&ar.nodes[id])
}

// detached is a copy of a subtree taken out of its arena. Operand links in
// nodes index into the same slice, except links to shared nodes, which keep
// their arena ID and are listed in external.
type detached struct {
	nodes    []node
	external map[int]bool // index -> node is a link to a shared arena node
}

// export copies the subtree rooted at id. Shared nodes below the root are not
// copied; they are recorded as external links so import can relink them.
func (ar *Arena) export(id ID) detached {
	ar.mu.RLock()
	defer ar.mu.RUnlock()

	d := detached{external: make(map[int]bool)}
	var walk func(id ID) int
	walk = func(id ID) int {
		n := ar.nodes[id]
		if n.kind == KindOp {
			n.left = ID(ar.linkOrCopy(&d, n.left, walk))
			n.right = ID(ar.linkOrCopy(&d, n.right, walk))
		}
		n.shared = false
		d.nodes = append(d.nodes, n)
		return len(d.nodes) - 1
	}
	walk(id)
	return d
}

func (ar *Arena) linkOrCopy(d *detached, id ID, walk func(ID) int) int {
	if !ar.nodes[id].shared {
		return walk(id)
	}
	d.nodes = append(d.nodes, node{left: id})
	idx := len(d.nodes) - 1
	d.external[idx] = true
	return idx
}

// hasExternal reports whether the detached subtree links to shared nodes.
func (d detached) hasExternal() bool { return len(d.external) > 0 }

// adopt appends a detached subtree and returns the ID of its root, which is
// always the last element. External links resolve to the shared node's ID.
func (ar *Arena) adopt(d detached) ID {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	ids := make([]ID, len(d.nodes))
	for i, n := range d.nodes {
		if d.external[i] {
			ids[i] = n.left
			continue
		}
		if n.kind == KindOp {
			n.left = ids[n.left]
			n.right = ids[n.right]
		}
		ids[i] = ar.push(n)
	}
	return ids[len(ids)-1]
}
