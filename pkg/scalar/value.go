package scalar

// Value is a handle to a node in an [Arena].
//
// Values are cheap to copy; copying a Value copies the handle, not the node.
// The zero value is not usable - create values with [New], [Arena.Leaf],
// [Add] or [Mul].
type Value struct {
	arena *Arena
	id    ID
}

// New creates a leaf node with the given value and label in a fresh arena.
// The gradient starts at zero and the node has no operator or operands.
func New(data float64, label string) Value {
	return NewArena().Leaf(data, label)
}

// Arena returns the arena holding the node.
func (v Value) Arena() *Arena { return v.arena }

// ID returns the node's position in its arena.
func (v Value) ID() ID { return v.id }

// Valid reports whether v refers to a node. The zero Value is not valid.
func (v Value) Valid() bool {
	return v.arena != nil && int(v.id) >= 0 && int(v.id) < v.arena.Len()
}

// Data returns the numeric result stored at the node.
func (v Value) Data() float64 { return v.arena.get(v.id).data }

// Grad returns the gradient annotation. It is zero unless a caller set it.
func (v Value) Grad() float64 { return v.arena.get(v.id).grad }

// SetGrad overwrites the gradient annotation. This works on any node,
// including operands reached through Left and Right.
func (v Value) SetGrad(g float64) {
	v.arena.update(v.id, func(n *node) { n.grad = g })
}

// Label returns the node's label and whether it has one.
func (v Value) Label() (string, bool) {
	n := v.arena.get(v.id)
	return n.label, n.hasLabel
}

// SetLabel names the node. An empty label is the same as ClearLabel.
func (v Value) SetLabel(label string) {
	v.arena.update(v.id, func(n *node) {
		n.label = label
		n.hasLabel = label != ""
	})
}

// ClearLabel removes the node's label. Operator results fall back to their
// operator symbol when formatted; leaves become malformed.
func (v Value) ClearLabel() {
	v.arena.update(v.id, func(n *node) {
		n.label = ""
		n.hasLabel = false
	})
}

// Kind reports whether the node is a leaf or an operator result.
func (v Value) Kind() Kind { return v.arena.get(v.id).kind }

// IsLeaf reports whether the node has no recorded history.
func (v Value) IsLeaf() bool { return v.Kind() == KindLeaf }

// Op returns the operator that produced the node, if any.
func (v Value) Op() (Op, bool) {
	n := v.arena.get(v.id)
	if n.kind != KindOp {
		return "", false
	}
	return n.op, true
}

// Left returns the left operand of an operator result.
// Leaves return the zero Value and false.
func (v Value) Left() (Value, bool) {
	n := v.arena.get(v.id)
	if n.kind != KindOp {
		return Value{}, false
	}
	return Value{arena: v.arena, id: n.left}, true
}

// Right returns the right operand of an operator result.
// Leaves return the zero Value and false.
func (v Value) Right() (Value, bool) {
	n := v.arena.get(v.id)
	if n.kind != KindOp {
		return Value{}, false
	}
	return Value{arena: v.arena, id: n.right}, true
}

// Shared marks the node as shared and returns v.
//
// Operators link shared operands by ID instead of copying them, so every
// expression built from a shared node refers to the same arena slot.
// Marking is permanent.
func (v Value) Shared() Value {
	v.arena.update(v.id, func(n *node) { n.shared = true })
	return v
}

// IsShared reports whether the node was marked with Shared.
func (v Value) IsShared() bool { return v.arena.get(v.id).shared }

// Same reports whether v and other refer to the same arena slot.
func (v Value) Same(other Value) bool {
	return v.arena == other.arena && v.id == other.id
}
