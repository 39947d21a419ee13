package scalar

// Walk visits v and its history depth-first in pre-order, left operand
// before right. depth is 0 for v. Returning false from fn stops the walk.
//
// Nodes reachable along several paths (shared nodes) are visited once per
// path, matching the way the trace package expands them.
func Walk(v Value, fn func(v Value, depth int) bool) {
	walk(v, 0, fn)
}

func walk(v Value, depth int, fn func(Value, int) bool) bool {
	if !fn(v, depth) {
		return false
	}
	left, ok := v.Left()
	if !ok {
		return true
	}
	if !walk(left, depth+1, fn) {
		return false
	}
	right, _ := v.Right()
	return walk(right, depth+1, fn)
}

// Leaves returns the leaves reachable from v in walk order.
func Leaves(v Value) []Value {
	var out []Value
	Walk(v, func(x Value, _ int) bool {
		if x.IsLeaf() {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Find returns every node reachable from v whose label equals label,
// in walk order.
func Find(v Value, label string) []Value {
	var out []Value
	Walk(v, func(x Value, _ int) bool {
		if l, ok := x.Label(); ok && l == label {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Depth returns the length of the longest path from v to a leaf.
func Depth(v Value) int {
	deepest := 0
	Walk(v, func(_ Value, d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// Size returns the number of nodes reachable from v, counting shared nodes
// once per path.
func Size(v Value) int {
	n := 0
	Walk(v, func(Value, int) bool {
		n++
		return true
	})
	return n
}
