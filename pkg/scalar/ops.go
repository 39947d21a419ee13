package scalar

import (
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
)

// Op is a binary operator symbol.
type Op string

const (
	// OpAdd is addition.
	OpAdd Op = "+"
	// OpMul is multiplication.
	OpMul Op = "*"
)

// Ops lists the supported operators in a stable order.
var Ops = []Op{OpAdd, OpMul}

// Valid reports whether o is a supported operator.
func (o Op) Valid() bool { return o == OpAdd || o == OpMul }

// String returns the operator symbol.
func (o Op) String() string { return string(o) }

// ParseOp converts a symbol ("+", "*") or name ("add", "mul") to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "+", "add":
		return OpAdd, nil
	case "*", "mul":
		return OpMul, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeUnsupportedOperator, "unsupported operator %q (want + or *)", s)
	}
}

// Eval applies the operator to two numbers using IEEE-754 semantics.
func (o Op) Eval(x, y float64) float64 {
	switch o {
	case OpAdd:
		return x + y
	case OpMul:
		return x * y
	default:
		panic("scalar: unsupported operator " + string(o))
	}
}

// Add returns a new unlabeled node holding a.Data()+b.Data() whose history
// owns copies of a and b. See [Apply].
func Add(a, b Value) Value { return Apply(OpAdd, a, b) }

// Mul returns a new unlabeled node holding a.Data()*b.Data() whose history
// owns copies of a and b. See [Apply].
func Mul(a, b Value) Value { return Apply(OpMul, a, b) }

// Add is shorthand for Add(v, other).
func (v Value) Add(other Value) Value { return Add(v, other) }

// Mul is shorthand for Mul(v, other).
func (v Value) Mul(other Value) Value { return Mul(v, other) }

// Apply builds the result of op applied to a and b.
//
// The result lives in a's arena, starts unlabeled with a zero gradient, and
// its left and right operands are deep copies of a and b made at call time.
// Shared nodes (see [Value.Shared]) are linked instead of copied, both at the
// top level and anywhere inside the operand histories.
//
// Apply panics if op is unsupported, if either operand is the zero Value, or
// if b belongs to another arena and its history contains shared nodes.
func Apply(op Op, a, b Value) Value {
	if !op.Valid() {
		panic("scalar: unsupported operator " + string(op))
	}
	if a.arena == nil || b.arena == nil {
		panic("scalar: operator applied to zero Value")
	}

	data := op.Eval(a.Data(), b.Data())

	ar := a.arena
	left := ar.operand(a)
	right := ar.operand(b)

	ar.mu.Lock()
	defer ar.mu.Unlock()
	id := ar.push(node{data: data, kind: KindOp, op: op, left: left, right: right})
	return Value{arena: ar, id: id}
}

// operand returns the ID the result should link to for v: the shared node
// itself, or the root of a fresh copy of v's history.
func (ar *Arena) operand(v Value) ID {
	if v.arena == ar {
		if v.IsShared() {
			return v.id
		}
		return ar.adopt(ar.export(v.id))
	}

	if v.IsShared() {
		panic("scalar: shared node cannot be used from another arena")
	}
	d := v.arena.export(v.id)
	if d.hasExternal() {
		panic("scalar: history with shared nodes cannot be copied into another arena")
	}
	return ar.adopt(d)
}
