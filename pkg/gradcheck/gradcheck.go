// Package gradcheck estimates partial derivatives of an expression by
// finite differences.
//
// It re-evaluates the forward expression with one input nudged by a small
// step and reports the slope. There is no backward pass: the estimates are
// numbers a caller can write onto leaves with [Annotate] so the rendered
// diagram shows them in its grad segment.
//
//	build := func(in map[string]float64) (scalar.Value, error) { ... }
//	d, err := gradcheck.Estimate(build, map[string]float64{"a": 2, "b": -3}, "a", 0)
package gradcheck

import (
	"math"
	"sort"

	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

// DefaultStep is the step used when a non-positive h is passed.
const DefaultStep = 1e-4

// Builder constructs an expression from named input values. It must build a
// fresh expression on every call.
type Builder func(inputs map[string]float64) (scalar.Value, error)

// Partial is the estimated derivative of the root with respect to Input.
type Partial struct {
	Input string
	Value float64
}

// Estimate returns the forward difference (f(x+h) - f(x)) / h of the
// expression's root with respect to the input named wrt.
func Estimate(build Builder, inputs map[string]float64, wrt string, h float64) (float64, error) {
	if _, ok := inputs[wrt]; !ok {
		return 0, apperrors.New(apperrors.ErrCodeUnknownOperand, "no input named %q", wrt)
	}
	if h <= 0 || math.IsNaN(h) {
		h = DefaultStep
	}

	base, err := eval(build, inputs)
	if err != nil {
		return 0, err
	}

	nudged := make(map[string]float64, len(inputs))
	for k, v := range inputs {
		nudged[k] = v
	}
	nudged[wrt] += h

	moved, err := eval(build, nudged)
	if err != nil {
		return 0, err
	}
	return (moved - base) / h, nil
}

// EstimateAll estimates the derivative for every input, sorted by name.
func EstimateAll(build Builder, inputs map[string]float64, h float64) ([]Partial, error) {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Partial, 0, len(names))
	for _, name := range names {
		d, err := Estimate(build, inputs, name, h)
		if err != nil {
			return nil, err
		}
		out = append(out, Partial{Input: name, Value: d})
	}
	return out, nil
}

// Annotate sets the gradient of every leaf under root whose label has an
// entry in grads, and returns how many leaves it touched. A label that
// occurs several times in the history is annotated everywhere.
func Annotate(root scalar.Value, grads []Partial) int {
	byLabel := make(map[string]float64, len(grads))
	for _, p := range grads {
		byLabel[p.Input] = p.Value
	}

	n := 0
	for _, leaf := range scalar.Leaves(root) {
		label, ok := leaf.Label()
		if !ok {
			continue
		}
		if g, ok := byLabel[label]; ok {
			leaf.SetGrad(g)
			n++
		}
	}
	return n
}

func eval(build Builder, inputs map[string]float64) (float64, error) {
	v, err := build(inputs)
	if err != nil {
		return 0, err
	}
	if !v.Valid() {
		return 0, apperrors.New(apperrors.ErrCodeInvalidExpression, "builder returned an empty value")
	}
	return v.Data(), nil
}
