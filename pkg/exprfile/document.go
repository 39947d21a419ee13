package exprfile

import (
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

// Document describes an expression as a list of named leaves and operator
// applications. Operators may only reference names defined before them.
type Document struct {
	Root   string             `toml:"root" yaml:"root" json:"root"`
	Leaves []Leaf             `toml:"leaf" yaml:"leaf" json:"leaf"`
	Ops    []Operation        `toml:"op" yaml:"op" json:"op"`
	Grad   map[string]float64 `toml:"grad" yaml:"grad,omitempty" json:"grad,omitempty"`
}

// Leaf is a named input value. Shared leaves are linked into every
// expression that uses them instead of being copied.
type Leaf struct {
	Label  string  `toml:"label" yaml:"label" json:"label"`
	Value  float64 `toml:"value" yaml:"value" json:"value"`
	Shared bool    `toml:"shared" yaml:"shared,omitempty" json:"shared,omitempty"`
}

// Operation applies Op to two previously defined names and labels the result.
type Operation struct {
	Label string `toml:"label" yaml:"label" json:"label"`
	Op    string `toml:"op" yaml:"op" json:"op"`
	Left  string `toml:"left" yaml:"left" json:"left"`
	Right string `toml:"right" yaml:"right" json:"right"`
}

// Validate checks labels, operators and references. It reports the first
// problem found with one of the codes INVALID_EXPRESSION, INVALID_LABEL,
// DUPLICATE_LABEL, UNKNOWN_OPERAND or UNSUPPORTED_OPERATOR.
func (d *Document) Validate() error {
	if len(d.Leaves) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidExpression, "document defines no leaves")
	}

	defined := make(map[string]bool, len(d.Leaves)+len(d.Ops))
	define := func(label string) error {
		if err := apperrors.ValidateLabel(label); err != nil {
			return err
		}
		if defined[label] {
			return apperrors.New(apperrors.ErrCodeDuplicateLabel, "label %q defined twice", label)
		}
		defined[label] = true
		return nil
	}

	for _, l := range d.Leaves {
		if err := define(l.Label); err != nil {
			return err
		}
	}
	for _, op := range d.Ops {
		if _, err := scalar.ParseOp(op.Op); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeUnsupportedOperator, err, "op %q", op.Label)
		}
		for _, ref := range []string{op.Left, op.Right} {
			if !defined[ref] {
				return apperrors.New(apperrors.ErrCodeUnknownOperand, "op %q: operand %q is not defined before it", op.Label, ref)
			}
		}
		if err := define(op.Label); err != nil {
			return err
		}
	}

	if d.Root == "" {
		return apperrors.New(apperrors.ErrCodeInvalidExpression, "root is not set")
	}
	if !defined[d.Root] {
		return apperrors.New(apperrors.ErrCodeUnknownOperand, "root %q is not defined", d.Root)
	}
	for label := range d.Grad {
		if !defined[label] {
			return apperrors.New(apperrors.ErrCodeUnknownOperand, "grad for undefined label %q", label)
		}
	}
	return nil
}

// Inputs returns the value of every leaf keyed by label.
func (d *Document) Inputs() map[string]float64 {
	in := make(map[string]float64, len(d.Leaves))
	for _, l := range d.Leaves {
		in[l.Label] = l.Value
	}
	return in
}

// Build evaluates the document into a single arena and returns the root.
//
// inputs overrides leaf values by label; nil keeps the document's values.
// Gradients from the grad table are written to every node reachable from
// the root whose label matches.
func (d *Document) Build(inputs map[string]float64) (scalar.Value, error) {
	if err := d.Validate(); err != nil {
		return scalar.Value{}, err
	}
	for name := range inputs {
		if !d.isLeaf(name) {
			return scalar.Value{}, apperrors.New(apperrors.ErrCodeUnknownOperand, "input %q is not a leaf", name)
		}
	}

	ar := scalar.NewArena()
	values := make(map[string]scalar.Value, len(d.Leaves)+len(d.Ops))
	for _, l := range d.Leaves {
		data := l.Value
		if v, ok := inputs[l.Label]; ok {
			data = v
		}
		v := ar.Leaf(data, l.Label)
		if l.Shared {
			v = v.Shared()
		}
		values[l.Label] = v
	}
	for _, o := range d.Ops {
		op, _ := scalar.ParseOp(o.Op)
		v := scalar.Apply(op, values[o.Left], values[o.Right])
		v.SetLabel(o.Label)
		values[o.Label] = v
	}

	root := values[d.Root]
	for label, g := range d.Grad {
		for _, v := range scalar.Find(root, label) {
			v.SetGrad(g)
		}
	}
	return root, nil
}

func (d *Document) isLeaf(label string) bool {
	for _, l := range d.Leaves {
		if l.Label == label {
			return true
		}
	}
	return false
}
