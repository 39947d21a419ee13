package trace

import (
	"fmt"

	"github.com/matzehuels/exprgraph/pkg/dag"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

// Options configures tracing.
type Options struct {
	// Format controls the display string of data nodes. The zero value
	// omits gradients and prints four decimals.
	Format scalar.FormatOptions
}

// Trace converts root and its history into a graph.
//
// The returned graph's node 0 is root. Graph-level metadata records the
// root label (if any) under dag.MetaLabel.
//
// Trace only fails when a reachable node is malformed (a leaf without a
// label); the error has code MALFORMED_NODE.
func Trace(root scalar.Value, opts Options) (*dag.DAG, error) {
	g := dag.New(nil)
	if label, ok := root.Label(); ok {
		g.Meta()[dag.MetaLabel] = label
	}

	t := &tracer{g: g, opts: opts}
	origin, err := t.addValue(root)
	if err != nil {
		return nil, err
	}
	if err := t.build(root, origin); err != nil {
		return nil, err
	}
	return g, nil
}

type tracer struct {
	g    *dag.DAG
	opts Options
}

func (t *tracer) build(v scalar.Value, index int) error {
	op, ok := v.Op()
	if !ok {
		return nil
	}

	opIndex := t.g.AddNode(dag.Node{
		Label: op.String(),
		Kind:  dag.NodeKindOperator,
		Meta:  dag.Metadata{dag.MetaOp: op.String()},
	})
	if err := t.connect(opIndex, index); err != nil {
		return err
	}

	left, _ := v.Left()
	right, _ := v.Right()
	for _, operand := range []scalar.Value{left, right} {
		i, err := t.addValue(operand)
		if err != nil {
			return err
		}
		if err := t.connect(i, opIndex); err != nil {
			return err
		}
		if err := t.build(operand, i); err != nil {
			return err
		}
	}
	return nil
}

// addValue adds a node for v labeled with its display string. An unlabeled
// operator result displays as its bare symbol, so it is styled as an
// operator node too.
func (t *tracer) addValue(v scalar.Value) (int, error) {
	s, err := v.Format(t.opts.Format)
	if err != nil {
		return 0, err
	}
	meta := dag.Metadata{
		dag.MetaData: v.Data(),
		dag.MetaGrad: v.Grad(),
	}
	kind := dag.NodeKindData
	label, labeled := v.Label()
	if labeled {
		meta[dag.MetaLabel] = label
	}
	if op, ok := v.Op(); ok {
		meta[dag.MetaOp] = op.String()
		if !labeled {
			kind = dag.NodeKindOperator
		}
	}
	return t.g.AddNode(dag.Node{Label: s, Kind: kind, Meta: meta}), nil
}

func (t *tracer) connect(from, to int) error {
	if err := t.g.AddEdge(dag.Edge{From: from, To: to}); err != nil {
		return fmt.Errorf("connect %d -> %d: %w", from, to, err)
	}
	return nil
}
