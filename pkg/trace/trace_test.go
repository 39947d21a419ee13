package trace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/exprgraph/pkg/dag"
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

func buildLoss() scalar.Value {
	a := scalar.New(2.0, "a")
	b := scalar.New(-3.0, "b")
	c := scalar.New(10.0, "c")
	e := a.Mul(b)
	e.SetLabel("e")
	d := e.Add(c)
	d.SetLabel("d")
	f := scalar.New(-2.0, "f")
	l := d.Mul(f)
	l.SetLabel("L")
	return l
}

func edgePairs(g *dag.DAG) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, fmt.Sprintf("%d->%d", e.From, e.To))
	}
	return out
}

func TestTraceLossExample(t *testing.T) {
	g, err := Trace(buildLoss(), Options{})
	require.NoError(t, err)

	wantLabels := []string{
		"{ L| data: -8.0000 }",
		"*",
		"{ d| data: 4.0000 }",
		"+",
		"{ e| data: -6.0000 }",
		"*",
		"{ a| data: 2.0000 }",
		"{ b| data: -3.0000 }",
		"{ c| data: 10.0000 }",
		"{ f| data: -2.0000 }",
	}
	assert.Equal(t, wantLabels, dag.NodeLabels(g.Nodes()))

	wantKinds := []dag.NodeKind{
		dag.NodeKindData, dag.NodeKindOperator, dag.NodeKindData, dag.NodeKindOperator,
		dag.NodeKindData, dag.NodeKindOperator, dag.NodeKindData, dag.NodeKindData,
		dag.NodeKindData, dag.NodeKindData,
	}
	for i, n := range g.Nodes() {
		assert.Equal(t, wantKinds[i], n.Kind, "node %d", i)
	}

	wantEdges := []string{"1->0", "2->1", "3->2", "4->3", "5->4", "6->5", "7->5", "8->3", "9->1"}
	assert.Equal(t, wantEdges, edgePairs(g))
}

func TestTraceShowGrad(t *testing.T) {
	l := buildLoss()
	l.SetGrad(1)
	d, _ := l.Left()
	d.SetGrad(-2)

	g, err := Trace(l, Options{Format: scalar.FormatOptions{ShowGrad: true}})
	require.NoError(t, err)

	nodes := g.Nodes()
	assert.Equal(t, "{ L| data: -8.0000 | grad 1.0000 }", nodes[0].Label)
	assert.Equal(t, "{ d| data: 4.0000 | grad -2.0000 }", nodes[2].Label)
	assert.Equal(t, "{ a| data: 2.0000 | grad 0.0000 }", nodes[6].Label)
}

func TestTraceLeafRoot(t *testing.T) {
	g, err := Trace(scalar.New(3, "x"), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
	assert.Equal(t, "x", g.Meta()[dag.MetaLabel])
}

func TestTraceNodeCount(t *testing.T) {
	// A chain of n leaves combined by n-1 unlabeled operators: the root plus,
	// per operator, one operator node and two operand nodes.
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("leaves=%d", n), func(t *testing.T) {
			v := scalar.New(1, "x0")
			for i := 1; i < n; i++ {
				v = v.Add(scalar.New(float64(i), fmt.Sprintf("x%d", i)))
			}
			g, err := Trace(v, Options{})
			require.NoError(t, err)

			ops := n - 1
			assert.Equal(t, 1+3*ops, g.NodeCount())
			assert.Equal(t, 3*ops, g.EdgeCount())
			assert.Len(t, g.Sinks(), 1)
			assert.NoError(t, g.Validate())
		})
	}
}

func TestTraceUnlabeledIntermediate(t *testing.T) {
	a := scalar.New(1, "a")
	b := scalar.New(2, "b")
	c := scalar.New(3, "c")
	r := a.Mul(b).Add(c)
	r.SetLabel("r")

	g, err := Trace(r, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"{ r| data: 5.0000 }", "+", "*", "*",
		"{ a| data: 1.0000 }", "{ b| data: 2.0000 }", "{ c| data: 3.0000 }",
	}, dag.NodeLabels(g.Nodes()))
	assert.Equal(t, []string{"1->0", "2->1", "3->2", "4->3", "5->3", "6->1"}, edgePairs(g))

	n, _ := g.Node(2)
	assert.Equal(t, dag.NodeKindOperator, n.Kind, "unlabeled result is styled as operator")
	assert.Equal(t, 2.0, n.Meta[dag.MetaData])
}

func TestTraceSharedNodeExpandsPerPath(t *testing.T) {
	ar := scalar.NewArena()
	x := ar.Leaf(3, "x").Shared()
	y := x.Mul(x)
	y.SetLabel("y")

	g, err := Trace(y, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"{ y| data: 9.0000 }", "*", "{ x| data: 3.0000 }", "{ x| data: 3.0000 }",
	}, dag.NodeLabels(g.Nodes()))
	assert.Equal(t, []string{"1->0", "2->1", "3->1"}, edgePairs(g))
}

func TestTraceDeterministic(t *testing.T) {
	g1, err := Trace(buildLoss(), Options{})
	require.NoError(t, err)
	g2, err := Trace(buildLoss(), Options{})
	require.NoError(t, err)

	assert.Equal(t, dag.NodeLabels(g1.Nodes()), dag.NodeLabels(g2.Nodes()))
	assert.Equal(t, edgePairs(g1), edgePairs(g2))
}

func TestTraceMetadata(t *testing.T) {
	l := buildLoss()
	l.SetGrad(1)
	g, err := Trace(l, Options{})
	require.NoError(t, err)

	root, _ := g.Node(0)
	assert.Equal(t, -8.0, root.Meta[dag.MetaData])
	assert.Equal(t, 1.0, root.Meta[dag.MetaGrad])
	assert.Equal(t, "L", root.Meta[dag.MetaLabel])
	assert.Equal(t, "*", root.Meta[dag.MetaOp])

	op, _ := g.Node(1)
	assert.Equal(t, "*", op.Meta[dag.MetaOp])
	assert.NotContains(t, op.Meta, dag.MetaData)

	leaf, _ := g.Node(6)
	assert.NotContains(t, leaf.Meta, dag.MetaOp)
}

func TestTraceMalformed(t *testing.T) {
	tests := []struct {
		name string
		root func() scalar.Value
	}{
		{"malformed root", func() scalar.Value { return scalar.New(1, "") }},
		{"malformed operand", func() scalar.Value {
			r := scalar.New(1, "a").Add(scalar.New(2, ""))
			r.SetLabel("r")
			return r
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Trace(tt.root(), Options{})
			assert.Nil(t, g)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeMalformedNode))
			assert.ErrorIs(t, err, scalar.ErrMalformedNode)
		})
	}
}
