package scalar

import (
	"errors"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
)

// ErrMalformedNode is the cause of every error returned when a node has
// neither a label nor an operator. Only a leaf built with an empty label (or
// whose label was cleared) can be in that state.
var ErrMalformedNode = errors.New("node has neither label nor operator")

// DefaultPrecision is the number of decimals used for data and grad.
const DefaultPrecision = 4

// FormatOptions controls the display string of data nodes.
// The zero value omits the gradient and uses DefaultPrecision.
type FormatOptions struct {
	// ShowGrad appends the "| grad <g>" segment to data nodes.
	ShowGrad bool
	// Precision is the number of decimals; values <= 0 select DefaultPrecision.
	Precision int
}

func (o FormatOptions) precision() int {
	if o.Precision <= 0 {
		return DefaultPrecision
	}
	return o.Precision
}

// FormatFloat prints f with prec decimals (DefaultPrecision when prec <= 0).
// Infinities print as "inf" and "-inf", NaN as "NaN".
func FormatFloat(f float64, prec int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case prec <= 0:
		prec = DefaultPrecision
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// Format returns the node's display string:
//
//	{ <label>| data: <data> | grad <grad> }   labeled node, ShowGrad
//	{ <label>| data: <data> }                 labeled node
//	+ or *                                    unlabeled operator result
//
// Numbers are printed by FormatFloat. A node without label and operator
// yields an error with code MALFORMED_NODE wrapping ErrMalformedNode.
func (v Value) Format(opts FormatOptions) (string, error) {
	n := v.arena.get(v.id)
	return formatNode(n, v.id, opts)
}

func formatNode(n node, id ID, opts FormatOptions) (string, error) {
	if n.hasLabel {
		prec := opts.precision()
		var b strings.Builder
		b.WriteString("{ ")
		b.WriteString(n.label)
		b.WriteString("| data: ")
		b.WriteString(FormatFloat(n.data, prec))
		if opts.ShowGrad {
			b.WriteString(" | grad ")
			b.WriteString(FormatFloat(n.grad, prec))
		}
		b.WriteString(" }")
		return b.String(), nil
	}
	if n.kind == KindOp {
		return string(n.op), nil
	}
	return "", apperrors.Wrap(apperrors.ErrCodeMalformedNode, ErrMalformedNode, "format node %d", id)
}

// String formats the node with the gradient shown. Malformed nodes print as
// "<malformed>".
func (v Value) String() string {
	if v.arena == nil {
		return "<nil>"
	}
	s, err := v.Format(FormatOptions{ShowGrad: true})
	if err != nil {
		return "<malformed>"
	}
	return s
}

// Validate checks every node reachable from v and returns the first
// malformed one as an error (code MALFORMED_NODE).
func (v Value) Validate() error {
	var err error
	Walk(v, func(x Value, _ int) bool {
		n := x.arena.get(x.id)
		if n.kind == KindLeaf && !n.hasLabel {
			err = apperrors.Wrap(apperrors.ErrCodeMalformedNode, ErrMalformedNode, "leaf node %d", x.id)
			return false
		}
		return true
	})
	return err
}
