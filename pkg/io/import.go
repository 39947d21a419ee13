package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/exprgraph/pkg/dag"
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
)

var kindFromString = map[string]dag.NodeKind{
	"":         dag.NodeKindData,
	"data":     dag.NodeKindData,
	"operator": dag.NodeKindOperator,
}

// ReadJSON decodes a graph written by [WriteJSON].
//
// Node IDs must be 0..n-1 in order, because graph nodes are addressed by
// insertion index. Edges must reference existing nodes and the result must
// be acyclic. Errors name the offending node or edge.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := dag.New(data.Meta)
	for i, n := range data.Nodes {
		if n.ID != i {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "node %d: id %d out of order", i, n.ID)
		}
		kind, ok := kindFromString[n.Kind]
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "node %d: unknown kind %q", i, n.Kind)
		}
		g.AddNode(dag.Node{Label: n.Label, Kind: kind, Meta: n.Meta})
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", e.From, e.To, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
