package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/exprgraph/pkg/dag"
)

type graph struct {
	Meta  dag.Metadata `json:"meta,omitempty"`
	Nodes []node       `json:"nodes"`
	Edges []edge       `json:"edges"`
}

type node struct {
	ID    int          `json:"id"`
	Label string       `json:"label"`
	Kind  string       `json:"kind"`
	Meta  dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WriteJSON encodes a traced graph as indented JSON and writes it to w.
// Nodes and edges keep insertion order, so the output of [ReadJSON] on the
// result renders to the same DOT text.
func WriteJSON(g *dag.DAG, w io.Writer) error {
	out := graph{
		Meta:  g.Meta(),
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{ID: n.ID, Label: n.Label, Kind: n.Kind.String(), Meta: n.Meta})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
