// Package io provides JSON export and import for traced expression graphs.
//
// # JSON Format
//
//	{
//	  "meta": {"label": "L"},
//	  "nodes": [
//	    {"id": 0, "label": "{ L| data: -8.0000 }", "kind": "data",
//	     "meta": {"data": -8, "grad": 0, "label": "L", "op": "*"}},
//	    {"id": 1, "label": "*", "kind": "operator", "meta": {"op": "*"}}
//	  ],
//	  "edges": [
//	    {"from": 1, "to": 0}
//	  ]
//	}
//
// Node ids are insertion indices and appear in order. The label is the
// display string the DOT renderer uses; meta carries the numeric payload so
// consumers need not parse labels.
//
// Use [WriteJSON] to export and [ReadJSON] to read a graph back. A graph
// that round-trips through JSON renders to identical DOT text.
package io
