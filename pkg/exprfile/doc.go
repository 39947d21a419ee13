// Package exprfile loads scalar expressions from declarative documents.
//
// A document names its leaves, then lists operator applications that refer
// to earlier names, and picks one name as the root:
//
//	root = "L"
//
//	[[leaf]]
//	label = "a"
//	value = 2.0
//
//	[[leaf]]
//	label = "b"
//	value = -3.0
//
//	[[op]]
//	label = "L"
//	op    = "*"
//	left  = "a"
//	right = "b"
//
//	[grad]
//	L = 1.0
//
// The same structure is accepted as TOML, YAML, JSON or HCL; [Load] picks the
// decoder from the file extension and reads through afs, so any afs URL
// works as well as a local path.
//
// Operators copy their operands, as scalar.Add and scalar.Mul do, so a name
// used twice appears twice in the traced graph. Leaves marked shared are
// linked instead; setting a gradient on one then shows up at every use.
package exprfile
