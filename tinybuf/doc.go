// Package tinybuf implements TinyBuf, a schema-driven binary codec.
//
// TinyBuf is designed to be:
//   - Compact (no field tags, no framing, no embedded schema)
//   - Strongly typed (values are checked against a resolved type graph)
//   - Recursively composable (structs may reference each other, even cyclically)
//   - Deterministic (the same value always encodes to the same bytes)
//
// # Pipeline
//
// User type declarations are resolved once into an immutable TypeGraph;
// the codec then walks that graph against a value (encode) or a byte
// cursor (decode). Encoder and decoder must share an identical graph:
// the wire format carries no versioning or compatibility metadata.
//
//	decls, _ := tinybuf.ParseDecls(src)
//	graph, _ := tinybuf.Resolve(decls)
//	data, _ := tinybuf.Encode(graph, "Point", v)
//	back, _ := tinybuf.Decode(graph, "Point", data)
//
// # Data Model
//
// Primitives: int8-64, uint8-64, float32/64, bool, string, bytes
// Wrappers:   optional, list
// Composite:  struct (named, fixed ordered fields)
//
// # Wire Format
//
// Fixed-width scalars are little-endian. Strings, bytes and lists carry a
// base-128 varint length/count prefix. Optionals carry a single presence
// byte (0 or 1). Structs are their fields' encodings concatenated in
// declaration order, with nothing in between.
//
// # Declaration Syntax
//
//	type Point
//	  x int32
//	  y int32
//
//	type Node
//	  value int32
//	  next optional Node
//
// Higher-order wrappers apply left to right: "list optional int32" is a
// list of optional int32 values.
package tinybuf
