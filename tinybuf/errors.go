package tinybuf

import "fmt"

// Resolution-time errors are fatal to graph construction: Resolve returns
// the first one it hits and no usable TypeGraph. Encode- and decode-time
// errors abort the whole call; there is no partial output.

// DuplicateTypeError reports two declarations sharing a name.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("tinybuf: duplicate type %q", e.Name)
}

// DuplicateFieldError reports a struct declaring the same field twice.
type DuplicateFieldError struct {
	Type  string
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("tinybuf: duplicate field %q in type %q", e.Field, e.Type)
}

// UnknownTypeError reports a reference to a name that is neither a builtin
// primitive nor a declared type. Type/Field locate the offending reference
// when it occurs inside a declaration.
type UnknownTypeError struct {
	Name  string
	Type  string
	Field string
}

func (e *UnknownTypeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("tinybuf: unknown type %q in %s.%s", e.Name, e.Type, e.Field)
	}
	return fmt.Sprintf("tinybuf: unknown type %q", e.Name)
}

// TypeMismatchError reports an encode-time value that does not conform to
// its descriptor: wrong kind, missing or extra struct field, or a numeric
// value outside its declared width.
type TypeMismatchError struct {
	Path string // Value path, e.g. "Point.x" or "Graph.nodes[2].next"
	Want string // Expected type (descriptor rendering)
	Got  string // What the value actually was
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("tinybuf: %s: expected %s, got %s", e.Path, e.Want, e.Got)
}

// TruncatedBufferError reports a decode that ran off the end of the buffer.
type TruncatedBufferError struct {
	Offset int // Position the read started at
	Need   int // Bytes required
	Have   int // Bytes remaining
}

func (e *TruncatedBufferError) Error() string {
	return fmt.Sprintf("tinybuf: truncated buffer at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

// InvalidEncodingError reports malformed wire data: a presence byte that is
// not 0 or 1, a varint exceeding the maximum byte length, or nesting past a
// caller-imposed depth limit.
type InvalidEncodingError struct {
	Offset int
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("tinybuf: invalid encoding at offset %d: %s", e.Offset, e.Reason)
}
