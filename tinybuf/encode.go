package tinybuf

import (
	"encoding/binary"
	"math"
	"strconv"
)

// Encode serializes a value conforming to the named type. The result is a
// flat byte sequence with no header, no schema identifier and no framing:
// decoding it requires the identical TypeGraph.
//
// Encode is purely functional: it either returns the complete encoding or
// a TypeMismatchError (or UnknownTypeError for a name missing from the
// graph) and no bytes.
func Encode(g *TypeGraph, typeName string, v *Value) ([]byte, error) {
	d, ok := g.Descriptor(typeName)
	if !ok {
		return nil, &UnknownTypeError{Name: typeName}
	}
	return EncodeValue(d, v)
}

// EncodeValue serializes a value against an arbitrary descriptor. This is
// the entry point for non-struct roots (a bare list, optional or
// primitive).
func EncodeValue(d *Descriptor, v *Value) ([]byte, error) {
	buf, err := encodeValue(nil, d, v, d.String())
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// encodeValue appends the encoding of v as d to buf. path names the value
// position for error reporting.
func encodeValue(buf []byte, d *Descriptor, v *Value, path string) ([]byte, error) {
	switch d.Kind {
	case DescPrim:
		return encodePrim(buf, d.Prim, v, path)

	case DescOptional:
		// Single presence byte; the inner encoding follows only if present.
		if v.IsNull() {
			return append(buf, 0), nil
		}
		return encodeValue(append(buf, 1), d.Elem, v, path)

	case DescList:
		elems, err := v.AsList()
		if err != nil {
			return nil, mismatch(path, d, v)
		}
		buf = AppendUvarint(buf, uint64(len(elems)))
		for i, e := range elems {
			buf, err = encodeValue(buf, d.Elem, e, elemPath(path, i))
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	case DescStruct:
		return encodeStruct(buf, d.Struct, v, path)

	default:
		return nil, mismatch(path, d, v)
	}
}

// encodeStruct appends the struct's fields in declaration order, with no
// tags and no length prefix: layout is implicit from the descriptor.
func encodeStruct(buf []byte, sd *StructDesc, v *Value, path string) ([]byte, error) {
	sv, err := v.AsStruct()
	if err != nil {
		return nil, mismatch(path, &Descriptor{Kind: DescStruct, Struct: sd}, v)
	}
	if sv.TypeName != "" && sv.TypeName != sd.Name {
		return nil, &TypeMismatchError{Path: path, Want: sd.Name, Got: "struct " + sv.TypeName}
	}

	// Reject fields the descriptor has no slot for: the wire format has
	// no room to carry them, so silently dropping them would break the
	// round-trip law.
	for _, f := range sv.Fields {
		if sd.Field(f.Name) == nil {
			return nil, &TypeMismatchError{Path: path + "." + f.Name, Want: "(no such field)", Got: f.Value.Kind().String()}
		}
	}

	for _, fd := range sd.Fields {
		fv := v.Get(fd.Name)
		if fv == nil && fd.Type.Kind != DescOptional {
			return nil, &TypeMismatchError{Path: path + "." + fd.Name, Want: fd.Type.String(), Got: "missing field"}
		}
		buf, err = encodeValue(buf, fd.Type, fv, path+"."+fd.Name)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// encodePrim appends a primitive value, checking category and range
// against the declared kind. Fixed-width integers and floats are written
// little-endian at their natural width.
func encodePrim(buf []byte, p PrimKind, v *Value, path string) ([]byte, error) {
	switch p {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64:
		n, err := v.AsInt()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		if !signedFits(n, p) {
			return nil, &TypeMismatchError{Path: path, Want: p.String(), Got: v.String()}
		}
		return appendFixed(buf, uint64(n), p.Width()), nil

	case PrimUint8, PrimUint16, PrimUint32, PrimUint64:
		n, err := v.AsUint()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		if !unsignedFits(n, p) {
			return nil, &TypeMismatchError{Path: path, Want: p.String(), Got: v.String()}
		}
		return appendFixed(buf, n, p.Width()), nil

	case PrimFloat32:
		f, err := v.AsFloat()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		if !math.IsInf(f, 0) && math.IsInf(float64(float32(f)), 0) {
			return nil, &TypeMismatchError{Path: path, Want: p.String(), Got: v.String()}
		}
		return appendFixed(buf, uint64(math.Float32bits(float32(f))), 4), nil

	case PrimFloat64:
		f, err := v.AsFloat()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		return appendFixed(buf, math.Float64bits(f), 8), nil

	case PrimBool:
		b, err := v.AsBool()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		if b {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil

	case PrimStr:
		s, err := v.AsStr()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		buf = AppendUvarint(buf, uint64(len(s)))
		return append(buf, s...), nil

	case PrimBytes:
		b, err := v.AsBytes()
		if err != nil {
			return nil, primMismatch(path, p, v)
		}
		buf = AppendUvarint(buf, uint64(len(b)))
		return append(buf, b...), nil

	default:
		return nil, primMismatch(path, p, v)
	}
}

// appendFixed appends the low `width` bytes of bits, little-endian.
func appendFixed(buf []byte, bits uint64, width int) []byte {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], bits)
	return append(buf, scratch[:width]...)
}

func signedFits(n int64, p PrimKind) bool {
	switch p {
	case PrimInt8:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case PrimInt16:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case PrimInt32:
		return n >= math.MinInt32 && n <= math.MaxInt32
	default:
		return true
	}
}

func unsignedFits(n uint64, p PrimKind) bool {
	switch p {
	case PrimUint8:
		return n <= math.MaxUint8
	case PrimUint16:
		return n <= math.MaxUint16
	case PrimUint32:
		return n <= math.MaxUint32
	default:
		return true
	}
}

func mismatch(path string, d *Descriptor, v *Value) error {
	return &TypeMismatchError{Path: path, Want: d.String(), Got: v.Kind().String()}
}

func primMismatch(path string, p PrimKind, v *Value) error {
	return &TypeMismatchError{Path: path, Want: p.String(), Got: v.Kind().String()}
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
