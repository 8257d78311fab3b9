package tinybuf

import (
	"encoding/binary"
	"math"
)

// DecodeOpts configures decoding of untrusted input.
type DecodeOpts struct {
	// MaxDepth caps descriptor/value nesting while decoding. Zero means
	// unlimited. The codec itself carries no recursion guard, so callers
	// feeding it deeply nested or hostile data on a bounded stack should
	// set this.
	MaxDepth int
}

// Decode deserializes a value of the named type from the start of data.
// Trailing bytes after the value are ignored; callers composing multiple
// values back-to-back should use DecodeFrom and track the offset.
func Decode(g *TypeGraph, typeName string, data []byte) (*Value, error) {
	v, _, err := DecodeFrom(g, typeName, data, 0)
	return v, err
}

// DecodeFrom deserializes a value of the named type starting at off,
// returning the value and the offset just past its encoding. It consumes
// exactly the bytes Encode produced for that value.
func DecodeFrom(g *TypeGraph, typeName string, data []byte, off int) (*Value, int, error) {
	return DecodeFromWithOpts(g, typeName, data, off, DecodeOpts{})
}

// DecodeFromWithOpts is DecodeFrom with explicit options.
func DecodeFromWithOpts(g *TypeGraph, typeName string, data []byte, off int, opts DecodeOpts) (*Value, int, error) {
	d, ok := g.Descriptor(typeName)
	if !ok {
		return nil, off, &UnknownTypeError{Name: typeName}
	}
	return DecodeValueWithOpts(d, data, off, opts)
}

// DecodeValue deserializes against an arbitrary descriptor, for non-struct
// roots. It mirrors EncodeValue.
func DecodeValue(d *Descriptor, data []byte, off int) (*Value, int, error) {
	return DecodeValueWithOpts(d, data, off, DecodeOpts{})
}

// DecodeValueWithOpts is DecodeValue with explicit options.
func DecodeValueWithOpts(d *Descriptor, data []byte, off int, opts DecodeOpts) (*Value, int, error) {
	dec := &decoder{buf: data, maxDepth: opts.MaxDepth}
	return dec.value(d, off, 0)
}

// decoder is the call-local state of one decode walk. Nothing persists
// across calls.
type decoder struct {
	buf      []byte
	maxDepth int
}

// value reads one value of type d at off and returns it with the new
// offset. Decoding mirrors encoding exactly: each kind reads back
// precisely what the corresponding encode rule wrote.
func (dec *decoder) value(d *Descriptor, off, depth int) (*Value, int, error) {
	if dec.maxDepth > 0 && depth > dec.maxDepth {
		return nil, off, &InvalidEncodingError{Offset: off, Reason: "nesting exceeds depth limit"}
	}

	switch d.Kind {
	case DescPrim:
		return dec.prim(d.Prim, off)

	case DescOptional:
		if off >= len(dec.buf) {
			return nil, off, &TruncatedBufferError{Offset: off, Need: 1, Have: 0}
		}
		switch dec.buf[off] {
		case 0:
			return Null(), off + 1, nil
		case 1:
			return dec.value(d.Elem, off+1, depth+1)
		default:
			return nil, off, &InvalidEncodingError{Offset: off, Reason: "presence byte must be 0 or 1"}
		}

	case DescList:
		count, off, err := dec.length(off)
		if err != nil {
			return nil, off, err
		}
		elems := make([]*Value, 0, min(count, len(dec.buf)-off+1))
		for i := 0; i < count; i++ {
			var e *Value
			e, off, err = dec.value(d.Elem, off, depth+1)
			if err != nil {
				return nil, off, err
			}
			elems = append(elems, e)
		}
		return List(elems...), off, nil

	case DescStruct:
		sd := d.Struct
		fields := make([]Field, 0, len(sd.Fields))
		for _, fd := range sd.Fields {
			fv, next, err := dec.value(fd.Type, off, depth+1)
			if err != nil {
				return nil, next, err
			}
			fields = append(fields, Field{Name: fd.Name, Value: fv})
			off = next
		}
		return Struct(sd.Name, fields...), off, nil

	default:
		return nil, off, &InvalidEncodingError{Offset: off, Reason: "unknown descriptor kind"}
	}
}

// prim reads one primitive value at off.
func (dec *decoder) prim(p PrimKind, off int) (*Value, int, error) {
	if w := p.Width(); w > 0 {
		if len(dec.buf)-off < w {
			return nil, off, &TruncatedBufferError{Offset: off, Need: w, Have: len(dec.buf) - off}
		}
		bits := readFixed(dec.buf[off:], w)
		end := off + w
		switch p {
		case PrimInt8:
			return Int(int64(int8(bits))), end, nil
		case PrimInt16:
			return Int(int64(int16(bits))), end, nil
		case PrimInt32:
			return Int(int64(int32(bits))), end, nil
		case PrimInt64:
			return Int(int64(bits)), end, nil
		case PrimUint8, PrimUint16, PrimUint32, PrimUint64:
			return Uint(bits), end, nil
		case PrimFloat32:
			return Float(float64(math.Float32frombits(uint32(bits)))), end, nil
		case PrimFloat64:
			return Float(math.Float64frombits(bits)), end, nil
		case PrimBool:
			switch bits {
			case 0:
				return Bool(false), end, nil
			case 1:
				return Bool(true), end, nil
			default:
				return nil, off, &InvalidEncodingError{Offset: off, Reason: "bool byte must be 0 or 1"}
			}
		}
	}

	// Variable-size primitives: varint byte length, then raw bytes.
	n, next, err := dec.length(off)
	if err != nil {
		return nil, next, err
	}
	if len(dec.buf)-next < n {
		return nil, next, &TruncatedBufferError{Offset: next, Need: n, Have: len(dec.buf) - next}
	}
	raw := dec.buf[next : next+n]
	switch p {
	case PrimStr:
		return Str(string(raw)), next + n, nil
	case PrimBytes:
		out := make([]byte, n)
		copy(out, raw)
		return Bytes(out), next + n, nil
	default:
		return nil, off, &InvalidEncodingError{Offset: off, Reason: "unknown primitive kind"}
	}
}

// length reads a varint length/count prefix and bounds it to int.
func (dec *decoder) length(off int) (int, int, error) {
	v, next, err := Uvarint(dec.buf, off)
	if err != nil {
		return 0, off, err
	}
	if v > uint64(math.MaxInt) {
		return 0, off, &InvalidEncodingError{Offset: off, Reason: "length prefix overflows int"}
	}
	return int(v), next, nil
}

// readFixed reads the low `width` bytes little-endian, zero-extended.
func readFixed(buf []byte, width int) uint64 {
	var scratch [8]byte
	copy(scratch[:], buf[:width])
	return binary.LittleEndian.Uint64(scratch[:])
}
