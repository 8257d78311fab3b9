package tinybuf

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Descriptor-guided conversion between JSON and Value, used by the CLI
// and anywhere values arrive as JSON. Unlike the wire format, JSON is
// self-describing, so the bridge uses the descriptor to pick the value
// kind: numbers become int/uint/float per the declared primitive, null
// (or a missing object key) is an absent optional, and bytes travel as
// base64 strings.

// FromJSON converts JSON bytes to a value conforming to the named type.
func FromJSON(g *TypeGraph, typeName string, data []byte) (*Value, error) {
	d, ok := g.Descriptor(typeName)
	if !ok {
		return nil, &UnknownTypeError{Name: typeName}
	}
	return FromJSONValue(d, data)
}

// FromJSONValue converts JSON bytes against an arbitrary descriptor.
func FromJSONValue(d *Descriptor, data []byte) (*Value, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("tinybuf: JSON parse error: %w", err)
	}
	return fromJSON(d, v, d.String())
}

func fromJSON(d *Descriptor, v interface{}, path string) (*Value, error) {
	switch d.Kind {
	case DescPrim:
		return primFromJSON(d.Prim, v, path)

	case DescOptional:
		if v == nil {
			return Null(), nil
		}
		return fromJSON(d.Elem, v, path)

	case DescList:
		arr, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected JSON array, got %T", path, v)
		}
		elems := make([]*Value, 0, len(arr))
		for i, e := range arr {
			ev, err := fromJSON(d.Elem, e, elemPath(path, i))
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}
		return List(elems...), nil

	case DescStruct:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected JSON object, got %T", path, v)
		}
		sd := d.Struct
		for k := range obj {
			if sd.Field(k) == nil {
				return nil, fmt.Errorf("tinybuf: %s: unknown field %q", path, k)
			}
		}
		fields := make([]Field, 0, len(sd.Fields))
		for _, fd := range sd.Fields {
			jv, present := obj[fd.Name]
			fpath := path + "." + fd.Name
			if !present || jv == nil {
				if fd.Type.Kind != DescOptional {
					return nil, fmt.Errorf("tinybuf: %s: missing field", fpath)
				}
				fields = append(fields, Field{Name: fd.Name, Value: Null()})
				continue
			}
			fv, err := fromJSON(fd.Type, jv, fpath)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: fd.Name, Value: fv})
		}
		return Struct(sd.Name, fields...), nil

	default:
		return nil, fmt.Errorf("tinybuf: %s: unknown descriptor kind", path)
	}
}

func primFromJSON(p PrimKind, v interface{}, path string) (*Value, error) {
	switch p {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected number, got %T", path, v)
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("tinybuf: %s: expected integer, got %v", path, f)
		}
		return Int(int64(f)), nil

	case PrimUint8, PrimUint16, PrimUint32, PrimUint64:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected number, got %T", path, v)
		}
		if f != math.Trunc(f) || f < 0 {
			return nil, fmt.Errorf("tinybuf: %s: expected unsigned integer, got %v", path, f)
		}
		return Uint(uint64(f)), nil

	case PrimFloat32, PrimFloat64:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected number, got %T", path, v)
		}
		return Float(f), nil

	case PrimBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected bool, got %T", path, v)
		}
		return Bool(b), nil

	case PrimStr:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected string, got %T", path, v)
		}
		return Str(s), nil

	case PrimBytes:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("tinybuf: %s: expected base64 string, got %T", path, v)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("tinybuf: %s: bad base64: %w", path, err)
		}
		return Bytes(raw), nil

	default:
		return nil, fmt.Errorf("tinybuf: %s: unknown primitive kind", path)
	}
}

// ToJSON converts a value of the named type to JSON bytes. Absent
// optionals emit null; bytes emit base64.
func ToJSON(g *TypeGraph, typeName string, v *Value) ([]byte, error) {
	d, ok := g.Descriptor(typeName)
	if !ok {
		return nil, &UnknownTypeError{Name: typeName}
	}
	return ToJSONValue(d, v)
}

// ToJSONValue converts a value against an arbitrary descriptor.
func ToJSONValue(d *Descriptor, v *Value) ([]byte, error) {
	out, err := toJSON(d, v, d.String())
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func toJSON(d *Descriptor, v *Value, path string) (interface{}, error) {
	switch d.Kind {
	case DescPrim:
		return primToJSON(d.Prim, v, path)

	case DescOptional:
		if v.IsNull() {
			return nil, nil
		}
		return toJSON(d.Elem, v, path)

	case DescList:
		elems, err := v.AsList()
		if err != nil {
			return nil, fmt.Errorf("tinybuf: %s: %w", path, err)
		}
		out := make([]interface{}, 0, len(elems))
		for i, e := range elems {
			je, err := toJSON(d.Elem, e, elemPath(path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, je)
		}
		return out, nil

	case DescStruct:
		if _, err := v.AsStruct(); err != nil {
			return nil, fmt.Errorf("tinybuf: %s: %w", path, err)
		}
		out := make(map[string]interface{}, len(d.Struct.Fields))
		for _, fd := range d.Struct.Fields {
			fv := v.Get(fd.Name)
			jf, err := toJSON(fd.Type, fv, path+"."+fd.Name)
			if err != nil {
				return nil, err
			}
			out[fd.Name] = jf
		}
		return out, nil

	default:
		return nil, fmt.Errorf("tinybuf: %s: unknown descriptor kind", path)
	}
}

func primToJSON(p PrimKind, v *Value, path string) (interface{}, error) {
	var out interface{}
	var err error
	switch p {
	case PrimInt8, PrimInt16, PrimInt32, PrimInt64:
		out, err = v.AsInt()
	case PrimUint8, PrimUint16, PrimUint32, PrimUint64:
		out, err = v.AsUint()
	case PrimFloat32, PrimFloat64:
		out, err = v.AsFloat()
	case PrimBool:
		out, err = v.AsBool()
	case PrimStr:
		out, err = v.AsStr()
	case PrimBytes:
		var raw []byte
		raw, err = v.AsBytes()
		if err == nil {
			out = base64.StdEncoding.EncodeToString(raw)
		}
	default:
		err = fmt.Errorf("unknown primitive kind")
	}
	if err != nil {
		return nil, fmt.Errorf("tinybuf: %s: %w", path, err)
	}
	return out, nil
}
