package tinybuf

import (
	"bytes"
	"fmt"
)

// Kind represents TinyBuf value kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindStr
	KindBytes
	KindList
	KindStruct
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Value represents a TinyBuf value.
//
// A Value is a dynamic tagged union: exactly one of the internal slots is
// meaningful, selected by the kind. Signed integer primitives of any width
// are carried as int64, unsigned as uint64 and floats as float64; the
// declared width is enforced against the type graph at encode time.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	uintVal  uint64
	floatVal float64
	strVal   string
	bytesVal []byte

	// Container values
	listVal   []*Value
	structVal *StructValue
}

// Field represents a named field value in a struct.
type Field struct {
	Name  string
	Value *Value
}

// StructValue represents a typed struct value.
type StructValue struct {
	TypeName string  // The struct type name (e.g., "Point", "Node")
	Fields   []Field // Field name → value pairs, in declaration order
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value. Null is how an absent optional is spelled.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates a signed integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Uint creates an unsigned integer value.
func Uint(v uint64) *Value {
	return &Value{kind: KindUint, uintVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// Bytes creates a bytes value.
func Bytes(v []byte) *Value {
	return &Value{kind: KindBytes, bytesVal: v}
}

// List creates a list value.
func List(values ...*Value) *Value {
	return &Value{kind: KindList, listVal: values}
}

// Struct creates a typed struct value.
func Struct(typeName string, fields ...Field) *Value {
	return &Value{
		kind: KindStruct,
		structVal: &StructValue{
			TypeName: typeName,
			Fields:   fields,
		},
	}
}

// FieldVal creates a Field for use in Struct construction.
func FieldVal(name string, value *Value) Field {
	return Field{Name: name, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("tinybuf: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the signed integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindInt {
		return 0, fmt.Errorf("tinybuf: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsUint returns the unsigned integer value.
func (v *Value) AsUint() (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindUint {
		return 0, fmt.Errorf("tinybuf: expected uint, got %s", v.kind)
	}
	return v.uintVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindFloat {
		return 0, fmt.Errorf("tinybuf: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindStr {
		return "", fmt.Errorf("tinybuf: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsBytes returns the bytes value.
func (v *Value) AsBytes() ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindBytes {
		return nil, fmt.Errorf("tinybuf: expected bytes, got %s", v.kind)
	}
	return v.bytesVal, nil
}

// AsList returns the list elements.
func (v *Value) AsList() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindList {
		return nil, fmt.Errorf("tinybuf: expected list, got %s", v.kind)
	}
	return v.listVal, nil
}

// AsStruct returns the struct value.
func (v *Value) AsStruct() (*StructValue, error) {
	if v == nil {
		return nil, fmt.Errorf("tinybuf: nil value")
	}
	if v.kind != KindStruct {
		return nil, fmt.Errorf("tinybuf: expected struct, got %s", v.kind)
	}
	return v.structVal, nil
}

// Len returns the length of a list or the field count of a struct.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindList:
		return len(v.listVal)
	case KindStruct:
		return len(v.structVal.Fields)
	default:
		return 0
	}
}

// Get returns a struct field value by name, or nil if not present.
func (v *Value) Get(name string) *Value {
	if v == nil || v.kind != KindStruct {
		return nil
	}
	for _, f := range v.structVal.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th element of a list.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.kind != KindList {
		return nil, fmt.Errorf("tinybuf: not a list")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("tinybuf: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep equality of two values. Nil and Null compare equal.
// Struct values compare by type name, field order, names and values.
func (v *Value) Equal(other *Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.boolVal == other.boolVal
	case KindInt:
		return v.intVal == other.intVal
	case KindUint:
		return v.uintVal == other.uintVal
	case KindFloat:
		return v.floatVal == other.floatVal
	case KindStr:
		return v.strVal == other.strVal
	case KindBytes:
		return bytes.Equal(v.bytesVal, other.bytesVal)
	case KindList:
		if len(v.listVal) != len(other.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(other.listVal[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		a, b := v.structVal, other.structVal
		if a.TypeName != b.TypeName || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return false
			}
			if !a.Fields[i].Value.Equal(b.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns a debug rendering of the value.
func (v *Value) String() string {
	if v.IsNull() {
		return "null"
	}
	switch v.kind {
	case KindBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.intVal)
	case KindUint:
		return fmt.Sprintf("%d", v.uintVal)
	case KindFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case KindStr:
		return fmt.Sprintf("%q", v.strVal)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.bytesVal)
	case KindList:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, e := range v.listVal {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(e.String())
		}
		b.WriteByte(']')
		return b.String()
	case KindStruct:
		var b bytes.Buffer
		b.WriteString(v.structVal.TypeName)
		b.WriteByte('{')
		for i, f := range v.structVal.Fields {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.Name)
			b.WriteByte('=')
			b.WriteString(f.Value.String())
		}
		b.WriteByte('}')
		return b.String()
	default:
		return "unknown"
	}
}
