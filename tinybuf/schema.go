package tinybuf

// PrimKind identifies a builtin primitive type.
type PrimKind uint8

const (
	PrimInt8 PrimKind = iota
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimBool
	PrimStr
	PrimBytes
)

// primNames is the fixed builtin table, indexed by PrimKind.
var primNames = [...]string{
	PrimInt8:    "int8",
	PrimInt16:   "int16",
	PrimInt32:   "int32",
	PrimInt64:   "int64",
	PrimUint8:   "uint8",
	PrimUint16:  "uint16",
	PrimUint32:  "uint32",
	PrimUint64:  "uint64",
	PrimFloat32: "float32",
	PrimFloat64: "float64",
	PrimBool:    "bool",
	PrimStr:     "string",
	PrimBytes:   "bytes",
}

// String returns the primitive name as written in declarations.
func (p PrimKind) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "unknown"
}

// Width returns the fixed wire width in bytes, or 0 for variable-size
// primitives (string, bytes).
func (p PrimKind) Width() int {
	switch p {
	case PrimInt8, PrimUint8, PrimBool:
		return 1
	case PrimInt16, PrimUint16:
		return 2
	case PrimInt32, PrimUint32, PrimFloat32:
		return 4
	case PrimInt64, PrimUint64, PrimFloat64:
		return 8
	default:
		return 0
	}
}

// ParsePrim looks a name up in the builtin primitive table.
func ParsePrim(name string) (PrimKind, bool) {
	for k, n := range primNames {
		if n == name {
			return PrimKind(k), true
		}
	}
	return 0, false
}

// ============================================================
// Type Expressions (unresolved, input form)
// ============================================================

// ExprKind indicates the kind of a type expression.
type ExprKind uint8

const (
	ExprPrim ExprKind = iota
	ExprOptional
	ExprList
	ExprRef
)

// TypeExpr is an unresolved, possibly forward-referencing description of a
// type as written in a declaration. Pure data; the resolver turns it into
// a Descriptor.
type TypeExpr struct {
	Kind  ExprKind
	Prim  PrimKind  // For Kind == ExprPrim
	Inner *TypeExpr // For Kind == ExprOptional / ExprList
	Name  string    // For Kind == ExprRef
}

// Prim creates a primitive type expression.
func Prim(k PrimKind) TypeExpr {
	return TypeExpr{Kind: ExprPrim, Prim: k}
}

// OptionalOf creates an optional-wrapper type expression.
func OptionalOf(inner TypeExpr) TypeExpr {
	e := inner
	return TypeExpr{Kind: ExprOptional, Inner: &e}
}

// ListOf creates a list-wrapper type expression.
func ListOf(elem TypeExpr) TypeExpr {
	e := elem
	return TypeExpr{Kind: ExprList, Inner: &e}
}

// Ref creates a named reference to a user-declared type.
func Ref(name string) TypeExpr {
	return TypeExpr{Kind: ExprRef, Name: name}
}

// String renders the expression in declaration syntax.
func (e TypeExpr) String() string {
	switch e.Kind {
	case ExprPrim:
		return e.Prim.String()
	case ExprOptional:
		return "optional " + e.Inner.String()
	case ExprList:
		return "list " + e.Inner.String()
	case ExprRef:
		return e.Name
	default:
		return "unknown"
	}
}

// RawField is a single field of a raw declaration.
type RawField struct {
	Name string
	Type TypeExpr
}

// RawDecl is one user type declaration as produced by the loader.
// Field order is wire order.
type RawDecl struct {
	Name   string
	Fields []RawField
}

// ============================================================
// Descriptors (resolved, closed form)
// ============================================================

// DescKind indicates the kind of a resolved descriptor.
type DescKind uint8

const (
	DescPrim DescKind = iota
	DescOptional
	DescList
	DescStruct
)

// Descriptor is the resolved, closed-form representation of a type.
// References have been bound: a DescStruct holds a shared *StructDesc
// handle, so cyclic type graphs are shared pointers, never expansions.
type Descriptor struct {
	Kind   DescKind
	Prim   PrimKind    // For Kind == DescPrim
	Elem   *Descriptor // For Kind == DescOptional / DescList
	Struct *StructDesc // For Kind == DescStruct
}

// FieldDesc is a resolved struct field.
type FieldDesc struct {
	Name string
	Type *Descriptor
}

// StructDesc is the resolved form of a user type declaration. Every
// reference to the same type name in a graph points at the same instance.
type StructDesc struct {
	Name   string
	Fields []FieldDesc
}

// Field returns the field descriptor with the given name, or nil.
func (sd *StructDesc) Field(name string) *FieldDesc {
	for i := range sd.Fields {
		if sd.Fields[i].Name == name {
			return &sd.Fields[i]
		}
	}
	return nil
}

// String renders the descriptor for diagnostics. Struct descriptors render
// as their name only, which keeps cyclic graphs printable.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Kind {
	case DescPrim:
		return d.Prim.String()
	case DescOptional:
		return "optional " + d.Elem.String()
	case DescList:
		return "list " + d.Elem.String()
	case DescStruct:
		return d.Struct.Name
	default:
		return "unknown"
	}
}

// ============================================================
// Type Graph
// ============================================================

// TypeGraph is the complete set of resolved descriptors for one
// declaration set. It is built once by Resolve and immutable afterward;
// any number of encode/decode calls may share it without synchronization.
type TypeGraph struct {
	types map[string]*StructDesc
	order []string
}

// Lookup returns the resolved struct descriptor for a type name.
func (g *TypeGraph) Lookup(name string) (*StructDesc, bool) {
	sd, ok := g.types[name]
	return sd, ok
}

// Descriptor returns a struct descriptor wrapped as a Descriptor, for use
// with the descriptor-level codec entry points.
func (g *TypeGraph) Descriptor(name string) (*Descriptor, bool) {
	sd, ok := g.types[name]
	if !ok {
		return nil, false
	}
	return &Descriptor{Kind: DescStruct, Struct: sd}, true
}

// Names returns the type names in declaration order.
func (g *TypeGraph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of types in the graph.
func (g *TypeGraph) Len() int {
	return len(g.types)
}
