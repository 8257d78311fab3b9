package tinybuf

import "errors"

// Resolve turns a raw declaration set into an immutable TypeGraph.
//
// Every type expression is replaced by a concrete descriptor and every
// named reference is bound to the struct it names. Each struct resolves
// exactly once; the same *StructDesc handle is reused wherever its name
// is referenced again, so mutually or self-recursive declarations become
// shared pointers in the graph rather than infinite expansions.
//
// Resolution is eager and all-or-nothing: a duplicate type name, a
// duplicate field name, or a reference to an undeclared name fails the
// whole set and no graph is returned.
func Resolve(decls []RawDecl) (*TypeGraph, error) {
	r := &resolver{
		decls:    make(map[string]RawDecl, len(decls)),
		resolved: make(map[string]*StructDesc, len(decls)),
	}

	// Index declarations by name first, rejecting duplicates, so that
	// forward references resolve regardless of declaration order.
	order := make([]string, 0, len(decls))
	for _, d := range decls {
		if _, ok := r.decls[d.Name]; ok {
			return nil, &DuplicateTypeError{Name: d.Name}
		}
		seen := make(map[string]bool, len(d.Fields))
		for _, f := range d.Fields {
			if seen[f.Name] {
				return nil, &DuplicateFieldError{Type: d.Name, Field: f.Name}
			}
			seen[f.Name] = true
		}
		r.decls[d.Name] = d
		order = append(order, d.Name)
	}

	for _, name := range order {
		if _, err := r.structDesc(name); err != nil {
			return nil, err
		}
	}

	return &TypeGraph{types: r.resolved, order: order}, nil
}

type resolver struct {
	decls    map[string]RawDecl
	resolved map[string]*StructDesc
}

// structDesc resolves a declaration by name, memoized. The descriptor is
// registered before its fields resolve so that cyclic references bind to
// the shared handle instead of recursing forever.
func (r *resolver) structDesc(name string) (*StructDesc, error) {
	if sd, ok := r.resolved[name]; ok {
		return sd, nil
	}
	decl, ok := r.decls[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}

	sd := &StructDesc{Name: name, Fields: make([]FieldDesc, 0, len(decl.Fields))}
	r.resolved[name] = sd

	for _, f := range decl.Fields {
		d, err := r.typeDesc(f.Type)
		if err != nil {
			var ue *UnknownTypeError
			if errors.As(err, &ue) && ue.Type == "" {
				ue.Type = decl.Name
				ue.Field = f.Name
			}
			return nil, err
		}
		sd.Fields = append(sd.Fields, FieldDesc{Name: f.Name, Type: d})
	}
	return sd, nil
}

// typeDesc resolves a type expression, recursing through wrappers.
func (r *resolver) typeDesc(e TypeExpr) (*Descriptor, error) {
	switch e.Kind {
	case ExprPrim:
		return &Descriptor{Kind: DescPrim, Prim: e.Prim}, nil
	case ExprOptional:
		inner, err := r.typeDesc(*e.Inner)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: DescOptional, Elem: inner}, nil
	case ExprList:
		elem, err := r.typeDesc(*e.Inner)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: DescList, Elem: elem}, nil
	case ExprRef:
		sd, err := r.structDesc(e.Name)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: DescStruct, Struct: sd}, nil
	default:
		return nil, &UnknownTypeError{Name: e.String()}
	}
}
