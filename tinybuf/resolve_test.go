package tinybuf

import (
	"errors"
	"testing"
)

func TestResolve_Simple(t *testing.T) {
	decls := []RawDecl{
		{Name: "Point", Fields: []RawField{
			{Name: "x", Type: Prim(PrimInt32)},
			{Name: "y", Type: Prim(PrimInt32)},
		}},
	}
	graph, err := Resolve(decls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	sd, ok := graph.Lookup("Point")
	if !ok {
		t.Fatal("Point not in graph")
	}
	if len(sd.Fields) != 2 || sd.Fields[0].Name != "x" || sd.Fields[1].Name != "y" {
		t.Errorf("unexpected fields: %+v", sd.Fields)
	}
	if sd.Fields[0].Type.Kind != DescPrim || sd.Fields[0].Type.Prim != PrimInt32 {
		t.Errorf("x descriptor = %s", sd.Fields[0].Type)
	}
}

func TestResolve_ForwardReference(t *testing.T) {
	// Leaf is declared after the type referencing it.
	decls := []RawDecl{
		{Name: "Tree", Fields: []RawField{
			{Name: "leaves", Type: ListOf(Ref("Leaf"))},
		}},
		{Name: "Leaf", Fields: []RawField{
			{Name: "label", Type: Prim(PrimStr)},
		}},
	}
	graph, err := Resolve(decls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	tree, _ := graph.Lookup("Tree")
	leaf, _ := graph.Lookup("Leaf")
	if tree.Fields[0].Type.Elem.Struct != leaf {
		t.Error("Tree.leaves element should be the shared Leaf descriptor")
	}
}

func TestResolve_SharedHandles(t *testing.T) {
	// Two references to the same name bind to one descriptor instance.
	decls := []RawDecl{
		{Name: "Pair", Fields: []RawField{
			{Name: "a", Type: Ref("Point")},
			{Name: "b", Type: Ref("Point")},
		}},
		{Name: "Point", Fields: []RawField{
			{Name: "x", Type: Prim(PrimInt32)},
		}},
	}
	graph, err := Resolve(decls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	pair, _ := graph.Lookup("Pair")
	point, _ := graph.Lookup("Point")
	if pair.Fields[0].Type.Struct != point || pair.Fields[1].Type.Struct != point {
		t.Error("both Pair fields should share the Point descriptor instance")
	}
}

func TestResolve_SelfRecursive(t *testing.T) {
	decls := []RawDecl{
		{Name: "Node", Fields: []RawField{
			{Name: "value", Type: Prim(PrimInt32)},
			{Name: "next", Type: OptionalOf(Ref("Node"))},
		}},
	}
	graph, err := Resolve(decls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	node, _ := graph.Lookup("Node")
	next := node.Fields[1].Type
	if next.Kind != DescOptional {
		t.Fatalf("next kind = %v", next.Kind)
	}
	if next.Elem.Struct != node {
		t.Error("Node.next should point back at the Node descriptor itself")
	}
}

func TestResolve_MutuallyRecursive(t *testing.T) {
	decls := []RawDecl{
		{Name: "A", Fields: []RawField{{Name: "b", Type: OptionalOf(Ref("B"))}}},
		{Name: "B", Fields: []RawField{{Name: "a", Type: OptionalOf(Ref("A"))}}},
	}
	graph, err := Resolve(decls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	a, _ := graph.Lookup("A")
	b, _ := graph.Lookup("B")
	if a.Fields[0].Type.Elem.Struct != b {
		t.Error("A.b should share the B descriptor")
	}
	if b.Fields[0].Type.Elem.Struct != a {
		t.Error("B.a should share the A descriptor")
	}
}

func TestResolve_UnknownType(t *testing.T) {
	decls := []RawDecl{
		{Name: "Car", Fields: []RawField{
			{Name: "engine", Type: Ref("Engine")},
		}},
	}
	_, err := Resolve(decls)
	var ue *UnknownTypeError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnknownTypeError", err)
	}
	if ue.Name != "Engine" || ue.Type != "Car" || ue.Field != "engine" {
		t.Errorf("error context = %+v", ue)
	}
}

func TestResolve_UnknownTypeNested(t *testing.T) {
	decls := []RawDecl{
		{Name: "Fleet", Fields: []RawField{
			{Name: "cars", Type: ListOf(OptionalOf(Ref("Car")))},
		}},
	}
	_, err := Resolve(decls)
	var ue *UnknownTypeError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnknownTypeError", err)
	}
	if ue.Name != "Car" {
		t.Errorf("unknown name = %q, want Car", ue.Name)
	}
}

func TestResolve_DuplicateType(t *testing.T) {
	decls := []RawDecl{
		{Name: "Point", Fields: []RawField{{Name: "x", Type: Prim(PrimInt32)}}},
		{Name: "Point", Fields: []RawField{{Name: "y", Type: Prim(PrimInt32)}}},
	}
	_, err := Resolve(decls)
	var de *DuplicateTypeError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want DuplicateTypeError", err)
	}
	if de.Name != "Point" {
		t.Errorf("duplicate name = %q", de.Name)
	}
}

func TestResolve_DuplicateField(t *testing.T) {
	decls := []RawDecl{
		{Name: "Point", Fields: []RawField{
			{Name: "x", Type: Prim(PrimInt32)},
			{Name: "x", Type: Prim(PrimInt64)},
		}},
	}
	_, err := Resolve(decls)
	var de *DuplicateFieldError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want DuplicateFieldError", err)
	}
	if de.Type != "Point" || de.Field != "x" {
		t.Errorf("error context = %+v", de)
	}
}

func TestResolve_FailureYieldsNoGraph(t *testing.T) {
	// A bad reference anywhere fails the whole set; the valid Point
	// declaration must not be usable as a side effect.
	decls := []RawDecl{
		{Name: "Point", Fields: []RawField{{Name: "x", Type: Prim(PrimInt32)}}},
		{Name: "Bad", Fields: []RawField{{Name: "y", Type: Ref("Missing")}}},
	}
	graph, err := Resolve(decls)
	if err == nil {
		t.Fatal("Resolve should fail")
	}
	if graph != nil {
		t.Error("failed Resolve should return a nil graph")
	}
}

func TestResolve_GraphOrder(t *testing.T) {
	decls := []RawDecl{
		{Name: "B", Fields: []RawField{{Name: "x", Type: Prim(PrimBool)}}},
		{Name: "A", Fields: []RawField{{Name: "y", Type: Prim(PrimBool)}}},
	}
	graph, err := Resolve(decls)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	names := graph.Names()
	if len(names) != 2 || names[0] != "B" || names[1] != "A" {
		t.Errorf("Names = %v, want [B A]", names)
	}
	if graph.Len() != 2 {
		t.Errorf("Len = %d, want 2", graph.Len())
	}
}
