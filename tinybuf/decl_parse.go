package tinybuf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Line-based declaration text. The core engine consumes []RawDecl; this
// parser is the loader that produces them from the TinyBuf declaration
// dialect:
//
//	// a point in the plane
//	type Point
//	  x int32
//	  y int32
//
// A "type Name" line opens a declaration; every following "field type..."
// line adds a field until the next header. Type words apply left to
// right, so "list optional int32" is a list of optional int32, and a
// final word that is not a builtin primitive references a declared type.

// DeclError reports a malformed declaration line.
type DeclError struct {
	Line   int
	Reason string
}

func (e *DeclError) Error() string {
	return fmt.Sprintf("tinybuf: declarations line %d: %s", e.Line, e.Reason)
}

// ParseDecls parses declaration text into a raw declaration set. Name
// collisions are left to the resolver; ParseDecls only rejects what the
// line grammar cannot express.
func ParseDecls(src string) ([]RawDecl, error) {
	return LoadDecls(strings.NewReader(src))
}

// LoadDecls is ParseDecls over a reader, for loading from files.
func LoadDecls(r io.Reader) ([]RawDecl, error) {
	var decls []RawDecl
	var cur *RawDecl

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		// Strip comments and surrounding whitespace.
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		words := strings.Fields(line)
		if words[0] == "type" {
			if len(words) != 2 {
				return nil, &DeclError{Line: lineNo, Reason: "type header must be: type Name"}
			}
			name := words[1]
			if _, ok := ParsePrim(name); ok {
				return nil, &DeclError{Line: lineNo, Reason: fmt.Sprintf("type name %q shadows a builtin primitive", name)}
			}
			if name == "optional" || name == "list" || name == "type" {
				return nil, &DeclError{Line: lineNo, Reason: fmt.Sprintf("type name %q is reserved", name)}
			}
			decls = append(decls, RawDecl{Name: name})
			cur = &decls[len(decls)-1]
			continue
		}

		if cur == nil {
			return nil, &DeclError{Line: lineNo, Reason: "field before any type header"}
		}
		if len(words) < 2 {
			return nil, &DeclError{Line: lineNo, Reason: "field must be: name type..."}
		}
		expr, err := parseTypeWords(words[1:], lineNo)
		if err != nil {
			return nil, err
		}
		cur.Fields = append(cur.Fields, RawField{Name: words[0], Type: expr})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tinybuf: read declarations: %w", err)
	}
	return decls, nil
}

// parseTypeWords parses a space-separated type expression, recursing
// through higher-order wrappers.
func parseTypeWords(words []string, lineNo int) (TypeExpr, error) {
	switch words[0] {
	case "optional", "list":
		if len(words) == 1 {
			return TypeExpr{}, &DeclError{Line: lineNo, Reason: words[0] + " needs an inner type"}
		}
		inner, err := parseTypeWords(words[1:], lineNo)
		if err != nil {
			return TypeExpr{}, err
		}
		if words[0] == "optional" {
			return OptionalOf(inner), nil
		}
		return ListOf(inner), nil
	}

	if len(words) != 1 {
		return TypeExpr{}, &DeclError{Line: lineNo, Reason: fmt.Sprintf("trailing words after type %q", words[0])}
	}
	if p, ok := ParsePrim(words[0]); ok {
		return Prim(p), nil
	}
	// Not a builtin: a reference to a user type, bound at resolution.
	return Ref(words[0]), nil
}
