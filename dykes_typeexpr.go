package dykes

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
)

// Structural roots of parameterized type expressions.
var (
	ListOrigin    = reflect.TypeOf([]any(nil))
	PointerOrigin = reflect.TypeOf((*any)(nil))
	MapOrigin     = reflect.TypeOf(map[any]any(nil))
)

var (
	annotationType      = reflect.TypeOf((*Annotation)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// TypeExpr is a field type as dykes sees it: a plain type, a parameterized
// type (list, pointer, map), or a type with metadata attached.
type TypeExpr interface {
	fmt.Stringer
	typeExpr()
}

type plainExpr struct {
	t reflect.Type
}

type paramExpr struct {
	origin reflect.Type
	args   []TypeExpr
	length int // array length, -1 otherwise
}

type annotatedExpr struct {
	inner TypeExpr
	meta  []any
}

func (plainExpr) typeExpr()     {}
func (paramExpr) typeExpr()     {}
func (annotatedExpr) typeExpr() {}

func (e plainExpr) String() string {
	return displayTypeName(e.t)
}

func (e paramExpr) String() string {
	args := make([]string, len(e.args))
	for i, a := range e.args {
		args[i] = exprString(a)
	}
	return originName(e.origin) + "[" + strings.Join(args, ", ") + "]"
}

func (e annotatedExpr) String() string {
	parts := []string{exprString(e.inner)}
	for _, m := range e.meta {
		if s, ok := m.(string); ok {
			parts = append(parts, fmt.Sprintf("%q", s))
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", m))
	}
	return "annotated[" + strings.Join(parts, ", ") + "]"
}

func exprString(e TypeExpr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func originName(origin reflect.Type) string {
	switch origin {
	case ListOrigin:
		return "list"
	case PointerOrigin:
		return "pointer"
	case MapOrigin:
		return "map"
	}
	return displayTypeName(origin)
}

func displayTypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Plain wraps t as is, without looking inside it.
func Plain(t reflect.Type) TypeExpr {
	return plainExpr{t: t}
}

// TypeOf derives the expression for the Go type T.
func TypeOf[T any]() TypeExpr {
	return exprOf(reflect.TypeOf((*T)(nil)).Elem())
}

// List is a list with the given element types. Exactly one is supported
// for options; none means string.
func List(elems ...TypeExpr) TypeExpr {
	return paramExpr{origin: ListOrigin, args: elems, length: -1}
}

// Pointer is an optional value of elem.
func Pointer(elem TypeExpr) TypeExpr {
	return paramExpr{origin: PointerOrigin, args: []TypeExpr{elem}, length: -1}
}

// Map is a mapping from key to value. Fields of this shape are rejected.
func Map(key, value TypeExpr) TypeExpr {
	return paramExpr{origin: MapOrigin, args: []TypeExpr{key, value}, length: -1}
}

// Annotated attaches metadata items to inner. A nil inner is malformed and
// rejected by ResolveOrigin.
func Annotated(inner TypeExpr, meta ...any) TypeExpr {
	return annotatedExpr{inner: inner, meta: meta}
}

// FieldExpr derives the expression for a struct field: its Go type, wrapped
// in the metadata read from its struct tag.
func FieldExpr(f reflect.StructField) (TypeExpr, error) {
	expr := exprOf(f.Type)
	meta, err := tagMetadata(f.Tag)
	if err != nil {
		return nil, annotateDefinitionError(err, "", f.Name)
	}
	if len(meta) == 0 {
		return expr, nil
	}
	return Annotated(expr, meta...), nil
}

func exprOf(t reflect.Type) TypeExpr {
	if t == nil {
		return plainExpr{}
	}

	var base TypeExpr
	switch {
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		base = plainExpr{t: t}
	case t.Kind() == reflect.Slice:
		base = paramExpr{origin: ListOrigin, args: []TypeExpr{exprOf(t.Elem())}, length: -1}
	case t.Kind() == reflect.Array:
		base = paramExpr{origin: ListOrigin, args: []TypeExpr{exprOf(t.Elem())}, length: t.Len()}
	case t.Kind() == reflect.Pointer:
		base = paramExpr{origin: PointerOrigin, args: []TypeExpr{exprOf(t.Elem())}, length: -1}
	case t.Kind() == reflect.Map:
		base = paramExpr{origin: MapOrigin, args: []TypeExpr{exprOf(t.Key()), exprOf(t.Elem())}, length: -1}
	default:
		base = plainExpr{t: t}
	}

	// Calling Metadata on the zero value of a pointer or interface would panic.
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && t.Implements(annotationType) {
		return annotatedExpr{inner: base, meta: reflect.Zero(t).Interface().(Annotation).Metadata()}
	}
	return base
}

// ResolveOrigin returns the structural root of expr: plain types resolve to
// themselves, parameterized types to their origin, and annotated types to
// the origin of what they annotate.
func ResolveOrigin(expr TypeExpr) (reflect.Type, error) {
	switch e := expr.(type) {
	case plainExpr:
		if e.t == nil {
			return nil, definitionErrorf("Type expression has no type.")
		}
		return e.t, nil
	case paramExpr:
		return e.origin, nil
	case annotatedExpr:
		if e.inner == nil {
			return nil, definitionErrorf("Annotated without a type or annotations. Please subscript Annotated.")
		}
		return ResolveOrigin(e.inner)
	}
	return nil, definitionErrorf("Unsupported type expression %s.", exprString(expr))
}

// unannotated strips annotation layers, returning nil for a malformed expression.
func unannotated(expr TypeExpr) TypeExpr {
	for {
		a, ok := expr.(annotatedExpr)
		if !ok {
			return expr
		}
		expr = a.inner
	}
}

// valueType is the type each token is converted to: the element type of a
// list or pointer, or the type itself.
func valueType(expr TypeExpr) (reflect.Type, error) {
	switch e := unannotated(expr).(type) {
	case plainExpr:
		return e.t, nil
	case paramExpr:
		switch e.origin {
		case ListOrigin:
			if len(e.args) > 1 {
				fixes := make([]string, len(e.args))
				for i, a := range e.args {
					fixes[i] = "list[" + exprString(a) + "]"
				}
				return nil, definitionErrorf("dykes does not support lists with multiple type values. Convert %s to %s",
					e.String(), strings.Join(fixes, " or "))
			}
			if len(e.args) == 0 {
				return reflect.TypeOf(""), nil
			}
			return elementType(e, e.args[0])
		case PointerOrigin:
			return elementType(e, e.args[0])
		}
		return nil, definitionErrorf("%s fields are not supported.", e.String())
	}
	return nil, definitionErrorf("Unsupported type expression %s.", exprString(expr))
}

func elementType(parent paramExpr, elem TypeExpr) (reflect.Type, error) {
	switch e := unannotated(elem).(type) {
	case plainExpr:
		if e.t == nil {
			return nil, definitionErrorf("%s has no element type.", parent.String())
		}
		return e.t, nil
	case paramExpr:
		return nil, definitionErrorf("Nested collections are not supported: %s.", parent.String())
	}
	return nil, definitionErrorf("Unsupported type expression %s.", parent.String())
}

// implicitArity is the arity a list type implies: Exactly(n) for arrays,
// OneOrMore for anything else.
func implicitArity(expr TypeExpr) (Arity, bool) {
	e, ok := unannotated(expr).(paramExpr)
	if !ok || e.origin != ListOrigin {
		return Arity{}, false
	}
	if e.length > 0 {
		return Exactly(e.length), true
	}
	return OneOrMore, true
}
