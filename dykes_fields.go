package dykes

import (
	"reflect"
	"strings"

	"github.com/pathunstrom/dykes/argparse"
)

// Maybe holds a value that may be absent. An absent value is distinct from
// any present one, nil and zero values included.
type Maybe[T any] struct {
	value T
	set   bool
}

// Some returns a set Maybe holding v.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, set: true}
}

// None returns an unset Maybe.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

func (m Maybe[T]) Get() (T, bool) {
	return m.value, m.set
}

func (m Maybe[T]) IsSet() bool {
	return m.set
}

// Or returns m when it is set and fallback otherwise.
func (m Maybe[T]) Or(fallback Maybe[T]) Maybe[T] {
	if m.set {
		return m
	}
	return fallback
}

// Field is one parameter of a definition type, in declaration order.
type Field struct {
	Name        string
	Default     Maybe[any]
	StructField reflect.StructField
}

// Defaulter marks the ordered-field shape: Defaults binds its values to the
// trailing fields of the struct, the way a named tuple binds defaults.
type Defaulter interface {
	Defaults() []any
}

var defaulterType = reflect.TypeOf((*Defaulter)(nil)).Elem()

// ExtractFields lists the parameters of a definition type with their
// declared defaults. The type must be a struct, or a pointer to one.
func ExtractFields(definition reflect.Type) ([]Field, error) {
	t := definition
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		name := displayTypeName(definition)
		err := definitionErrorf("%s is not a supported class type. Use a struct, optionally implementing Defaulter.", name)
		err.Type = name
		return nil, err
	}

	structFields, err := parameterFields(t)
	if err != nil {
		return nil, annotateDefinitionError(err, displayTypeName(t), "")
	}

	var fields []Field
	if defaults, ok := declaredDefaults(t); ok {
		fields, err = orderedFields(t, structFields, defaults)
	} else {
		fields, err = namedFields(structFields)
	}
	if err != nil {
		return nil, annotateDefinitionError(err, displayTypeName(t), "")
	}
	return fields, nil
}

// parameterFields returns the exported fields of t that are not skipped with dykes:"-".
func parameterFields(t reflect.Type) ([]reflect.StructField, error) {
	var out []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if tag, ok := f.Tag.Lookup("dykes"); ok {
			if tag == "-" {
				continue
			}
			err := definitionErrorf("Unsupported dykes tag %q on %s. Only \"-\" is supported.", tag, f.Name)
			err.Field = f.Name
			return nil, err
		}
		if f.Anonymous {
			err := definitionErrorf("Embedded field %s is not supported. Declare its fields directly.", f.Name)
			err.Field = f.Name
			return nil, err
		}
		if !f.IsExported() {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func declaredDefaults(t reflect.Type) ([]any, bool) {
	switch {
	case t.Implements(defaulterType):
		return reflect.Zero(t).Interface().(Defaulter).Defaults(), true
	case reflect.PointerTo(t).Implements(defaulterType):
		return reflect.New(t).Interface().(Defaulter).Defaults(), true
	}
	return nil, false
}

func orderedFields(t reflect.Type, structFields []reflect.StructField, defaults []any) ([]Field, error) {
	if len(defaults) > len(structFields) {
		return nil, definitionErrorf("%s declares %d defaults for %d fields.", displayTypeName(t), len(defaults), len(structFields))
	}

	first := len(structFields) - len(defaults)
	fields := make([]Field, 0, len(structFields))
	for i, sf := range structFields {
		if _, ok := sf.Tag.Lookup("default"); ok {
			err := definitionErrorf("%s implements Defaulter and also declares a default tag on %s. Use one or the other.", displayTypeName(t), sf.Name)
			err.Field = sf.Name
			return nil, err
		}
		f := Field{Name: sf.Name, StructField: sf}
		if i >= first {
			f.Default = Some(defaults[i-first])
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func namedFields(structFields []reflect.StructField) ([]Field, error) {
	fields := make([]Field, 0, len(structFields))
	for _, sf := range structFields {
		f := Field{Name: sf.Name, StructField: sf}
		if raw, ok := sf.Tag.Lookup("default"); ok {
			v, err := convertDefault(sf.Type, raw)
			if err != nil {
				e := definitionErrorf("Invalid default for %s: %s", sf.Name, err.Error())
				e.Field = sf.Name
				return nil, e
			}
			f.Default = Some(v)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// convertDefault converts a default tag to the field type. Lists are
// comma-separated; pointers take a value of their element type.
func convertDefault(t reflect.Type, raw string) (any, error) {
	if argparse.CanConvert(t) {
		return argparse.Convert(t, raw)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return convertDefault(t.Elem(), raw)
	case reflect.Slice, reflect.Array:
		var parts []string
		if raw != "" {
			parts = strings.Split(raw, ",")
		}
		list := reflect.MakeSlice(reflect.SliceOf(t.Elem()), 0, len(parts))
		for _, part := range parts {
			v, err := argparse.Convert(t.Elem(), strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			list = reflect.Append(list, reflect.ValueOf(v))
		}
		return list.Interface(), nil
	}
	return argparse.Convert(t, raw)
}
