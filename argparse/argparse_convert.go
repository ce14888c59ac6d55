package argparse

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
	"github.com/xhit/go-str2duration/v2"
)

var (
	stringType          = reflect.TypeOf("")
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// CanConvert reports whether tokens can be converted into values of type t.
func CanConvert(t reflect.Type) bool {
	if t == nil {
		return true
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) || t == durationType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Convert turns a single token into a value of type t. A nil t keeps the token as a string.
// Named types come back as themselves, so a token converted to a `type Path string` is a Path.
func Convert(t reflect.Type, raw string) (any, error) {
	if t == nil {
		return raw, nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid %s value: %q (%s)", typeName(t), raw, err.Error())
		}
		return ptr.Elem().Interface(), nil
	}

	if t == durationType {
		d, err := str2duration.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %q", raw)
		}
		return d, nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := parseBoolValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value: %q", raw)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %q", typeName(t), raw)
		}
		if v.OverflowInt(n) {
			return nil, fmt.Errorf("%s value out of range: %q", typeName(t), raw)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %q", typeName(t), raw)
		}
		if v.OverflowUint(n) {
			return nil, fmt.Errorf("%s value out of range: %q", typeName(t), raw)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %q", typeName(t), raw)
		}
		if v.OverflowFloat(f) {
			return nil, fmt.Errorf("%s value out of range: %q", typeName(t), raw)
		}
		v.SetFloat(f)
	default:
		return nil, fmt.Errorf("unsupported value type %s", t)
	}
	return v.Interface(), nil
}

// parseBoolValue parses a string value as a boolean, supporting standard formats and 0/1
func parseBoolValue(value string) (bool, error) {
	return cast.ToBoolE(value)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "str"
	}
	if t == durationType {
		return "duration"
	}
	switch t.Kind() {
	case reflect.String:
		if t == stringType {
			return "str"
		}
	case reflect.Float32, reflect.Float64:
		if t.Name() == "float64" || t.Name() == "float32" {
			return "float"
		}
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
