package dykes

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedDefaults struct {
	Path    string
	DryRun  bool           `default:"true"`
	Limit   int            `default:"10"`
	Tags    []string       `default:"a, b"`
	Timeout *time.Duration `default:"1m"`
	Note    string         `default:""`
	hidden  int
	Skipped string `dykes:"-"`
}

type orderedDefaults struct {
	Name      string
	Color     string
	Verbosity Count
}

func (orderedDefaults) Defaults() []any {
	return []any{nil, 2}
}

type pointerDefaults struct {
	A int
	B int
}

func (*pointerDefaults) Defaults() []any {
	return []any{3}
}

type tooManyDefaults struct {
	A string
}

func (tooManyDefaults) Defaults() []any {
	return []any{1, 2}
}

type mixedDefaults struct {
	A string `default:"x"`
}

func (mixedDefaults) Defaults() []any {
	return nil
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestExtractFieldsNamed(t *testing.T) {
	fields, err := ExtractFields(reflect.TypeOf(namedDefaults{}))
	require.NoError(t, err)
	require.Equal(t, []string{"Path", "DryRun", "Limit", "Tags", "Timeout", "Note"}, fieldNames(fields))

	assert.Equal(t, None[any](), fields[0].Default)
	assert.Equal(t, Some[any](true), fields[1].Default)
	assert.Equal(t, Some[any](10), fields[2].Default)
	assert.Equal(t, Some[any]([]string{"a", "b"}), fields[3].Default)
	assert.Equal(t, Some[any](time.Minute), fields[4].Default)
	assert.Equal(t, Some[any](""), fields[5].Default)
	assert.Equal(t, "Limit", fields[2].StructField.Name)
}

func TestExtractFieldsAcceptsPointer(t *testing.T) {
	fields, err := ExtractFields(reflect.TypeOf(&namedDefaults{}))
	require.NoError(t, err)
	assert.Len(t, fields, 6)
}

func TestExtractFieldsOrdered(t *testing.T) {
	fields, err := ExtractFields(reflect.TypeOf(orderedDefaults{}))
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Color", "Verbosity"}, fieldNames(fields))

	assert.False(t, fields[0].Default.IsSet())

	v, ok := fields[1].Default.Get()
	assert.True(t, ok, "an explicit nil default is still a default")
	assert.Nil(t, v)

	assert.Equal(t, Some[any](2), fields[2].Default)
}

func TestExtractFieldsOrderedPointerReceiver(t *testing.T) {
	fields, err := ExtractFields(reflect.TypeOf(pointerDefaults{}))
	require.NoError(t, err)
	assert.Equal(t, None[any](), fields[0].Default)
	assert.Equal(t, Some[any](3), fields[1].Default)
}

func TestExtractFieldsErrors(t *testing.T) {
	type badDefault struct {
		Limit int `default:"ten"`
	}
	type embedded struct {
		namedDefaults
	}
	type renamed struct {
		Name string `dykes:"name"`
	}

	tests := []struct {
		name  string
		typ   reflect.Type
		err   string
		field string
	}{
		{"plain type", reflect.TypeOf(0), "int is not a supported class type. Use a struct, optionally implementing Defaulter.", ""},
		{"nil type", nil, "<nil> is not a supported class type. Use a struct, optionally implementing Defaulter.", ""},
		{"too many defaults", reflect.TypeOf(tooManyDefaults{}), "tooManyDefaults declares 2 defaults for 1 fields.", ""},
		{"mixed shapes", reflect.TypeOf(mixedDefaults{}), "mixedDefaults implements Defaulter and also declares a default tag on A. Use one or the other.", "A"},
		{"bad default", reflect.TypeOf(badDefault{}), `Invalid default for Limit: invalid int value: "ten"`, "Limit"},
		{"embedded", reflect.TypeOf(embedded{}), "Embedded field namedDefaults is not supported. Declare its fields directly.", "namedDefaults"},
		{"renamed", reflect.TypeOf(renamed{}), `Unsupported dykes tag "name" on Name. Only "-" is supported.`, "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFields(tt.typ)
			assert.EqualError(t, err, tt.err)
			assert.ErrorIs(t, err, ErrDefinition)

			var defErr *DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Equal(t, tt.field, defErr.Field)
			assert.NotEmpty(t, defErr.Type)
		})
	}
}

func TestMaybe(t *testing.T) {
	none := None[int]()
	v, ok := none.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, v)

	some := Some(0)
	v, ok = some.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	assert.Equal(t, some, none.Or(some))
	assert.Equal(t, Some(5), Some(5).Or(some))
}
