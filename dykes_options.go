package dykes

import (
	"reflect"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"github.com/pathunstrom/dykes/argparse"
)

// Descriptor is the finished configuration of one option. It is immutable;
// slots that were never set are left out when it is materialized.
type Descriptor struct {
	dest  string
	slots optionSlots
}

type optionSlots struct {
	typ      Maybe[reflect.Type]
	flags    Maybe[[]string]
	help     Maybe[string]
	action   Maybe[Action]
	def      Maybe[any]
	arity    Maybe[Arity]
	constant Maybe[any]
	required Maybe[bool]
	metavar  Maybe[string]
}

// or fills every unset slot of s from fallback.
func (s optionSlots) or(fallback optionSlots) optionSlots {
	return optionSlots{
		typ:      s.typ.Or(fallback.typ),
		flags:    s.flags.Or(fallback.flags),
		help:     s.help.Or(fallback.help),
		action:   s.action.Or(fallback.action),
		def:      s.def.Or(fallback.def),
		arity:    s.arity.Or(fallback.arity),
		constant: s.constant.Or(fallback.constant),
		required: s.required.Or(fallback.required),
		metavar:  s.metavar.Or(fallback.metavar),
	}
}

func (d Descriptor) Dest() string { return d.dest }
func (d Descriptor) Type() Maybe[reflect.Type] { return d.slots.typ }
func (d Descriptor) Help() Maybe[string] { return d.slots.help }
func (d Descriptor) Action() Maybe[Action] { return d.slots.action }
func (d Descriptor) Default() Maybe[any] { return d.slots.def }
func (d Descriptor) Arity() Maybe[Arity] { return d.slots.arity }
func (d Descriptor) Const() Maybe[any] { return d.slots.constant }
func (d Descriptor) Required() Maybe[bool] { return d.slots.required }
func (d Descriptor) Metavar() Maybe[string] { return d.slots.metavar }
func (d Descriptor) IsPositional() bool { return !d.slots.flags.IsSet() }
func (d Descriptor) Flags() Maybe[[]string] {
	flags, ok := d.slots.flags.Get()
	if !ok {
		return None[[]string]()
	}
	return Some(append([]string{}, flags...))
}

// NameOrFlags is what the option is registered under: its flags, or its
// dest for a positional argument.
func (d Descriptor) NameOrFlags() []string {
	if flags, ok := d.slots.flags.Get(); ok {
		return append([]string{}, flags...)
	}
	return []string{d.dest}
}

// ArgOptions materializes the descriptor, one option per set slot.
// A positional argument takes its dest from its name.
func (d Descriptor) ArgOptions() []argparse.ArgOption {
	var opts []argparse.ArgOption
	if !d.IsPositional() {
		opts = append(opts, argparse.WithDest(d.dest))
	}
	if t, ok := d.slots.typ.Get(); ok {
		opts = append(opts, argparse.WithType(t))
	}
	if action, ok := d.slots.action.Get(); ok {
		opts = append(opts, argparse.WithAction(action))
	}
	if def, ok := d.slots.def.Get(); ok {
		opts = append(opts, argparse.WithDefault(def))
	}
	if help, ok := d.slots.help.Get(); ok {
		opts = append(opts, argparse.WithHelp(help))
	}
	if arity, ok := d.slots.arity.Get(); ok {
		opts = append(opts, argparse.WithNargs(arity))
	}
	if c, ok := d.slots.constant.Get(); ok {
		opts = append(opts, argparse.WithConst(c))
	}
	if required, ok := d.slots.required.Get(); ok {
		opts = append(opts, argparse.WithRequired(required))
	}
	if metavar, ok := d.slots.metavar.Get(); ok {
		opts = append(opts, argparse.WithMetavar(metavar))
	}
	return opts
}

// descriptorBuilder keeps what the field's metadata states apart from what
// is inferred from its type and default. Stated values always win.
type descriptorBuilder struct {
	dest     string
	explicit optionSlots
	inferred optionSlots
}

func (b descriptorBuilder) resolved() optionSlots {
	return b.explicit.or(b.inferred)
}

func (b descriptorBuilder) infer(set func(*optionSlots)) descriptorBuilder {
	inferred := b.inferred
	set(&inferred)
	b.inferred = inferred
	return b
}

func (b descriptorBuilder) build() Descriptor {
	return Descriptor{dest: b.dest, slots: b.resolved()}
}

var valueActions = map[Action]bool{
	ActionStore:  true,
	ActionExtend: true,
}

// Synthesize combines a field's type, declared default and metadata into
// the descriptor of its option.
func Synthesize(field Field, expr TypeExpr) (Descriptor, error) {
	d, err := synthesize(field, expr)
	if err != nil {
		return Descriptor{}, annotateDefinitionError(err, "", field.Name)
	}
	return d, nil
}

func synthesize(field Field, expr TypeExpr) (Descriptor, error) {
	origin, err := ResolveOrigin(expr)
	if err != nil {
		return Descriptor{}, err
	}
	md, err := ReadMetadata(expr)
	if err != nil {
		return Descriptor{}, err
	}
	vt, err := valueType(expr)
	if err != nil {
		return Descriptor{}, err
	}

	b := descriptorBuilder{
		dest: field.Name,
		explicit: optionSlots{
			action:   md.Action,
			help:     md.Help,
			flags:    md.Flags,
			arity:    md.Arity,
			required: md.Required,
			metavar:  md.Metavar,
		},
		inferred: optionSlots{
			typ: Some(vt),
			def: field.Default,
		},
	}

	if c, ok := md.Const.Get(); ok {
		converted, err := convertConst(vt, c)
		if err != nil {
			return Descriptor{}, err
		}
		b.explicit.constant = Some(converted)
	}

	if !b.resolved().action.IsSet() && origin.Kind() == reflect.Bool {
		def, _ := b.resolved().def.Get()
		if isTrue(def) {
			b = b.infer(func(s *optionSlots) { s.action = Some(ActionStoreFalse) })
		} else {
			b = b.infer(func(s *optionSlots) { s.action = Some(ActionStoreTrue) })
		}
	}

	action, hasAction := b.resolved().action.Get()
	if hasAction && action.Typeless() {
		b = b.infer(func(s *optionSlots) { s.typ = None[reflect.Type]() })
	}

	// Any action, stated or inferred, makes the field an option.
	if hasAction && !b.resolved().flags.IsSet() {
		b = b.infer(func(s *optionSlots) { s.flags = Some(implicitFlags(field.Name)) })
	}

	if action == ActionCount {
		if def, ok := b.resolved().def.Get(); !ok || isFalsy(def) {
			b = b.infer(func(s *optionSlots) { s.def = Some[any](0) })
		}
	}

	// Only value actions take the implicit list arity; Append collects per occurrence.
	if arity, ok := implicitArity(expr); ok && !b.resolved().arity.IsSet() && (!hasAction || valueActions[action]) {
		b = b.infer(func(s *optionSlots) { s.arity = Some(arity) })
	}

	resolved := b.resolved()
	if origin != ListOrigin {
		if hasAction && action.Collects() {
			return Descriptor{}, definitionErrorf("Action %s stores a list. Declare the field as a slice or array.", action)
		}
		if arity, ok := resolved.arity.Get(); ok && arity.ListValued() {
			return Descriptor{}, definitionErrorf("Arity %s stores a list. Declare the field as a slice or array.", arity)
		}
	}

	if !resolved.flags.IsSet() {
		arity, _ := resolved.arity.Get()
		if resolved.def.IsSet() && arity != Optional && arity != ZeroOrMore {
			return Descriptor{}, definitionErrorf("Positional arguments cannot have defaults without an arity of optional or zero-or-more.")
		}
		b = b.infer(func(s *optionSlots) { s.metavar = Some(strcase.ToKebab(field.Name)) })
	}

	return b.build(), nil
}

// implicitFlags derives "-x" and "--x-name" from a field name.
func implicitFlags(name string) []string {
	kebab := strcase.ToKebab(name)
	r, _ := utf8.DecodeRuneInString(kebab)
	return []string{"-" + string(r), "--" + kebab}
}

// convertConst converts a const given as text (from a struct tag) to the value type.
func convertConst(vt reflect.Type, c any) (any, error) {
	s, ok := c.(string)
	if !ok || vt == nil || !argparse.CanConvert(vt) {
		return c, nil
	}
	v, err := argparse.Convert(vt, s)
	if err != nil {
		return nil, definitionErrorf("Invalid const value: %s", err.Error())
	}
	return v, nil
}

func isTrue(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Bool && rv.Bool()
}

func isFalsy(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}
