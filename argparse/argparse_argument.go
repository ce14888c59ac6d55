package argparse

import (
	"fmt"
	"reflect"
	"strings"
)

// Argument is one registered positional argument or option.
type Argument struct {
	Dest       string       // Namespace key the parsed value is stored under
	Flags      []string     // Option strings (e.g. "-v", "--verbose"); empty for positional arguments
	Type       reflect.Type // Value type tokens are converted to (nil means string)
	Action     Action       // How tokens are consumed and stored
	Default    any          // Value used when the argument is absent
	HasDefault bool         // Whether Default was supplied (a nil Default may be intentional)
	Const      any          // Value stored by const actions and by a bare "?" option
	HasConst   bool
	Help       string // Help text shown in usage
	Nargs      Nargs  // Token count; the zero value is a single scalar token
	Required   bool   // Options only: whether the option must be supplied
	Metavar    string // Name shown for the value in usage
}

type ArgOption func(*Argument)

func WithType(t reflect.Type) ArgOption {
	return func(a *Argument) {
		a.Type = t
	}
}

func WithDest(dest string) ArgOption {
	return func(a *Argument) {
		a.Dest = dest
	}
}

func WithAction(action Action) ArgOption {
	return func(a *Argument) {
		a.Action = action
	}
}

func WithDefault(v any) ArgOption {
	return func(a *Argument) {
		a.Default = v
		a.HasDefault = true
	}
}

func WithConst(v any) ArgOption {
	return func(a *Argument) {
		a.Const = v
		a.HasConst = true
	}
}

func WithHelp(help string) ArgOption {
	return func(a *Argument) {
		a.Help = help
	}
}

func WithNargs(n Nargs) ArgOption {
	return func(a *Argument) {
		a.Nargs = n
	}
}

func WithRequired(required bool) ArgOption {
	return func(a *Argument) {
		a.Required = required
	}
}

func WithMetavar(metavar string) ArgOption {
	return func(a *Argument) {
		a.Metavar = metavar
	}
}

// IsPositional reports whether the argument is consumed by position.
func (a *Argument) IsPositional() bool {
	return len(a.Flags) == 0
}

// AddArgument registers a positional argument (a single name without dashes)
// or an option (one or more dash-prefixed flags).
func (p *Parser) AddArgument(nameOrFlags []string, opts ...ArgOption) error {
	if len(nameOrFlags) == 0 {
		return NewProgrammingError("argument name cannot be empty")
	}

	arg := &Argument{Action: Store}
	dashed := 0
	for _, name := range nameOrFlags {
		if name == "" {
			return NewProgrammingError("argument name cannot be empty")
		}
		if strings.HasPrefix(name, "-") {
			dashed++
		}
	}

	switch {
	case dashed == len(nameOrFlags):
		arg.Flags = append([]string{}, nameOrFlags...)
		arg.Dest = destFromFlags(nameOrFlags)
	case dashed == 0 && len(nameOrFlags) == 1:
		arg.Dest = nameOrFlags[0]
	case dashed == 0:
		return NewProgrammingError(fmt.Sprintf("invalid option strings %q: a positional argument takes exactly one name", nameOrFlags))
	default:
		return NewProgrammingError(fmt.Sprintf("invalid option strings %q: cannot mix positional names and flags", nameOrFlags))
	}

	positionalDest := arg.Dest
	for _, opt := range opts {
		opt(arg)
	}
	if arg.IsPositional() && arg.Dest != positionalDest {
		return NewProgrammingError(fmt.Sprintf("dest supplied twice for positional argument %q", positionalDest))
	}

	if err := p.validateArgument(arg); err != nil {
		return err
	}

	for _, flag := range arg.Flags {
		if _, exists := p.byFlag[flag]; exists {
			return NewProgrammingError(fmt.Sprintf("conflicting option string: %s", flag))
		}
	}
	for _, flag := range arg.Flags {
		p.byFlag[flag] = arg
	}

	p.args = append(p.args, arg)
	if arg.IsPositional() {
		p.positional = append(p.positional, arg)
	} else {
		p.optionals = append(p.optionals, arg)
	}
	return nil
}

func (p *Parser) validateArgument(arg *Argument) error {
	if _, err := ParseAction(string(arg.Action)); err != nil {
		return NewProgrammingError(err.Error())
	}

	if arg.Dest == "" {
		return NewProgrammingError(fmt.Sprintf("argument %s has no dest", arg.displayName()))
	}

	for _, flag := range arg.Flags {
		if flag == "-" || flag == "--" {
			return NewProgrammingError(fmt.Sprintf("invalid option string %q", flag))
		}
	}

	if !arg.Action.TakesValues() {
		if !arg.Nargs.IsZero() {
			return NewProgrammingError(fmt.Sprintf("nargs must be unset for %s action on %s", arg.Action, arg.displayName()))
		}
		if arg.IsPositional() {
			return NewProgrammingError(fmt.Sprintf("%s action requires option strings (%s is positional)", arg.Action, arg.displayName()))
		}
	}

	if (arg.Action == StoreConst || arg.Action == AppendConst) && !arg.HasConst {
		return NewProgrammingError(fmt.Sprintf("%s action on %s requires a const value", arg.Action, arg.displayName()))
	}

	if arg.Action.TakesValues() && arg.Nargs == Exactly(0) {
		return NewProgrammingError(fmt.Sprintf("nargs for %s actions must be != 0 (%s)", arg.Action, arg.displayName()))
	}

	if arg.Action.TakesValues() && !CanConvert(arg.Type) {
		return NewProgrammingError(fmt.Sprintf("no conversion from command-line tokens to %s for %s", arg.Type, arg.displayName()))
	}

	if arg.IsPositional() && arg.Required {
		return NewProgrammingError(fmt.Sprintf("required is an invalid argument for positionals (%s)", arg.displayName()))
	}

	return nil
}

// destFromFlags prefers the first long flag, falling back to the first short one.
func destFromFlags(flags []string) string {
	chosen := flags[0]
	for _, f := range flags {
		if strings.HasPrefix(f, "--") {
			chosen = f
			break
		}
	}
	return strings.ReplaceAll(strings.TrimLeft(chosen, "-"), "-", "_")
}

func (a *Argument) displayName() string {
	if a.IsPositional() {
		return a.metavarOrDefault()
	}
	return strings.Join(a.Flags, "/")
}

func (a *Argument) metavarOrDefault() string {
	if a.Metavar != "" {
		return a.Metavar
	}
	if a.IsPositional() {
		return a.Dest
	}
	return strings.ToUpper(a.Dest)
}

// valueType is the element type tokens are converted to.
func (a *Argument) valueType() reflect.Type {
	if a.Type == nil {
		return stringType
	}
	return a.Type
}

// storedType is the type of the namespace entry the action writes.
func (a *Argument) storedType() reflect.Type {
	switch a.Action {
	case StoreTrue, StoreFalse:
		return reflect.TypeOf(false)
	case Count:
		return reflect.TypeOf(0)
	case StoreConst:
		return typeOfOrString(a.Const)
	case AppendConst:
		return reflect.SliceOf(typeOfOrString(a.Const))
	case Extend:
		return reflect.SliceOf(a.valueType())
	case Append:
		if a.Nargs.ListValued() {
			return reflect.SliceOf(reflect.SliceOf(a.valueType()))
		}
		return reflect.SliceOf(a.valueType())
	}
	if a.Nargs.ListValued() {
		return reflect.SliceOf(a.valueType())
	}
	return a.valueType()
}

func typeOfOrString(v any) reflect.Type {
	if v == nil {
		return stringType
	}
	return reflect.TypeOf(v)
}
