package argparse

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrHelpInvoked is returned by ParseOrError when help is invoked (via -h or --help).
// Users can compare against this error to detect when help was requested instead of a parsing error.
var ErrHelpInvoked = errors.New("help invoked")

// ErrVersionInvoked is returned by ParseOrError when a version option was given.
var ErrVersionInvoked = errors.New("version invoked")

// ErrDumpInvoked is returned by ParseOrError when dump is invoked (via WithDump(true)).
var ErrDumpInvoked = errors.New("dump invoked")

// Internal error wrapper to carry exit behaviour for ParseOrExit
type helpInvokedError struct{}

func (e *helpInvokedError) Error() string {
	return ErrHelpInvoked.Error()
}

func (e *helpInvokedError) Unwrap() error {
	return ErrHelpInvoked
}

type versionInvokedError struct{}

func (e *versionInvokedError) Error() string {
	return ErrVersionInvoked.Error()
}

func (e *versionInvokedError) Unwrap() error {
	return ErrVersionInvoked
}

type dumpInvokedError struct{}

func (e *dumpInvokedError) Error() string {
	return ErrDumpInvoked.Error()
}

func (e *dumpInvokedError) Unwrap() error {
	return ErrDumpInvoked
}

// ProgrammingError wraps errors caused by incorrect parser setup.
// These are bugs in the code configuring the parser, not user input errors.
type ProgrammingError struct {
	msg string
}

func (e *ProgrammingError) Error() string {
	return e.msg
}

// NewProgrammingError creates a new programming error
func NewProgrammingError(msg string) *ProgrammingError {
	return &ProgrammingError{msg: msg}
}

// ParseOrExit parses args, terminating the process on help, version, dump or
// invalid input. The returned Namespace is nil only when the exit function
// returns, which happens in tests.
func (p *Parser) ParseOrExit(args []string, opts ...ParseOpt) Namespace {
	ns, err := p.parse(args, opts...)
	if err == nil {
		return ns
	}

	var helpErr *helpInvokedError
	var versionErr *versionInvokedError
	var dumpErr *dumpInvokedError
	var progErr *ProgrammingError
	switch {
	case errors.As(err, &helpErr):
		fmt.Fprint(stdoutWriter, p.GenerateUsage())
		osExit(0)
	case errors.As(err, &versionErr):
		fmt.Fprintln(stdoutWriter, p.version)
		osExit(0)
	case errors.As(err, &dumpErr):
		fmt.Fprint(stdoutWriter, p.GenerateDump(args, opts...))
		osExit(0)
	case errors.As(err, &progErr):
		// Programming error - show only error message (no usage)
		fmt.Fprintln(stderrWriter, err.Error())
		osExit(1)
	default:
		// Regular error - show error message and usage
		fmt.Fprintln(stderrWriter, err.Error())
		fmt.Fprintln(stderrWriter)
		fmt.Fprint(stderrWriter, p.GenerateUsage())
		osExit(1)
	}
	return nil
}

func (p *Parser) ParseOrError(args []string, opts ...ParseOpt) (Namespace, error) {
	ns, err := p.parse(args, opts...)
	if err != nil {
		switch {
		case errors.Is(err, ErrHelpInvoked):
			return nil, ErrHelpInvoked
		case errors.Is(err, ErrVersionInvoked):
			return nil, ErrVersionInvoked
		case errors.Is(err, ErrDumpInvoked):
			return nil, ErrDumpInvoked
		}
		return nil, err
	}
	return ns, nil
}

type parseState struct {
	p           *Parser
	cfg         *parseCfg
	values      Namespace
	seen        map[*Argument]bool
	positionals []string
	numeric     bool
}

func (p *Parser) parse(args []string, opts ...ParseOpt) (Namespace, error) {
	cfg := &parseCfg{}
	for _, opt := range opts {
		opt(cfg)
	}

	// reset state in case this is called multiple times
	p.unknownArgs = []string{}
	p.ensureHelp()

	if cfg.dump {
		return nil, &dumpInvokedError{}
	}

	s := &parseState{
		p:       p,
		cfg:     cfg,
		values:  Namespace{},
		seen:    make(map[*Argument]bool),
		numeric: p.hasNumericFlags(),
	}

	// Set defaults first; actions then build on them
	s.setDefaults()

	i := 0
	seenDashDash := false // Track if we've seen -- and should treat everything as positional
	for i < len(args) {
		arg := args[i]

		if seenDashDash {
			s.positionals = append(s.positionals, arg)
			i++
			continue
		}

		if arg == "--" {
			seenDashDash = true
			i++
			continue
		}

		if s.isFlagToken(arg) {
			consumed, err := s.parseFlag(args, i)
			if err != nil {
				var unknown *unknownFlagError
				if cfg.ignoreUnknown && errors.As(err, &unknown) {
					p.unknownArgs = append(p.unknownArgs, arg)
					i++
					continue
				}
				return nil, err
			}
			i += consumed
			continue
		}

		s.positionals = append(s.positionals, arg)
		i++
	}

	if err := s.assignPositionals(); err != nil {
		return nil, err
	}

	if err := s.validateRequired(); err != nil {
		return nil, err
	}

	return s.values, nil
}

type unknownFlagError struct {
	flag string
}

func (e *unknownFlagError) Error() string {
	if strings.HasPrefix(e.flag, "--") {
		return fmt.Sprintf("unknown flag: %s", e.flag)
	}
	return fmt.Sprintf("unknown shorthand flag: %s", e.flag)
}

func (s *parseState) setDefaults() {
	for _, a := range s.p.args {
		if a.Action.suppressed() {
			continue
		}
		if _, exists := s.values[a.Dest]; exists && !a.HasDefault {
			// another argument sharing this dest already set it
			continue
		}
		switch {
		case a.HasDefault:
			s.values[a.Dest] = copyValue(a.Default)
		case a.Action == StoreTrue:
			s.values[a.Dest] = false
		case a.Action == StoreFalse:
			s.values[a.Dest] = true
		case a.IsPositional() && a.Nargs == ZeroOrMore:
			s.values[a.Dest] = reflect.MakeSlice(a.storedType(), 0, 0).Interface()
		default:
			s.values[a.Dest] = nil
		}
	}
}

// copyValue shallow-copies slices so appending never mutates a registered default.
func copyValue(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}

func (s *parseState) isFlagToken(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if isNegativeNumber(arg) && !s.numeric {
		return false
	}
	return true
}

func (s *parseState) parseFlag(args []string, index int) (int, error) {
	arg := args[index]
	if strings.HasPrefix(arg, "--") {
		return s.parseLongFlag(args, index)
	}
	return s.parseShortFlag(args, index)
}

func (s *parseState) parseLongFlag(args []string, index int) (int, error) {
	flag := args[index]

	// Check for = syntax
	var value string
	var hasValue bool
	if idx := strings.Index(flag, "="); idx != -1 {
		value = flag[idx+1:]
		flag = flag[:idx]
		hasValue = true
	}

	a, exists := s.p.byFlag[flag]
	if !exists {
		return 0, &unknownFlagError{flag: flag}
	}

	return s.consume(a, flag, value, hasValue, args[index+1:])
}

func (s *parseState) parseShortFlag(args []string, index int) (int, error) {
	arg := args[index]

	// Single-dash options may be longer than one character (e.g. -vv registered verbatim)
	if a, exists := s.p.byFlag[arg]; exists {
		return s.consume(a, arg, "", false, args[index+1:])
	}

	// Check for = syntax in short flags (e.g., -o=value)
	if idx := strings.Index(arg, "="); idx == 2 {
		flag := arg[:2]
		a, exists := s.p.byFlag[flag]
		if !exists {
			return 0, &unknownFlagError{flag: flag}
		}
		return s.consume(a, flag, arg[3:], true, args[index+1:])
	}

	// Clustered short flags: every option but the last must take no value;
	// the first value-taking option swallows the rest of the cluster.
	shorts := arg[1:]
	for j := 0; j < len(shorts); j++ {
		flag := "-" + string(shorts[j])
		a, exists := s.p.byFlag[flag]
		if !exists {
			return 0, &unknownFlagError{flag: flag}
		}

		if !a.Action.TakesValues() {
			if _, err := s.consume(a, flag, "", false, nil); err != nil {
				return 0, err
			}
			continue
		}

		rest := strings.TrimPrefix(shorts[j+1:], "=")
		if rest != "" {
			return s.consume(a, flag, rest, true, args[index+1:])
		}
		return s.consume(a, flag, "", false, args[index+1:])
	}
	return 1, nil
}

// consume applies an option's action. following holds the tokens after the
// option itself; the returned count includes the option token.
func (s *parseState) consume(a *Argument, flag string, inline string, hasInline bool, following []string) (int, error) {
	s.seen[a] = true

	if !a.Action.TakesValues() {
		if hasInline {
			return 0, fmt.Errorf("flag %s does not take a value", flag)
		}
		return 1, s.applyFlagAction(a)
	}

	minN, maxN := a.Nargs.bounds()
	var raw []string
	consumed := 1
	if hasInline {
		if minN > 1 {
			return 0, fmt.Errorf("flag %s expects %d values", flag, minN)
		}
		raw = []string{inline}
	} else {
		for _, tok := range following {
			if maxN >= 0 && len(raw) >= maxN {
				break
			}
			if tok == "--" || s.isFlagToken(tok) {
				break
			}
			raw = append(raw, tok)
		}
		consumed += len(raw)
	}

	if len(raw) < minN {
		switch {
		case a.Nargs.IsZero() || minN == 1 && maxN == 1:
			return 0, fmt.Errorf("flag %s requires a value", flag)
		case a.Nargs == OneOrMore:
			return 0, fmt.Errorf("flag %s requires at least one value", flag)
		default:
			return 0, fmt.Errorf("flag %s expects %d values", flag, minN)
		}
	}

	if err := s.applyValues(a, raw); err != nil {
		return 0, fmt.Errorf("argument %s: %w", flag, err)
	}
	return consumed, nil
}

func (s *parseState) applyFlagAction(a *Argument) error {
	switch a.Action {
	case StoreTrue:
		s.values[a.Dest] = true
	case StoreFalse:
		s.values[a.Dest] = false
	case StoreConst:
		s.values[a.Dest] = a.Const
	case AppendConst:
		s.values[a.Dest] = appendValue(s.values[a.Dest], a.storedType(), reflect.ValueOf(a.Const))
	case Count:
		s.values[a.Dest] = increment(s.values[a.Dest])
	case Help:
		return &helpInvokedError{}
	case Version:
		return &versionInvokedError{}
	}
	return nil
}

// applyValues converts raw tokens and stores them according to the action and nargs.
func (s *parseState) applyValues(a *Argument, raw []string) error {
	converted := make([]reflect.Value, 0, len(raw))
	for _, r := range raw {
		v, err := Convert(a.Type, r)
		if err != nil {
			return err
		}
		converted = append(converted, reflect.ValueOf(v))
	}

	var item reflect.Value
	switch {
	case a.Nargs == Optional && len(converted) == 0:
		if !a.HasConst {
			s.values[a.Dest] = nil
			return nil
		}
		item = reflect.ValueOf(a.Const)
	case a.Nargs.ListValued():
		list := reflect.MakeSlice(reflect.SliceOf(a.valueType()), 0, len(converted))
		list = reflect.Append(list, converted...)
		item = list
	default:
		item = converted[0]
	}

	switch a.Action {
	case Append:
		s.values[a.Dest] = appendValue(s.values[a.Dest], a.storedType(), item)
	case Extend:
		if item.Kind() == reflect.Slice && item.Type() != a.valueType() {
			for i := 0; i < item.Len(); i++ {
				s.values[a.Dest] = appendValue(s.values[a.Dest], a.storedType(), item.Index(i))
			}
		} else {
			s.values[a.Dest] = appendValue(s.values[a.Dest], a.storedType(), item)
		}
	default:
		s.values[a.Dest] = item.Interface()
	}
	return nil
}

func appendValue(current any, listType reflect.Type, item reflect.Value) any {
	list := reflect.ValueOf(current)
	if !list.IsValid() || list.Kind() != reflect.Slice {
		list = reflect.MakeSlice(listType, 0, 1)
	}
	if item.IsValid() && !item.Type().AssignableTo(list.Type().Elem()) && item.Type().ConvertibleTo(list.Type().Elem()) {
		item = item.Convert(list.Type().Elem())
	}
	if !item.IsValid() {
		item = reflect.Zero(list.Type().Elem())
	}
	return reflect.Append(list, item).Interface()
}

func increment(current any) any {
	v := reflect.ValueOf(current)
	if !v.IsValid() {
		return 1
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out := reflect.New(v.Type()).Elem()
		out.SetInt(v.Int() + 1)
		return out.Interface()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out := reflect.New(v.Type()).Elem()
		out.SetUint(v.Uint() + 1)
		return out.Interface()
	}
	return 1
}

// assignPositionals distributes the collected positional tokens over the
// positional arguments in registration order. Each argument takes as many
// tokens as its nargs allows while leaving enough for the minimums of the
// arguments after it.
func (s *parseState) assignPositionals() error {
	tokens := s.positionals
	positional := s.p.positional

	mins := make([]int, len(positional))
	suffix := make([]int, len(positional)+1)
	for k := len(positional) - 1; k >= 0; k-- {
		minN, _ := positional[k].Nargs.bounds()
		mins[k] = minN
		suffix[k] = suffix[k+1] + minN
	}

	idx := 0
	for k, a := range positional {
		_, maxN := a.Nargs.bounds()
		remaining := len(tokens) - idx

		take := remaining - suffix[k+1]
		if take < mins[k] {
			// Not enough tokens to go around: fill minimums left to right
			take = mins[k]
			if take > remaining {
				take = remaining
			}
		}
		if maxN >= 0 && take > maxN {
			take = maxN
		}
		if take < mins[k] {
			// leave it unseen so validateRequired reports it
			idx += take
			continue
		}
		if take == 0 {
			continue
		}

		raw := tokens[idx : idx+take]
		idx += take
		s.seen[a] = true
		if err := s.applyValues(a, raw); err != nil {
			return fmt.Errorf("argument %s: %w", a.displayName(), err)
		}
	}

	if idx < len(tokens) {
		extra := tokens[idx:]
		if s.cfg.ignoreUnknown {
			s.p.unknownArgs = append(s.p.unknownArgs, extra...)
			return nil
		}
		return fmt.Errorf("unrecognized arguments: %s", strings.Join(extra, " "))
	}
	return nil
}

func (s *parseState) validateRequired() error {
	var missing []string
	for _, a := range s.p.args {
		if s.seen[a] {
			continue
		}
		if a.IsPositional() {
			if minN, _ := a.Nargs.bounds(); minN > 0 {
				missing = append(missing, a.displayName())
			}
			continue
		}
		if a.Required {
			missing = append(missing, a.displayName())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("the following arguments are required: %s", strings.Join(missing, ", "))
	}
	return nil
}
