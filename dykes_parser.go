package dykes

import (
	"os"
	"path/filepath"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/shlex"
	"github.com/pathunstrom/dykes/argparse"
	"go.uber.org/zap"
)

type config struct {
	args        []string
	hasArgs     bool
	commandLine string
	hasLine     bool
	program     string
	logger      *zap.Logger
}

// Option configures BuildParser and ParseArgs.
type Option func(*config)

// WithArgs parses tokens instead of the process arguments.
func WithArgs(tokens []string) Option {
	return func(c *config) {
		c.args = tokens
		c.hasArgs = true
		c.hasLine = false
	}
}

// WithCommandLine parses a shell-quoted command line, split the way a POSIX shell would.
func WithCommandLine(line string) Option {
	return func(c *config) {
		c.commandLine = line
		c.hasLine = true
		c.hasArgs = false
	}
}

// WithProgram sets the program name shown in usage. The default is the
// base name of os.Args[0].
func WithProgram(name string) Option {
	return func(c *config) {
		c.program = name
	}
}

// WithLogger logs each synthesized option and the parsed namespace at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: zap.NewNop()}
	if len(os.Args) > 0 {
		c.program = filepath.Base(os.Args[0])
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *config) tokens() ([]string, error) {
	switch {
	case c.hasArgs:
		return c.args, nil
	case c.hasLine:
		tokens, err := shlex.Split(c.commandLine)
		if err != nil {
			return nil, errors.Wrapf(err, "splitting command line %q", c.commandLine)
		}
		return tokens, nil
	}
	if len(os.Args) < 2 {
		return nil, nil
	}
	return os.Args[1:], nil
}

type describer interface {
	Description() string
}

type versioner interface {
	Version() string
}

// BuildParser builds the parser for the definition type T.
func BuildParser[T any](opts ...Option) (*argparse.Parser, error) {
	return buildParser(reflect.TypeOf((*T)(nil)).Elem(), newConfig(opts))
}

// BuildParserFor builds the parser for the type of definition, which may
// also be a reflect.Type.
func BuildParserFor(definition any, opts ...Option) (*argparse.Parser, error) {
	t, ok := definition.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(definition)
	}
	return buildParser(t, newConfig(opts))
}

func buildParser(definition reflect.Type, cfg *config) (*argparse.Parser, error) {
	fields, err := ExtractFields(definition)
	if err != nil {
		return nil, err
	}

	t := definition
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	typeName := displayTypeName(t)
	logger := cfg.logger.With(zap.String("definition", typeName))

	// Every descriptor is synthesized before anything is registered, so a
	// malformed definition never yields a half-built parser.
	descriptors := make([]Descriptor, 0, len(fields))
	for _, f := range fields {
		expr, err := FieldExpr(f.StructField)
		if err != nil {
			return nil, annotateDefinitionError(err, typeName, f.Name)
		}
		d, err := Synthesize(f, expr)
		if err != nil {
			return nil, annotateDefinitionError(err, typeName, f.Name)
		}
		logDescriptor(logger, d)
		descriptors = append(descriptors, d)
	}

	p := argparse.NewParser(cfg.program)
	instance := reflect.New(t).Interface()
	if d, ok := instance.(describer); ok {
		p.SetDescription(d.Description())
	}

	for _, d := range descriptors {
		if err := p.AddArgument(d.NameOrFlags(), d.ArgOptions()...); err != nil {
			return nil, errors.Wrapf(err, "%s.%s", typeName, d.Dest())
		}
	}

	if v, ok := instance.(versioner); ok {
		p.SetVersion(v.Version())
		if err := p.AddArgument([]string{"--version"}, argparse.WithAction(argparse.Version), argparse.WithHelp("Print version and exit.")); err != nil {
			return nil, errors.Wrapf(err, "%s version option", typeName)
		}
	}

	return p, nil
}

func logDescriptor(logger *zap.Logger, d Descriptor) {
	fields := []zap.Field{
		zap.String("dest", d.Dest()),
		zap.Bool("positional", d.IsPositional()),
	}
	if flags, ok := d.Flags().Get(); ok {
		fields = append(fields, zap.Strings("flags", flags))
	}
	if action, ok := d.Action().Get(); ok {
		fields = append(fields, zap.Stringer("action", action))
	}
	if arity, ok := d.Arity().Get(); ok {
		fields = append(fields, zap.Stringer("nargs", arity))
	}
	if t, ok := d.Type().Get(); ok {
		fields = append(fields, zap.Stringer("type", t))
	}
	if def, ok := d.Default().Get(); ok {
		fields = append(fields, zap.Any("default", def))
	}
	logger.Debug("synthesized option", fields...)
}

// ParseArgs builds the parser for T, parses the tokens and returns the
// populated T. Definition errors are returned before any token is read.
// Invalid tokens, help and version are handled by the parser, which exits.
func ParseArgs[T any](opts ...Option) (T, error) {
	var result T
	cfg := newConfig(opts)

	p, err := buildParser(reflect.TypeOf((*T)(nil)).Elem(), cfg)
	if err != nil {
		return result, err
	}

	tokens, err := cfg.tokens()
	if err != nil {
		return result, err
	}

	ns := p.ParseOrExit(tokens)
	if ns == nil {
		return result, ErrParseTerminated
	}
	cfg.logger.Debug("parsed arguments", zap.Strings("tokens", tokens), zap.Any("namespace", map[string]any(ns)))

	if err := decodeNamespace(ns, &result); err != nil {
		return result, err
	}
	return result, nil
}

// MustParseArgs is ParseArgs for main functions: a definition error is
// printed and the process exits with status 1.
func MustParseArgs[T any](opts ...Option) T {
	result, err := ParseArgs[T](opts...)
	if err != nil && !errors.Is(err, ErrParseTerminated) {
		argparse.ExitWithError(err)
	}
	return result
}

// decodeNamespace populates target, a pointer to the definition value.
func decodeNamespace(ns argparse.Namespace, target any) error {
	rv := reflect.ValueOf(target).Elem()
	if rv.Kind() == reflect.Pointer {
		rv.Set(reflect.New(rv.Type().Elem()))
		target = rv.Interface()
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		TagName:     "dykes",
		ErrorUnused: true,
	})
	if err != nil {
		return errors.Wrap(err, "creating decoder")
	}
	if err := decoder.Decode(map[string]any(ns)); err != nil {
		return errors.Wrap(err, "decoding parsed arguments")
	}
	return nil
}
