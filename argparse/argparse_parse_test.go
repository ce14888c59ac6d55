package argparse

import (
	"bytes"
	"errors"
	"net"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type path string

func captureExit(t *testing.T) (*bytes.Buffer, *bytes.Buffer, *int) {
	t.Helper()
	t.Setenv("DYKES_COLOR", "never")

	var stdout, stderr bytes.Buffer
	code := -1
	SetStdoutWriter(&stdout)
	SetStderrWriter(&stderr)
	SetExitFunc(func(c int) {
		code = c
	})
	t.Cleanup(func() {
		SetStdoutWriter(os.Stdout)
		SetStderrWriter(os.Stderr)
		SetExitFunc(os.Exit)
	})
	return &stdout, &stderr, &code
}

func TestPositionalAndOptions(t *testing.T) {
	p := NewParser("wc")
	require.NoError(t, p.AddArgument([]string{"path"}, WithType(reflect.TypeOf(path("")))))
	require.NoError(t, p.AddArgument([]string{"-d", "--dry-run"}, WithAction(StoreTrue), WithDest("dry_run")))
	require.NoError(t, p.AddArgument([]string{"-v", "--verbosity"}, WithAction(Count), WithDest("verbosity"), WithDefault(0)))

	ns, err := p.ParseOrError([]string{"file.txt", "-v", "-v"})
	require.NoError(t, err)
	assert.Equal(t, path("file.txt"), ns["path"])
	assert.Equal(t, false, ns["dry_run"])
	assert.Equal(t, 2, ns["verbosity"])

	ns, err = p.ParseOrError([]string{"--dry-run", "-vvv", "other.txt"})
	require.NoError(t, err)
	assert.Equal(t, path("other.txt"), ns["path"])
	assert.Equal(t, true, ns["dry_run"])
	assert.Equal(t, 3, ns["verbosity"])
}

func TestClusteredShortFlags(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-d"}, WithAction(StoreTrue)))
	require.NoError(t, p.AddArgument([]string{"-v"}, WithAction(Count)))
	require.NoError(t, p.AddArgument([]string{"-o", "--output"}))

	ns, err := p.ParseOrError([]string{"-dvvofile.txt"})
	require.NoError(t, err)
	assert.Equal(t, true, ns["d"])
	assert.Equal(t, 2, ns["v"])
	assert.Equal(t, "file.txt", ns["output"])

	ns, err = p.ParseOrError([]string{"-o=x", "--output=y"})
	require.NoError(t, err)
	assert.Equal(t, "y", ns["output"])
}

func TestStoreFalseDefaultsTrue(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-p", "--prompt"}, WithAction(StoreFalse), WithDest("prompt")))

	ns, err := p.ParseOrError(nil)
	require.NoError(t, err)
	assert.Equal(t, true, ns["prompt"])

	ns, err = p.ParseOrError([]string{"-p"})
	require.NoError(t, err)
	assert.Equal(t, false, ns["prompt"])
}

func TestOptionWithoutValueIsNil(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-f", "--foo"}, WithDest("foo")))

	ns, err := p.ParseOrError(nil)
	require.NoError(t, err)
	v, ok := ns.Get("foo")
	assert.True(t, ok)
	assert.Nil(t, v)

	ns, err = p.ParseOrError([]string{"-f", "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", ns["foo"])
}

func TestOneOrMorePositional(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"paths"}, WithType(reflect.TypeOf(path(""))), WithNargs(OneOrMore)))

	ns, err := p.ParseOrError([]string{"a.md"})
	require.NoError(t, err)
	assert.Equal(t, []path{"a.md"}, ns["paths"])

	ns, err = p.ParseOrError([]string{"a.md", "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, []path{"a.md", "b.txt"}, ns["paths"])

	_, err = p.ParseOrError(nil)
	assert.EqualError(t, err, "the following arguments are required: paths")
}

func TestOptionalPositionalKeepsDefault(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"foo"}, WithNargs(Optional), WithDefault("blue")))

	ns, err := p.ParseOrError(nil)
	require.NoError(t, err)
	assert.Equal(t, "blue", ns["foo"])

	ns, err = p.ParseOrError([]string{"red"})
	require.NoError(t, err)
	assert.Equal(t, "red", ns["foo"])
}

func TestZeroOrMorePositional(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"foo"}, WithNargs(ZeroOrMore), WithDefault([]string{"blue"})))
	require.NoError(t, p.AddArgument([]string{"bar"}, WithNargs(ZeroOrMore)))

	ns, err := p.ParseOrError(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, ns["foo"])
	assert.Equal(t, []string{}, ns["bar"])

	ns, err = p.ParseOrError([]string{"red"})
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, ns["foo"])
}

func TestPositionalsShareTokens(t *testing.T) {
	p := NewParser("cp")
	require.NoError(t, p.AddArgument([]string{"sources"}, WithNargs(OneOrMore)))
	require.NoError(t, p.AddArgument([]string{"dest"}))

	ns, err := p.ParseOrError([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ns["sources"])
	assert.Equal(t, "c", ns["dest"])

	_, err = p.ParseOrError([]string{"a"})
	assert.EqualError(t, err, "the following arguments are required: dest")
}

func TestExactNargs(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"--point"}, WithType(reflect.TypeOf(0)), WithNargs(Exactly(2))))

	ns, err := p.ParseOrError([]string{"--point", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, ns["point"])

	_, err = p.ParseOrError([]string{"--point", "3"})
	assert.EqualError(t, err, "flag --point expects 2 values")
}

func TestAppendExtendAndConst(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-i", "--include"}, WithAction(Append), WithDest("include")))
	require.NoError(t, p.AddArgument([]string{"--tag"}, WithAction(Extend), WithNargs(OneOrMore)))
	require.NoError(t, p.AddArgument([]string{"--fast"}, WithAction(StoreConst), WithConst("fast"), WithDest("mode")))
	require.NoError(t, p.AddArgument([]string{"--x"}, WithAction(AppendConst), WithConst("x"), WithDest("marks")))

	ns, err := p.ParseOrError([]string{"-i", "a", "--include", "b", "--tag", "t1", "t2", "--tag", "t3", "--fast", "--x", "--x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ns["include"])
	assert.Equal(t, []string{"t1", "t2", "t3"}, ns["tag"])
	assert.Equal(t, "fast", ns["mode"])
	assert.Equal(t, []string{"x", "x"}, ns["marks"])
}

func TestAppendDoesNotMutateDefault(t *testing.T) {
	def := []string{"base"}
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"--include"}, WithAction(Append), WithDefault(def)))

	ns, err := p.ParseOrError([]string{"--include", "extra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "extra"}, ns["include"])
	assert.Equal(t, []string{"base"}, def)
}

func TestTypedValues(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"--timeout"}, WithType(reflect.TypeOf(time.Duration(0)))))
	require.NoError(t, p.AddArgument([]string{"--ratio"}, WithType(reflect.TypeOf(0.0))))
	require.NoError(t, p.AddArgument([]string{"--addr"}, WithType(reflect.TypeOf(net.IP{}))))
	require.NoError(t, p.AddArgument([]string{"offset"}, WithType(reflect.TypeOf(0))))

	ns, err := p.ParseOrError([]string{"--timeout", "1h30m", "--ratio", "0.5", "--addr", "10.0.0.1", "-3"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, ns["timeout"])
	assert.Equal(t, 0.5, ns["ratio"])
	assert.Equal(t, net.ParseIP("10.0.0.1"), ns["addr"])
	assert.Equal(t, -3, ns["offset"])

	_, err = p.ParseOrError([]string{"--ratio", "half", "1"})
	assert.EqualError(t, err, `argument --ratio: invalid float value: "half"`)
}

func TestDashDashEndsOptions(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-v"}, WithAction(StoreTrue)))
	require.NoError(t, p.AddArgument([]string{"rest"}, WithNargs(ZeroOrMore)))

	ns, err := p.ParseOrError([]string{"-v", "--", "-v", "--other"})
	require.NoError(t, err)
	assert.Equal(t, true, ns["v"])
	assert.Equal(t, []string{"-v", "--other"}, ns["rest"])
}

func TestUnknownFlags(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-v"}, WithAction(StoreTrue)))

	_, err := p.ParseOrError([]string{"--nope"})
	assert.EqualError(t, err, "unknown flag: --nope")

	_, err = p.ParseOrError([]string{"-x"})
	assert.EqualError(t, err, "unknown shorthand flag: -x")

	_, err = p.ParseOrError([]string{"stray"})
	assert.EqualError(t, err, "unrecognized arguments: stray")

	ns, err := p.ParseOrError([]string{"--nope", "-v", "stray"}, WithIgnoreUnknown(true))
	require.NoError(t, err)
	assert.Equal(t, true, ns["v"])
	assert.Equal(t, []string{"--nope", "stray"}, p.UnknownArgs())
}

func TestRequiredOption(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"--name"}, WithRequired(true)))

	_, err := p.ParseOrError(nil)
	assert.EqualError(t, err, "the following arguments are required: --name")
}

func TestRegistrationErrors(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		opts  []ArgOption
		err   string
	}{
		{"empty", nil, nil, "argument name cannot be empty"},
		{"mixed", []string{"foo", "--foo"}, nil, `invalid option strings ["foo" "--foo"]: cannot mix positional names and flags`},
		{"nargs on count", []string{"-v"}, []ArgOption{WithAction(Count), WithNargs(OneOrMore)}, "nargs must be unset for count action on -v"},
		{"positional count", []string{"v"}, []ArgOption{WithAction(Count)}, "count action requires option strings (v is positional)"},
		{"const missing", []string{"--fast"}, []ArgOption{WithAction(StoreConst)}, "store_const action on --fast requires a const value"},
		{"zero nargs", []string{"--x"}, []ArgOption{WithNargs(Exactly(0))}, "nargs for store actions must be != 0 (--x)"},
		{"positional dest", []string{"foo"}, []ArgOption{WithDest("bar")}, `dest supplied twice for positional argument "foo"`},
		{"no converter", []string{"--m"}, []ArgOption{WithType(reflect.TypeOf(map[string]string{}))}, "no conversion from command-line tokens to map[string]string for --m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParser("app").AddArgument(tt.names, tt.opts...)
			var progErr *ProgrammingError
			require.True(t, errors.As(err, &progErr))
			assert.Equal(t, tt.err, err.Error())
		})
	}
}

func TestConflictingOptionStrings(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-d", "--dry-run"}, WithAction(StoreTrue)))
	err := p.AddArgument([]string{"-d", "--debug"}, WithAction(StoreTrue))
	assert.EqualError(t, err, "conflicting option string: -d")
}

func TestHelpTakesFreeOptionStrings(t *testing.T) {
	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"-h", "--host"}))

	_, err := p.ParseOrError([]string{"--help"})
	assert.ErrorIs(t, err, ErrHelpInvoked)

	help, ok := p.Lookup("help")
	require.True(t, ok)
	assert.Equal(t, []string{"--help"}, help.Flags)

	ns, err := p.ParseOrError([]string{"-h", "example.org"})
	require.NoError(t, err)
	assert.Equal(t, "example.org", ns["host"])
}

func TestParseOrExitOnInvalidInput(t *testing.T) {
	_, stderr, code := captureExit(t)

	p := NewParser("app")
	require.NoError(t, p.AddArgument([]string{"paths"}, WithNargs(OneOrMore)))

	ns := p.ParseOrExit(nil)
	assert.Nil(t, ns)
	assert.Equal(t, 1, *code)
	assert.Equal(t, `the following arguments are required: paths

Usage:
  app [-h] paths [paths ...]

Arguments:
  paths

Options:
  -h, --help   Print usage string.
`, stderr.String())
}

func TestParseOrExitOnHelpAndVersion(t *testing.T) {
	stdout, _, code := captureExit(t)

	p := NewParser("app").SetDescription("Does things.").SetVersion("app 1.2.3")
	require.NoError(t, p.AddArgument([]string{"--version"}, WithAction(Version)))

	p.ParseOrExit([]string{"--version"})
	assert.Equal(t, 0, *code)
	assert.Equal(t, "app 1.2.3\n", stdout.String())

	stdout.Reset()
	p.ParseOrExit([]string{"-h"})
	assert.Equal(t, 0, *code)
	assert.Equal(t, `Does things.

Usage:
  app [--version] [-h]

Options:
  --version
  -h, --help   Print usage string.
`, stdout.String())
}
