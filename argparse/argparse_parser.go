package argparse

import "fmt"

type UsageHeaders struct {
	Usage     string
	Arguments string
	Options   string
}

func DefaultUsageHeaders() UsageHeaders {
	return UsageHeaders{
		Usage:     "Usage:",
		Arguments: "Arguments:",
		Options:   "Options:",
	}
}

// Namespace maps each argument's dest to its parsed value.
type Namespace map[string]any

// Get returns the value stored under dest and whether dest is present.
func (n Namespace) Get(dest string) (any, bool) {
	v, ok := n[dest]
	return v, ok
}

type Parser struct {
	prog        string
	description string
	version     string
	args        []*Argument          // registration order
	positional  []*Argument          // positional arguments, in registration order
	optionals   []*Argument          // options, in registration order
	byFlag      map[string]*Argument // option string -> argument

	// options
	helpEnabled  bool          // default true automatically adds a help option
	usageHeaders *UsageHeaders // custom headers for usage output

	// state post-parse
	unknownArgs []string // unknown args when ignoreUnknown is true
}

func NewParser(prog string) *Parser {
	return &Parser{
		prog:        prog,
		byFlag:      make(map[string]*Argument),
		helpEnabled: true,
	}
}

func (p *Parser) SetDescription(desc string) *Parser {
	p.description = desc
	return p
}

// SetVersion sets the text printed by a Version action.
func (p *Parser) SetVersion(version string) *Parser {
	p.version = version
	return p
}

func (p *Parser) SetHelpEnabled(enable bool) *Parser {
	p.helpEnabled = enable
	return p
}

func (p *Parser) SetUsageHeaders(headers UsageHeaders) *Parser {
	p.usageHeaders = &headers
	return p
}

func (p *Parser) getUsageHeaders() UsageHeaders {
	if p.usageHeaders != nil {
		return *p.usageHeaders
	}
	return DefaultUsageHeaders()
}

func (p *Parser) Prog() string {
	return p.prog
}

// Description returns the description exactly as it was set.
func (p *Parser) Description() string {
	return p.description
}

func (p *Parser) Version() string {
	return p.version
}

// Arguments returns copies of the registered arguments in registration order.
func (p *Parser) Arguments() []Argument {
	out := make([]Argument, 0, len(p.args))
	for _, a := range p.args {
		out = append(out, *a)
	}
	return out
}

// Lookup finds a registered argument by dest.
func (p *Parser) Lookup(dest string) (Argument, bool) {
	for _, a := range p.args {
		if a.Dest == dest {
			return *a, true
		}
	}
	return Argument{}, false
}

func (p *Parser) UnknownArgs() []string {
	return p.unknownArgs
}

// ensureHelp registers -h/--help with whichever of the two option strings are still free.
func (p *Parser) ensureHelp() {
	if !p.helpEnabled {
		return
	}
	for _, a := range p.optionals {
		if a.Action == Help {
			return
		}
	}

	var flags []string
	for _, f := range []string{"-h", "--help"} {
		if _, taken := p.byFlag[f]; !taken {
			flags = append(flags, f)
		}
	}
	if len(flags) == 0 {
		return
	}

	if err := p.AddArgument(flags, WithAction(Help), WithDest("help"), WithHelp("Print usage string.")); err != nil {
		panic(fmt.Sprintf("registering help option: %v", err))
	}
}

// hasNumericFlags reports whether any option looks like a negative number,
// in which case negative-number tokens are treated as options.
func (p *Parser) hasNumericFlags() bool {
	for flag := range p.byFlag {
		if isNegativeNumber(flag) {
			return true
		}
	}
	return false
}
