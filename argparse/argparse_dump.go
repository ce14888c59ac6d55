package argparse

import (
	"fmt"
	"os"
	"strings"
)

// GenerateDump creates a comprehensive dump of the parser structure and parsing context
func (p *Parser) GenerateDump(args []string, opts ...ParseOpt) string {
	p.ensureHelp()
	pal := newPalette()

	var sb strings.Builder
	sb.WriteString(pal.greenBoldS("Parser Dump") + "\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(p.generateParseConfigSection(pal, opts...))
	sb.WriteString(p.generateParserInfoSection(pal))
	sb.WriteString(p.generateArgumentsToParseSection(pal, args))
	sb.WriteString(p.generateArgumentsStructureSection(pal))
	sb.WriteString(p.generateEnvironmentSection(pal))
	return sb.String()
}

// generateParseConfigSection generates information about parse configuration
func (p *Parser) generateParseConfigSection(pal palette, opts ...ParseOpt) string {
	var sb strings.Builder
	sb.WriteString(pal.greenBoldS("Parse Configuration:") + "\n")

	// Build the config to see what options are set
	cfg := &parseCfg{}
	for _, opt := range opts {
		opt(cfg)
	}

	sb.WriteString(fmt.Sprintf("  Ignore Unknown: %s\n", pal.boldS(fmt.Sprintf("%t", cfg.ignoreUnknown))))
	sb.WriteString(fmt.Sprintf("  Dump Enabled: %s\n", pal.boldS(fmt.Sprintf("%t", cfg.dump))))
	sb.WriteString("\n")
	return sb.String()
}

func (p *Parser) generateParserInfoSection(pal palette) string {
	var sb strings.Builder
	sb.WriteString(pal.greenBoldS("Parser Information:") + "\n")

	sb.WriteString(fmt.Sprintf("  Prog: %s\n", pal.boldS(p.prog)))
	if p.description != "" {
		sb.WriteString(fmt.Sprintf("  Description: %s\n", pal.boldS(fmt.Sprintf("%q", p.description))))
	} else {
		sb.WriteString(fmt.Sprintf("  Description: %s\n", pal.cyanS("<not set>")))
	}
	if p.version != "" {
		sb.WriteString(fmt.Sprintf("  Version: %s\n", pal.boldS(p.version)))
	} else {
		sb.WriteString(fmt.Sprintf("  Version: %s\n", pal.cyanS("<not set>")))
	}
	sb.WriteString(fmt.Sprintf("  Help Enabled: %s\n", pal.boldS(fmt.Sprintf("%t", p.helpEnabled))))
	sb.WriteString("\n")
	return sb.String()
}

// generateArgumentsToParseSection generates information about the tokens provided for parsing
func (p *Parser) generateArgumentsToParseSection(pal palette, args []string) string {
	var sb strings.Builder
	sb.WriteString(pal.greenBoldS("Arguments to Parse:") + "\n")

	if len(args) == 0 {
		sb.WriteString("  " + pal.cyanS("<no arguments>") + "\n")
	} else {
		for i, arg := range args {
			sb.WriteString(fmt.Sprintf("  [%d]: %s\n", i, pal.boldS(fmt.Sprintf("%q", arg))))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (p *Parser) generateArgumentsStructureSection(pal palette) string {
	var sb strings.Builder
	sb.WriteString(pal.greenBoldS("Arguments Structure:") + "\n")

	sb.WriteString(fmt.Sprintf("  Total Arguments: %d\n", len(p.args)))
	sb.WriteString(fmt.Sprintf("  Positional: %d\n", len(p.positional)))
	sb.WriteString(fmt.Sprintf("  Options: %d\n", len(p.optionals)))

	if len(p.positional) > 0 {
		sb.WriteString("\n  " + pal.boldS("Positional (in order):") + "\n")
		for i, a := range p.positional {
			sb.WriteString(fmt.Sprintf("    [%d] %s\n", i, formatArgumentForDump(a)))
		}
	}

	if len(p.optionals) > 0 {
		sb.WriteString("\n  " + pal.boldS("Options:") + "\n")
		for _, a := range p.optionals {
			sb.WriteString(fmt.Sprintf("    %s\n", formatArgumentForDump(a)))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func formatArgumentForDump(a *Argument) string {
	var parts []string
	if a.IsPositional() {
		parts = append(parts, a.Dest)
	} else {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Dest, strings.Join(a.Flags, ", ")))
	}

	parts = append(parts, "action:"+string(a.Action))
	if a.Action.TakesValues() {
		parts = append(parts, "type:"+typeName(a.Type))
	}
	if !a.Nargs.IsZero() {
		parts = append(parts, "nargs:"+a.Nargs.String())
	}
	if a.HasDefault {
		parts = append(parts, fmt.Sprintf("default:%v", a.Default))
	}
	if a.HasConst {
		parts = append(parts, fmt.Sprintf("const:%v", a.Const))
	}
	if a.Required {
		parts = append(parts, "required")
	}
	if a.Metavar != "" {
		parts = append(parts, "metavar:"+a.Metavar)
	}
	if a.Help != "" {
		parts = append(parts, fmt.Sprintf("usage:%q", a.Help))
	}
	return strings.Join(parts, " ")
}

func (p *Parser) generateEnvironmentSection(pal palette) string {
	var sb strings.Builder
	sb.WriteString(pal.greenBoldS("Environment:") + "\n")

	colorValue := os.Getenv("DYKES_COLOR")
	if colorValue == "" {
		sb.WriteString(fmt.Sprintf("  DYKES_COLOR: %s\n", pal.cyanS("<not set>")))
	} else {
		sb.WriteString(fmt.Sprintf("  DYKES_COLOR: %s\n", pal.boldS(colorValue)))
	}
	return sb.String()
}
