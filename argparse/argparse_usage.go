package argparse

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// palette colours usage and dump output. It is resolved from DYKES_COLOR
// for each rendering and leaves color.NoColor alone, so parsers can render
// concurrently.
type palette struct {
	greenBold *color.Color
	cyan      *color.Color
	bold      *color.Color
}

func newPalette() palette {
	pal := palette{
		greenBold: color.New(color.FgGreen, color.Bold),
		cyan:      color.New(color.FgCyan),
		bold:      color.New(color.Bold),
	}
	disabled := colorDisabled()
	for _, c := range []*color.Color{pal.greenBold, pal.cyan, pal.bold} {
		if disabled {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return pal
}

func (pal palette) greenBoldS(s string) string {
	return pal.greenBold.Sprint(s)
}

func (pal palette) cyanS(s string) string {
	return pal.cyan.Sprint(s)
}

func (pal palette) boldS(s string) string {
	return pal.bold.Sprint(s)
}

// colorDisabled reads DYKES_COLOR: never, always or auto. Anything else
// keeps what fatih/color decided at startup.
func colorDisabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DYKES_COLOR"))) {
	case "never":
		return true
	case "always":
		return false
	case "auto":
		return os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
	}
	return color.NoColor
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// GenerateUsage renders the full usage text: description, synopsis, then
// one section for positional arguments and one for options.
func (p *Parser) GenerateUsage() string {
	p.ensureHelp()
	pal := newPalette()

	var sb strings.Builder
	headers := p.getUsageHeaders()

	if description := p.generateDescription(); description != "" {
		sb.WriteString(description)
	}

	sb.WriteString(pal.greenBoldS(headers.Usage) + "\n  ")
	sb.WriteString(p.synopsis(pal))
	sb.WriteString("\n")

	if len(p.positional) > 0 {
		sb.WriteString("\n" + pal.greenBoldS(headers.Arguments) + "\n")
		sb.WriteString(formatArguments(p.positional))
	}

	if len(p.optionals) > 0 {
		sb.WriteString("\n" + pal.greenBoldS(headers.Options) + "\n")
		sb.WriteString(formatArguments(p.optionals))
	}

	return sb.String()
}

func (p *Parser) generateDescription() string {
	if p.description == "" {
		return ""
	}
	return p.description + "\n\n"
}

// GenerateSynopsis renders the one-line invocation summary, options first.
func (p *Parser) GenerateSynopsis() string {
	p.ensureHelp()
	return p.synopsis(newPalette())
}

func (p *Parser) synopsis(pal palette) string {
	var sb strings.Builder
	sb.WriteString(pal.boldS(p.prog))

	for _, a := range p.optionals {
		part := a.Flags[0]
		if a.Action.TakesValues() {
			part += " " + formatNargs(a)
		}
		if !a.Required {
			part = "[" + part + "]"
		}
		sb.WriteString(" " + pal.cyanS(part))
	}

	for _, a := range p.positional {
		sb.WriteString(" " + formatNargs(a))
	}

	return sb.String()
}

// formatNargs renders the value placeholder the way the nargs reads:
// X, [X], [X ...], X [X ...], or X X for fixed counts.
func formatNargs(a *Argument) string {
	metavar := a.metavarOrDefault()
	switch a.Nargs.kind {
	case nargsOptional:
		return "[" + metavar + "]"
	case nargsZeroOrMore:
		return "[" + metavar + " ...]"
	case nargsOneOrMore:
		return metavar + " [" + metavar + " ...]"
	case nargsExact:
		parts := make([]string, a.Nargs.n)
		for i := range parts {
			parts[i] = metavar
		}
		return strings.Join(parts, " ")
	}
	return metavar
}

func formatArguments(args []*Argument) string {
	// First pass: calculate maximum width for alignment
	maxWidth := 0
	var parts []string
	for _, a := range args {
		var part string
		if a.IsPositional() {
			part = fmt.Sprintf("  %s", a.metavarOrDefault())
		} else {
			part = "  " + strings.Join(a.Flags, ", ")
			if a.Action.TakesValues() {
				part = fmt.Sprintf("%s %s", part, formatNargs(a))
			}
		}
		parts = append(parts, part)
		if len(part) > maxWidth {
			maxWidth = len(part)
		}
	}

	// Use dynamic alignment: longest left side + 3 spaces
	maxWidth = maxWidth + 3

	// Second pass: generate aligned output
	var sb strings.Builder
	for i, a := range args {
		sb.WriteString(parts[i])

		constraints := constraintString(a)
		if a.Help != "" || constraints != "" {
			sb.WriteString(strings.Repeat(" ", maxWidth-len(parts[i])))
			if a.Help != "" {
				sb.WriteString(a.Help)
				if constraints != "" {
					if strings.HasSuffix(a.Help, ".") {
						sb.WriteString(" ")
					} else {
						sb.WriteString(". ")
					}
				}
			}
			sb.WriteString(constraints)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func constraintString(a *Argument) string {
	var parts []string
	if a.Required {
		parts = append(parts, "(required)")
	}
	if a.HasDefault && a.Default != nil && a.Action != Count {
		parts = append(parts, fmt.Sprintf("(default %v)", a.Default))
	}
	return strings.Join(parts, " ")
}
