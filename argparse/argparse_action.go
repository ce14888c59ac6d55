package argparse

import (
	"fmt"
	"strconv"
)

// Action decides how an argument consumes tokens and stores its value.
type Action string

const (
	Store       Action = "store"
	StoreConst  Action = "store_const"
	StoreTrue   Action = "store_true"
	StoreFalse  Action = "store_false"
	Append      Action = "append"
	AppendConst Action = "append_const"
	Extend      Action = "extend"
	Count       Action = "count"
	Help        Action = "help"
	Version     Action = "version"
)

var allActions = []Action{Store, StoreConst, StoreTrue, StoreFalse, Append, AppendConst, Extend, Count, Help, Version}

// ParseAction returns the action named s, e.g. "store_true".
func ParseAction(s string) (Action, error) {
	for _, a := range allActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

func (a Action) String() string {
	return string(a)
}

// TakesValues reports whether the action reads tokens from the command line.
func (a Action) TakesValues() bool {
	switch a {
	case Store, Append, Extend:
		return true
	}
	return false
}

// Collects reports whether the action stores its values as a list.
func (a Action) Collects() bool {
	switch a {
	case Append, AppendConst, Extend:
		return true
	}
	return false
}

// Typeless reports whether the action derives its stored value from the action itself.
func (a Action) Typeless() bool {
	switch a {
	case StoreTrue, StoreFalse, Count:
		return true
	}
	return false
}

// Suppressed actions never produce a namespace entry.
func (a Action) suppressed() bool {
	return a == Help || a == Version
}

type nargsKind int

const (
	nargsUnset nargsKind = iota
	nargsExact
	nargsOptional
	nargsZeroOrMore
	nargsOneOrMore
)

// Nargs is the number of tokens an argument consumes. The zero value means
// "a single token, stored as a scalar".
type Nargs struct {
	kind nargsKind
	n    int
}

var (
	Optional   = Nargs{kind: nargsOptional}
	ZeroOrMore = Nargs{kind: nargsZeroOrMore}
	OneOrMore  = Nargs{kind: nargsOneOrMore}
)

func Exactly(n int) Nargs {
	return Nargs{kind: nargsExact, n: n}
}

// ParseNargs accepts "?", "*", "+" or a non-negative decimal count.
func ParseNargs(s string) (Nargs, error) {
	switch s {
	case "?":
		return Optional, nil
	case "*":
		return ZeroOrMore, nil
	case "+":
		return OneOrMore, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Nargs{}, fmt.Errorf("invalid nargs %q (expected ?, *, + or a count)", s)
	}
	return Exactly(n), nil
}

func (n Nargs) IsZero() bool {
	return n.kind == nargsUnset
}

func (n Nargs) String() string {
	switch n.kind {
	case nargsExact:
		return strconv.Itoa(n.n)
	case nargsOptional:
		return "?"
	case nargsZeroOrMore:
		return "*"
	case nargsOneOrMore:
		return "+"
	}
	return ""
}

// bounds returns the minimum and maximum token counts; max is -1 when unbounded.
func (n Nargs) bounds() (int, int) {
	switch n.kind {
	case nargsExact:
		return n.n, n.n
	case nargsOptional:
		return 0, 1
	case nargsZeroOrMore:
		return 0, -1
	case nargsOneOrMore:
		return 1, -1
	}
	return 1, 1
}

// ListValued reports whether values consumed under this nargs are stored as a list.
func (n Nargs) ListValued() bool {
	return n.kind != nargsUnset && n.kind != nargsOptional
}
