package dykes

import "github.com/pathunstrom/dykes/argparse"

// Action decides how an option consumes and stores tokens.
type Action = argparse.Action

const (
	ActionStore       = argparse.Store
	ActionStoreConst  = argparse.StoreConst
	ActionStoreTrue   = argparse.StoreTrue
	ActionStoreFalse  = argparse.StoreFalse
	ActionAppend      = argparse.Append
	ActionAppendConst = argparse.AppendConst
	ActionExtend      = argparse.Extend
	ActionCount       = argparse.Count
	ActionHelp        = argparse.Help
	ActionVersion     = argparse.Version
)

// Arity is how many tokens an option consumes.
type Arity = argparse.Nargs

var (
	Optional   = argparse.Optional
	ZeroOrMore = argparse.ZeroOrMore
	OneOrMore  = argparse.OneOrMore
)

func Exactly(n int) Arity {
	return argparse.Exactly(n)
}

// ParseArity accepts "?", "*", "+" or a decimal count.
func ParseArity(s string) (Arity, error) {
	return argparse.ParseNargs(s)
}

// Annotation is implemented by types that carry metadata of their own.
// The items are read before any struct-tag metadata on the field.
type Annotation interface {
	Metadata() []any
}

// Count counts how many times its flag was given.
type Count int

func (Count) Metadata() []any {
	return []any{ActionCount}
}

// StoreTrue is a flag that sets the field to true.
type StoreTrue bool

func (StoreTrue) Metadata() []any {
	return []any{ActionStoreTrue}
}

// StoreFalse is a flag that sets the field to false.
type StoreFalse bool

func (StoreFalse) Metadata() []any {
	return []any{ActionStoreFalse}
}

// Flags names the option strings of a field, turning it into an option.
type Flags []string

// Const is the value stored by const actions.
type Const struct {
	Value any
}

// Required marks an option that must be given.
type Required bool

// Metavar is the value name shown in usage.
type Metavar string
