package dykes

import (
	"reflect"
	"strings"

	"github.com/fatih/structtag"
	"github.com/pathunstrom/dykes/argparse"
	"github.com/spf13/cast"
)

type tagPair struct {
	key   string
	value string
}

// scanTag splits a struct tag into its key:"value" pairs, keeping the order
// they were written in.
func scanTag(tag reflect.StructTag) ([]tagPair, error) {
	tags, err := structtag.Parse(string(tag))
	if err != nil {
		return nil, definitionErrorf("Malformed struct tag %q: %s.", string(tag), err)
	}
	if tags == nil {
		return nil, nil
	}

	pairs := make([]tagPair, 0, tags.Len())
	for _, t := range tags.Tags() {
		pairs = append(pairs, tagPair{key: t.Key, value: t.Value()})
	}
	return pairs, nil
}

// tagMetadata turns the dykes keys of a struct tag into metadata items.
// default is read by the field extractor; other keys belong to other packages.
func tagMetadata(tag reflect.StructTag) ([]any, error) {
	pairs, err := scanTag(tag)
	if err != nil {
		return nil, err
	}

	var meta []any
	for _, p := range pairs {
		switch p.key {
		case "help":
			meta = append(meta, p.value)
		case "action":
			action, err := argparse.ParseAction(p.value)
			if err != nil {
				return nil, definitionErrorf("Invalid action tag: %s.", err.Error())
			}
			meta = append(meta, action)
		case "flags":
			meta = append(meta, Flags(strings.Fields(p.value)))
		case "nargs":
			arity, err := ParseArity(p.value)
			if err != nil {
				return nil, definitionErrorf("Invalid nargs tag: %s.", err.Error())
			}
			meta = append(meta, arity)
		case "const":
			meta = append(meta, Const{Value: p.value})
		case "required":
			required, err := cast.ToBoolE(p.value)
			if err != nil {
				return nil, definitionErrorf("Invalid required tag %q.", p.value)
			}
			meta = append(meta, Required(required))
		case "metavar":
			meta = append(meta, Metavar(p.value))
		}
	}
	return meta, nil
}
