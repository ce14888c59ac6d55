package dykes

// Metadata is what a field's annotations say about its option. Every item
// may be absent.
type Metadata struct {
	Action   Maybe[Action]
	Help     Maybe[string]
	Flags    Maybe[[]string]
	Arity    Maybe[Arity]
	Const    Maybe[any]
	Required Maybe[bool]
	Metavar  Maybe[string]
}

// ReadMetadata scans the metadata items of expr in declaration order, inner
// annotation layers first. Each kind of item may appear at most once; items
// of unknown kinds are ignored.
func ReadMetadata(expr TypeExpr) (Metadata, error) {
	var md Metadata
	for _, item := range flattenMetadata(expr) {
		switch v := item.(type) {
		case Action:
			if md.Action.IsSet() {
				return Metadata{}, duplicateItem("actions", "action")
			}
			md.Action = Some(v)
		case string:
			if md.Help.IsSet() {
				return Metadata{}, duplicateItem("help strings", "help string")
			}
			md.Help = Some(v)
		case Flags:
			if md.Flags.IsSet() {
				return Metadata{}, duplicateItem("flag lists", "flag list")
			}
			md.Flags = Some(append([]string{}, v...))
		case Arity:
			if md.Arity.IsSet() {
				return Metadata{}, duplicateItem("arities", "arity")
			}
			md.Arity = Some(v)
		case Const:
			if md.Const.IsSet() {
				return Metadata{}, duplicateItem("const values", "const value")
			}
			md.Const = Some(v.Value)
		case Required:
			if md.Required.IsSet() {
				return Metadata{}, duplicateItem("required markers", "required marker")
			}
			md.Required = Some(bool(v))
		case Metavar:
			if md.Metavar.IsSet() {
				return Metadata{}, duplicateItem("metavars", "metavar")
			}
			md.Metavar = Some(string(v))
		}
	}
	return md, nil
}

func flattenMetadata(expr TypeExpr) []any {
	a, ok := expr.(annotatedExpr)
	if !ok {
		return nil
	}
	return append(flattenMetadata(a.inner), a.meta...)
}

func duplicateItem(plural, singular string) *DefinitionError {
	return definitionErrorf("Found multiple %s in annotation. Please use only one %s.", plural, singular)
}
