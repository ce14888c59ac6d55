package dykes

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrDefinition is the sentinel every DefinitionError unwraps to.
var ErrDefinition = errors.New("invalid parameter definition")

// ErrParseTerminated is returned by ParseArgs when the engine handled the
// tokens itself (help, version, invalid input) and the exit function returned.
var ErrParseTerminated = errors.New("argument parsing terminated")

// DefinitionError reports a malformed parameter definition. It is raised while
// options are synthesized, before any token is consumed.
type DefinitionError struct {
	Type  string // definition type name, when known
	Field string // offending field, empty for type-level errors
	msg   string
}

func (e *DefinitionError) Error() string {
	return e.msg
}

func (e *DefinitionError) Unwrap() error {
	return ErrDefinition
}

func definitionErrorf(format string, args ...any) *DefinitionError {
	return &DefinitionError{msg: fmt.Sprintf(format, args...)}
}

// annotateDefinitionError fills in the type and field of a DefinitionError
// that was raised without them.
func annotateDefinitionError(err error, typeName, field string) error {
	var defErr *DefinitionError
	if errors.As(err, &defErr) {
		if defErr.Type == "" {
			defErr.Type = typeName
		}
		if defErr.Field == "" {
			defErr.Field = field
		}
	}
	return err
}
