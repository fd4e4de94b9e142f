package module

import (
	"errors"
	"fmt"
)

// Kind of failure
type Kind uint8

const (
	Configuration Kind = iota + 1
	Resolution
	Classification
	Semantic
	Usage
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Resolution:
		return "resolution"
	case Classification:
		return "classification"
	case Semantic:
		return "semantic"
	case Usage:
		return "usage"
	default:
		return "unknown"
	}
}

var (
	ErrConfig        = errors.New("invalid configuration")
	ErrNotFound      = errors.New("module not found")
	ErrSyntax        = errors.New("syntax error")
	ErrUnsupported   = errors.New("unsupported syntax")
	ErrMixedExports  = errors.New("mixed default and named exports")
	ErrDuplicate     = errors.New("duplicate binding")
	ErrUndeclared    = errors.New("undeclared export")
	ErrImportAssign  = errors.New("imported binding reassigned")
	ErrNotTopLevel   = errors.New("import or export not at top level")
	ErrCycle         = errors.New("unresolvable binding cycle")
	ErrMissingExport = errors.New("missing export")
	ErrFrozen        = errors.New("container is frozen")
)

// Error is a failure tied to a module and, when known, a source position
type Error struct {
	Kind    Kind
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	where := e.Path
	if where != "" && e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	}
	if where == "" {
		return fmt.Sprintf("esm: %s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("esm: %s error: %s: %s", e.Kind, where, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates an error without a source position
func Errorf(kind Kind, cause error, path, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}
