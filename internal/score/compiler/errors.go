package compiler

import (
	"fmt"

	"github.com/tansive/conductor/internal/common/apperrors"
	"github.com/tansive/conductor/internal/score/lexer"
)

var ErrCompile = apperrors.New("unable to compile score").SetExitCode(apperrors.ExitCodeInput)

var (
	ErrConflictingNamespace = ErrCompile.New("conflicting namespace declarations")
	ErrConflictingTable     = ErrCompile.New("conflicting table declarations")
	ErrConflictingColumn    = ErrCompile.New("conflicting column declarations")
	ErrConflictingHandler   = ErrCompile.New("conflicting http handler declarations")
	ErrConflictingPolicy    = ErrCompile.New("conflicting policy declarations")
	ErrUnknownPolicy        = ErrCompile.New("unknown authorization policy")
	ErrMissingNamespaceDecl = ErrCompile.New("missing namespace declaration")
)

// CompileError is a semantic error in a score file. Kind is one of the
// ErrCompile sentinels and is matched by errors.Is.
type CompileError struct {
	Kind   apperrors.Error
	Path   string
	Loc    lexer.Location
	Entity string
	Detail string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s (%s)", e.Path, e.Kind.Error(), e.Detail, e.Loc)
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

func (e *CompileError) ExitCode() int {
	return e.Kind.ExitCode()
}
