package parser

import (
	"fmt"

	"github.com/tansive/conductor/internal/common/apperrors"
)

var ErrParse = apperrors.New("unable to parse score").SetExitCode(apperrors.ExitCodeInput)

// ParseError reports the construct the parser expected, the token it found
// instead and where. Line and Column are 1-based.
type ParseError struct {
	Expected string
	Found    string
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Expected %s, found: %s at Line: %d, Column: %d", e.Expected, e.Found, e.Line, e.Column)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
