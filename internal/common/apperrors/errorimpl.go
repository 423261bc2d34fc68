package apperrors

import "fmt"

// appError implements the apperrors.Error interface. Modifiers return a
// derived copy, so package level sentinels are never mutated.
type appError struct {
	msg           string
	base          Error
	wrappedErrors []error
	exitcode      int
	expandError   bool
	prefix        string
	suffix        string
}

func (e *appError) Error() string {
	msg := e.msg
	if e.prefix != "" {
		msg = e.prefix + ": " + msg
	}
	if e.suffix != "" {
		msg += ": " + e.suffix
	}
	return msg
}

func (e *appError) ErrorAll() string {
	msg := e.Error()
	if !e.expandError {
		return msg
	}
	var wrapped string
	for _, err := range e.wrappedErrors {
		wrapped += err.Error() + ";"
	}
	if len(wrapped) > 0 {
		// remove the last ;
		msg = msg + ": " + wrapped[:len(wrapped)-1]
	}
	return msg
}

func (e *appError) Unwrap() []error {
	return e.wrappedErrors
}

func (e *appError) clone() *appError {
	c := *e
	c.wrappedErrors = append([]error(nil), e.wrappedErrors...)
	return &c
}

// derive returns a child of e that keeps its attributes. The child matches e
// with errors.Is.
func (e *appError) derive() *appError {
	c := e.clone()
	c.base = e
	return c
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:      msg,
		exitcode: e.exitcode,
		base:     e,
	}
}

func (e *appError) Msg(msg string) Error {
	c := e.derive()
	c.msg = msg
	return c
}

func (e *appError) Msgf(format string, args ...any) Error {
	return e.Msg(fmt.Sprintf(format, args...))
}

func (e *appError) Prefix(prefix string) Error {
	c := e.derive()
	c.prefix = prefix
	return c
}

func (e *appError) Suffix(suffix string) Error {
	c := e.derive()
	c.suffix = suffix
	return c
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	c := e.derive()
	c.msg = msg
	c.wrappedErrors = append(c.wrappedErrors, err...)
	return c
}

func (e *appError) Err(err ...error) Error {
	c := e.derive()
	c.wrappedErrors = append(c.wrappedErrors, err...)
	return c
}

func (e *appError) Is(target error) bool {
	if e == target || e.base == target {
		return true
	}
	if e.base != nil && e.base.Is(target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if err == target {
			return true
		}
	}
	return false
}

func (e *appError) SetExpandError(expand bool) Error {
	c := e.clone()
	c.expandError = expand
	return c
}

func (e *appError) SetExitCode(code int) Error {
	c := e.clone()
	c.exitcode = code
	return c
}

func (e *appError) ExitCode() int {
	if e.exitcode == 0 {
		return ExitCodeGeneric
	}
	return e.exitcode
}

func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}
