package apperrors

// Error is the error type shared by all conductor packages. Errors form a tree:
// an error created with New from a parent matches the parent with errors.Is.
type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	MsgErr(msg string, err ...error) Error
	Msg(msg string) Error
	Msgf(format string, args ...any) Error
	Prefix(prefix string) Error
	Suffix(suffix string) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetExitCode(code int) Error
	ExitCode() int
}

// Exit codes reported by the CLI for each error family.
const (
	ExitCodeGeneric = 1
	ExitCodeInput   = 2
	ExitCodeState   = 3
	ExitCodeStorage = 4
)
