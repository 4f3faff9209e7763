package errlog

import "fmt"

// ExitCode is the daemon's process exit status taxonomy, mirrored
// from spec.md §7's error classes onto the handful of conditions that
// can end the whole process rather than one client connection.
type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeUpstreamDial  ExitCode = 3
	ExitCodeListenFailed  ExitCode = 4
	ExitCodeChildSpawn    ExitCode = 5
	ExitCodeProtocolFatal ExitCode = 6
)

// Error wraps an underlying error with the ExitCode cmd/wlproxyd
// should exit with, and an optional operator-facing suggestion.
type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New builds a bare Error with no underlying cause.
func New(code ExitCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewWithSuggestion attaches operator guidance to an Error, for the
// startup-time failures a human is expected to read and act on.
func NewWithSuggestion(code ExitCode, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Wrap turns any error into an *Error, preserving its ExitCode if it
// already is one, defaulting to ExitCodeGeneral otherwise.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	if wrapped, ok := err.(*Error); ok {
		return wrapped
	}
	return &Error{Code: ExitCodeGeneral, Message: "proxy error", Underlying: err}
}

// WrapWithCode wraps err under the given code and message, regardless
// of whether err is already an *Error.
func WrapWithCode(code ExitCode, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Underlying: err}
}

// HandleReturn logs err (including its Suggestion, if any) and reports
// the ExitCode the process should exit with. Mirrors adoctl's own
// HandleReturn, the single place cmd/wlproxyd's main translates a
// startup failure into os.Exit's argument.
func HandleReturn(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	e := Wrap(err)
	Error().Err(e.Underlying).Msg(e.Message)
	if e.Suggestion != "" {
		Info().Msg(e.Suggestion)
	}
	return e.Code
}
