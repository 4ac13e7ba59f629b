package roller

import (
	"errors"
	"fmt"

	"github.com/louisbranch/diceroller/pkg/lexer"
	"github.com/louisbranch/diceroller/pkg/parser"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"
	// CodeTokenization means part of the input is not dice notation.
	CodeTokenization Code = "TOKENIZATION"
	// CodeUnexpectedToken means the input is well formed tokens in an
	// order the grammar rejects.
	CodeUnexpectedToken Code = "UNEXPECTED_TOKEN"
	// CodeUnexpectedEOF means the input ended in the middle of an
	// expression.
	CodeUnexpectedEOF Code = "UNEXPECTED_EOF"
	// CodeEvaluation means the expression parsed but has no value.
	CodeEvaluation Code = "EVALUATION"
	// CodeUnsupported means the expression cannot be used for the
	// requested operation.
	CodeUnsupported Code = "UNSUPPORTED"
)

// Error is the error type returned by Roller.
type Error struct {
	Code    Code
	Message string
	// Position is the code point offset of the failure in the normalized
	// input, or -1 when the failure has no position.
	Position int
	Cause    error
}

// Sentinels for errors.Is; matching compares codes only.
var (
	ErrTokenization    = &Error{Code: CodeTokenization}
	ErrUnexpectedToken = &Error{Code: CodeUnexpectedToken}
	ErrUnexpectedEOF   = &Error{Code: CodeUnexpectedEOF}
	ErrEvaluation      = &Error{Code: CodeEvaluation}
	ErrUnsupported     = &Error{Code: CodeUnsupported}
)

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Caret renders the error as a caret diagnostic against input. Errors
// without a position render the message alone.
func (e *Error) Caret(input string) string {
	if e.Position < 0 {
		return fmt.Sprintf("Error: %s.\n", e.Message)
	}
	return parser.Caret(input, e.Message, e.Position)
}

// classify converts a lexer or parser failure into an *Error. diag is the
// message the reporter produced for it, if any.
func classify(err error, diag *parser.Diagnostic) *Error {
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return &Error{Code: CodeTokenization, Message: lerr.Message, Position: lerr.Pos, Cause: err}
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		out := &Error{Code: CodeUnexpectedToken, Message: perr.Message, Position: perr.Token.Pos, Cause: err}
		if errors.Is(err, parser.ErrUnexpectedEOF) {
			out.Code = CodeUnexpectedEOF
		}
		if diag != nil {
			out.Message = diag.Message
			out.Position = diag.Pos
		}
		return out
	}
	return &Error{Code: CodeUnknown, Message: err.Error(), Position: -1, Cause: err}
}

func evaluationError(err error) *Error {
	return &Error{Code: CodeEvaluation, Message: err.Error(), Position: -1, Cause: err}
}
