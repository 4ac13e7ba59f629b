package parser

import (
	"errors"
	"fmt"

	"github.com/louisbranch/diceroller/pkg/lexer"
)

// ErrUnexpectedEOF matches errors raised at the end of the input.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// Error is a grammar violation at Token.
type Error struct {
	Token   lexer.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Type == lexer.EOF {
		return fmt.Sprintf("unexpected end of input: %s", e.Message)
	}
	return fmt.Sprintf("unexpected %s at position %d: %s", e.Token, e.Token.Pos, e.Message)
}

// Unwrap lets errors.Is match ErrUnexpectedEOF.
func (e *Error) Unwrap() error {
	if e.Token.Type == lexer.EOF {
		return ErrUnexpectedEOF
	}
	return nil
}

// fatal marks an error a capture point chose not to recover from, so
// enclosing capture points pass it through untouched.
type fatal struct {
	err error
}

func (f *fatal) Error() string { return f.err.Error() }
func (f *fatal) Unwrap() error { return f.err }

func unwrapFatal(err error) error {
	var f *fatal
	if errors.As(err, &f) {
		return f.err
	}
	return err
}
