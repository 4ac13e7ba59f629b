package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/diceroller/pkg/lexer"
)

// Diagnostic is a reported error with its code point offset.
type Diagnostic struct {
	Pos     int
	Message string
}

// Reporter turns captured errors into caret diagnostics:
//
//	Error: expected die size.
//	3d+1
//	  ^
//
// Only the first error at the end of the input is reported; recovery can
// hit the end of input several times.
type Reporter struct {
	input       string
	out         io.Writer
	atEnd       bool
	diagnostics []Diagnostic
}

// NewReporter creates a Reporter for input writing to out. A nil out only
// collects diagnostics.
func NewReporter(input string, out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{input: input, out: out}
}

// Report records the error described by s.
func (r *Reporter) Report(s *ErrorState) {
	if s.AtEnd() {
		if r.atEnd {
			return
		}
		r.atEnd = true
	}
	r.croak(Message(s.Point, s.LastResolved), s.Token.Pos)
}

// ReportTokenization records a lexing failure.
func (r *Reporter) ReportTokenization(err *lexer.Error) {
	r.croak(err.Message, err.Pos)
}

// Diagnostics returns everything reported so far.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diagnostics
}

func (r *Reporter) croak(message string, pos int) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Pos: pos, Message: message})
	fmt.Fprint(r.out, Caret(r.input, message, pos))
}

// Caret formats a diagnostic pointing at pos in input.
func Caret(input, message string, pos int) string {
	return fmt.Sprintf("Error: %s.\n%s\n%s^\n", message, input, strings.Repeat(" ", max(pos, 0)))
}

// Message selects the diagnostic text for an error at point following last.
func Message(point NonTerminal, last Symbol) string {
	switch point {
	case Root, Expr:
		switch last {
		case SymbolDieHead:
			return "expected die size"
		case SymbolDice:
			return "expected comparison point, modifier, or operator"
		case SymbolModifier:
			return "expected operator or closing parenthesis following modifiers"
		case SymbolOpenParen:
			return "invalid characters at start of expression"
		case SymbolCloseParen:
			return "expected operator following closing parenthesis"
		case SymbolOperator:
			return "expected integer following operator"
		case SymbolInteger:
			return "expected die specifier or operator"
		case SymbolNone:
			return "expected expression"
		}
	case DiceSpec:
		if last == SymbolDieHead {
			return "expected die size"
		}
		return "invalid die specification"
	case ModifierSpec:
		switch last {
		case SymbolExplode:
			return "invalid comparison point after explosion specifier"
		case SymbolFail:
			return "invalid failure comparison point"
		case SymbolKeep:
			return "expected number of dice to keep"
		case SymbolDrop:
			return "expected number of dice to drop"
		case SymbolBound:
			return "expected number"
		case SymbolReroll:
			return "invalid reroll comparison point"
		case SymbolCritical:
			return "invalid critical comparison point"
		}
		return fmt.Sprintf("unknown modifier; last resolved %s", last)
	case ComparePoint:
		if last == SymbolComparator {
			return "expected number to follow comparison operator"
		}
		return fmt.Sprintf("expected comparison operator; last resolved %s", last)
	}
	return fmt.Sprintf("error in %s; last resolved %s", point, last)
}
