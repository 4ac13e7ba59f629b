package parser

import (
	"errors"

	"github.com/louisbranch/diceroller/pkg/lexer"
)

// NonTerminal is a grammar position where errors are captured.
type NonTerminal int

const (
	Root NonTerminal = iota
	Expr
	DiceSpec
	ModifierSpec
	ComparePoint
)

func (n NonTerminal) String() string {
	switch n {
	case Root:
		return "root"
	case Expr:
		return "expr"
	case DiceSpec:
		return "dice"
	case ModifierSpec:
		return "modifier"
	default:
		return "compare_point"
	}
}

// Recoverable reports whether a strategy may substitute a value at n.
// Root and DiceSpec failures always abort the parse.
func (n NonTerminal) Recoverable() bool {
	return n == Expr || n == ModifierSpec || n == ComparePoint
}

// Symbol is the most recently resolved grammar symbol.
type Symbol int

const (
	SymbolNone Symbol = iota
	SymbolInteger
	SymbolDieHead
	SymbolDice
	SymbolModifier
	SymbolOperator
	SymbolOpenParen
	SymbolCloseParen
	SymbolExplode
	SymbolReroll
	SymbolKeep
	SymbolDrop
	SymbolBound
	SymbolFail
	SymbolCritical
	SymbolSort
	SymbolComparator
)

var symbolNames = [...]string{
	SymbolNone:       "none",
	SymbolInteger:    "Integer",
	SymbolDieHead:    "Die",
	SymbolDice:       "dice",
	SymbolModifier:   "modifier",
	SymbolOperator:   "operator",
	SymbolOpenParen:  "OpenParen",
	SymbolCloseParen: "CloseParen",
	SymbolExplode:    "Explode",
	SymbolReroll:     "Reroll",
	SymbolKeep:       "Keep",
	SymbolDrop:       "Drop",
	SymbolBound:      "MinMax",
	SymbolFail:       "Fail",
	SymbolCritical:   "Critical",
	SymbolSort:       "Sort",
	SymbolComparator: "Comparator",
}

func (s Symbol) String() string {
	if int(s) < len(symbolNames) {
		return symbolNames[s]
	}
	return "unknown"
}

func symbolOf(t lexer.Type) Symbol {
	switch t {
	case lexer.Integer:
		return SymbolInteger
	case lexer.Die:
		return SymbolDice
	case lexer.DieHead:
		return SymbolDieHead
	case lexer.Plus, lexer.Minus, lexer.Star, lexer.Slash, lexer.Percent, lexer.Power:
		return SymbolOperator
	case lexer.LParen:
		return SymbolOpenParen
	case lexer.RParen:
		return SymbolCloseParen
	case lexer.Explode, lexer.Compound, lexer.Penetrate:
		return SymbolExplode
	case lexer.Reroll, lexer.RerollOnce:
		return SymbolReroll
	case lexer.KeepHigh, lexer.KeepLow:
		return SymbolKeep
	case lexer.DropHigh, lexer.DropLow:
		return SymbolDrop
	case lexer.Min, lexer.Max:
		return SymbolBound
	case lexer.Fail:
		return SymbolFail
	case lexer.CritSuccess, lexer.CritFailure:
		return SymbolCritical
	case lexer.SortAsc, lexer.SortDesc:
		return SymbolSort
	case lexer.Compare:
		return SymbolComparator
	default:
		return SymbolNone
	}
}

// ErrorState describes a captured error.
type ErrorState struct {
	Point NonTerminal
	// LastResolved is the last symbol the parser completed before the error.
	LastResolved Symbol
	// Token is the offending token; an EOF token at the end of the input.
	Token lexer.Token
	Err   error
}

// AtEnd reports whether the error was raised at the end of the input.
func (s *ErrorState) AtEnd() bool {
	return s.Token.Type == lexer.EOF
}

// Recovery is a Strategy's decision.
type Recovery int

const (
	// Abort fails the whole parse.
	Abort Recovery = iota
	// Substitute replaces the failed construct and continues: an Error
	// node for an expression, a no-op placeholder for a modifier, and a
	// never-matching comparison point for a comparison.
	Substitute
)

// Strategy decides how to handle an error at a recoverable capture point.
type Strategy func(*ErrorState) Recovery

// Lenient recovers wherever the grammar allows.
func Lenient(*ErrorState) Recovery { return Substitute }

// Strict aborts on the first error.
func Strict(*ErrorState) Recovery { return Abort }

// capture reports err at point and asks the strategy whether to continue.
// It returns nil when the caller should substitute, or the error to
// propagate.
func (p *Parser) capture(point NonTerminal, err error) error {
	var f *fatal
	if errors.As(err, &f) {
		return err
	}
	state := &ErrorState{Point: point, LastResolved: p.last, Token: p.peek(), Err: err}
	var perr *Error
	if errors.As(err, &perr) {
		state.Token = perr.Token
	}
	if p.reporter != nil {
		p.reporter.Report(state)
	}
	if point.Recoverable() && p.strategy(state) == Substitute {
		return nil
	}
	return &fatal{err: err}
}

// resync skips tokens until one that may follow the failed construct.
func (p *Parser) resync(follows func(lexer.Token) bool) {
	for {
		tok := p.peek()
		if tok.Type == lexer.EOF || follows(tok) {
			return
		}
		p.advance()
	}
}

func followsExpr(tok lexer.Token) bool {
	return tok.Type == lexer.RParen
}

func followsModifier(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.Plus, lexer.Minus, lexer.Star, lexer.Slash, lexer.Percent, lexer.Power, lexer.RParen:
		return true
	}
	return startsModifier(tok)
}
