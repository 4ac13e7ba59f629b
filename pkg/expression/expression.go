// Package expression defines the parsed form of dice notation and the two
// tree walks that evaluate it.
//
// A parsed tree is first resolved with Rolled, which draws every die and
// returns a new tree, and then folded to an integer with ComputedValue.
package expression

import (
	"github.com/louisbranch/diceroller/pkg/dice"
)

// Expression is a node of the parse tree.
type Expression interface {
	String() string
	exprNode()
}

// Op is a binary arithmetic operator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Pow
)

// Symbol returns the operator as written in canonical notation.
func (o Op) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	default:
		return "^"
	}
}

// debugSymbol is the operator head of the prefix debug form.
func (o Op) debugSymbol() string {
	if o == Div {
		return "÷"
	}
	return o.Symbol()
}

// Number is an integer literal.
type Number struct {
	Value int
}

// Roll is a roll that has not been drawn yet.
type Roll struct {
	Roll dice.Roll
}

// Result is a drawn roll.
type Result struct {
	Roll    dice.Roll
	Results []dice.RollResult
}

// Binary applies Op to two operands.
type Binary struct {
	Op    Op
	Left  Expression
	Right Expression
}

// Braced is a parenthesized expression.
type Braced struct {
	Inner Expression
}

// Error marks where the parser recovered from a syntax error. Partial holds
// whatever was built before the error and may be nil.
type Error struct {
	Err     error
	Partial Expression
}

func (Number) exprNode() {}
func (Roll) exprNode()   {}
func (Result) exprNode() {}
func (Binary) exprNode() {}
func (Braced) exprNode() {}
func (Error) exprNode()  {}
