package lexer

import (
	"fmt"

	"github.com/louisbranch/diceroller/pkg/dice"
)

// Type identifies the kind of a token.
type Type int

const (
	Illegal Type = iota
	EOF

	// Literals
	Integer // 12
	Die     // 4d6, d%, 2dF.1
	DieHead // 3d, a die missing its size

	// Modifiers
	Explode    // !
	Compound   // !!
	Penetrate  // !p
	KeepHigh   // kh, k
	KeepLow    // kl
	DropHigh   // dh
	DropLow    // dl, d
	Min        // min
	Max        // max
	Reroll     // r
	RerollOnce // ro
	CritSuccess
	CritFailure
	SortAsc  // sa, s
	SortDesc // sd
	Fail     // f

	// Operators
	Plus
	Minus
	Star
	Slash
	Percent
	Power // ^, **
	Compare

	LParen
	RParen
)

var typeNames = map[Type]string{
	Illegal:     "illegal",
	EOF:         "end of input",
	Integer:     "integer",
	Die:         "die",
	DieHead:     "die",
	Explode:     "explode",
	Compound:    "compound",
	Penetrate:   "penetrate",
	KeepHigh:    "keep highest",
	KeepLow:     "keep lowest",
	DropHigh:    "drop highest",
	DropLow:     "drop lowest",
	Min:         "minimum",
	Max:         "maximum",
	Reroll:      "reroll",
	RerollOnce:  "reroll once",
	CritSuccess: "critical success",
	CritFailure: "critical failure",
	SortAsc:     "sort ascending",
	SortDesc:    "sort descending",
	Fail:        "failure",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Percent:     "'%'",
	Power:       "'^'",
	Compare:     "comparison",
	LParen:      "'('",
	RParen:      "')'",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsModifier reports whether the token starts a modifier.
func (t Type) IsModifier() bool {
	return t >= Explode && t <= Fail
}

// Token is a lexeme with its semantic payload. Positions are code point
// offsets into the normalized input.
type Token struct {
	Type Type
	Text string
	Pos  int
	End  int
	// Value is the literal of an Integer, or the count of a DieHead.
	Value int
	// Dice is the population of a Die token.
	Dice dice.Dice
	// ImplicitCount is set on Die tokens written without a count, such as
	// "d6", which double as drop-lowest shorthand after a roll.
	ImplicitCount bool
	// Comparison is the operator of a Compare token.
	Comparison dice.Comparison
}

func (t Token) String() string {
	if t.Type == EOF {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}
