package lexer

import (
	"errors"
	"testing"

	"github.com/louisbranch/diceroller/pkg/dice"
)

func types(tokens []Token) []Type {
	out := make([]Type, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizeTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Type
	}{
		{"integer", "42", []Type{Integer, EOF}},
		{"arithmetic", "1 + 2 - 3 * 4 / 5 % 6", []Type{Integer, Plus, Integer, Minus, Integer, Star, Integer, Slash, Integer, Percent, Integer, EOF}},
		{"power aliases", "2^3**4", []Type{Integer, Power, Integer, Power, Integer, EOF}},
		{"divide alias", "8÷2", []Type{Integer, Slash, Integer, EOF}},
		{"parens", "(1)", []Type{LParen, Integer, RParen, EOF}},
		{"die", "4d6", []Type{Die, EOF}},
		{"explode variants", "d6!!d6!pd6!", []Type{Die, Compound, Die, Penetrate, Die, Explode, EOF}},
		{"keep and drop", "4d6khklkdhdld", []Type{Die, KeepHigh, KeepLow, KeepHigh, DropHigh, DropLow, DropLow, EOF}},
		{"drop shorthand", "4d6d2", []Type{Die, Die, EOF}},
		{"bounds", "3d6min2max5", []Type{Die, Min, Integer, Max, Integer, EOF}},
		{"rerolls", "d6ror", []Type{Die, RerollOnce, Reroll, EOF}},
		{"criticals", "d20cs=20cf=1", []Type{Die, CritSuccess, Compare, Integer, CritFailure, Compare, Integer, EOF}},
		{"sorting", "4d6sasds", []Type{Die, SortAsc, SortDesc, SortAsc, EOF}},
		{"targets", "8d6>=4f1", []Type{Die, Compare, Integer, Fail, Integer, EOF}},
		{"comparators", ">= <= <> > < =", []Type{Compare, Compare, Compare, Compare, Compare, Compare, EOF}},
		{"die head", "3d", []Type{DieHead, EOF}},
		{"bang equals is explode", "d6!=3", []Type{Die, Explode, Compare, Integer, EOF}},
		{"empty", "   ", []Type{EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) returned error: %v", tt.input, err)
			}
			got := types(tokens)
			if len(got) != len(tt.expected) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("token[%d] of %q = %v, want %v", i, tt.input, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeDicePayloads(t *testing.T) {
	tests := []struct {
		input    string
		dice     dice.Dice
		implicit bool
	}{
		{"4d6", dice.Standard(6, 4), false},
		{"d20", dice.Standard(20, 1), true},
		{"12d100", dice.Standard(100, 12), false},
		{"d%", dice.Percent(1), false},
		{"3d%", dice.Percent(3), false},
		{"dF", dice.Fate(false, 1), false},
		{"4dF.2", dice.Fate(false, 4), false},
		{"2dF.1", dice.Fate(true, 2), false},
	}
	for _, tt := range tests {
		tokens, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("Tokenize(%q) returned error: %v", tt.input, err)
		}
		tok := tokens[0]
		if tok.Type != Die || tok.Dice != tt.dice || tok.ImplicitCount != tt.implicit {
			t.Fatalf("Tokenize(%q)[0] = %+v, want die %v implicit=%v", tt.input, tok, tt.dice, tt.implicit)
		}
		if tok.Text != tt.input {
			t.Fatalf("token text = %q, want %q", tok.Text, tt.input)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("2 ÷ (d6+10)")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	want := []struct {
		pos, end int
	}{
		{0, 1}, {2, 3}, {4, 5}, {5, 7}, {7, 8}, {8, 10}, {10, 11}, {11, 11},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Pos != w.pos || tokens[i].End != w.end {
			t.Fatalf("token[%d] %v spans %d..%d, want %d..%d", i, tokens[i], tokens[i].Pos, tokens[i].End, w.pos, w.end)
		}
	}
	if tokens[5].Value != 10 {
		t.Fatalf("integer value = %d, want 10", tokens[5].Value)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		input   string
		pos     int
		message string
	}{
		{"2d6 + x", 6, `unrecognized input "x"`},
		{"1 + ??? + 2", 4, `unrecognized input "???"`},
		{"é1", 0, `unrecognized input "é"`},
		{"1+99999999999999999999999", 2, `"99999999999999999999999" out of range`},
	}
	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		var lexErr *Error
		if !errors.As(err, &lexErr) {
			t.Fatalf("Tokenize(%q) error = %v, want *Error", tt.input, err)
		}
		if lexErr.Pos != tt.pos || lexErr.Message != tt.message {
			t.Fatalf("Tokenize(%q) error = %d %q, want %d %q", tt.input, lexErr.Pos, lexErr.Message, tt.pos, tt.message)
		}
	}
}
