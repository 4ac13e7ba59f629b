// Package lexer converts dice notation into tokens.
//
// Scanning tests an ordered rule table at each position and the first
// matching rule wins. The order is part of the grammar: "!!" must be tried
// before "!", "**" before "*", and dice with an explicit size before the
// bare "d" drop shorthand.
package lexer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/louisbranch/diceroller/pkg/dice"
)

// Error reports input no rule could tokenize.
type Error struct {
	// Pos is the code point offset of the failure.
	Pos     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tokenization failed at position %d: %s", e.Pos, e.Message)
}

// rule matches a lexeme at the start of the remaining input. A nil build
// discards the match.
type rule struct {
	pattern *regexp.Regexp
	build   func(groups []string) (Token, error)
}

func anchored(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + pattern + `)`)
}

func literal(text string, typ Type) rule {
	return rule{
		pattern: anchored(regexp.QuoteMeta(text)),
		build:   func([]string) (Token, error) { return Token{Type: typ}, nil },
	}
}

func comparator(symbol string) rule {
	cmp, ok := dice.ParseComparison(symbol)
	if !ok {
		panic("lexer: unknown comparator " + symbol)
	}
	return rule{
		pattern: anchored(regexp.QuoteMeta(symbol)),
		build: func([]string) (Token, error) {
			return Token{Type: Compare, Comparison: cmp}, nil
		},
	}
}

var rules = []rule{
	{pattern: anchored(`\s+`)},
	{pattern: anchored(`([1-9][0-9]*)?d([1-9][0-9]*)`), build: standardDie},
	{pattern: anchored(`([1-9][0-9]*)?d%`), build: percentDie},
	{pattern: anchored(`([1-9][0-9]*)?dF(\.[12])?`), build: fateDie},
	{pattern: anchored(`([1-9][0-9]*)d`), build: dieHead},

	literal("!!", Compound),
	literal("!p", Penetrate),
	literal("!", Explode),
	literal("kh", KeepHigh),
	literal("kl", KeepLow),
	literal("k", KeepHigh),
	literal("dh", DropHigh),
	literal("dl", DropLow),
	literal("d", DropLow),
	literal("min", Min),
	literal("max", Max),
	literal("ro", RerollOnce),
	literal("r", Reroll),
	literal("cs", CritSuccess),
	literal("cf", CritFailure),
	literal("sa", SortAsc),
	literal("sd", SortDesc),
	literal("s", SortAsc),
	literal("f", Fail),

	literal("**", Power),
	literal("^", Power),
	literal("+", Plus),
	literal("-", Minus),
	literal("*", Star),
	literal("/", Slash),
	literal("÷", Slash),
	literal("%", Percent),

	comparator(">="),
	comparator("<="),
	comparator("<>"),
	comparator(">"),
	comparator("<"),
	comparator("="),

	literal("(", LParen),
	literal(")", RParen),
	{pattern: anchored(`0|[1-9][0-9]*`), build: integer},
}

var errOutOfRange = errors.New("out of range")

func atoi(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errOutOfRange
	}
	return n, nil
}

func standardDie(groups []string) (Token, error) {
	count, err := atoi(groups[1], 1)
	if err != nil {
		return Token{}, err
	}
	sides, err := atoi(groups[2], 0)
	if err != nil {
		return Token{}, err
	}
	return Token{Type: Die, Dice: dice.Standard(sides, count), ImplicitCount: groups[1] == ""}, nil
}

func percentDie(groups []string) (Token, error) {
	count, err := atoi(groups[1], 1)
	if err != nil {
		return Token{}, err
	}
	return Token{Type: Die, Dice: dice.Percent(count)}, nil
}

func fateDie(groups []string) (Token, error) {
	count, err := atoi(groups[1], 1)
	if err != nil {
		return Token{}, err
	}
	return Token{Type: Die, Dice: dice.Fate(groups[2] == ".1", count)}, nil
}

func dieHead(groups []string) (Token, error) {
	count, err := atoi(groups[1], 1)
	if err != nil {
		return Token{}, err
	}
	return Token{Type: DieHead, Value: count}, nil
}

func integer(groups []string) (Token, error) {
	n, err := atoi(groups[0], 0)
	if err != nil {
		return Token{}, err
	}
	return Token{Type: Integer, Value: n}, nil
}

// Lexer scans dice notation one token at a time.
type Lexer struct {
	input string
	off   int // byte offset
	pos   int // code point offset
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token, or an EOF token once the input is consumed.
func (l *Lexer) Next() (Token, error) {
	for l.off < len(l.input) {
		rest := l.input[l.off:]
		r, groups := match(rest)
		if r == nil {
			region := unrecognized(rest)
			return Token{}, &Error{Pos: l.pos, Message: fmt.Sprintf("unrecognized input %q", region)}
		}
		start := l.pos
		l.off += len(groups[0])
		l.pos += utf8.RuneCountInString(groups[0])
		if r.build == nil {
			continue
		}
		tok, err := r.build(groups)
		if err != nil {
			return Token{}, &Error{Pos: start, Message: fmt.Sprintf("%q %v", groups[0], err)}
		}
		tok.Text = groups[0]
		tok.Pos = start
		tok.End = l.pos
		return tok, nil
	}
	return Token{Type: EOF, Pos: l.pos, End: l.pos}, nil
}

// Tokenize scans the whole input. The returned stream always ends with EOF.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func match(s string) (*rule, []string) {
	for i := range rules {
		if groups := rules[i].pattern.FindStringSubmatch(s); groups != nil && groups[0] != "" {
			return &rules[i], groups
		}
	}
	return nil, nil
}

// unrecognized returns the prefix of s up to the next position some rule
// accepts.
func unrecognized(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	end := size
	for end < len(s) {
		if r, _ := match(s[end:]); r != nil {
			break
		}
		_, size = utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}
