// Package parser builds expression trees from dice notation tokens.
//
// Grammar, lowest precedence first:
//
//	root     := expr EOF
//	expr     := term (("+" | "-") term)*
//	term     := power (("*" | "/" | "%") power)*
//	power    := atom ("^" power)?
//	atom     := "(" expr ")" | INTEGER | roll
//	roll     := DIE modifier*
//	modifier := ("!" | "!!" | "!p" | "r" | "ro") cmp?
//	          | ("kh" | "kl" | "dh" | "dl") INTEGER?
//	          | ("min" | "max") INTEGER
//	          | ("f" | "cs" | "cf") cmp
//	          | cmp
//	          | "sa" | "sd"
//	          | DIE        (implicit count: drop lowest)
//	cmp      := COMPARATOR INTEGER
//
// Errors are captured at the expr, modifier, and cmp productions, where a
// Strategy may substitute a placeholder and let parsing continue. Errors
// in a die spec or at the root always fail the parse.
package parser

import (
	"fmt"

	"github.com/louisbranch/diceroller/pkg/dice"
	"github.com/louisbranch/diceroller/pkg/expression"
	"github.com/louisbranch/diceroller/pkg/lexer"
)

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	last     Symbol
	strategy Strategy
	reporter *Reporter
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrategy sets the recovery strategy. The default is Lenient.
func WithStrategy(s Strategy) Option {
	return func(p *Parser) {
		if s != nil {
			p.strategy = s
		}
	}
}

// WithReporter sends captured errors to r.
func WithReporter(r *Reporter) Option {
	return func(p *Parser) {
		p.reporter = r
	}
}

// New creates a Parser over tokens, which must end with an EOF token.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	if n := len(tokens); n == 0 || tokens[n-1].Type != lexer.EOF {
		end := 0
		if n > 0 {
			end = tokens[n-1].End
		}
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Pos: end, End: end})
	}
	p := &Parser{tokens: tokens, strategy: Lenient}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a complete token stream.
func Parse(tokens []lexer.Token, opts ...Option) (expression.Expression, error) {
	return New(tokens, opts...).Parse()
}

// Parse parses the root expression. Recovered errors are kept in the tree
// as expression.Error nodes; unrecovered errors are returned.
func (p *Parser) Parse() (expression.Expression, error) {
	expr, err := p.expression()
	if err == nil && p.peek().Type != lexer.EOF {
		err = p.unexpected("expected operator or end of input")
	}
	if err != nil {
		return nil, unwrapFatal(p.capture(Root, err))
	}
	return expr, nil
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.EOF {
		p.pos++
	}
	p.last = symbolOf(tok.Type)
	return tok
}

func (p *Parser) unexpected(format string, args ...any) error {
	return &Error{Token: p.peek(), Message: fmt.Sprintf(format, args...)}
}

var additive = map[lexer.Type]expression.Op{
	lexer.Plus:  expression.Add,
	lexer.Minus: expression.Sub,
}

var multiplicative = map[lexer.Type]expression.Op{
	lexer.Star:    expression.Mul,
	lexer.Slash:   expression.Div,
	lexer.Percent: expression.Mod,
}

// combine builds the partial tree of a binary node whose right operand
// failed.
func combine(op expression.Op, left, right expression.Expression) expression.Expression {
	if right == nil {
		return left
	}
	if left == nil {
		return right
	}
	return expression.Binary{Op: op, Left: left, Right: right}
}

func (p *Parser) expression() (expression.Expression, error) {
	left, err := p.term()
	for err == nil {
		op, ok := additive[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		var right expression.Expression
		right, err = p.term()
		if err != nil {
			left = combine(op, left, right)
			break
		}
		left = expression.Binary{Op: op, Left: left, Right: right}
	}
	if cerr := p.capture(Expr, err); cerr != nil {
		return left, cerr
	}
	p.resync(followsExpr)
	return expression.Error{Err: unwrapFatal(err), Partial: left}, nil
}

func (p *Parser) term() (expression.Expression, error) {
	left, err := p.power()
	if err != nil {
		return left, err
	}
	for {
		op, ok := multiplicative[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.power()
		if err != nil {
			return combine(op, left, right), err
		}
		left = expression.Binary{Op: op, Left: left, Right: right}
	}
}

// power is right associative: 2^3^2 is 2^(3^2).
func (p *Parser) power() (expression.Expression, error) {
	base, err := p.atom()
	if err != nil || p.peek().Type != lexer.Power {
		return base, err
	}
	p.advance()
	exp, err := p.power()
	if err != nil {
		return combine(expression.Pow, base, exp), err
	}
	return expression.Binary{Op: expression.Pow, Left: base, Right: exp}, nil
}

func (p *Parser) atom() (expression.Expression, error) {
	tok := p.peek()
	switch {
	case tok.Type == lexer.LParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.peek().Type != lexer.RParen {
			return expression.Braced{Inner: inner}, p.unexpected("expected closing parenthesis")
		}
		p.advance()
		return expression.Braced{Inner: inner}, nil
	case tok.Type == lexer.Integer:
		p.advance()
		return expression.Number{Value: tok.Value}, nil
	case tok.Type == lexer.Die, tok.Type == lexer.DieHead, isBareDie(tok):
		return p.roll()
	default:
		return nil, p.unexpected("expected integer, die, or opening parenthesis")
	}
}

// isBareDie reports a lone "d", which starts a die in atom position.
func isBareDie(tok lexer.Token) bool {
	return tok.Type == lexer.DropLow && tok.Text == "d"
}

func (p *Parser) roll() (expression.Expression, error) {
	d, err := p.diceSpec()
	if err != nil {
		return nil, err
	}
	var mods []dice.Modifier
	for startsModifier(p.peek()) {
		m, err := p.modifier(d)
		if err != nil {
			return expression.Roll{Roll: dice.NewRoll(d, mods...)}, err
		}
		mods = append(mods, m)
	}
	return expression.Roll{Roll: dice.NewRoll(d, mods...)}, nil
}

func (p *Parser) diceSpec() (dice.Dice, error) {
	tok := p.advance()
	var err error
	switch tok.Type {
	case lexer.Die:
		if err = tok.Dice.Validate(); err == nil {
			return tok.Dice, nil
		}
		err = &Error{Token: tok, Message: err.Error()}
	default:
		p.last = SymbolDieHead
		err = p.unexpected("expected die size")
	}
	return dice.Dice{}, p.capture(DiceSpec, err)
}

// startsModifier reports whether tok may begin a modifier.
func startsModifier(tok lexer.Token) bool {
	switch {
	case tok.Type.IsModifier(), tok.Type == lexer.Compare:
		return true
	case tok.Type == lexer.Die:
		return tok.ImplicitCount && tok.Dice.Kind == dice.KindStandard
	}
	return false
}

// modifier parses one modifier, substituting a placeholder on recoverable
// errors.
func (p *Parser) modifier(d dice.Dice) (dice.Modifier, error) {
	m, err := p.modifierBody(d)
	if err == nil {
		p.last = SymbolModifier
		return m, nil
	}
	if err := p.capture(ModifierSpec, err); err != nil {
		return dice.Modifier{}, err
	}
	p.resync(followsModifier)
	p.last = SymbolModifier
	return dice.Placeholder(), nil
}

func (p *Parser) modifierBody(d dice.Dice) (dice.Modifier, error) {
	if p.peek().Type == lexer.Compare {
		cmp, err := p.comparePoint()
		return dice.Success(cmp), err
	}
	tok := p.advance()
	switch tok.Type {
	case lexer.Explode, lexer.Compound, lexer.Penetrate:
		mode := dice.Exploding
		if tok.Type == lexer.Compound {
			mode = dice.Compounding
		} else if tok.Type == lexer.Penetrate {
			mode = dice.Penetrating
		}
		cmp, err := p.optionalCompare(dice.MaximumOf(d))
		return dice.Explode(cmp, mode), err
	case lexer.Reroll, lexer.RerollOnce:
		cmp, err := p.optionalCompare(dice.NewComparisonPoint(dice.Equal, 1))
		return dice.Reroll(tok.Type == lexer.RerollOnce, cmp), err
	case lexer.KeepHigh, lexer.KeepLow:
		return dice.Keep(tok.Type == lexer.KeepHigh, p.optionalCount()), nil
	case lexer.DropHigh, lexer.DropLow:
		return dice.Drop(tok.Type == lexer.DropHigh, p.optionalCount()), nil
	case lexer.Die:
		p.last = SymbolDrop
		return dice.Drop(false, tok.Dice.Sides), nil
	case lexer.Min, lexer.Max:
		if p.peek().Type != lexer.Integer {
			return dice.Modifier{}, p.unexpected("expected integer after %s", tok.Text)
		}
		n := p.advance().Value
		if tok.Type == lexer.Min {
			return dice.Minimum(n), nil
		}
		return dice.Maximum(n), nil
	case lexer.Fail, lexer.CritSuccess, lexer.CritFailure:
		if p.peek().Type != lexer.Compare {
			return dice.Modifier{}, p.unexpected("expected comparison point after %s", tok.Text)
		}
		cmp, err := p.comparePoint()
		switch tok.Type {
		case lexer.Fail:
			return dice.Failure(cmp), err
		case lexer.CritSuccess:
			return dice.CriticalSuccess(cmp), err
		default:
			return dice.CriticalFailure(cmp), err
		}
	case lexer.SortAsc, lexer.SortDesc:
		return dice.Sorting(tok.Type == lexer.SortAsc), nil
	default:
		return dice.Modifier{}, &Error{Token: tok, Message: "expected modifier"}
	}
}

// optionalCompare parses a comparison point if one follows, or returns def.
// A bare integer is rejected since it cannot follow a roll any other way.
func (p *Parser) optionalCompare(def dice.ComparisonPoint) (dice.ComparisonPoint, error) {
	switch p.peek().Type {
	case lexer.Compare:
		return p.comparePoint()
	case lexer.Integer:
		return def, p.unexpected("expected comparison operator before integer")
	default:
		return def, nil
	}
}

func (p *Parser) optionalCount() int {
	if p.peek().Type != lexer.Integer {
		return 1
	}
	return p.advance().Value
}

// comparePoint parses COMPARATOR INTEGER, substituting a point that never
// matches on recoverable errors.
func (p *Parser) comparePoint() (dice.ComparisonPoint, error) {
	op := p.advance()
	if p.peek().Type == lexer.Integer {
		return dice.NewComparisonPoint(op.Comparison, p.advance().Value), nil
	}
	err := p.unexpected("expected integer after %q", op.Text)
	if err := p.capture(ComparePoint, err); err != nil {
		return dice.ComparisonPoint{}, err
	}
	p.resync(followsModifier)
	return dice.Never(), nil
}
