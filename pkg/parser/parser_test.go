package parser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/louisbranch/diceroller/pkg/dice"
	"github.com/louisbranch/diceroller/pkg/expression"
	"github.com/louisbranch/diceroller/pkg/lexer"
)

func parse(t *testing.T, input string, opts ...Option) (expression.Expression, *Reporter, error) {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", input, err)
	}
	reporter := NewReporter(input, nil)
	opts = append([]Option{WithReporter(reporter)}, opts...)
	expr, err := Parse(tokens, opts...)
	return expr, reporter, err
}

func mustParse(t *testing.T, input string) expression.Expression {
	t.Helper()
	expr, reporter, err := parse(t, input)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", input, err)
	}
	if d := reporter.Diagnostics(); len(d) != 0 {
		t.Fatalf("Parse(%q) reported %v", input, d)
	}
	return expr
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		debug string
	}{
		{"2+3*4", "(+ 2 (* 3 4))"},
		{"2*3+4", "(+ (* 2 3) 4)"},
		{"10-4-3", "(- (- 10 4) 3)"},
		{"2^3^2", "(^ 2 (^ 3 2))"},
		{"2**3*2", "(* (^ 2 3) 2)"},
		{"8÷2%3", "(% (÷ 8 2) 3)"},
		{"(1+2)*3", "(* (braced (+ 1 2)) 3)"},
		{"4d6+2", "(+ 4d6 2)"},
	}
	for _, tt := range tests {
		expr := mustParse(t, tt.input)
		if got := expression.Debug(expr); got != tt.debug {
			t.Fatalf("Debug(%q) = %s, want %s", tt.input, got, tt.debug)
		}
	}
}

func TestParseRollNotation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4d6", "4d6"},
		{"d20", "1d20"},
		{"d%", "1d%"},
		{"4dF", "4dF"},
		{"4dF.2", "4dF"},
		{"2dF.1", "2dF.1"},
		{"3d6!", "3d6!"},
		{"3d6!!", "3d6!!"},
		{"3d6!p>=5", "3d6!p>=5"},
		{"d6!=3", "1d6!=3"},
		{"d6r", "1d6r=1"},
		{"d6ro<3", "1d6ro<3"},
		{"4d6k", "4d6kh1"},
		{"4d6kl2", "4d6kl2"},
		{"4d6d", "4d6dl1"},
		{"4d6d2", "4d6dl2"},
		{"4d6dh1", "4d6dh1"},
		{"3d6min2max5", "3d6min2max5"},
		{"8d6>=4f<2", "8d6>=4f<2"},
		{"d20cs=20cf=1", "1d20cs=20cf=1"},
		{"4d6s", "4d6sa"},
		{"4d6sd", "4d6sd"},
		{"4d6!kh3 + 2", "4d6!kh3+2"},
	}
	for _, tt := range tests {
		expr := mustParse(t, tt.input)
		if got := expr.String(); got != tt.want {
			t.Fatalf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseRollStructure(t *testing.T) {
	expr := mustParse(t, "4d6!kh3")
	roll, ok := expr.(expression.Roll)
	if !ok {
		t.Fatalf("Parse returned %T, want expression.Roll", expr)
	}
	want := dice.NewRoll(dice.Standard(6, 4),
		dice.ExplodeOnMax(dice.Standard(6, 4), dice.Exploding),
		dice.Keep(true, 3),
	)
	if !roll.Roll.Equal(want) {
		t.Fatalf("roll = %s, want %s", roll.Roll, want)
	}
}

// TestParseRoundTrip parses the canonical rendering of constructed rolls.
func TestParseRoundTrip(t *testing.T) {
	d := dice.Standard(10, 6)
	rolls := []dice.Roll{
		dice.NewRoll(d),
		dice.NewRoll(d, dice.Minimum(2), dice.Maximum(9)),
		dice.NewRoll(d, dice.ExplodeOnMax(d, dice.Penetrating), dice.Drop(true, 1)),
		dice.NewRoll(d, dice.Explode(dice.NewComparisonPoint(dice.NotEqual, 3), dice.Compounding)),
		dice.NewRoll(d, dice.RerollOnes(true), dice.Keep(false, 2), dice.Sorting(false)),
		dice.NewRoll(d, dice.Success(dice.MaximumOf(d)), dice.Failure(dice.NewComparisonPoint(dice.LesserEqual, 2))),
		dice.NewRoll(d, dice.CriticalSuccess(dice.NewComparisonPoint(dice.Greater, 8)), dice.CriticalFailure(dice.NewComparisonPoint(dice.Lesser, 2))),
		dice.NewRoll(dice.Percent(2), dice.Reroll(false, dice.NewComparisonPoint(dice.GreaterEqual, 95))),
		dice.NewRoll(dice.Fate(true, 4), dice.Sorting(true)),
	}
	for _, r := range rolls {
		expr := mustParse(t, r.String())
		got, ok := expr.(expression.Roll)
		if !ok {
			t.Fatalf("Parse(%q) returned %T", r.String(), expr)
		}
		if !got.Roll.Equal(r) {
			t.Fatalf("Parse(%q) = %s, want %s", r.String(), got.Roll, r)
		}
	}
}

func TestParseFatalErrors(t *testing.T) {
	tests := []struct {
		input   string
		pos     int
		message string
		eof     bool
	}{
		{"3d", 2, "expected die size", true},
		{"3d+1", 2, "expected die size", false},
		{"d", 1, "expected die size", true},
		{"4d6 5", 4, "expected comparison point, modifier, or operator", false},
		{"4d6kh3 5", 7, "expected operator or closing parenthesis following modifiers", false},
		{"2 3", 2, "expected die specifier or operator", false},
		{"(2))", 3, "expected operator following closing parenthesis", false},
	}
	for _, tt := range tests {
		expr, reporter, err := parse(t, tt.input)
		if err == nil {
			t.Fatalf("Parse(%q) = %v, want error", tt.input, expr)
		}
		if got := errors.Is(err, ErrUnexpectedEOF); got != tt.eof {
			t.Fatalf("Parse(%q) error %v: EOF = %v, want %v", tt.input, err, got, tt.eof)
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) error = %T, want *Error", tt.input, err)
		}
		d := reporter.Diagnostics()
		if len(d) != 1 || d[0].Pos != tt.pos || d[0].Message != tt.message {
			t.Fatalf("Parse(%q) diagnostics = %+v, want [{%d %s}]", tt.input, d, tt.pos, tt.message)
		}
	}
}

func TestParseRecoversFromErrors(t *testing.T) {
	tests := []struct {
		input    string
		rendered string
		pos      int
		message  string
	}{
		{"2+", "2?", 2, "expected integer following operator"},
		{"", "?", 0, "expected expression"},
		{"4d6!3", "4d6?", 4, "invalid comparison point after explosion specifier"},
		{"4d6r2", "4d6?", 4, "invalid reroll comparison point"},
		{"4d6min", "4d6?", 6, "expected number"},
		{"4d6f3", "4d6?", 4, "invalid failure comparison point"},
		{"d20cs", "1d20?", 5, "invalid critical comparison point"},
		{"4d6!>", "4d6!?", 5, "expected number to follow comparison operator"},
		{"(2+*3)", "(2?)", 3, "expected integer following operator"},
		{"4d6f<", "4d6f?", 5, "expected number to follow comparison operator"},
	}
	for _, tt := range tests {
		expr, reporter, err := parse(t, tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
		}
		if got := expr.String(); got != tt.rendered {
			t.Fatalf("Parse(%q).String() = %q, want %q", tt.input, got, tt.rendered)
		}
		d := reporter.Diagnostics()
		if len(d) != 1 || d[0].Pos != tt.pos || d[0].Message != tt.message {
			t.Fatalf("Parse(%q) diagnostics = %+v, want [{%d %s}]", tt.input, d, tt.pos, tt.message)
		}
	}
}

// TestParseReportsEndOfInputOnce ensures recovery does not repeat EOF errors.
func TestParseReportsEndOfInputOnce(t *testing.T) {
	expr, reporter, err := parse(t, "(4d6!>")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d := reporter.Diagnostics(); len(d) != 1 {
		t.Fatalf("diagnostics = %+v, want one", d)
	}
	errs := expression.Errors(expr)
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnexpectedEOF) {
		t.Fatalf("tree errors = %v, want one EOF error", errs)
	}
}

func TestParseStrictAborts(t *testing.T) {
	_, _, err := parse(t, "2+", WithStrategy(Strict))
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("Parse error = %v, want %v", err, ErrUnexpectedEOF)
	}
	_, _, err = parse(t, "4d6!3", WithStrategy(Strict))
	var perr *Error
	if !errors.As(err, &perr) || perr.Token.Type != lexer.Integer {
		t.Fatalf("Parse error = %v, want unexpected integer", err)
	}
}

func TestStrategySeesErrorState(t *testing.T) {
	var states []ErrorState
	record := func(s *ErrorState) Recovery {
		states = append(states, *s)
		return Substitute
	}
	if _, _, err := parse(t, "4d6!3", WithStrategy(record)); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("strategy called %d times, want 1", len(states))
	}
	s := states[0]
	if s.Point != ModifierSpec || s.LastResolved != SymbolExplode || s.Token.Text != "3" {
		t.Fatalf("state = %+v, want modifier error after explode at 3", s)
	}
}

func TestReporterWritesCaret(t *testing.T) {
	var buf bytes.Buffer
	tokens, err := lexer.Tokenize("3d+1")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	_, _ = Parse(tokens, WithReporter(NewReporter("3d+1", &buf)))
	want := "Error: expected die size.\n3d+1\n  ^\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestReporterTokenization(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter("1+x", &buf)
	r.ReportTokenization(&lexer.Error{Pos: 2, Message: `unrecognized input "x"`})
	want := "Error: unrecognized input \"x\".\n1+x\n  ^\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(ComparePoint, SymbolDice); got != "expected comparison operator; last resolved dice" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(Expr, SymbolSort); got != "error in expr; last resolved Sort" {
		t.Fatalf("Message = %q", got)
	}
}
