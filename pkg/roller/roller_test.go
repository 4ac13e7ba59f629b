package roller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/diceroller/internal/observability"
	"github.com/louisbranch/diceroller/pkg/expression"
)

// sequence is a dice.Source that lands on the given faces in order and
// then repeats the last one.
type sequence struct {
	faces []int
	next  int
}

func (s *sequence) Intn(n int) int {
	i := min(s.next, len(s.faces)-1)
	s.next++
	return (s.faces[i] - 1) % n
}

func faces(values ...int) *sequence { return &sequence{faces: values} }

func newRoller(t *testing.T, opts ...Option) *Roller {
	t.Helper()
	opts = append([]Option{
		WithMetrics(observability.NoopMetrics{}),
		WithSpans(observability.NoopSpanManager{}),
	}, opts...)
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return r
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		src    *sequence
		canon  string
		rolled string
		value  int
	}{
		{"arithmetic precedence", "2+3*4", faces(1), "2+3*4", "2+3*4", 14},
		{"plain dice", "4d6", faces(3), "4d6", "[3, 3, 3, 3]", 12},
		{"keep highest", "2d20kh1", faces(5, 17), "2d20kh1", "[5d, 17]", 17},
		{"explode", "3d6!", faces(6, 2, 4, 1), "3d6!", "[6!, 1, 2, 4]", 13},
		{"single sided", "1d1", faces(1), "1d1", "[1]", 1},
		{"successes", "4d6>=4", faces(4, 6, 1, 3), "4d6>=4", "[4*, 6*, 1, 3]", 2},
		{"modifier and arithmetic", "4d6!kh3 + 2", faces(5, 1, 4, 3), "4d6!kh3+2", "[5, 1d, 4, 3]+2", 14},
		{"full width digits", "２d６", faces(2), "2d6", "[2, 2]", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRoller(t, WithSource(tt.src))
			res, err := r.Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if res.Input != tt.canon {
				t.Fatalf("Input = %q, want %q", res.Input, tt.canon)
			}
			if res.Rolled != tt.rolled {
				t.Fatalf("Rolled = %q, want %q", res.Rolled, tt.rolled)
			}
			if res.Value != tt.value {
				t.Fatalf("Value = %d, want %d", res.Value, tt.value)
			}
			if len(res.ID) != 26 {
				t.Fatalf("ID = %q, want 26 characters", res.ID)
			}
		})
	}
}

func TestParseFatalErrors(t *testing.T) {
	tests := []struct {
		input   string
		want    error
		pos     int
		message string
	}{
		{"3d", ErrUnexpectedEOF, 2, "expected die size"},
		{"3d+1", ErrUnexpectedToken, 2, "expected die size"},
		{"4d6 5", ErrUnexpectedToken, 4, "expected comparison point, modifier, or operator"},
		{"1+x", ErrTokenization, 2, `unrecognized input "x"`},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		r := newRoller(t, WithOutput(&out))
		_, err := r.Parse(context.Background(), tt.input)
		if !errors.Is(err, tt.want) {
			t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.want.(*Error).Code)
		}
		var rerr *Error
		if !errors.As(err, &rerr) {
			t.Fatalf("Parse(%q) error = %T, want *Error", tt.input, err)
		}
		if rerr.Position != tt.pos || rerr.Message != tt.message {
			t.Fatalf("Parse(%q) error = {%d %q}, want {%d %q}", tt.input, rerr.Position, rerr.Message, tt.pos, tt.message)
		}
		if got := rerr.Caret(tt.input); out.String() != got {
			t.Fatalf("output = %q, want %q", out.String(), got)
		}
	}
}

func TestParseEvaluationErrors(t *testing.T) {
	tests := []struct {
		input string
		cause error
	}{
		{"2^(0-1)", expression.ErrNegativeExponent},
		{"5/(2-2)", expression.ErrDivisionByZero},
		{"5%0", expression.ErrDivisionByZero},
		{"2^64", expression.ErrOverflow},
		{"9223372036854775807+1d1", expression.ErrOverflow},
	}
	for _, tt := range tests {
		r := newRoller(t)
		_, err := r.Parse(context.Background(), tt.input)
		if !errors.Is(err, ErrEvaluation) || !errors.Is(err, tt.cause) {
			t.Fatalf("Parse(%q) error = %v, want evaluation error caused by %v", tt.input, err, tt.cause)
		}
		got := err.(*Error).Caret(tt.input)
		if !strings.HasPrefix(got, "Error: ") || !strings.HasSuffix(got, tt.cause.Error()+".\n") {
			t.Fatalf("Caret = %q, want message ending in %q", got, tt.cause.Error())
		}
	}
}

func TestParseRecoversWithDiagnostics(t *testing.T) {
	var out bytes.Buffer
	r := newRoller(t, WithOutput(&out))
	res, err := r.Parse(context.Background(), "2+")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if res.Input != "2?" || res.Value != 2 {
		t.Fatalf("result = %q = %d, want \"2?\" = 2", res.Input, res.Value)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != "expected integer following operator" {
		t.Fatalf("Diagnostics = %+v", res.Diagnostics)
	}
	if !strings.HasPrefix(out.String(), "Error: expected integer following operator.\n") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestParseEmptyInput(t *testing.T) {
	r := newRoller(t)
	res, err := r.Parse(context.Background(), "")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if res.Value != 0 || len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != "expected expression" {
		t.Fatalf("result = %+v", res)
	}
}

func TestStrictAbortsOnFirstError(t *testing.T) {
	r := newRoller(t, WithStrict())
	if _, err := r.Parse(context.Background(), "2+"); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("Parse error = %v, want %s", err, CodeUnexpectedEOF)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a := newRoller(t, WithSeed(99))
	b := newRoller(t, WithSeed(99))
	for range 5 {
		ra, err := a.Parse(context.Background(), "10d20!")
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		rb, err := b.Parse(context.Background(), "10d20!")
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if ra.Rolled != rb.Rolled {
			t.Fatalf("rolls diverged: %s vs %s", ra.Rolled, rb.Rolled)
		}
	}
}

func TestIterationLimit(t *testing.T) {
	r := newRoller(t, WithSource(faces(6)), WithIterationLimit(3))
	groups, err := r.Roll(context.Background(), "1d6!")
	if err != nil {
		t.Fatalf("Roll returned error: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 4 {
		t.Fatalf("groups = %v, want one group of 4", groups)
	}
}

func TestRollReturnsGroups(t *testing.T) {
	r := newRoller(t, WithSource(faces(2)))
	groups, err := r.Roll(context.Background(), "2d6 + (1d4 * 3) - 1")
	if err != nil {
		t.Fatalf("Roll returned error: %v", err)
	}
	if len(groups) != 2 || len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Fatalf("groups = %v, want sizes [2 1]", groups)
	}
}

func TestDecodeExpressionDoesNotRoll(t *testing.T) {
	r := newRoller(t)
	expr, err := r.DecodeExpression(context.Background(), "d20cs=20")
	if err != nil {
		t.Fatalf("DecodeExpression returned error: %v", err)
	}
	if _, ok := expr.(expression.Roll); !ok {
		t.Fatalf("DecodeExpression = %T, want expression.Roll", expr)
	}
	if expr.String() != "1d20cs=20" {
		t.Fatalf("expr = %q, want %q", expr.String(), "1d20cs=20")
	}
}

func TestProbabilities(t *testing.T) {
	r := newRoller(t)
	outcomes, err := r.Probabilities(context.Background(), "2d6")
	if err != nil {
		t.Fatalf("Probabilities returned error: %v", err)
	}
	if len(outcomes) != 11 || outcomes[0].Total != 2 || outcomes[10].Total != 12 {
		t.Fatalf("outcomes = %v, want totals 2..12", outcomes)
	}
	for _, input := range []string{"2d6+1", "2d6kh1", "7", "101d6", "2d1000"} {
		if _, err := r.Probabilities(context.Background(), input); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("Probabilities(%q) error = %v, want %s", input, err, CodeUnsupported)
		}
	}
}

func TestParseHonorsCancellation(t *testing.T) {
	r := newRoller(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Parse(ctx, "1d6"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Parse error = %v, want %v", err, context.Canceled)
	}
}

func TestConcurrentParse(t *testing.T) {
	r := newRoller(t, WithSeed(1))
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				if _, err := r.Parse(context.Background(), "4d6!kh3+d%"); err != nil {
					t.Errorf("Parse returned error: %v", err)
					return
				}
			}
		})
	}
	wg.Wait()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DICEROLLER_ITERATION_LIMIT", "50")
	t.Setenv("DICEROLLER_SEED", "9")
	t.Setenv("DICEROLLER_STRICT", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.IterationLimit != 50 || cfg.Seed == nil || *cfg.Seed != 9 || !cfg.Strict {
		t.Fatalf("cfg = %+v", cfg)
	}
}

// countingMetrics is a MetricsRecorder implemented outside observability.
type countingMetrics struct {
	mu     sync.Mutex
	parses int
	dice   []int
}

func (m *countingMetrics) RecordParse(context.Context, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parses++
}

func (m *countingMetrics) RecordRoll(_ context.Context, dice int, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dice = append(m.dice, dice)
}

func TestCustomMetricsRecorder(t *testing.T) {
	m := &countingMetrics{}
	r := newRoller(t, WithMetrics(m), WithSource(faces(3)))
	if _, err := r.Parse(context.Background(), "4d6 + 1d4"); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, err := r.Probabilities(context.Background(), "2d6"); err != nil {
		t.Fatalf("Probabilities returned error: %v", err)
	}
	if m.parses != 2 {
		t.Fatalf("parses = %d, want 2", m.parses)
	}
	if len(m.dice) != 1 || m.dice[0] != 5 {
		t.Fatalf("rolled dice = %v, want [5]", m.dice)
	}
}

func TestParseRejectsOversizedDice(t *testing.T) {
	r := newRoller(t)
	for _, input := range []string{"2000000000d6", "1d20000"} {
		_, err := r.Parse(context.Background(), input)
		var rerr *Error
		if !errors.As(err, &rerr) || rerr.Code != CodeUnexpectedToken || rerr.Message != "invalid die specification" || rerr.Position != 0 {
			t.Fatalf("Parse(%q) error = %#v, want invalid die specification at 0", input, err)
		}
	}
}
