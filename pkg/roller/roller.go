// Package roller parses and rolls dice notation.
//
// A Roller normalizes its input, tokenizes and parses it, rolls every dice
// group in the resulting expression, and folds the expression into an
// integer:
//
//	r, err := roller.New(roller.WithSeed(7))
//	res, err := r.Parse(ctx, "4d6kh3 + 2")
//	fmt.Println(res.Rolled, "=", res.Value) // e.g. [5, 1d, 4, 3]+2 = 14
//
// Grammar errors the parser can recover from leave an error marker in the
// expression and are returned as Diagnostics next to a best-effort value.
// Everything else is returned as an *Error.
package roller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/louisbranch/diceroller/internal/observability"
	"github.com/louisbranch/diceroller/internal/platform/id"
	"github.com/louisbranch/diceroller/internal/platform/random"
	"github.com/louisbranch/diceroller/pkg/dice"
	"github.com/louisbranch/diceroller/pkg/expression"
	"github.com/louisbranch/diceroller/pkg/lexer"
	"github.com/louisbranch/diceroller/pkg/parser"
)

// Roller evaluates dice expressions. It is safe for concurrent use.
type Roller struct {
	cfg     Config
	source  dice.Source
	out     io.Writer
	logger  *slog.Logger
	metrics MetricsRecorder
	spans   SpanManager
}

// Option configures a Roller.
type Option func(*Roller)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(r *Roller) {
		r.cfg = cfg
	}
}

// WithSeed makes every roll deterministic for the given seed.
func WithSeed(seed int64) Option {
	return func(r *Roller) {
		r.cfg.Seed = &seed
	}
}

// WithIterationLimit bounds explosion and reroll chains.
func WithIterationLimit(limit int) Option {
	return func(r *Roller) {
		r.cfg.IterationLimit = limit
	}
}

// WithStrict aborts on the first grammar error.
func WithStrict() Option {
	return func(r *Roller) {
		r.cfg.Strict = true
	}
}

// WithSource rolls dice from src instead of a seeded generator.
func WithSource(src dice.Source) Option {
	return func(r *Roller) {
		r.source = src
	}
}

// WithOutput writes caret diagnostics to w.
func WithOutput(w io.Writer) Option {
	return func(r *Roller) {
		r.out = w
	}
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Roller) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. The default records OpenTelemetry
// metrics on the global meter provider.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Roller) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithSpans sets the span manager. The default starts spans on the global
// tracer provider.
func WithSpans(s SpanManager) Option {
	return func(r *Roller) {
		if s != nil {
			r.spans = s
		}
	}
}

// New creates a Roller.
func New(opts ...Option) (*Roller, error) {
	r := &Roller{
		cfg:     DefaultConfig(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: observability.NewMetricsRecorder(),
		spans:   observability.NewSpanManager(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.source == nil {
		seed, err := random.SeedOr(r.cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("seed roller: %w", err)
		}
		r.source = dice.NewSeededSource(seed)
	}
	r.source = &lockedSource{src: r.source}
	return r, nil
}

// Config returns the effective configuration.
func (r *Roller) Config() Config {
	return r.cfg
}

// Result is one evaluated expression.
type Result struct {
	// ID identifies this roll in logs and traces.
	ID string
	// Input is the canonical rendering of the parsed expression.
	Input string
	// Rolled renders the expression with every dice group resolved.
	Rolled string
	Value  int
	// Groups holds the results of each dice group in reading order.
	Groups [][]dice.RollResult
	// Expression is the resolved expression tree.
	Expression expression.Expression
	// Diagnostics lists the grammar errors recovery skipped over.
	Diagnostics []parser.Diagnostic
}

// DecodeExpression parses input without rolling it.
func (r *Roller) DecodeExpression(ctx context.Context, input string) (expression.Expression, error) {
	expr, _, err := r.decode(ctx, input)
	return expr, err
}

// Parse decodes, rolls, and evaluates input.
func (r *Roller) Parse(ctx context.Context, input string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	expr, diags, err := r.decode(ctx, input)
	if err != nil {
		return Result{}, err
	}

	rollID, err := id.NewID()
	if err != nil {
		return Result{}, &Error{Code: CodeUnknown, Message: err.Error(), Position: -1, Cause: err}
	}
	ctx, span := r.spans.StartRollSpan(ctx, rollID, input)
	start := time.Now()

	rolled := expression.Rolled(expr, dice.RollConfig{Source: r.source, IterationLimit: r.cfg.IterationLimit})
	groups := expression.CollectResolvedGroups(rolled)
	value, err := expression.ComputedValue(rolled)

	var dieCount int
	for _, g := range groups {
		dieCount += len(g)
	}
	r.metrics.RecordRoll(ctx, dieCount, time.Since(start), err)
	if err != nil {
		rerr := evaluationError(err)
		r.spans.EndSpanWithError(span, rerr)
		r.logger.WarnContext(ctx, "evaluate expression", "roll_id", rollID, "input", input, "error", err)
		return Result{}, rerr
	}
	r.spans.EndSpanWithError(span, nil)

	res := Result{
		ID:          rollID,
		Input:       expr.String(),
		Rolled:      rolled.String(),
		Value:       value,
		Groups:      groups,
		Expression:  rolled,
		Diagnostics: diags,
	}
	r.logger.DebugContext(ctx, "rolled expression",
		"roll_id", res.ID,
		"input", res.Input,
		"rolled", res.Rolled,
		"value", res.Value,
	)
	return res, nil
}

// Roll evaluates input and returns only the results of each dice group.
func (r *Roller) Roll(ctx context.Context, input string) ([][]dice.RollResult, error) {
	res, err := r.Parse(ctx, input)
	if err != nil {
		return nil, err
	}
	return res.Groups, nil
}

// Probabilities returns the distribution of totals for input, which must
// be a single dice group without modifiers, such as "3d6" or "4dF".
func (r *Roller) Probabilities(ctx context.Context, input string) ([]dice.Outcome, error) {
	expr, _, err := r.decode(ctx, input)
	if err != nil {
		return nil, err
	}
	roll, ok := expr.(expression.Roll)
	if !ok || len(roll.Roll.Modifiers) > 0 {
		return nil, &Error{
			Code:     CodeUnsupported,
			Message:  fmt.Sprintf("probabilities need a plain dice group, got %q", expr.String()),
			Position: -1,
		}
	}
	if err := roll.Roll.Dice.CheckDistribution(); err != nil {
		return nil, &Error{Code: CodeUnsupported, Message: err.Error(), Position: -1, Cause: err}
	}
	return roll.Roll.Dice.ProbabilityMassFunction(), nil
}

// decode tokenizes and parses input, reporting diagnostics to the output
// writer. Recovered errors come back as diagnostics; fatal ones as *Error.
func (r *Roller) decode(ctx context.Context, input string) (expression.Expression, []parser.Diagnostic, error) {
	normalized := norm.NFKC.String(input)
	ctx, span := r.spans.StartDecodeSpan(ctx, normalized)
	start := time.Now()

	expr, diags, err := r.decodeNormalized(normalized)
	r.metrics.RecordParse(ctx, time.Since(start), err)
	r.spans.EndSpanWithError(span, err)
	if err != nil {
		r.logger.InfoContext(ctx, "decode expression", "input", normalized, "error", err)
		return nil, diags, err
	}
	for _, d := range diags {
		r.logger.DebugContext(ctx, "recovered from grammar error", "input", normalized, "pos", d.Pos, "message", d.Message)
	}
	return expr, diags, nil
}

func (r *Roller) decodeNormalized(input string) (expression.Expression, []parser.Diagnostic, error) {
	reporter := parser.NewReporter(input, r.out)

	tokens, err := lexer.Tokenize(input)
	if err != nil {
		var lerr *lexer.Error
		if errors.As(err, &lerr) {
			reporter.ReportTokenization(lerr)
		}
		return nil, reporter.Diagnostics(), classify(err, nil)
	}

	strategy := parser.Lenient
	if r.cfg.Strict {
		strategy = parser.Strict
	}
	expr, err := parser.Parse(tokens, parser.WithReporter(reporter), parser.WithStrategy(strategy))
	diags := reporter.Diagnostics()
	if err != nil {
		var last *parser.Diagnostic
		if len(diags) > 0 {
			last = &diags[len(diags)-1]
		}
		return nil, diags, classify(err, last)
	}
	return expr, diags, nil
}

// lockedSource serializes access to a Source shared by concurrent rolls.
type lockedSource struct {
	mu  sync.Mutex
	src dice.Source
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Intn(n)
}
