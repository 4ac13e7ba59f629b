// Package roll parses roll command flags and prints evaluated expressions.
package roll

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	platformcmd "github.com/louisbranch/diceroller/internal/platform/cmd"
	"github.com/louisbranch/diceroller/internal/platform/config"
	"github.com/louisbranch/diceroller/pkg/dice"
	"github.com/louisbranch/diceroller/pkg/expression"
	"github.com/louisbranch/diceroller/pkg/roller"
)

// Output styles.
const (
	OutputShort   = "short"
	OutputRegular = "regular"
	OutputVerbose = "verbose"
	OutputJSON    = "json"
	OutputYAML    = "yaml"
)

// ErrFailed is returned when at least one expression could not be rolled.
// The diagnostics have already been written to the error output.
var ErrFailed = errors.New("one or more expressions failed")

// Config holds roll command configuration.
type Config struct {
	Output        string `env:"DICEROLLER_OUTPUT" envDefault:"regular"`
	Locale        string `env:"DICEROLLER_LOCALE" envDefault:"en"`
	Debug         bool
	Probabilities bool
	Roller        roller.Config
	// Expressions to roll. When empty, Run reads one expression per line
	// from its input.
	Expressions []string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup config.LookupFunc) (Config, error) {
	var cfg Config
	if err := config.ParseEnvLookup(&cfg, lookup); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Output, "output", cfg.Output, "output style: short, regular, verbose, json or yaml")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for the probability table")
	fs.BoolVar(&cfg.Debug, "debug", false, "print the expression tree before each result")
	fs.BoolVar(&cfg.Probabilities, "probabilities", false, "print the probability of every total of a plain dice group")
	fs.IntVar(&cfg.Roller.IterationLimit, "iteration-limit", cfg.Roller.IterationLimit, "maximum extra rolls per exploding or rerolled die")
	fs.BoolVar(&cfg.Roller.Strict, "strict", cfg.Roller.Strict, "reject expressions with any grammar error")
	fs.Func("seed", "random seed for reproducible rolls", func(value string) error {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Roller.Seed = &seed
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	switch cfg.Output {
	case OutputShort, OutputRegular, OutputVerbose, OutputJSON, OutputYAML:
	default:
		return Config{}, fmt.Errorf("unknown output style %q", cfg.Output)
	}
	if _, err := language.Parse(cfg.Locale); err != nil {
		return Config{}, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	cfg.Expressions = fs.Args()
	return cfg, nil
}

// Run rolls every configured expression, or every line of in when none
// were given. Results go to out and diagnostics to errOut.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceRoll, func(ctx context.Context) error {
		return run(ctx, cfg, in, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, errOut io.Writer) error {
	r, err := roller.New(roller.WithConfig(cfg.Roller), roller.WithOutput(errOut))
	if err != nil {
		return err
	}
	w, err := newWriter(cfg, out)
	if err != nil {
		return err
	}
	defer w.close()

	failed := false
	each := func(input string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if cfg.Probabilities {
			err = w.probabilities(ctx, r, input)
		} else {
			err = w.roll(ctx, r, input)
		}
		if err == nil {
			return nil
		}
		failed = true
		var rerr *roller.Error
		if !errors.As(err, &rerr) {
			return err
		}
		// Grammar and tokenization errors were already reported by the roller.
		switch rerr.Code {
		case roller.CodeTokenization, roller.CodeUnexpectedToken, roller.CodeUnexpectedEOF:
		default:
			fmt.Fprint(errOut, rerr.Caret(input))
		}
		return nil
	}

	if len(cfg.Expressions) > 0 {
		for _, input := range cfg.Expressions {
			if err := each(input); err != nil {
				return err
			}
		}
	} else if in != nil {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if err := each(input); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	if failed {
		return ErrFailed
	}
	return nil
}

// die is one die of a report.
type die struct {
	Value   int    `json:"value" yaml:"value"`
	Flags   string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Dropped bool   `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// report is the json and yaml rendering of a roll.
type report struct {
	ID          string   `json:"id" yaml:"id"`
	Input       string   `json:"input" yaml:"input"`
	Rolled      string   `json:"rolled" yaml:"rolled"`
	Value       int      `json:"value" yaml:"value"`
	Groups      [][]die  `json:"groups" yaml:"groups"`
	Diagnostics []string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Debug       string   `json:"debug,omitempty" yaml:"debug,omitempty"`
}

func newReport(res roller.Result, debug bool) report {
	rep := report{
		ID:     res.ID,
		Input:  res.Input,
		Rolled: res.Rolled,
		Value:  res.Value,
		Groups: make([][]die, 0, len(res.Groups)),
	}
	for _, g := range res.Groups {
		row := make([]die, 0, len(g))
		for _, r := range g {
			row = append(row, die{Value: r.Value, Flags: r.Flags(), Dropped: r.Dropped})
		}
		rep.Groups = append(rep.Groups, row)
	}
	for _, d := range res.Diagnostics {
		rep.Diagnostics = append(rep.Diagnostics, fmt.Sprintf("%d: %s", d.Pos, d.Message))
	}
	if debug {
		rep.Debug = expression.Debug(res.Expression)
	}
	return rep
}

// writer renders results in the configured style.
type writer struct {
	cfg     Config
	out     io.Writer
	printer *message.Printer
	json    *json.Encoder
	yaml    *yaml.Encoder
}

func newWriter(cfg Config, out io.Writer) (*writer, error) {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	w := &writer{cfg: cfg, out: out, printer: message.NewPrinter(tag)}
	switch cfg.Output {
	case OutputJSON:
		w.json = json.NewEncoder(out)
	case OutputYAML:
		w.yaml = yaml.NewEncoder(out)
		w.yaml.SetIndent(2)
	}
	return w, nil
}

func (w *writer) close() {
	if w.yaml != nil {
		if err := w.yaml.Close(); err != nil {
			log.Printf("close yaml encoder: %v", err)
		}
	}
}

func (w *writer) roll(ctx context.Context, r *roller.Roller, input string) error {
	res, err := r.Parse(ctx, input)
	if err != nil {
		return err
	}
	switch {
	case w.json != nil:
		return w.json.Encode(newReport(res, w.cfg.Debug))
	case w.yaml != nil:
		return w.yaml.Encode(newReport(res, w.cfg.Debug))
	}

	if w.cfg.Debug {
		fmt.Fprintln(w.out, expression.Debug(res.Expression))
	}
	switch w.cfg.Output {
	case OutputShort:
		_, err = fmt.Fprintf(w.out, "%d\n", res.Value)
	case OutputVerbose:
		_, err = fmt.Fprintf(w.out, "%s: %s = %d\n", res.Input, res.Rolled, res.Value)
	default:
		_, err = fmt.Fprintf(w.out, "%s = %d\n", res.Rolled, res.Value)
	}
	return err
}

// probabilities prints the distribution table of input, or the json/yaml
// list of outcomes.
func (w *writer) probabilities(ctx context.Context, r *roller.Roller, input string) error {
	outcomes, err := r.Probabilities(ctx, input)
	if err != nil {
		return err
	}
	switch {
	case w.json != nil:
		return w.json.Encode(outcomeReport(outcomes))
	case w.yaml != nil:
		return w.yaml.Encode(outcomeReport(outcomes))
	}
	for _, o := range outcomes {
		if _, err := w.printer.Fprintf(w.out, "%6d  %9.4f%%\n", o.Total, o.Probability*100); err != nil {
			return err
		}
	}
	return nil
}

type outcome struct {
	Total       int     `json:"total" yaml:"total"`
	Probability float64 `json:"probability" yaml:"probability"`
}

func outcomeReport(outcomes []dice.Outcome) []outcome {
	out := make([]outcome, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, outcome{Total: o.Total, Probability: o.Probability})
	}
	return out
}
