package service

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/diceroller/pkg/dice"
	"github.com/louisbranch/diceroller/pkg/roller"
)

// RollExpressionInput represents the MCP tool input for rolling an expression.
type RollExpressionInput struct {
	Expression string `json:"expression" jsonschema:"dice notation to evaluate, e.g. 4d6kh3+2"`
	Seed       *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible roll"`
}

// RolledDie is one die result.
type RolledDie struct {
	Value    int    `json:"value" jsonschema:"face value after modifiers"`
	Counted  int    `json:"counted" jsonschema:"contribution to the total"`
	Flags    string `json:"flags,omitempty" jsonschema:"flags of the modifiers that touched this die"`
	Dropped  bool   `json:"dropped,omitempty" jsonschema:"whether the die was dropped"`
	Criteria string `json:"criteria" jsonschema:"value, success, failure or blank"`
}

// RolledGroup holds the results of one dice group.
type RolledGroup struct {
	Results []RolledDie `json:"results" jsonschema:"individual die results"`
	Total   int         `json:"total" jsonschema:"sum of the counted results"`
}

// Diagnostic is a grammar error that was skipped over.
type Diagnostic struct {
	Position int    `json:"position" jsonschema:"code point offset of the error"`
	Message  string `json:"message" jsonschema:"description of the error"`
}

// RollExpressionResult represents the MCP tool output for an evaluated expression.
type RollExpressionResult struct {
	ID          string        `json:"id" jsonschema:"identifier of this roll"`
	Input       string        `json:"input" jsonschema:"canonical form of the expression"`
	Rolled      string        `json:"rolled" jsonschema:"expression with every dice group resolved"`
	Value       int           `json:"value" jsonschema:"value of the expression"`
	Groups      []RolledGroup `json:"groups" jsonschema:"dice group results in reading order"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty" jsonschema:"grammar errors recovered from"`
}

// DiceProbabilitiesInput represents the MCP tool input for a distribution.
type DiceProbabilitiesInput struct {
	Dice string `json:"dice" jsonschema:"plain dice group, e.g. 3d6 or 4dF"`
}

// Outcome is the probability of one total.
type Outcome struct {
	Total       int     `json:"total" jsonschema:"sum of the dice"`
	Probability float64 `json:"probability" jsonschema:"probability of the total"`
}

// DiceProbabilitiesResult represents the MCP tool output for a distribution.
type DiceProbabilitiesResult struct {
	Dice     string    `json:"dice" jsonschema:"canonical dice group"`
	Outcomes []Outcome `json:"outcomes" jsonschema:"probability of every reachable total"`
}

// RollExpressionTool defines the MCP tool schema for rolling expressions.
func RollExpressionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_expression",
		Description: "Rolls a dice notation expression such as 4d6kh3+2 or 8d10>=7f1",
	}
}

// DiceProbabilitiesTool defines the MCP tool schema for distributions.
func DiceProbabilitiesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_probabilities",
		Description: "Computes the exact probability of each total of a plain dice group",
	}
}

// RollExpressionHandler evaluates an expression with r, or with a roller
// built by seeded when the input carries a seed.
func RollExpressionHandler(r *roller.Roller, seeded func(int64) (*roller.Roller, error)) mcp.ToolHandlerFor[RollExpressionInput, RollExpressionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollExpressionInput) (*mcp.CallToolResult, RollExpressionResult, error) {
		rr := r
		if input.Seed != nil {
			var err error
			if rr, err = seeded(*input.Seed); err != nil {
				return nil, RollExpressionResult{}, err
			}
		}

		res, err := rr.Parse(ctx, input.Expression)
		if err != nil {
			return nil, RollExpressionResult{}, fmt.Errorf("roll %q: %w", input.Expression, err)
		}

		out := RollExpressionResult{
			ID:     res.ID,
			Input:  res.Input,
			Rolled: res.Rolled,
			Value:  res.Value,
			Groups: make([]RolledGroup, 0, len(res.Groups)),
		}
		for _, g := range res.Groups {
			out.Groups = append(out.Groups, rolledGroup(g))
		}
		for _, d := range res.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, Diagnostic{Position: d.Pos, Message: d.Message})
		}
		return nil, out, nil
	}
}

// DiceProbabilitiesHandler computes the distribution of a dice group.
func DiceProbabilitiesHandler(r *roller.Roller) mcp.ToolHandlerFor[DiceProbabilitiesInput, DiceProbabilitiesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DiceProbabilitiesInput) (*mcp.CallToolResult, DiceProbabilitiesResult, error) {
		expr, err := r.DecodeExpression(ctx, input.Dice)
		if err != nil {
			return nil, DiceProbabilitiesResult{}, fmt.Errorf("decode %q: %w", input.Dice, err)
		}
		outcomes, err := r.Probabilities(ctx, input.Dice)
		if err != nil {
			return nil, DiceProbabilitiesResult{}, err
		}
		out := DiceProbabilitiesResult{
			Dice:     expr.String(),
			Outcomes: make([]Outcome, 0, len(outcomes)),
		}
		for _, o := range outcomes {
			out.Outcomes = append(out.Outcomes, Outcome{Total: o.Total, Probability: o.Probability})
		}
		return nil, out, nil
	}
}

func rolledGroup(results []dice.RollResult) RolledGroup {
	g := RolledGroup{Results: make([]RolledDie, 0, len(results)), Total: dice.Sum(results)}
	for _, r := range results {
		g.Results = append(g.Results, RolledDie{
			Value:    r.Value,
			Counted:  r.ComputedValue(),
			Flags:    r.Flags(),
			Dropped:  r.Dropped,
			Criteria: r.Criteria.String(),
		})
	}
	return g
}
