package expression

import (
	"errors"
	"fmt"
	"math"

	"github.com/louisbranch/diceroller/pkg/dice"
)

var (
	// ErrUnresolvedRoll is returned when a tree still holding a Roll is
	// folded. Call Rolled first.
	ErrUnresolvedRoll = errors.New("cannot compute the value of an unrolled roll")
	// ErrNegativeExponent is returned for x^n with n < 0.
	ErrNegativeExponent = errors.New("negative exponent")
	// ErrDivisionByZero is returned for x/0 and x%0.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when a result does not fit in an int.
	ErrOverflow = errors.New("integer overflow")
)

// Rolled returns a copy of e with every Roll replaced by its Result. The
// input tree is not modified.
func Rolled(e Expression, cfg dice.RollConfig) Expression {
	switch n := e.(type) {
	case Roll:
		return Result{Roll: n.Roll, Results: n.Roll.Roll(cfg)}
	case Binary:
		return Binary{Op: n.Op, Left: Rolled(n.Left, cfg), Right: Rolled(n.Right, cfg)}
	case Braced:
		return Braced{Inner: Rolled(n.Inner, cfg)}
	case Error:
		if n.Partial == nil {
			return n
		}
		return Error{Err: n.Err, Partial: Rolled(n.Partial, cfg)}
	default:
		return e
	}
}

// ComputedValue folds a resolved tree into an integer. Division and
// modulus truncate toward zero.
func ComputedValue(e Expression) (int, error) {
	switch n := e.(type) {
	case Number:
		return n.Value, nil
	case Result:
		return dice.Sum(n.Results), nil
	case Roll:
		return 0, fmt.Errorf("%s: %w", n.Roll, ErrUnresolvedRoll)
	case Braced:
		return ComputedValue(n.Inner)
	case Error:
		if n.Partial == nil {
			return 0, nil
		}
		return ComputedValue(n.Partial)
	case Binary:
		left, err := ComputedValue(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := ComputedValue(n.Right)
		if err != nil {
			return 0, err
		}
		return apply(n.Op, left, right)
	default:
		return 0, fmt.Errorf("unknown expression %T", e)
	}
}

func apply(op Op, left, right int) (int, error) {
	var (
		v  int
		ok = true
	)
	switch op {
	case Add:
		v, ok = addInt(left, right)
	case Sub:
		v, ok = subInt(left, right)
	case Mul:
		v, ok = mulInt(left, right)
	case Div, Mod:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		if left == math.MinInt && right == -1 {
			ok = op == Mod
			break
		}
		if op == Div {
			v = left / right
		} else {
			v = left % right
		}
	case Pow:
		if right < 0 {
			return 0, fmt.Errorf("%d^%d: %w", left, right, ErrNegativeExponent)
		}
		v, ok = pow(left, right)
	default:
		return 0, fmt.Errorf("unknown operator %d", op)
	}
	if !ok {
		return 0, fmt.Errorf("%d%s%d: %w", left, op.Symbol(), right, ErrOverflow)
	}
	return v, nil
}

func addInt(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}

func subInt(a, b int) (int, bool) {
	if (b < 0 && a > math.MaxInt+b) || (b > 0 && a < math.MinInt+b) {
		return 0, false
	}
	return a - b, true
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// pow computes base^exp for exp >= 0 by repeated squaring.
func pow(base, exp int) (int, bool) {
	result := 1
	for {
		if exp&1 == 1 {
			var ok bool
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp == 0 {
			return result, true
		}
		var ok bool
		if base, ok = mulInt(base, base); !ok {
			return 0, false
		}
	}
}

// CollectResolvedGroups returns the results of every resolved roll in
// left-to-right order.
func CollectResolvedGroups(e Expression) [][]dice.RollResult {
	var groups [][]dice.RollResult
	walk(e, func(n Expression) {
		if r, ok := n.(Result); ok {
			groups = append(groups, r.Results)
		}
	})
	return groups
}

// Rolls returns every unresolved roll in left-to-right order.
func Rolls(e Expression) []dice.Roll {
	var rolls []dice.Roll
	walk(e, func(n Expression) {
		if r, ok := n.(Roll); ok {
			rolls = append(rolls, r.Roll)
		}
	})
	return rolls
}

// Errors returns the parse errors recovered into the tree.
func Errors(e Expression) []error {
	var errs []error
	walk(e, func(n Expression) {
		if x, ok := n.(Error); ok && x.Err != nil {
			errs = append(errs, x.Err)
		}
	})
	return errs
}

func walk(e Expression, visit func(Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case Binary:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case Braced:
		walk(n.Inner, visit)
	case Error:
		walk(n.Partial, visit)
	}
}
