package expression

import (
	"strconv"

	"github.com/louisbranch/diceroller/pkg/dice"
)

func (n Number) String() string {
	return strconv.Itoa(n.Value)
}

// String renders the roll in canonical notation, e.g. "4d6kh3".
func (n Roll) String() string {
	return n.Roll.String()
}

// String renders the drawn values with their flags, e.g. "[6!, 2d, 4]".
func (n Result) String() string {
	return dice.FormatResults(n.Results)
}

func (n Binary) String() string {
	return n.Left.String() + n.Op.Symbol() + n.Right.String()
}

func (n Braced) String() string {
	return "(" + n.Inner.String() + ")"
}

func (n Error) String() string {
	if n.Partial == nil {
		return "?"
	}
	return n.Partial.String() + "?"
}

// Debug renders the tree in prefix form, e.g. "(+ 4d6 (* 2 3))".
func Debug(e Expression) string {
	switch n := e.(type) {
	case Binary:
		return "(" + n.Op.debugSymbol() + " " + Debug(n.Left) + " " + Debug(n.Right) + ")"
	case Braced:
		return "(braced " + Debug(n.Inner) + ")"
	case Error:
		partial := "<none>"
		if n.Partial != nil {
			partial = Debug(n.Partial)
		}
		msg := "<nil>"
		if n.Err != nil {
			msg = n.Err.Error()
		}
		return "(error " + strconv.Quote(msg) + " " + partial + ")"
	case nil:
		return "<nil>"
	default:
		return e.String()
	}
}
