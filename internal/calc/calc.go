// Package calc is the arithmetic overlay: every non-empty query in Normal
// mode is also offered to the evaluator, and a successful result is shown
// ahead of the fuzzy matches.
package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// Calculator evaluates arithmetic expressions. It memoizes the last
// expression because the same query is re-evaluated on every redraw tick.
type Calculator struct {
	lastExpr   string
	lastResult string
	lastOK     bool
}

// New creates a calculator.
func New() *Calculator {
	return &Calculator{}
}

// Evaluate returns the formatted result of expr, or ok=false when the
// input is not an expression or the result merely echoes the input
// (query "42" evaluating to "42" is noise, not an answer).
func (c *Calculator) Evaluate(expr string) (string, bool) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return "", false
	}
	if trimmed == c.lastExpr {
		return c.lastResult, c.lastOK
	}

	result, ok := evaluate(trimmed)
	c.lastExpr = trimmed
	c.lastResult = result
	c.lastOK = ok
	return result, ok
}

func evaluate(expr string) (string, bool) {
	parsed, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return "", false
	}
	value, err := parsed.Evaluate(nil)
	if err != nil {
		return "", false
	}
	f, isNumber := value.(float64)
	if !isNumber || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}

	formatted := format(f)
	if formatted == expr {
		return "", false
	}
	return formatted, true
}

// format renders whole numbers without a decimal point and clamps long
// fractions to six places.
func format(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if len(s) > 10 {
		return fmt.Sprintf("%.6f", f)
	}
	return s
}
