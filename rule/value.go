package rule

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// Atom is a symbolic tag distinct from an arbitrary text string. Rule
// authors write atoms for things like field names and operator symbols.
// ValueEqual treats an Atom and a Text string as different kinds; Compare
// coerces the Atom to text when the other operand is a Text string.
type Atom string

// DocFunc is the unary closure shape a function-library call may return
// instead of a plain value. The evaluator applies it exactly once to the
// document currently being evaluated.
type DocFunc func(doc map[string]any) (any, error)

// isNumeric reports whether v is one of the numeric representations the
// evaluator understands, returning it unchanged for convenience.
func isNumeric(v any) (any, bool) {
	switch v.(type) {
	case int64, int, float64, decimal.Decimal:
		return v, true
	default:
		return nil, false
	}
}

// toDecimal normalizes any numeric representation to a decimal.Decimal so
// arithmetic and ordering never lose precision decoding a broker payload's
// monetary fields.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int64:
		return decimal.NewFromInt(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}

// ValueEqual implements the document model's value-equality: numeric kinds
// compare by numeric value regardless of int/float representation, atoms
// compare as their own kind, and everything else falls back to deep
// structural equality.
func ValueEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}

	if ln, lok := toDecimal(l); lok {
		if rn, rok := toDecimal(r); rok {
			return ln.Equal(rn)
		}
		return false
	}

	switch lv := l.(type) {
	case Atom:
		rv, ok := r.(Atom)
		return ok && lv == rv
	case bool:
		rv, ok := r.(bool)
		return ok && lv == rv
	case string:
		rv, ok := r.(string)
		return ok && lv == rv
	}

	return reflect.DeepEqual(l, r)
}

// asBool interprets a value as a boolean for contexts (Call-as-predicate,
// Not) that require one. Only a strict bool is truthy/falsy; anything else
// is reported as not-a-boolean via the second return value.
func asBool(v any) (b bool, ok bool) {
	b, ok = v.(bool)
	return b, ok
}
