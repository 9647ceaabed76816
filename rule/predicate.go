package rule

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Matches evaluates a predicate against doc (C4).
func (rt *Runtime) Matches(p Predicate, doc map[string]any, sc *evalScope) (bool, error) {
	switch pr := p.(type) {
	case nil:
		return true, nil
	case True:
		return true, nil
	case And:
		l, err := rt.Matches(pr.L, doc, sc)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return rt.Matches(pr.R, doc, sc)
	case Or:
		l, err := rt.Matches(pr.L, doc, sc)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return rt.Matches(pr.R, doc, sc)
	case Not:
		v, err := rt.Eval(pr.X, doc, sc)
		if err != nil {
			return false, err
		}
		b, ok := asBool(v)
		if !ok {
			return false, nil
		}
		return !b, nil
	case In:
		v, err := rt.Eval(pr.X, doc, sc)
		if err != nil {
			return false, err
		}
		for _, m := range pr.List {
			mv, err := rt.Eval(m, doc, sc)
			if err != nil {
				return false, err
			}
			if ValueEqual(v, mv) {
				return true, nil
			}
		}
		return false, nil
	case Cmp:
		l, err := rt.Eval(pr.L, doc, sc)
		if err != nil {
			return false, err
		}
		r, err := rt.Eval(pr.R, doc, sc)
		if err != nil {
			return false, err
		}
		return rt.Compare(pr.Op, l, r)
	case PredCall:
		out, err := rt.Eval(Call{Name: pr.Name, Args: pr.Args}, doc, sc)
		if err != nil {
			return false, err
		}
		b, ok := asBool(out)
		if !ok {
			return false, nil
		}
		return b, nil
	default:
		return false, fmt.Errorf("matches: unknown predicate node %T", p)
	}
}

// Compare implements the compare(op, L, R) operator semantics from spec
// §4.4, including the cross-type coercion rules.
func (rt *Runtime) Compare(op string, l, r any) (bool, error) {
	l, r, err := coerceForCompare(l, r)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCoercion, err)
	}

	switch op {
	case "=":
		return ValueEqual(l, r), nil
	case "<>", "!=":
		return !ValueEqual(l, r), nil
	case "=~":
		lt, lok := l.(string)
		rp, rok := r.(string)
		if !lok || !rok {
			return false, fmt.Errorf("=~ requires textual operands, got %T and %T", l, r)
		}
		return rt.Topics.Match(lt, rp)
	case "<", ">", "<=", ">=":
		return compareOrdered(op, l, r)
	default:
		return false, fmt.Errorf("compare: unknown operator %q", op)
	}
}

// coerceForCompare applies the three coercion rules ahead of the operator:
// numeric/textual pairs coerce the textual side via ParseNumber, atom/
// textual pairs coerce the atom to text, and anything else is compared
// as-is.
func coerceForCompare(l, r any) (any, any, error) {
	_, lIsNum := isNumeric(l)
	_, rIsNum := isNumeric(r)
	lt, lIsText := l.(string)
	rt2, rIsText := r.(string)
	la, lIsAtom := l.(Atom)
	ra, rIsAtom := r.(Atom)

	switch {
	case lIsNum && rIsText:
		n, err := ParseNumber(rt2)
		if err != nil {
			return nil, nil, err
		}
		return l, n, nil
	case rIsNum && lIsText:
		n, err := ParseNumber(lt)
		if err != nil {
			return nil, nil, err
		}
		return n, r, nil
	case lIsAtom && rIsText:
		return string(la), rt2, nil
	case rIsAtom && lIsText:
		return lt, string(ra), nil
	default:
		return l, r, nil
	}
}

// compareOrdered implements <, >, <=, >= with the natural order of numbers
// and the lexicographic order of text. Ordering between incompatible types
// falls back to a deterministic, host-chosen total order (by type rank,
// then string representation) rather than erroring, per spec §4.4 and the
// open question in §9.
func compareOrdered(op string, l, r any) (bool, error) {
	cmp := orderCompare(l, r)
	switch op {
	case "<":
		return cmp < 0, nil
	case ">":
		return cmp > 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("compareOrdered: unknown operator %q", op)
	}
}

func orderCompare(l, r any) int {
	if ln, lok := toDecimal(l); lok {
		if rn, rok := toDecimal(r); rok {
			return ln.Cmp(rn)
		}
	}
	if ls, lok := l.(string); lok {
		if rs, rok := r.(string); rok {
			return strings.Compare(ls, rs)
		}
	}
	return fallbackCompare(l, r)
}

// fallbackCompare gives a deterministic, if arbitrary, order to
// incompatible types so comparisons never panic or behave unpredictably.
func fallbackCompare(l, r any) int {
	lr, rr := typeRank(l), typeRank(r)
	if lr != rr {
		return lr - rr
	}
	return strings.Compare(fmt.Sprint(l), fmt.Sprint(r))
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, int, float64, decimal.Decimal:
		return 2
	case Atom:
		return 3
	case string:
		return 4
	case []any:
		return 5
	case map[string]any:
		return 6
	default:
		return 7
	}
}
