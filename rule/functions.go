package rule

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/shopspring/decimal"
)

// FunctionLibrary is the external collaborator C3/C4 calls into for Arith
// and Call nodes. Call may return a plain value or a DocFunc awaiting the
// current document.
type FunctionLibrary interface {
	Call(name string, args []any) (any, error)
}

// ExprFunctionLibrary is the default FunctionLibrary. Arithmetic operators
// are computed directly against decimal.Decimal so monetary broker fields
// never lose precision. Every other call name is serviced by compiling and
// running a tiny synthesized github.com/expr-lang/expr program — the same
// dependency the teacher engine uses to evaluate rule conditions — giving
// rule authors expr-lang's builtin function set (upper, lower, trim, len,
// ...) without coupling the engine's own AST to expr-lang's grammar.
type ExprFunctionLibrary struct{}

var arithOps = map[string]func(a, b any) (any, error){
	"+": func(a, b any) (any, error) {
		da, db, err := arithOperands("+", a, b)
		if err != nil {
			return nil, err
		}
		return da.Add(db), nil
	},
	"-": func(a, b any) (any, error) {
		da, db, err := arithOperands("-", a, b)
		if err != nil {
			return nil, err
		}
		return da.Sub(db), nil
	},
	"*": func(a, b any) (any, error) {
		da, db, err := arithOperands("*", a, b)
		if err != nil {
			return nil, err
		}
		return da.Mul(db), nil
	},
	"/": func(a, b any) (any, error) {
		da, db, err := arithOperands("/", a, b)
		if err != nil {
			return nil, err
		}
		if db.IsZero() {
			return nil, fmt.Errorf("arith /: division by zero")
		}
		return da.Div(db), nil
	},
	"mod": func(a, b any) (any, error) {
		da, db, err := arithOperands("mod", a, b)
		if err != nil {
			return nil, err
		}
		if db.IsZero() {
			return nil, fmt.Errorf("arith mod: division by zero")
		}
		return da.Mod(db), nil
	},
}

func arithOperands(op string, a, b any) (da, db decimal.Decimal, err error) {
	da, ok := toDecimal(a)
	if !ok {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("arith %s: non-numeric left operand %v (%T)", op, a, a)
	}
	db, ok = toDecimal(b)
	if !ok {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("arith %s: non-numeric right operand %v (%T)", op, b, b)
	}
	return da, db, nil
}

// Call implements FunctionLibrary.
func (ExprFunctionLibrary) Call(name string, args []any) (any, error) {
	if fn, ok := arithOps[name]; ok {
		if len(args) != 2 {
			return nil, fmt.Errorf("arith %q: expected 2 operands, got %d", name, len(args))
		}
		return fn(args[0], args[1])
	}

	env := make(map[string]any, len(args))
	parts := make([]string, len(args))
	for i, a := range args {
		key := fmt.Sprintf("a%d", i)
		env[key] = a
		parts[i] = key
	}

	src := fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("function library: compile %q: %w", name, err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("function library: call %q: %w", name, err)
	}
	return out, nil
}
