package rule

import "fmt"

// Runtime bundles the external collaborators the evaluator, predicate
// matcher, and projector read through: the function library and the topic
// matcher. A Runtime carries no per-input state and is safe to share across
// goroutines; callers thread a fresh *evalScope per input instead (C6).
type Runtime struct {
	Functions FunctionLibrary
	Topics    TopicMatcher
}

// NewRuntime builds a Runtime from its two collaborators.
func NewRuntime(functions FunctionLibrary, topics TopicMatcher) *Runtime {
	return &Runtime{Functions: functions, Topics: topics}
}

// Eval evaluates an expression AST node against doc (C3).
func (rt *Runtime) Eval(node Expr, doc map[string]any, sc *evalScope) (any, error) {
	switch e := node.(type) {
	case nil:
		return nil, nil
	case Var:
		if len(e.Path) > 0 && e.Path[0] == "payload" {
			return rt.readPayload(e.Path, doc, sc)
		}
		v, _ := GetPath(doc, e.Path)
		return v, nil
	case Const:
		return e.Value, nil
	case Arith:
		l, err := rt.Eval(e.L, doc, sc)
		if err != nil {
			return nil, err
		}
		r, err := rt.Eval(e.R, doc, sc)
		if err != nil {
			return nil, err
		}
		return rt.Functions.Call(e.Op, []any{l, r})
	case Case:
		return rt.evalCase(e, doc, sc)
	case Call:
		args := make([]any, len(e.Args))
		for i, a := range e.Args {
			v, err := rt.Eval(a, doc, sc)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		out, err := rt.Functions.Call(e.Name, args)
		if err != nil {
			return nil, err
		}
		if fn, ok := out.(DocFunc); ok {
			return fn(doc)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("eval: unknown expression node %T", node)
	}
}

func (rt *Runtime) evalCase(c Case, doc map[string]any, sc *evalScope) (any, error) {
	if c.Subject == nil {
		for _, cl := range c.PredClauses {
			ok, err := rt.Matches(cl.When, doc, sc)
			if err != nil {
				return nil, err
			}
			if ok {
				return rt.Eval(cl.Then, doc, sc)
			}
		}
	} else {
		subject, err := rt.Eval(c.Subject, doc, sc)
		if err != nil {
			return nil, err
		}
		for _, cl := range c.ValClauses {
			v, err := rt.Eval(cl.When, doc, sc)
			if err != nil {
				return nil, err
			}
			if ValueEqual(v, subject) {
				return rt.Eval(cl.Then, doc, sc)
			}
		}
	}

	if c.Else != nil {
		return rt.Eval(c.Else, doc, sc)
	}
	return nil, nil
}

// readPayload serves a payload.* read from the per-input scratch cache,
// decoding the raw payload field at most once per input (C6).
func (rt *Runtime) readPayload(path Path, doc map[string]any, sc *evalScope) (any, error) {
	if !sc.payloadLoaded {
		raw, _ := GetPath(doc, Path{"payload"})
		sc.payload = EnsureMap(raw)
		sc.payloadLoaded = true
	}

	if len(path) == 1 {
		return cloneShallow(sc.payload), nil
	}

	v, _ := GetPath(sc.payload, path[1:])
	return v, nil
}
