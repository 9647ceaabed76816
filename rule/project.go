package rule

// FieldEntry is one field-list entry (spec §3): the wildcard "*", a bare
// expression, or an aliased expression. Alias is empty for a bare entry.
type FieldEntry struct {
	Wildcard bool
	Alias    string
	Expr     Expr
}

// Field builds a bare field-list entry.
func Field(expr Expr) FieldEntry {
	return FieldEntry{Expr: expr}
}

// AliasedField builds an aliased field-list entry.
func AliasedField(expr Expr, alias string) FieldEntry {
	return FieldEntry{Expr: expr, Alias: alias}
}

// WildcardField builds the "*" field-list entry.
func WildcardField() FieldEntry {
	return FieldEntry{Wildcard: true}
}

// Transform executes SELECT (transform mode, C5) over fields against doc,
// returning the projected output and the in-flight input (doc plus every
// alias assigned so far, visible to later field-list entries).
func (rt *Runtime) Transform(fields []FieldEntry, doc map[string]any, sc *evalScope) (map[string]any, map[string]any, error) {
	out := map[string]any{}
	work := cloneShallow(doc)

	for _, f := range fields {
		switch {
		case f.Wildcard:
			for k, v := range work {
				out[k] = v
			}
		case f.Alias != "":
			v, err := rt.Eval(f.Expr, work, sc)
			if err != nil {
				return nil, nil, err
			}
			out[f.Alias] = v
			work[f.Alias] = v
		default:
			v, err := rt.Eval(f.Expr, work, sc)
			if err != nil {
				return nil, nil, err
			}
			key, ok := deriveKey(f.Expr, v)
			if !ok {
				return nil, nil, errUndefinedKey(f.Expr)
			}
			out[key] = v
		}
	}

	return out, work, nil
}

// Collect executes FOREACH (collect mode, C5): same traversal as Transform,
// but the last field-list entry determines the collection binding — its
// alias (or derived key, or the literal "item") becomes the collection key,
// and its value, passed through EnsureList, becomes the collection items.
func (rt *Runtime) Collect(fields []FieldEntry, doc map[string]any, sc *evalScope) (output map[string]any, key string, items []any, err error) {
	out := map[string]any{}
	work := cloneShallow(doc)
	key = "item"

	for i, f := range fields {
		isLast := i == len(fields)-1

		switch {
		case f.Wildcard:
			for k, v := range work {
				out[k] = v
			}
			if isLast {
				items = EnsureList(nil)
			}
		case f.Alias != "":
			v, evalErr := rt.Eval(f.Expr, work, sc)
			if evalErr != nil {
				return nil, "", nil, evalErr
			}
			out[f.Alias] = v
			work[f.Alias] = v
			if isLast {
				key = f.Alias
				items = EnsureList(v)
			}
		default:
			v, evalErr := rt.Eval(f.Expr, work, sc)
			if evalErr != nil {
				return nil, "", nil, evalErr
			}
			derivedKey, ok := deriveKey(f.Expr, v)
			if ok {
				out[derivedKey] = v
			}
			if isLast {
				if ok {
					key = derivedKey
				}
				items = EnsureList(v)
			}
		}
	}

	return out, key, items, nil
}

// deriveKey implements the field-list key derivation rule: a Var's key is
// its path's last component, a Const's key is the literal value itself (for
// textual/atom literals), and anything else has no derivable key.
func deriveKey(expr Expr, _ any) (string, bool) {
	switch e := expr.(type) {
	case Var:
		if len(e.Path) == 0 {
			return "", false
		}
		return e.Path[len(e.Path)-1], true
	case Const:
		switch v := e.Value.(type) {
		case string:
			return v, true
		case Atom:
			return string(v), true
		default:
			return "", false
		}
	default:
		return "", false
	}
}
