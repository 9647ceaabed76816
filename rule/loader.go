package rule

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// The SQL-like rule grammar itself (its parser) is an out-of-scope external
// collaborator (spec §1): this package never parses rule text. What it does
// provide is a JSON/YAML wire format for an already-compiled rule's AST, so
// a host can hand the engine a document without hand-building Go structs —
// the same role the teacher's loader.go plays for a policy Document, just
// decoding an expression tree rather than an expr-lang condition string.

// ExprWire is the wire representation of an Expr node, discriminated by
// Kind: "var", "const", "arith", "call", "case".
type ExprWire struct {
	Kind string `json:"kind"`

	// var
	Path []string `json:"path,omitempty"`

	// const
	Value any `json:"value,omitempty"`

	// arith / cmp operands share this shape
	Op string    `json:"op,omitempty"`
	L  *ExprWire `json:"l,omitempty"`
	R  *ExprWire `json:"r,omitempty"`

	// call
	Name string     `json:"name,omitempty"`
	Args []ExprWire `json:"args,omitempty"`

	// case
	Subject *ExprWire        `json:"subject,omitempty"`
	Clauses []CaseClauseWire `json:"clauses,omitempty"`
	Else    *ExprWire        `json:"else,omitempty"`
}

// CaseClauseWire is one CASE clause. When the enclosing ExprWire has a
// Subject, WhenExpr is used (value-equality clause); otherwise WhenPredicate
// is used (searched clause).
type CaseClauseWire struct {
	WhenPredicate *PredicateWire `json:"when_predicate,omitempty"`
	WhenExpr      *ExprWire      `json:"when_expr,omitempty"`
	Then          ExprWire       `json:"then"`
}

// PredicateWire is the wire representation of a Predicate node, discriminated
// by Kind: "true", "and", "or", "not", "in", "call", "cmp".
type PredicateWire struct {
	Kind string `json:"kind"`

	// and / or
	PL *PredicateWire `json:"pl,omitempty"`
	PR *PredicateWire `json:"pr,omitempty"`

	// not
	X *ExprWire `json:"x,omitempty"`

	// in
	List []ExprWire `json:"list,omitempty"`

	// call
	Name string     `json:"name,omitempty"`
	Args []ExprWire `json:"args,omitempty"`

	// cmp
	Op string    `json:"op,omitempty"`
	L  *ExprWire `json:"l,omitempty"`
	R  *ExprWire `json:"r,omitempty"`
}

// FieldWire is the wire representation of a FieldEntry.
type FieldWire struct {
	Wildcard bool      `json:"wildcard,omitempty"`
	Alias    string    `json:"alias,omitempty"`
	Expr     *ExprWire `json:"expr,omitempty"`
}

// ForEachWire is the wire representation of a ForEachSpec.
type ForEachWire struct {
	Select []FieldWire    `json:"select"`
	InCase *PredicateWire `json:"incase,omitempty"`
	DoEach []FieldWire    `json:"doeach,omitempty"`
}

// RuleWire is the wire representation of a Rule.
type RuleWire struct {
	ID      string         `json:"id,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
	Select  []FieldWire    `json:"select"`
	Where   *PredicateWire `json:"where,omitempty"`
	Actions []string       `json:"actions"`
	ForEach *ForEachWire   `json:"foreach,omitempty"`
}

// Document is the wire representation of a rule list.
type Document struct {
	Rules []RuleWire `json:"rules"`
}

// buildExpr converts an expression wire node into the engine's Expr AST. A
// nil node builds to a nil Expr (Eval treats a nil Expr as evaluating to
// nil).
func buildExpr(w *ExprWire) (Expr, error) {
	if w == nil {
		return nil, nil
	}

	switch w.Kind {
	case "var":
		return Var{Path: Path(w.Path)}, nil
	case "const":
		return Const{Value: normalizeWireConst(w.Value)}, nil
	case "arith":
		l, err := buildExpr(w.L)
		if err != nil {
			return nil, err
		}
		r, err := buildExpr(w.R)
		if err != nil {
			return nil, err
		}
		return Arith{Op: w.Op, L: l, R: r}, nil
	case "call":
		args, err := buildExprList(w.Args)
		if err != nil {
			return nil, err
		}
		return Call{Name: w.Name, Args: args}, nil
	case "case":
		return buildCase(*w)
	default:
		return nil, fmt.Errorf("rule: unknown expression kind %q", w.Kind)
	}
}

func buildCase(w ExprWire) (Expr, error) {
	elseExpr, err := buildExpr(w.Else)
	if err != nil {
		return nil, err
	}

	if w.Subject == nil {
		clauses := make([]PredClause, 0, len(w.Clauses))
		for _, c := range w.Clauses {
			pred, err := buildPredicate(c.WhenPredicate)
			if err != nil {
				return nil, err
			}
			then, err := buildExpr(&c.Then)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, PredClause{When: pred, Then: then})
		}
		return NewCaseSearched(clauses, elseExpr), nil
	}

	subject, err := buildExpr(w.Subject)
	if err != nil {
		return nil, err
	}
	clauses := make([]ValClause, 0, len(w.Clauses))
	for _, c := range w.Clauses {
		when, err := buildExpr(c.WhenExpr)
		if err != nil {
			return nil, err
		}
		then, err := buildExpr(&c.Then)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, ValClause{When: when, Then: then})
	}
	return NewCaseSimple(subject, clauses, elseExpr), nil
}

func buildExprList(ws []ExprWire) ([]Expr, error) {
	out := make([]Expr, 0, len(ws))
	for i := range ws {
		e, err := buildExpr(&ws[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// buildPredicate converts a predicate wire node into the engine's Predicate
// AST. A nil node builds to True{} (an absent WHERE/INCASE).
func buildPredicate(w *PredicateWire) (Predicate, error) {
	if w == nil {
		return True{}, nil
	}

	switch w.Kind {
	case "", "true":
		return True{}, nil
	case "and":
		l, err := buildPredicate(w.PL)
		if err != nil {
			return nil, err
		}
		r, err := buildPredicate(w.PR)
		if err != nil {
			return nil, err
		}
		return And{L: l, R: r}, nil
	case "or":
		l, err := buildPredicate(w.PL)
		if err != nil {
			return nil, err
		}
		r, err := buildPredicate(w.PR)
		if err != nil {
			return nil, err
		}
		return Or{L: l, R: r}, nil
	case "not":
		x, err := buildExpr(w.X)
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	case "in":
		x, err := buildExpr(w.X)
		if err != nil {
			return nil, err
		}
		list, err := buildExprList(w.List)
		if err != nil {
			return nil, err
		}
		return In{X: x, List: list}, nil
	case "call":
		args, err := buildExprList(w.Args)
		if err != nil {
			return nil, err
		}
		return PredCall{Name: w.Name, Args: args}, nil
	case "cmp":
		l, err := buildExpr(w.L)
		if err != nil {
			return nil, err
		}
		r, err := buildExpr(w.R)
		if err != nil {
			return nil, err
		}
		return Cmp{Op: w.Op, L: l, R: r}, nil
	default:
		return nil, fmt.Errorf("rule: unknown predicate kind %q", w.Kind)
	}
}

// Build converts a field-list wire entry into a FieldEntry.
func (w FieldWire) Build() (FieldEntry, error) {
	if w.Wildcard {
		return WildcardField(), nil
	}
	expr, err := buildExpr(w.Expr)
	if err != nil {
		return FieldEntry{}, err
	}
	if w.Alias != "" {
		return AliasedField(expr, w.Alias), nil
	}
	return Field(expr), nil
}

func buildFieldList(ws []FieldWire) ([]FieldEntry, error) {
	out := make([]FieldEntry, 0, len(ws))
	for _, w := range ws {
		f, err := w.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Build converts a rule wire entry into a Rule, generating an id via
// github.com/google/uuid when the document omitted one.
func (w RuleWire) Build() (Rule, error) {
	fields, err := buildFieldList(w.Select)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", w.ID, err)
	}
	cond, err := buildPredicate(w.Where)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", w.ID, err)
	}

	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}
	enabled := true
	if w.Enabled != nil {
		enabled = *w.Enabled
	}

	r := Rule{
		ID:         id,
		Enabled:    enabled,
		Fields:     fields,
		Conditions: cond,
		Actions:    w.Actions,
	}

	if w.ForEach != nil {
		feFields, err := buildFieldList(w.ForEach.Select)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q foreach: %w", id, err)
		}
		inCase, err := buildPredicate(w.ForEach.InCase)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q incase: %w", id, err)
		}
		doEach, err := buildFieldList(w.ForEach.DoEach)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q doeach: %w", id, err)
		}
		r.ForEach = &ForEachSpec{Fields: feFields, InCase: inCase, DoEach: doEach}
	}

	return r, nil
}

// Build converts the document wire tree into the engine's rule list.
func (doc Document) Build() ([]Rule, error) {
	rules := make([]Rule, 0, len(doc.Rules))
	for _, rw := range doc.Rules {
		r, err := rw.Build()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// normalizeWireConst folds an encoding/json float64 literal back to an int64
// when it has no fractional part, so a JSON "5" round-trips as an integer
// Const rather than always becoming a float.
func normalizeWireConst(v any) any {
	if n, ok := v.(float64); ok && n == float64(int64(n)) {
		return int64(n)
	}
	return v
}

// ParseJSONDocument decodes a rule document from JSON and builds its rules.
func ParseJSONDocument(r io.Reader) ([]Rule, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rule document: %w", err)
	}
	return doc.Build()
}

// LoadJSONDocument reads a JSON rule document from disk and builds its rules.
func LoadJSONDocument(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule document: %w", err)
	}
	defer f.Close()
	return ParseJSONDocument(f)
}

// ParseYAMLDocument decodes a rule document from YAML and builds its rules.
func ParseYAMLDocument(r io.Reader) ([]Rule, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rule document: %w", err)
	}
	return doc.Build()
}

// LoadYAMLDocument reads a YAML rule document from disk and builds its rules.
func LoadYAMLDocument(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule document: %w", err)
	}
	defer f.Close()
	return ParseYAMLDocument(f)
}
