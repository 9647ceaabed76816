package rule

// Expr is the closed set of expression AST variants (spec §3). The marker
// method keeps the set closed to this package; hosts build trees with the
// constructors below rather than implementing the interface themselves.
type Expr interface {
	exprNode()
}

// Var reads a nested path from the document being evaluated. A path whose
// first component is "payload" is served from the per-input scratch cache
// instead of a direct path read.
type Var struct {
	Path Path
}

func (Var) exprNode() {}

// Const is a literal value.
type Const struct {
	Value any
}

func (Const) exprNode() {}

// Arith delegates op (one of +, -, *, /, mod, ...) to the function library.
type Arith struct {
	Op string
	L  Expr
	R  Expr
}

func (Arith) exprNode() {}

// PredClause is one CASE clause when no subject is given: When is a
// predicate, and Then is evaluated when it matches.
type PredClause struct {
	When Predicate
	Then Expr
}

// ValClause is one CASE clause when a subject is given: When is an
// expression whose value is compared to the subject by ValueEqual.
type ValClause struct {
	When Expr
	Then Expr
}

// Case is the conditional expression. Exactly one of PredClauses (no
// subject) or ValClauses (subject present) is populated, selected by
// whether Subject is nil. Else is evaluated when no clause matches; if Else
// is nil, Case evaluates to nil.
type Case struct {
	Subject     Expr
	PredClauses []PredClause
	ValClauses  []ValClause
	Else        Expr
}

func (Case) exprNode() {}

// NewCaseSearched builds a subject-less CASE (each clause condition is a
// predicate).
func NewCaseSearched(clauses []PredClause, els Expr) Case {
	return Case{PredClauses: clauses, Else: els}
}

// NewCaseSimple builds a CASE with a subject (each clause condition is an
// expression compared by value to the subject).
func NewCaseSimple(subject Expr, clauses []ValClause, els Expr) Case {
	return Case{Subject: subject, ValClauses: clauses, Else: els}
}

// Call is a function call into the function library. Args are evaluated
// left-to-right before the call. If the library returns a DocFunc, the
// evaluator applies it once to the current document.
type Call struct {
	Name string
	Args []Expr
}

func (Call) exprNode() {}

// Predicate is the closed set of predicate AST variants (spec §3).
type Predicate interface {
	predNode()
}

// And/Or are short-circuiting boolean connectives.
type And struct{ L, R Predicate }

func (And) predNode() {}

type Or struct{ L, R Predicate }

func (Or) predNode() {}

// Not evaluates X as an expression; a non-boolean result yields false for
// the whole Not (authors must produce a boolean to participate in negation).
type Not struct{ X Expr }

func (Not) predNode() {}

// In tests membership of X's value among the evaluated members of List.
type In struct {
	X    Expr
	List []Expr
}

func (In) predNode() {}

// PredCall evaluates a function call and interprets its value as a boolean;
// a non-boolean result fails the predicate (see Matches).
type PredCall struct {
	Name string
	Args []Expr
}

func (PredCall) predNode() {}

// Cmp compares L and R with the cross-type coercion rules in Compare.
// Op is one of =, <>, !=, >, <, >=, <=, =~.
type Cmp struct {
	Op string
	L  Expr
	R  Expr
}

func (Cmp) predNode() {}

// True is the distinguished trivially-true predicate used for a rule whose
// author supplied no WHERE clause.
type True struct{}

func (True) predNode() {}
