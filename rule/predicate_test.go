package rule_test

import (
	"testing"

	"github.com/laashub/emqx-rule-engine/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesTrue(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Matches(rule.True{}, map[string]any{}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesNilPredicateIsTrue(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Matches(nil, map[string]any{}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

// S2 — numeric/text coercion.
func TestMatchesNumericTextCoercion(t *testing.T) {
	rt := newRuntime()
	doc := map[string]any{"n": int64(5)}
	ok, err := rt.Matches(rule.Cmp{Op: "=", L: rule.Var{Path: rule.Path{"n"}}, R: rule.Const{Value: "5"}}, doc, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareAtomToTextCoercion(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Compare("=", rule.Atom("ok"), "ok")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareIncoercibleTextFails(t *testing.T) {
	rt := newRuntime()
	_, err := rt.Compare(">", int64(5), "not-a-number")
	require.Error(t, err)
	assert.ErrorIs(t, err, rule.ErrCoercion)
}

func TestCompareOrderingNumbers(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Compare("<", int64(2), int64(3))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareOrderingText(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Compare("<", "abc", "abd")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareNotEquals(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Compare("<>", int64(1), int64(2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rt.Compare("!=", int64(1), int64(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareTopicMatch(t *testing.T) {
	rt := newRuntime()
	ok, err := rt.Compare("=~", "sensors/kitchen/temperature", "sensors/+/temperature")
	require.NoError(t, err)
	assert.True(t, ok)
}

// S5 — Not of a non-boolean value yields false, not an error.
func TestNotOfNonBooleanYieldsFalse(t *testing.T) {
	rt := newRuntime()
	doc := map[string]any{"q": "maybe"}
	ok, err := rt.Matches(rule.Not{X: rule.Var{Path: rule.Path{"q"}}}, doc, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotOfBoolean(t *testing.T) {
	rt := newRuntime()
	doc := map[string]any{"q": true}
	ok, err := rt.Matches(rule.Not{X: rule.Var{Path: rule.Path{"q"}}}, doc, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMembership(t *testing.T) {
	rt := newRuntime()
	pred := rule.In{
		X:    rule.Const{Value: int64(2)},
		List: []rule.Expr{rule.Const{Value: int64(1)}, rule.Const{Value: int64(2)}, rule.Const{Value: int64(3)}},
	}
	ok, err := rt.Matches(pred, map[string]any{}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPredCallNonBooleanFailsClosed(t *testing.T) {
	funcs := newFakeFunctions()
	rt := rule.NewRuntime(funcs, rule.MQTTTopicMatcher{})

	// current_topic returns a string, not a bool.
	ok, err := rt.Matches(rule.PredCall{Name: "current_topic"}, map[string]any{"topic": "x"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Property 5 — predicate short-circuit: And(L, R) does not evaluate R when
// L is false.
func TestAndShortCircuits(t *testing.T) {
	funcs := newFakeFunctions()
	rt := rule.NewRuntime(funcs, rule.MQTTTopicMatcher{})

	falsePred := rule.Cmp{Op: "=", L: rule.Const{Value: int64(1)}, R: rule.Const{Value: int64(2)}}
	sideEffecting := rule.PredCall{Name: "always_true"}

	ok, err := rt.Matches(rule.And{L: falsePred, R: sideEffecting}, map[string]any{}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, funcs.calls["always_true"])
}

func TestOrShortCircuits(t *testing.T) {
	funcs := newFakeFunctions()
	rt := rule.NewRuntime(funcs, rule.MQTTTopicMatcher{})

	truePred := rule.Cmp{Op: "=", L: rule.Const{Value: int64(1)}, R: rule.Const{Value: int64(1)}}
	sideEffecting := rule.PredCall{Name: "always_true"}

	ok, err := rt.Matches(rule.Or{L: truePred, R: sideEffecting}, map[string]any{}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, funcs.calls["always_true"])
}
