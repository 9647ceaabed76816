package rule_test

import (
	"testing"

	"github.com/laashub/emqx-rule-engine/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathSingleElement(t *testing.T) {
	doc := map[string]any{"a": 3}
	v, ok := rule.GetPath(doc, rule.Path{"a"})
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestGetPathNested(t *testing.T) {
	doc := map[string]any{"payload": map[string]any{"k": 1}}
	v, ok := rule.GetPath(doc, rule.Path{"payload", "k"})
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestGetPathMissingKey(t *testing.T) {
	doc := map[string]any{"a": 1}
	_, ok := rule.GetPath(doc, rule.Path{"missing"})
	assert.False(t, ok)
}

func TestGetPathThroughNonMap(t *testing.T) {
	doc := map[string]any{"a": 1}
	_, ok := rule.GetPath(doc, rule.Path{"a", "b"})
	assert.False(t, ok)
}

func TestGetPathEmpty(t *testing.T) {
	_, ok := rule.GetPath(map[string]any{"a": 1}, rule.Path{})
	assert.False(t, ok)
}

func TestPutPathCreatesIntermediateMaps(t *testing.T) {
	doc := map[string]any{}
	out := rule.PutPath(doc, rule.Path{"a", "b"}, 5)

	v, ok := rule.GetPath(out, rule.Path{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestPutPathPreservesSiblings(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"x": 1}}
	out := rule.PutPath(doc, rule.Path{"a", "y"}, 2)

	x, ok := rule.GetPath(out, rule.Path{"a", "x"})
	require.True(t, ok)
	assert.Equal(t, 1, x)

	y, ok := rule.GetPath(out, rule.Path{"a", "y"})
	require.True(t, ok)
	assert.Equal(t, 2, y)
}

func TestPutPathDoesNotMutateOriginal(t *testing.T) {
	doc := map[string]any{"a": 1}
	_ = rule.PutPath(doc, rule.Path{"b"}, 2)

	_, ok := doc["b"]
	assert.False(t, ok)
}
