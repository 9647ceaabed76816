package rule_test

import (
	"strings"
	"testing"

	"github.com/laashub/emqx-rule-engine/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRuleJSON = `{
  "rules": [
    {
      "id": "high-temperature",
      "select": [{"wildcard": true}],
      "where": {
        "kind": "and",
        "pl": {
          "kind": "cmp",
          "op": "=~",
          "l": {"kind": "var", "path": ["topic"]},
          "r": {"kind": "const", "value": "sensors/+/temperature"}
        },
        "pr": {
          "kind": "cmp",
          "op": ">",
          "l": {"kind": "var", "path": ["payload", "temperature"]},
          "r": {"kind": "const", "value": 90}
        }
      },
      "actions": ["republish"]
    }
  ]
}`

func TestParseJSONDocumentBuildsRules(t *testing.T) {
	rules, err := rule.ParseJSONDocument(strings.NewReader(sampleRuleJSON))
	require.NoError(t, err)
	require.Len(t, rules, 1)

	r := rules[0]
	assert.Equal(t, "high-temperature", r.ID)
	assert.True(t, r.Enabled)
	assert.Equal(t, []string{"republish"}, r.Actions)
	assert.False(t, r.IsForEach())

	rt := newRuntime()
	ok, err := rt.Matches(r.Conditions, map[string]any{
		"topic":   "sensors/kitchen/temperature",
		"payload": map[string]any{"temperature": int64(95)},
	}, rule.NewScopeForTest())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseJSONDocumentGeneratesIDWhenOmitted(t *testing.T) {
	rules, err := rule.ParseJSONDocument(strings.NewReader(`{"rules":[{"select":[{"wildcard":true}],"actions":[]}]}`))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.NotEmpty(t, rules[0].ID)
}

func TestParseJSONDocumentDefaultsEnabledTrue(t *testing.T) {
	rules, err := rule.ParseJSONDocument(strings.NewReader(`{"rules":[{"id":"r1","select":[{"wildcard":true}],"actions":[]}]}`))
	require.NoError(t, err)
	assert.True(t, rules[0].Enabled)
}

func TestParseJSONDocumentExplicitlyDisabled(t *testing.T) {
	rules, err := rule.ParseJSONDocument(strings.NewReader(`{"rules":[{"id":"r1","enabled":false,"select":[{"wildcard":true}],"actions":[]}]}`))
	require.NoError(t, err)
	assert.False(t, rules[0].Enabled)
}

func TestParseJSONDocumentForEach(t *testing.T) {
	doc := `{
      "rules": [
        {
          "id": "per-reading",
          "select": [{"wildcard": true}],
          "foreach": {
            "select": [{"expr": {"kind": "var", "path": ["payload", "readings"]}, "alias": "reading"}],
            "incase": {
              "kind": "cmp", "op": ">",
              "l": {"kind": "var", "path": ["reading"]},
              "r": {"kind": "const", "value": 50}
            }
          },
          "actions": ["act"]
        }
      ]
    }`

	rules, err := rule.ParseJSONDocument(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].IsForEach())
	require.NotNil(t, rules[0].ForEach.InCase)
}

func TestParseJSONDocumentUnknownExprKindFails(t *testing.T) {
	doc := `{"rules":[{"select":[{"expr":{"kind":"bogus"}}],"actions":[]}]}`
	_, err := rule.ParseJSONDocument(strings.NewReader(doc))
	require.Error(t, err)
}

const sampleRuleYAML = `
rules:
  - id: high-temperature
    select:
      - wildcard: true
    where:
      kind: cmp
      op: ">"
      l:
        kind: var
        path: ["payload", "temperature"]
      r:
        kind: const
        value: 90
    actions: ["republish"]
`

func TestParseYAMLDocumentBuildsRules(t *testing.T) {
	rules, err := rule.ParseYAMLDocument(strings.NewReader(sampleRuleYAML))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "high-temperature", rules[0].ID)
	assert.Equal(t, []string{"republish"}, rules[0].Actions)
}
