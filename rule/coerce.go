package rule

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseNumber attempts an integer parse first, falling back to a
// floating-point parse, and fails with ErrCoercion only when neither
// succeeds.
func ParseNumber(text string) (any, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: cannot parse %q as a number", ErrCoercion, text)
}

// EnsureMap returns v as a map, decoding it as textual JSON when it isn't
// one already. Decode failure or a non-map decode result yields an empty
// map; EnsureMap never fails.
func EnsureMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(m), &decoded); err != nil {
			return map[string]any{}
		}
		if dm, ok := decoded.(map[string]any); ok {
			return dm
		}
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// EnsureList returns v as a list, or the empty list when v isn't one.
// EnsureList never fails.
func EnsureList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{}
}

// AtomToText renders a symbolic atom as its canonical UTF-8 text.
func AtomToText(a Atom) string {
	return string(a)
}
