package rule

// Path is an ordered sequence of textual keys addressing a value inside a
// nested document. A single-element path is the common case.
type Path []string

// GetPath walks path left-to-right through nested maps. Any missing key, or
// traversal into a non-map, yields (nil, false). GetPath never panics.
func GetPath(doc map[string]any, path Path) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	cur := any(doc)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, present := m[key]
		if !present {
			return nil, false
		}
		cur = v
	}

	return cur, true
}

// PutPath returns a document with value created/overwritten at path.
// Intermediate maps are created as needed; maps traversed along the way are
// shallow-copied so sibling keys and the caller's original document are
// preserved untouched. PutPath never panics.
func PutPath(doc map[string]any, path Path, value any) map[string]any {
	if len(path) == 0 {
		return doc
	}

	out := cloneShallow(doc)

	if len(path) == 1 {
		out[path[0]] = value
		return out
	}

	key := path[0]
	child, ok := out[key].(map[string]any)
	if !ok {
		child = map[string]any{}
	}
	out[key] = PutPath(child, path[1:], value)
	return out
}

func cloneShallow(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
