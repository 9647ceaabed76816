package rule

// ForEachSpec is a rule's optional FOREACH set (spec §3): the
// collection-producing field list, the per-item INCASE predicate, and the
// per-item DOEACH field list.
type ForEachSpec struct {
	Fields []FieldEntry
	InCase Predicate
	DoEach []FieldEntry
}

// Rule is an immutable rule record (spec §3). Invariant: ForEach is
// non-nil if and only if the rule iterates; see IsForEach.
type Rule struct {
	ID         string
	Enabled    bool
	Fields     []FieldEntry
	Conditions Predicate
	Actions    []string
	ForEach    *ForEachSpec
}

// IsForEach reports whether this rule iterates a collection.
func (r Rule) IsForEach() bool {
	return r.ForEach != nil
}
