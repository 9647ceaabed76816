package rule

// evalScope is the per-input scratch cache (C6). A Runtime is stateless and
// shared across goroutines; callers construct a fresh evalScope for each
// input and thread it explicitly through every Eval/Matches/Transform/
// Collect call for that input's rule evaluation. This realizes the spec's
// "thread-local storage, cleared unconditionally on exit" requirement
// without any actual shared mutable state or synchronization — see
// DESIGN.md O1.
type evalScope struct {
	payload       map[string]any
	payloadLoaded bool
}

func newEvalScope() *evalScope {
	return &evalScope{}
}

// reset discards the memoized payload, restoring the scope to its freshly
// allocated state. Idempotent.
func (sc *evalScope) reset() {
	sc.payload = nil
	sc.payloadLoaded = false
}

// NewScopeForTest exposes a fresh per-input scratch cache to tests outside
// this package, so they can exercise memoization/isolation directly against
// Runtime.Eval without going through a Driver.
func NewScopeForTest() *evalScope {
	return newEvalScope()
}
