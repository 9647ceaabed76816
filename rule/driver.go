package rule

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
)

// Driver is the rule driver (C8): for each input, it sequences projection,
// predicate matching, and action dispatch across a rule list with per-stage
// error isolation.
type Driver struct {
	Runtime    *Runtime
	Dispatcher *Dispatcher
	Metrics    MetricsSink
	Logger     *slog.Logger

	// testScope backs the single-rule ApplyRule entrypoint when called
	// directly (outside ApplyRules), so a test harness driving several
	// ApplyRule calls by hand for one input still observes payload
	// memoization across them. ApplyRules never touches this field; it
	// owns a scope scoped to its own call instead. See DESIGN.md O1.
	testScope *evalScope
}

// NewDriver builds a Driver from its collaborators, defaulting the logger
// to slog's default handler when nil.
func NewDriver(runtime *Runtime, dispatcher *Dispatcher, metrics MetricsSink, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{Runtime: runtime, Dispatcher: dispatcher, Metrics: metrics, Logger: logger}
}

// ApplyRules drives rules, in order, against one input (spec §4.8). Every
// enabled rule runs inside a failure-isolation scope: the four named
// per-rule error kinds are logged at warning level and evaluation continues
// to the next rule; any other error is logged at error level with a stack
// trace. No per-rule error escapes ApplyRules: it returns nil, or ctx.Err()
// when ctx is found cancelled between rules. It always clears the per-input
// scratch cache on return, even when a panic unwinds through it.
func (d *Driver) ApplyRules(ctx context.Context, rules []Rule, input map[string]any) error {
	scope := newEvalScope()
	defer scope.reset()

	for _, r := range rules {
		if !r.Enabled {
			continue
		}

		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if _, err := d.applyRuleWithScope(r, input, scope); err != nil {
			switch {
			case errors.Is(err, ErrSelectAndTransform),
				errors.Is(err, ErrSelectAndCollect),
				errors.Is(err, ErrMatchConditions),
				errors.Is(err, ErrMatchIncase):
				d.Logger.Warn("rule evaluation failed", "rule", r.ID, "error", err)
			default:
				d.Logger.Error("rule evaluation failed", "rule", r.ID, "error", err, "stack", string(debug.Stack()))
			}
			continue
		}
	}

	return nil
}

// ApplyRule runs a single rule against input (spec §6's single-rule test
// entrypoint). Unlike ApplyRules it may return the named error kinds
// directly rather than swallowing them, so callers can assert on them.
func (d *Driver) ApplyRule(ctx context.Context, r Rule, input map[string]any) (bool, error) {
	if d.testScope == nil {
		d.testScope = newEvalScope()
	}
	return d.applyRuleWithScope(r, input, d.testScope)
}

// ClearPayload releases the scratch cache backing the single-rule ApplyRule
// entrypoint. Idempotent. ApplyRules does not need it: it owns and discards
// its own scope every call.
func (d *Driver) ClearPayload() {
	d.testScope = nil
}

func (d *Driver) applyRuleWithScope(r Rule, input map[string]any, scope *evalScope) (bool, error) {
	if !r.IsForEach() {
		return d.applyNonForEach(r, input, scope)
	}
	return d.applyForEach(r, input, scope)
}

func (d *Driver) applyNonForEach(r Rule, input map[string]any, scope *evalScope) (bool, error) {
	selected, _, err := d.Runtime.Transform(r.Fields, input, scope)
	if err != nil {
		return false, errors.Join(ErrSelectAndTransform, err)
	}

	// WHERE must see SELECT's aliases alongside the raw input (the same
	// maps:merge(Columns, Selected) the original EMQX runtime evaluates
	// conditions against), not just the bare input fields.
	ok, err := d.Runtime.Matches(r.Conditions, mergeMaps(input, selected), scope)
	if err != nil {
		return false, errors.Join(ErrMatchConditions, err)
	}
	if !ok {
		return false, nil
	}

	d.Metrics.Inc(r.ID, CounterRulesMatched)

	if _, err := d.Dispatcher.Dispatch(r.Actions, selected, input); err != nil {
		return true, err
	}
	return true, nil
}

func (d *Driver) applyForEach(r Rule, input map[string]any, scope *evalScope) (bool, error) {
	spec := r.ForEach

	selected, key, items, err := d.Runtime.Collect(spec.Fields, input, scope)
	if err != nil {
		return false, errors.Join(ErrSelectAndCollect, err)
	}

	// A FOREACH whose source could not be coerced to a non-empty list never
	// matches: zero items means zero action invocations and no
	// rules.matched increment (spec §8 property 3), regardless of what the
	// outer WHERE would otherwise evaluate to. See DESIGN.md O3.
	if len(items) == 0 {
		return false, nil
	}

	outerCtx := mergeMaps(input, selected)
	ok, err := d.Runtime.Matches(r.Conditions, outerCtx, scope)
	if err != nil {
		return false, errors.Join(ErrMatchConditions, err)
	}
	if !ok {
		return false, nil
	}

	d.Metrics.Inc(r.ID, CounterRulesMatched)

	matchedAny := false
	for _, item := range items {
		itemCtx := mergeMaps(input, map[string]any{key: item})

		passed := true
		if spec.InCase != nil {
			passed, err = d.Runtime.Matches(spec.InCase, itemCtx, scope)
			if err != nil {
				return true, errors.Join(ErrMatchIncase, err)
			}
		}
		if !passed {
			continue
		}

		var projected map[string]any
		if len(spec.DoEach) == 0 {
			projected = map[string]any{key: item}
		} else {
			projected, _, err = d.Runtime.Transform(spec.DoEach, itemCtx, scope)
			if err != nil {
				return true, errors.Join(ErrDoEach, err)
			}
		}

		if _, err := d.Dispatcher.Dispatch(r.Actions, projected, input); err != nil {
			return true, err
		}
		matchedAny = true
	}

	return matchedAny, nil
}

func mergeMaps(base, overlay map[string]any) map[string]any {
	out := cloneShallow(base)
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
