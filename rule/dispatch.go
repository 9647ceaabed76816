package rule

import "fmt"

// Dispatcher is the action dispatcher (C7): for each action reference, in
// order, resolve its applier from the registry and invoke it with the
// projected mapping and the original input, recording metrics as it goes.
type Dispatcher struct {
	Registry ActionRegistry
	Metrics  MetricsSink
}

// NewDispatcher builds a Dispatcher from its collaborators.
func NewDispatcher(registry ActionRegistry, metrics MetricsSink) *Dispatcher {
	return &Dispatcher{Registry: registry, Metrics: metrics}
}

// Dispatch invokes each action in actionIDs, in order, with (selected,
// input). It collects every return value and stops at the first failure,
// propagating it wrapped in ErrTakeActionFailed — the caller (the rule
// driver) decides whether that failure aborts the surrounding rule.
func (d *Dispatcher) Dispatch(actionIDs []string, selected, input map[string]any) ([]any, error) {
	results := make([]any, 0, len(actionIDs))

	for _, id := range actionIDs {
		action, err := d.Registry.Resolve(id)
		if err != nil {
			d.Metrics.Inc(id, CounterActionsFailure)
			return results, fmt.Errorf("%w: resolve action %q: %v", ErrTakeActionFailed, id, err)
		}

		out, err := action.Apply(selected, input)
		if err != nil {
			d.Metrics.Inc(id, CounterActionsFailure)
			return results, fmt.Errorf("%w: action %q: %v", ErrTakeActionFailed, id, err)
		}

		d.Metrics.Inc(id, CounterActionsSuccess)
		results = append(results, out)
	}

	return results, nil
}
