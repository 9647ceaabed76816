package rule

import "fmt"

// Action is an opaque external effect, invoked per match with the selected
// (projected) mapping and the original input.
type Action struct {
	Apply func(selected, input map[string]any) (any, error)
}

// ActionRegistry is the external rule registry collaborator:
// get_action_instance_params in spec terms. Resolve must be callable any
// number of times.
type ActionRegistry interface {
	Resolve(id string) (Action, error)
}

// StaticRegistry is the default in-memory ActionRegistry, populated ahead
// of time by the host.
type StaticRegistry struct {
	actions map[string]Action
}

// NewStaticRegistry builds an empty StaticRegistry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{actions: make(map[string]Action)}
}

// Register binds an action id to an applier closure.
func (r *StaticRegistry) Register(id string, apply func(selected, input map[string]any) (any, error)) {
	r.actions[id] = Action{Apply: apply}
}

// Resolve implements ActionRegistry.
func (r *StaticRegistry) Resolve(id string) (Action, error) {
	a, ok := r.actions[id]
	if !ok {
		return Action{}, fmt.Errorf("action %q is not registered", id)
	}
	return a, nil
}
