package integrations

// Registry resolves (integration, action) to an executable action.
// It is immutable after construction and safe for concurrent reads.
type Registry struct {
	actions map[string]map[string]Action
}

// NewRegistry collects the declared actions of the given integrations.
func NewRegistry(integrations ...Integration) *Registry {
	r := &Registry{actions: make(map[string]map[string]Action)}
	for _, in := range integrations {
		if len(in.Manifest.Actions) == 0 {
			continue
		}
		byName := make(map[string]Action, len(in.Manifest.Actions))
		for name, a := range in.Manifest.Actions {
			if a.Execute == nil {
				continue
			}
			byName[name] = a
		}
		r.actions[in.Manifest.Name] = byName
	}
	return r
}

// Lookup is safe on a nil registry, which never has a match.
func (r *Registry) Lookup(integration, action string) (Action, bool) {
	if r == nil {
		return Action{}, false
	}
	a, ok := r.actions[integration][action]
	return a, ok
}

// Len is the number of registered actions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, byName := range r.actions {
		n += len(byName)
	}
	return n
}
