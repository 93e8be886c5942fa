package chart

import (
	"fmt"

	fsm "github.com/evan-bertis-sample/go-fsm"
)

// Registry maps the hook and predicate names appearing in chart documents to
// Go functions. Registration is fluent:
//
//	reg := chart.NewRegistry().
//		Hook("idle.update", idleUpdate).
//		Predicate("stamina.full", staminaFull)
type Registry struct {
	hooks      map[string]fsm.Hook
	predicates map[string]fsm.Predicate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks:      make(map[string]fsm.Hook),
		predicates: make(map[string]fsm.Predicate),
	}
}

// Hook binds a lifecycle hook name. Rebinding a name replaces the previous
// binding.
func (r *Registry) Hook(name string, h fsm.Hook) *Registry {
	r.hooks[name] = h
	return r
}

// Predicate binds a predicate name. Rebinding a name replaces the previous
// binding.
func (r *Registry) Predicate(name string, p fsm.Predicate) *Registry {
	r.predicates[name] = p
	return r
}

// hook resolves a hook name. The empty name resolves to no hook.
func (r *Registry) hook(name string) (fsm.Hook, error) {
	if name == "" {
		return nil, nil
	}
	h, ok := r.hooks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHook, name)
	}
	return h, nil
}

// predicateGroup resolves an ordered list of predicate names.
func (r *Registry) predicateGroup(names []string) (fsm.PredicateGroup, error) {
	if len(names) == 0 {
		return nil, nil
	}
	group := make(fsm.PredicateGroup, 0, len(names))
	for _, name := range names {
		p, ok := r.predicates[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPredicate, name)
		}
		group = append(group, p)
	}
	return group, nil
}
