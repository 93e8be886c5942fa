// Package chart loads machine definitions from YAML documents.
//
// A chart names states, their lifecycle hooks, and the predicate-gated
// transitions between them. Hooks and predicates appear in the document by
// name only; a Registry supplies the Go functions they bind to at build time.
// The transition list is ordered, and document order becomes evaluation
// priority, the same as imperative registration order.
package chart

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	fsm "github.com/evan-bertis-sample/go-fsm"
)

var (
	// ErrUnknownHook is returned by Build when a state references a hook
	// name the registry has no binding for.
	ErrUnknownHook = errors.New("unknown hook")

	// ErrUnknownPredicate is returned by Build when a transition references
	// a predicate name the registry has no binding for.
	ErrUnknownPredicate = errors.New("unknown predicate")
)

// Chart is the top-level machine definition.
type Chart struct {
	Name        string          `yaml:"name"`
	Initial     string          `yaml:"initial,omitempty"`
	States      []StateDef      `yaml:"states"`
	Transitions []TransitionDef `yaml:"transitions,omitempty"`
}

// StateDef declares one state. The hook fields name registry bindings and may
// be empty for states without that hook.
type StateDef struct {
	Name     string `yaml:"name"`
	OnEnter  string `yaml:"onEnter,omitempty"`
	OnUpdate string `yaml:"onUpdate,omitempty"`
	OnExit   string `yaml:"onExit,omitempty"`
}

// TransitionDef declares one edge, or a bulk family of edges when FromAll or
// ToAll is set. When holds predicate names that must all evaluate true for
// the transition to fire; an empty When always fires.
type TransitionDef struct {
	From    string   `yaml:"from,omitempty"`
	To      string   `yaml:"to,omitempty"`
	FromAll bool     `yaml:"fromAll,omitempty"`
	ToAll   bool     `yaml:"toAll,omitempty"`
	When    []string `yaml:"when,omitempty"`
}

// Parse decodes and validates a YAML chart document.
func Parse(data []byte) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses a chart file.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load chart: %w", err)
	}
	return Parse(data)
}

// Validate checks the definition's internal consistency:
//   - at least one state, each with a unique non-empty name
//   - Initial, when set, names a declared state
//   - every transition endpoint names a declared state
//   - bulk transitions carry exactly the endpoint their kind needs
func (c *Chart) Validate() error {
	if len(c.States) == 0 {
		return errors.New("chart has no states")
	}
	names := make(map[string]bool, len(c.States))
	for _, s := range c.States {
		if s.Name == "" {
			return errors.New("state with empty name")
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate state %q", s.Name)
		}
		names[s.Name] = true
	}
	if c.Initial != "" && !names[c.Initial] {
		return fmt.Errorf("initial state %q not declared", c.Initial)
	}
	for i, t := range c.Transitions {
		switch {
		case t.FromAll && t.ToAll:
			return fmt.Errorf("transition %d: fromAll and toAll are mutually exclusive", i)
		case t.FromAll:
			if t.From != "" {
				return fmt.Errorf("transition %d: fromAll excludes a from state", i)
			}
			if !names[t.To] {
				return fmt.Errorf("transition %d: target %q not declared", i, t.To)
			}
		case t.ToAll:
			if t.To != "" {
				return fmt.Errorf("transition %d: toAll excludes a to state", i)
			}
			if !names[t.From] {
				return fmt.Errorf("transition %d: source %q not declared", i, t.From)
			}
		default:
			if !names[t.From] {
				return fmt.Errorf("transition %d: source %q not declared", i, t.From)
			}
			if !names[t.To] {
				return fmt.Errorf("transition %d: target %q not declared", i, t.To)
			}
		}
	}
	return nil
}

// Build constructs a machine from the definition, binding hook and predicate
// names through the registry. Every referenced name must be registered. If
// the chart declares an initial state the machine comes back ready to tick.
func (c *Chart) Build(context any, reg *Registry, opts ...fsm.Option) (*fsm.Machine, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	m := fsm.New(context, opts...)

	for _, s := range c.States {
		state := fsm.State{Name: s.Name}
		var err error
		if state.OnEnter, err = reg.hook(s.OnEnter); err != nil {
			return nil, fmt.Errorf("state %q: %w", s.Name, err)
		}
		if state.OnUpdate, err = reg.hook(s.OnUpdate); err != nil {
			return nil, fmt.Errorf("state %q: %w", s.Name, err)
		}
		if state.OnExit, err = reg.hook(s.OnExit); err != nil {
			return nil, fmt.Errorf("state %q: %w", s.Name, err)
		}
		if err := m.AddState(state); err != nil {
			return nil, err
		}
	}

	for i, t := range c.Transitions {
		group, err := reg.predicateGroup(t.When)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		switch {
		case t.FromAll:
			err = m.AddTransitionFromAll(t.To, group)
		case t.ToAll:
			err = m.AddTransitionToAll(t.From, group)
		default:
			err = m.AddTransition(t.From, t.To, group)
		}
		if err != nil {
			return nil, err
		}
	}

	if c.Initial != "" {
		if err := m.SetState(c.Initial); err != nil {
			return nil, err
		}
	}
	return m, nil
}
