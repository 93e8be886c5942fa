package fsm

// Builder provides a fluent API for declaring a machine's states and
// transitions up front, deferring registration and validation to Build. It
// replaces chains of AddState/AddTransition error checks with a single error
// at the end.
type Builder struct {
	context     any
	states      []State
	transitions []transitionDecl
	initial     string
}

// StateBuilder provides fluent methods for configuring one declared state.
type StateBuilder struct {
	b   *Builder
	idx int
}

// transitionDecl is a deferred transition registration. The bulk flags mirror
// AddTransitionFromAll and AddTransitionToAll.
type transitionDecl struct {
	from       string
	to         string
	predicates PredicateGroup
	fromAll    bool
	toAll      bool
}

// NewBuilder creates a builder whose machine will be bound to the given
// caller context.
func NewBuilder(context any) *Builder {
	return &Builder{context: context}
}

// State declares a state by name and returns a fluent handle for attaching
// its hooks. Declaring the same name twice returns a handle to the already
// declared state rather than a duplicate.
func (b *Builder) State(name string) *StateBuilder {
	for i := range b.states {
		if b.states[i].Name == name {
			return &StateBuilder{b: b, idx: i}
		}
	}
	b.states = append(b.states, State{Name: name})
	return &StateBuilder{b: b, idx: len(b.states) - 1}
}

// Transition declares a predicate-gated edge. Endpoints are validated at
// Build time. Declaration order is evaluation priority, as with
// AddTransition.
func (b *Builder) Transition(from, to string, predicates ...Predicate) *Builder {
	b.transitions = append(b.transitions, transitionDecl{from: from, to: to, predicates: predicates})
	return b
}

// TransitionFromAll declares an edge into the named state from every state
// declared on this builder, excluding the self-loop.
func (b *Builder) TransitionFromAll(to string, predicates ...Predicate) *Builder {
	b.transitions = append(b.transitions, transitionDecl{to: to, predicates: predicates, fromAll: true})
	return b
}

// TransitionToAll declares an edge from the named state to every other state
// declared on this builder, excluding the self-loop.
func (b *Builder) TransitionToAll(from string, predicates ...Predicate) *Builder {
	b.transitions = append(b.transitions, transitionDecl{from: from, predicates: predicates, toAll: true})
	return b
}

// Initial names the state the machine starts in. Build calls SetState with
// it, so the machine comes back ready to tick.
func (b *Builder) Initial(name string) *Builder {
	b.initial = name
	return b
}

// Build registers every declared state and transition on a fresh machine and
// returns it. All states are registered before any transition, so the bulk
// declarations span the full declared set regardless of declaration
// interleaving. The first registration error aborts the build.
func (b *Builder) Build(opts ...Option) (*Machine, error) {
	m := New(b.context, opts...)
	for i := range b.states {
		if err := m.AddState(b.states[i]); err != nil {
			return nil, err
		}
	}
	for _, t := range b.transitions {
		var err error
		switch {
		case t.fromAll:
			err = m.AddTransitionFromAll(t.to, t.predicates)
		case t.toAll:
			err = m.AddTransitionToAll(t.from, t.predicates)
		default:
			err = m.AddTransition(t.from, t.to, t.predicates)
		}
		if err != nil {
			return nil, err
		}
	}
	if b.initial != "" {
		if err := m.SetState(b.initial); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StateBuilder fluent methods

// OnEnter sets the hook run when the state becomes active.
func (sb *StateBuilder) OnEnter(h Hook) *StateBuilder {
	sb.b.states[sb.idx].OnEnter = h
	return sb
}

// OnUpdate sets the hook run once per tick while the state is active.
func (sb *StateBuilder) OnUpdate(h Hook) *StateBuilder {
	sb.b.states[sb.idx].OnUpdate = h
	return sb
}

// OnExit sets the hook run when the state is left through a transition.
func (sb *StateBuilder) OnExit(h Hook) *StateBuilder {
	sb.b.states[sb.idx].OnExit = h
	return sb
}
