// Package fsm is a small, embeddable finite-state-machine runtime.
//
// A caller registers named states with enter/update/exit hooks and
// predicate-gated transitions between them, sets an initial state, and then
// drives the machine from its own loop by calling Run once per tick. The
// machine is a passive data structure: it performs no scheduling of its own,
// never blocks, and allocates nothing on the tick path.
//
// A Machine is not safe for concurrent use; callers that tick from multiple
// goroutines must provide their own synchronization.
package fsm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrDuplicateState is returned by AddState when a state with the same
	// name is already registered.
	ErrDuplicateState = errors.New("duplicate state")

	// ErrUnknownState is returned when a state name does not resolve to a
	// registered state.
	ErrUnknownState = errors.New("unknown state")

	// ErrNotInitialized is returned by Run before an initial state has been
	// set with SetState.
	ErrNotInitialized = errors.New("machine not initialized")
)

// Hook is a state lifecycle callback. The machine passes itself and the
// borrowed caller context on every invocation.
type Hook func(m *Machine, ctx any)

// Predicate gates a transition. It must be cheap and side-effect free with
// respect to the machine; it may read the caller context freely.
type Predicate func(m *Machine, ctx any) bool

// PredicateGroup is an ordered list of predicates combined with logical AND:
// a transition guarded by the group fires only if every predicate returns
// true. Evaluation short-circuits on the first false predicate. The empty
// group is vacuously true, so a transition with no predicates always fires.
type PredicateGroup []Predicate

// State is a named unit with lifecycle hooks. Nil hooks are skipped. States
// are copied by value into the machine on AddState; mutating the caller's
// copy afterwards has no effect on the machine.
type State struct {
	Name     string
	OnEnter  Hook
	OnUpdate Hook
	OnExit   Hook
}

// transition is a directed edge between two registered states, stored by
// state index so it stays valid for the machine's lifetime (states are never
// removed).
type transition struct {
	from       int
	to         int
	predicates PredicateGroup
}

// Machine coordinates states, transitions, and the current active state.
//
// Lifecycle: New -> AddState/AddTransition -> SetState -> Run per tick.
// Stop halts ticking; a stopped machine ignores Run until SetState re-arms
// it. The context handed to New is borrowed for the machine's lifetime and
// never copied, freed, or interpreted.
type Machine struct {
	context     any
	states      []State
	transitions []transition

	current int  // index into states, -1 when unset
	entered bool // OnEnter has run for the current state
	running bool
	stopped bool

	logger *zap.Logger
}

//
// Public API
//

// New creates an empty machine bound to the caller's context. The context may
// be nil if the hooks and predicates do not need shared data.
func New(context any, opts ...Option) *Machine {
	m := &Machine{
		context: context,
		current: -1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddState registers a state. The state is copied by value. Names are unique
// within one machine; a duplicate name is rejected with ErrDuplicateState and
// leaves the registry unchanged.
func (m *Machine) AddState(s State) error {
	if m.stateIndex(s.Name) >= 0 {
		m.logger.Warn("state rejected", zap.String("state", s.Name), zap.Error(ErrDuplicateState))
		return fmt.Errorf("add state %q: %w", s.Name, ErrDuplicateState)
	}
	m.states = append(m.states, s)
	m.logger.Debug("state registered", zap.String("state", s.Name))
	return nil
}

// AddTransition registers a directed edge from one state to another, guarded
// by the given predicate group. Both endpoints must already be registered or
// the call fails with ErrUnknownState. The predicate slice is copied, so the
// caller may reuse or mutate its own slice afterwards. Self-loops are
// permitted.
//
// Transitions out of a state are evaluated in registration order, and the
// first satisfied one wins; registration order is therefore priority order.
func (m *Machine) AddTransition(from, to string, predicates PredicateGroup) error {
	fromIdx := m.stateIndex(from)
	if fromIdx < 0 {
		return fmt.Errorf("add transition from %q: %w", from, ErrUnknownState)
	}
	toIdx := m.stateIndex(to)
	if toIdx < 0 {
		return fmt.Errorf("add transition to %q: %w", to, ErrUnknownState)
	}
	m.addTransition(fromIdx, toIdx, predicates)
	return nil
}

// AddTransitionFromAll wires every currently-registered state to the named
// state, excluding the self-loop, each edge guarded by an independent copy of
// the predicate group. This is a snapshot over the states registered so far;
// states added later are not wired retroactively.
func (m *Machine) AddTransitionFromAll(to string, predicates PredicateGroup) error {
	toIdx := m.stateIndex(to)
	if toIdx < 0 {
		return fmt.Errorf("add transition to %q: %w", to, ErrUnknownState)
	}
	for i := range m.states {
		if i == toIdx {
			continue
		}
		m.addTransition(i, toIdx, predicates)
	}
	return nil
}

// AddTransitionToAll wires the named state to every other currently-registered
// state, excluding the self-loop. Snapshot semantics match
// AddTransitionFromAll.
func (m *Machine) AddTransitionToAll(from string, predicates PredicateGroup) error {
	fromIdx := m.stateIndex(from)
	if fromIdx < 0 {
		return fmt.Errorf("add transition from %q: %w", from, ErrUnknownState)
	}
	for i := range m.states {
		if i == fromIdx {
			continue
		}
		m.addTransition(fromIdx, i, predicates)
	}
	return nil
}

// FindState returns a copy of the named state's registration, or
// ErrUnknownState.
func (m *Machine) FindState(name string) (State, error) {
	idx := m.stateIndex(name)
	if idx < 0 {
		return State{}, fmt.Errorf("find state %q: %w", name, ErrUnknownState)
	}
	return m.states[idx], nil
}

// SetState sets the current state directly, without invoking any exit or
// enter hooks. It is an initialization primitive, not a mid-run state change:
// use transitions for those. The named state's OnEnter will run on the next
// tick. SetState also re-arms a stopped machine.
func (m *Machine) SetState(name string) error {
	idx := m.stateIndex(name)
	if idx < 0 {
		return fmt.Errorf("set state %q: %w", name, ErrUnknownState)
	}
	m.current = idx
	m.entered = false
	m.stopped = false
	m.logger.Debug("state set", zap.String("state", name))
	return nil
}

// Run performs one tick. The first tick after SetState marks the machine
// running and enters the current state through its OnEnter hook; that tick
// does nothing else. Every later tick runs the current state's OnUpdate, then
// evaluates its outgoing transitions in registration order. The first
// transition whose predicate group holds fires: the old state's OnExit runs,
// the machine switches, and the new state's OnEnter runs. At most one
// transition fires per tick, and the state entered by a firing tick is not
// updated until the next tick.
//
// Run fails with ErrNotInitialized if no state has been set. After Stop, Run
// is a no-op (no hooks, state unchanged) until SetState re-arms the machine.
func (m *Machine) Run() error {
	if m.current < 0 {
		return fmt.Errorf("run: %w", ErrNotInitialized)
	}
	if m.stopped {
		return nil
	}
	m.running = true

	// Entry consumes the whole tick: updates and transition checks for a
	// freshly set state begin on the following tick.
	if !m.entered {
		m.invoke(m.states[m.current].OnEnter)
		m.entered = true
		return nil
	}
	m.invoke(m.states[m.current].OnUpdate)

	for i := range m.transitions {
		t := &m.transitions[i]
		if t.from != m.current {
			continue
		}
		if !m.satisfied(t.predicates) {
			continue
		}
		from := m.states[m.current].Name
		m.invoke(m.states[t.from].OnExit)
		m.current = t.to
		m.invoke(m.states[t.to].OnEnter)
		m.logger.Debug("transition fired",
			zap.String("from", from),
			zap.String("to", m.states[t.to].Name))
		break
	}
	return nil
}

// Stop halts the machine. Idempotent. Subsequent Run calls invoke no hooks
// and leave the current state unchanged until SetState re-arms the machine,
// after which the next tick re-enters the set state through its OnEnter hook.
func (m *Machine) Stop() {
	m.running = false
	m.stopped = true
}

// Context returns the borrowed caller context passed to New.
func (m *Machine) Context() any { return m.context }

// StateCount returns the number of registered states.
func (m *Machine) StateCount() int { return len(m.states) }

// TransitionCount returns the number of registered transitions.
func (m *Machine) TransitionCount() int { return len(m.transitions) }

// CurrentState returns the name of the active state, or "" before SetState.
func (m *Machine) CurrentState() string {
	if m.current < 0 {
		return ""
	}
	return m.states[m.current].Name
}

// IsRunning reports whether the machine has ticked since it was last set up
// and has not been stopped.
func (m *Machine) IsRunning() bool { return m.running }

//
// Helper Functions (internal API)
//

// stateIndex returns the index of the named state, or -1.
func (m *Machine) stateIndex(name string) int {
	for i := range m.states {
		if m.states[i].Name == name {
			return i
		}
	}
	return -1
}

// addTransition appends an edge, deep-copying the predicate group so the
// machine owns its storage.
func (m *Machine) addTransition(from, to int, predicates PredicateGroup) {
	owned := make(PredicateGroup, len(predicates))
	copy(owned, predicates)
	m.transitions = append(m.transitions, transition{
		from:       from,
		to:         to,
		predicates: owned,
	})
}

func (m *Machine) invoke(h Hook) {
	if h != nil {
		h(m, m.context)
	}
}

// satisfied evaluates a predicate group: AND over all predicates,
// short-circuiting on the first false. Empty groups hold vacuously.
func (m *Machine) satisfied(g PredicateGroup) bool {
	for _, p := range g {
		if !p(m, m.context) {
			return false
		}
	}
	return true
}
