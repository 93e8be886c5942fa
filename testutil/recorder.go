// Package testutil provides helpers for exercising machines in tests.
package testutil

import (
	fsm "github.com/evan-bertis-sample/go-fsm"
)

// Recorder captures lifecycle hook invocations in order, so tests can assert
// on exact enter/update/exit sequences instead of juggling per-hook counters.
type Recorder struct {
	Calls []string
}

// State returns a state whose three hooks append "enter:name", "update:name"
// and "exit:name" to the recorder.
func (r *Recorder) State(name string) fsm.State {
	return fsm.State{
		Name:     name,
		OnEnter:  r.hook("enter", name),
		OnUpdate: r.hook("update", name),
		OnExit:   r.hook("exit", name),
	}
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Count returns how many recorded calls equal the given entry, e.g.
// "update:Idle".
func (r *Recorder) Count(entry string) int {
	n := 0
	for _, c := range r.Calls {
		if c == entry {
			n++
		}
	}
	return n
}

func (r *Recorder) hook(event, state string) fsm.Hook {
	return func(m *fsm.Machine, ctx any) {
		r.Calls = append(r.Calls, event+":"+state)
	}
}
