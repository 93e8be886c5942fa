package fsm

import (
	"bytes"
	"fmt"
)

// ExportDOT renders the machine's state graph as Graphviz DOT source, for
// debugging and documentation. The active state, if one is set, is drawn
// filled. Guarded edges are labeled with their predicate count.
func (m *Machine) ExportDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph FSM {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	buf.WriteString("  edge [fontsize=9];\n")

	for i := range m.states {
		name := m.states[i].Name
		if i == m.current {
			fmt.Fprintf(&buf, "  %q [style=\"rounded,filled\", fillcolor=lightblue];\n", name)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", name)
		}
	}

	for i := range m.transitions {
		t := &m.transitions[i]
		label := ""
		if n := len(t.predicates); n == 1 {
			label = "1 predicate"
		} else if n > 1 {
			label = fmt.Sprintf("%d predicates", n)
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", m.states[t.from].Name, m.states[t.to].Name, label)
	}

	buf.WriteString("}\n")
	return buf.String()
}
