// Package vis turns a finished simulation report into things a human can
// look at: a Graphviz rendering of the block DAG, a terminal summary, an
// HTML report, and a small observer server that rebuilds the report when
// poked. None of it feeds back into the simulation.
package vis

import (
	"fmt"
	"strings"

	"github.com/shreekarashastry/collusion/simulation"
)

// Graph returns the Graphviz format encoded visualization of the block DAG.
// One node per block carrying its digest as a tooltip, colluding producers
// filled pink, the canonical path drawn in blue with the tip outlined.
func Graph(report *simulation.Report) string {
	const (
		begin = `digraph chain {
rankdir=LR;
node [shape = rect];`
		end = `}
`
	)

	canonical := make(map[uint64]struct{}, len(report.Canonical))
	for _, id := range report.Canonical {
		canonical[id] = struct{}{}
	}

	var nodes strings.Builder
	var edges strings.Builder
	for _, b := range report.Blocks {
		attrs := []string{fmt.Sprintf("label=\"%d (%d)\"", b.ID, b.Height)}
		if b.ID == 0 {
			attrs = []string{`label="genesis"`}
		}
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", b.Hash))
		if b.Producer.Kind == simulation.ColludingMiner {
			attrs = append(attrs, "color=red", "style=filled", "fillcolor=lightpink")
		}
		if b.ID == report.TipID() {
			attrs = append(attrs, "color=blue", "penwidth=2")
		}
		fmt.Fprintf(&nodes, "block_%d [%s];\n", b.ID, strings.Join(attrs, ", "))

		if b.ParentID < 0 {
			continue
		}
		style := ""
		if _, ok := canonical[b.ID]; ok {
			style = ", color=blue, penwidth=2"
		}
		fmt.Fprintf(&edges, "block_%d -> block_%d [label=\"%s\"%s];\n", b.ParentID, b.ID, b.Producer.Name, style)
	}

	return strings.Join([]string{begin, nodes.String() + edges.String(), end}, "\n")
}
