// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pfg

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/internal/formatutil"
	"github.com/awslabs/ar-memcheck/internal/funcutil"
)

// NameFunc returns the printable name of a function
type NameFunc func(ir.FunctionID) string

func (g *Graph) nodeLabel(n *ProjectionNode, name NameFunc) string {
	s := fmt.Sprintf("%s %s", name(n.Call.Function), n.Path)
	if !n.Call.Context.IsEntry() {
		s += fmt.Sprintf(" @%s:bb%d", name(n.Call.Context.Caller), n.Call.Context.Block)
	}
	if n.Name != "" {
		s += " (" + n.Name + ")"
	}
	return s
}

func (g *Graph) objectList(n *ProjectionNode) string {
	return strings.Join(funcutil.Map(n.pts.AppendTo(nil), func(x int) string { return fmt.Sprintf("n%d", x) }),
		", ")
}

// Debug writes a textual description of every node of the graph to w: its points-to set, its drop sites and its
// outgoing edges.
func (g *Graph) Debug(w io.Writer, name NameFunc) {
	for _, n := range g.nodes {
		fmt.Fprintf(w, "n%d: %s\n", n.ID, g.nodeLabel(n, name))
		fmt.Fprintf(w, "\tpts: {%s}\n", g.objectList(n))
		for _, site := range n.DropSites {
			fmt.Fprintf(w, "\tdropped at %s\n", site)
		}
		for _, to := range n.out {
			e := g.edges[edgeKey{n.ID, to}]
			fmt.Fprintf(w, "\t-> n%d", to)
			if e.IsDeref() {
				fmt.Fprintf(w, " [deref %t/%t]", e.FromDeref, e.ToDeref)
			}
			fmt.Fprintf(w, " at %s\n", e.Site)
		}
	}
	if ids := g.MultiDrop(); len(ids) > 0 {
		fmt.Fprintf(w, "multi-drop: %v\n", ids)
	}
}

// Graphviz returns a dot representation of the graph. Nodes are grouped by contextual call, objects are drawn with
// double borders and deref edges are dashed.
func (g *Graph) Graphviz(label string, name NameFunc) string {
	out := bytes.NewBuffer([]byte{})
	fmt.Fprintf(out, "digraph { // start of digraph\nrankdir = LR;\n")
	fmt.Fprintf(out, "graph[label=\"%s\"];\n", formatutil.DotEscape(label))

	var calls []ContextualCall
	seen := map[ContextualCall]bool{}
	for _, n := range g.nodes {
		if !seen[n.Call] {
			seen[n.Call] = true
			calls = append(calls, n.Call)
		}
	}
	for i, call := range calls {
		fmt.Fprintf(out, "subgraph cluster_%d {\nlabel=\"%s\";\n", i, formatutil.DotEscape(call.String()))
		for _, id := range g.NodesOf(call) {
			n := g.nodes[id]
			extra := "shape=rect"
			if len(n.DropSites) > 0 {
				extra += " peripheries=2"
			}
			if g.multiDrop.Has(int(n.ID)) {
				extra += " color=red"
			}
			text := formatutil.DotEscape(g.nodeLabel(n, name))
			if !n.pts.IsEmpty() {
				text += "\\n{" + g.objectList(n) + "}"
			}
			fmt.Fprintf(out, "%d [label=\"n%d: %s\" %s];\n", n.ID, n.ID, text, extra)
		}
		fmt.Fprintf(out, "} // subgraph\n")
	}
	for _, e := range g.Edges() {
		extra := ""
		if e.IsDeref() {
			extra = " [style=dashed]"
		}
		fmt.Fprintf(out, "%d -> %d%s;\n", e.From, e.To, extra)
	}
	fmt.Fprintf(out, "} // end of digraph\n")
	return out.String()
}
