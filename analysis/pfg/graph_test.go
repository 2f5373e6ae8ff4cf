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
	"strings"
	"testing"

	"github.com/awslabs/ar-memcheck/analysis/ir"
)

var mainCall = ContextualCall{Function: 0, Context: EntryContext}

func deref(l ir.Local) ir.AccessPath {
	return ir.LocalPath(l).Append(ir.Projection{Kind: ir.Deref})
}

func TestGetOrCreate(t *testing.T) {
	g := NewGraph()
	a, created := g.GetOrCreate(mainCall, ir.LocalPath(1), "x")
	if !created {
		t.Errorf("first call should create the node")
	}
	b, created := g.GetOrCreate(mainCall, ir.LocalPath(1), "x")
	if created || a != b {
		t.Errorf("second call should return the same node")
	}
	other := ContextualCall{Function: 0, Context: CallContext{Caller: 2, Block: 1}}
	c, _ := g.GetOrCreate(other, ir.LocalPath(1), "x")
	if c == a {
		t.Errorf("nodes in different contexts should be different")
	}
	d, _ := g.GetOrCreate(mainCall, deref(1), "x")
	if slot := g.SlotNodes(mainCall, 1); len(slot) != 2 || slot[0] != a || slot[1] != d {
		t.Errorf("unexpected slot nodes %v", slot)
	}
	if g.NumNodes() != 3 || g.Node(NodeID(3)) != nil {
		t.Errorf("unexpected number of nodes")
	}
	if id, ok := g.Lookup(mainCall, deref(1)); !ok || id != d {
		t.Errorf("lookup should find the deref node")
	}
}

func TestAddEdgeSchedulesExistingObjects(t *testing.T) {
	g := NewGraph()
	wl := NewWorklist()
	x, _ := g.GetOrCreate(mainCall, ir.LocalPath(1), "x")
	y, _ := g.GetOrCreate(mainCall, ir.LocalPath(2), "y")
	z, _ := g.GetOrCreate(mainCall, ir.LocalPath(3), "z")
	if !g.AddEdge(x, y, Site{}, wl) || wl.Len() != 0 {
		t.Fatalf("adding an edge from an empty node should not schedule anything")
	}
	wl.PushObject(x, x)
	item, _ := wl.Pop()
	g.Union(item.Node, item.Set)
	if !g.AddEdge(x, z, Site{}, wl) {
		t.Fatalf("edge x -> z should be new")
	}
	if wl.Len() != 1 {
		t.Fatalf("the objects of x should be scheduled on z")
	}
	item, _ = wl.Pop()
	if item.Node != z || !item.Set.Has(int(x)) {
		t.Errorf("unexpected work item %v", item)
	}
	if g.AddEdge(x, z, Site{}, wl) || wl.Len() != 0 {
		t.Errorf("adding an existing edge should do nothing")
	}
	if !g.HasEdge(x, z) || g.HasEdge(z, x) {
		t.Errorf("unexpected HasEdge result")
	}
	if succ := g.Node(x).Successors(); len(succ) != 2 {
		t.Errorf("expected two successors, got %v", succ)
	}
}

func TestDerefEdges(t *testing.T) {
	g := NewGraph()
	x, _ := g.GetOrCreate(mainCall, ir.LocalPath(1), "")
	px, _ := g.GetOrCreate(mainCall, deref(2), "")
	y, _ := g.GetOrCreate(mainCall, ir.LocalPath(3), "")
	callee := ContextualCall{Function: 1, Context: CallContext{Caller: 0, Block: 0}}
	param, _ := g.GetOrCreate(callee, ir.LocalPath(1), "")

	g.AddEdge(x, y, Site{}, nil)
	g.AddEdge(px, y, Site{Block: 3}, nil)
	g.AddArgumentEdge(y, param, Site{Block: 4}, nil)

	edges := g.DerefEdges()
	if len(edges) != 2 {
		t.Fatalf("expected 2 deref edges, got %d", len(edges))
	}
	if e := edges[0]; e.From != px || !e.FromDeref || e.ToDeref || e.Site.Block != 3 {
		t.Errorf("unexpected flags on %v", e)
	}
	if e := edges[1]; !e.FromDeref || !e.ToDeref {
		t.Errorf("argument edges should be deref on both sides")
	}
	if g.Edge(x, y).IsDeref() {
		t.Errorf("edge between plain locals should not be deref")
	}
	if len(g.Edges()) != 3 {
		t.Errorf("expected 3 edges")
	}
}

func TestUnionReturnsDelta(t *testing.T) {
	g := NewGraph()
	wl := NewWorklist()
	x, _ := g.GetOrCreate(mainCall, ir.LocalPath(1), "")
	wl.PushObject(x, 4)
	wl.PushObject(x, 4)
	if wl.Len() != 2 {
		t.Fatalf("pushes on a queued node are kept as separate items, got %d items", wl.Len())
	}
	first, _ := wl.Pop()
	if delta := g.Union(x, first.Set); delta.Len() != 1 {
		t.Errorf("first union should add one object")
	}
	second, _ := wl.Pop()
	if delta := g.Union(x, second.Set); !delta.IsEmpty() {
		t.Errorf("second union should not add anything")
	}
	if _, ok := wl.Pop(); ok {
		t.Errorf("worklist should be empty")
	}
}

func TestWorklistIsFIFO(t *testing.T) {
	wl := NewWorklist()
	for i := 0; i < 3; i++ {
		wl.PushObject(NodeID(i), NodeID(i))
	}
	wl.Reorder(func(items []WorkItem) { items[0], items[2] = items[2], items[0] })
	for _, expected := range []NodeID{2, 1, 0} {
		item, ok := wl.Pop()
		if !ok || item.Node != expected {
			t.Errorf("expected node %d, got %v", expected, item.Node)
		}
	}
}

func TestPushCopiesSet(t *testing.T) {
	g := NewGraph()
	wl := NewWorklist()
	x, _ := g.GetOrCreate(mainCall, ir.LocalPath(1), "")
	wl.PushObject(x, x)
	item, _ := wl.Pop()
	g.Union(x, item.Set)
	wl.Push(x, g.PointsTo(x))
	pushed, _ := wl.Pop()
	pushed.Set.Insert(42)
	if g.PointsTo(x).Has(42) {
		t.Errorf("pushed sets should be copies")
	}
}

func TestDumps(t *testing.T) {
	g := NewGraph()
	x, _ := g.GetOrCreate(mainCall, ir.LocalPath(1), "buf")
	y, _ := g.GetOrCreate(mainCall, deref(2), "")
	g.AddDropSite(x, Site{Function: 0, Block: 1})
	g.AddEdge(x, y, Site{}, nil)
	wl := NewWorklist()
	wl.PushObject(x, x)
	item, _ := wl.Pop()
	g.Union(x, item.Set)
	g.MarkMultiDrop(x)

	name := func(ir.FunctionID) string { return "demo::main" }
	dot := g.Graphviz("demo \"main\"", name)
	for _, s := range []string{"digraph", "peripheries=2", "0 -> 1 [style=dashed]", "demo \\\"main\\\"", "{n0}"} {
		if !strings.Contains(dot, s) {
			t.Errorf("expected %q in\n%s", s, dot)
		}
	}
	var b strings.Builder
	g.Debug(&b, name)
	for _, s := range []string{"n0: demo::main _1 (buf)", "pts: {n0}", "dropped at f0:bb1", "multi-drop: [0]"} {
		if !strings.Contains(b.String(), s) {
			t.Errorf("expected %q in\n%s", s, b.String())
		}
	}
}
