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
	"fmt"

	"github.com/awslabs/ar-memcheck/analysis/ir"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
)

// CallContext is the call site through which a function was reached. It is replaced at every call: a callee's
// context is always its immediate call site, which bounds the number of contexts of each function.
type CallContext struct {
	Caller ir.FunctionID
	Block  ir.BlockID
}

// EntryContext is the context of the entry functions
var EntryContext = CallContext{Caller: -1, Block: -1}

// IsEntry returns true for the entry context
func (c CallContext) IsEntry() bool {
	return c == EntryContext
}

func (c CallContext) String() string {
	if c.IsEntry() {
		return "entry"
	}
	return ir.GlobalBlock{Function: c.Caller, Block: c.Block}.String()
}

// ContextualCall is a function analyzed in a calling context
type ContextualCall struct {
	Function ir.FunctionID
	Context  CallContext
}

func (c ContextualCall) String() string {
	return fmt.Sprintf("f%d@%s", c.Function, c.Context)
}

// NodeID identifies a projection node in the graph. The id of the node of a dropped place is also the id of the
// abstract object that the drop destroys.
type NodeID int

// Site is a program point where an effect happens
type Site struct {
	Function ir.FunctionID
	Block    ir.BlockID
	Loc      ir.Location
}

// GlobalBlock returns the block of the site
func (s Site) GlobalBlock() ir.GlobalBlock {
	return ir.GlobalBlock{Function: s.Function, Block: s.Block}
}

func (s Site) String() string {
	return fmt.Sprintf("%s (%s)", s.GlobalBlock(), s.Loc)
}

// ProjectionNode is a cell of the graph: an access path in a contextual call.
type ProjectionNode struct {
	ID   NodeID
	Call ContextualCall
	Path ir.AccessPath
	// Name is the source name of the local of the path, if known
	Name string
	// DropSites are the sites where the place is destroyed. A node with drop sites is an abstract object.
	DropSites []Site

	pts intsets.Sparse
	out []NodeID
}

// PointsTo returns the points-to set of the node. The set must not be modified by the caller.
func (n *ProjectionNode) PointsTo() *intsets.Sparse {
	return &n.pts
}

// Successors returns the destinations of the flow edges leaving the node, in insertion order
func (n *ProjectionNode) Successors() []NodeID {
	return n.out
}

func (n *ProjectionNode) String() string {
	return fmt.Sprintf("n%d[%s %s]", n.ID, n.Call, n.Path)
}

// FlowEdge is a flow edge of the graph: the points-to set of From flows into To.
// FromDeref and ToDeref record whether the corresponding endpoint is accessed through a pointer; edges with a
// deref flag are the candidate uses for the use-after-free check.
type FlowEdge struct {
	From      NodeID
	To        NodeID
	Site      Site
	FromDeref bool
	ToDeref   bool
}

// IsDeref returns true when one of the endpoints is accessed through a pointer
func (e *FlowEdge) IsDeref() bool {
	return e.FromDeref || e.ToDeref
}

type nodeKey struct {
	call ContextualCall
	path string
}

type slotKey struct {
	call  ContextualCall
	local ir.Local
}

type edgeKey struct {
	from NodeID
	to   NodeID
}

// Graph is the pointer flow graph. Nodes and edges are only ever added, and points-to sets only grow.
type Graph struct {
	nodes      []*ProjectionNode
	index      map[nodeKey]NodeID
	slots      map[slotKey][]NodeID
	edges      map[edgeKey]*FlowEdge
	derefEdges []*FlowEdge
	multiDrop  intsets.Sparse
}

// NewGraph returns an empty graph
func NewGraph() *Graph {
	return &Graph{
		index: map[nodeKey]NodeID{},
		slots: map[slotKey][]NodeID{},
		edges: map[edgeKey]*FlowEdge{},
	}
}

// NumNodes returns the number of nodes in the graph
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Node returns the node with the given id, or nil if no such node has been created
func (g *Graph) Node(id NodeID) *ProjectionNode {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Lookup returns the node of the path in the contextual call, if it exists
func (g *Graph) Lookup(call ContextualCall, path ir.AccessPath) (NodeID, bool) {
	id, ok := g.index[nodeKey{call, path.Key()}]
	return id, ok
}

// GetOrCreate returns the node of the path in the contextual call, creating it if necessary. The boolean is true
// when the node has been created by this call.
func (g *Graph) GetOrCreate(call ContextualCall, path ir.AccessPath, name string) (NodeID, bool) {
	key := nodeKey{call, path.Key()}
	if id, ok := g.index[key]; ok {
		return id, false
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &ProjectionNode{
		ID:   id,
		Call: call,
		Path: path.Append(),
		Name: name,
	})
	g.index[key] = id
	sk := slotKey{call, path.Local}
	g.slots[sk] = append(g.slots[sk], id)
	return id, true
}

// SlotNodes returns the nodes of all the paths of the local in the contextual call, in creation order. The slice
// must not be modified by the caller, and it may grow when nodes are created.
func (g *Graph) SlotNodes(call ContextualCall, local ir.Local) []NodeID {
	return g.slots[slotKey{call, local}]
}

// AddDropSite adds a drop site to the node and returns true if this is the first drop site of the node.
func (g *Graph) AddDropSite(id NodeID, site Site) bool {
	n := g.nodes[id]
	n.DropSites = append(n.DropSites, site)
	return len(n.DropSites) == 1
}

// AddEdge adds a flow edge from -> to created at site. The deref flags are computed from the paths of the nodes.
// Adding an edge that already exists does nothing and returns false. When the edge is new and the source already
// points to some objects, these objects are scheduled on the destination.
func (g *Graph) AddEdge(from, to NodeID, site Site, wl *Worklist) bool {
	return g.addEdge(from, to, site, g.nodes[from].Path.HasDeref(), g.nodes[to].Path.HasDeref(), wl)
}

// AddArgumentEdge is like AddEdge, but both endpoints are marked as dereferenced: passing an object to a function
// is a use of that object.
func (g *Graph) AddArgumentEdge(from, to NodeID, site Site, wl *Worklist) bool {
	return g.addEdge(from, to, site, true, true, wl)
}

func (g *Graph) addEdge(from, to NodeID, site Site, fromDeref, toDeref bool, wl *Worklist) bool {
	key := edgeKey{from, to}
	if _, ok := g.edges[key]; ok {
		return false
	}
	e := &FlowEdge{From: from, To: to, Site: site, FromDeref: fromDeref, ToDeref: toDeref}
	g.edges[key] = e
	g.nodes[from].out = append(g.nodes[from].out, to)
	if e.IsDeref() {
		g.derefEdges = append(g.derefEdges, e)
	}
	if src := g.nodes[from]; !src.pts.IsEmpty() && wl != nil {
		wl.Push(to, &src.pts)
	}
	return true
}

// HasEdge returns true if there is an edge from -> to
func (g *Graph) HasEdge(from, to NodeID) bool {
	_, ok := g.edges[edgeKey{from, to}]
	return ok
}

// Edge returns the edge from -> to, or nil
func (g *Graph) Edge(from, to NodeID) *FlowEdge {
	return g.edges[edgeKey{from, to}]
}

// Edges returns all the edges, ordered by source and destination
func (g *Graph) Edges() []*FlowEdge {
	edges := make([]*FlowEdge, 0, len(g.edges))
	for _, n := range g.nodes {
		for _, to := range n.out {
			edges = append(edges, g.edges[edgeKey{n.ID, to}])
		}
	}
	return edges
}

// DerefEdges returns the edges with a deref flag, in insertion order
func (g *Graph) DerefEdges() []*FlowEdge {
	return g.derefEdges
}

// PointsTo returns the points-to set of the node
func (g *Graph) PointsTo(id NodeID) *intsets.Sparse {
	return &g.nodes[id].pts
}

// Union adds the objects of set to the points-to set of the node, and returns the objects that were not already in
// it.
func (g *Graph) Union(id NodeID, set *intsets.Sparse) *intsets.Sparse {
	n := g.nodes[id]
	delta := &intsets.Sparse{}
	delta.Difference(set, &n.pts)
	if !delta.IsEmpty() {
		n.pts.UnionWith(delta)
	}
	return delta
}

// MarkMultiDrop records that the node is destroyed and may hold several objects
func (g *Graph) MarkMultiDrop(id NodeID) {
	g.multiDrop.Insert(int(id))
}

// MultiDrop returns the nodes recorded by MarkMultiDrop, in increasing order
func (g *Graph) MultiDrop() []NodeID {
	var ids []NodeID
	for _, x := range g.multiDrop.AppendTo(nil) {
		ids = append(ids, NodeID(x))
	}
	return ids
}

// Objects returns the ids of the nodes that have drop sites, in increasing order
func (g *Graph) Objects() []NodeID {
	var ids []NodeID
	for _, n := range g.nodes {
		if len(n.DropSites) > 0 {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// NodesOf returns the nodes of the contextual call, sorted by path
func (g *Graph) NodesOf(call ContextualCall) []NodeID {
	var ids []NodeID
	for _, n := range g.nodes {
		if n.Call == call {
			ids = append(ids, n.ID)
		}
	}
	slices.SortFunc(ids, func(a, b NodeID) bool { return g.nodes[a].Path.Key() < g.nodes[b].Path.Key() })
	return ids
}
