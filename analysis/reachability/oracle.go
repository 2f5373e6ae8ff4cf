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

// Package reachability answers whether a basic block can be executed after another one, possibly in a different
// function, following the control flow and the resolved calls of the program.
package reachability

import (
	"github.com/awslabs/ar-memcheck/analysis/alias"
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/tools/container/intsets"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Oracle is the interprocedural block reachability oracle of one analysis run. Results are memoized, so an oracle
// must not be reused after the call graph changes.
type Oracle struct {
	prog   *ir.Program
	calls  *alias.CallGraph
	cg     graphutil.CGraph
	logger *config.LogGroup

	// cfgs holds the control flow graph of each function
	cfgs map[ir.FunctionID]*simple.DirectedGraph
	// intra maps a block to the set of blocks of its function that it reaches
	intra map[ir.GlobalBlock]*intsets.Sparse
	// fns maps a function to the set of functions it reaches through calls
	fns map[ir.FunctionID]*intsets.Sparse
}

// NewOracle returns an oracle that follows the calls recorded in calls
func NewOracle(prog *ir.Program, calls *alias.CallGraph, logger *config.LogGroup) *Oracle {
	return &Oracle{
		prog:   prog,
		calls:  calls,
		cg:     calls.Graph(prog.NumFunctions(), prog.Name),
		logger: logger,
		cfgs:   map[ir.FunctionID]*simple.DirectedGraph{},
		intra:  map[ir.GlobalBlock]*intsets.Sparse{},
		fns:    map[ir.FunctionID]*intsets.Sparse{},
	}
}

// CanReach returns true if b can be executed after a. Within a function, this follows the successors of the blocks;
// a block reaches itself. Across functions, a must reach a call in its function whose callee (transitively) reaches
// b from its entry block. Returns from calls are not followed.
func (o *Oracle) CanReach(a, b ir.GlobalBlock) bool {
	res := o.canReach(a, b, map[ir.GlobalBlock]bool{})
	o.logger.Topicf(config.TopicReachable, "%s -> %s: %v\n", a, b, res)
	return res
}

func (o *Oracle) canReach(a, b ir.GlobalBlock, visited map[ir.GlobalBlock]bool) bool {
	if visited[a] {
		return false
	}
	visited[a] = true
	if a.Function == b.Function && o.reachesInFunction(a, b.Block) {
		return true
	}
	if !o.reachesFunction(a.Function, b.Function) {
		return false
	}
	for _, cb := range o.calls.CallBlocks(a.Function) {
		if !o.reachesInFunction(a, cb) {
			continue
		}
		for _, callee := range o.calls.Callees(a.Function, cb) {
			f, err := o.prog.Function(callee)
			if err != nil {
				o.logger.Warnf("callee %s of %s is not analyzable: %v\n", o.prog.Name(callee), a, err)
				continue
			}
			if o.canReach(ir.GlobalBlock{Function: callee, Block: f.Entry}, b, visited) {
				return true
			}
		}
	}
	return false
}

// reachesInFunction returns true if block a reaches block b of the same function
func (o *Oracle) reachesInFunction(a ir.GlobalBlock, b ir.BlockID) bool {
	set, ok := o.intra[a]
	if !ok {
		set = &intsets.Sparse{}
		set.Insert(int(a.Block))
		if g := o.controlFlowGraph(a.Function); g != nil && g.Node(int64(a.Block)) != nil {
			w := traverse.DepthFirst{
				Visit: func(n gonum.Node) { set.Insert(int(n.ID())) },
			}
			w.Walk(g, simple.Node(a.Block), nil)
		}
		o.intra[a] = set
	}
	return set.Has(int(b))
}

func (o *Oracle) controlFlowGraph(id ir.FunctionID) *simple.DirectedGraph {
	if g, ok := o.cfgs[id]; ok {
		return g
	}
	f, err := o.prog.Function(id)
	if err != nil {
		o.cfgs[id] = nil
		return nil
	}
	g := simple.NewDirectedGraph()
	for _, b := range f.Blocks {
		g.AddNode(simple.Node(b.ID))
	}
	for _, b := range f.Blocks {
		for _, s := range b.Successors {
			if s != b.ID {
				g.SetEdge(g.NewEdge(simple.Node(b.ID), simple.Node(s)))
			}
		}
	}
	o.cfgs[id] = g
	return g
}

// reachesFunction returns true if f calls g, directly or transitively. A function reaches itself.
func (o *Oracle) reachesFunction(f, g ir.FunctionID) bool {
	if f == g {
		return true
	}
	set, ok := o.fns[f]
	if !ok {
		set = &intsets.Sparse{}
		if _, inGraph := o.cg.Edges[int64(f)]; inGraph {
			graph.BFS(o.cg, int(f), func(_, w int, _ int64) { set.Insert(w) })
		}
		o.fns[f] = set
	}
	return set.Has(int(g))
}
