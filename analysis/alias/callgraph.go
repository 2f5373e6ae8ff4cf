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

package alias

import (
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/internal/funcutil"
	"github.com/awslabs/ar-memcheck/internal/graphutil"
	"golang.org/x/exp/slices"
)

// CalleeKind is the way a call is handled by the analysis
type CalleeKind int

const (
	// Resolved calls have at least one callee with a body in the program
	Resolved CalleeKind = iota
	// Passthrough calls have no body and match a passthrough pattern: they are neither expanded nor linked
	Passthrough
	// Ignored calls cannot be resolved and match an ignore pattern: nothing is linked
	Ignored
	// External calls cannot be resolved: their arguments are linked to their destination
	External
)

func (k CalleeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Passthrough:
		return "passthrough"
	case Ignored:
		return "ignored"
	case External:
		return "external"
	}
	return "?"
}

// ResolveCallees returns the functions with a body that the call may invoke, and the kind of the call.
// The static callee is used when it has a body; the dynamic dispatch candidates listed by the front end are added
// to it (class hierarchy analysis style). Passthrough patterns only apply to callees without a body: such a call
// is neither expanded nor linked, and its candidates are skipped.
func ResolveCallees(prog *ir.Program, cfg *config.Config, call *ir.Call) ([]ir.FunctionID, CalleeKind) {
	var targets []ir.FunctionID
	add := func(name string) {
		if id, ok := prog.Lookup(name); ok && !slices.Contains(targets, id) {
			targets = append(targets, id)
		}
	}
	add(call.Callee)
	if len(targets) == 0 && call.Callee != "" && cfg.IsPassthroughCallee(call.Callee) {
		return nil, Passthrough
	}
	for _, candidate := range call.Candidates {
		if !cfg.IsPassthroughCallee(candidate) {
			add(candidate)
		}
	}
	if len(targets) > 0 {
		return targets, Resolved
	}
	if cfg.IsIgnoredCallee(call.Callee) {
		return nil, Ignored
	}
	return nil, External
}

// CallGraph records the resolved callees of each call block.
type CallGraph struct {
	sites map[ir.FunctionID]map[ir.BlockID][]ir.FunctionID
}

// NewCallGraph returns an empty call graph
func NewCallGraph() *CallGraph {
	return &CallGraph{sites: map[ir.FunctionID]map[ir.BlockID][]ir.FunctionID{}}
}

// BuildStaticCallGraph resolves the calls of every function with a body, in every context.
func BuildStaticCallGraph(prog *ir.Program, cfg *config.Config) (*CallGraph, error) {
	cg := NewCallGraph()
	for _, id := range prog.Defined() {
		f, err := prog.Function(id)
		if err != nil {
			return nil, err
		}
		cg.sites[id] = map[ir.BlockID][]ir.FunctionID{}
		for _, b := range f.Blocks {
			if b.Call == nil {
				continue
			}
			targets, _ := ResolveCallees(prog, cfg, b.Call)
			for _, t := range targets {
				cg.AddCall(id, b.ID, t)
			}
		}
	}
	return cg, nil
}

// AddCall records that the call in the block of caller may invoke callee
func (c *CallGraph) AddCall(caller ir.FunctionID, block ir.BlockID, callee ir.FunctionID) {
	blocks := c.sites[caller]
	if blocks == nil {
		blocks = map[ir.BlockID][]ir.FunctionID{}
		c.sites[caller] = blocks
	}
	if !slices.Contains(blocks[block], callee) {
		blocks[block] = append(blocks[block], callee)
	}
}

// Callees returns the callees of the call in the block
func (c *CallGraph) Callees(caller ir.FunctionID, block ir.BlockID) []ir.FunctionID {
	return c.sites[caller][block]
}

// CallBlocks returns the blocks of caller that contain a resolved call, in increasing order
func (c *CallGraph) CallBlocks(caller ir.FunctionID) []ir.BlockID {
	var blocks []ir.BlockID
	for b, callees := range c.sites[caller] {
		if len(callees) > 0 {
			blocks = append(blocks, b)
		}
	}
	slices.Sort(blocks)
	return blocks
}

// Functions returns all the functions that appear in the call graph, either as caller or callee, in increasing order
func (c *CallGraph) Functions() []ir.FunctionID {
	seen := map[ir.FunctionID]bool{}
	for caller, blocks := range c.sites {
		seen[caller] = true
		for _, callees := range blocks {
			for _, callee := range callees {
				seen[callee] = true
			}
		}
	}
	return funcutil.SetToOrderedSlice(seen)
}

// Graph returns the function-level call graph as a CGraph of the given order (the number of functions of the
// program). Node ids are function ids.
func (c *CallGraph) Graph(order int, name func(ir.FunctionID) string) graphutil.CGraph {
	var keys []int64
	edges := map[int64]map[int64]bool{}
	labels := map[int64]string{}
	for _, f := range c.Functions() {
		keys = append(keys, int64(f))
		labels[int64(f)] = name(f)
		edges[int64(f)] = map[int64]bool{}
		for _, callees := range c.sites[f] {
			for _, callee := range callees {
				edges[int64(f)][int64(callee)] = true
			}
		}
	}
	return graphutil.NewCGraph(order, keys, edges, labels)
}
