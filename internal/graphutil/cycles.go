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

package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// FindAllElementaryCycles finds all elementary cycles in the graph CGraph, including self loops.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
// Each cycle starts and ends with its smallest node id.
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	j := &johnson{}
	for _, k := range cg.Keys {
		if cg.Edges[k][k] {
			j.cycles = append(j.cycles, []int64{k, k})
		}
	}
	for start := 0; start < len(cg.Keys); {
		sub := withoutSelfLoops(Subgraph(cg, cg.Keys[start:]))
		least := int64(-1)
		for _, component := range graph.StrongComponents(sub) {
			if len(component) < 2 {
				continue
			}
			for _, x := range component {
				if least < 0 || int64(x) < least {
					least = int64(x)
				}
			}
		}
		if least < 0 {
			break
		}
		j.reset()
		j.circuit(least, least, sub)
		start = slices.Index(cg.Keys, least) + 1
	}
	return j.cycles
}

func withoutSelfLoops(g CGraph) CGraph {
	for k, succs := range g.Edges {
		delete(succs, k)
	}
	return g
}

type johnson struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (j *johnson) reset() {
	j.blocked = map[int64]bool{}
	j.blist = map[int64]map[int64]bool{}
	j.stack = nil
}

func (j *johnson) unblock(u int64) {
	j.blocked[u] = false
	for w := range j.blist[u] {
		delete(j.blist[u], w)
		if j.blocked[w] {
			j.unblock(w)
		}
	}
}

func (j *johnson) circuit(v int64, start int64, g CGraph) bool {
	found := false
	j.stack = append(j.stack, v)
	j.blocked[v] = true
	for _, w := range g.Successors(v) {
		if w == start {
			cycle := append(slices.Clone(j.stack), w)
			j.cycles = append(j.cycles, cycle)
			found = true
		} else if !j.blocked[w] && j.circuit(w, start, g) {
			found = true
		}
	}

	if found {
		j.unblock(v)
	} else {
		for _, w := range g.Successors(v) {
			if j.blist[w] == nil {
				j.blist[w] = map[int64]bool{}
			}
			j.blist[w][v] = true
		}
	}
	j.stack = j.stack[:len(j.stack)-1]
	return found
}
