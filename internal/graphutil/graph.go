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

// Package graphutil contains graph adapters and algorithms used by the analyses, such as strongly connected
// components and elementary cycles.
package graphutil

import (
	"golang.org/x/exp/slices"
)

// CGraph is an abstraction over a call graph to work with existing graph libraries. It implements the methods to
// satisfy graph.Iterator from github.com/yourbasic/graph.
// Node ids are the function ids of the program, so the order of the graph is the number of functions.
type CGraph struct {
	// The order of the graph
	order int

	// Labels maps node ids to a printable name
	Labels map[int64]string

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between x and y
	Edges map[int64]map[int64]bool
}

// NewCGraph returns a graph of the given order with the nodes in keys and the edges provided. Edges whose
// endpoints are not in keys are ignored.
func NewCGraph(order int, keys []int64, edges map[int64]map[int64]bool, labels map[int64]string) CGraph {
	sortedKeys := slices.Clone(keys)
	slices.Sort(sortedKeys)
	included := make(map[int64]bool, len(keys))
	for _, k := range keys {
		included[k] = true
	}
	adj := make(map[int64]map[int64]bool, len(keys))
	for _, k := range sortedKeys {
		adj[k] = map[int64]bool{}
		for w, b := range edges[k] {
			if b && included[w] {
				adj[k][w] = true
			}
		}
	}
	if labels == nil {
		labels = map[int64]string{}
	}
	return CGraph{
		order:  order,
		Labels: labels,
		Keys:   sortedKeys,
		Edges:  adj,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order and labels are the same as in origin, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	return NewCGraph(original.order, include, original.Edges, original.Labels)
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for _, w := range c.Successors(int64(v)) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Successors returns the successors of v in increasing order
func (c CGraph) Successors(v int64) []int64 {
	succs := make([]int64, 0, len(c.Edges[v]))
	for w := range c.Edges[v] {
		succs = append(succs, w)
	}
	slices.Sort(succs)
	return succs
}

// InDegrees returns the number of incoming edges of each node, ignoring self loops.
func (c CGraph) InDegrees() map[int64]int {
	deg := make(map[int64]int, len(c.Keys))
	for _, k := range c.Keys {
		deg[k] += 0
		for w := range c.Edges[k] {
			if w != k {
				deg[w]++
			}
		}
	}
	return deg
}

// Label returns the label of v, or an empty string
func (c CGraph) Label(v int64) string {
	return c.Labels[v]
}
