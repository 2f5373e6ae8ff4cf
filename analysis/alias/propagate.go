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
	"github.com/awslabs/ar-memcheck/analysis/pfg"
	"golang.org/x/tools/container/intsets"
)

// solve pops the worklist until it is empty and returns the number of items processed.
// The points-to sets only grow and the number of nodes is bounded by the path depth, so this terminates.
func (s *State) solve() int {
	steps := 0
	for {
		item, ok := s.Worklist.Pop()
		if !ok {
			return steps
		}
		s.propagate(item.Node, item.Set)
		steps++
	}
}

// propagate adds the incoming objects to the node and forwards the new ones to:
//   - the successors of the node,
//   - the deeper paths of the same local (sub-level),
//   - for each strict prefix of the node's path, the same suffix below each successor of the prefix (same-level).
func (s *State) propagate(id pfg.NodeID, incoming *intsets.Sparse) {
	delta := s.Graph.Union(id, incoming)
	if delta.IsEmpty() {
		return
	}
	if s.onPropagate != nil {
		s.onPropagate(id, delta)
	}
	n := s.Graph.Node(id)
	if len(n.DropSites) > 0 && n.PointsTo().Len() > 1 {
		s.Graph.MarkMultiDrop(id)
	}
	s.Logger.Topicf(config.TopicWorklist, "%s += %s\n", n, delta)

	for _, succ := range n.Successors() {
		s.Worklist.Push(succ, delta)
	}

	// the slot grows when virtual nodes are created below
	slot := append([]pfg.NodeID(nil), s.Graph.SlotNodes(n.Call, n.Path.Local)...)
	for _, other := range slot {
		o := s.Graph.Node(other)
		if ir.IsStrictPrefix(n.Path, o.Path) {
			s.Worklist.Push(other, delta)
		}
	}
	for _, other := range slot {
		prefix := s.Graph.Node(other)
		if !ir.IsStrictPrefix(prefix.Path, n.Path) {
			continue
		}
		suffix := n.Path.Suffix(prefix.Path)
		for _, succ := range append([]pfg.NodeID(nil), prefix.Successors()...) {
			target := s.Graph.Node(succ)
			path := target.Path.Append(suffix...)
			if path.Depth() > s.maxDepth {
				s.Logger.Tracef("%s: path %s exceeds the maximum depth\n", target.Call, path)
				continue
			}
			s.Worklist.Push(s.virtualNode(target.Call, path), delta)
		}
	}
}

// virtualNode returns the node of the path, creating it if necessary. A new node starts with the objects of its
// strict prefixes, as if it had existed when they were propagated.
func (s *State) virtualNode(cc pfg.ContextualCall, path ir.AccessPath) pfg.NodeID {
	id, created := s.Graph.GetOrCreate(cc, path, s.function(cc.Function).VarName(path))
	if !created {
		return id
	}
	for _, other := range s.Graph.SlotNodes(cc, path.Local) {
		o := s.Graph.Node(other)
		if other != id && ir.IsStrictPrefix(o.Path, path) && !o.PointsTo().IsEmpty() {
			s.Worklist.Push(id, o.PointsTo())
		}
	}
	return id
}
