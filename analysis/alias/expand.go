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
)

// expand discovers the contextual calls reachable from the entry, breadth first, and adds the drop sites and flow
// edges of each of them to the graph. Objects are scheduled on the worklist but nothing is propagated yet.
func (s *State) expand(entry ir.FunctionID) {
	s.reach(pfg.ContextualCall{Function: entry, Context: pfg.EntryContext})
	for len(s.queue) > 0 {
		cc := s.queue[0]
		s.queue = s.queue[1:]
		s.addFunctionEdges(cc)
	}
}

// reach marks the contextual call reachable and schedules its expansion if it was not already reached
func (s *State) reach(cc pfg.ContextualCall) {
	if s.reached[cc] {
		return
	}
	s.reached[cc] = true
	s.Reachable = append(s.Reachable, cc)
	s.queue = append(s.queue, cc)
}

func (s *State) addFunctionEdges(cc pfg.ContextualCall) {
	f := s.function(cc.Function)
	for _, b := range f.Blocks {
		for _, a := range b.Assignments {
			s.addAssignment(cc, f, b, a)
		}
		if b.Drop != nil {
			s.addDrop(cc, f, b)
		}
		if b.Call != nil {
			s.addCall(cc, f, b)
		}
	}
}

func (s *State) addAssignment(cc pfg.ContextualCall, f *ir.Function, b *ir.BasicBlock, a ir.Assignment) {
	if !a.CreatesAlias() {
		s.Logger.Topicf(config.TopicAssign, "%s bb%d: skip %s = %s %s (not a pointer)\n",
			f.Name, b.ID, a.Left, a.Kind, a.Right)
		return
	}
	right := s.node(cc, f, a.Right)
	left := s.node(cc, f, a.Left)
	if s.Graph.AddEdge(right, left, pfg.Site{Function: cc.Function, Block: b.ID, Loc: a.Loc}, s.Worklist) {
		s.Logger.Topicf(config.TopicAssign, "%s bb%d: %s = %s %s in %s\n", f.Name, b.ID, a.Left, a.Kind, a.Right,
			cc.Context)
	}
}

// addDrop records the drop site on the dropped cell. The cell is the abstract object destroyed by the drop, and
// the first drop site seeds the object in the cell's own points-to set.
func (s *State) addDrop(cc pfg.ContextualCall, f *ir.Function, b *ir.BasicBlock) {
	n := s.node(cc, f, b.Drop.Place)
	if s.Graph.AddDropSite(n, pfg.Site{Function: cc.Function, Block: b.ID, Loc: b.Drop.Loc}) {
		s.Worklist.PushObject(n, n)
	}
}

func (s *State) addCall(cc pfg.ContextualCall, f *ir.Function, b *ir.BasicBlock) {
	call := b.Call
	site := pfg.Site{Function: cc.Function, Block: b.ID, Loc: call.Loc}
	targets, kind := ResolveCallees(s.Program, s.Config, call)
	s.Logger.Topicf(config.TopicCallgraph, "%s bb%d: call %s is %s %v\n", f.Name, b.ID, call.Callee, kind, targets)

	switch kind {
	case Resolved:
		ctx := pfg.CallContext{Caller: cc.Function, Block: b.ID}
		for _, t := range targets {
			callee := pfg.ContextualCall{Function: t, Context: ctx}
			s.CallGraph.AddCall(cc.Function, b.ID, t)
			s.reach(callee)
			s.bindCall(cc, f, callee, call, site)
		}
	case External:
		if !s.hasValueDestination(f, call) {
			return
		}
		dest := s.node(cc, f, *call.Destination)
		for _, arg := range call.Args {
			if arg.CreatesAlias() {
				s.Graph.AddEdge(s.node(cc, f, arg.Place), dest, site, s.Worklist)
			}
		}
	}
}

// bindCall adds the edges from the arguments of the call to the parameters of the callee, and from the return
// slot of the callee to the destination of the call.
func (s *State) bindCall(cc pfg.ContextualCall, f *ir.Function, callee pfg.ContextualCall, call *ir.Call,
	site pfg.Site) {
	g := s.function(callee.Function)
	for i, arg := range call.Args {
		if !arg.CreatesAlias() {
			continue
		}
		param := ir.Local(i + 1)
		if _, ok := g.LocalDecl(param); !ok {
			s.Logger.Debugf("%s has no parameter %d for argument %s of call in %s\n", g.Name, param, arg, f.Name)
			continue
		}
		s.Graph.AddArgumentEdge(s.node(cc, f, arg.Place), s.node(callee, g, ir.LocalPath(param)), site, s.Worklist)
	}
	if s.hasValueDestination(f, call) {
		ret := s.node(callee, g, ir.LocalPath(ir.ReturnLocal))
		s.Graph.AddEdge(ret, s.node(cc, f, *call.Destination), site, s.Worklist)
	}
}

// hasValueDestination returns true when the call writes a non-unit value in its destination. The destination
// local must be declared.
func (s *State) hasValueDestination(f *ir.Function, call *ir.Call) bool {
	if call.Destination == nil {
		return false
	}
	decl, ok := f.LocalDecl(call.Destination.Local)
	if !ok {
		invariant("destination %s of call to %s in %s is not declared", call.Destination, call.Callee, f.Name)
	}
	if call.Destination.Depth() > 0 {
		return true
	}
	return !decl.Type.IsUnit()
}
