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
	"fmt"
	"strings"

	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/analysis/pfg"
	"golang.org/x/tools/container/intsets"
)

// State holds the pointer flow graph of one entry point and everything needed to build it. The different phases of
// Analyze populate its fields.
type State struct {
	// The program being analyzed
	Program *ir.Program

	// The configuration of the analysis
	Config *config.Config

	// The logger used during the analysis
	Logger *config.LogGroup

	// Graph is the pointer flow graph
	Graph *pfg.Graph

	// Worklist holds the pending deltas of the propagation
	Worklist *pfg.Worklist

	// CallGraph holds the resolved calls of the reachable contextual calls
	CallGraph *CallGraph

	// Reachable lists the contextual calls reached from the entry, in the order they were discovered
	Reachable []pfg.ContextualCall

	reached  map[pfg.ContextualCall]bool
	queue    []pfg.ContextualCall
	maxDepth int

	// onPropagate is called on every non-empty delta added to a node
	onPropagate func(node pfg.NodeID, delta *intsets.Sparse)
}

// NewState returns a fresh state for the program.
func NewState(prog *ir.Program, cfg *config.Config, logger *config.LogGroup) *State {
	maxDepth := cfg.MaxPathDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxPathDepth
	}
	return &State{
		Program:   prog,
		Config:    cfg,
		Logger:    logger,
		Graph:     pfg.NewGraph(),
		Worklist:  pfg.NewWorklist(),
		CallGraph: NewCallGraph(),
		reached:   map[pfg.ContextualCall]bool{},
		maxDepth:  maxDepth,
	}
}

// InvariantError is raised when the analysis finds the program or its own state in a shape it cannot handle, for
// example a reachable function without body. It aborts the analysis.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "analysis invariant violated: " + e.Msg
}

func invariant(format string, args ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}

// Analyze builds the pointer flow graph of the program from the entry function, and propagates the points-to sets
// until the fixpoint is reached. An invariant violation aborts the analysis and is returned as an *InvariantError.
func Analyze(s *State, entry ir.FunctionID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()
	if !s.Program.HasBody(entry) {
		invariant("entry function %s has no body", s.Program.Name(entry))
	}
	s.expand(entry)
	s.Logger.Debugf("Reached %d contextual calls from %s, %d nodes, %d pending deltas\n",
		len(s.Reachable), s.Program.Name(entry), s.Graph.NumNodes(), s.Worklist.Len())
	if s.Logger.TopicEnabled(config.TopicReachable) {
		for _, cc := range s.Reachable {
			s.Logger.Topicf(config.TopicReachable, "%s in context %s\n", s.Program.Name(cc.Function), cc.Context)
		}
	}

	steps := s.solve()
	s.Logger.Debugf("Propagation converged after %d steps, %d nodes\n", steps, s.Graph.NumNodes())
	if s.Logger.TopicEnabled(config.TopicPFG) {
		var b strings.Builder
		s.Graph.Debug(&b, s.Program.Name)
		s.Logger.Topicf(config.TopicPFG, "pointer flow graph of %s:\n%s", s.Program.Name(entry), b.String())
	}
	return nil
}

// function returns the body of a reachable function
func (s *State) function(id ir.FunctionID) *ir.Function {
	f, err := s.Program.Function(id)
	if err != nil {
		invariant("reachable function %s has no usable body: %v", s.Program.Name(id), err)
	}
	return f
}

// node returns the node of the path in the contextual call, creating it if necessary
func (s *State) node(cc pfg.ContextualCall, f *ir.Function, path ir.AccessPath) pfg.NodeID {
	id, _ := s.Graph.GetOrCreate(cc, path, f.VarName(path))
	return id
}
