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

/*
Package alias builds the pointer flow graph of a program from an entry function and computes the points-to sets of
its cells.

The analysis runs in two phases. The expansion discovers the contextual calls reachable from the entry: each
function is analyzed once per call site that reaches it (the context of a callee is its immediate call site). For
each contextual call, drops record abstract objects, and assignments and calls add flow edges. The propagation then
pops the worklist until the points-to sets stop growing.

Calls are resolved against the functions that have a body. Calls that cannot be resolved link their arguments to
their destination, unless the callee matches one of the ignored patterns of the configuration. Unresolved callees
matching a passthrough pattern link nothing, and their dispatch candidates are not expanded.

	s := alias.NewState(prog, cfg, logger)
	if err := alias.Analyze(s, entry); err != nil {
		// the program violates an invariant of the analysis
	}
	for _, e := range s.Graph.DerefEdges() {
		...
	}
*/
package alias
