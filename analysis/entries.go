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

package analysis

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/internal/funcutil"
	"github.com/awslabs/ar-memcheck/internal/graphutil"
	"golang.org/x/exp/slices"
)

// FindEntryPoints returns the entry functions of the analysis. When the configuration lists entries, these are the
// functions whose names end with one of the entries (see MatchesEntry). Otherwise, the entries are the functions
// that are not called by any other function; if every function is called, the least function of each group of
// mutually recursive functions that no other function calls is used.
func FindEntryPoints(p LoadedProgram, cfg *config.Config, logger *config.LogGroup) ([]ir.FunctionID, error) {
	if len(cfg.Entries) > 0 {
		return findNamedEntries(p.Program, cfg.Entries, logger)
	}

	cg := p.CallGraph.Graph(p.Program.NumFunctions(), p.Program.Name)
	if logger.TopicEnabled(config.TopicCallgraph) {
		for _, cycle := range graphutil.FindAllElementaryCycles(cg) {
			names := funcutil.Map(cycle, cg.Label)
			logger.Topicf(config.TopicCallgraph, "recursive cycle: %s\n", strings.Join(names, " -> "))
		}
	}

	var entries []ir.FunctionID
	for k, deg := range cg.InDegrees() {
		if deg == 0 {
			entries = append(entries, ir.FunctionID(k))
		}
	}
	if len(entries) == 0 {
		sources := graphutil.SourceComponents(cg.Keys, cg.Successors)
		for _, scc := range sources {
			least := scc[0]
			for _, f := range scc[1:] {
				if f < least {
					least = f
				}
			}
			entries = append(entries, ir.FunctionID(least))
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("could not find any entry point")
	}
	slices.Sort(entries)
	for _, e := range entries {
		logger.Debugf("Entry point: %s\n", p.Program.Name(e))
	}
	return entries, nil
}

func findNamedEntries(prog *ir.Program, patterns []string, logger *config.LogGroup) ([]ir.FunctionID, error) {
	var entries []ir.FunctionID
	for _, pattern := range patterns {
		found := false
		for _, id := range prog.Defined() {
			if MatchesEntry(prog.Name(id), pattern) {
				found = true
				if !slices.Contains(entries, id) {
					entries = append(entries, id)
				}
			}
		}
		if !found {
			logger.Warnf("entry %q does not match any function with a body\n", pattern)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no function matches the entries %v", patterns)
	}
	slices.Sort(entries)
	return entries, nil
}

// MatchesEntry returns true if the last segments of the fully qualified name are the segments of entry. Segments
// are separated by "::" or ".", so "server.run" matches "app::server::run" but not "app::myserver::run".
func MatchesEntry(name string, entry string) bool {
	want := splitSegments(entry)
	have := splitSegments(name)
	if len(want) == 0 || len(want) > len(have) {
		return false
	}
	return slices.Equal(have[len(have)-len(want):], want)
}

func splitSegments(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool { return r == '.' || r == ':' })
}
