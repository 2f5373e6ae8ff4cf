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

// Package analysis runs the memory checker on programs loaded from IR files.
package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/awslabs/ar-memcheck/analysis/alias"
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/analysis/memcheck"
	"github.com/awslabs/ar-memcheck/analysis/reachability"
	"github.com/awslabs/ar-memcheck/internal/funcutil"
)

// RunMemoryCheck analyzes every entry point of the program and returns the merged findings, without the findings
// that are suppressed in the IR files. Each entry point is analyzed with its own pointer flow graph.
// When the configuration sets a reports directory, the result is also written there as JSON.
func RunMemoryCheck(p LoadedProgram, cfg *config.Config, logger *config.LogGroup) (memcheck.Result, error) {
	entries, err := FindEntryPoints(p, cfg, logger)
	if err != nil {
		return memcheck.Result{}, err
	}
	logger.Infof("Checking %d entry points ...\n", len(entries))
	start := time.Now()

	merger := memcheck.NewMerger()
	for _, entry := range entries {
		state, err := analyzeEntry(p.Program, cfg, logger, entry)
		if err != nil {
			return memcheck.Result{}, err
		}
		oracle := reachability.NewOracle(p.Program, state.CallGraph, logger)
		info := memcheck.Check(state.Graph, oracle, logger)
		logger.Debugf("%s: %d use after free, %d double free before merging\n", p.Program.Name(entry),
			len(info.UAF), len(info.DF))
		merger.Add(state.Graph, info)
	}

	res := merger.Result()
	filtered := res.Filter(p.Program.IsSuppressed)
	if n := res.Count() - filtered.Count(); n > 0 {
		logger.Infof("%d findings suppressed\n", n)
	}
	logger.Infof("Memory check done (%.2f s): %d use after free, %d double free\n", time.Since(start).Seconds(),
		len(filtered.UAF), len(filtered.DF))

	if cfg.ReportsDir != "" {
		if err := writeReport(cfg.ReportsDir, filtered, logger); err != nil {
			return filtered, err
		}
	}
	return filtered, nil
}

func analyzeEntry(prog *ir.Program, cfg *config.Config, logger *config.LogGroup,
	entry ir.FunctionID) (*alias.State, error) {
	start := time.Now()
	state := alias.NewState(prog, cfg, logger)
	if err := alias.Analyze(state, entry); err != nil {
		return nil, fmt.Errorf("analysis of %s aborted: %w", prog.Name(entry), err)
	}
	logger.Debugf("%s: %d contextual calls, %d nodes (%.2f s)\n", prog.Name(entry), len(state.Reachable),
		state.Graph.NumNodes(), time.Since(start).Seconds())
	return state, nil
}

func writeReport(dir string, res memcheck.Result, logger *config.LogGroup) error {
	f, err := os.CreateTemp(dir, "memcheck-report-*.json")
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	if err := memcheck.WriteJSON(f, res); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	path, err := filepath.Abs(f.Name())
	if err != nil {
		path = f.Name()
	}
	logger.Infof("Report written in %s\n", path)
	return nil
}

// RenderPFG analyzes the program from the single function matching entry (see MatchesEntry) and returns the
// converged pointer flow graph in graphviz format.
func RenderPFG(p LoadedProgram, cfg *config.Config, logger *config.LogGroup, entry string) (string, error) {
	entries, err := findNamedEntries(p.Program, []string{entry}, logger)
	if err != nil {
		return "", err
	}
	if len(entries) > 1 {
		return "", fmt.Errorf("entry %q is ambiguous, it matches %v", entry, funcutil.Map(entries, p.Program.Name))
	}
	state, err := analyzeEntry(p.Program, cfg, logger, entries[0])
	if err != nil {
		return "", err
	}
	return state.Graph.Graphviz(p.Program.Name(entries[0]), p.Program.Name), nil
}
