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

// Package check implements the front end of the memory checker: it loads IR files, runs the use-after-free and
// double-free detectors from the entry points and prints the findings.
package check

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-memcheck/analysis"
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/memcheck"
	"github.com/awslabs/ar-memcheck/cmd/memcheck/tools"
	"github.com/awslabs/ar-memcheck/internal/formatutil"
)

// Usage for CLI
const Usage = `Check a program for use-after-free and double-free bugs.
Usage:
  memcheck check [options] <IR file(s)>
Examples:
  % memcheck check -config config.yaml target/memcheck/*.yaml
  % memcheck check -entries server.run -json crate.yaml
  % memcheck check -open-debug -debug pfg,check crate.yaml
`

// Flags represents the parsed check sub-command flags.
type Flags struct {
	tools.CommonFlags
	entries   []string
	topics    []string
	openDebug bool
	json      bool
	noColor   bool
}

// NewFlags returns the parsed check sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("check")
	var entries, topics tools.ListFlag
	flags.FlagSet.Var(&entries, "entries", "comma separated entry functions, matched by their last segments")
	flags.FlagSet.Var(&topics, "debug", "comma separated debug topics (ir, assign, reachable, worklist, pfg, "+
		"callgraph, check, all)")
	openDebug := flags.FlagSet.Bool("open-debug", false, "print the debug topics")
	json := flags.FlagSet.Bool("json", false, "print the findings as JSON")
	noColor := flags.FlagSet.Bool("no-color", false, "disable colors in the output")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags: common,
		entries:     entries,
		topics:      topics,
		openDebug:   *openDebug,
		json:        *json,
		noColor:     *noColor,
	}, nil
}

// Run runs the memory checker with flags and prints the findings on standard output. It returns the number of
// findings.
func Run(flags Flags) (int, error) {
	return run(flags, os.Stdout)
}

func run(flags Flags, out io.Writer) (int, error) {
	cfg, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return 0, err
	}
	if len(flags.entries) > 0 {
		cfg.Entries = flags.entries
	}
	if len(flags.topics) > 0 {
		if err := cfg.SetDebugTopics(flags.topics); err != nil {
			return 0, err
		}
	}
	if flags.openDebug {
		cfg.OpenDebug = true
	}
	formatutil.NoColor = flags.noColor || flags.json
	logger := config.NewLogGroup(cfg)

	files := flags.FlagSet.Args()
	if len(files) == 0 {
		return 0, fmt.Errorf("could not load program: no IR file given")
	}
	logger.Infof(formatutil.Faint("Reading IR files") + "\n")
	program, err := analysis.LoadProgram(cfg, logger, files)
	if err != nil {
		return 0, fmt.Errorf("could not load program: %w", err)
	}

	result, err := analysis.RunMemoryCheck(program, cfg, logger)
	if err != nil {
		return 0, err
	}
	if flags.json {
		err = memcheck.WriteJSON(out, result)
	} else {
		err = memcheck.WriteText(out, result)
	}
	if err != nil {
		return 0, fmt.Errorf("could not write findings: %w", err)
	}
	return result.Count(), nil
}
