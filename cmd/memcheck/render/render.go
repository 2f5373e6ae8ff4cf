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

// Package render implements the rendering of the pointer flow graph of an entry point in graphviz format.
package render

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-memcheck/analysis"
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/cmd/memcheck/tools"
	"github.com/awslabs/ar-memcheck/internal/formatutil"
)

// Usage for CLI
const Usage = `Render the pointer flow graph of an entry point.
Usage:
  memcheck render [options] -entry <function> <IR file(s)>
Examples:
  % memcheck render -entry main -o pfg.dot crate.yaml
  % dot -Tsvg pfg.dot -o pfg.svg
`

// Flags represents the parsed render sub-command flags.
type Flags struct {
	tools.CommonFlags
	entry string
	out   string
}

// NewFlags returns the parsed render sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	entry := flags.FlagSet.String("entry", "", "entry function, matched by its last segments")
	out := flags.FlagSet.String("o", "", "output file for the graph (standard output if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, entry: *entry, out: *out}, nil
}

// Run runs the render tool with flags.
func Run(flags Flags) error {
	if flags.entry == "" {
		return fmt.Errorf("an entry function is required (-entry)")
	}
	cfg, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)

	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading IR files")+"\n")
	program, err := analysis.LoadProgram(cfg, logger, flags.FlagSet.Args())
	if err != nil {
		return fmt.Errorf("could not load program: %w", err)
	}
	dot, err := analysis.RenderPFG(program, cfg, logger, flags.entry)
	if err != nil {
		return err
	}
	if flags.out == "" {
		fmt.Print(dot)
		return nil
	}
	if err := os.WriteFile(flags.out, []byte(dot), 0600); err != nil {
		return fmt.Errorf("could not write graph: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Graph written in %s\n", flags.out)
	return nil
}
