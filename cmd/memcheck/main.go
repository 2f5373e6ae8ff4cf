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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-memcheck/analysis"
	"github.com/awslabs/ar-memcheck/cmd/memcheck/check"
	"github.com/awslabs/ar-memcheck/cmd/memcheck/render"
	"github.com/awslabs/ar-memcheck/cmd/memcheck/tools"
)

const usage = `Memcheck: use-after-free and double-free detection
Usage:
  memcheck [tool] [options] <IR file(s)>
Tools:
  - check: analyzes the program from its entry points and reports the memory bugs found
  - render: writes the pointer flow graph of an entry point in graphviz format
Exit status:
  0 when no bug is found, 1 when bugs are reported, 2 on errors
Examples:
  Check a crate: memcheck check -config config.yaml crate.yaml
  Render a graph: memcheck render -entry main -o pfg.dot crate.yaml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "check":
		flags, err := check.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		n, err := check.Run(flags)
		if err != nil {
			errExit(err)
		}
		if n > 0 {
			os.Exit(1)
		}
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
