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
	"time"

	"github.com/awslabs/ar-memcheck/analysis/alias"
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
)

// LoadedProgram represents a loaded program.
type LoadedProgram struct {
	// Program holds the functions of all the IR files
	Program *ir.Program
	// CallGraph is the static call graph of the program, with the callees of all the calls in every function
	CallGraph *alias.CallGraph
}

// LoadProgram loads the IR files, lowers every function and builds the static call graph of the program.
// Lowering errors are reported here rather than during the analysis.
func LoadProgram(cfg *config.Config, logger *config.LogGroup, filenames []string) (LoadedProgram, error) {
	start := time.Now()
	prog, err := ir.LoadFiles(logger, filenames...)
	if err != nil {
		return LoadedProgram{}, err
	}
	if len(prog.Defined()) == 0 {
		return LoadedProgram{}, fmt.Errorf("no function with a body in %v", filenames)
	}
	if err := prog.LowerAll(); err != nil {
		return LoadedProgram{}, fmt.Errorf("failed to lower IR: %w", err)
	}
	cg, err := alias.BuildStaticCallGraph(prog, cfg)
	if err != nil {
		return LoadedProgram{}, err
	}
	logger.Debugf("Loaded %d functions (%d with a body) in %.2f s\n", prog.NumFunctions(), len(prog.Defined()),
		time.Since(start).Seconds())
	return LoadedProgram{Program: prog, CallGraph: cg}, nil
}
