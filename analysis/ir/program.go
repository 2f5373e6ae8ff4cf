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

package ir

import (
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-memcheck/analysis/config"
)

// Program is the set of functions of the program under analysis. Function bodies are lowered from their raw
// decoded form the first time they are requested.
type Program struct {
	// Suppressions lists the lines on which findings are silenced
	Suppressions []Suppression

	specs  []*FunctionSpec
	byName map[string]FunctionID
	bodies map[FunctionID]*Function
	logger *config.LogGroup
}

// NewProgram returns an empty program
func NewProgram(logger *config.LogGroup) *Program {
	return &Program{
		byName: map[string]FunctionID{},
		bodies: map[FunctionID]*Function{},
		logger: logger,
	}
}

// LoadFiles reads and decodes the IR files and returns the program containing all their functions
func LoadFiles(logger *config.LogGroup, filenames ...string) (*Program, error) {
	if len(filenames) == 0 {
		return nil, fmt.Errorf("no IR file to load")
	}
	p := NewProgram(logger)
	for _, filename := range filenames {
		b, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("could not read IR file: %w", err)
		}
		f, err := Decode(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if err := p.AddFile(f); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		logger.Debugf("Loaded %d functions from %s\n", len(f.Functions), filename)
	}
	return p, nil
}

// AddFile adds all the functions and suppressions of the file to the program
func (p *Program) AddFile(f *File) error {
	for _, spec := range f.Functions {
		if _, err := p.AddFunction(spec); err != nil {
			return err
		}
	}
	p.Suppressions = append(p.Suppressions, f.Suppressions...)
	return nil
}

// AddFunction adds the function to the program and returns its id. A declaration can be added several times, and
// a definition replaces a previous declaration with the same name. Adding two definitions with the same name is an
// error.
func (p *Program) AddFunction(spec FunctionSpec) (FunctionID, error) {
	if spec.Name == "" {
		return -1, fmt.Errorf("function without name")
	}
	if id, ok := p.byName[spec.Name]; ok {
		prev := p.specs[id]
		if len(spec.Blocks) == 0 {
			return id, nil
		}
		if len(prev.Blocks) > 0 {
			return -1, fmt.Errorf("function %s is defined twice", spec.Name)
		}
		p.specs[id] = &spec
		return id, nil
	}
	id := FunctionID(len(p.specs))
	p.specs = append(p.specs, &spec)
	p.byName[spec.Name] = id
	return id, nil
}

// NumFunctions returns the number of functions (declarations included) in the program
func (p *Program) NumFunctions() int {
	return len(p.specs)
}

// Name returns the name of the function
func (p *Program) Name(id FunctionID) string {
	if id < 0 || int(id) >= len(p.specs) {
		return fmt.Sprintf("<unknown f%d>", id)
	}
	return p.specs[id].Name
}

// HasBody returns true if the function has a body
func (p *Program) HasBody(id FunctionID) bool {
	return id >= 0 && int(id) < len(p.specs) && len(p.specs[id].Blocks) > 0
}

// Lookup returns the id of the function with the given name, only if that function has a body.
func (p *Program) Lookup(name string) (FunctionID, bool) {
	id, ok := p.byName[name]
	if !ok || !p.HasBody(id) {
		return -1, false
	}
	return id, true
}

// Defined returns the ids of all the functions with a body, in increasing order
func (p *Program) Defined() []FunctionID {
	var ids []FunctionID
	for i := range p.specs {
		if p.HasBody(FunctionID(i)) {
			ids = append(ids, FunctionID(i))
		}
	}
	return ids
}

// Function returns the body of the function, lowering it if this is the first request.
func (p *Program) Function(id FunctionID) (*Function, error) {
	if f, ok := p.bodies[id]; ok {
		return f, nil
	}
	if !p.HasBody(id) {
		return nil, fmt.Errorf("function %s has no body", p.Name(id))
	}
	f, err := lowerFunction(id, p.specs[id], p.logger)
	if err != nil {
		return nil, err
	}
	p.bodies[id] = f
	if p.logger.TopicEnabled(config.TopicIR) {
		var b strings.Builder
		f.Print(&b)
		p.logger.Topicf(config.TopicIR, "%s", b.String())
	}
	return f, nil
}

// LowerAll lowers every function with a body and returns the first error encountered
func (p *Program) LowerAll() error {
	for _, id := range p.Defined() {
		if _, err := p.Function(id); err != nil {
			return err
		}
	}
	return nil
}

// IsSuppressed returns true if a suppression matches the location. File names match when one is a suffix of the
// other, so that suppressions can use relative paths.
func (p *Program) IsSuppressed(loc Location) bool {
	for _, s := range p.Suppressions {
		if s.Line != loc.Line || s.File == "" || loc.File == "" {
			continue
		}
		if strings.HasSuffix(loc.File, s.File) || strings.HasSuffix(s.File, loc.File) {
			return true
		}
	}
	return false
}
