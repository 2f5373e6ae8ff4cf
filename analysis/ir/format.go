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
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// File is the content of an IR file produced by a front end. JSON files are accepted as well since they are valid
// yaml.
type File struct {
	Functions    []FunctionSpec `yaml:"functions"`
	Suppressions []Suppression  `yaml:"suppressions,omitempty"`
}

// Suppression silences the findings that have an endpoint on the given line
type Suppression struct {
	File string `yaml:"file"`
	Line int    `yaml:"line"`
}

// FunctionSpec is the raw description of a function. A function without blocks is a declaration: calls to it
// cannot be resolved.
type FunctionSpec struct {
	Name       string      `yaml:"name"`
	EntryBlock int         `yaml:"entry-block,omitempty"`
	Locals     []LocalDecl `yaml:"locals,omitempty"`
	Blocks     []BlockSpec `yaml:"blocks,omitempty"`
}

// BlockSpec is the raw description of a basic block
type BlockSpec struct {
	ID         int             `yaml:"id"`
	Successors []int           `yaml:"successors,omitempty"`
	Cleanup    bool            `yaml:"cleanup,omitempty"`
	Statements []StatementSpec `yaml:"statements,omitempty"`
	Call       *CallSpec       `yaml:"call,omitempty"`
	Drop       *DropSpec       `yaml:"drop,omitempty"`
}

// StatementSpec is an assignment statement left = rvalue
type StatementSpec struct {
	Left   AccessPath `yaml:"left"`
	Rvalue RvalueSpec `yaml:"rvalue"`
	Loc    Location   `yaml:"loc,omitempty"`
}

// RvalueSpec is the raw right-hand side of an assignment. Which fields are used depends on the kind:
//   - copy, move: Place and Type are the operand
//   - constant: no field
//   - use, cast, repeat: Operand
//   - ref, address-of, discriminant: Place
//   - aggregate: Operands
//
// Any other kind is not supported by the analysis.
type RvalueSpec struct {
	Kind     string        `yaml:"kind"`
	Place    *AccessPath   `yaml:"place,omitempty"`
	Type     Type          `yaml:"type,omitempty"`
	Operand  *OperandSpec  `yaml:"operand,omitempty"`
	Operands []OperandSpec `yaml:"operands,omitempty"`
}

// OperandSpec is the raw description of an operand: kind is one of copy, move or constant
type OperandSpec struct {
	Kind  string      `yaml:"kind"`
	Place *AccessPath `yaml:"place,omitempty"`
	Type  Type        `yaml:"type,omitempty"`
}

// CallSpec is the raw description of a call terminator
type CallSpec struct {
	Callee      string        `yaml:"callee"`
	Candidates  []string      `yaml:"candidates,omitempty"`
	Args        []OperandSpec `yaml:"args,omitempty"`
	Destination *AccessPath   `yaml:"destination,omitempty"`
	Loc         Location      `yaml:"loc,omitempty"`
}

// DropSpec is the raw description of a destructor terminator
type DropSpec struct {
	Place AccessPath `yaml:"place"`
	Loc   Location   `yaml:"loc,omitempty"`
}

// Decode parses the contents of an IR file
func Decode(contents []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(contents))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if err == io.EOF {
			return f, nil
		}
		return nil, fmt.Errorf("could not decode IR: %w", err)
	}
	return f, nil
}

// Encode writes the IR file in yaml format
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}
