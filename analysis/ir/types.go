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
	"strings"

	"gopkg.in/yaml.v3"
)

// FunctionID identifies a function of the Program. Ids are assigned in the order functions are added to the
// program, and are stable for the duration of a run.
type FunctionID int

// BlockID identifies a basic block inside a function
type BlockID int

// Local is the index of a local slot in a function. The slot 0 holds the return value, and the slots 1..N hold
// the N parameters.
type Local int

// ReturnLocal is the slot of the return value
const ReturnLocal Local = 0

func (l Local) String() string {
	return fmt.Sprintf("_%d", int(l))
}

// GlobalBlock identifies a basic block in the whole program
type GlobalBlock struct {
	Function FunctionID
	Block    BlockID
}

func (g GlobalBlock) String() string {
	return fmt.Sprintf("f%d:bb%d", g.Function, g.Block)
}

// TypeKind is the kind of static type of a place. Only the kinds relevant to aliasing are distinguished.
type TypeKind int

const (
	// Opaque is any type that is neither unit nor a pointer
	Opaque TypeKind = iota
	// Unit is the empty tuple type
	Unit
	// RawPointer is the kind of raw pointers (*const T, *mut T)
	RawPointer
	// Reference is the kind of borrowed pointers (&T, &mut T)
	Reference
)

var typeKindNames = map[TypeKind]string{
	Opaque:     "opaque",
	Unit:       "unit",
	RawPointer: "raw-pointer",
	Reference:  "reference",
}

func (k TypeKind) String() string {
	return typeKindNames[k]
}

// UnmarshalYAML reads a type kind. Unknown kind names are opaque types.
func (k *TypeKind) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: type kind should be a string", value.Line)
	}
	switch strings.ToLower(value.Value) {
	case "unit", "()":
		*k = Unit
	case "raw-pointer", "rawptr", "ptr":
		*k = RawPointer
	case "reference", "ref":
		*k = Reference
	default:
		*k = Opaque
	}
	return nil
}

// MarshalYAML writes the name of the kind
func (k TypeKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Type is the static type of a place
type Type struct {
	Kind TypeKind `yaml:"kind"`
	Name string   `yaml:"name,omitempty"`
}

// IsPointer returns true for raw and borrowed pointer types
func (t Type) IsPointer() bool {
	return t.Kind == RawPointer || t.Kind == Reference
}

// IsUnit returns true for the unit type
func (t Type) IsUnit() bool {
	return t.Kind == Unit
}

// LocalDecl is the declaration of a local slot
type LocalDecl struct {
	Local     Local  `yaml:"local"`
	Type      Type   `yaml:"type"`
	NeedsDrop bool   `yaml:"needs-drop,omitempty"`
	Name      string `yaml:"name,omitempty"`
}

// Location is a source range
type Location struct {
	File    string `yaml:"file" json:"file"`
	Line    int    `yaml:"line" json:"line"`
	Col     int    `yaml:"col" json:"col"`
	EndLine int    `yaml:"end-line,omitempty" json:"end_line"`
	EndCol  int    `yaml:"end-col,omitempty" json:"end_col"`
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	if l.EndLine > 0 {
		return fmt.Sprintf("%s:%d:%d: %d:%d", l.File, l.Line, l.Col, l.EndLine, l.EndCol)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Less orders locations by file, then position
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	if l.Col != o.Col {
		return l.Col < o.Col
	}
	if l.EndLine != o.EndLine {
		return l.EndLine < o.EndLine
	}
	return l.EndCol < o.EndCol
}
