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
	"io"
	"strings"
)

// AssignKind classifies how the right-hand side of an assignment is used
type AssignKind int

const (
	// CopyAssign copies the value of the right-hand place
	CopyAssign AssignKind = iota
	// MoveAssign moves the value of the right-hand place
	MoveAssign
	// RefAssign takes a borrowed reference to the right-hand place
	RefAssign
	// AddressOfAssign takes a raw pointer to the right-hand place
	AddressOfAssign
)

func (k AssignKind) String() string {
	switch k {
	case CopyAssign:
		return "copy"
	case MoveAssign:
		return "move"
	case RefAssign:
		return "&"
	case AddressOfAssign:
		return "&raw"
	}
	return "?"
}

// Assignment is an assignment effect Left = Kind(Right). Constants and unsupported right-hand sides do not produce
// assignments.
type Assignment struct {
	Left      AccessPath
	Right     AccessPath
	RightType Type
	Kind      AssignKind
	Loc       Location
}

// CreatesAlias returns true when the assignment makes the left place point to (or hold) the object of the right
// place. Move, Ref and AddressOf always do. A copy does when the copied value is a pointer, or when the right place
// is reached through a pointer.
func (a Assignment) CreatesAlias() bool {
	if a.Kind != CopyAssign {
		return true
	}
	return a.RightType.IsPointer() || a.Right.HasDeref()
}

// OperandKind is the kind of a call argument
type OperandKind int

const (
	// CopyOperand is a copied place
	CopyOperand OperandKind = iota
	// MoveOperand is a moved place
	MoveOperand
	// ConstantOperand is a constant, it does not carry any place
	ConstantOperand
)

// Operand is a call argument
type Operand struct {
	Kind  OperandKind
	Place AccessPath
	Type  Type
}

// CreatesAlias returns true when passing the operand to a function links the argument to the parameter.
// This follows the same rule as for assignments.
func (o Operand) CreatesAlias() bool {
	switch o.Kind {
	case MoveOperand:
		return true
	case CopyOperand:
		return o.Type.IsPointer() || o.Place.HasDeref()
	}
	return false
}

func (o Operand) String() string {
	switch o.Kind {
	case CopyOperand:
		return "copy " + o.Place.String()
	case MoveOperand:
		return "move " + o.Place.String()
	}
	return "const"
}

// Call is a call terminator
type Call struct {
	// Callee is the fully qualified name of the statically known callee
	Callee string
	// Candidates are the possible targets of a dynamic dispatch, as computed by the front end
	Candidates []string
	Args       []Operand
	// Destination is nil when the call does not return a value
	Destination *AccessPath
	Loc         Location
}

// Drop is a destructor terminator
type Drop struct {
	Place AccessPath
	Loc   Location
}

// BasicBlock is a basic block with its assignments and its terminator. At most one of Call and Drop is non-nil.
type BasicBlock struct {
	ID          BlockID
	Successors  []BlockID
	Assignments []Assignment
	Call        *Call
	Drop        *Drop
	// Cleanup is true for blocks that are only executed during unwinding
	Cleanup bool
}

// Function is a function with a body
type Function struct {
	ID     FunctionID
	Name   string
	Entry  BlockID
	Locals map[Local]LocalDecl
	Blocks []*BasicBlock

	blockIndex map[BlockID]int
}

// Block returns the block with the given id, or nil
func (f *Function) Block(id BlockID) *BasicBlock {
	if i, ok := f.blockIndex[id]; ok {
		return f.Blocks[i]
	}
	return nil
}

// LocalDecl returns the declaration of the local l, if it exists
func (f *Function) LocalDecl(l Local) (LocalDecl, bool) {
	d, ok := f.Locals[l]
	return d, ok
}

// VarName returns the source name of the local of the path, or the empty string
func (f *Function) VarName(p AccessPath) string {
	return f.Locals[p.Local].Name
}

// Print writes a textual representation of the function to w
func (f *Function) Print(w io.Writer) {
	fmt.Fprintf(w, "fn %s (f%d) entry bb%d\n", f.Name, f.ID, f.Entry)
	for _, b := range f.Blocks {
		fmt.Fprintf(w, "  bb%d", b.ID)
		if b.Cleanup {
			fmt.Fprintf(w, " (cleanup)")
		}
		fmt.Fprintf(w, ":\n")
		for _, a := range b.Assignments {
			fmt.Fprintf(w, "    %s = %s %s\n", a.Left, a.Kind, a.Right)
		}
		if b.Call != nil {
			args := make([]string, len(b.Call.Args))
			for i, arg := range b.Call.Args {
				args[i] = arg.String()
			}
			dest := "_"
			if b.Call.Destination != nil {
				dest = b.Call.Destination.String()
			}
			fmt.Fprintf(w, "    %s = call %s(%s)\n", dest, b.Call.Callee, strings.Join(args, ", "))
		}
		if b.Drop != nil {
			fmt.Fprintf(w, "    drop(%s)\n", b.Drop.Place)
		}
		if len(b.Successors) > 0 {
			succs := make([]string, len(b.Successors))
			for i, s := range b.Successors {
				succs[i] = fmt.Sprintf("bb%d", s)
			}
			fmt.Fprintf(w, "    -> %s\n", strings.Join(succs, ", "))
		}
	}
}
