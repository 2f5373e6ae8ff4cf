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

	"github.com/awslabs/ar-memcheck/analysis/config"
)

// unsupportedRvalues are the rvalue kinds the analysis knows about but does not model. They never create aliases
// between places the analysis tracks.
var unsupportedRvalues = map[string]bool{
	"binary-op":         true,
	"checked-binary-op": true,
	"unary-op":          true,
	"len":               true,
	"nullary-op":        true,
	"thread-local-ref":  true,
	"shallow-init-box":  true,
}

// lowerFunction builds the body of the function from its decoded form. Rvalues that are not supported are
// logged and dropped; structural errors (duplicate or missing blocks, operands without places) are returned.
func lowerFunction(id FunctionID, spec *FunctionSpec, logger *config.LogGroup) (*Function, error) {
	f := &Function{
		ID:         id,
		Name:       spec.Name,
		Entry:      BlockID(spec.EntryBlock),
		Locals:     make(map[Local]LocalDecl, len(spec.Locals)),
		Blocks:     make([]*BasicBlock, 0, len(spec.Blocks)),
		blockIndex: make(map[BlockID]int, len(spec.Blocks)),
	}
	for _, decl := range spec.Locals {
		if _, ok := f.Locals[decl.Local]; ok {
			return nil, fmt.Errorf("%s: local %s is declared twice", spec.Name, decl.Local)
		}
		f.Locals[decl.Local] = decl
	}

	for i := range spec.Blocks {
		bs := &spec.Blocks[i]
		bid := BlockID(bs.ID)
		if _, ok := f.blockIndex[bid]; ok {
			return nil, fmt.Errorf("%s: block bb%d is defined twice", spec.Name, bs.ID)
		}
		b, err := lowerBlock(f, bs, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: bb%d: %w", spec.Name, bs.ID, err)
		}
		f.blockIndex[bid] = len(f.Blocks)
		f.Blocks = append(f.Blocks, b)
	}

	if f.Block(f.Entry) == nil {
		return nil, fmt.Errorf("%s: entry block bb%d does not exist", spec.Name, f.Entry)
	}
	for _, b := range f.Blocks {
		for _, s := range b.Successors {
			if f.Block(s) == nil {
				return nil, fmt.Errorf("%s: bb%d has unknown successor bb%d", spec.Name, b.ID, s)
			}
		}
	}
	return f, nil
}

func lowerBlock(f *Function, bs *BlockSpec, logger *config.LogGroup) (*BasicBlock, error) {
	b := &BasicBlock{
		ID:      BlockID(bs.ID),
		Cleanup: bs.Cleanup,
	}
	for _, s := range bs.Successors {
		b.Successors = append(b.Successors, BlockID(s))
	}

	for _, stmt := range bs.Statements {
		assigns, err := lowerStatement(f, stmt)
		if err != nil {
			if unsupported, ok := err.(*UnsupportedError); ok {
				logger.Topicf(config.TopicAssign, "%s bb%d: dropped %s\n", f.Name, bs.ID, err)
				if !unsupported.Known {
					logger.Warnf("%s bb%d: %s\n", f.Name, bs.ID, err)
				}
				continue
			}
			return nil, err
		}
		b.Assignments = append(b.Assignments, assigns...)
	}

	if bs.Call != nil && bs.Drop != nil {
		return nil, fmt.Errorf("a block cannot have both a call and a drop terminator")
	}

	if bs.Call != nil {
		call := &Call{
			Callee:      bs.Call.Callee,
			Candidates:  bs.Call.Candidates,
			Destination: bs.Call.Destination,
			Loc:         bs.Call.Loc,
		}
		if call.Callee == "" && len(call.Candidates) == 0 {
			return nil, fmt.Errorf("call without callee")
		}
		for i, arg := range bs.Call.Args {
			op, err := lowerOperand(f, arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			call.Args = append(call.Args, op)
		}
		b.Call = call
	}

	if bs.Drop != nil {
		b.Drop = &Drop{Place: bs.Drop.Place, Loc: bs.Drop.Loc}
	}
	return b, nil
}

// UnsupportedError is returned for constructs that the analysis drops
type UnsupportedError struct {
	Kind string
	// Known is false when the kind is not an rvalue kind at all
	Known bool
}

func (e *UnsupportedError) Error() string {
	if e.Known {
		return fmt.Sprintf("unsupported rvalue kind %q", e.Kind)
	}
	return fmt.Sprintf("unknown rvalue kind %q", e.Kind)
}

func lowerStatement(f *Function, stmt StatementSpec) ([]Assignment, error) {
	rv := stmt.Rvalue
	kind := strings.ToLower(rv.Kind)
	mk := func(k AssignKind, right AccessPath, t Type) Assignment {
		return Assignment{
			Left:      stmt.Left,
			Right:     right,
			RightType: resolveType(f, right, t),
			Kind:      k,
			Loc:       stmt.Loc,
		}
	}
	fromOperand := func(op Operand) []Assignment {
		switch op.Kind {
		case CopyOperand:
			return []Assignment{mk(CopyAssign, op.Place, op.Type)}
		case MoveOperand:
			return []Assignment{mk(MoveAssign, op.Place, op.Type)}
		}
		return nil
	}

	switch kind {
	case "copy", "move", "constant":
		op, err := lowerOperand(f, OperandSpec{Kind: kind, Place: rv.Place, Type: rv.Type})
		if err != nil {
			return nil, err
		}
		return fromOperand(op), nil
	case "use", "cast", "repeat":
		if rv.Operand == nil {
			return nil, fmt.Errorf("%s rvalue without operand", kind)
		}
		op, err := lowerOperand(f, *rv.Operand)
		if err != nil {
			return nil, err
		}
		return fromOperand(op), nil
	case "ref", "address-of", "discriminant":
		if rv.Place == nil {
			return nil, fmt.Errorf("%s rvalue without place", kind)
		}
		k := RefAssign
		if kind == "address-of" {
			k = AddressOfAssign
		} else if kind == "discriminant" {
			k = MoveAssign
		}
		return []Assignment{mk(k, *rv.Place, rv.Type)}, nil
	case "aggregate":
		var assigns []Assignment
		for _, spec := range rv.Operands {
			op, err := lowerOperand(f, spec)
			if err != nil {
				return nil, err
			}
			assigns = append(assigns, fromOperand(op)...)
		}
		return assigns, nil
	}
	return nil, &UnsupportedError{Kind: rv.Kind, Known: unsupportedRvalues[kind]}
}

func lowerOperand(f *Function, spec OperandSpec) (Operand, error) {
	var kind OperandKind
	switch strings.ToLower(spec.Kind) {
	case "copy":
		kind = CopyOperand
	case "move":
		kind = MoveOperand
	case "constant", "const":
		return Operand{Kind: ConstantOperand}, nil
	default:
		return Operand{}, fmt.Errorf("unknown operand kind %q", spec.Kind)
	}
	if spec.Place == nil {
		return Operand{}, fmt.Errorf("%s operand without place", spec.Kind)
	}
	return Operand{Kind: kind, Place: *spec.Place, Type: resolveType(f, *spec.Place, spec.Type)}, nil
}

// resolveType returns t, or the declared type of the local when t is not specified and the place is the whole local.
func resolveType(f *Function, place AccessPath, t Type) Type {
	if t != (Type{}) || place.Depth() > 0 {
		return t
	}
	if decl, ok := f.Locals[place.Local]; ok {
		return decl.Type
	}
	return t
}
