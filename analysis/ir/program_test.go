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
	"embed"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-memcheck/analysis/config"
)

//go:embed testdata
var testfsys embed.FS

func loadTestProgram(t *testing.T, name string) *Program {
	b, err := testfsys.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	f, err := Decode(b)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", name, err)
	}
	p := NewProgram(config.NewLogGroup(config.NewDefault()))
	if err := p.AddFile(f); err != nil {
		t.Fatalf("failed to add %s: %v", name, err)
	}
	return p
}

func TestLoweringClassifiesStatements(t *testing.T) {
	p := loadTestProgram(t, "lowering.yaml")
	id, ok := p.Lookup("demo::main")
	if !ok {
		t.Fatalf("demo::main should be defined")
	}
	f, err := p.Function(id)
	if err != nil {
		t.Fatalf("failed to lower demo::main: %v", err)
	}
	b0 := f.Block(0)
	if b0 == nil || len(b0.Assignments) != 6 {
		t.Fatalf("expected 6 assignments in bb0, got %v", b0)
	}
	kinds := []AssignKind{RefAssign, CopyAssign, CopyAssign, CopyAssign, MoveAssign, CopyAssign}
	aliases := []bool{true, true, false, false, true, true}
	for i, a := range b0.Assignments {
		if a.Kind != kinds[i] {
			t.Errorf("assignment %d: expected kind %s, got %s", i, kinds[i], a.Kind)
		}
		if a.CreatesAlias() != aliases[i] {
			t.Errorf("assignment %d (%s = %s %s): expected CreatesAlias() = %v", i, a.Left, a.Kind, a.Right,
				aliases[i])
		}
	}
	if b0.Assignments[0].Loc.Line != 3 || b0.Assignments[0].Loc.EndCol != 15 {
		t.Errorf("location of the first assignment was not kept: %v", b0.Assignments[0].Loc)
	}
	if b0.Call == nil || b0.Call.Callee != "demo::consume" || len(b0.Call.Args) != 2 {
		t.Fatalf("unexpected call terminator %v", b0.Call)
	}
	if b0.Call.Args[1].Kind != ConstantOperand || !b0.Call.Args[0].CreatesAlias() {
		t.Errorf("unexpected call arguments %v", b0.Call.Args)
	}
	if b1 := f.Block(1); b1 == nil || b1.Drop == nil || b1.Drop.Place.Local != 1 {
		t.Errorf("expected bb1 to drop _1")
	}
	if f.VarName(LocalPath(1)) != "v" {
		t.Errorf("expected _1 to be named v")
	}
}

func TestLoweringIsCached(t *testing.T) {
	p := loadTestProgram(t, "lowering.yaml")
	id, _ := p.Lookup("demo::main")
	f1, _ := p.Function(id)
	f2, _ := p.Function(id)
	if f1 != f2 {
		t.Errorf("function bodies should be lowered once")
	}
}

func TestDeclarationsAndDefinitions(t *testing.T) {
	p := loadTestProgram(t, "lowering.yaml")
	if p.NumFunctions() != 2 {
		t.Errorf("expected 2 functions, got %d", p.NumFunctions())
	}
	id, ok := p.Lookup("demo::consume")
	if !ok || !p.HasBody(id) {
		t.Errorf("the definition of demo::consume should replace its declaration")
	}
	if _, ok := p.Lookup("demo::missing"); ok {
		t.Errorf("unknown functions should not be found")
	}
	_, err := p.AddFunction(FunctionSpec{Name: "demo::consume", Blocks: []BlockSpec{{ID: 0}}})
	if err == nil {
		t.Errorf("adding a second definition should fail")
	}
	decl, err := p.AddFunction(FunctionSpec{Name: "std::process::exit"})
	if err != nil || p.HasBody(decl) {
		t.Errorf("declarations should be added without body")
	}
	if _, ok := p.Lookup("std::process::exit"); ok {
		t.Errorf("declarations should not be resolvable")
	}
	if len(p.Defined()) != 2 {
		t.Errorf("expected two defined functions, got %v", p.Defined())
	}
}

func TestSuppressions(t *testing.T) {
	p := loadTestProgram(t, "lowering.yaml")
	if !p.IsSuppressed(Location{File: "/home/user/demo/src/main.rs", Line: 5, Col: 1}) {
		t.Errorf("line 5 of main.rs should be suppressed")
	}
	if p.IsSuppressed(Location{File: "src/main.rs", Line: 4}) || p.IsSuppressed(Location{Line: 5}) {
		t.Errorf("only line 5 of main.rs should be suppressed")
	}
}

func TestBadSuccessor(t *testing.T) {
	p := loadTestProgram(t, "bad_successor.yaml")
	id, _ := p.Lookup("demo::broken")
	if _, err := p.Function(id); err == nil || !strings.Contains(err.Error(), "bb7") {
		t.Errorf("expected an error about the unknown successor, got %v", err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("functions:\n  - name: f\n    blockz: []\n"))
	if err == nil {
		t.Errorf("expected an error for an unknown field")
	}
	_, err = Decode([]byte("functions:\n  - name: f\n    blocks:\n      - id: 0\n        drop: {place: {local: 1, projection: [fieldx]}}\n"))
	if err == nil {
		t.Errorf("expected an error for an unknown projection")
	}
}

func TestEncodeDecode(t *testing.T) {
	b, err := testfsys.ReadFile(filepath.Join("testdata", "lowering.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	g, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("failed to decode the encoded file: %v\n%s", err, buf.String())
	}
	if len(g.Functions) != len(f.Functions) || len(g.Functions[0].Blocks[0].Statements) != 7 {
		t.Errorf("encoding lost information:\n%s", buf.String())
	}
	if g.Functions[0].Locals[2].Type.Kind != Reference {
		t.Errorf("type kinds should survive encoding")
	}
}

func TestPrintFunction(t *testing.T) {
	p := loadTestProgram(t, "lowering.yaml")
	id, _ := p.Lookup("demo::main")
	f, _ := p.Function(id)
	var b strings.Builder
	f.Print(&b)
	for _, s := range []string{"_2 = & _1", "_0 = call demo::consume(move _2, const)", "drop(_1)", "-> bb1"} {
		if !strings.Contains(b.String(), s) {
			t.Errorf("expected %q in\n%s", s, b.String())
		}
	}
}
