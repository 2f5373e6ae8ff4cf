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
	"testing"
)

func mustParse(t *testing.T, s string) Projection {
	p, err := ParseProjection(s)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return p
}

func TestParseProjection(t *testing.T) {
	for _, s := range []string{"deref", "field:3", "index", "downcast:1"} {
		if p := mustParse(t, s); p.String() != s {
			t.Errorf("%q was parsed as %q", s, p)
		}
	}
	if p := mustParse(t, "*"); p.Kind != Deref {
		t.Errorf("* should be a deref")
	}
	for _, s := range []string{"field", "deref:1", "field:-1", "unknown"} {
		if _, err := ParseProjection(s); err == nil {
			t.Errorf("expected an error when parsing %q", s)
		}
	}
}

func TestPrefixes(t *testing.T) {
	base := LocalPath(1)
	deref := base.Append(Projection{Kind: Deref})
	field := deref.Append(Projection{Kind: Field, Index: 0})
	other := deref.Append(Projection{Kind: Field, Index: 1})

	if !IsPrefix(base, base) || IsStrictPrefix(base, base) {
		t.Errorf("a path is a prefix of itself but not a strict prefix")
	}
	if !IsStrictPrefix(base, field) || !IsStrictPrefix(deref, field) {
		t.Errorf("expected %s and %s to be strict prefixes of %s", base, deref, field)
	}
	if IsPrefix(field, other) || IsPrefix(other, field) {
		t.Errorf("sibling fields are not prefixes of each other")
	}
	if IsPrefix(LocalPath(2), field) {
		t.Errorf("paths of different locals are never prefixes")
	}
	if s := field.Suffix(base); len(s) != 2 || s[0].Kind != Deref || s[1].Index != 0 {
		t.Errorf("unexpected suffix %v", s)
	}
	if len(base.Projections) != 0 {
		t.Errorf("Append should not modify its receiver")
	}
}

func TestAccessPathStrings(t *testing.T) {
	p := LocalPath(1).Append(Projection{Kind: Deref}, Projection{Kind: Field, Index: 2})
	if p.String() != "(*_1).2" {
		t.Errorf("unexpected string %q", p.String())
	}
	if p.Key() != "1.deref.field:2" {
		t.Errorf("unexpected key %q", p.Key())
	}
	if !p.HasDeref() || LocalPath(1).HasDeref() {
		t.Errorf("unexpected HasDeref result")
	}
}

func TestCreatesAlias(t *testing.T) {
	opaque := Type{Kind: Opaque}
	ref := Type{Kind: Reference}
	cases := []struct {
		a        Assignment
		expected bool
	}{
		{Assignment{Kind: MoveAssign, Right: LocalPath(1), RightType: opaque}, true},
		{Assignment{Kind: RefAssign, Right: LocalPath(1), RightType: opaque}, true},
		{Assignment{Kind: AddressOfAssign, Right: LocalPath(1), RightType: opaque}, true},
		{Assignment{Kind: CopyAssign, Right: LocalPath(1), RightType: opaque}, false},
		{Assignment{Kind: CopyAssign, Right: LocalPath(1), RightType: ref}, true},
		{Assignment{Kind: CopyAssign, Right: LocalPath(1).Append(Projection{Kind: Deref}), RightType: opaque}, true},
	}
	for i, c := range cases {
		if c.a.CreatesAlias() != c.expected {
			t.Errorf("case %d: expected CreatesAlias() = %v", i, c.expected)
		}
	}
	if (Operand{Kind: ConstantOperand}).CreatesAlias() {
		t.Errorf("constants never create aliases")
	}
}
