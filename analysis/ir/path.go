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
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectionKind is the kind of a projection step in an access path
type ProjectionKind int

const (
	// Deref follows a pointer
	Deref ProjectionKind = iota
	// Field selects the field at Index
	Field
	// Index selects an element of an array or slice. All indices are the same abstract element.
	Index
	// Downcast selects the variant at Index of an enum
	Downcast
)

// Projection is one step of an access path
type Projection struct {
	Kind  ProjectionKind
	Index int
}

func (p Projection) String() string {
	switch p.Kind {
	case Deref:
		return "deref"
	case Field:
		return "field:" + strconv.Itoa(p.Index)
	case Index:
		return "index"
	case Downcast:
		return "downcast:" + strconv.Itoa(p.Index)
	}
	return "?"
}

// ParseProjection parses the textual form of a projection: "deref" (or "*"), "field:i", "index" (or "[]") and
// "downcast:v".
func ParseProjection(s string) (Projection, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	var kind ProjectionKind
	switch name {
	case "deref", "*":
		kind = Deref
	case "field":
		kind = Field
	case "index", "[]":
		kind = Index
	case "downcast":
		kind = Downcast
	default:
		return Projection{}, fmt.Errorf("unknown projection %q", s)
	}
	if kind == Field || kind == Downcast {
		if !hasArg {
			return Projection{}, fmt.Errorf("projection %q needs an index", s)
		}
		i, err := strconv.Atoi(arg)
		if err != nil || i < 0 {
			return Projection{}, fmt.Errorf("invalid index in projection %q", s)
		}
		return Projection{Kind: kind, Index: i}, nil
	}
	if hasArg {
		return Projection{}, fmt.Errorf("projection %q does not take an index", s)
	}
	return Projection{Kind: kind}, nil
}

// UnmarshalYAML reads the textual form of a projection
func (p *Projection) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: projection should be a string", value.Line)
	}
	proj, err := ParseProjection(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = proj
	return nil
}

// MarshalYAML writes the textual form of a projection
func (p Projection) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// AccessPath is a local slot followed by a sequence of projections
type AccessPath struct {
	Local       Local        `yaml:"local"`
	Projections []Projection `yaml:"projection,omitempty"`
}

// LocalPath returns the access path of the local without projections
func LocalPath(l Local) AccessPath {
	return AccessPath{Local: l}
}

// Depth returns the number of projections in the path
func (p AccessPath) Depth() int {
	return len(p.Projections)
}

// HasDeref returns true if the path contains a Deref projection
func (p AccessPath) HasDeref() bool {
	for _, proj := range p.Projections {
		if proj.Kind == Deref {
			return true
		}
	}
	return false
}

// Append returns a new path with the suffix projections added at the end. The receiver is not modified.
func (p AccessPath) Append(suffix ...Projection) AccessPath {
	projs := make([]Projection, 0, len(p.Projections)+len(suffix))
	projs = append(projs, p.Projections...)
	projs = append(projs, suffix...)
	return AccessPath{Local: p.Local, Projections: projs}
}

// Suffix returns the projections of p that come after the projections of prefix. The result is only meaningful
// if IsPrefix(prefix, p).
func (p AccessPath) Suffix(prefix AccessPath) []Projection {
	return p.Projections[len(prefix.Projections):]
}

// Key returns a string that uniquely identifies the path
func (p AccessPath) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(p.Local)))
	for _, proj := range p.Projections {
		b.WriteByte('.')
		b.WriteString(proj.String())
	}
	return b.String()
}

// String returns a compact representation of the path, e.g. (*_1).0
func (p AccessPath) String() string {
	s := p.Local.String()
	for _, proj := range p.Projections {
		switch proj.Kind {
		case Deref:
			s = "(*" + s + ")"
		case Field:
			s = s + "." + strconv.Itoa(proj.Index)
		case Index:
			s = s + "[_]"
		case Downcast:
			s = "(" + s + " as " + strconv.Itoa(proj.Index) + ")"
		}
	}
	return s
}

// IsPrefix returns true if a and b have the same local and the projections of a are a prefix of the projections
// of b. Every path is a prefix of itself.
func IsPrefix(a, b AccessPath) bool {
	if a.Local != b.Local || len(a.Projections) > len(b.Projections) {
		return false
	}
	for i, proj := range a.Projections {
		if b.Projections[i] != proj {
			return false
		}
	}
	return true
}

// IsStrictPrefix returns true if a is a prefix of b and a is shorter than b.
func IsStrictPrefix(a, b AccessPath) bool {
	return len(a.Projections) < len(b.Projections) && IsPrefix(a, b)
}
