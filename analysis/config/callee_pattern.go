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

package config

import (
	"fmt"
	"regexp"

	"github.com/awslabs/ar-memcheck/internal/funcutil"
	"gopkg.in/yaml.v3"
)

// A CalleePattern identifies callees by their fully qualified name. The pattern is used as a regex when it compiles,
// and as a literal name otherwise.
type CalleePattern struct {
	Pattern string
	// This will not be part of the yaml config
	computedRegex *regexp.Regexp
}

// NewCalleePattern returns the compiled pattern for s
func NewCalleePattern(s string) CalleePattern {
	return compilePattern(CalleePattern{Pattern: s})
}

func compilePattern(p CalleePattern) CalleePattern {
	r, err := regexp.Compile(p.Pattern)
	if err != nil {
		p.computedRegex = nil
		return p
	}
	p.computedRegex = r
	return p
}

// Match returns true if name matches the pattern. An empty pattern never matches.
func (p CalleePattern) Match(name string) bool {
	if p.Pattern == "" {
		return false
	}
	if p.computedRegex != nil {
		return p.computedRegex.MatchString(name)
	}
	return p.Pattern == name
}

func (p CalleePattern) String() string {
	return p.Pattern
}

// UnmarshalYAML accepts either a plain string or a mapping with a "pattern" key.
func (p *CalleePattern) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		p.Pattern = value.Value
	case yaml.MappingNode:
		var m struct {
			Pattern string `yaml:"pattern"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		p.Pattern = m.Pattern
	default:
		return fmt.Errorf("line %d: callee pattern should be a string or have a pattern field", value.Line)
	}
	return nil
}

// MarshalYAML marshals the pattern as a plain string
func (p CalleePattern) MarshalYAML() (interface{}, error) {
	return p.Pattern, nil
}

// ExistsPattern is true if there is some pattern in a that matches name.
func ExistsPattern(a []CalleePattern, name string) bool {
	return funcutil.Exists(a, func(p CalleePattern) bool { return p.Match(name) })
}
