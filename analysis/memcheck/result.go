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

package memcheck

import (
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/analysis/pfg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// UafResult is a use-after-free finding: the memory dropped at Drop may be dereferenced at Deref.
// Variable names are empty when the front end did not provide them.
type UafResult struct {
	Deref    ir.Location `json:"deref"`
	DerefVar string      `json:"deref_var,omitempty"`
	Drop     ir.Location `json:"drop"`
	DropVar  string      `json:"drop_var,omitempty"`
}

// Named returns true if one of the variables of the finding has a name
func (r UafResult) Named() bool {
	return r.DerefVar != "" || r.DropVar != ""
}

// DfResult is a double-free finding: the memory dropped at First may be dropped again at Then.
type DfResult struct {
	First    ir.Location `json:"first_drop"`
	FirstVar string      `json:"first_drop_var,omitempty"`
	Then     ir.Location `json:"then_drop"`
	ThenVar  string      `json:"then_drop_var,omitempty"`
}

// Named returns true if one of the variables of the finding has a name
func (r DfResult) Named() bool {
	return r.FirstVar != "" || r.ThenVar != ""
}

// Result is the merged result of the analysis of all the entry points
type Result struct {
	UAF []UafResult `json:"use_after_free"`
	DF  []DfResult  `json:"double_free"`
}

// Count returns the number of findings
func (r Result) Count() int {
	return len(r.UAF) + len(r.DF)
}

// Filter returns the result without the findings that have a location for which suppressed returns true
func (r Result) Filter(suppressed func(loc ir.Location) bool) Result {
	res := Result{UAF: []UafResult{}, DF: []DfResult{}}
	for _, u := range r.UAF {
		if !suppressed(u.Deref) && !suppressed(u.Drop) {
			res.UAF = append(res.UAF, u)
		}
	}
	for _, d := range r.DF {
		if !suppressed(d.First) && !suppressed(d.Then) {
			res.DF = append(res.DF, d)
		}
	}
	return res
}

type locationPair struct {
	a ir.Location
	b ir.Location
}

// Merger groups findings by pair of locations, independently of the context or object that produced them.
// In a group, named findings are preferred over nameless ones, and distinct named findings are all kept.
type Merger struct {
	uaf map[locationPair][]UafResult
	df  map[locationPair][]DfResult
}

// NewMerger returns an empty merger
func NewMerger() *Merger {
	return &Merger{
		uaf: map[locationPair][]UafResult{},
		df:  map[locationPair][]DfResult{},
	}
}

// Add merges the raw findings of the graph g
func (m *Merger) Add(g *pfg.Graph, info CheckInfo) {
	uafs, dfs := info.Results(g)
	for _, u := range uafs {
		m.AddUAF(u)
	}
	for _, d := range dfs {
		m.AddDF(d)
	}
}

// AddUAF merges one use-after-free finding
func (m *Merger) AddUAF(r UafResult) {
	key := locationPair{r.Deref, r.Drop}
	m.uaf[key] = mergeInto(m.uaf[key], r, UafResult.Named)
}

// AddDF merges one double-free finding
func (m *Merger) AddDF(r DfResult) {
	key := locationPair{r.First, r.Then}
	m.df[key] = mergeInto(m.df[key], r, DfResult.Named)
}

func mergeInto[T comparable](group []T, r T, named func(T) bool) []T {
	if len(group) == 0 {
		return []T{r}
	}
	if !named(r) || slices.Contains(group, r) {
		return group
	}
	if len(group) == 1 && !named(group[0]) {
		return []T{r}
	}
	return append(group, r)
}

// Result returns the merged findings, sorted by location
func (m *Merger) Result() Result {
	res := Result{UAF: []UafResult{}, DF: []DfResult{}}
	for _, group := range maps.Values(m.uaf) {
		res.UAF = append(res.UAF, group...)
	}
	for _, group := range maps.Values(m.df) {
		res.DF = append(res.DF, group...)
	}
	slices.SortFunc(res.UAF, func(x, y UafResult) bool {
		return lessPair(x.Drop, x.Deref, x.DropVar+"\x00"+x.DerefVar, y.Drop, y.Deref, y.DropVar+"\x00"+y.DerefVar)
	})
	slices.SortFunc(res.DF, func(x, y DfResult) bool {
		return lessPair(x.First, x.Then, x.FirstVar+"\x00"+x.ThenVar, y.First, y.Then, y.FirstVar+"\x00"+y.ThenVar)
	})
	return res
}

func lessPair(a1, b1 ir.Location, names1 string, a2, b2 ir.Location, names2 string) bool {
	if a1 != a2 {
		return a1.Less(a2)
	}
	if b1 != b2 {
		return b1.Less(b2)
	}
	return names1 < names2
}
