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

package graphutil_test

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/awslabs/ar-memcheck/internal/funcutil"
	"github.com/awslabs/ar-memcheck/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

func mkGraph(adj map[int64][]int64) graphutil.CGraph {
	edges := map[int64]map[int64]bool{}
	var keys []int64
	order := 0
	for k, succs := range adj {
		keys = append(keys, k)
		edges[k] = map[int64]bool{}
		for _, s := range succs {
			edges[k][s] = true
		}
		if int(k)+1 > order {
			order = int(k) + 1
		}
	}
	return graphutil.NewCGraph(order, keys, edges, nil)
}

func TestFindAllElementaryCycles(t *testing.T) {
	cg := mkGraph(map[int64][]int64{
		0: {1},
		1: {2},
		2: {4, 5},
		3: {8},
		4: {2},
		5: {0, 6},
		6: {4},
		7: {},
		8: {3, 9},
		9: {8},
	})
	stats := graph.Check(cg)
	t.Logf("Stats:\n\tsize: %d\n\tmulti: %d\n\tloops: %d\n\tisolated: %d",
		stats.Size, stats.Multi, stats.Loops, stats.Isolated)

	cycles := graphutil.FindAllElementaryCycles(cg)
	expected := []string{"01250", "242", "25642", "383", "898"}

	results := make([]string, len(cycles))
	for i, cycle := range cycles {
		results[i] = strings.Join(
			funcutil.Map(cycle, func(x int64) string { return strconv.Itoa(int(x)) }),
			"")
	}
	sort.Strings(results)
	if !slices.Equal(results, expected) {
		for i, s := range results {
			t.Logf("Cycle %d: %s", i, s)
		}
		t.Fatalf("Cycles not as expected")
	}
}

func TestFindSelfLoop(t *testing.T) {
	cg := mkGraph(map[int64][]int64{0: {0, 1}, 1: {}})
	cycles := graphutil.FindAllElementaryCycles(cg)
	if len(cycles) != 1 || !slices.Equal(cycles[0], []int64{0, 0}) {
		t.Errorf("expected only the self loop on 0, got %v", cycles)
	}
}

func TestInDegreesIgnoreSelfLoops(t *testing.T) {
	cg := mkGraph(map[int64][]int64{0: {0, 1}, 1: {2}, 2: {1}})
	deg := cg.InDegrees()
	if deg[0] != 0 || deg[1] != 2 || deg[2] != 1 {
		t.Errorf("unexpected in-degrees %v", deg)
	}
}

func TestBreadthFirstOnCGraph(t *testing.T) {
	cg := mkGraph(map[int64][]int64{0: {1}, 1: {2}, 2: {}, 3: {0}})
	reached := map[int]bool{}
	graph.BFS(cg, 0, func(v, w int, _ int64) { reached[w] = true })
	if !reached[1] || !reached[2] || reached[3] {
		t.Errorf("unexpected reachable set %v", reached)
	}
}
