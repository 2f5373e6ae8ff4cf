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

package funcutil

import (
	"testing"

	"golang.org/x/exp/slices"
)

func TestSetToOrderedSlice(t *testing.T) {
	s := SetToOrderedSlice(map[int]bool{4: true, 1: true, 3: false, 2: true})
	if !slices.Equal(s, []int{1, 2, 4}) {
		t.Errorf("expected [1 2 4], got %v", s)
	}
}

func TestMapAndContains(t *testing.T) {
	doubled := Map([]int{2, 4}, func(x int) int { return 2 * x })
	if !slices.Equal(doubled, []int{4, 8}) {
		t.Errorf("expected [4 8], got %v", doubled)
	}
	MapInPlace(doubled, func(x int) int { return x + 1 })
	if !slices.Equal(doubled, []int{5, 9}) {
		t.Errorf("expected [5 9], got %v", doubled)
	}
	if !Contains(doubled, 9) || Contains(doubled, 4) {
		t.Errorf("unexpected Contains result on %v", doubled)
	}
}
