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

package pfg

import "golang.org/x/tools/container/intsets"

// WorkItem is a set of objects scheduled to be added to a node
type WorkItem struct {
	Node NodeID
	Set  *intsets.Sparse
}

// Worklist is the FIFO queue of the propagation
type Worklist struct {
	items []WorkItem
}

// NewWorklist returns an empty worklist
func NewWorklist() *Worklist {
	return &Worklist{}
}

// Push schedules a copy of set on the node
func (w *Worklist) Push(node NodeID, set *intsets.Sparse) {
	s := &intsets.Sparse{}
	s.Copy(set)
	w.items = append(w.items, WorkItem{Node: node, Set: s})
}

// PushObject schedules the single object on the node
func (w *Worklist) PushObject(node NodeID, object NodeID) {
	s := &intsets.Sparse{}
	s.Insert(int(object))
	w.items = append(w.items, WorkItem{Node: node, Set: s})
}

// Pop removes and returns the first item of the worklist. The boolean is false when the worklist is empty.
func (w *Worklist) Pop() (WorkItem, bool) {
	if len(w.items) == 0 {
		return WorkItem{}, false
	}
	item := w.items[0]
	w.items[0] = WorkItem{}
	w.items = w.items[1:]
	return item, true
}

// Len returns the number of scheduled items
func (w *Worklist) Len() int {
	return len(w.items)
}

// Reorder calls f on the pending items, which f may permute in place.
func (w *Worklist) Reorder(f func(items []WorkItem)) {
	f(w.items)
}
