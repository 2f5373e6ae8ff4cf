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

// Package pfg implements the pointer flow graph of the memory checker.
//
// The nodes of the graph are access paths in a contextual call (a function and its immediate call site). A node
// that is destroyed by a drop terminator is an abstract object, identified by the node id. Flow edges carry
// points-to sets from their source to their destination; the propagation of the sets is implemented by the alias
// package using the Worklist defined here.
package pfg
