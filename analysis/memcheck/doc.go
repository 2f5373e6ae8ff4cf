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

// Package memcheck contains the use-after-free and double-free detectors, which run on a converged pointer flow
// graph, and the merging and reporting of their findings.
//
// A use-after-free is reported when an object pointed to by a dereferenced place of a flow edge has a drop site
// from which the block of the edge can be reached. A double free is reported when a multi-drop cell holds another
// object and a drop site of one of them can be reached from a drop site of the other.
package memcheck
