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

/*
Package ir contains the intermediate representation consumed by the memory checker.

A front end describes each function of the program as a control-flow graph of basic blocks over typed local slots.
Blocks contain assignments, and end with at most one call or destructor (drop) terminator. The front end writes
the program in a yaml (or JSON) file, see [File]; [LoadFiles] reads such files into a [Program].

Access paths are a local slot followed by projections. Projections are written as strings in the files:

	place: {local: 1, projection: [deref, "field:0"]}

is the path (*_1).0. Function bodies are lowered on demand by [Program.Function]: rvalues are classified into
copies, moves, borrows and raw address-of, and the constructs that the analysis does not model are dropped.
*/
package ir
