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

import "github.com/awslabs/ar-memcheck/internal/funcutil"

// DefaultMaxPathDepth is the default maximum number of projections in access paths created during propagation.
const DefaultMaxPathDepth = 6

// Debug topics, printed when open-debug is set and the topic is listed in debug-topics.
const (
	// TopicIR prints the function bodies once lowered
	TopicIR = "ir"
	// TopicAssign prints the effects considered in each block, and the constructs that are dropped
	TopicAssign = "assign"
	// TopicReachable prints the contextual calls reached by the expansion
	TopicReachable = "reachable"
	// TopicWorklist prints each delta popped from the worklist
	TopicWorklist = "worklist"
	// TopicPFG prints the pointer flow graph once the propagation has converged
	TopicPFG = "pfg"
	// TopicCallgraph prints the resolved call edges and the recursive cycles
	TopicCallgraph = "callgraph"
	// TopicCheck prints the raw findings of the detectors, before merging
	TopicCheck = "check"
	// TopicAll enables all topics
	TopicAll = "all"
)

var knownTopics = []string{TopicIR, TopicAssign, TopicReachable, TopicWorklist, TopicPFG, TopicCallgraph,
	TopicCheck, TopicAll}

func isKnownTopic(topic string) bool {
	return funcutil.Contains(knownTopics, topic)
}

// DefaultIgnoredCallees are callees that produce a fresh value: their result does not alias their arguments.
var DefaultIgnoredCallees = []string{
	"::clone$",
	"::to_owned$",
	"::to_string$",
}

// DefaultPassthroughCallees are accessors whose expansion would not add information to the analysis.
var DefaultPassthroughCallees = []string{
	"::identity$",
	"::as_ref$",
	"::as_mut$",
	"::borrow$",
	"::borrow_mut$",
	"::as_ptr$",
	"::as_mut_ptr$",
}
