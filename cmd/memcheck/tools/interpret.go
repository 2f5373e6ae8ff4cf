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

package tools

import "regexp"

// Captures errors happening before any analysis starts (IR files could not load)
var regexCouldNotLoad = regexp.MustCompile("could not (load program|read IR file|decode IR)")

// Captures the kind of error that happen when you put a flag at the end instead of IR files
var flagAsFile = regexp.MustCompile("open -(\\w+)")

// Captures the files that only contain declarations
var noBody = regexp.MustCompile("no function with a body")

// Captures the errors raised when the analysis meets an IR it cannot handle
var invariantViolated = regexp.MustCompile("analysis invariant violated")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if flagAsFile.MatchString(errMsg) {
			return "all command line flags should be before the paths to the IR files"
		}
		return "make sure the arguments are IR files (yaml or json) produced by the front end"
	}
	if noBody.MatchString(errMsg) {
		return "the IR files only declare functions; the front end should emit the bodies of the crate's functions"
	}
	if invariantViolated.MatchString(errMsg) {
		return "the IR is malformed or not supported; run with -open-debug -debug=ir to print the lowered functions"
	}
	return ""
}
