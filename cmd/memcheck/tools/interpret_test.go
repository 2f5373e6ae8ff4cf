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

import (
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint for %q: %q; check and update error message if necessary", errorMsg, hint)
	}
}

func TestHintForFlagAfterFiles(t *testing.T) {
	errorMsg := "error: could not load program: could not read IR file: open -json: no such file or directory"
	containedHint := "all command line flags should be before the paths"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForFailedDecode(t *testing.T) {
	errorMsg := "error: could not load program: main.yaml: could not decode IR: yaml: line 3: field foo not found"
	containedHint := "make sure the arguments are IR files"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForDeclarationsOnly(t *testing.T) {
	errorMsg := "error: could not load program: no function with a body in [decls.yaml]"
	// the load error hint takes precedence
	containedHint := "make sure the arguments are IR files"
	validateHint(t, errorMsg, containedHint)
	validateHint(t, "no function with a body in [decls.yaml]", "the IR files only declare functions")
}

func TestHintForInvariant(t *testing.T) {
	errorMsg := "error: analysis of demo::main aborted: analysis invariant violated: destination _9 of call to " +
		"ext::make in demo::main is not declared"
	containedHint := "-debug=ir"
	validateHint(t, errorMsg, containedHint)
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("something else"); hint != "" {
		t.Errorf("expected no hint, got %q", hint)
	}
}

func TestListFlag(t *testing.T) {
	var l ListFlag
	if err := l.Set("a, b,,c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Set("d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.String() != "a,b,c,d" {
		t.Errorf("expected a,b,c,d, got %s", l.String())
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("", true)
	if err != nil {
		t.Fatalf("default config should load: %v", err)
	}
	if !cfg.Verbose() {
		t.Errorf("verbose flag should raise the log level")
	}
	if _, err := LoadConfig("does-not-exist.yaml", false); err == nil {
		t.Errorf("loading a missing config file should fail")
	}
}
