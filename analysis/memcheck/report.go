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
	"encoding/json"
	"fmt"
	"io"

	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/internal/formatutil"
)

// WriteText writes the findings in a human readable format. Colors are only used on terminals.
func WriteText(w io.Writer, r Result) error {
	for _, u := range r.UAF {
		if err := writeFinding(w, "use after free memory bug may exists",
			u.Drop, describe("first drop here", u.DropVar),
			u.Deref, describe("then dereference here", u.DerefVar)); err != nil {
			return err
		}
	}
	for _, d := range r.DF {
		if err := writeFinding(w, "double free memory bug may exists",
			d.First, describe("first drop here", d.FirstVar),
			d.Then, describe("then drop here", d.ThenVar)); err != nil {
			return err
		}
	}
	return nil
}

func describe(text string, name string) string {
	if name == "" {
		return text + "."
	}
	return text + ", relative variable: " + formatutil.Sanitize(name)
}

func writeFinding(w io.Writer, title string, first ir.Location, firstText string, then ir.Location,
	thenText string) error {
	_, err := fmt.Fprintf(w, "%s%s %s\n  %s %s\n    %s\n  %s %s\n    %s\n\n",
		formatutil.Yellow("warning:"), formatutil.Cyan("(memory check)"), formatutil.Bold(title),
		formatutil.Faint("-->"), first, formatutil.Yellow(firstText),
		formatutil.Faint("-->"), then, formatutil.Yellow(thenText))
	return err
}

// WriteJSON writes the findings as an indented JSON document
func WriteJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
