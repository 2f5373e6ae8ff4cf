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

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

//go:embed testdata
var testfsys embed.FS

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := Load(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func testLoadOneFile(t *testing.T, filename string, expected Config) {
	configFileName, config, err := loadFromTestDir(filename)
	if err != nil {
		t.Fatalf("Error loading %q: %v", configFileName, err)
	}
	c1, err1 := yaml.Marshal(config)
	c2, err2 := yaml.Marshal(expected)
	if err1 != nil {
		t.Errorf("Error marshalling %v", config)
	}
	if err2 != nil {
		t.Errorf("Error marshalling %v", expected)
	}
	if string(c1) != string(c2) {
		t.Errorf("Error in %q:\n%q is not\n%q\n", filename, c1, c2)
	}
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.MaxPathDepth != DefaultMaxPathDepth {
		t.Errorf("Default for MaxPathDepth should be %d", DefaultMaxPathDepth)
	}
	if !c.IsIgnoredCallee("alloc::slice::<impl [T]>::to_owned") {
		t.Errorf("Default config should ignore to_owned")
	}
	if !c.IsPassthroughCallee("core::convert::AsRef::as_ref") {
		t.Errorf("Default config should pass through as_ref")
	}
	if c.IsPassthroughCallee("demo::as_reference") {
		t.Errorf("Default passthrough patterns should be anchored")
	}
}

func TestLoadMisc(t *testing.T) {
	expected := NewDefault()
	expected.LogLevel = int(DebugLevel)
	expected.Entries = []string{"demo.main", "server.run"}
	expected.MaxPathDepth = 3
	expected.CalleeFilters = CalleeFilters{
		Ignored:     []CalleePattern{NewCalleePattern("::clone$"), NewCalleePattern("alloc::fmt::format")},
		Passthrough: []CalleePattern{NewCalleePattern("core::convert::identity")},
	}
	testLoadOneFile(t, "config.yaml", *expected)

	expected = NewDefault()
	expected.OpenDebug = true
	expected.DebugTopics = []string{"pfg", "check"}
	expected.SilenceWarn = true
	testLoadOneFile(t, "config.json", *expected)
}

func TestLoadedPatternsAreCompiled(t *testing.T) {
	_, c, err := loadFromTestDir("config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsIgnoredCallee("alloc::string::String::clone") {
		t.Errorf("clone pattern should be used as a regex")
	}
	if c.IsIgnoredCallee("alloc::string::String::to_owned") {
		t.Errorf("loaded ignored patterns should replace the default ones")
	}
	if !c.IsPassthroughCallee("core::convert::identity") {
		t.Errorf("passthrough pattern should match its own name")
	}
}

func TestCalleePatternLiteralFallback(t *testing.T) {
	p := NewCalleePattern("Vec<u8>::push(")
	if p.computedRegex != nil {
		t.Fatalf("pattern %q should not compile", p.Pattern)
	}
	if !p.Match("Vec<u8>::push(") || p.Match("Vec<u8>::push") {
		t.Errorf("literal pattern should only match equal names")
	}
	if (CalleePattern{}).Match("anything") {
		t.Errorf("empty pattern should not match")
	}
}

func TestLoadBadFormatFileReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("bad_format.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load a badly formatted file.")
	}
}

func TestLoadUnknownTopicReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("bad_topic.yaml")
	if config != nil || err == nil || !strings.Contains(err.Error(), "nonsense") {
		t.Errorf("Expected error naming the unknown topic, got %v", err)
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	c, err := LoadFromFile(filepath.Join("testdata", "does-not-exist.yaml"))
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load non existent file.")
	}
}

func TestLoadWithReports(t *testing.T) {
	_, c, err := loadFromTestDir("config_with_reports.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove("example-report")
	if _, err := os.Stat(c.ReportsDir); err != nil {
		t.Errorf("Reports dir should have been created: %v", err)
	}
	if c.RelPath("x.yaml") != "testdata/x.yaml" {
		t.Errorf("RelPath should be relative to the config file, got %q", c.RelPath("x.yaml"))
	}
}

func TestLoadWithReportNoDirReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("config_with_reports_bad_dir.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load config with a report dir that has a non-existing" +
			"directory name")
	}
}

func TestLogGroupTopics(t *testing.T) {
	c := NewDefault()
	c.DebugTopics = []string{TopicPFG}
	buf := &bytes.Buffer{}

	l := NewLogGroup(c)
	l.SetAllOutput(buf)
	l.Topicf(TopicPFG, "hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("topics should not print when open-debug is not set")
	}

	c.OpenDebug = true
	l = NewLogGroup(c)
	l.SetAllOutput(buf)
	l.Topicf(TopicPFG, "shown %d", 2)
	l.Topicf(TopicCheck, "hidden %d", 3)
	if out := buf.String(); !strings.Contains(out, "[pfg] shown 2") || strings.Contains(out, "hidden") {
		t.Errorf("unexpected topic output %q", out)
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	buf := &bytes.Buffer{}
	l := NewLogGroup(c)
	l.SetAllOutput(buf)
	l.SetAllFlags(0)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("err")
	if out := buf.String(); out != "[WARN] warn\n[ERROR] err\n" {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestExistsPattern(t *testing.T) {
	patterns := []CalleePattern{NewCalleePattern("::as_ref$"), NewCalleePattern("Vec<u8>::push(")}
	for name, expected := range map[string]bool{
		"demo::Buf::as_ref":     true,
		"demo::Buf::as_ref_mut": false,
		"Vec<u8>::push(":        true,
		"alloc::vec::Vec::push": false,
	} {
		if ExistsPattern(patterns, name) != expected {
			t.Errorf("ExistsPattern(%s) should be %v", name, expected)
		}
	}
	if ExistsPattern(nil, "demo::main") {
		t.Errorf("no pattern should match nothing")
	}
}
