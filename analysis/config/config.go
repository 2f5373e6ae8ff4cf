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
	"fmt"
	"os"
	"path"

	"github.com/awslabs/ar-memcheck/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return LoadFromFile(configFile)
}

// Config contains the options of the memory checker and the lists of callee patterns that change how calls are
// expanded.
// If some field is not defined in the config file, it will keep its default value (see NewDefault).
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// CalleeFilters contains the patterns of callees whose calls are not expanded
	CalleeFilters CalleeFilters `yaml:"callee-filters"`
}

// CalleeFilters lists callee name patterns that receive a special treatment when the analysis meets a call.
type CalleeFilters struct {
	// A call to an ignored callee that cannot be resolved does not link its arguments to its return value.
	Ignored []CalleePattern `yaml:"ignored"`

	// Passthrough callees without a body are not linked, and their dispatch candidates are not expanded.
	Passthrough []CalleePattern `yaml:"passthrough"`
}

// Options holds the global options of the analysis
type Options struct {
	// ReportsDir is the directory where the JSON report will be stored. If empty, no report file is written.
	ReportsDir string `yaml:"reports-dir"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`

	// DebugTopics is the list of debug topics that are printed when OpenDebug is set. See the Topic* constants.
	DebugTopics []string `yaml:"debug-topics"`

	// OpenDebug enables the output of the debug topics.
	OpenDebug bool `yaml:"open-debug"`

	// Entries is a list of dotted name suffixes (e.g. "server.run") identifying the entry functions. When empty,
	// the entry functions are detected from the call graph.
	Entries []string `yaml:"entries"`

	// MaxPathDepth limits the number of projections of the access paths that the propagation creates on demand.
	// Values <= 0 are replaced by DefaultMaxPathDepth.
	MaxPathDepth int `yaml:"max-path-depth"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		CalleeFilters: CalleeFilters{
			Ignored:     funcutil.Map(DefaultIgnoredCallees, NewCalleePattern),
			Passthrough: funcutil.Map(DefaultPassthroughCallees, NewCalleePattern),
		},
		Options: Options{
			ReportsDir:   "",
			LogLevel:     int(InfoLevel),
			SilenceWarn:  false,
			DebugTopics:  nil,
			OpenDebug:    false,
			Entries:      nil,
			MaxPathDepth: DefaultMaxPathDepth,
		},
	}
}

// LoadFromFile reads a configuration from a file
func LoadFromFile(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Load(filename, b)
}

// Load parses the contents of a configuration file. The filename is used to resolve relative paths.
func Load(filename string, contents []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	if cfg.ReportsDir != "" {
		if err := setReportsDir(cfg); err != nil {
			return nil, err
		}
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxPathDepth <= 0 {
		cfg.MaxPathDepth = DefaultMaxPathDepth
	}

	if err := cfg.SetDebugTopics(cfg.DebugTopics); err != nil {
		return nil, err
	}

	cfg.CompilePatterns()
	return cfg, nil
}

// SetDebugTopics sets the debug topics of the configuration. Returns an error if a topic is unknown.
func (c *Config) SetDebugTopics(topics []string) error {
	for _, topic := range topics {
		if !isKnownTopic(topic) {
			return fmt.Errorf("unknown debug topic %q", topic)
		}
	}
	c.DebugTopics = topics
	return nil
}

// CompilePatterns compiles the callee patterns into regexes. This needs to be called again when patterns are
// modified after loading.
func (c *Config) CompilePatterns() {
	funcutil.MapInPlace(c.CalleeFilters.Ignored, compilePattern)
	funcutil.MapInPlace(c.CalleeFilters.Passthrough, compilePattern)
}

func setReportsDir(c *Config) error {
	err := os.Mkdir(c.ReportsDir, 0750)
	if err != nil {
		if !os.IsExist(err) {
			return fmt.Errorf("could not create directory %s", c.ReportsDir)
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// IsIgnoredCallee returns true if the callee name matches one of the ignored callee patterns
func (c Config) IsIgnoredCallee(name string) bool {
	return ExistsPattern(c.CalleeFilters.Ignored, name)
}

// IsPassthroughCallee returns true if the callee name matches one of the passthrough callee patterns
func (c Config) IsPassthroughCallee(name string) bool {
	return ExistsPattern(c.CalleeFilters.Passthrough, name)
}
