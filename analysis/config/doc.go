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
Package config provides a simple way to manage configuration files.

Use [LoadFromFile](filename) to load a configuration from a specific filename, or [Load](filename, contents) when
the contents have already been read.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml or json format. The top-level fields can be any of the fields defined in the Config
struct type. The other fields are defined by the types of the fields of [Config] and nested struct types.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  entries:
	    - server.run
	  open-debug: true
	  debug-topics: [pfg, check]
	callee-filters:
	  ignored:
	    - "::clone$"
	  passthrough:
	    - pattern: "::as_ref$"

Callee patterns are regexes when they compile, and literal names otherwise. Specifying a list of patterns replaces
the default list.
*/
package config
