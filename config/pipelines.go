// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/DomZippilli/pilot-cloud-function/filter"
)

// DEFAULT: Responses are sent as-is and the request is logged.
var LoggingOnly = filter.Pipeline{
	filter.LogRequest,
}

// EXAMPLE: No funny stuff.
var NoFilters = filter.Pipeline{}

// DefaultPipeline names the pipeline used when none is configured.
const DefaultPipeline = "logging"

// Pipelines maps the names accepted by the pipeline setting to pipelines.
var Pipelines = map[string]filter.Pipeline{
	DefaultPipeline: LoggingOnly,
	"none":          NoFilters,
}

// ResponsePipeline returns the configured pipeline. An unknown name gets
// LoggingOnly and false.
func (c *Config) ResponsePipeline() (filter.Pipeline, bool) {
	if p, ok := Pipelines[c.Pipeline]; ok {
		return p, true
	}
	return LoggingOnly, false
}
