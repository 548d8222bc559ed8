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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Invocations counts function invocations by response status.
	Invocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pilot_invocations_total",
		Help: "The total number of function invocations served",
	}, []string{"status"})

	// LogRecords counts emitted log records by severity name.
	LogRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pilot_log_records_total",
		Help: "The total number of log records emitted",
	}, []string{"level"})
)
