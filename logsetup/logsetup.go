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

// Package logsetup configures the process logger once at startup, either for
// the local console or for Google Cloud Logging.
package logsetup

import (
	"context"
	"fmt"
	"os"

	"github.com/DomZippilli/pilot-cloud-function/metrics"
	"github.com/rs/zerolog"
)

// ServiceMarker is set by Cloud Run and Cloud Functions (2nd gen) in every
// managed execution environment.
const ServiceMarker = "K_SERVICE"

// LoggerNameKey is the field holding the logger name in every record.
const LoggerNameKey = "logger"

// ExecutionIDKey is the field holding the per-request execution id. The
// console leaves it out of the fixed line format.
const ExecutionIDKey = "execution_id"

// DefaultName is the logger name used when none is configured.
const DefaultName = "pilot"

// Backend selects where log records go.
type Backend int

const (
	LocalConsole Backend = iota
	ManagedCloud
)

func (b Backend) String() string {
	switch b {
	case LocalConsole:
		return "console"
	case ManagedCloud:
		return "cloud"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ResolveBackend picks ManagedCloud when the managed execution marker is
// present in the environment. lookup is usually os.LookupEnv.
func ResolveBackend(lookup func(string) (string, bool)) Backend {
	if v, ok := lookup(ServiceMarker); ok && v != "" {
		return ManagedCloud
	}
	return LocalConsole
}

// Configurator builds a logger for one backend.
type Configurator interface {
	Configure(ctx context.Context, level Severity) (*Handle, error)
}

// Options controls Configure. Nil configurators get defaults.
type Options struct {
	Backend Backend
	Level   Severity
	Console Configurator
	Cloud   Configurator
}

// Handle is the configured process logger. It is created once at startup and
// lives for the rest of the process.
type Handle struct {
	Logger  zerolog.Logger
	Backend Backend
	Level   Severity

	flush func() error
	close func() error
}

// Flush delivers any buffered records. It is a no-op for the console.
func (h *Handle) Flush() error {
	if h.flush == nil {
		return nil
	}
	return h.flush()
}

// Close flushes and releases the backend. It is a no-op for the console.
func (h *Handle) Close() error {
	if h.close == nil {
		return h.Flush()
	}
	return h.close()
}

// Configure builds the logger for opts.Backend and sets its threshold to
// opts.Level. Calling it again builds a fresh logger; the last one wins.
func Configure(ctx context.Context, opts Options) (*Handle, error) {
	var c Configurator
	switch opts.Backend {
	case ManagedCloud:
		c = opts.Cloud
		if c == nil {
			c = &CloudConfigurator{Name: DefaultName}
		}
	default:
		c = opts.Console
		if c == nil {
			c = &ConsoleConfigurator{Out: os.Stderr, Name: DefaultName}
		}
	}
	h, err := c.Configure(ctx, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("configure %v logging: %w", opts.Backend, err)
	}
	h.Backend = opts.Backend
	h.Level = opts.Level
	h.Logger = h.Logger.Level(opts.Level.ZerologLevel()).Hook(recordCounter{})
	return h, nil
}

// recordCounter counts every emitted record.
type recordCounter struct{}

func (recordCounter) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	metrics.LogRecords.WithLabelValues(levelName(level)).Inc()
}
