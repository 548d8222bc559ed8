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

// Package pilot is the entry point of the pilot Cloud Function.
package pilot

import (
	"context"
	"net/http"
	"os"

	"github.com/DomZippilli/pilot-cloud-function/config"
	"github.com/DomZippilli/pilot-cloud-function/handler"
	"github.com/DomZippilli/pilot-cloud-function/logsetup"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/rs/zerolog"
)

// FunctionName is the name Main is registered under.
const FunctionName = "main"

var logHandle *logsetup.Handle
var adapter *handler.Adapter

func init() {
	setup(context.Background())
	functions.HTTP(FunctionName, Main)
}

// setup configures logging and the adapter. It never fails: a broken config
// file falls back to defaults and a cloud logging failure falls back to the
// console, both reported through whatever logger ends up configured.
func setup(ctx context.Context) {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg, _ = config.LoadEnv()
	}
	opts := cfg.LogOptions()
	h, err := logsetup.Configure(ctx, opts)
	if err != nil {
		opts.Backend = logsetup.LocalConsole
		h, _ = logsetup.Configure(ctx, opts)
		h.Logger.Error().Msgf("setup: %v; using console logging", err)
	}
	if cfgErr != nil {
		h.Logger.Error().Msgf("setup: %v; using environment only", cfgErr)
	}
	h.Logger.Debug().Msgf("logging to %v at %v", h.Backend, h.Level)
	pipeline, ok := cfg.ResponsePipeline()
	if !ok {
		h.Logger.Warn().Msgf("setup: unknown pipeline %q; using %v", cfg.Pipeline, config.DefaultPipeline)
	}
	logHandle = h
	adapter = &handler.Adapter{
		Logger:       h.Logger,
		Handler:      &handler.Handler{Out: os.Stdout},
		Pipeline:     pipeline,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Main is the entry point for the cloud function. It answers every request
// with 200 OK after logging its JSON payload.
func Main(response http.ResponseWriter, request *http.Request) {
	adapter.ServeHTTP(response, request)
	// instances may be throttled between requests; don't leave entries
	// sitting in the buffer.
	if err := logHandle.Flush(); err != nil {
		logHandle.Logger.Error().Msgf("flush: %v", err)
	}
}

// Close flushes and releases the logger. Call it once on shutdown.
func Close() error {
	return logHandle.Close()
}

// Logger returns the process logger configured at startup.
func Logger() zerolog.Logger {
	return logHandle.Logger
}
