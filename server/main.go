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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pilot "github.com/DomZippilli/pilot-cloud-function"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log := pilot.Logger()
	log.Info().Msg("starting server...")

	mux := http.NewServeMux()
	mux.HandleFunc("/", pilot.Main)
	mux.Handle("/metrics", promhttp.Handler())

	// Determine port for HTTP service.
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Info().Msgf("defaulting to port %s", port)
	}
	server := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Msgf("shutdown: %v", err)
		}
	}()

	// Start HTTP server.
	log.Info().Msgf("listening on port %s", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Msgf("serve: %v", err)
	}
	if err := pilot.Close(); err != nil {
		log.Error().Msgf("close logger: %v", err)
	}
}
