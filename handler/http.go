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

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/DomZippilli/pilot-cloud-function/common"
	"github.com/DomZippilli/pilot-cloud-function/filter"
	"github.com/DomZippilli/pilot-cloud-function/logsetup"
	"github.com/DomZippilli/pilot-cloud-function/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExecutionIDHeader carries the Cloud Functions execution id, when present.
const ExecutionIDHeader = "Function-Execution-Id"

// DefaultMaxBodyBytes caps request bodies when the Adapter has no limit set.
var DefaultMaxBodyBytes = common.AsBytes(common.MB, 1)

// DecodePayload reads a JSON object from r. An empty, malformed or
// non-object body decodes to an empty Payload.
func DecodePayload(r io.Reader) Payload {
	payload := Payload{}
	if r == nil {
		return payload
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var decoded Payload
	if err := dec.Decode(&decoded); err != nil || decoded == nil {
		return payload
	}
	return decoded
}

// Adapter is the thin HTTP layer in front of a Handler.
type Adapter struct {
	Logger   zerolog.Logger
	Handler  *Handler
	Pipeline filter.Pipeline
	// MaxBodyBytes caps the body; 0 means DefaultMaxBodyBytes. An oversized
	// body is treated as unparseable.
	MaxBodyBytes int64
}

// ServeHTTP decodes the request's JSON body, logs it and delegates to the
// Handler. Every request is answered with the Handler's status and body.
func (a *Adapter) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	executionID := request.Header.Get(ExecutionIDHeader)
	if executionID == "" {
		executionID = uuid.NewString()
	}
	logger := a.Logger.With().Str(logsetup.ExecutionIDKey, executionID).Logger()
	ctx := logger.WithContext(request.Context())

	payload := a.readPayload(logger, response, request)
	logger.Info().Msgf("Received payload: %v", payload)

	body, status := a.Handler.Handle(ctx, payload)

	response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	response.Header().Set("Content-Length", strconv.Itoa(len(body)))
	response.WriteHeader(status)
	if _, err := filter.PipelineCopy(ctx, response, strings.NewReader(body), request, a.Pipeline); err != nil {
		logger.Error().Msgf("write response: %v", err)
	}
	metrics.Invocations.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (a *Adapter) readPayload(logger zerolog.Logger, response http.ResponseWriter, request *http.Request) Payload {
	if request.Body == nil {
		return Payload{}
	}
	limit := a.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(http.MaxBytesReader(response, request.Body, limit))
	if err != nil {
		logger.Debug().Msgf("read body: %v", err)
		return Payload{}
	}
	return DecodePayload(bytes.NewReader(raw))
}
