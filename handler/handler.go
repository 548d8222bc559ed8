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

// Package handler holds the function's business logic and the HTTP adapter
// in front of it.
package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Payload is the decoded JSON body of one request.
type Payload map[string]interface{}

// EnvKey is the payload field printed by Handle.
const EnvKey = "env"

// Handler is framework-agnostic business logic.
type Handler struct {
	// Out receives the informational env output.
	Out io.Writer
}

// Handle prints the payload's env field and answers OK. It has no failure
// path; the payload is not validated.
func (h *Handler) Handle(ctx context.Context, payload Payload) (string, int) {
	if h.Out != nil {
		fmt.Fprintln(h.Out, payload[EnvKey])
	}
	return "OK", http.StatusOK
}
