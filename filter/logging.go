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

package filter

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// LogRequest doesn't modify the response. It simply logs the request it
// answered and how many bytes went out.
func LogRequest(ctx context.Context, handle MediaFilterHandle) error {
	defer handle.input.Close()
	defer handle.output.Close()
	bytesSent, err := io.Copy(handle.output, handle.input)
	if err != nil {
		return FilterError(ctx, handle, "logrequest filter: %v", err)
	}
	zerolog.Ctx(ctx).Info().Msgf("%v %v %v sent %vB",
		handle.request.RemoteAddr,
		handle.request.Method,
		handle.request.URL,
		bytesSent)
	return nil
}
