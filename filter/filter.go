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
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// MediaFilter functions can transform bytes from input to output.
type MediaFilter func(context.Context, MediaFilterHandle) error

// Pipeline is just a slice of MediaFilters. This alias is just here for semantics.
type Pipeline []MediaFilter

// MediaFilterHandle is a pair of input and output for the filter to read and write.
// Request and response are also included in case the filter needs to refer to
// or modify those.
type MediaFilterHandle struct {
	input    *io.PipeReader
	output   *io.PipeWriter
	request  *http.Request
	response http.ResponseWriter
}

// PipelineCopy copies input to response, with the pipeline applied to the
// input. An empty pipeline is a plain copy. Filters log through the logger
// carried by ctx.
func PipelineCopy(ctx context.Context, response http.ResponseWriter, input io.Reader, request *http.Request, pipeline Pipeline) (int64, error) {
	if len(pipeline) == 0 {
		return io.Copy(response, input)
	}
	inputReader, inputWriter := io.Pipe()
	// prime the pump by writing the input to the first pipe
	go func() {
		_, err := io.Copy(inputWriter, input)
		inputWriter.CloseWithError(err)
	}()
	lastFilterReader := inputReader
	for _, filter := range pipeline {
		filterReader, filterWriter := io.Pipe()
		go func(filter MediaFilter, in *io.PipeReader) {
			if err := filter(ctx, MediaFilterHandle{
				input:    in,
				output:   filterWriter,
				request:  request,
				response: response,
			}); err != nil {
				filterWriter.CloseWithError(err)
			}
		}(filter, lastFilterReader)
		lastFilterReader = filterReader
	}
	return io.Copy(response, lastFilterReader)
}

// FilterError is the preferred way to return errors from filters. The
// response status is already committed when filters run, so the error is
// logged and handed downstream by closing the filter's output with it.
func FilterError(ctx context.Context, handle MediaFilterHandle, msg string, v ...interface{}) error {
	err := fmt.Errorf(msg, v...)
	zerolog.Ctx(ctx).Error().Msgf("filter error! %v", err)
	handle.output.CloseWithError(err)
	return err
}
