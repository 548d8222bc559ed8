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

package common

import (
	"fmt"
	"os"

	"cloud.google.com/go/compute/metadata"
)

// GetRuntimeProjectId returns the project the code runs in. The
// GOOGLE_CLOUD_PROJECT environment variable wins; otherwise the metadata
// server is asked, which only answers on Google Cloud.
func GetRuntimeProjectId() (string, error) {
	if id := os.Getenv("GOOGLE_CLOUD_PROJECT"); id != "" {
		return id, nil
	}
	if !metadata.OnGCE() {
		return "", fmt.Errorf("get project id: not running on Google Cloud and GOOGLE_CLOUD_PROJECT unset")
	}
	id, err := metadata.ProjectID()
	if err != nil {
		return "", fmt.Errorf("get project id: %w", err)
	}
	return id, nil
}

type ByteCount int

const (
	KB ByteCount = iota
	MB ByteCount = iota
	GB ByteCount = iota
)

// AsBytes takes a quantity of unit, and returns it in bytes.
func AsBytes(unit ByteCount, quantity int64) int64 {
	switch unit {
	case GB:
		return quantity * 1024 * 1024 * 1024
	case MB:
		return quantity * 1024 * 1024
	default:
		// KB
		return quantity * 1024
	}
}
