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

package logsetup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/logging"
	"github.com/DomZippilli/pilot-cloud-function/common"
	"github.com/rs/zerolog"
	mrpb "google.golang.org/genproto/googleapis/api/monitoredres"
)

// DefaultLogID is the Cloud Logging log name used when none is configured.
const DefaultLogID = "pilot"

// CloudConfigurator sends records to Cloud Logging through a logging.Client.
type CloudConfigurator struct {
	// ProjectID is detected from the runtime when empty.
	ProjectID string
	LogID     string
	Name      string
	// Service, Revision and Configuration label the Cloud Run revision
	// every entry is attached to. No resource is set when Service is empty.
	Service       string
	Revision      string
	Configuration string
}

func (c *CloudConfigurator) Configure(ctx context.Context, level Severity) (*Handle, error) {
	projectID, resource, err := c.prepare()
	if err != nil {
		return nil, fmt.Errorf("cloud configurator: %w", err)
	}
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("cloud configurator: new client: %w", err)
	}
	// the client reports async delivery failures here; there is no logger
	// to report them to but stderr.
	client.OnError = func(err error) {
		fmt.Fprintf(os.Stderr, "cloud logging: %v\n", err)
	}
	logID := c.LogID
	if logID == "" {
		logID = DefaultLogID
	}
	var opts []logging.LoggerOption
	if resource != nil {
		opts = append(opts, logging.CommonResource(resource))
	}
	h := newCloudHandle(client.Logger(logID, opts...), c.Name)
	h.close = client.Close
	return h, nil
}

// prepare resolves the project and builds the monitored resource from it.
func (c *CloudConfigurator) prepare() (string, *mrpb.MonitoredResource, error) {
	projectID := c.ProjectID
	if projectID == "" {
		var err error
		projectID, err = common.GetRuntimeProjectId()
		if err != nil {
			return "", nil, err
		}
	}
	if c.Service == "" {
		return projectID, nil, nil
	}
	return projectID, CloudRunResource(projectID, c.Service, c.Revision, c.Configuration), nil
}

// CloudRunResource describes a Cloud Run revision (which includes 2nd gen
// Cloud Functions) as a monitored resource. Empty labels are left out.
func CloudRunResource(projectID, service, revision, configuration string) *mrpb.MonitoredResource {
	labels := map[string]string{}
	for k, v := range map[string]string{
		"project_id":         projectID,
		"service_name":       service,
		"revision_name":      revision,
		"configuration_name": configuration,
	} {
		if v != "" {
			labels[k] = v
		}
	}
	return &mrpb.MonitoredResource{
		Type:   "cloud_run_revision",
		Labels: labels,
	}
}

// entryLogger is the part of *logging.Logger the cloud writer needs.
type entryLogger interface {
	Log(logging.Entry)
	Flush() error
}

func newCloudHandle(l entryLogger, name string) *Handle {
	if name == "" {
		name = DefaultName
	}
	// Cloud Logging stamps entries itself, so no timestamp field.
	logger := zerolog.New(&cloudWriter{logger: l}).With().
		Str(LoggerNameKey, name).
		Logger()
	return &Handle{Logger: logger, flush: l.Flush}
}

// cloudWriter forwards each zerolog record as a JSON payload entry.
type cloudWriter struct {
	logger entryLogger
}

func (w *cloudWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *cloudWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	// zerolog reuses p once we return, and the client buffers entries.
	payload := make(json.RawMessage, len(bytes.TrimSpace(p)))
	copy(payload, bytes.TrimSpace(p))
	w.logger.Log(logging.Entry{
		Severity: CloudSeverity(level),
		Payload:  payload,
	})
	return len(p), nil
}
