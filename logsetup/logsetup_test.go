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
	"errors"
	"regexp"
	"strings"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/DomZippilli/pilot-cloud-function/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolveBackend(t *testing.T) {
	type TestCase struct {
		env  map[string]string
		want Backend
	}

	tcs := []TestCase{
		{map[string]string{}, LocalConsole},
		{map[string]string{"K_SERVICE": ""}, LocalConsole},
		{map[string]string{"K_REVISION": "rev-1"}, LocalConsole},
		{map[string]string{"K_SERVICE": "pilot"}, ManagedCloud},
	}

	for _, tc := range tcs {
		got := ResolveBackend(lookupFrom(tc.env))
		if got != tc.want {
			t.Fatalf("env %v got: %v, want: %v", tc.env, got, tc.want)
		}
	}
}

// recordingConfigurator notes that it was used and hands out a console
// logger on a buffer.
type recordingConfigurator struct {
	calls []Severity
	out   bytes.Buffer
	err   error
}

func (r *recordingConfigurator) Configure(ctx context.Context, level Severity) (*Handle, error) {
	r.calls = append(r.calls, level)
	if r.err != nil {
		return nil, r.err
	}
	return (&ConsoleConfigurator{Out: &r.out, Name: "test"}).Configure(ctx, level)
}

func TestConfigureDispatch(t *testing.T) {
	ctx := context.Background()
	for _, env := range []map[string]string{{}, {"K_SERVICE": "pilot"}} {
		console, cloud := &recordingConfigurator{}, &recordingConfigurator{}
		backend := ResolveBackend(lookupFrom(env))
		h, err := Configure(ctx, Options{
			Backend: backend,
			Level:   Debug,
			Console: console,
			Cloud:   cloud,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Backend != backend || h.Level != Debug {
			t.Fatalf("got: %v/%v, want: %v/%v", h.Backend, h.Level, backend, Debug)
		}
		wantConsole, wantCloud := 1, 0
		if backend == ManagedCloud {
			wantConsole, wantCloud = 0, 1
		}
		if len(console.calls) != wantConsole || len(cloud.calls) != wantCloud {
			t.Fatalf("env %v: console calls %v, cloud calls %v", env, console.calls, cloud.calls)
		}
	}
}

func TestConfigureError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Configure(context.Background(), Options{
		Backend: ManagedCloud,
		Cloud:   &recordingConfigurator{err: boom},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got: %v, want: %v", err, boom)
	}
}

var consoleLine = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - test - (\w+) - (.*)$`)

func TestConsoleFormat(t *testing.T) {
	console := &recordingConfigurator{}
	h, err := Configure(context.Background(), Options{
		Backend: LocalConsole,
		Level:   Info,
		Console: console,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Logger.Debug().Msg("hidden")
	h.Logger.Info().Msg("hello")
	h.Logger.Warn().Msg("careful")

	lines := strings.Split(strings.TrimSpace(console.out.String()), "\n")
	got := [][]string{}
	for _, line := range lines {
		m := consoleLine.FindStringSubmatch(line)
		if m == nil {
			t.Fatalf("unexpected console line %q", line)
		}
		got = append(got, m[1:])
	}
	want := [][]string{
		{"INFO", "hello"},
		{"WARNING", "careful"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error("-want +got", diff)
	}
}

func TestConsoleReconfigure(t *testing.T) {
	var first, second bytes.Buffer
	ctx := context.Background()
	Configure(ctx, Options{Level: Info, Console: &ConsoleConfigurator{Out: &first}})
	h, err := Configure(ctx, Options{Level: Error, Console: &ConsoleConfigurator{Out: &second}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Logger.Warn().Msg("dropped")
	h.Logger.Error().Msg("kept")
	if first.Len() != 0 {
		t.Fatalf("first writer got output: %q", first.String())
	}
	if !strings.Contains(second.String(), " - pilot - ERROR - kept") || strings.Contains(second.String(), "dropped") {
		t.Fatalf("unexpected output: %q", second.String())
	}
}

// fakeEntryLogger stands in for a *logging.Logger.
type fakeEntryLogger struct {
	entries []logging.Entry
	flushes int
}

func (f *fakeEntryLogger) Log(e logging.Entry) {
	f.entries = append(f.entries, e)
}

func (f *fakeEntryLogger) Flush() error {
	f.flushes++
	return nil
}

type fakeCloudConfigurator struct {
	logger *fakeEntryLogger
}

func (f *fakeCloudConfigurator) Configure(ctx context.Context, level Severity) (*Handle, error) {
	return newCloudHandle(f.logger, "test"), nil
}

func TestCloudWriter(t *testing.T) {
	fake := &fakeEntryLogger{}
	h, err := Configure(context.Background(), Options{
		Backend: ManagedCloud,
		Level:   Warning,
		Cloud:   &fakeCloudConfigurator{logger: fake},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := testutil.ToFloat64(metrics.LogRecords.WithLabelValues("ERROR"))

	h.Logger.Info().Msg("dropped")
	h.Logger.Error().Str("k", "v").Msg("kept")

	if len(fake.entries) != 1 {
		t.Fatalf("got %v entries, want 1", len(fake.entries))
	}
	entry := fake.entries[0]
	if entry.Severity != logging.Error {
		t.Fatalf("got: %v, want: %v", entry.Severity, logging.Error)
	}
	raw, ok := entry.Payload.(json.RawMessage)
	if !ok {
		t.Fatalf("payload is %T, want json.RawMessage", entry.Payload)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("payload %q: %v", raw, err)
	}
	want := map[string]interface{}{
		"level":   "error",
		"logger":  "test",
		"k":       "v",
		"message": "kept",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error("-want +got", diff)
	}

	if after := testutil.ToFloat64(metrics.LogRecords.WithLabelValues("ERROR")); after != before+1 {
		t.Fatalf("log record counter got: %v, want: %v", after, before+1)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.flushes != 1 {
		t.Fatalf("got %v flushes, want 1", fake.flushes)
	}
}

func TestCloudRunResource(t *testing.T) {
	got := CloudRunResource("proj", "svc", "", "cfg")
	want := map[string]string{
		"project_id":         "proj",
		"service_name":       "svc",
		"configuration_name": "cfg",
	}
	if got.Type != "cloud_run_revision" {
		t.Fatalf("got: %v, want: %v", got.Type, "cloud_run_revision")
	}
	if diff := cmp.Diff(want, got.Labels); diff != "" {
		t.Error("-want +got", diff)
	}
}

// TestCloudPrepareDetectedProject checks that a project found at runtime
// ends up on the monitored resource.
func TestCloudPrepareDetectedProject(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "detected-project")
	c := &CloudConfigurator{Service: "svc", Revision: "svc-00001"}
	projectID, resource, err := c.prepare()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if projectID != "detected-project" {
		t.Fatalf("got: %v, want: %v", projectID, "detected-project")
	}
	want := map[string]string{
		"project_id":    "detected-project",
		"service_name":  "svc",
		"revision_name": "svc-00001",
	}
	if diff := cmp.Diff(want, resource.Labels); diff != "" {
		t.Error("-want +got", diff)
	}
}

func TestCloudPrepareNoService(t *testing.T) {
	c := &CloudConfigurator{ProjectID: "proj"}
	projectID, resource, err := c.prepare()
	if err != nil || projectID != "proj" || resource != nil {
		t.Fatalf("got: (%v, %v, %v), want: (proj, <nil>, <nil>)", projectID, resource, err)
	}
}
