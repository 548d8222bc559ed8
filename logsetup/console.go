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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleTimeFormat is the timestamp layout of console records.
const ConsoleTimeFormat = "2006-01-02 15:04:05"

// ConsoleConfigurator writes records to Out as
// "<timestamp> - <logger-name> - <level> - <message>".
type ConsoleConfigurator struct {
	Out  io.Writer
	Name string
}

func (c *ConsoleConfigurator) Configure(ctx context.Context, level Severity) (*Handle, error) {
	if c.Out == nil {
		return nil, fmt.Errorf("console configurator: nil writer")
	}
	name := c.Name
	if name == "" {
		name = DefaultName
	}
	w := newConsoleWriter(c.Out, name)
	logger := zerolog.New(w).With().
		Timestamp().
		Str(LoggerNameKey, name).
		Logger()
	return &Handle{Logger: logger}, nil
}

// newConsoleWriter lays out the fixed parts as "ts - name - LEVEL - msg".
// The logger name is constant per writer, so it rides on the timestamp part.
// Fields set on every record are kept out of the line.
func newConsoleWriter(out io.Writer, name string) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		PartsOrder:    []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude: []string{LoggerNameKey, ExecutionIDKey},
		FormatTimestamp: func(i interface{}) string {
			ts := fmt.Sprint(i)
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				ts = t.Local().Format(ConsoleTimeFormat)
			}
			return ts + " - " + name
		},
		FormatLevel: func(i interface{}) string {
			l, err := zerolog.ParseLevel(fmt.Sprint(i))
			if err != nil {
				return "- " + NotSet.String()
			}
			return "- " + levelName(l)
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return "-"
			}
			return "- " + fmt.Sprint(i)
		},
	}
}
