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
	"fmt"

	"cloud.google.com/go/logging"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity is a numeric log threshold. Larger is more severe.
type Severity int

const (
	NotSet   Severity = 0
	Debug    Severity = 10
	Info     Severity = 20
	Warning  Severity = 30
	Error    Severity = 40
	Critical Severity = 50
)

// severityNames maps upper-case level names to severities. WARN and FATAL
// are accepted as aliases.
var severityNames = map[string]Severity{
	"NOTSET":   NotSet,
	"DEBUG":    Debug,
	"INFO":     Info,
	"WARNING":  Warning,
	"WARN":     Warning,
	"ERROR":    Error,
	"CRITICAL": Critical,
	"FATAL":    Critical,
}

// Normalize converts a level given either as a number or as a
// case-insensitive name into a Severity.
//
// Numbers are returned unchanged, without any range check. Names are looked
// up after upper-casing; an unknown name, or a value of any other type,
// yields Info.
func Normalize(level interface{}) Severity {
	switch l := level.(type) {
	case Severity:
		return l
	case int:
		return Severity(l)
	case int8:
		return Severity(l)
	case int16:
		return Severity(l)
	case int32:
		return Severity(l)
	case int64:
		return Severity(l)
	case uint:
		return Severity(l)
	case uint8:
		return Severity(l)
	case uint16:
		return Severity(l)
	case uint32:
		return Severity(l)
	case uint64:
		return Severity(l)
	case string:
		return ParseSeverity(l)
	default:
		return Info
	}
}

// ParseSeverity looks up a level name, ignoring case. Unknown names yield
// Info.
func ParseSeverity(name string) Severity {
	// cases.Caser is stateful, so one per call.
	upper := cases.Upper(language.Und).String(name)
	if s, ok := severityNames[upper]; ok {
		return s
	}
	return Info
}

func (s Severity) String() string {
	switch s {
	case NotSet:
		return "NOTSET"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	}
	return fmt.Sprintf("Level %d", int(s))
}

// ZerologLevel returns the least severe zerolog level that still sits at or
// above s, so a threshold between two named severities drops the lower one.
func (s Severity) ZerologLevel() zerolog.Level {
	switch {
	case s <= NotSet:
		return zerolog.TraceLevel
	case s <= Debug:
		return zerolog.DebugLevel
	case s <= Info:
		return zerolog.InfoLevel
	case s <= Warning:
		return zerolog.WarnLevel
	case s <= Error:
		return zerolog.ErrorLevel
	case s <= Critical:
		return zerolog.FatalLevel
	default:
		return zerolog.PanicLevel
	}
}

// levelName renders a zerolog level with the names used in console output.
func levelName(l zerolog.Level) string {
	switch l {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return Debug.String()
	case zerolog.InfoLevel:
		return Info.String()
	case zerolog.WarnLevel:
		return Warning.String()
	case zerolog.ErrorLevel:
		return Error.String()
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return Critical.String()
	}
	return NotSet.String()
}

// CloudSeverity maps a zerolog level to a Cloud Logging severity.
func CloudSeverity(l zerolog.Level) logging.Severity {
	switch l {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return logging.Debug
	case zerolog.InfoLevel:
		return logging.Info
	case zerolog.WarnLevel:
		return logging.Warning
	case zerolog.ErrorLevel:
		return logging.Error
	case zerolog.FatalLevel:
		return logging.Critical
	case zerolog.PanicLevel:
		return logging.Alert
	}
	return logging.Default
}
