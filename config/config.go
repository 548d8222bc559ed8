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

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/DomZippilli/pilot-cloud-function/common"
	"github.com/DomZippilli/pilot-cloud-function/logsetup"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration, resolved once at startup.
type Config struct {
	// LogLevel is a level name (DEBUG, INFO, WARNING, ERROR, CRITICAL).
	LogLevel string `yaml:"logLevel"`
	// Service is K_SERVICE; non-empty means managed cloud execution.
	Service       string `yaml:"service"`
	Revision      string `yaml:"revision"`
	Configuration string `yaml:"configuration"`
	ProjectID     string `yaml:"projectId"`
	LogID         string `yaml:"logId"`
	LoggerName    string `yaml:"loggerName"`
	MaxBodyBytes  int64  `yaml:"maxBodyBytes"`
	// Pipeline names the response pipeline, see Pipelines.
	Pipeline string `yaml:"pipeline"`
}

func defaultConfig() *Config {
	return &Config{
		LogLevel:     "INFO",
		LogID:        logsetup.DefaultLogID,
		LoggerName:   logsetup.DefaultName,
		MaxBodyBytes: common.AsBytes(common.MB, 1),
		Pipeline:     DefaultPipeline,
	}
}

// Load reads the optional YAML file named by CONFIG_PATH, then applies
// environment overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg, os.LookupEnv)
	return cfg, nil
}

// LoadEnv is Load without the config file.
func LoadEnv() (*Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(cfg, os.LookupEnv)
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	strs := map[string]*string{
		"LOG_LEVEL":            &cfg.LogLevel,
		logsetup.ServiceMarker: &cfg.Service,
		"K_REVISION":           &cfg.Revision,
		"K_CONFIGURATION":      &cfg.Configuration,
		"GOOGLE_CLOUD_PROJECT": &cfg.ProjectID,
		"LOG_ID":               &cfg.LogID,
		"LOGGER_NAME":          &cfg.LoggerName,
		"PIPELINE":             &cfg.Pipeline,
	}
	for key, field := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
	if v, ok := lookup("MAX_BODY_BYTES"); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			cfg.MaxBodyBytes = parsed
		}
	}
}

// Backend resolves the log backend from the managed execution marker.
func (c *Config) Backend() logsetup.Backend {
	return logsetup.ResolveBackend(func(key string) (string, bool) {
		if key == logsetup.ServiceMarker {
			return c.Service, c.Service != ""
		}
		return "", false
	})
}

// LogOptions builds the logger configuration for this Config. Console
// output goes to os.Stderr.
func (c *Config) LogOptions() logsetup.Options {
	return logsetup.Options{
		Backend: c.Backend(),
		Level:   logsetup.Normalize(c.LogLevel),
		Console: &logsetup.ConsoleConfigurator{
			Out:  os.Stderr,
			Name: c.LoggerName,
		},
		Cloud: &logsetup.CloudConfigurator{
			ProjectID:     c.ProjectID,
			LogID:         c.LogID,
			Name:          c.LoggerName,
			Service:       c.Service,
			Revision:      c.Revision,
			Configuration: c.Configuration,
		},
	}
}
