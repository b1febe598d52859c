/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package logger

import (
	"os"
	"strconv"
)

// Environment variables read by DefaultConfig.
const (
	EnvLevel      = "DROIDCTL_LOG_LEVEL"
	EnvDebug      = "DROIDCTL_DEBUG"
	EnvOutput     = "DROIDCTL_LOG_OUTPUT"
	EnvTimeFormat = "DROIDCTL_LOG_TIME_FORMAT"
)

// DefaultConfig logs at info level to stderr unless the environment
// overrides it. An unparsable DROIDCTL_DEBUG is ignored.
func DefaultConfig() *Config {
	cfg := &Config{Level: "info", Output: "stderr"}

	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = v
	}

	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output = v
	}

	cfg.TimeFormat = os.Getenv(EnvTimeFormat)

	if debug, err := strconv.ParseBool(os.Getenv(EnvDebug)); err == nil {
		cfg.Debug = debug
	}

	return cfg
}
