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

package telemetry

import "strings"

// LogLevel is the priority of a logcat line.
type LogLevel string

const (
	LogVerbose LogLevel = "verbose"
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
	LogFatal   LogLevel = "fatal"
)

// ParseLogLevel classifies a "logcat -v brief" line by its "X/" prefix.
// Unrecognised lines are treated as info.
func ParseLogLevel(line string) LogLevel {
	line = strings.TrimLeft(line, " \t")
	if len(line) < 2 || line[1] != '/' {
		return LogInfo
	}

	switch line[0] {
	case 'V':
		return LogVerbose
	case 'D':
		return LogDebug
	case 'W':
		return LogWarning
	case 'E':
		return LogError
	case 'F', 'A':
		return LogFatal
	default:
		return LogInfo
	}
}
