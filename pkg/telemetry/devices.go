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

import (
	"strings"

	"github.com/carverauto/droidctl/pkg/models"
)

// ParseDevices reads "adb devices". The banner line and daemon start-up
// messages are ignored.
func ParseDevices(raw string) []models.DeviceEntry {
	var entries []models.DeviceEntry

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}

		cols := strings.Fields(line)
		if len(cols) < 2 {
			continue
		}

		state := models.DeviceState(cols[1])

		switch state {
		case models.DeviceStateOnline, models.DeviceStateOffline, models.DeviceStateUnauthorized:
		default:
			state = models.DeviceStateUnknown
		}

		entries = append(entries, models.DeviceEntry{
			Serial:  cols[0],
			State:   state,
			Network: strings.Contains(cols[0], ":"),
		})
	}

	return entries
}

// FirstOnline returns the first device in the "device" state.
func FirstOnline(entries []models.DeviceEntry) (models.DeviceEntry, bool) {
	for _, e := range entries {
		if e.State == models.DeviceStateOnline {
			return e, true
		}
	}

	return models.DeviceEntry{}, false
}
