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
	"regexp"

	"github.com/carverauto/droidctl/pkg/models"
)

var (
	displaySizeRe    = regexp.MustCompile(`(Physical|Override) size:\s*(\d+x\d+)`)
	displayDensityRe = regexp.MustCompile(`(Physical|Override) density:\s*(\d+)`)
	refreshRateRe    = regexp.MustCompile(`mRefreshRate=([\d.]+)`)
)

// ParseDisplaySize reads "wm size". An override takes precedence over the physical size.
func ParseDisplaySize(raw string) string {
	return physicalOrOverride(displaySizeRe, raw)
}

// ParseDensity reads "wm density". An override takes precedence over the physical density.
func ParseDensity(raw string) string {
	return physicalOrOverride(displayDensityRe, raw)
}

// ParseRefreshRate returns the first mRefreshRate of "dumpsys display" with
// its decimals intact, so it can be written back unchanged.
func ParseRefreshRate(raw string) string {
	if m := refreshRateRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}

	return models.NotAvailable
}

// ParseDisplaySettings combines the three outputs.
func ParseDisplaySettings(sizeRaw, densityRaw, displayRaw string) models.DisplaySettings {
	return models.DisplaySettings{
		Resolution:  ParseDisplaySize(sizeRaw),
		DPI:         ParseDensity(densityRaw),
		RefreshRate: ParseRefreshRate(displayRaw),
	}
}

func physicalOrOverride(re *regexp.Regexp, raw string) string {
	value := models.NotAvailable

	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		if m[1] == "Override" {
			return m[2]
		}

		value = m[2]
	}

	return value
}
