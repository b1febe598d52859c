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

package models

import (
	"strconv"
	"strings"
)

// NotAvailable is the sentinel shown for any field that could not be read or parsed.
const NotAvailable = "N/A"

// Snapshot categories, in presentation order.
const (
	CategoryHardware        = "Hardware"
	CategorySoftware        = "Software/Build"
	CategoryPlatformSupport = "Platform Support"
	CategoryDisplay         = "Display"
	CategoryBattery         = "Battery"
	CategoryStorage         = "Storage"
	CategoryNetwork         = "Network"
	CategoryIdentifiers     = "Identifiers"
)

// SnapshotCategories lists every category a DeviceSnapshot carries.
var SnapshotCategories = []string{
	CategoryHardware,
	CategorySoftware,
	CategoryPlatformSupport,
	CategoryDisplay,
	CategoryBattery,
	CategoryStorage,
	CategoryNetwork,
	CategoryIdentifiers,
}

// DeviceSnapshot maps category name to field name to value.
type DeviceSnapshot map[string]map[string]string

// Set stores a value, substituting NotAvailable for blanks.
func (s DeviceSnapshot) Set(category, field, value string) {
	fields, ok := s[category]
	if !ok {
		fields = make(map[string]string)
		s[category] = fields
	}

	if strings.TrimSpace(value) == "" {
		value = NotAvailable
	}

	fields[field] = value
}

// Get returns a field value or NotAvailable.
func (s DeviceSnapshot) Get(category, field string) string {
	if v, ok := s[category][field]; ok {
		return v
	}

	return NotAvailable
}

// DisplaySettings is the current display configuration as echoed by the device.
type DisplaySettings struct {
	Resolution  string `json:"resolution"`
	DPI         string `json:"dpi"`
	RefreshRate string `json:"refresh_rate"`
}

// Size splits the resolution into width and height.
func (d DisplaySettings) Size() (width, height int, ok bool) {
	w, h, found := strings.Cut(d.Resolution, "x")
	if !found {
		return 0, 0, false
	}

	width, errW := strconv.Atoi(strings.TrimSpace(w))
	height, errH := strconv.Atoi(strings.TrimSpace(h))

	if errW != nil || errH != nil {
		return 0, 0, false
	}

	return width, height, true
}

// RefreshRateDisplay truncates the refresh rate to an integer for display.
func (d DisplaySettings) RefreshRateDisplay() string {
	if d.RefreshRate == NotAvailable || d.RefreshRate == "" {
		return NotAvailable
	}

	whole, _, _ := strings.Cut(d.RefreshRate, ".")
	if _, err := strconv.Atoi(whole); err != nil {
		return NotAvailable
	}

	return whole
}

// DisplayRequest describes a display change. Zero values leave a setting untouched.
type DisplayRequest struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	DPI         int     `json:"dpi"`
	RefreshRate float64 `json:"refresh_rate"`
}

// DeviceState is the connection state reported by `adb devices`.
type DeviceState string

const (
	DeviceStateOnline       DeviceState = "device"
	DeviceStateOffline      DeviceState = "offline"
	DeviceStateUnauthorized DeviceState = "unauthorized"
	DeviceStateUnknown      DeviceState = "unknown"
)

// DeviceEntry is one row of `adb devices`.
type DeviceEntry struct {
	Serial  string      `json:"serial"`
	State   DeviceState `json:"state"`
	Network bool        `json:"network"`
}

// DeviceStatus is the short connection summary shown in a header bar.
type DeviceStatus struct {
	Connected    bool   `json:"connected"`
	OverWiFi     bool   `json:"over_wifi"`
	Serial       string `json:"serial"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Android      string `json:"android"`
	Manufacturer string `json:"manufacturer"`
}

// ProcessEntry is a running application as listed by top.
type ProcessEntry struct {
	PID  string `json:"pid"`
	Name string `json:"name"`
}
