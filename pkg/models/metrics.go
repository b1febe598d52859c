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

// MetricSample is one monitoring tick. Tick is the loop iteration, not a wall-clock value.
// Percentages are on a 0-100 scale; a metric whose Has flag is false was skipped for the tick.
type MetricSample struct {
	Tick       uint64  `json:"tick"`
	CPUPct     float64 `json:"cpu_pct"`
	RAMPct     float64 `json:"ram_pct"`
	StoragePct float64 `json:"storage_pct"`
	BatteryPct int     `json:"battery_pct"`
	HasCPU     bool    `json:"has_cpu"`
	HasRAM     bool    `json:"has_ram"`
	HasStorage bool    `json:"has_storage"`
	HasBattery bool    `json:"has_battery"`
}

// Empty reports whether no metric was captured.
func (s MetricSample) Empty() bool {
	return !s.HasCPU && !s.HasRAM && !s.HasStorage && !s.HasBattery
}
