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
	"fmt"
	"regexp"
	"strconv"

	"github.com/carverauto/droidctl/pkg/models"
)

const kbPerGB = 1024 * 1024

var (
	memTotalRe     = regexp.MustCompile(`MemTotal:\s+(\d+)\s+kB`)
	memAvailableRe = regexp.MustCompile(`MemAvailable:\s+(\d+)\s+kB`)
)

// Memory is the MemTotal/MemAvailable pair of /proc/meminfo. OK is set only
// when both values were read and the total is non-zero.
type Memory struct {
	TotalKB     int64
	AvailableKB int64
	OK          bool
}

func ParseMemInfo(raw string) Memory {
	total, okTotal := matchInt(memTotalRe, raw)
	available, okAvailable := matchInt(memAvailableRe, raw)

	if !okTotal || !okAvailable || total <= 0 {
		return Memory{}
	}

	return Memory{TotalKB: total, AvailableKB: available, OK: true}
}

// UsedKB is total minus available.
func (m Memory) UsedKB() int64 {
	return m.TotalKB - m.AvailableKB
}

// UsagePercent is (total-available)/total*100.
func (m Memory) UsagePercent() (float64, bool) {
	if !m.OK {
		return 0, false
	}

	return float64(m.UsedKB()) / float64(m.TotalKB) * 100, true
}

// PercentText formats the usage as "63.2%".
func (m Memory) PercentText() string {
	pct, ok := m.UsagePercent()
	if !ok {
		return models.NotAvailable
	}

	return fmt.Sprintf("%.1f%%", pct)
}

// UsageText formats "used / total GB".
func (m Memory) UsageText() string {
	if !m.OK {
		return models.NotAvailable
	}

	return fmt.Sprintf("%.2f / %.2f GB", float64(m.UsedKB())/kbPerGB, float64(m.TotalKB)/kbPerGB)
}

// TotalText formats the total as "7.51 GB".
func (m Memory) TotalText() string {
	if !m.OK {
		return models.NotAvailable
	}

	return fmt.Sprintf("%.2f GB", float64(m.TotalKB)/kbPerGB)
}

func matchInt(re *regexp.Regexp, raw string) (int64, bool) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
