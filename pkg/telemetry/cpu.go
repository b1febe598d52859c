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
	"strconv"
	"strings"

	"github.com/carverauto/droidctl/pkg/models"
)

var (
	// toybox top: "800%cpu  12%user   0%nice  13%sys 775%idle ..."
	toyboxCPURe = regexp.MustCompile(`(\d+)%cpu\s+(\d+)%user\s+(?:\d+%nice\s+)?(\d+)%sys`)
	// older toolbox top: "User 5%, System 3%, IOW 0%, IRQ 0%"
	toolboxCPURe = regexp.MustCompile(`User (\d+)%, System (\d+)%`)
	genericCPURe = regexp.MustCompile(`(\d+)% *user.*, *(\d+)% *sys`)
)

// ParseCPUUsage returns user+system CPU usage on a 0-100 scale from one batch
// iteration of top. Multi-core toybox totals (e.g. 800%cpu) are normalised.
func ParseCPUUsage(raw string) (float64, bool) {
	if m := toyboxCPURe.FindStringSubmatch(raw); m != nil {
		total, _ := strconv.ParseFloat(m[1], 64)
		user, _ := strconv.ParseFloat(m[2], 64)
		sys, _ := strconv.ParseFloat(m[3], 64)

		if total <= 0 {
			return 0, false
		}

		return clampPercent((user + sys) / total * 100), true
	}

	for _, re := range []*regexp.Regexp{toolboxCPURe, genericCPURe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			user, _ := strconv.ParseFloat(m[1], 64)
			sys, _ := strconv.ParseFloat(m[2], 64)

			return clampPercent(user + sys), true
		}
	}

	return 0, false
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}

	return v
}

// ParseTopProcesses lists application processes from "top -o NAME -o PID"
// style output: rows after the header whose last column looks like a package.
func ParseTopProcesses(raw string) []models.ProcessEntry {
	lines := strings.Split(raw, "\n")

	start := -1

	for i, line := range lines {
		if strings.Contains(line, "PID") && strings.Contains(line, "NAME") {
			start = i + 1

			break
		}
	}

	if start < 0 {
		return nil
	}

	pidFirst := strings.Index(lines[start-1], "PID") < strings.Index(lines[start-1], "NAME")

	var procs []models.ProcessEntry

	for _, line := range lines[start:] {
		cols := strings.Fields(line)
		if len(cols) < 2 {
			continue
		}

		pid, name := cols[0], cols[len(cols)-1]
		if !pidFirst {
			name, pid = cols[0], cols[len(cols)-1]
		}

		if !strings.Contains(name, ".") {
			continue
		}

		if _, err := strconv.Atoi(pid); err != nil {
			continue
		}

		procs = append(procs, models.ProcessEntry{PID: pid, Name: name})
	}

	return procs
}
