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

// Disk is the data row of a "df -h" table.
type Disk struct {
	Size       string
	Used       string
	Available  string
	UsePercent string
	OK         bool
}

// ParseDiskUsage reads the second line of the table. Fewer than five columns
// leaves every field NotAvailable.
func ParseDiskUsage(raw string) Disk {
	d := Disk{
		Size:       models.NotAvailable,
		Used:       models.NotAvailable,
		Available:  models.NotAvailable,
		UsePercent: models.NotAvailable,
	}

	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) < 2 {
		return d
	}

	cols := strings.Fields(lines[1])
	if len(cols) < 5 {
		return d
	}

	return Disk{
		Size:       cols[1],
		Used:       cols[2],
		Available:  cols[3],
		UsePercent: cols[4],
		OK:         true,
	}
}

// Percent returns the Use% column as a number.
func (d Disk) Percent() (float64, bool) {
	if !d.OK {
		return 0, false
	}

	return parsePercent(d.UsePercent)
}

// UsageText formats "used / size".
func (d Disk) UsageText() string {
	if !d.OK {
		return models.NotAvailable
	}

	return d.Used + " / " + d.Size
}

func (d Disk) Fields() map[string]string {
	return map[string]string{
		"Tamanho Total": d.Size,
		"Usado":         d.Used,
		"Disponível":    d.Available,
		"Uso%":          d.UsePercent,
	}
}
