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

package deviceinfo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

// DisplaySettings reads resolution, density and refresh rate. Unreadable
// values are models.NotAvailable.
func (a *Aggregator) DisplaySettings(ctx context.Context) models.DisplaySettings {
	return telemetry.ParseDisplaySettings(
		a.shell(ctx, adb.QueryTimeout, "wm", "size"),
		a.shell(ctx, adb.QueryTimeout, "wm", "density"),
		a.shell(ctx, adb.QueryTimeout, "dumpsys", "display"),
	)
}

// SetDisplaySettings applies each non-zero part of req independently: size,
// density, then peak and minimum refresh rate. It reports whether every
// attempted command succeeded; nothing is rolled back on failure.
func (a *Aggregator) SetDisplaySettings(ctx context.Context, req models.DisplayRequest) bool {
	var commands [][]string

	if req.Width > 0 && req.Height > 0 {
		commands = append(commands, []string{"wm", "size", fmt.Sprintf("%dx%d", req.Width, req.Height)})
	}

	if req.DPI > 0 {
		commands = append(commands, []string{"wm", "density", strconv.Itoa(req.DPI)})
	}

	if req.RefreshRate > 0 {
		rate := strconv.FormatFloat(req.RefreshRate, 'f', -1, 64)
		commands = append(commands,
			[]string{"settings", "put", "system", "peak_refresh_rate", rate},
			[]string{"settings", "put", "system", "min_refresh_rate", rate},
		)
	}

	return a.applyAll(ctx, commands)
}

// ResetDisplaySettings restores the default size, density and refresh rates.
func (a *Aggregator) ResetDisplaySettings(ctx context.Context) bool {
	return a.applyAll(ctx, [][]string{
		{"wm", "size", "reset"},
		{"wm", "density", "reset"},
		{"settings", "delete", "system", "peak_refresh_rate"},
		{"settings", "delete", "system", "min_refresh_rate"},
	})
}

func (a *Aggregator) applyAll(ctx context.Context, commands [][]string) bool {
	ok := true

	for _, args := range commands {
		res := a.exec.Shell(ctx, adb.QueryTimeout, args...)
		if err := res.Err(); err != nil {
			a.logger.Warn().Err(err).Strs("args", args).Msg("Display command failed")

			ok = false
		}
	}

	return ok
}
