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

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

// CPUPercent samples overall CPU usage from one batch iteration of top.
func (a *Aggregator) CPUPercent(ctx context.Context) (float64, error) {
	raw, err := a.shellValue(ctx, adb.StatusTimeout, "top", "-n", "1", "-b")
	if err != nil {
		return 0, err
	}

	pct, ok := telemetry.ParseCPUUsage(raw)
	if !ok {
		return 0, fmt.Errorf("%w: top", ErrUnparseable)
	}

	return pct, nil
}

// RAMPercent samples memory usage from /proc/meminfo.
func (a *Aggregator) RAMPercent(ctx context.Context) (float64, error) {
	raw, err := a.shellValue(ctx, adb.StatusTimeout, "cat", "/proc/meminfo")
	if err != nil {
		return 0, err
	}

	pct, ok := telemetry.ParseMemInfo(raw).UsagePercent()
	if !ok {
		return 0, fmt.Errorf("%w: meminfo", ErrUnparseable)
	}

	return pct, nil
}

// StoragePercent samples the Use% of /data.
func (a *Aggregator) StoragePercent(ctx context.Context) (float64, error) {
	raw, err := a.shellValue(ctx, adb.StatusTimeout, "df", "-h", "/data")
	if err != nil {
		return 0, err
	}

	pct, ok := telemetry.ParseDiskUsage(raw).Percent()
	if !ok {
		return 0, fmt.Errorf("%w: df", ErrUnparseable)
	}

	return pct, nil
}

// BatteryLevel samples the battery charge as an integer percentage.
func (a *Aggregator) BatteryLevel(ctx context.Context) (int, error) {
	raw, err := a.shellValue(ctx, adb.StatusTimeout, "dumpsys", "battery")
	if err != nil {
		return 0, err
	}

	b := telemetry.ParseBattery(raw)
	if !b.HasLevel {
		return 0, fmt.Errorf("%w: battery", ErrUnparseable)
	}

	return b.LevelPercent, nil
}

// RunningApps lists application processes.
func (a *Aggregator) RunningApps(ctx context.Context) ([]models.ProcessEntry, error) {
	raw, err := a.shellValue(ctx, adb.StatusTimeout, "top", "-n", "1", "-b", "-o", "PID,NAME")
	if err != nil {
		return nil, err
	}

	return telemetry.ParseTopProcesses(raw), nil
}

// ForceStop kills an application.
func (a *Aggregator) ForceStop(ctx context.Context, pkg string) error {
	if err := a.exec.Shell(ctx, adb.QueryTimeout, "am", "force-stop", pkg).Err(); err != nil {
		return fmt.Errorf("force-stop %s: %w", pkg, err)
	}

	a.logger.Info().Str("package", pkg).Msg("Application stopped")

	return nil
}
