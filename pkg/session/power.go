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

package session

import (
	"context"
	"fmt"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
)

const remoteScreenshot = "/sdcard/screenshot.png"

// PowerAction is a device power transition.
type PowerAction string

const (
	PowerOff         PowerAction = "poweroff"
	Reboot           PowerAction = "reboot"
	RebootBootloader PowerAction = "bootloader"
)

func (a PowerAction) args() ([]string, bool) {
	switch a {
	case PowerOff:
		return []string{"shell", "reboot", "-p"}, true
	case Reboot:
		return []string{"reboot"}, true
	case RebootBootloader:
		return []string{"reboot", "bootloader"}, true
	default:
		return nil, false
	}
}

// Device groups the one-shot device actions.
type Device struct {
	exec   adb.Executor
	logger logger.Logger
}

func NewDevice(exec adb.Executor, log logger.Logger) *Device {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Device{exec: exec, logger: log}
}

// Power sends a power action. The device drops off the bridge afterwards.
func (d *Device) Power(ctx context.Context, action PowerAction) error {
	args, ok := action.args()
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}

	if err := d.exec.Exec(ctx, adb.PowerTimeout, args...).Err(); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	d.logger.Info().Str("action", string(action)).Msg("Power action sent")

	return nil
}

// Screenshot captures the screen to dest on the local disk. The on-device
// copy is removed even when the pull fails.
func (d *Device) Screenshot(ctx context.Context, dest string) error {
	if err := d.exec.Shell(ctx, adb.QueryTimeout, "screencap", "-p", remoteScreenshot).Err(); err != nil {
		return fmt.Errorf("screencap: %w", err)
	}

	defer func() {
		if err := d.exec.Shell(context.WithoutCancel(ctx), adb.StatusTimeout, "rm", remoteScreenshot).Err(); err != nil {
			d.logger.Debug().Err(err).Msg("Failed to remove device screenshot")
		}
	}()

	if err := d.exec.Exec(ctx, adb.PullTimeout, "pull", remoteScreenshot, dest).Err(); err != nil {
		return fmt.Errorf("pull screenshot: %w", err)
	}

	d.logger.Info().Str("dest", dest).Msg("Screenshot saved")

	return nil
}
