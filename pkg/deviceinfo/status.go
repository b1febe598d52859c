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

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

// Devices lists the devices known to the bridge.
func (a *Aggregator) Devices(ctx context.Context) ([]models.DeviceEntry, error) {
	res := a.exec.Exec(ctx, adb.StatusTimeout, "devices")
	if err := res.Err(); err != nil {
		return nil, err
	}

	return telemetry.ParseDevices(res.Stdout), nil
}

// Status summarises the active device. A missing device is not an error;
// Connected is simply false.
func (a *Aggregator) Status(ctx context.Context) (models.DeviceStatus, error) {
	devices, err := a.Devices(ctx)
	if err != nil {
		return models.DeviceStatus{}, err
	}

	entry, ok := telemetry.FirstOnline(devices)
	if !ok {
		return models.DeviceStatus{}, nil
	}

	props := telemetry.ParseProperties(a.shell(ctx, adb.PropsTimeout, "getprop"))

	status := models.DeviceStatus{
		Connected:    true,
		OverWiFi:     entry.Network,
		Serial:       entry.Serial,
		Model:        props.Get("ro.product.model"),
		Android:      props.Get("ro.build.version.release"),
		Manufacturer: props.Get("ro.product.manufacturer"),
	}

	status.Name = telemetry.ParseSetting(a.shell(ctx, adb.StatusTimeout, "settings", "get", "global", "device_name"))
	if status.Name == models.NotAvailable {
		status.Name = status.Model
	}

	return status, nil
}
