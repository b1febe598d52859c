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

// Package deviceinfo composes bridge queries and telemetry parsers into
// device snapshots, display setting changes and single-shot usage readings.
package deviceinfo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

var (
	// ErrNoProperties means getprop failed, so no snapshot can be built.
	ErrNoProperties = errors.New("device properties unavailable")
	// ErrUnparseable means a command succeeded but its output held no usable value.
	ErrUnparseable = errors.New("unparseable command output")
)

const defaultInterface = "wlan0"

// Aggregator reads device state through a bridge Executor.
type Aggregator struct {
	exec   adb.Executor
	logger logger.Logger
	iface  string
}

// NewAggregator returns an Aggregator. iface is the network interface shown in
// snapshots, wlan0 when empty.
func NewAggregator(exec adb.Executor, log logger.Logger, iface string) *Aggregator {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if iface == "" {
		iface = defaultInterface
	}

	return &Aggregator{exec: exec, logger: log, iface: iface}
}

// shell returns the trimmed output of a successful shell command, or "" when it failed.
func (a *Aggregator) shell(ctx context.Context, timeout time.Duration, args ...string) string {
	res := a.exec.Shell(ctx, timeout, args...)
	if err := res.Err(); err != nil {
		a.logger.Debug().Err(err).Strs("args", args).Msg("Shell query failed")

		return ""
	}

	return res.Output()
}

// shellValue is shell for queries whose failure must reach the caller.
func (a *Aggregator) shellValue(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	res := a.exec.Shell(ctx, timeout, args...)
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("%v: %w", args, err)
	}

	return res.Output(), nil
}

type snapshotSources struct {
	oemUnlock string
	battery   string
	storage   string
	network   string
	memory    string
	androidID string
	display   models.DisplaySettings
}

// Snapshot builds a full DeviceSnapshot. Every declared field is present;
// values that could not be read are models.NotAvailable. Only a getprop
// failure is reported as an error.
func (a *Aggregator) Snapshot(ctx context.Context) (models.DeviceSnapshot, error) {
	raw, err := a.shellValue(ctx, adb.PropsTimeout, "getprop")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProperties, err)
	}

	props := telemetry.ParseProperties(raw)
	if len(props) == 0 {
		return nil, ErrNoProperties
	}

	var src snapshotSources

	g, gctx := errgroup.WithContext(ctx)

	fetch := func(dst *string, args ...string) {
		g.Go(func() error {
			*dst = a.shell(gctx, adb.QueryTimeout, args...)

			return nil
		})
	}

	fetch(&src.oemUnlock, "settings", "get", "global", "oem_unlocking")
	fetch(&src.battery, "dumpsys", "battery")
	fetch(&src.storage, "df", "-h", "/data")
	fetch(&src.network, "ip", "addr", "show", a.iface)
	fetch(&src.memory, "cat", "/proc/meminfo")
	fetch(&src.androidID, "settings", "get", "secure", "android_id")

	g.Go(func() error {
		src.display = a.DisplaySettings(gctx)

		return nil
	})

	_ = g.Wait()

	return buildSnapshot(props, &src), nil
}

func buildSnapshot(props telemetry.Properties, src *snapshotSources) models.DeviceSnapshot {
	snap := models.DeviceSnapshot{}

	memory := telemetry.ParseMemInfo(src.memory)

	snap.Set(models.CategoryHardware, "Modelo", props.Get("ro.product.model"))
	snap.Set(models.CategoryHardware, "Fabricante", props.Get("ro.product.manufacturer"))
	snap.Set(models.CategoryHardware, "Plataforma (Chipset)", props.Get("ro.board.platform"))
	snap.Set(models.CategoryHardware, "Memória RAM Total", memory.TotalText())

	snap.Set(models.CategorySoftware, "Versão do Android", props.Get("ro.build.version.release"))
	snap.Set(models.CategorySoftware, "Nível da API (SDK)", props.Get("ro.build.version.sdk"))
	snap.Set(models.CategorySoftware, "ID da Build", props.Get("ro.build.id"))
	snap.Set(models.CategorySoftware, "Patch de Segurança", props.Get("ro.build.version.security_patch"))

	yes, no := telemetry.Yes, telemetry.No
	snap.Set(models.CategoryPlatformSupport, "Project Treble Habilitado", props.Bool("ro.treble.enabled", yes, no))
	snap.Set(models.CategoryPlatformSupport, "Seamless Updates (Partição A/B)", props.Bool("ro.build.ab_update", yes, no))
	snap.Set(models.CategoryPlatformSupport, "System-as-Root", props.Bool("ro.build.system_root_image", yes, no))
	snap.Set(models.CategoryPlatformSupport, "Arquitetura da CPU", props.Get("ro.product.cpu.abi"))
	snap.Set(models.CategoryPlatformSupport, "Versão VNDK", props.Get("ro.vndk.version"))
	snap.Set(models.CategoryPlatformSupport, "Suporte a Desbloqueio OEM",
		props.Bool("ro.oem_unlock_supported", yes, telemetry.NotSupported))
	snap.Set(models.CategoryPlatformSupport, "Desbloqueio OEM Permitido", telemetry.ParseOEMUnlockAllowed(src.oemUnlock))
	snap.Set(models.CategoryPlatformSupport, "Status do Bootloader", telemetry.BootloaderStatus(props))

	snap.Set(models.CategoryDisplay, "Resolução", src.display.Resolution)
	snap.Set(models.CategoryDisplay, "Densidade (DPI)", src.display.DPI)
	snap.Set(models.CategoryDisplay, "Taxa de Atualização", src.display.RefreshRateDisplay())

	setAll(snap, models.CategoryBattery, telemetry.ParseBattery(src.battery).Fields())
	setAll(snap, models.CategoryStorage, telemetry.ParseDiskUsage(src.storage).Fields())
	setAll(snap, models.CategoryNetwork, telemetry.ParseInterface(src.network).Fields())

	snap.Set(models.CategoryIdentifiers, "Número de Série", props.Get("ro.serialno"))
	snap.Set(models.CategoryIdentifiers, "Android ID", telemetry.ParseSetting(src.androidID))

	return snap
}

func setAll(snap models.DeviceSnapshot, category string, fields map[string]string) {
	for k, v := range fields {
		snap.Set(category, k, v)
	}
}
