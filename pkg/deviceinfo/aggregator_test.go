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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

const getprop = `[ro.product.model]: [Pixel 7]
[ro.product.manufacturer]: [Google]
[ro.board.platform]: [gs201]
[ro.build.version.release]: [14]
[ro.build.version.sdk]: [34]
[ro.build.id]: [UP1A.231005.007]
[ro.build.version.security_patch]: [2024-03-01]
[ro.treble.enabled]: [true]
[ro.build.ab_update]: [true]
[ro.product.cpu.abi]: [arm64-v8a]
[ro.oem_unlock_supported]: [1]
[ro.boot.vbmeta.device_state]: [locked]
[ro.serialno]: [2A111FDH200BZK]
`

func ok(out string) models.CommandResult {
	return models.CommandResult{Stdout: out}
}

func failed() models.CommandResult {
	return models.CommandResult{ExitCode: 1, Stderr: "error: closed"}
}

// scripted answers shell commands by their joined arguments.
func scripted(t *testing.T, responses map[string]models.CommandResult) *adb.MockExecutor {
	t.Helper()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	exec.EXPECT().Shell(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, _ time.Duration, args ...string) models.CommandResult {
			if res, found := responses[strings.Join(args, " ")]; found {
				return res
			}

			return failed()
		})

	return exec
}

func TestSnapshotFullDevice(t *testing.T) {
	t.Parallel()

	exec := scripted(t, map[string]models.CommandResult{
		"getprop":                            ok(getprop),
		"settings get global oem_unlocking":  ok("1\n"),
		"dumpsys battery":                    ok("level: 80\nstatus: 2\nhealth: 2\ntemperature: 250\nvoltage: 4200\n"),
		"df -h /data":                        ok("Filesystem Size Used Avail Use% Mounted on\n/dev/block/dm-48 107G 49G 58G 46% /data\n"),
		"ip addr show wlan0":                 ok("    link/ether 8a:3c:1f:aa:02:9e brd ff:ff:ff:ff:ff:ff\n    inet 192.168.1.42/24 brd 192.168.1.255\n"),
		"cat /proc/meminfo":                  ok("MemTotal: 7869560 kB\nMemAvailable: 2895640 kB\n"),
		"settings get secure android_id":     ok("a1b2c3d4e5f6\n"),
		"wm size":                            ok("Physical size: 1080x2400\n"),
		"wm density":                         ok("Physical density: 420\n"),
		"dumpsys display":                    ok("mRefreshRate=120.00001\n"),
	})

	snap, err := NewAggregator(exec, logger.NewTestLogger(), "").Snapshot(context.Background())
	require.NoError(t, err)

	for _, category := range models.SnapshotCategories {
		assert.Contains(t, snap, category)
	}

	assert.Equal(t, "Pixel 7", snap.Get(models.CategoryHardware, "Modelo"))
	assert.Equal(t, "7.50 GB", snap.Get(models.CategoryHardware, "Memória RAM Total"))
	assert.Equal(t, "34", snap.Get(models.CategorySoftware, "Nível da API (SDK)"))
	assert.Equal(t, "Sim", snap.Get(models.CategoryPlatformSupport, "Project Treble Habilitado"))
	assert.Equal(t, "Sim", snap.Get(models.CategoryPlatformSupport, "Desbloqueio OEM Permitido"))
	assert.Equal(t, "Bloqueado", snap.Get(models.CategoryPlatformSupport, "Status do Bootloader"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryPlatformSupport, "Versão VNDK"))
	assert.Equal(t, "1080x2400", snap.Get(models.CategoryDisplay, "Resolução"))
	assert.Equal(t, "420", snap.Get(models.CategoryDisplay, "Densidade (DPI)"))
	assert.Equal(t, "120", snap.Get(models.CategoryDisplay, "Taxa de Atualização"))
	assert.Equal(t, "80%", snap.Get(models.CategoryBattery, "Nível"))
	assert.Equal(t, "46%", snap.Get(models.CategoryStorage, "Uso%"))
	assert.Equal(t, "192.168.1.42", snap.Get(models.CategoryNetwork, "Endereço IP"))
	assert.Equal(t, "2A111FDH200BZK", snap.Get(models.CategoryIdentifiers, "Número de Série"))
	assert.Equal(t, "a1b2c3d4e5f6", snap.Get(models.CategoryIdentifiers, "Android ID"))
}

func TestSnapshotDegradesFailedSubqueries(t *testing.T) {
	t.Parallel()

	exec := scripted(t, map[string]models.CommandResult{
		"getprop": ok(getprop),
	})

	snap, err := NewAggregator(exec, nil, "").Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Pixel 7", snap.Get(models.CategoryHardware, "Modelo"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryHardware, "Memória RAM Total"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryBattery, "Nível"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryStorage, "Tamanho Total"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryNetwork, "Endereço MAC"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryDisplay, "Taxa de Atualização"))
	assert.Equal(t, models.NotAvailable, snap.Get(models.CategoryIdentifiers, "Android ID"))

	for category, fields := range snap {
		for field, value := range fields {
			assert.NotEmpty(t, value, "%s/%s", category, field)
		}
	}
}

func TestSnapshotWithoutProperties(t *testing.T) {
	t.Parallel()

	exec := scripted(t, map[string]models.CommandResult{
		"getprop": {ExitCode: -1, TimedOut: true},
	})

	_, err := NewAggregator(exec, nil, "").Snapshot(context.Background())
	require.ErrorIs(t, err, ErrNoProperties)
	require.ErrorIs(t, err, adb.ErrCommandTimeout)
}

func TestSetDisplaySettings(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	gomock.InOrder(
		exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "wm", "size", "1080x2400").Return(ok("")),
		exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "settings", "put", "system", "peak_refresh_rate", "90").Return(ok("")),
		exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "settings", "put", "system", "min_refresh_rate", "90").Return(failed()),
	)

	agg := NewAggregator(exec, nil, "")
	assert.False(t, agg.SetDisplaySettings(context.Background(), models.DisplayRequest{Width: 1080, Height: 2400, RefreshRate: 90}))
}

func TestSetDisplaySettingsDensityOnly(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)
	exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "wm", "density", "320").Return(ok(""))

	agg := NewAggregator(exec, nil, "")
	assert.True(t, agg.SetDisplaySettings(context.Background(), models.DisplayRequest{DPI: 320, Width: 1080}))
}

// displayDevice remembers applied display settings and reports them back the
// way wm and dumpsys print them.
type displayDevice struct {
	size    string
	density string
	peak    float64
}

func (d *displayDevice) shell(_ context.Context, _ time.Duration, args ...string) models.CommandResult {
	switch {
	case len(args) == 3 && args[0] == "wm" && args[1] == "size":
		d.size = args[2]
	case len(args) == 3 && args[0] == "wm" && args[1] == "density":
		d.density = args[2]
	case len(args) == 5 && args[0] == "settings" && args[3] == "peak_refresh_rate":
		rate, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return failed()
		}

		d.peak = rate
	case len(args) == 5 && args[0] == "settings" && args[3] == "min_refresh_rate":
	case strings.Join(args, " ") == "wm size":
		return ok("Physical size: 1440x3120\nOverride size: " + d.size + "\n")
	case strings.Join(args, " ") == "wm density":
		return ok("Physical density: 560\nOverride density: " + d.density + "\n")
	case strings.Join(args, " ") == "dumpsys display":
		return ok(fmt.Sprintf("  mActiveModeId=1\n  mRefreshRate=%.1f\n  mDefaultModeId=1\n", d.peak))
	default:
		return failed()
	}

	return ok("")
}

func TestDisplaySettingsRoundTrip(t *testing.T) {
	t.Parallel()

	device := &displayDevice{}

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)
	exec.EXPECT().Shell(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(device.shell)

	agg := NewAggregator(exec, nil, "")
	require.True(t, agg.SetDisplaySettings(context.Background(),
		models.DisplayRequest{Width: 1080, Height: 1920, DPI: 320, RefreshRate: 60.0}))

	got := agg.DisplaySettings(context.Background())
	assert.Equal(t, "1080x1920", got.Resolution)
	assert.Equal(t, "320", got.DPI)
	assert.Equal(t, "60.0", got.RefreshRate)
	assert.Equal(t, "60", got.RefreshRateDisplay())
}

func TestResetDisplaySettings(t *testing.T) {
	t.Parallel()

	exec := scripted(t, map[string]models.CommandResult{
		"wm size reset":                            ok(""),
		"wm density reset":                         ok(""),
		"settings delete system peak_refresh_rate": ok(""),
		"settings delete system min_refresh_rate":  ok(""),
	})

	assert.True(t, NewAggregator(exec, nil, "").ResetDisplaySettings(context.Background()))
}

func TestUsageQueries(t *testing.T) {
	t.Parallel()

	exec := scripted(t, map[string]models.CommandResult{
		"top -n 1 -b":       ok("800%cpu 100%user 0%nice 60%sys 600%idle 0%iow 40%irq 0%sirq 0%host\n"),
		"cat /proc/meminfo": ok("MemTotal: 1000 kB\nMemAvailable: 250 kB\n"),
		"df -h /data":       ok("Filesystem Size Used Avail Use% Mounted on\n/dev/x 10G 3G 7G 30% /data\n"),
		"dumpsys battery":   ok("level: 55\n"),
	})

	agg := NewAggregator(exec, nil, "")
	ctx := context.Background()

	cpu, err := agg.CPUPercent(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, cpu, 0.001)

	ram, err := agg.RAMPercent(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, ram, 0.001)

	storage, err := agg.StoragePercent(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, storage, 0.001)

	battery, err := agg.BatteryLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, battery)
}

func TestUsageQueriesReportFailures(t *testing.T) {
	t.Parallel()

	exec := scripted(t, map[string]models.CommandResult{
		"dumpsys battery": ok("AC powered: false\n"),
	})

	agg := NewAggregator(exec, nil, "")
	ctx := context.Background()

	_, err := agg.CPUPercent(ctx)
	require.ErrorIs(t, err, adb.ErrCommandFailed)

	_, err = agg.BatteryLevel(ctx)
	require.ErrorIs(t, err, ErrUnparseable)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	exec.EXPECT().Exec(gomock.Any(), adb.StatusTimeout, "devices").
		Return(ok("List of devices attached\n192.168.1.42:5555\tdevice\n"))
	exec.EXPECT().Shell(gomock.Any(), adb.PropsTimeout, "getprop").Return(ok(getprop))
	exec.EXPECT().Shell(gomock.Any(), adb.StatusTimeout, "settings", "get", "global", "device_name").Return(ok("null"))

	status, err := NewAggregator(exec, nil, "").Status(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Connected)
	assert.True(t, status.OverWiFi)
	assert.Equal(t, "192.168.1.42:5555", status.Serial)
	assert.Equal(t, "Pixel 7", status.Name)
	assert.Equal(t, "14", status.Android)
}

func TestStatusWithoutDevice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)
	exec.EXPECT().Exec(gomock.Any(), adb.StatusTimeout, "devices").
		Return(ok("List of devices attached\nemulator-5554\tunauthorized\n"))

	status, err := NewAggregator(exec, nil, "").Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestRunningAppsAndForceStop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	exec.EXPECT().Shell(gomock.Any(), adb.StatusTimeout, "top", "-n", "1", "-b", "-o", "PID,NAME").
		Return(ok("  PID NAME\n 1234 com.example.app\n  1 init\n"))
	exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "am", "force-stop", "com.example.app").Return(ok(""))

	agg := NewAggregator(exec, nil, "")

	apps, err := agg.RunningApps(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.ProcessEntry{PID: "1234", Name: "com.example.app"}, apps[0])

	require.NoError(t, agg.ForceStop(context.Background(), "com.example.app"))
}
