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
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/tasks"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

const pairSteps = 3

// WiFiOptions configures wireless debugging.
type WiFiOptions struct {
	Port        int
	Interface   string
	SettleDelay time.Duration
}

// WiFi switches a USB-attached device to TCP/IP debugging and connects to it.
type WiFi struct {
	exec     adb.Executor
	logger   logger.Logger
	notifier tasks.Notifier

	port   int
	iface  string
	settle time.Duration
}

// NewWiFi returns a WiFi helper. Progress is reported through notifier.
func NewWiFi(exec adb.Executor, log logger.Logger, notifier tasks.Notifier, opts WiFiOptions) *WiFi {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if notifier == nil {
		notifier = tasks.Notifiers{}
	}

	if opts.Port <= 0 {
		opts.Port = 5555
	}

	if opts.Interface == "" {
		opts.Interface = "wlan0"
	}

	return &WiFi{
		exec:     exec,
		logger:   log,
		notifier: notifier,
		port:     opts.Port,
		iface:    opts.Interface,
		settle:   opts.SettleDelay,
	}
}

// Connected lists online devices attached over the network on the pairing port.
func (w *WiFi) Connected(ctx context.Context) ([]string, error) {
	res := w.exec.Exec(ctx, adb.StatusTimeout, "devices")
	if err := res.Err(); err != nil {
		return nil, err
	}

	suffix := ":" + strconv.Itoa(w.port)

	var addrs []string

	for _, d := range telemetry.ParseDevices(res.Stdout) {
		if d.Network && d.State == models.DeviceStateOnline && strings.HasSuffix(d.Serial, suffix) {
			addrs = append(addrs, d.Serial)
		}
	}

	return addrs, nil
}

// Pair enables TCP/IP mode, reads the device address and connects to it.
// The device must be attached over USB. It returns "ip:port".
func (w *WiFi) Pair(ctx context.Context) (string, error) {
	w.progress(1, fmt.Sprintf("Ativando modo TCP/IP na porta %d", w.port))

	if err := w.exec.Exec(ctx, adb.QueryTimeout, "tcpip", strconv.Itoa(w.port)).Err(); err != nil {
		return "", fmt.Errorf("tcpip %d: %w", w.port, err)
	}

	if w.settle > 0 {
		timer := time.NewTimer(w.settle)

		select {
		case <-ctx.Done():
			timer.Stop()

			return "", ctx.Err()
		case <-timer.C:
		}
	}

	w.progress(2, "Buscando endereço IP do dispositivo")

	res := w.exec.Shell(ctx, adb.QueryTimeout, "ip", "addr", "show", w.iface)
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoDeviceIP, err)
	}

	iface := telemetry.ParseInterface(res.Stdout)
	if !iface.HasIPv4() {
		return "", ErrNoDeviceIP
	}

	addr := iface.IPv4 + ":" + strconv.Itoa(w.port)

	w.progress(3, "Conectando a "+addr)

	res = w.exec.Exec(ctx, adb.QueryTimeout, "connect", addr)
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("connect %s: %w", addr, err)
	}

	if !strings.Contains(res.Stdout, "connected") {
		return "", fmt.Errorf("%w: %s", ErrConnectRejected, res.Output())
	}

	w.logger.Info().Str("addr", addr).Msg("Connected over Wi-Fi")

	return addr, nil
}

// Disconnect drops a network-attached device.
func (w *WiFi) Disconnect(ctx context.Context, addr string) error {
	if err := w.exec.Exec(ctx, adb.QueryTimeout, "disconnect", addr).Err(); err != nil {
		return fmt.Errorf("disconnect %s: %w", addr, err)
	}

	w.logger.Info().Str("addr", addr).Msg("Disconnected Wi-Fi device")

	return nil
}

func (w *WiFi) progress(step int, msg string) {
	w.notifier.Notify(models.Notification{
		Level:   models.NotificationInfo,
		Message: fmt.Sprintf("Passo %d/%d: %s...", step, pairSteps, msg),
		Time:    time.Now(),
	})
}
