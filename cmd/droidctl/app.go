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

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/config"
	"github.com/carverauto/droidctl/pkg/deviceinfo"
	"github.com/carverauto/droidctl/pkg/inventory"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/monitor"
	"github.com/carverauto/droidctl/pkg/natsutil"
	"github.com/carverauto/droidctl/pkg/tasks"
	"github.com/carverauto/droidctl/pkg/toolchain"
)

const (
	shutdownTimeout   = 5 * time.Second
	notificationQueue = 32
)

type app struct {
	cfg    *config.Config
	logger logger.Logger

	provisioner *toolchain.Provisioner
	runner      *adb.Runner
	bridge      *adb.Bridge

	info       *deviceinfo.Aggregator
	inventory  *inventory.Service
	loop       *monitor.Loop
	supervisor *tasks.Supervisor
	notes      *tasks.ChannelNotifier

	publisher *natsutil.EventPublisher
	nc        *nats.Conn
}

// newApp provisions the bridge and builds every service. A missing bridge is fatal.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	provisioner := toolchain.NewProvisioner(log, toolchain.Options{
		Dir:             cfg.ToolsDir(),
		BridgeURLs:      platformURLs(cfg.Provisioning.BridgeURLs),
		MirrorURLs:      platformURLs(cfg.Provisioning.MirrorURLs),
		HTTPClient:      &http.Client{Timeout: time.Duration(cfg.Provisioning.HTTPTimeout)},
		MaxArchiveBytes: cfg.Provisioning.MaxArchiveBytes,
	})

	bridgePath, err := toolchain.LocateBridge(ctx, provisioner, cfg.Provisioning.FallbackPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to provision adb: %w", err)
	}

	log.Info().Str("adb", bridgePath).Str("platform", provisioner.Platform().String()).Msg("Using bridge")

	runner := adb.NewRunner(log)
	bridge := adb.NewBridge(runner, bridgePath)

	a := &app{
		cfg:         cfg,
		logger:      log,
		provisioner: provisioner,
		runner:      runner,
		bridge:      bridge,
		info:        deviceinfo.NewAggregator(bridge, log, cfg.WiFi.Interface),
		inventory: inventory.NewService(bridge, log, inventory.Options{
			IconCacheDir: cfg.IconCacheDir(),
			Workers:      cfg.Inventory.Workers,
		}),
		notes: tasks.NewChannelNotifier(notificationQueue),
	}

	if cfg.NATS.Enabled() {
		publisher, nc, err := natsutil.Connect(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("Event publishing disabled")
		} else {
			a.publisher = publisher
			a.nc = nc
		}
	}

	notifiers := tasks.Notifiers{a.notes, tasks.NewLogNotifier(log)}
	monitorOpts := monitor.Options{
		Interval:  time.Duration(cfg.Monitor.Interval),
		Capacity:  cfg.Monitor.Capacity,
		StopGrace: time.Duration(cfg.Monitor.StopGrace),
	}

	if a.publisher != nil {
		notifiers = append(notifiers, a.publisher)
		monitorOpts.Sink = a.publisher
	}

	a.supervisor = tasks.NewSupervisor(ctx, log, notifiers)

	if a.publisher != nil {
		a.supervisor.SetEventSink(a.publisher)
	}

	a.loop = monitor.New(a.info, log, monitorOpts)

	return a, nil
}

func platformURLs(urls map[string]string) map[toolchain.PlatformTag]string {
	out := make(map[toolchain.PlatformTag]string, len(urls))
	for tag, url := range urls {
		out[toolchain.PlatformTag(tag)] = url
	}

	return out
}

// Close stops background work and flushes pending events.
func (a *app) Close() {
	a.loop.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.supervisor.Shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Background tasks did not finish")
	}

	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to drain NATS connection")
		}
	}
}
