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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/carverauto/droidctl/pkg/batch"
	"github.com/carverauto/droidctl/pkg/dashboard"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/session"
	"github.com/carverauto/droidctl/pkg/tasks"
)

var (
	errInvalidSize     = errors.New("size must be WIDTHxHEIGHT")
	errIconOutRequired = errors.New("-icon-out is required with -icon")
	errDisplayRejected = errors.New("device rejected a display setting")
)

// dispatch runs the first requested action. The dashboard is the default.
func (a *app) dispatch(ctx context.Context, o options) error {
	switch {
	case o.snapshot:
		return a.printSnapshot(ctx)
	case o.status:
		st, err := a.info.Status(ctx)
		if err != nil {
			return err
		}

		return printJSON(st)
	case o.apps:
		return a.printApps(ctx, o.thirdParty, o.filter)
	case o.icon != "":
		return a.saveIcon(ctx, o.icon, o.iconOut)
	case o.processes:
		procs, err := a.info.RunningApps(ctx)
		if err != nil {
			return err
		}

		return printJSON(procs)
	case o.forceStop != "":
		return a.info.ForceStop(ctx, o.forceStop)
	case o.copy != "":
		return a.inventory.CopyPackageName(o.copy)
	case o.script != "":
		return a.runScript(ctx, o.script)
	case o.install != "":
		return a.runTask("install", true, func(ctx context.Context) (string, error) {
			return a.inventory.Install(ctx, o.install)
		})
	case o.uninstall != "":
		return a.runTask("uninstall", true, func(ctx context.Context) (string, error) {
			return a.inventory.Uninstall(ctx, o.uninstall)
		})
	case o.backup != "":
		return a.runTask("backup", true, func(ctx context.Context) (string, error) {
			return "backup saved to " + o.backupOut, a.inventory.Backup(ctx, o.backup, o.backupOut)
		})
	case o.pair:
		return a.runTask("wifi-pair", true, a.pairWiFi)
	case o.disconnect != "":
		return a.wifi().Disconnect(ctx, o.disconnect)
	case o.mirror:
		return a.runMirror(ctx)
	case o.logcat:
		return a.followLogs(ctx)
	case o.power != "":
		return session.NewDevice(a.bridge, a.logger).Power(ctx, session.PowerAction(o.power))
	case o.screenshot != "":
		return session.NewDevice(a.bridge, a.logger).Screenshot(ctx, o.screenshot)
	case o.displayReset:
		return displayResult(a.info.ResetDisplaySettings(ctx))
	case o.size != "" || o.dpi > 0 || o.refresh > 0:
		return a.setDisplay(ctx, o)
	default:
		return a.runDashboard(ctx)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func (a *app) printSnapshot(ctx context.Context) error {
	snapshot, err := a.info.Snapshot(ctx)
	if err != nil {
		return err
	}

	return printJSON(snapshot)
}

func (a *app) printApps(ctx context.Context, thirdParty bool, filter string) error {
	records, err := a.inventory.Refresh(ctx, thirdParty)
	if err != nil {
		return err
	}

	if filter != "" {
		records = a.inventory.Filter(filter)
	}

	return printJSON(records)
}

func (a *app) saveIcon(ctx context.Context, pkg, dest string) error {
	if dest == "" {
		return errIconOutRequired
	}

	icon := a.inventory.Icon(ctx, pkg)
	if icon.Placeholder {
		a.logger.Warn().Str("package", pkg).Msg("No launcher icon found, writing placeholder")
	}

	return os.WriteFile(dest, icon.Data, 0o644)
}

func (a *app) runScript(ctx context.Context, path string) error {
	results, err := batch.NewRunner(a.bridge, a.logger).RunFile(ctx, path)
	if err != nil {
		return err
	}

	return printJSON(results)
}

// runTask runs fn under the supervisor and waits for it.
func (a *app) runTask(name string, exclusive bool, fn tasks.Func) error {
	id, err := a.supervisor.Go(name, exclusive, fn)
	if err != nil {
		return err
	}

	a.supervisor.Wait()

	for {
		select {
		case err := <-a.supervisor.Errors():
			var taskErr *tasks.TaskError
			if errors.As(err, &taskErr) && taskErr.TaskID == id {
				return taskErr
			}
		default:
			return nil
		}
	}
}

func (a *app) wifi() *session.WiFi {
	return session.NewWiFi(a.bridge, a.logger, a.supervisor.Notifier(), session.WiFiOptions{
		Port:        a.cfg.WiFi.Port,
		Interface:   a.cfg.WiFi.Interface,
		SettleDelay: time.Duration(a.cfg.WiFi.SettleDelay),
	})
}

func (a *app) pairWiFi(ctx context.Context) (string, error) {
	addr, err := a.wifi().Pair(ctx)
	if err != nil {
		return "", err
	}

	return "connected to " + addr, nil
}

func (a *app) runMirror(ctx context.Context) error {
	if err := a.provisioner.EnsureMirror(ctx); err != nil {
		return err
	}

	tools := a.provisioner.Paths()
	tools.BridgePath = a.bridge.Path()

	mirror := session.NewMirror(a.runner, tools, session.MirrorOptions{
		MaxSize:       a.cfg.Mirror.MaxSize,
		VideoBitRate:  a.cfg.Mirror.VideoBitRate,
		TurnScreenOff: a.cfg.Mirror.TurnScreenOff,
		ExtraArgs:     a.cfg.Mirror.ExtraArgs,
	}, a.logger)

	err := mirror.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (a *app) followLogs(ctx context.Context) error {
	follower := session.NewLogFollower(a.bridge, a.logger, a.cfg.Logcat.Format, a.cfg.Logcat.Capacity)
	follower.OnLine(func(line session.LogLine) {
		fmt.Println(line.Text)
	})

	if err := follower.Start(ctx); err != nil {
		return err
	}
	defer follower.Stop()

	if err := follower.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func displayResult(ok bool) error {
	if !ok {
		return errDisplayRejected
	}

	return nil
}

func (a *app) setDisplay(ctx context.Context, o options) error {
	req := models.DisplayRequest{DPI: o.dpi, RefreshRate: o.refresh}

	if o.size != "" {
		w, h, ok := models.DisplaySettings{Resolution: o.size}.Size()
		if !ok {
			return errInvalidSize
		}

		req.Width, req.Height = w, h
	}

	return displayResult(a.info.SetDisplaySettings(ctx, req))
}

func (a *app) runDashboard(ctx context.Context) error {
	a.loop.Start(ctx)
	defer a.loop.Stop()

	if _, err := a.supervisor.Go("refresh-apps", true, func(ctx context.Context) (string, error) {
		records, err := a.inventory.Refresh(ctx, true)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%d apps loaded", len(records)), nil
	}); err != nil {
		a.logger.Warn().Err(err).Msg("Inventory refresh not started")
	}

	model := dashboard.New(ctx, a.loop, a.info, dashboard.Options{
		Notifications: a.notes.Notifications(),
	})

	return dashboard.Run(ctx, model)
}
