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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/carverauto/droidctl/pkg/config"
	"github.com/carverauto/droidctl/pkg/lifecycle"
	"github.com/carverauto/droidctl/pkg/version"
)

type options struct {
	configPath string
	version    bool

	snapshot   bool
	status     bool
	apps       bool
	thirdParty bool
	filter     string
	icon       string
	iconOut    string
	processes  bool
	forceStop  string
	copy       string

	script    string
	install   string
	uninstall string
	backup    string
	backupOut string

	pair       bool
	disconnect string
	mirror     bool
	logcat     bool
	power      string
	screenshot string

	size         string
	dpi          int
	refresh      float64
	displayReset bool

	monitor bool
}

func parseFlags() options {
	var o options

	flag.StringVar(&o.configPath, "config", "", "Path to droidctl config file")
	flag.BoolVar(&o.version, "version", false, "Print version and exit")

	flag.BoolVar(&o.snapshot, "snapshot", false, "Print the device snapshot as JSON")
	flag.BoolVar(&o.status, "status", false, "Print the connection status as JSON")
	flag.BoolVar(&o.apps, "apps", false, "Refresh and print the application inventory")
	flag.BoolVar(&o.thirdParty, "third-party", false, "Limit -apps to user-installed packages")
	flag.StringVar(&o.filter, "filter", "", "Filter -apps by name or package")
	flag.StringVar(&o.icon, "icon", "", "Extract the icon of a package")
	flag.StringVar(&o.iconOut, "icon-out", "", "Destination file for -icon")
	flag.BoolVar(&o.processes, "processes", false, "List running applications")
	flag.StringVar(&o.forceStop, "force-stop", "", "Force stop a package")
	flag.StringVar(&o.copy, "copy", "", "Copy a package name to the clipboard")

	flag.StringVar(&o.script, "script", "", "Run a JSON batch script")
	flag.StringVar(&o.install, "install", "", "Install an APK")
	flag.StringVar(&o.uninstall, "uninstall", "", "Uninstall a package")
	flag.StringVar(&o.backup, "backup", "", "Back up a package")
	flag.StringVar(&o.backupOut, "backup-out", "backup.ab", "Destination file for -backup")

	flag.BoolVar(&o.pair, "pair", false, "Switch the USB device to Wi-Fi debugging")
	flag.StringVar(&o.disconnect, "disconnect", "", "Disconnect a Wi-Fi device (host:port)")
	flag.BoolVar(&o.mirror, "mirror", false, "Start a screen mirroring session")
	flag.BoolVar(&o.logcat, "logcat", false, "Follow device logs")
	flag.StringVar(&o.power, "power", "", "Power action: poweroff, reboot or bootloader")
	flag.StringVar(&o.screenshot, "screenshot", "", "Save a screenshot to this file")

	flag.StringVar(&o.size, "size", "", "Set the display resolution (WIDTHxHEIGHT)")
	flag.IntVar(&o.dpi, "dpi", 0, "Set the display density")
	flag.Float64Var(&o.refresh, "refresh", 0, "Set the display refresh rate")
	flag.BoolVar(&o.displayReset, "display-reset", false, "Restore the default display settings")

	flag.BoolVar(&o.monitor, "monitor", false, "Open the monitoring dashboard (default)")

	flag.Parse()

	return o
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	opts := parseFlags()

	if opts.version {
		fmt.Println(version.GetFullVersion())

		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, nil, opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	appLogger, err := lifecycle.CreateComponentLogger("droidctl", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.dispatch(ctx, opts)
}
