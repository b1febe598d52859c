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

package adb

import (
	"context"
	"time"

	"github.com/carverauto/droidctl/pkg/models"
)

//go:generate mockgen -destination=mock_executor.go -package=adb github.com/carverauto/droidctl/pkg/adb Executor

// Executor issues bridge commands against the active device.
type Executor interface {
	// Exec runs the bridge with args, e.g. Exec(ctx, t, "install", "-r", apk).
	Exec(ctx context.Context, timeout time.Duration, args ...string) models.CommandResult
	// Shell runs args through "adb shell".
	Shell(ctx context.Context, timeout time.Duration, args ...string) models.CommandResult
}

// Streamer follows long-running bridge output such as logcat.
type Streamer interface {
	Stream(ctx context.Context, args ...string) (*LineStream, error)
}

// Bridge binds a Runner to the adb binary of a provisioned tool set.
type Bridge struct {
	runner *Runner
	path   string
}

var (
	_ Executor = (*Bridge)(nil)
	_ Streamer = (*Bridge)(nil)
)

// NewBridge returns a Bridge invoking the adb binary at path.
func NewBridge(runner *Runner, path string) *Bridge {
	return &Bridge{runner: runner, path: path}
}

// Path returns the adb binary location.
func (b *Bridge) Path() string {
	return b.path
}

func (b *Bridge) Exec(ctx context.Context, timeout time.Duration, args ...string) models.CommandResult {
	return b.runner.Run(ctx, timeout, b.path, args...)
}

func (b *Bridge) Shell(ctx context.Context, timeout time.Duration, args ...string) models.CommandResult {
	return b.runner.Run(ctx, timeout, b.path, append([]string{"shell"}, args...)...)
}

func (b *Bridge) Stream(ctx context.Context, args ...string) (*LineStream, error) {
	return b.runner.Stream(ctx, b.path, args...)
}
