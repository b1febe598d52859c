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
	"sync"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

// MirrorState is the lifecycle of the mirroring session.
type MirrorState int

const (
	MirrorIdle MirrorState = iota
	MirrorActive
)

func (s MirrorState) String() string {
	if s == MirrorActive {
		return "active"
	}

	return "idle"
}

// ProcessRunner executes a child process to completion. *adb.Runner implements it.
type ProcessRunner interface {
	Execute(ctx context.Context, inv adb.Invocation) models.CommandResult
}

// MirrorOptions are the session arguments passed to the mirroring binary.
type MirrorOptions struct {
	MaxSize       int
	VideoBitRate  string
	TurnScreenOff bool
	ExtraArgs     []string
}

// Args renders the options as command-line flags.
func (o MirrorOptions) Args() []string {
	var args []string

	if o.TurnScreenOff {
		args = append(args, "--turn-screen-off")
	}

	if o.MaxSize > 0 {
		args = append(args, "--max-size", strconv.Itoa(o.MaxSize))
	}

	if o.VideoBitRate != "" {
		args = append(args, "--video-bit-rate", o.VideoBitRate)
	}

	return append(args, o.ExtraArgs...)
}

// Mirror runs at most one screen-mirroring process at a time.
type Mirror struct {
	runner ProcessRunner
	tools  models.ToolSet
	opts   MirrorOptions
	logger logger.Logger

	mu    sync.Mutex
	state MirrorState
}

// NewMirror returns an idle Mirror for the provisioned tools.
func NewMirror(runner ProcessRunner, tools models.ToolSet, opts MirrorOptions, log logger.Logger) *Mirror {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Mirror{runner: runner, tools: tools, opts: opts, logger: log}
}

// State reports whether a session is running.
func (m *Mirror) State() MirrorState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Run mirrors the device screen until the window is closed or ctx is
// cancelled. A second concurrent call fails with ErrMirrorActive. The state
// returns to MirrorIdle on every exit path.
func (m *Mirror) Run(ctx context.Context) error {
	if m.tools.MirrorPath == "" {
		return errNoMirrorBin
	}

	m.mu.Lock()
	if m.state == MirrorActive {
		m.mu.Unlock()

		return ErrMirrorActive
	}

	m.state = MirrorActive
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.state = MirrorIdle
		m.mu.Unlock()
	}()

	var env []string
	if m.tools.BridgePath != "" {
		env = append(env, "ADB="+m.tools.BridgePath)
	}

	if m.tools.MirrorServerPath != "" {
		env = append(env, "SCRCPY_SERVER_PATH="+m.tools.MirrorServerPath)
	}

	m.logger.Info().Strs("args", m.opts.Args()).Msg("Mirroring started")

	res := m.runner.Execute(ctx, adb.Invocation{
		Tool:    m.tools.MirrorPath,
		Args:    m.opts.Args(),
		Env:     env,
		Timeout: adb.NoTimeout,
	})

	if ctx.Err() != nil {
		m.logger.Info().Msg("Mirroring cancelled")

		return ctx.Err()
	}

	if err := res.Err(); err != nil {
		return fmt.Errorf("mirroring: %w", err)
	}

	m.logger.Info().Msg("Mirroring ended")

	return nil
}
