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

// Package adb runs the device bridge and its companion tools as child
// processes with bounded deadlines, and classifies their outcomes.
package adb

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

const (
	exitCodeUnavailable = -1
	defaultWaitDelay    = 2 * time.Second
)

// Invocation describes a single child process.
type Invocation struct {
	Tool    string
	Args    []string
	Env     []string
	Dir     string
	Timeout time.Duration
}

// Runner executes external tools. It never returns an error for an ordinary
// failure; every outcome is folded into a models.CommandResult.
type Runner struct {
	logger    logger.Logger
	waitDelay time.Duration
}

// NewRunner returns a Runner logging through log.
func NewRunner(log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Runner{
		logger:    log,
		waitDelay: defaultWaitDelay,
	}
}

// Run executes tool with args under timeout. A non-positive timeout disables the deadline.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, tool string, args ...string) models.CommandResult {
	return r.Execute(ctx, Invocation{Tool: tool, Args: args, Timeout: timeout})
}

// Execute runs inv to completion. On timeout the process is killed and the
// result carries no output, TimedOut=true and ExitCode=-1. A tool that cannot
// be started yields ExitCode=-1 with the cause in Stderr.
func (r *Runner) Execute(ctx context.Context, inv Invocation) models.CommandResult {
	if inv.Tool == "" {
		return models.CommandResult{ExitCode: exitCodeUnavailable, Stderr: errEmptyTool.Error()}
	}

	runCtx := ctx

	if inv.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Tool, inv.Args...)
	cmd.WaitDelay = r.waitDelay
	cmd.Dir = inv.Dir

	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		r.logger.Warn().
			Str("tool", inv.Tool).
			Strs("args", inv.Args).
			Dur("timeout", inv.Timeout).
			Msg("Command timed out")

		return models.CommandResult{ExitCode: exitCodeUnavailable, TimedOut: true}
	}

	result := models.CommandResult{
		Stdout: decode(stdout.Bytes()),
		Stderr: decode(stderr.Bytes()),
	}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = exitCodeUnavailable
		if result.Stderr == "" {
			result.Stderr = err.Error()
		}
	}

	r.logger.Debug().
		Str("tool", inv.Tool).
		Strs("args", inv.Args).
		Int("exit_code", result.ExitCode).
		Dur("elapsed", time.Since(started)).
		Msg("Command finished")

	return result
}

// decode converts process output to a string, replacing invalid UTF-8 with U+FFFD.
func decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}

	return string(out)
}
