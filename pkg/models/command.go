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

// Package models holds the data types shared by the droidctl services.
package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCommandTimeout is reported for a command killed at its deadline.
	ErrCommandTimeout = errors.New("command timed out")
	// ErrCommandFailed is reported for a command that ran and exited non-zero, or never started.
	ErrCommandFailed = errors.New("command failed")
)

// ToolSet holds the absolute paths of the provisioned vendor binaries.
type ToolSet struct {
	BridgePath       string `json:"bridge_path"`
	MirrorPath       string `json:"mirror_path"`
	MirrorServerPath string `json:"mirror_server_path"`
}

// CommandResult is the outcome of a single external process invocation.
// A timed out command carries no output.
type CommandResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timed_out"`
}

// Success reports whether the process exited cleanly before its deadline.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Output returns stdout with surrounding whitespace removed.
func (r CommandResult) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Err maps the result onto ErrCommandTimeout or ErrCommandFailed, or nil on success.
func (r CommandResult) Err() error {
	switch {
	case r.TimedOut:
		return ErrCommandTimeout
	case r.ExitCode == 0:
		return nil
	}

	detail := strings.TrimSpace(r.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(r.Stdout)
	}

	if detail == "" {
		return fmt.Errorf("%w: exit code %d", ErrCommandFailed, r.ExitCode)
	}

	return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, r.ExitCode, detail)
}
