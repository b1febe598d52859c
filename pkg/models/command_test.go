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

package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandResultSuccess(t *testing.T) {
	t.Parallel()

	assert.True(t, CommandResult{ExitCode: 0}.Success())
	assert.False(t, CommandResult{ExitCode: 1}.Success())
	assert.False(t, CommandResult{ExitCode: 0, TimedOut: true}.Success())
}

func TestCommandResultErr(t *testing.T) {
	t.Parallel()

	require.NoError(t, CommandResult{Stdout: "ok"}.Err())

	err := CommandResult{ExitCode: -1, TimedOut: true}.Err()
	assert.ErrorIs(t, err, ErrCommandTimeout)

	err = CommandResult{ExitCode: 1, Stderr: "error: no devices/emulators found\n"}.Err()
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "no devices/emulators found")
	assert.False(t, errors.Is(err, ErrCommandTimeout))

	err = CommandResult{ExitCode: 255}.Err()
	assert.EqualError(t, err, "command failed: exit code 255")
}

func TestCommandResultOutput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Success", CommandResult{Stdout: "  Success\r\n"}.Output())
}
