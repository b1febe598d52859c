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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/droidctl/pkg/inventory"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/tasks"
	"github.com/carverauto/droidctl/pkg/toolchain"
)

var errInstallFailed = errors.New("INSTALL_FAILED_VERSION_DOWNGRADE")

func TestPlatformURLs(t *testing.T) {
	t.Parallel()

	urls := platformURLs(map[string]string{"linux64": "https://example.invalid/adb.zip"})
	assert.Equal(t, "https://example.invalid/adb.zip", urls[toolchain.PlatformLinux64])
	assert.Empty(t, platformURLs(nil))
}

func TestDisplayResult(t *testing.T) {
	t.Parallel()

	require.NoError(t, displayResult(true))
	require.ErrorIs(t, displayResult(false), errDisplayRejected)
}

func TestDispatchCopiesPackageName(t *testing.T) {
	t.Parallel()

	var copied []string

	log := logger.NewTestLogger()
	a := &app{logger: log, inventory: inventory.NewService(nil, log, inventory.Options{
		Clipboard: func(s string) error {
			copied = append(copied, s)

			return nil
		},
	})}

	require.NoError(t, a.dispatch(context.Background(), options{copy: "com.example.app"}))
	assert.Equal(t, []string{"com.example.app"}, copied)
}

func TestRunTask(t *testing.T) {
	t.Parallel()

	log := logger.NewTestLogger()
	a := &app{logger: log, supervisor: tasks.NewSupervisor(context.Background(), log, tasks.Notifiers{})}

	require.NoError(t, a.runTask("install", true, func(context.Context) (string, error) {
		return "Success", nil
	}))

	err := a.runTask("install", true, func(context.Context) (string, error) {
		return "", errInstallFailed
	})
	require.ErrorIs(t, err, errInstallFailed)

	var taskErr *tasks.TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "install", taskErr.Name)
}
