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

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvConfigLoaderNestedFields(t *testing.T) {
	t.Setenv("DROIDCTL_BASE_DIR", "/opt/droidctl")
	t.Setenv("DROIDCTL_MONITOR_INTERVAL", "750ms")
	t.Setenv("DROIDCTL_MONITOR_CAPACITY", "120")
	t.Setenv("DROIDCTL_MIRROR_TURN_SCREEN_OFF", "false")
	t.Setenv("DROIDCTL_MIRROR_EXTRA_ARGS", "--no-audio, --stay-awake")
	t.Setenv("DROIDCTL_LOGGING_LEVEL", "debug")
	t.Setenv("DROIDCTL_PROVISIONING_BRIDGE_URLS", `{"linux64":"http://mirror.local/pt.zip"}`)

	cfg := Default()
	require.NoError(t, NewEnvConfigLoader(nil, DefaultEnvPrefix).Load(context.Background(), "", cfg))

	assert.Equal(t, "/opt/droidctl", cfg.BaseDir)
	assert.Equal(t, 750*time.Millisecond, cfg.Monitor.Interval.Std())
	assert.Equal(t, 120, cfg.Monitor.Capacity)
	assert.False(t, cfg.Mirror.TurnScreenOff)
	assert.Equal(t, []string{"--no-audio", "--stay-awake"}, cfg.Mirror.ExtraArgs)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://mirror.local/pt.zip", cfg.Provisioning.BridgeURLs["linux64"])
}

func TestEnvConfigLoaderReportsBadValues(t *testing.T) {
	t.Setenv("DROIDCTL_WIFI_PORT", "fifty")
	t.Setenv("DROIDCTL_MONITOR_INTERVAL", "often")

	err := NewEnvConfigLoader(nil, DefaultEnvPrefix).Load(context.Background(), "", Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DROIDCTL_WIFI_PORT")
	assert.Contains(t, err.Error(), "DROIDCTL_MONITOR_INTERVAL")
}

func TestEnvConfigLoaderConfigJSON(t *testing.T) {
	t.Setenv("DROIDCTL_CONFIG_JSON", `{"nats":{"url":"nats://10.0.0.5:4222"}}`)

	cfg := Default()
	require.NoError(t, NewEnvConfigLoader(nil, DefaultEnvPrefix).Load(context.Background(), "", cfg))

	assert.True(t, cfg.NATS.Enabled())
	assert.Equal(t, "droidctl", cfg.NATS.SubjectPrefix)
}

func TestEnvConfigLoaderRejectsNonPointer(t *testing.T) {
	t.Parallel()

	loader := NewEnvConfigLoader(nil, "X_")

	require.ErrorIs(t, loader.Load(context.Background(), "", Config{}), ErrDstMustBeNonNilPointer)

	var n int
	require.ErrorIs(t, loader.Load(context.Background(), "", &n), ErrDstMustBePointerToStruct)
}
