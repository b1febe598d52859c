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

package toolchain

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/droidctl/pkg/models"
)

var errOffline = errors.New("offline")

type stubProvisioner struct {
	err  error
	path string
}

func (s stubProvisioner) EnsureBridge(context.Context) error { return s.err }

func (s stubProvisioner) Paths() models.ToolSet { return models.ToolSet{BridgePath: s.path} }

func TestLocateBridgePrefersProvisionedCopy(t *testing.T) {
	t.Parallel()

	path, err := LocateBridge(context.Background(), stubProvisioner{path: "/cache/tools/linux64/adb"})
	require.NoError(t, err)
	assert.Equal(t, "/cache/tools/linux64/adb", path)
}

func TestLocateBridgeFallsBackToExtraPaths(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	requireUnix(t)

	dir := t.TempDir()
	extra := filepath.Join(dir, "adb")
	writeExecutable(t, extra)

	path, err := LocateBridge(context.Background(), stubProvisioner{err: errOffline}, filepath.Join(dir, "missing"), extra)
	require.NoError(t, err)

	// A system adb in a well-known location wins over extra paths.
	if path != extra {
		assert.Contains(t, WellKnownBridgePaths(), path)
	}
}

func TestLocateBridgeReportsProvisioningError(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	for _, p := range WellKnownBridgePaths() {
		if isExecutable(p) {
			t.Skip("system adb installed")
		}
	}

	_, err := LocateBridge(context.Background(), stubProvisioner{err: errOffline}, filepath.Join(t.TempDir(), "adb"))
	require.ErrorIs(t, err, errOffline)
	require.ErrorIs(t, err, errBridgeNotFound)
}
