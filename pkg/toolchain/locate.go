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
	"os"
	"os/exec"
	"path/filepath"

	"github.com/carverauto/droidctl/pkg/models"
)

// BridgeProvisioner installs the bridge binary and reports where it lives.
type BridgeProvisioner interface {
	EnsureBridge(ctx context.Context) error
	Paths() models.ToolSet
}

// WellKnownBridgePaths lists system install locations checked when provisioning fails.
func WellKnownBridgePaths() []string {
	paths := []string{"/usr/bin/adb", "/usr/local/bin/adb"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "bin", "adb"))
	}

	return paths
}

// LocateBridge returns a usable adb path. The provisioned copy is preferred;
// when provisioning fails the PATH and then the well-known locations, followed
// by extra, are searched. If nothing is found the provisioning error is
// returned.
func LocateBridge(ctx context.Context, p BridgeProvisioner, extra ...string) (string, error) {
	provisionErr := p.EnsureBridge(ctx)
	if provisionErr == nil {
		return p.Paths().BridgePath, nil
	}

	if path, err := exec.LookPath("adb"); err == nil {
		return path, nil
	}

	candidates := append(WellKnownBridgePaths(), extra...)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() && isExecutable(path) {
			return path, nil
		}
	}

	return "", errors.Join(provisionErr, errBridgeNotFound)
}
