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

package inventory

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/carverauto/droidctl/pkg/adb"
)

// Uninstall removes pkg for the primary user and drops it from the record
// set. The bridge output is returned on success and failure.
func (s *Service) Uninstall(ctx context.Context, pkg string) (string, error) {
	if pkg == "" {
		return "", errEmptyPackage
	}

	res := s.exec.Shell(ctx, adb.UninstallTimeout, "pm", "uninstall", "--user", "0", pkg)
	if err := res.Err(); err != nil {
		s.logger.Warn().Err(err).Str("package", pkg).Msg("Uninstall failed")

		return res.Output(), fmt.Errorf("uninstall %s: %w", pkg, err)
	}

	s.drop(pkg)
	s.logger.Info().Str("package", pkg).Msg("Package uninstalled")

	return res.Output(), nil
}

// Install installs or replaces an application archive from the local disk.
func (s *Service) Install(ctx context.Context, apkPath string) (string, error) {
	res := s.exec.Exec(ctx, adb.InstallTimeout, "install", "-r", apkPath)
	if err := res.Err(); err != nil {
		s.logger.Warn().Err(err).Str("file", apkPath).Msg("Install failed")

		return res.Output(), fmt.Errorf("install %s: %w", filepath.Base(apkPath), err)
	}

	s.logger.Info().Str("file", apkPath).Msg("Package installed")

	return res.Output(), nil
}

// Backup writes an adb backup of pkg, including its archive, to dest. The
// device asks the user to confirm before data is sent.
func (s *Service) Backup(ctx context.Context, pkg, dest string) error {
	if pkg == "" {
		return errEmptyPackage
	}

	if err := s.exec.Exec(ctx, adb.InstallTimeout, "backup", "-f", dest, "-apk", pkg).Err(); err != nil {
		return fmt.Errorf("backup %s: %w", pkg, err)
	}

	s.logger.Info().Str("package", pkg).Str("dest", dest).Msg("Package backup written")

	return nil
}

// CopyPackageName puts pkg on the system clipboard.
func (s *Service) CopyPackageName(pkg string) error {
	if pkg == "" {
		return errEmptyPackage
	}

	if err := s.copyText(pkg); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}

	return nil
}
