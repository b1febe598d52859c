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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

const (
	iconFileName = "ic_launcher.png"
	maxIconBytes = 4 << 20
)

var errIconNotFound = errors.New("no launcher icon in archive")

// iconSearchOrder lists archive entries tried before any other launcher icon.
var iconSearchOrder = []string{
	"res/mipmap-xxxhdpi-v4/ic_launcher.png",
	"res/mipmap-xxhdpi-v4/ic_launcher.png",
	"res/mipmap-xhdpi-v4/ic_launcher.png",
	"res/mipmap-hdpi-v4/ic_launcher.png",
	"res/mipmap-mdpi-v4/ic_launcher.png",
	"res/mipmap-xxxhdpi/ic_launcher.png",
	"res/mipmap-xxhdpi/ic_launcher.png",
	"res/mipmap-xhdpi/ic_launcher.png",
	"res/mipmap-hdpi/ic_launcher.png",
	"res/mipmap-mdpi/ic_launcher.png",
	"res/drawable-xxhdpi-v4/icon.png",
	"res/drawable-xxhdpi/icon.png",
}

// densityRank orders fallback entries; earlier substrings win.
var densityRank = []string{"xxxhdpi", "xxhdpi", "xhdpi"}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="48" height="48" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M21 16V8a2 2 0 0 0-1-1.73l-7-4a2 2 0 0 0-2 0l-7 4A2 2 0 0 0 3 8v8a2 2 0 0 0 1 1.73l7 4a2 2 0 0 0 2 0l7-4A2 2 0 0 0 21 16z"></path><polyline points="3.27 6.96 12 12.01 20.73 6.96"></polyline><line x1="12" y1="22.08" x2="12" y2="12"></line></svg>`

// PlaceholderIcon is returned when no icon can be obtained for a package.
func PlaceholderIcon(pkg string) models.Icon {
	return models.Icon{
		Package:     pkg,
		Data:        []byte(placeholderSVG),
		MIMEType:    models.MIMETypeSVG,
		Placeholder: true,
	}
}

// iconCache mirrors <dir>/<package>.png in memory. Each package is written
// to disk at most once per process.
type iconCache struct {
	dir string

	mu      sync.RWMutex
	memory  map[string][]byte
	written map[string]bool
}

func newIconCache(dir string) *iconCache {
	return &iconCache{
		dir:     dir,
		memory:  make(map[string][]byte),
		written: make(map[string]bool),
	}
}

func (c *iconCache) path(pkg string) string {
	return filepath.Join(c.dir, pkg+".png")
}

func (c *iconCache) get(pkg string) ([]byte, bool) {
	c.mu.RLock()
	data, ok := c.memory[pkg]
	c.mu.RUnlock()

	if ok || c.dir == "" {
		return data, ok
	}

	data, err := os.ReadFile(c.path(pkg))
	if err != nil || len(data) == 0 {
		return nil, false
	}

	c.mu.Lock()
	c.memory[pkg] = data
	c.mu.Unlock()

	return data, true
}

// put stores data in memory and, the first time only, on disk.
func (c *iconCache) put(pkg string, data []byte) error {
	c.mu.Lock()
	c.memory[pkg] = data
	first := !c.written[pkg]
	c.written[pkg] = true
	c.mu.Unlock()

	if !first || c.dir == "" {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(c.path(pkg), data, 0o644)
}

// Icon returns the launcher icon of pkg from memory, then the disk cache,
// then the installed archive. Any failure yields PlaceholderIcon.
func (s *Service) Icon(ctx context.Context, pkg string) models.Icon {
	if pkg == "" || strings.ContainsAny(pkg, `/\`) {
		return PlaceholderIcon(pkg)
	}

	if data, ok := s.icons.get(pkg); ok {
		return models.Icon{Package: pkg, Data: data, MIMEType: models.MIMETypePNG}
	}

	data, err := s.extractIcon(ctx, pkg)
	if err != nil {
		s.logger.Debug().Err(err).Str("package", pkg).Msg("Icon extraction failed")

		return PlaceholderIcon(pkg)
	}

	if err := s.icons.put(pkg, data); err != nil {
		s.logger.Warn().Err(err).Str("package", pkg).Msg("Failed to cache icon")
	}

	return models.Icon{Package: pkg, Data: data, MIMEType: models.MIMETypePNG}
}

// extractIcon pulls the installed archive to a temporary file and reads the
// best launcher icon from it. The temporary file is always removed.
func (s *Service) extractIcon(ctx context.Context, pkg string) ([]byte, error) {
	remote, err := s.packagePath(ctx, pkg)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.tempDir, pkg+"-*.apk")
	if err != nil {
		return nil, err
	}

	local := tmp.Name()
	_ = tmp.Close()

	defer func() { _ = os.Remove(local) }()

	if err := s.exec.Exec(ctx, adb.PullTimeout, "pull", remote, local).Err(); err != nil {
		return nil, fmt.Errorf("pull %s: %w", remote, err)
	}

	return readIcon(local)
}

func (s *Service) packagePath(ctx context.Context, pkg string) (string, error) {
	res := s.exec.Shell(ctx, adb.QueryTimeout, "pm", "path", pkg)
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("pm path %s: %w", pkg, err)
	}

	remote, ok := telemetry.ParsePackagePath(res.Stdout)
	if !ok {
		return "", fmt.Errorf("%w: %s", errNoPackagePath, pkg)
	}

	return remote, nil
}

func readIcon(archivePath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	entries := make(map[string]*zip.File, len(r.File))
	names := make([]string, 0, len(r.File))

	for _, f := range r.File {
		entries[f.Name] = f
		names = append(names, f.Name)
	}

	name, ok := SelectIconEntry(names)
	if !ok {
		return nil, errIconNotFound
	}

	rc, err := entries[name].Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxIconBytes))
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, errIconNotFound
	}

	return data, nil
}

// SelectIconEntry picks the launcher icon among archive entry names: the first
// hit of the fixed search order, otherwise any ic_launcher.png ranked by
// density directory.
func SelectIconEntry(names []string) (string, bool) {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	for _, candidate := range iconSearchOrder {
		if present[candidate] {
			return candidate, true
		}
	}

	var fallback []string

	for _, n := range names {
		if strings.Contains(n, iconFileName) {
			fallback = append(fallback, n)
		}
	}

	if len(fallback) == 0 {
		return "", false
	}

	sort.SliceStable(fallback, func(i, j int) bool {
		return densityScore(fallback[i]) > densityScore(fallback[j])
	})

	return fallback[0], true
}

// densityScore weighs density markers lexicographically, matching each
// marker as a plain substring ("xxxhdpi" also contains "xxhdpi" and "xhdpi").
func densityScore(name string) int {
	score := 0

	for _, marker := range densityRank {
		score <<= 1

		if strings.Contains(name, marker) {
			score |= 1
		}
	}

	return score
}
