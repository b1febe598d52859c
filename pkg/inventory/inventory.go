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

// Package inventory lists installed applications, resolves their display
// names and versions, and extracts their launcher icons.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

// DefaultWorkers bounds concurrent per-package resolution.
const DefaultWorkers = 10

var (
	errNoPackagePath = errors.New("package path not found")
	errEmptyPackage  = errors.New("package name is empty")
)

// Options configures a Service.
type Options struct {
	// IconCacheDir holds extracted icons as <package>.png. Icons are kept in
	// memory only when empty.
	IconCacheDir string
	// TempDir receives pulled archives; os.TempDir() when empty.
	TempDir string
	Workers int
	// Clipboard receives copied package names; the system clipboard when nil.
	Clipboard func(string) error
}

// Service owns the current application record set and the icon cache.
type Service struct {
	exec    adb.Executor
	logger  logger.Logger
	workers int
	tempDir string
	icons   *iconCache

	copyText func(string) error

	mu      sync.RWMutex
	records []models.AppRecord
}

// NewService returns an inventory Service bound to a bridge executor.
func NewService(exec adb.Executor, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NewTestLogger()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	return &Service{
		exec:     exec,
		logger:   log,
		workers:  workers,
		tempDir:  tempDir,
		icons:    newIconCache(opts.IconCacheDir),
		copyText: copyText,
	}
}

// ListPackages returns installed package names, optionally third-party only.
func (s *Service) ListPackages(ctx context.Context, thirdPartyOnly bool) ([]string, error) {
	args := []string{"pm", "list", "packages"}
	if thirdPartyOnly {
		args = append(args, "-3")
	}

	res := s.exec.Shell(ctx, adb.ListingTimeout, args...)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	return telemetry.ParsePackageList(res.Stdout), nil
}

// Refresh replaces the record set with a fresh listing sorted by name.
func (s *Service) Refresh(ctx context.Context, thirdPartyOnly bool) ([]models.AppRecord, error) {
	pkgs, err := s.ListPackages(ctx, thirdPartyOnly)
	if err != nil {
		return nil, err
	}

	records := s.BatchResolve(ctx, pkgs)
	sortRecords(records)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.logger.Info().Int("packages", len(records)).Bool("third_party", thirdPartyOnly).Msg("Inventory refreshed")

	return cloneRecords(records), nil
}

// Records returns a copy of the current record set.
func (s *Service) Records() []models.AppRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneRecords(s.records)
}

// Filter returns the records whose name or package contains query,
// ignoring case. An empty query returns every record.
func (s *Service) Filter(query string) []models.AppRecord {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return cloneRecords(s.records)
	}

	var out []models.AppRecord

	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Name), query) || strings.Contains(strings.ToLower(r.Package), query) {
			out = append(out, r)
		}
	}

	return out
}

func (s *Service) drop(pkg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]

	for _, r := range s.records {
		if r.Package != pkg {
			kept = append(kept, r)
		}
	}

	s.records = kept
}

func sortRecords(records []models.AppRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := strings.ToLower(records[i].Name), strings.ToLower(records[j].Name)
		if a != b {
			return a < b
		}

		return records[i].Package < records[j].Package
	})
}

func cloneRecords(records []models.AppRecord) []models.AppRecord {
	if records == nil {
		return nil
	}

	out := make([]models.AppRecord, len(records))
	copy(out, records)

	return out
}
