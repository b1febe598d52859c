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
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

var nameReplacer = strings.NewReplacer("_", " ", "-", " ")

// FallbackName derives a display name from the last segment of a package
// identifier: "com.example.my_app" becomes "My App".
func FallbackName(pkg string) string {
	segment := pkg
	if i := strings.LastIndex(pkg, "."); i >= 0 {
		segment = pkg[i+1:]
	}

	return cases.Title(language.Und).String(nameReplacer.Replace(segment))
}

// ResolveInfo reads the display name and version of one package. An
// unreadable package dump is an error; a missing version is N/A.
func (s *Service) ResolveInfo(ctx context.Context, pkg string) (models.AppRecord, error) {
	dump := s.exec.Shell(ctx, adb.QueryTimeout, "pm", "dump", pkg)
	if err := dump.Err(); err != nil {
		return models.AppRecord{}, fmt.Errorf("pm dump %s: %w", pkg, err)
	}

	record := models.AppRecord{Package: pkg, Name: FallbackName(pkg), Version: models.NotAvailable}

	if label, ok := telemetry.ParseLabel(dump.Stdout); ok {
		record.Name = label
	}

	info := s.exec.Shell(ctx, adb.QueryTimeout, "dumpsys", "package", pkg)
	if err := info.Err(); err != nil {
		s.logger.Debug().Err(err).Str("package", pkg).Msg("Version lookup failed")

		return record, nil
	}

	if version, ok := telemetry.ParseVersionName(info.Stdout); ok {
		record.Version = version
	}

	return record, nil
}

// BatchResolve resolves every package with a bounded number of concurrent
// lookups. A failed lookup yields a degraded record named after the package,
// so the result always holds exactly one record per input, in no particular
// order.
func (s *Service) BatchResolve(ctx context.Context, pkgs []string) []models.AppRecord {
	var (
		mu      sync.Mutex
		records = make([]models.AppRecord, 0, len(pkgs))
	)

	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for _, pkg := range pkgs {
		g.Go(func() error {
			record, err := s.ResolveInfo(ctx, pkg)
			if err != nil {
				s.logger.Warn().Err(err).Str("package", pkg).Msg("Package resolution degraded")

				record = models.AppRecord{Package: pkg, Name: pkg, Version: models.NotAvailable}
			}

			mu.Lock()
			records = append(records, record)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return records
}
