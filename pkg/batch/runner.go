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

package batch

import (
	"context"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

// Runner executes scripts one entry at a time.
type Runner struct {
	exec   adb.Executor
	logger logger.Logger
}

func NewRunner(exec adb.Executor, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Runner{exec: exec, logger: log}
}

// Run executes every entry in order and returns one result per entry. A
// failing entry never stops the script.
func (r *Runner) Run(ctx context.Context, script *Script) []models.BatchResult {
	for _, group := range script.Ignored {
		r.logger.Warn().Str("group", group).Msg("Ignoring unknown command group")
	}

	results := make([]models.BatchResult, 0, len(script.Entries))

	for _, entry := range script.Entries {
		results = append(results, r.runEntry(ctx, entry))
	}

	return results
}

// RunFile parses and runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) ([]models.BatchResult, error) {
	script, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	return r.Run(ctx, script), nil
}

func (r *Runner) runEntry(ctx context.Context, entry Entry) models.BatchResult {
	var (
		result models.BatchResult
		res    models.CommandResult
	)

	switch entry.Action {
	case ActionUninstall:
		result = models.BatchResult{Kind: models.BatchKindUninstall, Package: entry.Target}
		res = r.exec.Shell(ctx, adb.UninstallTimeout, "pm", "uninstall", "--user", "0", entry.Target)
	case ActionInstall:
		result = models.BatchResult{Kind: models.BatchKindInstall, File: entry.Target}
		res = r.exec.Exec(ctx, adb.InstallTimeout, "install", "-r", entry.Target)
	default:
		return models.BatchResult{Kind: string(entry.Action), Package: entry.Target, Error: errUnknownAction.Error()}
	}

	result.Success = res.Success()
	result.Output = res.Stdout
	result.Error = res.Stderr

	if err := res.Err(); err != nil && result.Error == "" {
		result.Error = err.Error()
	}

	r.logger.Info().
		Str("action", string(entry.Action)).
		Str("target", entry.Target).
		Bool("success", result.Success).
		Msg("Script entry processed")

	return result
}
