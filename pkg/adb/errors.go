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

package adb

import (
	"errors"

	"github.com/carverauto/droidctl/pkg/models"
)

var (
	// ErrCommandTimeout is returned by CommandResult.Err for a command killed at its deadline.
	ErrCommandTimeout = models.ErrCommandTimeout
	// ErrCommandFailed is returned by CommandResult.Err for a non-zero exit.
	ErrCommandFailed = models.ErrCommandFailed

	errEmptyTool = errors.New("tool path is empty")
)
