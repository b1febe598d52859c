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

import "time"

// Per-call deadlines for bridge commands.
const (
	StatusTimeout    = 5 * time.Second
	QueryTimeout     = 10 * time.Second
	ListingTimeout   = 20 * time.Second
	PropsTimeout     = 15 * time.Second
	PullTimeout      = 60 * time.Second
	InstallTimeout   = 300 * time.Second
	PowerTimeout     = 15 * time.Second
	UninstallTimeout = 30 * time.Second

	// NoTimeout runs a command until it exits or its context is cancelled.
	NoTimeout time.Duration = 0
)
