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

// Package session holds the interactive device operations: wireless
// debugging, screen mirroring, log following and power actions.
package session

import "errors"

var (
	// ErrMirrorActive is returned when a mirroring session is already running.
	ErrMirrorActive = errors.New("mirroring already active")
	// ErrNoDeviceIP is returned when the device has no IPv4 address on its Wi-Fi interface.
	ErrNoDeviceIP = errors.New("device has no Wi-Fi IPv4 address")
	// ErrConnectRejected is returned when adb connect does not report a connection.
	ErrConnectRejected = errors.New("connection not established")
	// ErrLogActive is returned when log following is already running.
	ErrLogActive     = errors.New("log following already active")
	errNoMirrorBin   = errors.New("mirroring binary not configured")
	errUnknownAction = errors.New("unknown power action")
)
