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

import "errors"

var (
	// ErrToolAcquisition means no usable tool set could be produced. It is fatal at bootstrap.
	ErrToolAcquisition = errors.New("tool acquisition failed")

	errNoDownloadURL      = errors.New("no download url for platform")
	errUnexpectedStatus   = errors.New("unexpected http status")
	errArchiveTooLarge    = errors.New("archive exceeds size limit")
	errUnsupportedArchive = errors.New("unsupported archive format")
	errUnsafeEntry        = errors.New("archive entry escapes destination")
	errFileNotInArchive   = errors.New("required file not found in archive")
	errBridgeNotFound     = errors.New("adb not found on this system")
)
