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

package models

import (
	"encoding/base64"
	"fmt"
)

// AppRecord is one installed application. Package is the unique key.
type AppRecord struct {
	Package string `json:"package"`
	Name    string `json:"name"`
	Version string `json:"version"`
	IconRef string `json:"icon_ref,omitempty"`
}

const (
	MIMETypePNG = "image/png"
	MIMETypeSVG = "image/svg+xml"
)

// Icon is the image shown for an application.
type Icon struct {
	Package     string `json:"package"`
	Data        []byte `json:"-"`
	MIMEType    string `json:"mime_type"`
	Placeholder bool   `json:"placeholder"`
}

// DataURL encodes the icon as a base64 data URL.
func (i Icon) DataURL() string {
	mime := i.MIMEType
	if mime == "" {
		mime = MIMETypePNG
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(i.Data))
}
