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

// Package telemetry turns the text printed by the device bridge into typed
// values. Every parser is pure and total: malformed or missing input degrades
// to models.NotAvailable (or a false ok flag), never to an error or a panic.
package telemetry

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/carverauto/droidctl/pkg/models"
)

const (
	Yes          = "Sim"
	No           = "Não"
	NotSupported = "Não Suportado"
	Unknown      = "Desconhecido"
	Locked       = "Bloqueado"
	Unlocked     = "Desbloqueado"
)

var propertyLineRe = regexp.MustCompile(`^\[(.*?)\]: \[(.*?)\]`)

// Properties is a parsed getprop dump.
type Properties map[string]string

// ParseProperties extracts "[key]: [value]" lines. Lines that do not match,
// including the continuation lines of multi-line values, are skipped.
func ParseProperties(raw string) Properties {
	props := make(Properties)

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		m := propertyLineRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}

		props[m[1]] = m[2]
	}

	return props
}

// Get returns the property value or NotAvailable.
func (p Properties) Get(key string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}

	return models.NotAvailable
}

// Bool renders a boolean property: "true"/"1" as yes, "false"/"0" as no,
// anything else as NotAvailable.
func (p Properties) Bool(key, yes, no string) string {
	switch p[key] {
	case "true", "1":
		return yes
	case "false", "0":
		return no
	default:
		return models.NotAvailable
	}
}

// BootloaderStatus reads the verified boot state, preferring the vbmeta
// device state over the verified boot state.
func BootloaderStatus(p Properties) string {
	state := p.Get("ro.boot.vbmeta.device_state")
	if state == models.NotAvailable {
		state = p.Get("ro.boot.verifiedbootstate")
	}

	switch state {
	case "locked":
		return Locked
	case "unlocked":
		return Unlocked
	default:
		return models.NotAvailable
	}
}

// ParseOEMUnlockAllowed interprets "settings get global oem_unlocking".
func ParseOEMUnlockAllowed(raw string) string {
	switch strings.TrimSpace(raw) {
	case "1":
		return Yes
	case "0":
		return No
	default:
		return Unknown
	}
}

// ParseSetting normalises a "settings get" answer; the literal "null" means unset.
func ParseSetting(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || v == "null" {
		return models.NotAvailable
	}

	return v
}
