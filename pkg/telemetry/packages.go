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

package telemetry

import (
	"regexp"
	"strings"
)

var (
	labelRe       = regexp.MustCompile(`label=(.+)`)
	versionNameRe = regexp.MustCompile(`versionName=(.+)`)
)

// ParsePackageList reads "pm list packages" output.
func ParsePackageList(raw string) []string {
	var pkgs []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		pkg, ok := strings.CutPrefix(line, "package:")
		if !ok || pkg == "" {
			continue
		}

		pkgs = append(pkgs, pkg)
	}

	return pkgs
}

// ParsePackagePath returns the first archive path of "pm path <pkg>".
// Split APKs list base.apk first.
func ParsePackagePath(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		if path, ok := strings.CutPrefix(strings.TrimSpace(line), "package:"); ok && path != "" {
			return path, true
		}
	}

	return "", false
}

// ParseLabel returns the first application label of a package dump that is
// not "null". Activities without their own label report "null" ahead of the
// application label.
func ParseLabel(raw string) (string, bool) {
	for _, m := range labelRe.FindAllStringSubmatch(raw, -1) {
		if v := strings.TrimSpace(m[1]); v != "" && v != "null" {
			return v, true
		}
	}

	return "", false
}

// ParseVersionName returns the first versionName of "dumpsys package".
func ParseVersionName(raw string) (string, bool) {
	return firstMatch(versionNameRe, raw)
}

func firstMatch(re *regexp.Regexp, raw string) (string, bool) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	if v := strings.TrimSpace(m[1]); v != "" {
		return v, true
	}

	return "", false
}
