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

// Package batch runs JSON command scripts of package installs and removals.
//
// A script looks like
//
//	{"COMMAND": {"UNINSTALL": ["com.example.bloat"], "INSTALL": ["/apks/app.apk"]}}
//
// Command groups run in the order they appear in the document. The legacy
// spelling "UNISTALL" is accepted for removals.
package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	errNotAnObject = errors.New("COMMAND must be an object")
	errBadGroup    = errors.New("command group must be a list of strings")

	errUnknownAction = errors.New("unknown script action")
)

// Action is the operation of one script entry.
type Action string

const (
	ActionUninstall Action = "uninstall"
	ActionInstall   Action = "install"
)

var groupActions = map[string]Action{
	"UNINSTALL": ActionUninstall,
	"UNISTALL":  ActionUninstall,
	"INSTALL":   ActionInstall,
}

// Entry is one package or archive to process.
type Entry struct {
	Action Action
	Target string
}

// Script is a parsed command script.
type Script struct {
	Entries []Entry
	// Ignored lists unknown command groups.
	Ignored []string
}

// Parse reads a script, keeping the document order of command groups.
func Parse(r io.Reader) (*Script, error) {
	var doc struct {
		Command json.RawMessage `json:"COMMAND"`
	}

	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	script := &Script{}

	raw := bytes.TrimSpace(doc.Command)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return script, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotAnObject
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid script: %w", err)
		}

		key, _ := keyTok.(string)

		var items []string
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("%s: %w", key, errBadGroup)
		}

		action, known := groupActions[key]
		if !known {
			script.Ignored = append(script.Ignored, key)

			continue
		}

		for _, item := range items {
			script.Entries = append(script.Entries, Entry{Action: action, Target: item})
		}
	}

	return script, nil
}

// ParseFile reads a script from disk.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}
