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
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
}

func collect(t *testing.T, s *LineStream) []string {
	t.Helper()

	var lines []string

	timeout := time.After(5 * time.Second)

	for {
		select {
		case line, ok := <-s.Lines():
			if !ok {
				return lines
			}

			lines = append(lines, line)
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func TestStreamDeliversLinesInOrder(t *testing.T) {
	t.Parallel()
	requireShell(t)

	s, err := NewRunner(nil).Stream(context.Background(), "sh", "-c", `printf 'E/ActivityManager: crash\r\nW/Wifi: weak\nI/System: ok\n'`)
	require.NoError(t, err)

	lines := collect(t, s)

	assert.Equal(t, []string{"E/ActivityManager: crash", "W/Wifi: weak", "I/System: ok"}, lines)
	<-s.Done()
	assert.NoError(t, s.Err())
}

func TestStreamCloseStopsProcess(t *testing.T) {
	t.Parallel()
	requireShell(t)

	s, err := NewRunner(nil).Stream(context.Background(), "sh", "-c", "while true; do echo tick; sleep 0.05; done")
	require.NoError(t, err)

	select {
	case line := <-s.Lines():
		assert.Equal(t, "tick", line)
	case <-time.After(5 * time.Second):
		t.Fatal("no output")
	}

	done := make(chan error, 1)
	go func() { done <- s.Close() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	assert.ErrorIs(t, s.Err(), context.Canceled)
}

func TestStreamReportsFailure(t *testing.T) {
	t.Parallel()
	requireShell(t)

	s, err := NewRunner(nil).Stream(context.Background(), "sh", "-c", "echo 'no devices' >&2; exit 1")
	require.NoError(t, err)

	assert.Empty(t, collect(t, s))
	<-s.Done()
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "no devices")
}

func TestStreamStartFailure(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(nil).Stream(context.Background(), "/nonexistent/adb", "logcat")
	require.Error(t, err)

	_, err = NewRunner(nil).Stream(context.Background(), "")
	require.Error(t, err)
}
