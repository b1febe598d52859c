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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const (
	streamBacklog    = 64
	maxStreamLine    = 1 << 20
	maxStderrCapture = 4 << 10
)

// LineStream is a lazily produced, cancellable sequence of output lines from a
// long-running process. Lines closes when the process exits or the stream is
// closed; Err then reports why.
type LineStream struct {
	lines  chan string
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Stream starts tool and delivers its stdout line by line. The process is
// killed when ctx is cancelled or Close is called.
func (r *Runner) Stream(ctx context.Context, tool string, args ...string) (*LineStream, error) {
	if tool == "" {
		return nil, errEmptyTool
	}

	streamCtx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(streamCtx, tool, args...)
	cmd.WaitDelay = r.waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()

		return nil, fmt.Errorf("failed to open stdout of %s: %w", tool, err)
	}

	stderr := &limitedBuffer{limit: maxStderrCapture}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()

		return nil, fmt.Errorf("failed to start %s: %w", tool, err)
	}

	s := &LineStream{
		lines:  make(chan string, streamBacklog),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.pump(streamCtx, cmd, stdout, stderr)

	r.logger.Debug().Str("tool", tool).Strs("args", args).Msg("Stream started")

	return s, nil
}

func (s *LineStream) pump(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, stderr *limitedBuffer) {
	defer close(s.done)
	defer close(s.lines)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for {
		if ctx.Err() != nil {
			break
		}

		if !scanner.Scan() {
			break
		}

		select {
		case s.lines <- decode(bytes.TrimRight(scanner.Bytes(), "\r")):
		case <-ctx.Done():
		}
	}

	scanErr := scanner.Err()
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		s.setErr(ctx.Err())
	case scanErr != nil:
		s.setErr(scanErr)
	case waitErr != nil:
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			s.setErr(fmt.Errorf("%w: %s", waitErr, detail))
		} else {
			s.setErr(waitErr)
		}
	}
}

// Lines yields output lines in order.
func (s *LineStream) Lines() <-chan string {
	return s.lines
}

// Done closes once the process has exited and Lines is closed.
func (s *LineStream) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error. It is nil for a clean exit and
// context.Canceled after Close.
func (s *LineStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close stops the process and waits for the stream to drain.
func (s *LineStream) Close() error {
	s.cancel()

	for range s.lines {
	}

	<-s.done

	if err := s.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (s *LineStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}

	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
