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

package session

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/ringbuffer"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

// DefaultLogCapacity is the number of log lines retained.
const DefaultLogCapacity = 500

// LogLine is one logcat line with its parsed priority.
type LogLine struct {
	Text  string             `json:"text"`
	Level telemetry.LogLevel `json:"level"`
	Time  time.Time          `json:"time"`
}

// LogFollower streams device logs into a bounded buffer.
type LogFollower struct {
	streamer adb.Streamer
	logger   logger.Logger
	format   string
	capacity int

	mu     sync.Mutex
	buf    *ringbuffer.Buffer[LogLine]
	stream *adb.LineStream
	done   chan struct{}
	onLine func(LogLine)
}

// NewLogFollower returns a stopped follower using the given logcat output format.
func NewLogFollower(streamer adb.Streamer, log logger.Logger, format string, capacity int) *LogFollower {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if format == "" {
		format = "brief"
	}

	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}

	return &LogFollower{
		streamer: streamer,
		logger:   log,
		format:   format,
		capacity: capacity,
		buf:      ringbuffer.New[LogLine](capacity),
	}
}

// OnLine registers a callback invoked from the follower goroutine for each line.
func (f *LogFollower) OnLine(fn func(LogLine)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onLine = fn
}

// Start begins following with an empty buffer.
func (f *LogFollower) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stream != nil {
		return ErrLogActive
	}

	stream, err := f.streamer.Stream(ctx, "logcat", "-v", f.format)
	if err != nil {
		return err
	}

	f.buf = ringbuffer.New[LogLine](f.capacity)
	f.stream = stream
	f.done = make(chan struct{})

	go f.follow(stream, f.buf, f.done)

	f.logger.Info().Str("format", f.format).Msg("Log following started")

	return nil
}

func (f *LogFollower) follow(stream *adb.LineStream, buf *ringbuffer.Buffer[LogLine], done chan struct{}) {
	defer close(done)

	for text := range stream.Lines() {
		line := LogLine{Text: text, Level: telemetry.ParseLogLevel(text), Time: time.Now()}
		buf.Push(line)

		f.mu.Lock()
		fn := f.onLine
		f.mu.Unlock()

		if fn != nil {
			fn(line)
		}
	}

	<-stream.Done()

	f.mu.Lock()
	if f.stream == stream {
		f.stream = nil
	}
	f.mu.Unlock()

	if err := stream.Err(); err != nil {
		f.logger.Debug().Err(err).Msg("Log stream ended")
	}
}

// Stop ends following and waits for the stream to drain. The buffer is kept.
func (f *LogFollower) Stop() {
	f.mu.Lock()
	stream, done := f.stream, f.done
	f.stream = nil
	f.mu.Unlock()

	if stream == nil {
		return
	}

	_ = stream.Close()
	<-done

	f.logger.Info().Msg("Log following stopped")
}

// Wait blocks until the current stream ends on its own or is stopped.
func (f *LogFollower) Wait(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether a stream is active.
func (f *LogFollower) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stream != nil
}

// Lines returns a copy of the retained lines, oldest first.
func (f *LogFollower) Lines() []LogLine {
	f.mu.Lock()
	buf := f.buf
	f.mu.Unlock()

	return buf.Values()
}

// Clear drops the retained lines. An active stream keeps filling the same
// buffer.
func (f *LogFollower) Clear() {
	f.mu.Lock()
	buf := f.buf
	f.mu.Unlock()

	buf.Reset()
}
