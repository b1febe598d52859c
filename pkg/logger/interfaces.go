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


package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the logging surface injected into every service.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

// NewTestLogger returns a Logger that discards everything.
func NewTestLogger() Logger {
	return discardLogger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

type discardLogger struct {
	zl zerolog.Logger
}

func (d discardLogger) Debug() *zerolog.Event { return d.zl.Debug() }
func (d discardLogger) Info() *zerolog.Event  { return d.zl.Info() }
func (d discardLogger) Warn() *zerolog.Event  { return d.zl.Warn() }
func (d discardLogger) Error() *zerolog.Event { return d.zl.Error() }
