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

// Package tasks supervises fire-and-forget background work. Every task gets
// an ID, can be cancelled, and always reports its outcome.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

var (
	// ErrTaskBusy is returned when an exclusive task of the same name is running.
	ErrTaskBusy = errors.New("task already running")
	// ErrSupervisorClosed is returned by Go after Shutdown.
	ErrSupervisorClosed = errors.New("task supervisor is shut down")
	errTaskPanic        = errors.New("task panicked")
)

// Func is the body of a task. The returned message is shown on success.
type Func func(ctx context.Context) (string, error)

// EventSink receives a record of every finished task.
type EventSink interface {
	PublishTask(ctx context.Context, event models.TaskEventData) error
}

// Task describes a running task.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Exclusive bool      `json:"exclusive"`
	Started   time.Time `json:"started"`
}

// TaskError carries the failure of one task on the Errors channel.
type TaskError struct {
	TaskID string
	Name   string
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s (%s): %v", e.Name, e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

type entry struct {
	task   Task
	cancel context.CancelFunc
}

// Supervisor runs tasks under a shared parent context.
type Supervisor struct {
	ctx      context.Context
	cancel   context.CancelFunc
	logger   logger.Logger
	notifier Notifier
	sink     EventSink

	mu      sync.Mutex
	closed  bool
	running map[string]*entry
	busy    map[string]string

	wg   sync.WaitGroup
	errs chan error
}

// NewSupervisor returns a Supervisor whose tasks are cancelled with parent.
func NewSupervisor(parent context.Context, log logger.Logger, notifier Notifier) *Supervisor {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if notifier == nil {
		notifier = NewLogNotifier(log)
	}

	ctx, cancel := context.WithCancel(parent)

	return &Supervisor{
		ctx:      ctx,
		cancel:   cancel,
		logger:   log,
		notifier: notifier,
		running:  make(map[string]*entry),
		busy:     make(map[string]string),
		errs:     make(chan error, 16),
	}
}

// Notifier returns the notifier task outcomes are reported to.
func (s *Supervisor) Notifier() Notifier {
	return s.notifier
}

// SetEventSink publishes a TaskEventData for every finished task.
func (s *Supervisor) SetEventSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sink = sink
}

// Errors delivers task failures. Failures are dropped when nobody drains it.
func (s *Supervisor) Errors() <-chan error {
	return s.errs
}

// Go starts fn in the background. An exclusive task is rejected with
// ErrTaskBusy while another exclusive task of the same name runs.
func (s *Supervisor) Go(name string, exclusive bool, fn Func) (string, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return "", ErrSupervisorClosed
	}

	if exclusive {
		if id, ok := s.busy[name]; ok {
			s.mu.Unlock()

			return id, fmt.Errorf("%w: %s", ErrTaskBusy, name)
		}
	}

	ctx, cancel := context.WithCancel(s.ctx)
	e := &entry{
		task:   Task{ID: uuid.NewString(), Name: name, Exclusive: exclusive, Started: time.Now()},
		cancel: cancel,
	}

	s.running[e.task.ID] = e
	if exclusive {
		s.busy[name] = e.task.ID
	}

	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug().Str("task", name).Str("task_id", e.task.ID).Msg("Task started")

	go s.run(ctx, e, fn)

	return e.task.ID, nil
}

func (s *Supervisor) run(ctx context.Context, e *entry, fn Func) {
	var (
		msg string
		err error
	)

	defer s.wg.Done()
	defer func() { s.finish(e, msg, err) }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errTaskPanic, r)
		}
	}()

	msg, err = fn(ctx)
}

// finish clears the busy flag and reports the outcome. It runs on every exit path.
func (s *Supervisor) finish(e *entry, msg string, err error) {
	e.cancel()

	s.mu.Lock()
	delete(s.running, e.task.ID)

	if e.task.Exclusive && s.busy[e.task.Name] == e.task.ID {
		delete(s.busy, e.task.Name)
	}

	sink := s.sink
	s.mu.Unlock()

	finished := time.Now()
	event := models.TaskEventData{TaskID: e.task.ID, Name: e.task.Name, Started: e.task.Started, Finished: finished}

	switch {
	case err == nil:
		if msg != "" {
			s.notifier.Notify(notification(models.NotificationSuccess, e.task.ID, msg))
		}

		s.logger.Debug().Str("task", e.task.Name).Dur("elapsed", finished.Sub(e.task.Started)).Msg("Task finished")
	case errors.Is(err, context.Canceled):
		event.Error = err.Error()

		s.logger.Info().Str("task", e.task.Name).Msg("Task cancelled")
	default:
		event.Error = err.Error()

		s.logger.Error().Err(err).Str("task", e.task.Name).Str("task_id", e.task.ID).Msg("Task failed")
		s.notifier.Notify(notification(models.NotificationError, e.task.ID, fmt.Sprintf("%s: %v", e.task.Name, err)))

		select {
		case s.errs <- &TaskError{TaskID: e.task.ID, Name: e.task.Name, Err: err}:
		default:
		}
	}

	if sink != nil {
		if perr := sink.PublishTask(context.WithoutCancel(s.ctx), event); perr != nil {
			s.logger.Debug().Err(perr).Msg("Task event not published")
		}
	}
}

// Busy reports whether an exclusive task with this name is running.
func (s *Supervisor) Busy(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.busy[name]

	return ok
}

// Cancel cancels a running task by ID.
func (s *Supervisor) Cancel(id string) bool {
	s.mu.Lock()
	e, ok := s.running[id]
	s.mu.Unlock()

	if ok {
		e.cancel()
	}

	return ok
}

// CancelName cancels every running task with this name.
func (s *Supervisor) CancelName(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for _, e := range s.running {
		if e.task.Name == name {
			e.cancel()
			n++
		}
	}

	return n
}

// Running lists running tasks by start time.
func (s *Supervisor) Running() []Task {
	s.mu.Lock()
	out := make([]Task, 0, len(s.running))

	for _, e := range s.running {
		out = append(out, e.task)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })

	return out
}

// Wait blocks until every started task has finished.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Shutdown rejects new tasks, cancels running ones and waits for them until
// ctx expires.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
