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

// Package monitor runs the background sampling loop that feeds the rolling
// CPU, memory, storage and battery series shown by dashboards.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/ringbuffer"
)

const (
	DefaultInterval  = 2 * time.Second
	DefaultStopGrace = time.Second

	subscriberBuffer = 16
)

// State is the loop lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}

	return "stopped"
}

// Sampler takes single readings. *deviceinfo.Aggregator implements it.
type Sampler interface {
	CPUPercent(ctx context.Context) (float64, error)
	RAMPercent(ctx context.Context) (float64, error)
	StoragePercent(ctx context.Context) (float64, error)
	BatteryLevel(ctx context.Context) (int, error)
}

// Sink receives every sample after it is recorded.
type Sink interface {
	PublishSample(ctx context.Context, sample models.MetricSample) error
}

// Options tunes the loop. Zero values take the defaults.
type Options struct {
	Interval  time.Duration
	Capacity  int
	StopGrace time.Duration
	Sink      Sink
}

// series is the buffer set of one run.
type series struct {
	cpu     *ringbuffer.Buffer[float64]
	ram     *ringbuffer.Buffer[float64]
	storage *ringbuffer.Buffer[float64]
	battery *ringbuffer.Buffer[int]
	latest  *ringbuffer.Buffer[models.MetricSample]
}

func newSeries(capacity int) *series {
	return &series{
		cpu:     ringbuffer.New[float64](capacity),
		ram:     ringbuffer.New[float64](capacity),
		storage: ringbuffer.New[float64](capacity),
		battery: ringbuffer.New[int](capacity),
		latest:  ringbuffer.New[models.MetricSample](1),
	}
}

// Loop samples a device on a fixed interval while Running.
type Loop struct {
	sampler Sampler
	logger  logger.Logger

	interval  time.Duration
	capacity  int
	stopGrace time.Duration
	sink      Sink

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	series *series

	subMu sync.Mutex
	subs  map[chan models.MetricSample]struct{}
}

// New returns a stopped Loop.
func New(sampler Sampler, log logger.Logger, opts Options) *Loop {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if opts.Capacity <= 0 {
		opts.Capacity = ringbuffer.DefaultCapacity
	}

	if opts.StopGrace <= 0 {
		opts.StopGrace = DefaultStopGrace
	}

	return &Loop{
		sampler:   sampler,
		logger:    log,
		interval:  opts.Interval,
		capacity:  opts.Capacity,
		stopGrace: opts.StopGrace,
		sink:      opts.Sink,
		series:    newSeries(opts.Capacity),
		subs:      make(map[chan models.MetricSample]struct{}),
	}
}

// State reports whether the worker is running.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// Start launches the worker with fresh buffers. It is a no-op while Running.
// The worker also stops when parent is cancelled.
func (l *Loop) Start(parent context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Running {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s := newSeries(l.capacity)

	l.state = Running
	l.cancel = cancel
	l.done = done
	l.series = s

	go l.run(ctx, s, done)

	l.logger.Info().Dur("interval", l.interval).Msg("Monitoring started")
}

// Stop signals the worker and waits up to the stop grace for it to exit.
// It is a no-op while Stopped.
func (l *Loop) Stop() {
	l.mu.Lock()

	if l.state == Stopped {
		l.mu.Unlock()

		return
	}

	l.state = Stopped
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	cancel()

	timer := time.NewTimer(l.stopGrace)
	defer timer.Stop()

	select {
	case <-done:
		l.logger.Info().Msg("Monitoring stopped")
	case <-timer.C:
		l.logger.Warn().Dur("grace", l.stopGrace).Msg("Monitoring worker still finishing after stop")
	}
}

func (l *Loop) run(ctx context.Context, s *series, done chan struct{}) {
	defer close(done)
	defer l.exited(done)

	var tick uint64

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		tick++
		l.sampleOnce(ctx, s, tick)

		timer.Reset(l.interval)
	}
}

// exited returns the loop to Stopped when the worker ends on its own, for
// example after the parent context is cancelled. A worker replaced by a
// later Start leaves the newer state alone.
func (l *Loop) exited(done chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != done {
		return
	}

	l.state = Stopped
	l.cancel()
	l.cancel, l.done = nil, nil

	l.logger.Info().Msg("Monitoring worker exited")
}

// sampleOnce takes one reading of every metric. A failed reading is logged
// and left out of its buffer for this tick.
func (l *Loop) sampleOnce(ctx context.Context, s *series, tick uint64) {
	sample := models.MetricSample{Tick: tick}

	if v, err := l.sampler.CPUPercent(ctx); l.ok("cpu", err) {
		sample.CPUPct, sample.HasCPU = v, true
		s.cpu.Push(v)
	}

	if v, err := l.sampler.RAMPercent(ctx); l.ok("ram", err) {
		sample.RAMPct, sample.HasRAM = v, true
		s.ram.Push(v)
	}

	if v, err := l.sampler.StoragePercent(ctx); l.ok("storage", err) {
		sample.StoragePct, sample.HasStorage = v, true
		s.storage.Push(v)
	}

	if v, err := l.sampler.BatteryLevel(ctx); l.ok("battery", err) {
		sample.BatteryPct, sample.HasBattery = v, true
		s.battery.Push(v)
	}

	if ctx.Err() != nil {
		return
	}

	s.latest.Push(sample)
	l.broadcast(sample)

	if l.sink != nil {
		if err := l.sink.PublishSample(ctx, sample); err != nil {
			l.logger.Debug().Err(err).Msg("Sample sink rejected sample")
		}
	}
}

func (l *Loop) ok(metric string, err error) bool {
	if err != nil {
		l.logger.Debug().Err(err).Str("metric", metric).Msg("Sample skipped")

		return false
	}

	return true
}

func (l *Loop) current() *series {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.series
}

// CPU returns a copy of the CPU series, oldest first.
func (l *Loop) CPU() []float64 { return l.current().cpu.Values() }

// RAM returns a copy of the memory series, oldest first.
func (l *Loop) RAM() []float64 { return l.current().ram.Values() }

// Storage returns a copy of the storage series, oldest first.
func (l *Loop) Storage() []float64 { return l.current().storage.Values() }

// Battery returns a copy of the battery series, oldest first.
func (l *Loop) Battery() []int { return l.current().battery.Values() }

// Latest returns the most recent sample of the current run.
func (l *Loop) Latest() (models.MetricSample, bool) {
	return l.current().latest.Last()
}

// Subscribe returns a channel receiving every new sample and a function that
// unsubscribes and closes it. Slow subscribers miss samples rather than stall
// the worker.
func (l *Loop) Subscribe() (<-chan models.MetricSample, func()) {
	ch := make(chan models.MetricSample, subscriberBuffer)

	l.subMu.Lock()
	l.subs[ch] = struct{}{}
	l.subMu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, ch)
			l.subMu.Unlock()
			close(ch)
		})
	}
}

func (l *Loop) broadcast(sample models.MetricSample) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	for ch := range l.subs {
		select {
		case ch <- sample:
		default:
		}
	}
}
