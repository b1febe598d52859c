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

// Package dashboard is the terminal view of device status and live usage.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/monitor"
)

const (
	defaultStatusInterval = 5 * time.Second
	statusTimeout         = 10 * time.Second
)

// Monitor is the slice of monitor.Loop the dashboard drives.
type Monitor interface {
	Start(ctx context.Context)
	Stop()
	State() monitor.State
	CPU() []float64
	RAM() []float64
	Storage() []float64
	Battery() []int
	Subscribe() (<-chan models.MetricSample, func())
}

// StatusSource reports the connected device.
type StatusSource interface {
	Status(ctx context.Context) (models.DeviceStatus, error)
}

type Options struct {
	StatusInterval time.Duration
	Notifications  <-chan models.Notification
}

type (
	sampleMsg       models.MetricSample
	notificationMsg models.Notification
	statusTickMsg   struct{}
	statusMsg       struct {
		status models.DeviceStatus
		err    error
	}
)

type keyMap struct {
	Toggle key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "start/stop monitor")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx            context.Context
	monitor        Monitor
	status         StatusSource
	statusInterval time.Duration

	samples     <-chan models.MetricSample
	unsubscribe func()
	notes       <-chan models.Notification

	spinner spinner.Model
	keys    keyMap
	help    help.Model
	styles  styles

	device    models.DeviceStatus
	statusErr error
	latest    models.MetricSample
	hasSample bool
	lastNote  *models.Notification
	quitting  bool
}

// New subscribes to mon. Call Close once the program exits.
func New(ctx context.Context, mon Monitor, status StatusSource, opts Options) *Model {
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = defaultStatusInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPurple))

	samples, unsubscribe := mon.Subscribe()

	return &Model{
		ctx:            ctx,
		monitor:        mon,
		status:         status,
		statusInterval: opts.StatusInterval,
		samples:        samples,
		unsubscribe:    unsubscribe,
		notes:          opts.Notifications,
		spinner:        s,
		keys:           newKeyMap(),
		help:           help.New(),
		styles:         newStyles(),
	}
}

// Close releases the monitor subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, m *Model) error {
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}

	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStatus, m.waitSample, m.waitNotification)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case sampleMsg:
		m.latest = models.MetricSample(msg)
		m.hasSample = true

		return m, m.waitSample
	case notificationMsg:
		n := models.Notification(msg)
		m.lastNote = &n

		return m, m.waitNotification
	case statusMsg:
		m.device = msg.status
		m.statusErr = msg.err

		return m, tea.Tick(m.statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
	case statusTickMsg:
		return m, m.fetchStatus
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true

		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.monitor.State() == monitor.Running {
			m.monitor.Stop()
		} else {
			m.hasSample = false
			m.monitor.Start(m.ctx)
		}
	}

	return m, nil
}

func (m *Model) fetchStatus() tea.Msg {
	ctx, cancel := context.WithTimeout(m.ctx, statusTimeout)
	defer cancel()

	st, err := m.status.Status(ctx)

	return statusMsg{status: st, err: err}
}

func (m *Model) waitSample() tea.Msg {
	sample, ok := <-m.samples
	if !ok {
		return nil
	}

	return sampleMsg(sample)
}

func (m *Model) waitNotification() tea.Msg {
	if m.notes == nil {
		return nil
	}

	n, ok := <-m.notes
	if !ok {
		return nil
	}

	return notificationMsg(n)
}
