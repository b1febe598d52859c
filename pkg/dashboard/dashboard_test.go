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

package dashboard

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/monitor"
)

var errOffline = errors.New("adb server not running")

type fakeMonitor struct {
	state        monitor.State
	starts       int
	stops        int
	ch           chan models.MetricSample
	unsubscribed bool
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{ch: make(chan models.MetricSample, 4)}
}

func (f *fakeMonitor) Start(context.Context) {
	f.starts++
	f.state = monitor.Running
}

func (f *fakeMonitor) Stop() {
	f.stops++
	f.state = monitor.Stopped
}

func (f *fakeMonitor) State() monitor.State { return f.state }
func (*fakeMonitor) CPU() []float64         { return []float64{0, 50, 100} }
func (*fakeMonitor) RAM() []float64         { return nil }
func (*fakeMonitor) Storage() []float64     { return nil }
func (*fakeMonitor) Battery() []int         { return []int{80} }

func (f *fakeMonitor) Subscribe() (<-chan models.MetricSample, func()) {
	return f.ch, func() { f.unsubscribed = true }
}

type fakeStatus struct {
	status models.DeviceStatus
	err    error
}

func (f fakeStatus) Status(context.Context) (models.DeviceStatus, error) {
	return f.status, f.err
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSparkline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "▁▅█", sparkline([]float64{0, 57, 100}, 10))
	assert.Equal(t, "▁█", sparkline([]float64{-5, 150}, 10))
	assert.Equal(t, "██", sparkline([]float64{0, 0, 100, 100}, 2))
	assert.Empty(t, sparkline(nil, 10))
}

func TestStatusHeader(t *testing.T) {
	t.Parallel()

	mon := newFakeMonitor()
	src := fakeStatus{status: models.DeviceStatus{Connected: true, OverWiFi: true, Name: "Pixel 7", Android: "14"}}
	m := New(context.Background(), mon, src, Options{})

	msg := m.fetchStatus()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "Pixel 7")
	assert.Contains(t, view, "Wi-Fi")
	assert.Contains(t, view, "Android 14")

	m.Update(statusMsg{status: models.DeviceStatus{}})
	assert.Contains(t, m.View(), "Desconectado")

	m.Update(statusMsg{err: errOffline})
	assert.Contains(t, m.View(), errOffline.Error())
}

func TestSamplesAndNotifications(t *testing.T) {
	t.Parallel()

	mon := newFakeMonitor()
	notes := make(chan models.Notification, 1)
	m := New(context.Background(), mon, fakeStatus{}, Options{Notifications: notes})

	assert.Contains(t, m.View(), models.NotAvailable)

	mon.ch <- models.MetricSample{Tick: 1, CPUPct: 42.5, HasCPU: true, BatteryPct: 80, HasBattery: true}
	msg := m.waitSample()
	require.IsType(t, sampleMsg{}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "42.5%")
	assert.Contains(t, view, "80%")
	assert.Contains(t, view, "▁▅█")

	notes <- models.Notification{Level: models.NotificationError, Message: "install failed"}
	m.Update(m.waitNotification())
	assert.Contains(t, m.View(), "install failed")

	close(mon.ch)
	assert.Nil(t, m.waitSample())
}

func TestWithoutNotificationChannel(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), newFakeMonitor(), fakeStatus{}, Options{})
	assert.Nil(t, m.waitNotification())
}

func TestToggleMonitor(t *testing.T) {
	t.Parallel()

	mon := newFakeMonitor()
	m := New(context.Background(), mon, fakeStatus{}, Options{})

	m.Update(keyRune('m'))
	assert.Equal(t, 1, mon.starts)
	assert.Contains(t, m.View(), "waiting for samples")

	m.Update(keyRune('m'))
	assert.Equal(t, 1, mon.stops)
	assert.Contains(t, m.View(), "monitor stopped")
}

func TestQuit(t *testing.T) {
	t.Parallel()

	mon := newFakeMonitor()
	m := New(context.Background(), mon, fakeStatus{}, Options{})

	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	m.Close()
	assert.True(t, mon.unsubscribed)
}
