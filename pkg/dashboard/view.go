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
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/monitor"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		"",
		m.renderMetrics(),
		"",
		m.renderFooter(),
	}

	if note := m.renderNotification(); note != "" {
		sections = append(sections, note)
	}

	sections = append(sections, m.help.View(m.keys))

	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	title := m.styles.title.Render("droidctl")

	if m.statusErr != nil {
		return title + "  " + m.styles.offline.Render("erro: "+m.statusErr.Error())
	}

	if !m.device.Connected {
		return title + "  " + m.styles.offline.Render("● Desconectado")
	}

	link := "USB"
	if m.device.OverWiFi {
		link = "Wi-Fi"
	}

	return fmt.Sprintf("%s  %s %s  %s",
		title,
		m.styles.online.Render("● "+m.device.Name),
		m.styles.muted.Render("("+link+")"),
		m.styles.muted.Render("Android "+m.device.Android),
	)
}

func (m *Model) renderMetrics() string {
	rows := []string{
		m.metricRow("CPU", m.latest.HasCPU, fmt.Sprintf("%.1f%%", m.latest.CPUPct), m.monitor.CPU()),
		m.metricRow("RAM", m.latest.HasRAM, fmt.Sprintf("%.1f%%", m.latest.RAMPct), m.monitor.RAM()),
		m.metricRow("Storage", m.latest.HasStorage, fmt.Sprintf("%.1f%%", m.latest.StoragePct), m.monitor.Storage()),
		m.metricRow("Battery", m.latest.HasBattery, fmt.Sprintf("%d%%", m.latest.BatteryPct), intsToFloats(m.monitor.Battery())),
	}

	return strings.Join(rows, "\n")
}

func (m *Model) metricRow(label string, has bool, value string, history []float64) string {
	if !m.hasSample || !has {
		value = models.NotAvailable
	}

	return m.styles.label.Render(label) +
		m.styles.value.Render(value) + "  " +
		m.styles.muted.Render(sparkline(history, sparkWidth))
}

func (m *Model) renderFooter() string {
	state := m.monitor.State()

	if state == monitor.Running && !m.hasSample {
		return m.spinner.View() + " waiting for samples"
	}

	if state == monitor.Running {
		return m.styles.online.Render("monitor " + state.String())
	}

	return m.styles.muted.Render("monitor " + state.String())
}

func (m *Model) renderNotification() string {
	if m.lastNote == nil {
		return ""
	}

	style, ok := m.styles.notes[m.lastNote.Level]
	if !ok {
		style = m.styles.muted
	}

	return style.Render(m.lastNote.Message)
}
