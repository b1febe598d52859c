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
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/droidctl/pkg/models"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaComment    = "#6272A4"
)

const (
	sparkWidth = 30
	labelWidth = 9
	valueWidth = 8
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

type styles struct {
	app, title, label, value, muted, online, offline lipgloss.Style
	notes                                            map[models.NotificationLevel]lipgloss.Style
}

func newStyles() styles {
	return styles{
		app: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)).
			Foreground(lipgloss.Color(draculaForeground)),
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)).
			Width(labelWidth),
		value: lipgloss.NewStyle().
			Width(valueWidth).
			Align(lipgloss.Right),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
		online:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		offline: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)),
		notes: map[models.NotificationLevel]lipgloss.Style{
			models.NotificationInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan)),
			models.NotificationSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
			models.NotificationWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange)),
			models.NotificationError:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)),
		},
	}
}

// sparkline renders the last width percentages, clamped to 0-100.
func sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder

	top := len(sparkLevels) - 1

	for _, v := range values {
		v = min(max(v, 0), 100)
		b.WriteRune(sparkLevels[int(v/100*float64(top)+0.5)])
	}

	return b.String()
}

func intsToFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}

	return out
}
