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

package telemetry

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/carverauto/droidctl/pkg/models"
)

var (
	batteryStatusLabels = []string{"?", "Desconhecido", "Carregando", "Descarregando", "Não está carregando", "Cheia"}
	batteryHealthLabels = []string{"?", "Desconhecida", "Boa", "Superaquecida", "Morta", "Sobretensão", "Falha não especificada", "Fria"}
)

const unknownHealth = "Desconhecida"

// Battery holds the formatted fields of "dumpsys battery".
type Battery struct {
	Level       string
	Status      string
	Health      string
	Temperature string
	Voltage     string

	LevelPercent int
	HasLevel     bool
}

// Fields returns the battery section of a device snapshot.
func (b Battery) Fields() map[string]string {
	return map[string]string{
		"Nível":       b.Level,
		"Status":      b.Status,
		"Saúde":       b.Health,
		"Temperatura": b.Temperature,
		"Voltagem":    b.Voltage,
	}
}

// ParseBattery reads the level, status, health, temperature (tenths of a
// degree) and voltage (millivolts) keys. Keys are matched exactly so that
// "Max charging voltage" does not shadow "voltage".
func ParseBattery(raw string) Battery {
	b := Battery{
		Level:       models.NotAvailable,
		Status:      models.NotAvailable,
		Health:      models.NotAvailable,
		Temperature: models.NotAvailable,
		Voltage:     models.NotAvailable,
	}

	scanner := bufio.NewScanner(strings.NewReader(raw))

	for scanner.Scan() {
		key, value, ok := keyValue(scanner.Text())
		if !ok {
			continue
		}

		switch key {
		case "level":
			if n, err := strconv.Atoi(value); err == nil {
				b.Level = value + "%"
				b.LevelPercent = n
				b.HasLevel = true
			}
		case "status":
			b.Status = ordinalLabel(value, batteryStatusLabels, Unknown)
		case "health":
			b.Health = ordinalLabel(value, batteryHealthLabels, unknownHealth)
		case "temperature":
			if n, err := strconv.Atoi(value); err == nil {
				b.Temperature = formatDecimal(float64(n)/10) + "°C"
			}
		case "voltage":
			if n, err := strconv.Atoi(value); err == nil {
				b.Voltage = formatDecimal(float64(n)/1000) + "V"
			}
		}
	}

	return b
}

func ordinalLabel(value string, labels []string, fallback string) string {
	idx, err := strconv.Atoi(value)
	if err != nil || idx < 0 || idx >= len(labels) {
		return fallback
	}

	return labels[idx]
}
