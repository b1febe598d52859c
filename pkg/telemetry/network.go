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
	"regexp"

	"github.com/carverauto/droidctl/pkg/models"
)

var (
	inetRe  = regexp.MustCompile(`inet (\d+\.\d+\.\d+\.\d+)/\d+`)
	etherRe = regexp.MustCompile(`link/ether ([0-9a-fA-F:]+)`)
)

// Interface holds the addresses found in an "ip addr show" dump. Either may
// be NotAvailable independently.
type Interface struct {
	IPv4 string
	MAC  string
}

func ParseInterface(raw string) Interface {
	iface := Interface{IPv4: models.NotAvailable, MAC: models.NotAvailable}

	if m := inetRe.FindStringSubmatch(raw); m != nil {
		iface.IPv4 = m[1]
	}

	if m := etherRe.FindStringSubmatch(raw); m != nil {
		iface.MAC = m[1]
	}

	return iface
}

// HasIPv4 reports whether an address was found.
func (i Interface) HasIPv4() bool {
	return i.IPv4 != models.NotAvailable
}

func (i Interface) Fields() map[string]string {
	return map[string]string{
		"Endereço IP":  i.IPv4,
		"Endereço MAC": i.MAC,
	}
}
