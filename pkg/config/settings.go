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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

var (
	errBaseDirRequired     = errors.New("base_dir is required")
	errInvalidInterval     = errors.New("monitor interval must be positive")
	errInvalidCapacity     = errors.New("buffer capacity must be positive")
	errInvalidWorkers      = errors.New("inventory workers must be between 1 and 64")
	errInvalidPort         = errors.New("wifi port must be between 1 and 65535")
	errInvalidHTTPTimeout  = errors.New("provisioning http timeout must be positive")
	errSubjectPrefixNeeded = errors.New("nats subject_prefix is required when nats url is set")
)

// Config is the complete droidctl configuration.
type Config struct {
	BaseDir      string             `json:"base_dir"`
	Logging      *logger.Config     `json:"logging"`
	Provisioning ProvisioningConfig `json:"provisioning"`
	Monitor      MonitorConfig      `json:"monitor"`
	Inventory    InventoryConfig    `json:"inventory"`
	Mirror       MirrorConfig       `json:"mirror"`
	Logcat       LogcatConfig       `json:"logcat"`
	WiFi         WiFiConfig         `json:"wifi"`
	NATS         NATSConfig         `json:"nats"`
}

// ProvisioningConfig controls how the bridge and mirroring binaries are fetched.
// URL maps are keyed by platform tag and override the built-in download table.
type ProvisioningConfig struct {
	BridgeURLs      map[string]string `json:"bridge_urls,omitempty"`
	MirrorURLs      map[string]string `json:"mirror_urls,omitempty"`
	HTTPTimeout     models.Duration   `json:"http_timeout"`
	MaxArchiveBytes int64             `json:"max_archive_bytes"`
	FallbackPaths   []string          `json:"fallback_paths,omitempty"`
}

type MonitorConfig struct {
	Interval  models.Duration `json:"interval"`
	Capacity  int             `json:"capacity"`
	StopGrace models.Duration `json:"stop_grace"`
}

type InventoryConfig struct {
	Workers      int    `json:"workers"`
	IconCacheDir string `json:"icon_cache_dir,omitempty"`
}

// MirrorConfig holds the screen-mirroring session arguments.
type MirrorConfig struct {
	MaxSize       int      `json:"max_size"`
	VideoBitRate  string   `json:"video_bit_rate"`
	TurnScreenOff bool     `json:"turn_screen_off"`
	ExtraArgs     []string `json:"extra_args,omitempty"`
}

type LogcatConfig struct {
	Capacity int    `json:"capacity"`
	Format   string `json:"format"`
}

// WiFiConfig controls wireless debugging pairing.
type WiFiConfig struct {
	Port        int             `json:"port"`
	Interface   string          `json:"interface"`
	SettleDelay models.Duration `json:"settle_delay"`
}

// NATSConfig enables event publishing when URL is set.
type NATSConfig struct {
	URL           string `json:"url,omitempty"`
	SubjectPrefix string `json:"subject_prefix"`
	Stream        string `json:"stream,omitempty"`
	Domain        string `json:"domain,omitempty"`
	// TLS enables mutual TLS when set.
	TLS *NATSTLSConfig `json:"tls,omitempty"`
}

// NATSTLSConfig names the PEM files used for mutual TLS.
type NATSTLSConfig struct {
	CAFile     string `json:"ca_file"`
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	ServerName string `json:"server_name,omitempty"`
}

// Enabled reports whether a client certificate is configured.
func (t *NATSTLSConfig) Enabled() bool {
	return t != nil && t.CertFile != "" && t.KeyFile != ""
}

// Enabled reports whether a NATS server is configured.
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseDir: defaultBaseDir(),
		Logging: logger.DefaultConfig(),
		Provisioning: ProvisioningConfig{
			HTTPTimeout:     models.Duration(5 * time.Minute),
			MaxArchiveBytes: 512 << 20,
		},
		Monitor: MonitorConfig{
			Interval:  models.Duration(2 * time.Second),
			Capacity:  60,
			StopGrace: models.Duration(time.Second),
		},
		Inventory: InventoryConfig{
			Workers: 10,
		},
		Mirror: MirrorConfig{
			MaxSize:       1024,
			VideoBitRate:  "8M",
			TurnScreenOff: true,
		},
		Logcat: LogcatConfig{
			Capacity: 500,
			Format:   "brief",
		},
		WiFi: WiFiConfig{
			Port:        5555,
			Interface:   "wlan0",
			SettleDelay: models.Duration(time.Second),
		},
		NATS: NATSConfig{
			SubjectPrefix: "droidctl",
			Stream:        "DROIDCTL",
		},
	}
}

func defaultBaseDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "droidctl")
	}

	return ".droidctl"
}

// ToolsDir is the root of the provisioned binaries.
func (c *Config) ToolsDir() string {
	return filepath.Join(c.BaseDir, "tools")
}

// IconCacheDir is where extracted application icons are stored.
func (c *Config) IconCacheDir() string {
	if c.Inventory.IconCacheDir != "" {
		return c.Inventory.IconCacheDir
	}

	return filepath.Join(c.BaseDir, "icon_cache")
}

// Validate implements Validator.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseDir == "" {
		errs = append(errs, errBaseDirRequired)
	}

	if c.Provisioning.HTTPTimeout <= 0 {
		errs = append(errs, errInvalidHTTPTimeout)
	}

	if c.Monitor.Interval <= 0 {
		errs = append(errs, errInvalidInterval)
	}

	if c.Monitor.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("monitor: %w", errInvalidCapacity))
	}

	if c.Logcat.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("logcat: %w", errInvalidCapacity))
	}

	if c.Inventory.Workers < 1 || c.Inventory.Workers > 64 {
		errs = append(errs, errInvalidWorkers)
	}

	if c.WiFi.Port < 1 || c.WiFi.Port > 65535 {
		errs = append(errs, errInvalidPort)
	}

	if c.NATS.Enabled() && c.NATS.SubjectPrefix == "" {
		errs = append(errs, errSubjectPrefixNeeded)
	}

	return errors.Join(errs...)
}
