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

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/version"
)

const (
	defaultHTTPTimeout     = 5 * time.Minute
	defaultMaxArchiveBytes = 512 << 20
)

// DefaultBridgeURLs are the upstream platform-tools archives.
func DefaultBridgeURLs() map[PlatformTag]string {
	return map[PlatformTag]string{
		PlatformLinux64: "https://dl.google.com/android/repository/platform-tools-latest-linux.zip",
		PlatformWindows: "https://dl.google.com/android/repository/platform-tools-latest-windows.zip",
		PlatformDarwin:  "https://dl.google.com/android/repository/platform-tools-latest-darwin.zip",
	}
}

// DefaultMirrorURLs are the upstream scrcpy release archives.
func DefaultMirrorURLs() map[PlatformTag]string {
	return map[PlatformTag]string{
		PlatformLinux64: "https://github.com/Genymobile/scrcpy/releases/download/v3.3.3/scrcpy-linux-x86_64-v3.3.3.tar.gz",
		PlatformWindows: "https://github.com/Genymobile/scrcpy/releases/download/v3.3.3/scrcpy-win64-v3.3.3.zip",
		PlatformDarwin:  "https://github.com/Genymobile/scrcpy/releases/download/v3.3.3/scrcpy-macos-x86_64-v3.3.3.tar.gz",
	}
}

// Options configures a Provisioner. Zero values select the defaults.
type Options struct {
	// Dir is the tools root; binaries land in Dir/<platform tag>.
	Dir             string
	Platform        PlatformTag
	BridgeURLs      map[PlatformTag]string
	MirrorURLs      map[PlatformTag]string
	HTTPClient      *http.Client
	MaxArchiveBytes int64
}

// Provisioner downloads and caches the tool set for one platform.
type Provisioner struct {
	mu         sync.Mutex
	dir        string
	platform   PlatformTag
	bridgeURLs map[PlatformTag]string
	mirrorURLs map[PlatformTag]string
	client     *http.Client
	maxBytes   int64
	logger     logger.Logger
}

// toolSpec names the files one archive has to provide.
type toolSpec struct {
	kind     string
	required []string
	// carry reports whether a sibling of the first required file is installed too.
	carry func(name string) bool
}

// NewProvisioner returns a Provisioner for opts.
func NewProvisioner(log logger.Logger, opts Options) *Provisioner {
	if log == nil {
		log = logger.NewTestLogger()
	}

	p := &Provisioner{
		dir:        opts.Dir,
		platform:   opts.Platform,
		bridgeURLs: mergeURLs(DefaultBridgeURLs(), opts.BridgeURLs),
		mirrorURLs: mergeURLs(DefaultMirrorURLs(), opts.MirrorURLs),
		client:     opts.HTTPClient,
		maxBytes:   opts.MaxArchiveBytes,
		logger:     log,
	}

	if p.platform == "" {
		p.platform = HostPlatform(context.Background())
	}

	if p.client == nil {
		p.client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	if p.maxBytes <= 0 {
		p.maxBytes = defaultMaxArchiveBytes
	}

	return p
}

func mergeURLs(defaults, overrides map[PlatformTag]string) map[PlatformTag]string {
	for tag, url := range overrides {
		if url != "" {
			defaults[tag] = url
		}
	}

	return defaults
}

// Platform returns the tag the provisioner installs for.
func (p *Provisioner) Platform() PlatformTag {
	return p.platform
}

// PlatformDir is the canonical cache location of the binaries.
func (p *Provisioner) PlatformDir() string {
	return filepath.Join(p.dir, string(p.platform))
}

// Paths returns where the tool set lives once provisioned.
func (p *Provisioner) Paths() models.ToolSet {
	dir := p.PlatformDir()

	return models.ToolSet{
		BridgePath:       filepath.Join(dir, p.platform.BridgeName()),
		MirrorPath:       filepath.Join(dir, p.platform.MirrorName()),
		MirrorServerPath: filepath.Join(dir, p.platform.MirrorServerName()),
	}
}

// ToolSet ensures both binaries are present and returns their paths. The first
// failure is returned as is. It is safe to call repeatedly and concurrently.
func (p *Provisioner) ToolSet(ctx context.Context) (models.ToolSet, error) {
	if err := p.EnsureBridge(ctx); err != nil {
		return models.ToolSet{}, err
	}

	if err := p.EnsureMirror(ctx); err != nil {
		return models.ToolSet{}, err
	}

	return p.Paths(), nil
}

// EnsureBridge installs adb unless it is already present.
func (p *Provisioner) EnsureBridge(ctx context.Context) error {
	bridge := p.platform.BridgeName()

	return p.ensure(ctx, toolSpec{
		kind:     "bridge",
		required: []string{bridge},
		carry: func(name string) bool {
			return name != bridge && (strings.HasPrefix(name, "adb") || strings.HasSuffix(strings.ToLower(name), ".dll"))
		},
	}, p.bridgeURLs, p.bridgeURLs[DefaultPlatform])
}

// EnsureMirror installs scrcpy and scrcpy-server unless both are present.
func (p *Provisioner) EnsureMirror(ctx context.Context) error {
	spec := toolSpec{
		kind:     "mirror",
		required: []string{p.platform.MirrorName(), p.platform.MirrorServerName()},
	}

	if p.platform == PlatformWindows {
		spec.carry = func(name string) bool {
			return strings.HasSuffix(strings.ToLower(name), ".dll")
		}
	}

	return p.ensure(ctx, spec, p.mirrorURLs, "")
}

func (p *Provisioner) ensure(ctx context.Context, spec toolSpec, urls map[PlatformTag]string, fallbackURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.installed(spec.required) {
		return nil
	}

	url := urls[p.platform]
	if url == "" {
		url = fallbackURL
	}

	if url == "" {
		return fmt.Errorf("%w: %s: %w: %s", ErrToolAcquisition, spec.kind, errNoDownloadURL, p.platform)
	}

	p.logger.Info().
		Str("tool", spec.kind).
		Str("platform", p.platform.String()).
		Str("url", url).
		Msg("Downloading tools")

	if err := p.install(ctx, spec, url); err != nil {
		p.logger.Error().Err(err).Str("tool", spec.kind).Msg("Tool provisioning failed")

		return fmt.Errorf("%w: %s: %w", ErrToolAcquisition, spec.kind, err)
	}

	p.logger.Info().Str("tool", spec.kind).Str("dir", p.PlatformDir()).Msg("Tools installed")

	return nil
}

func (p *Provisioner) installed(names []string) bool {
	for _, name := range names {
		path := filepath.Join(p.PlatformDir(), name)

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}

		if p.platform != PlatformWindows && !isExecutable(path) {
			return false
		}
	}

	return true
}

// install downloads, extracts and moves the files of spec into place. The
// archive and the staging directory are removed on every path, and files
// already moved are rolled back when a later step fails.
func (p *Provisioner) install(ctx context.Context, spec toolSpec, url string) (err error) {
	dest := p.PlatformDir()
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	archive, err := p.download(ctx, url)
	if err != nil {
		return err
	}
	defer removeQuietly(archive)

	staging, err := os.MkdirTemp(p.dir, ".extract-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := extractArchive(archive, staging, p.maxBytes); err != nil {
		return err
	}

	sources := make([]string, 0, len(spec.required))

	for _, name := range spec.required {
		src, err := findFile(staging, name)
		if err != nil {
			return err
		}

		sources = append(sources, src)
	}

	if spec.carry != nil {
		siblings, err := os.ReadDir(filepath.Dir(sources[0]))
		if err != nil {
			return err
		}

		for _, entry := range siblings {
			if entry.Type().IsRegular() && spec.carry(entry.Name()) {
				sources = append(sources, filepath.Join(filepath.Dir(sources[0]), entry.Name()))
			}
		}
	}

	var moved []string

	defer func() {
		if err != nil {
			for _, path := range moved {
				removeQuietly(path)
			}
		}
	}()

	for _, src := range sources {
		target := filepath.Join(dest, filepath.Base(src))

		if err = moveFile(src, target); err != nil {
			return err
		}

		moved = append(moved, target)

		if p.platform != PlatformWindows {
			if err = os.Chmod(target, 0o755); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *Provisioner) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s from %s", errUnexpectedStatus, resp.Status, url)
	}

	if resp.ContentLength > p.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", errArchiveTooLarge, resp.ContentLength)
	}

	f, err := os.CreateTemp(p.dir, ".download-*")
	if err != nil {
		return "", err
	}

	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, p.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("failed to download %s: %w", url, copyErr)
	case n > p.maxBytes:
		err = fmt.Errorf("%w: more than %d bytes", errArchiveTooLarge, p.maxBytes)
	case closeErr != nil:
		err = closeErr
	}

	if err != nil {
		removeQuietly(f.Name())

		return "", err
	}

	return f.Name(), nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return errors.Join(err, os.Remove(dst))
	}

	return out.Close()
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
