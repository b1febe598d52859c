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

// Package toolchain provisions the device bridge and screen-mirroring
// binaries for the host platform and keeps them in a local cache.
package toolchain

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// PlatformTag selects the download archive and cache directory for a host.
type PlatformTag string

const (
	PlatformWindows PlatformTag = "windows"
	PlatformDarwin  PlatformTag = "darwin"
	PlatformLinux64 PlatformTag = "linux64"
	PlatformLinux32 PlatformTag = "linux32"

	// DefaultPlatform is used for any combination that is not recognised.
	DefaultPlatform = PlatformLinux64
)

// ResolvePlatformTag maps an operating system and machine architecture onto a
// platform tag. Both Go names (amd64, arm64) and uname names (x86_64, aarch64)
// are accepted. It never fails; unknown input yields DefaultPlatform.
func ResolvePlatformTag(goos, arch string) PlatformTag {
	switch strings.ToLower(strings.TrimSpace(goos)) {
	case "windows":
		return PlatformWindows
	case "darwin", "macos":
		return PlatformDarwin
	case "linux", "android":
		if is32Bit(normalizeArch(arch)) {
			return PlatformLinux32
		}

		return PlatformLinux64
	default:
		return DefaultPlatform
	}
}

func normalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))

	switch arch {
	case "aarch64", "arm64", "armv8", "armv8l":
		return "arm64"
	case "x86_64", "amd64", "x64":
		return "amd64"
	case "i386", "i486", "i586", "i686", "386", "x86":
		return "386"
	}

	if strings.HasPrefix(arch, "armv") || arch == "arm" {
		return "arm"
	}

	return arch
}

func is32Bit(arch string) bool {
	switch arch {
	case "386", "arm", "mips", "mipsle":
		return true
	default:
		return false
	}
}

// HostPlatform resolves the tag of the running host. The kernel architecture
// is preferred so a 32-bit build on a 64-bit kernel still fetches 64-bit tools.
func HostPlatform(ctx context.Context) PlatformTag {
	arch, err := host.KernelArch()
	if err != nil || arch == "" {
		arch = runtime.GOARCH
	}

	return ResolvePlatformTag(runtime.GOOS, arch)
}

// BridgeName is the bridge executable file name for the platform.
func (p PlatformTag) BridgeName() string {
	return p.exe("adb")
}

// MirrorName is the mirroring executable file name for the platform.
func (p PlatformTag) MirrorName() string {
	return p.exe("scrcpy")
}

// MirrorServerName is the mirroring server companion, pushed to the device at session start.
func (PlatformTag) MirrorServerName() string {
	return "scrcpy-server"
}

func (p PlatformTag) exe(name string) string {
	if p == PlatformWindows {
		return name + ".exe"
	}

	return name
}

func (p PlatformTag) String() string {
	return string(p)
}
