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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlatformTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		arch string
		want PlatformTag
	}{
		{"linux", "x86_64", PlatformLinux64},
		{"linux", "amd64", PlatformLinux64},
		{"linux", "aarch64", PlatformLinux64},
		{"linux", "arm64", PlatformLinux64},
		{"linux", "i686", PlatformLinux32},
		{"linux", "386", PlatformLinux32},
		{"linux", "armv7l", PlatformLinux32},
		{"Linux", "riscv64", PlatformLinux64},
		{"windows", "amd64", PlatformWindows},
		{"windows", "arm64", PlatformWindows},
		{"darwin", "arm64", PlatformDarwin},
		{"darwin", "x86_64", PlatformDarwin},
		{"plan9", "amd64", DefaultPlatform},
		{"", "", DefaultPlatform},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolvePlatformTag(tt.goos, tt.arch), "%s/%s", tt.goos, tt.arch)
	}
}

func TestAarch64MatchesArm64(t *testing.T) {
	t.Parallel()

	for _, goos := range []string{"linux", "darwin", "windows", "freebsd"} {
		assert.Equal(t, ResolvePlatformTag(goos, "arm64"), ResolvePlatformTag(goos, "aarch64"), goos)
	}
}

func TestPlatformFileNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "adb.exe", PlatformWindows.BridgeName())
	assert.Equal(t, "scrcpy.exe", PlatformWindows.MirrorName())
	assert.Equal(t, "adb", PlatformLinux64.BridgeName())
	assert.Equal(t, "scrcpy", PlatformDarwin.MirrorName())
	assert.Equal(t, "scrcpy-server", PlatformWindows.MirrorServerName())
}

func TestHostPlatformIsKnown(t *testing.T) {
	t.Parallel()

	assert.Contains(t,
		[]PlatformTag{PlatformWindows, PlatformDarwin, PlatformLinux64, PlatformLinux32},
		HostPlatform(context.Background()))
}
