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

package session

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/droidctl/pkg/adb"
	"github.com/carverauto/droidctl/pkg/models"
	"github.com/carverauto/droidctl/pkg/tasks"
	"github.com/carverauto/droidctl/pkg/telemetry"
)

func ok(out string) models.CommandResult {
	return models.CommandResult{Stdout: out}
}

const wlanUp = `30: wlan0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500
    link/ether 8a:3c:1f:aa:02:9e brd ff:ff:ff:ff:ff:ff
    inet 192.168.1.42/24 brd 192.168.1.255 scope global wlan0
`

func TestWiFiConnected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)
	exec.EXPECT().Exec(gomock.Any(), adb.StatusTimeout, "devices").Return(ok(
		"List of devices attached\n192.168.1.42:5555\tdevice\n192.168.1.50:5555\toffline\n10.0.0.2:4444\tdevice\nR58M\tdevice\n"))

	addrs, err := NewWiFi(exec, nil, nil, WiFiOptions{}).Connected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.42:5555"}, addrs)
}

func TestWiFiPair(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	gomock.InOrder(
		exec.EXPECT().Exec(gomock.Any(), adb.QueryTimeout, "tcpip", "5555").Return(ok("restarting in TCP mode port: 5555")),
		exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "ip", "addr", "show", "wlan0").Return(ok(wlanUp)),
		exec.EXPECT().Exec(gomock.Any(), adb.QueryTimeout, "connect", "192.168.1.42:5555").Return(ok("already connected to 192.168.1.42:5555")),
	)

	notes := tasks.NewChannelNotifier(8)
	wifi := NewWiFi(exec, nil, notes, WiFiOptions{SettleDelay: time.Millisecond})

	addr, err := wifi.Pair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.42:5555", addr)

	require.Len(t, notes.Notifications(), 3)
	assert.Equal(t, "Passo 1/3: Ativando modo TCP/IP na porta 5555...", (<-notes.Notifications()).Message)
}

func TestWiFiPairWithoutAddress(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	exec.EXPECT().Exec(gomock.Any(), adb.QueryTimeout, "tcpip", "5555").Return(ok(""))
	exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "ip", "addr", "show", "wlan0").
		Return(ok("30: wlan0: <BROADCAST,MULTICAST> mtu 1500\n"))

	_, err := NewWiFi(exec, nil, nil, WiFiOptions{}).Pair(context.Background())
	require.ErrorIs(t, err, ErrNoDeviceIP)
}

func TestWiFiPairRejected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	exec.EXPECT().Exec(gomock.Any(), adb.QueryTimeout, "tcpip", "5555").Return(ok(""))
	exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "ip", "addr", "show", "wlan0").Return(ok(wlanUp))
	exec.EXPECT().Exec(gomock.Any(), adb.QueryTimeout, "connect", "192.168.1.42:5555").
		Return(ok("failed to connect to '192.168.1.42:5555': Connection refused"))

	_, err := NewWiFi(exec, nil, nil, WiFiOptions{}).Pair(context.Background())
	require.ErrorIs(t, err, ErrConnectRejected)
}

func TestWiFiPairNeedsUSB(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)
	exec.EXPECT().Exec(gomock.Any(), adb.QueryTimeout, "tcpip", "5555").
		Return(models.CommandResult{ExitCode: 1, Stderr: "error: no devices/emulators found"})

	_, err := NewWiFi(exec, nil, nil, WiFiOptions{}).Pair(context.Background())
	require.ErrorIs(t, err, adb.ErrCommandFailed)
}

type blockingRunner struct {
	mu      sync.Mutex
	inv     adb.Invocation
	started chan struct{}
	release chan struct{}
}

func (b *blockingRunner) Execute(ctx context.Context, inv adb.Invocation) models.CommandResult {
	b.mu.Lock()
	b.inv = inv
	b.mu.Unlock()

	close(b.started)

	select {
	case <-b.release:
		return models.CommandResult{}
	case <-ctx.Done():
		return models.CommandResult{ExitCode: -1}
	}
}

func TestMirrorIsExclusive(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	tools := models.ToolSet{BridgePath: "/tools/adb", MirrorPath: "/tools/scrcpy", MirrorServerPath: "/tools/scrcpy-server"}
	mirror := NewMirror(runner, tools, MirrorOptions{MaxSize: 1024, VideoBitRate: "8M", TurnScreenOff: true}, nil)

	assert.Equal(t, MirrorIdle, mirror.State())

	errs := make(chan error, 1)

	go func() { errs <- mirror.Run(context.Background()) }()

	<-runner.started
	assert.Equal(t, MirrorActive, mirror.State())
	require.ErrorIs(t, mirror.Run(context.Background()), ErrMirrorActive)

	close(runner.release)
	require.NoError(t, <-errs)
	assert.Equal(t, MirrorIdle, mirror.State())

	runner.mu.Lock()
	defer runner.mu.Unlock()

	assert.Equal(t, "/tools/scrcpy", runner.inv.Tool)
	assert.Equal(t, []string{"--turn-screen-off", "--max-size", "1024", "--video-bit-rate", "8M"}, runner.inv.Args)
	assert.Contains(t, runner.inv.Env, "SCRCPY_SERVER_PATH=/tools/scrcpy-server")
	assert.Contains(t, runner.inv.Env, "ADB=/tools/adb")
	assert.Equal(t, adb.NoTimeout, runner.inv.Timeout)
}

func TestMirrorCancelReturnsToIdle(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	mirror := NewMirror(runner, models.ToolSet{MirrorPath: "/tools/scrcpy"}, MirrorOptions{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)

	go func() { errs <- mirror.Run(ctx) }()

	<-runner.started
	cancel()

	require.ErrorIs(t, <-errs, context.Canceled)
	assert.Equal(t, MirrorIdle, mirror.State())
}

func TestMirrorRequiresBinary(t *testing.T) {
	t.Parallel()

	mirror := NewMirror(&blockingRunner{}, models.ToolSet{}, MirrorOptions{}, nil)
	require.ErrorIs(t, mirror.Run(context.Background()), errNoMirrorBin)
}

type scriptStreamer struct {
	script string

	mu   sync.Mutex
	args []string
}

func (s *scriptStreamer) Stream(ctx context.Context, args ...string) (*adb.LineStream, error) {
	s.mu.Lock()
	s.args = args
	s.mu.Unlock()

	return adb.NewRunner(nil).Stream(ctx, "sh", "-c", s.script)
}

func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestLogFollowerKeepsBoundedLines(t *testing.T) {
	t.Parallel()
	requireShell(t)

	streamer := &scriptStreamer{script: `i=0; while [ $i -lt 8 ]; do echo "W/Tag: line $i"; i=$((i+1)); done; echo "E/Crash: boom"`}
	follower := NewLogFollower(streamer, nil, "", 5)

	var (
		mu   sync.Mutex
		seen int
	)

	follower.OnLine(func(LogLine) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	require.NoError(t, follower.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, follower.Wait(ctx))
	require.Eventually(t, func() bool { return !follower.Running() }, time.Second, 5*time.Millisecond)

	lines := follower.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, "E/Crash: boom", lines[4].Text)
	assert.Equal(t, telemetry.LogError, lines[4].Level)
	assert.Equal(t, "W/Tag: line 4", lines[0].Text)
	assert.Equal(t, telemetry.LogWarning, lines[0].Level)

	mu.Lock()
	assert.Equal(t, 9, seen)
	mu.Unlock()

	streamer.mu.Lock()
	assert.Equal(t, []string{"logcat", "-v", "brief"}, streamer.args)
	streamer.mu.Unlock()

	follower.Clear()
	assert.Empty(t, follower.Lines())
}

func TestLogFollowerStop(t *testing.T) {
	t.Parallel()
	requireShell(t)

	follower := NewLogFollower(&scriptStreamer{script: `echo "I/Start: up"; exec sleep 30`}, nil, "threadtime", 0)

	require.NoError(t, follower.Start(context.Background()))
	require.ErrorIs(t, follower.Start(context.Background()), ErrLogActive)

	require.Eventually(t, func() bool { return len(follower.Lines()) == 1 }, 5*time.Second, 10*time.Millisecond)

	start := time.Now()
	follower.Stop()
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, follower.Running())
	assert.Len(t, follower.Lines(), 1, "stopping keeps the buffer")

	follower.Stop()
}

func TestLogFollowerClearWhileFollowing(t *testing.T) {
	t.Parallel()
	requireShell(t)

	streamer := &scriptStreamer{script: `while true; do echo "I/Tick: alive"; sleep 0.01; done`}
	follower := NewLogFollower(streamer, nil, "", 50)

	require.NoError(t, follower.Start(context.Background()))
	t.Cleanup(follower.Stop)

	require.Eventually(t, func() bool { return len(follower.Lines()) > 0 }, 5*time.Second, 10*time.Millisecond)

	follower.Clear()
	assert.Less(t, len(follower.Lines()), 5)

	require.Eventually(t, func() bool { return len(follower.Lines()) >= 5 }, 5*time.Second, 10*time.Millisecond,
		"lines streamed after Clear must stay visible")
	assert.True(t, follower.Running())
}

func TestPowerActions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	exec.EXPECT().Exec(gomock.Any(), adb.PowerTimeout, "shell", "reboot", "-p").Return(ok(""))
	exec.EXPECT().Exec(gomock.Any(), adb.PowerTimeout, "reboot").Return(ok(""))
	exec.EXPECT().Exec(gomock.Any(), adb.PowerTimeout, "reboot", "bootloader").Return(models.CommandResult{ExitCode: -1, TimedOut: true})

	dev := NewDevice(exec, nil)
	ctx := context.Background()

	require.NoError(t, dev.Power(ctx, PowerOff))
	require.NoError(t, dev.Power(ctx, Reboot))
	require.ErrorIs(t, dev.Power(ctx, RebootBootloader), adb.ErrCommandTimeout)
	require.ErrorIs(t, dev.Power(ctx, PowerAction("hibernate")), errUnknownAction)
}

func TestScreenshotRemovesDeviceCopy(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	exec := adb.NewMockExecutor(ctrl)

	gomock.InOrder(
		exec.EXPECT().Shell(gomock.Any(), adb.QueryTimeout, "screencap", "-p", remoteScreenshot).Return(ok("")),
		exec.EXPECT().Exec(gomock.Any(), adb.PullTimeout, "pull", remoteScreenshot, "/tmp/shot.png").
			Return(models.CommandResult{ExitCode: 1, Stderr: "adb: error: failed to copy"}),
		exec.EXPECT().Shell(gomock.Any(), adb.StatusTimeout, "rm", remoteScreenshot).Return(ok("")),
	)

	err := NewDevice(exec, nil).Screenshot(context.Background(), "/tmp/shot.png")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to copy"))
}
