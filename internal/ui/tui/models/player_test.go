package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursedeck/playdeck/internal/config"
	"github.com/coursedeck/playdeck/internal/playback"
	"github.com/coursedeck/playdeck/internal/player"
	"github.com/coursedeck/playdeck/internal/source"
	"github.com/coursedeck/playdeck/internal/ui/tui/controls"
	"github.com/coursedeck/playdeck/internal/ui/tui/fullscreen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu       sync.Mutex
	calls    []string
	position float64
	events   chan player.Event
	closed   bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{events: make(chan player.Event, 16)}
}

func (h *fakeHandle) record(call string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return player.ErrClosed
	}
	h.calls = append(h.calls, call)
	return nil
}

func (h *fakeHandle) Play() error               { return h.record("play") }
func (h *fakeHandle) Pause() error              { return h.record("pause") }
func (h *fakeHandle) Seek(s float64) error      { return h.record(fmt.Sprintf("seek %v", s)) }
func (h *fakeHandle) SetVolume(v float64) error { return h.record(fmt.Sprintf("volume %v", v)) }
func (h *fakeHandle) SetRate(r float64) error   { return h.record(fmt.Sprintf("rate %v", r)) }
func (h *fakeHandle) SetFullscreen(active bool) error {
	return h.record(fmt.Sprintf("fullscreen %v", active))
}
func (h *fakeHandle) Position() float64           { return h.position }
func (h *fakeHandle) Events() <-chan player.Event { return h.events }

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.events)
	}
	return nil
}

func (h *fakeHandle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *fakeHandle) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

type fakeLauncher struct {
	handle *fakeHandle
	err    error
	urls   []string
}

func (l *fakeLauncher) Launch(_ context.Context, url, _ string) (player.Handle, error) {
	l.urls = append(l.urls, url)
	if l.err != nil {
		return nil, l.err
	}
	return l.handle, nil
}

// blockingLauncher parks in Launch until released.  With honorCancel it returns as soon as the context is cancelled,
// handing back the player it had already started, as a connect that completes during shutdown would.
type blockingLauncher struct {
	handle      *fakeHandle
	honorCancel bool
	started     chan struct{}
	release     chan struct{}
}

func newBlockingLauncher(honorCancel bool) *blockingLauncher {
	return &blockingLauncher{
		handle:      newFakeHandle(),
		honorCancel: honorCancel,
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (l *blockingLauncher) Launch(ctx context.Context, _, _ string) (player.Handle, error) {
	close(l.started)
	if l.honorCancel {
		select {
		case <-ctx.Done():
		case <-l.release:
		}
	} else {
		<-l.release
	}
	return l.handle, nil
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type fakeOpener struct{ urls []string }

func (o *fakeOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Player:   config.PlayerConfig{Type: "mpv", Path: "mpv", LoadTimeout: 30 * time.Second},
		Embed:    config.EmbedConfig{Passive: true},
		Controls: config.ControlsConfig{IdleHideDelay: 5 * time.Millisecond, LeaveHideDelay: 5 * time.Millisecond},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}
}

// mountNative mounts a native source at 80x24 and delivers the launched handle without running Init's commands
func mountNative(t *testing.T) (*PlayerModel, *fakeHandle) {
	t.Helper()
	h := newFakeHandle()
	m := NewPlayerModel(testConfig(), source.Props{VideoURL: "https://cdn.example.com/lesson.mp4", Title: "Lesson 1"}, &fakeLauncher{handle: h}, nil)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(BackendReadyMsg{Handle: h})
	t.Cleanup(m.Unmount)
	return m, h
}

// playingNative is mountNative after the backend reported duration and playback
func playingNative(t *testing.T, duration float64) (*PlayerModel, *fakeHandle) {
	t.Helper()
	m, h := mountNative(t)
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventPlay}})
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventMetadata, Value: duration}})
	require.Equal(t, playback.StatusPlaying, m.Machine().Context().Status())
	return m, h
}

func TestEmbeddedMount(t *testing.T) {
	launcher := &fakeLauncher{handle: newFakeHandle()}
	m := NewPlayerModel(testConfig(), source.Props{VideoURL: "https://youtu.be/XYZ?t=3", Title: "Intro", EmbeddedHint: true}, launcher, nil)

	assert.Nil(t, m.Init(), "a passive frame starts nothing")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	src := m.Source()
	assert.Equal(t, source.BackendEmbedded, src.Backend)
	assert.Equal(t, "https://www.youtube.com/embed/XYZ?enablejsapi=1&rel=0", src.URL)
	assert.False(t, strings.Contains(src.URL, "t=3"), "start offset is dropped")
	assert.Nil(t, m.Machine(), "no state machine for embedded sources")
	assert.Equal(t, ViewEmbedded, m.CurrentView())
	assert.Empty(t, launcher.urls)
	assert.Equal(t, 0, m.Registry().Len())

	t.Run("KeysAndPointerAreInert", func(t *testing.T) {
		m.Update(key(" "))
		m.Update(motion(10, 10))
		m.Update(press(10, 10))
		assert.Nil(t, m.Machine())
		assert.Equal(t, 0, m.Registry().Len())
	})

	t.Run("NoNativeControlsDrawn", func(t *testing.T) {
		view := m.View()
		assert.Contains(t, view, "Embedded player")
		assert.NotContains(t, view, gearLabel)
		assert.NotContains(t, view, "0:00")
	})
}

func TestEmbeddedOpensURL(t *testing.T) {
	cfg := testConfig()
	cfg.Embed.Passive = false
	opener := &fakeOpener{}
	m := NewPlayerModel(cfg, source.Props{VideoURL: "https://www.youtube.com/watch?v=ABC123&t=5", EmbeddedHint: true}, nil, opener)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, EmbedOpenedMsg{}, msg)
	assert.Equal(t, []string{"https://www.youtube.com/embed/ABC123?enablejsapi=1&rel=0"}, opener.urls)

	m.Update(msg)
	assert.True(t, m.embedOpened)

	_, cmd = m.Update(key("o"))
	require.NotNil(t, cmd)
	cmd()
	assert.Len(t, opener.urls, 2)
}

func TestNativeLifecycle(t *testing.T) {
	h := newFakeHandle()
	launcher := &fakeLauncher{handle: h}
	m := NewPlayerModel(testConfig(), source.Props{VideoURL: "https://cdn.example.com/lesson.mp4", Title: "Lesson 1"}, launcher, nil)

	require.NotNil(t, m.Init())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, ViewLoading, m.CurrentView())
	assert.Contains(t, m.View(), "Starting player")

	msg := m.launch()()
	require.IsType(t, BackendReadyMsg{}, msg)
	assert.Equal(t, []string{"https://cdn.example.com/lesson.mp4"}, launcher.urls)

	_, pump := m.Update(msg)
	require.NotNil(t, pump)
	assert.Equal(t, 1+len(fullscreen.ChangeEvents), m.Registry().Len(), "keyboard and fullscreen groups attached")

	t.Run("EventPumpDeliversBackendEvents", func(t *testing.T) {
		h.events <- player.Event{Type: player.EventMetadata, Value: 90}
		next := pump()
		assert.Equal(t, BackendEventMsg{Event: player.Event{Type: player.EventMetadata, Value: 90}}, next)

		_, pump = m.Update(next)
		assert.NotNil(t, pump, "pump is re-armed")
		assert.Equal(t, ViewPlayback, m.CurrentView())
		assert.Equal(t, playback.StatusPaused, m.Machine().Context().Status())
	})

	t.Run("QuitReleasesEverything", func(t *testing.T) {
		_, cmd := m.Update(key("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, 0, m.Registry().Len())
		assert.True(t, h.closed)
		assert.False(t, m.controls.Pending())

		// The pump notices the closed stream, and nothing is re-armed after unmount
		_, cmd = m.Update(pump())
		assert.Nil(t, cmd)
	})
}

func TestLaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("failed to start MPV: exec: \"mpv\": executable file not found")}
	m := NewPlayerModel(testConfig(), source.Props{VideoURL: "https://cdn.example.com/lesson.mp4"}, launcher, nil)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.Update(m.launch()())

	assert.Equal(t, ViewError, m.CurrentView())
	assert.Equal(t, playback.StatusError, m.Machine().Context().Status())
	assert.Equal(t, 0, m.Registry().Len())
	assert.Contains(t, m.View(), "Playback failed")

	_, cmd := m.Update(key(" "))
	assert.Nil(t, cmd)
}

func TestBackendErrorUnwinds(t *testing.T) {
	m, h := playingNative(t, 60)
	m.Update(press(m.layout.gear.X, m.layout.gear.Y))
	require.True(t, m.menu.IsOpen())

	_, cmd := m.Update(BackendEventMsg{Event: player.Event{Type: player.EventError, Err: player.ErrClosed}})

	assert.Nil(t, cmd)
	assert.Equal(t, ViewError, m.CurrentView())
	assert.Equal(t, 0, m.Registry().Len(), "keyboard, fullscreen and click-outside groups released")
	assert.True(t, h.closed)
}

func TestLateReadyAfterUnmountIsClosed(t *testing.T) {
	h := newFakeHandle()
	m := NewPlayerModel(testConfig(), source.Props{VideoURL: "https://cdn.example.com/lesson.mp4"}, &fakeLauncher{handle: h}, nil)
	m.Init()
	m.Unmount()

	_, cmd := m.Update(BackendReadyMsg{Handle: h})
	assert.Nil(t, cmd)
	assert.True(t, h.closed)
	assert.Equal(t, 0, m.Registry().Len())
}

func TestLoadTimeout(t *testing.T) {
	m, h := mountNative(t)
	start := time.Now()
	m.now = func() time.Time { return start.Add(time.Minute) }

	_, cmd := m.Update(loadCheckMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewError, m.CurrentView())
	assert.ErrorIs(t, m.Machine().Context().Err(), playback.ErrLoadTimeout)
	assert.True(t, h.closed)
}

func TestKeyboardRouting(t *testing.T) {
	m, h := playingNative(t, 120)
	h.position = 30

	m.Update(key(" "))
	m.Update(key("left"))
	m.Update(key("right"))
	m.Update(key("up"))
	m.Update(key("m"))
	m.Update(key(">"))

	assert.Equal(t, []string{"pause", "seek 20", "seek 40", "volume 1", "volume 0", "rate 1.25"}, h.Calls())
	assert.True(t, m.Machine().Context().Muted())
}

func TestJumpPrompt(t *testing.T) {
	m, h := playingNative(t, 600)

	m.Update(key("t"))
	require.Equal(t, ModalJump, m.modal)

	// Typing into the prompt never reaches the router
	for _, k := range []string{"1", ":", "0", "5"} {
		m.Update(key(k))
	}
	m.Update(key(" "))
	m.Update(key("m"))
	assert.Empty(t, h.Calls())

	m.jump.SetValue("1:05")
	m.Update(key("enter"))
	assert.Equal(t, ModalNone, m.modal)
	assert.Equal(t, []string{"seek 65"}, h.Calls())

	t.Run("InvalidInputShowsNotice", func(t *testing.T) {
		h.reset()
		m.Update(key("t"))
		m.jump.SetValue("soon")
		m.Update(key("enter"))
		assert.Empty(t, h.Calls())
		assert.Contains(t, m.notice, "soon")
	})

	t.Run("EscCancels", func(t *testing.T) {
		m.Update(key("t"))
		m.Update(key("esc"))
		assert.Equal(t, ModalNone, m.modal)
		m.Update(key(" "))
		assert.Contains(t, h.Calls(), "pause")
	})
}

func TestScrubbing(t *testing.T) {
	m, h := playingNative(t, 120)
	l := m.layout

	x := l.track.X + l.track.W/2
	m.Update(press(x, l.track.Y))

	want := playback.SeekTarget(float64(l.track.W/2), float64(l.track.W), 120)
	assert.Equal(t, []string{fmt.Sprintf("seek %v", want)}, h.Calls())
	assert.Equal(t, want, m.Machine().Context().CurrentTime(), "optimistic update before the backend confirms")
}

func TestCenterButton(t *testing.T) {
	m, h := playingNative(t, 120)
	b := m.layout.centerButton

	m.Update(press(b.X+1, b.Y+1))
	assert.Equal(t, []string{"pause"}, h.Calls())
}

func TestSettingsMenu(t *testing.T) {
	m, h := playingNative(t, 120)
	l := m.layout

	m.Update(press(l.gear.X, l.gear.Y))
	require.True(t, m.menu.IsOpen())
	assert.Equal(t, ModalSettings, m.modal)
	assert.Contains(t, m.View(), "Speed")

	t.Run("SelectingRateClosesMenu", func(t *testing.T) {
		item := l.menuItems[4] // 1.5x
		m.Update(press(item.X+1, item.Y))
		assert.Equal(t, []string{"rate 1.5"}, h.Calls())
		assert.False(t, m.menu.IsOpen())
		assert.Equal(t, ModalNone, m.modal)
		assert.Equal(t, 1.5, m.Machine().Context().Rate())
	})

	t.Run("PressOutsideCloses", func(t *testing.T) {
		m.Update(key("s"))
		require.True(t, m.menu.IsOpen())

		m.Update(press(0, l.stage.Y))
		assert.False(t, m.menu.IsOpen())
		assert.Equal(t, ModalNone, m.modal)
	})

	t.Run("GearTogglesClosed", func(t *testing.T) {
		m.Update(press(l.gear.X, l.gear.Y))
		m.Update(press(l.gear.X, l.gear.Y))
		assert.False(t, m.menu.IsOpen())
	})
}

func TestFullscreen(t *testing.T) {
	m, h := playingNative(t, 120)

	m.Update(key("f"))
	assert.Equal(t, []string{"fullscreen true"}, h.Calls())
	assert.False(t, m.fullscreen.Active(), "waits for the window to report")

	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventFullscreen, Name: "fullscreen", Active: true}})
	assert.True(t, m.fullscreen.Active())
	assert.Contains(t, m.View(), windowedLabel)

	m.Update(press(m.layout.fullscreen.X, m.layout.fullscreen.Y))
	assert.Equal(t, "fullscreen false", h.Calls()[1])
}

func TestIdleHide(t *testing.T) {
	m, _ := playingNative(t, 120)
	inside := m.layout.stage

	_, cmd := m.Update(motion(inside.X+2, inside.Y+1))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), gearLabel)

	m.Update(runUntilHide(t, cmd))
	assert.False(t, m.controls.Visible())
	assert.NotContains(t, m.View(), gearLabel)

	t.Run("PausedStaysVisible", func(t *testing.T) {
		m.Update(BackendEventMsg{Event: player.Event{Type: player.EventPause}})
		_, cmd := m.Update(motion(inside.X+3, inside.Y+1))
		m.Update(runUntilHide(t, cmd))
		assert.True(t, m.controls.Visible())
	})

	t.Run("LeavingSchedulesHide", func(t *testing.T) {
		m.Update(BackendEventMsg{Event: player.Event{Type: player.EventPlay}})
		m.Update(motion(inside.X+3, inside.Y+1))
		_, cmd := m.Update(tea.BlurMsg{})
		require.NotNil(t, cmd)
		m.Update(cmd())
		assert.False(t, m.controls.Visible())
	})
}

func TestEndedResetsScrubber(t *testing.T) {
	m, _ := playingNative(t, 120)
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventTimeUpdate, Value: 119}})
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventEnded}})

	ctx := m.Machine().Context()
	assert.Equal(t, playback.StatusEnded, ctx.Status())
	assert.Equal(t, 0.0, ctx.CurrentTime())
	assert.Equal(t, 0.0, ctx.ProgressFraction())
	assert.Contains(t, m.View(), "0:00 / 2:00")
}

// runUntilHide executes a batched pointer command and returns the HideMsg it produced
func runUntilHide(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if hide, ok := c().(controls.HideMsg); ok {
				return hide
			}
		}
		t.Fatal("batch contained no hide timer")
	}
	return msg
}

func TestUnmountDuringLaunch(t *testing.T) {
	props := source.Props{VideoURL: "https://cdn.example.com/lesson.mp4"}

	t.Run("WaitsForCancelledLaunchAndClosesPlayer", func(t *testing.T) {
		launcher := newBlockingLauncher(true)
		m := NewPlayerModel(testConfig(), props, launcher, nil)
		m.Init()

		msgs := make(chan tea.Msg, 1)
		cmd := m.launch()
		go func() { msgs <- cmd() }()
		<-launcher.started

		m.Unmount()

		assert.True(t, launcher.handle.isClosed(), "player is stopped before Unmount returns")
		assert.Nil(t, <-msgs, "nothing is delivered to the stopped program")
	})

	t.Run("NotStartedNeverLaunches", func(t *testing.T) {
		launcher := &fakeLauncher{handle: newFakeHandle()}
		m := NewPlayerModel(testConfig(), props, launcher, nil)
		m.Init()
		cmd := m.launch()

		m.Unmount()

		assert.Nil(t, cmd())
		assert.Empty(t, launcher.urls)
	})

	t.Run("ReadyButUndeliveredIsClosed", func(t *testing.T) {
		launcher := &fakeLauncher{handle: newFakeHandle()}
		m := NewPlayerModel(testConfig(), props, launcher, nil)
		m.Init()
		require.IsType(t, BackendReadyMsg{}, m.launch()())

		// The program quit before Update saw the message
		m.Unmount()
		assert.True(t, launcher.handle.isClosed())
	})

	t.Run("StuckLaunchClosesItsOwnPlayer", func(t *testing.T) {
		launcher := newBlockingLauncher(false)
		m := NewPlayerModel(testConfig(), props, launcher, nil)
		m.launchWait = 10 * time.Millisecond
		m.Init()

		msgs := make(chan tea.Msg, 1)
		cmd := m.launch()
		go func() { msgs <- cmd() }()
		<-launcher.started

		m.Unmount()
		assert.False(t, launcher.handle.isClosed(), "Unmount gave up waiting")

		close(launcher.release)
		assert.Nil(t, <-msgs)
		assert.True(t, launcher.handle.isClosed(), "the late player is closed where it lands")
	})
}

func TestBackendReportsVolumeAndRate(t *testing.T) {
	m, h := playingNative(t, 120)
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventVolume, Name: "volume", Value: 0.4}})
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventRate, Name: "speed", Value: 1.5}})

	assert.Contains(t, m.View(), "vol 40%")

	m.Update(key("down"))
	m.Update(key(">"))
	assert.Equal(t, []string{"volume 0.3", "rate 1.75"}, h.Calls())
}

func TestScrubIgnoredWithoutDuration(t *testing.T) {
	m, h := mountNative(t)
	m.Update(BackendEventMsg{Event: player.Event{Type: player.EventCanPlay}})
	require.Equal(t, ViewPlayback, m.CurrentView())

	l := m.layout
	m.Update(press(l.track.X+l.track.W/2, l.track.Y))
	assert.Empty(t, h.Calls())
}
