package input

import (
	"errors"
	"fmt"
	"testing"

	"github.com/coursedeck/playdeck/internal/ui/tui/listener"
	"github.com/stretchr/testify/assert"
)

type fakePlayer struct {
	calls  []string
	volume float64
	err    error
}

func (f *fakePlayer) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakePlayer) TogglePlay() error      { return f.record("toggle") }
func (f *fakePlayer) Skip(d float64) error   { return f.record(fmt.Sprintf("skip %v", d)) }
func (f *fakePlayer) ToggleMute() error      { return f.record("mute") }
func (f *fakePlayer) StepRate(dir int) error { return f.record(fmt.Sprintf("rate %d", dir)) }
func (f *fakePlayer) SetVolume(v float64) error {
	f.volume = v
	return f.record(fmt.Sprintf("volume %v", v))
}

type fakeFullscreen struct{ toggles int }

func (f *fakeFullscreen) Toggle() error {
	f.toggles++
	return nil
}

func newTestRouter(volume float64) (*listener.Registry, *Router, *fakePlayer, *fakeFullscreen) {
	registry := listener.NewRegistry()
	p := &fakePlayer{volume: volume}
	fs := &fakeFullscreen{}
	r := NewRouter(registry, p, fs, func() float64 { return p.volume })
	r.Group().Attach()
	return registry, r, p, fs
}

func press(registry *listener.Registry, key string, target Target) *KeyEvent {
	event := &KeyEvent{Key: key, Target: target}
	registry.Dispatch(event)
	return event
}

func TestBindings(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{" ", "toggle"},
		{"left", "skip -10"},
		{"right", "skip 10"},
		{"up", "volume 0.6"},
		{"down", "volume 0.4"},
		{"m", "mute"},
		{"M", "mute"},
		{"<", "rate -1"},
		{">", "rate 1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			registry, _, p, _ := newTestRouter(0.5)
			event := press(registry, tt.key, TargetSurface)

			assert.Equal(t, []string{tt.want}, p.calls)
			assert.True(t, event.DefaultPrevented())
		})
	}
}

func TestFullscreenKeys(t *testing.T) {
	registry, _, p, fs := newTestRouter(1)
	press(registry, "f", TargetSurface)
	press(registry, "F", TargetSurface)

	assert.Equal(t, 2, fs.toggles)
	assert.Empty(t, p.calls)
}

func TestVolumeSaturates(t *testing.T) {
	registry, _, p, _ := newTestRouter(0.95)
	press(registry, "up", TargetSurface)
	press(registry, "up", TargetSurface)
	assert.Equal(t, []string{"volume 1", "volume 1"}, p.calls)

	p.calls = nil
	p.volume = 0.25
	for i := 0; i < 4; i++ {
		press(registry, "down", TargetSurface)
	}
	assert.Equal(t, []string{"volume 0.15", "volume 0.05", "volume 0", "volume 0"}, p.calls)
}

func TestVolumeStepsLandExactly(t *testing.T) {
	registry, _, p, _ := newTestRouter(0)
	for i := 0; i < 10; i++ {
		press(registry, "up", TargetSurface)
	}
	assert.Equal(t, 1.0, p.volume)
	assert.Equal(t, "volume 0.3", p.calls[2])
}

func TestTextEntryIsInert(t *testing.T) {
	for _, target := range []Target{TargetTextInput, TargetTextArea} {
		registry, _, p, fs := newTestRouter(0.5)
		for _, key := range []string{" ", "left", "f", "m", "up"} {
			event := press(registry, key, target)
			assert.False(t, event.DefaultPrevented())
		}
		assert.Empty(t, p.calls)
		assert.Zero(t, fs.toggles)
	}
}

func TestUnboundKeysPassThrough(t *testing.T) {
	registry, _, p, _ := newTestRouter(0.5)
	event := press(registry, "s", TargetSurface)

	assert.False(t, event.DefaultPrevented())
	assert.Empty(t, p.calls)
}

func TestCommandErrorsStillPreventDefault(t *testing.T) {
	registry, _, p, _ := newTestRouter(0.5)
	p.err = errors.New("player closed")

	assert.True(t, press(registry, " ", TargetSurface).DefaultPrevented())
}

func TestDetachedRouterIsInert(t *testing.T) {
	registry, r, p, _ := newTestRouter(0.5)
	r.Group().Detach()

	press(registry, " ", TargetSurface)
	assert.Empty(t, p.calls)
	assert.Equal(t, 0, registry.Len())
}
