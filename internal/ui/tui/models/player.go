package models

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursedeck/playdeck/internal/config"
	"github.com/coursedeck/playdeck/internal/log"
	"github.com/coursedeck/playdeck/internal/playback"
	"github.com/coursedeck/playdeck/internal/player"
	"github.com/coursedeck/playdeck/internal/source"
	"github.com/coursedeck/playdeck/internal/ui/tui/controls"
	"github.com/coursedeck/playdeck/internal/ui/tui/fullscreen"
	"github.com/coursedeck/playdeck/internal/ui/tui/input"
	kb "github.com/coursedeck/playdeck/internal/ui/tui/keybindings"
	"github.com/coursedeck/playdeck/internal/ui/tui/listener"
)

const loadCheckInterval = time.Second

// Opener hands an embeddable URL to something that can render it
type Opener interface {
	Open(url string) error
}

// PlayerModel is the playback engine's view.  One PlayerModel is one mount: it resolves its source once, and a
// different video means a new model.
type PlayerModel struct {
	config   *config.Config
	props    source.Props
	src      source.Source
	launcher player.Launcher
	opener   Opener
	now      func() time.Time

	width, height int
	layout        layout
	showHelp      bool
	mounted       bool

	registry *listener.Registry
	scope    listener.Scope

	// Embedded backend
	embedOpened bool
	embedErr    error

	// Native backend
	machine    *playback.Machine
	handle     player.Handle
	router     *input.Router
	fullscreen *fullscreen.Adapter
	controls   *controls.Controller
	menu       *controls.Menu
	loading    *LoadingModel
	progress   progress.Model
	jump       textinput.Model
	modal      Modal
	pointerIn  bool
	launching  *pendingLaunch
	launchWait time.Duration
	notice     string
}

// NewPlayerModel creates an unmounted model.  launcher is only used for native sources, opener only for embedded ones.
func NewPlayerModel(cfg *config.Config, props source.Props, launcher player.Launcher, opener Opener) *PlayerModel {
	jump := textinput.New()
	jump.Prompt = "Jump to: "
	jump.Placeholder = "m:ss"
	jump.CharLimit = 9

	return &PlayerModel{
		config:     cfg,
		props:      props,
		launcher:   launcher,
		opener:     opener,
		now:        time.Now,
		launchWait: launchWaitTimeout,
		showHelp:   true,
		registry:   listener.NewRegistry(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		jump:       jump,
		modal:      ModalNone,
	}
}

// Source is the resolved source, valid after Init
func (m *PlayerModel) Source() source.Source {
	return m.src
}

// Machine is nil for embedded sources
func (m *PlayerModel) Machine() *playback.Machine {
	return m.machine
}

// Registry exposes the listener table, mostly so callers can check nothing outlives the mount
func (m *PlayerModel) Registry() *listener.Registry {
	return m.registry
}

// CurrentView reports what the surface shows
func (m *PlayerModel) CurrentView() View {
	switch {
	case m.src.Backend == source.BackendEmbedded:
		return ViewEmbedded
	case m.machine == nil || m.machine.Context().Loading():
		return ViewLoading
	case m.machine.Context().Status() == playback.StatusError:
		return ViewError
	default:
		return ViewPlayback
	}
}

// Init mounts the model
func (m *PlayerModel) Init() tea.Cmd {
	m.src = source.Resolve(m.props)
	m.mounted = true
	log.Info("Mounting player", "backend", m.src.Backend.String(), "url", m.src.URL, "title", m.src.Title)

	switch m.src.Backend {
	case source.BackendEmbedded:
		return m.mountEmbedded()
	default:
		return m.mountNative()
	}
}

func (m *PlayerModel) mountEmbedded() tea.Cmd {
	if m.config.Embed.Passive || m.opener == nil {
		return nil
	}
	return m.openEmbed()
}

func (m *PlayerModel) openEmbed() tea.Cmd {
	url, opener := m.src.URL, m.opener
	return func() tea.Msg {
		return EmbedOpenedMsg{Err: opener.Open(url)}
	}
}

func (m *PlayerModel) mountNative() tea.Cmd {
	m.machine = playback.NewMachine(m.config.Player.LoadTimeout, m.now())
	m.controls = controls.New(m.config.Controls.IdleHideDelay, m.config.Controls.LeaveHideDelay)
	m.menu = controls.NewMenu(m.registry)
	m.loading = NewLoadingModel("Starting player", m.now).WithContextInfo(m.src.Title)
	m.relayout()

	cmds := []tea.Cmd{m.loading.Init(), m.launch()}
	if m.config.Player.LoadTimeout > 0 {
		cmds = append(cmds, scheduleLoadCheck())
	}
	return tea.Batch(cmds...)
}

// launch starts the backend off the event loop.  Unmount waits for it, so a player that is still starting when the
// user quits is stopped rather than left running.
func (m *PlayerModel) launch() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	pending := newPendingLaunch(cancel)
	m.launching = pending
	launcher, src := m.launcher, m.src

	return func() tea.Msg {
		defer close(pending.done)
		if !pending.begin() {
			return nil
		}

		handle, err := launcher.Launch(ctx, src.URL, src.Title)
		if err != nil {
			return BackendFailedMsg{Err: err}
		}
		if !pending.finish(handle) {
			return nil
		}
		return BackendReadyMsg{Handle: handle}
	}
}

// waitForEvent delivers the next backend event.  It is re-armed after every event.
func waitForEvent(events <-chan player.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return BackendClosedMsg{}
		}
		return BackendEventMsg{Event: event}
	}
}

func scheduleLoadCheck() tea.Cmd {
	return tea.Tick(loadCheckInterval, func(time.Time) tea.Msg {
		return loadCheckMsg{}
	})
}

// Update handles messages and updates the engine state
func (m *PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.BlurMsg:
		return m, m.pointerLeft()

	case EmbedOpenedMsg:
		m.embedOpened = msg.Err == nil
		m.embedErr = msg.Err
		if msg.Err != nil {
			log.Warn("Could not open embedded player", "url", m.src.URL, "error", msg.Err)
		}
		return m, nil

	case BackendReadyMsg:
		return m, m.backendReady(msg.Handle)

	case BackendFailedMsg:
		if !m.mounted {
			return m, nil
		}
		log.Error("Failed to launch player", "error", msg.Err)
		m.machine.Fail(msg.Err)
		m.unwind()
		return m, nil

	case BackendEventMsg:
		return m, m.backendEvent(msg.Event)

	case BackendClosedMsg:
		if m.mounted && m.machine != nil {
			m.machine.Fail(player.ErrClosed)
			m.unwind()
		}
		return m, nil

	case controls.HideMsg:
		if m.controls != nil {
			m.controls.Update(msg, m.playing())
		}
		return m, nil

	case loadCheckMsg:
		if !m.mounted || m.machine == nil || !m.machine.Context().Loading() {
			return m, nil
		}
		if m.machine.CheckLoadTimeout(m.now()) {
			m.unwind()
			return m, nil
		}
		return m, scheduleLoadCheck()

	case spinner.TickMsg:
		if m.loading != nil && m.CurrentView() == ViewLoading {
			return m, m.loading.Update(msg)
		}
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m *PlayerModel) backendReady(handle player.Handle) tea.Cmd {
	if !m.mounted || m.machine.Context().Status() == playback.StatusError {
		log.Debug("Player became ready after unmount or failure, closing it")
		closeHandle(handle)
		return nil
	}

	log.Info("Player ready")
	m.handle = handle
	m.machine.Bind(handle)

	m.fullscreen = fullscreen.New(m.registry, handle)
	m.router = input.NewRouter(m.registry, m.machine, m.fullscreen, m.machine.Context().Volume)
	m.scope.Attach(m.router.Group())
	m.scope.Attach(m.fullscreen.Group())

	return waitForEvent(handle.Events())
}

func (m *PlayerModel) backendEvent(event player.Event) tea.Cmd {
	if !m.mounted || m.handle == nil {
		return nil
	}

	log.Trace("Player event", "type", event.Type, "name", event.Name, "value", event.Value)
	if event.Type == player.EventFullscreen {
		m.registry.Dispatch(fullscreen.ChangeEvent{Name: event.Name, Active: event.Active})
	} else {
		m.machine.Apply(event)
	}

	if m.machine.Context().Status() == playback.StatusError {
		m.unwind()
		return nil
	}
	return waitForEvent(m.handle.Events())
}

// unwind releases everything the native mount acquired after a failure.  The machine keeps its error for the view.
func (m *PlayerModel) unwind() {
	if m.launching != nil {
		m.launching.cancel()
	}
	m.scope.Release()
	if m.menu != nil {
		m.menu.Close()
	}
	m.closeJump()
	if m.handle != nil {
		closeHandle(m.handle)
		m.handle = nil
	}
}

// Unmount releases every listener, timer and backend the mount acquired, including a backend that is still starting:
// it waits up to launchWait for an in-flight launch to return.  It is safe to call more than once.
func (m *PlayerModel) Unmount() {
	if !m.mounted {
		return
	}
	log.Info("Unmounting player")
	m.mounted = false
	if m.launching != nil {
		m.launching.abandon(m.launchWait)
	}
	m.unwind()
	if m.controls != nil {
		m.controls.Unmount()
	}
}

func (m *PlayerModel) quit() (tea.Model, tea.Cmd) {
	log.Info("Quit command received.  Shutting down...")
	m.Unmount()
	return m, tea.Quit
}

func (m *PlayerModel) playing() bool {
	return m.machine != nil && m.machine.Context().Status() == playback.StatusPlaying
}

// interactive reports whether the native controls can be used
func (m *PlayerModel) interactive() bool {
	return m.handle != nil && m.CurrentView() == ViewPlayback
}

func (m *PlayerModel) relayout() {
	m.layout = computeLayout(m.width, m.height, m.showHelp)
	m.progress.Width = m.layout.track.W
	if m.loading != nil {
		m.loading.Resize(m.layout.stage.W, m.layout.stage.H)
	}
	if m.menu != nil {
		m.menu.SetBounds(m.layout.menu, m.layout.gear)
	}
}

func (m *PlayerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	target := input.TargetSurface
	if m.modal == ModalJump {
		target = input.TargetTextInput
	}
	event := &input.KeyEvent{Key: key, Target: target}
	m.registry.Dispatch(event)
	if event.DefaultPrevented() {
		m.notice = ""
		return m, nil
	}

	if m.modal == ModalJump {
		return m, m.handleJumpKey(msg)
	}

	switch kb.ActionForKey(key, kb.ContextGlobal) {
	case kb.ActionQuit:
		return m.quit()
	case kb.ActionToggleHelp:
		m.showHelp = !m.showHelp
		m.relayout()
		return m, nil
	}

	if m.src.Backend == source.BackendEmbedded {
		if kb.ActionForKey(key, kb.ContextEmbedded) == kb.ActionOpenEmbed && m.opener != nil {
			return m, m.openEmbed()
		}
		return m, nil
	}

	if !m.interactive() {
		return m, nil
	}

	switch kb.ActionForKey(key, kb.ContextPlayerView) {
	case kb.ActionToggleSettings:
		m.menu.Toggle()
		m.syncModal()
	case kb.ActionJumpToTime:
		m.menu.Close()
		m.modal = ModalJump
		m.jump.SetValue("")
		return m, m.jump.Focus()
	case kb.ActionBack:
		m.menu.Close()
		m.syncModal()
	}
	return m, nil
}

func (m *PlayerModel) handleJumpKey(msg tea.KeyMsg) tea.Cmd {
	switch kb.ActionForKey(msg.String(), kb.ContextJumpPrompt) {
	case kb.ActionJumpConfirm:
		value := m.jump.Value()
		m.closeJump()
		seconds, err := playback.ParseTime(value)
		if err != nil {
			m.notice = "Not a time: " + value
			return nil
		}
		if err := m.machine.SeekTo(seconds); err != nil {
			log.Warn("Jump failed", "error", err)
		}
		return nil
	case kb.ActionBack:
		m.closeJump()
		return nil
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return cmd
}

func (m *PlayerModel) closeJump() {
	if m.modal == ModalJump {
		m.modal = ModalNone
	}
	m.jump.Blur()
}

// syncModal mirrors the menu, which can also close itself on a press outside it
func (m *PlayerModel) syncModal() {
	switch {
	case m.modal == ModalJump:
	case m.menu != nil && m.menu.IsOpen():
		m.modal = ModalSettings
	default:
		m.modal = ModalNone
	}
}

func (m *PlayerModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.controls == nil {
		return nil
	}

	inside := m.layout.surface.Contains(msg.X, msg.Y)
	var cmds []tea.Cmd

	switch {
	case inside:
		m.pointerIn = true
		cmds = append(cmds, m.controls.PointerMove())
	case m.pointerIn:
		cmds = append(cmds, m.pointerLeft())
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.registry.Dispatch(input.PointerEvent{X: msg.X, Y: msg.Y})
		m.click(msg.X, msg.Y)
		m.syncModal()
	}
	return tea.Batch(cmds...)
}

func (m *PlayerModel) pointerLeft() tea.Cmd {
	if m.controls == nil || !m.pointerIn {
		return nil
	}
	m.pointerIn = false
	return m.controls.PointerLeave()
}

// click hit-tests a left press against the drawn overlay
func (m *PlayerModel) click(x, y int) {
	if !m.interactive() || !m.controls.Visible() {
		return
	}
	l := m.layout

	var err error
	switch {
	case m.menu.IsOpen() && l.menu.Contains(x, y):
		if rate, ok := l.rateAt(x, y); ok {
			err = m.machine.SetRate(rate)
			m.menu.Close()
		}
	case l.gear.Contains(x, y):
		m.menu.Toggle()
	case l.fullscreen.Contains(x, y):
		err = m.fullscreen.Toggle()
	case l.track.Contains(x, y):
		err = m.machine.ScrubTo(float64(x-l.track.X), float64(l.track.W))
	case !m.menu.IsOpen() && l.centerButton.Contains(x, y):
		err = m.machine.TogglePlay()
	}

	if err != nil {
		log.Warn("Control action failed", "x", x, "y", y, "error", err)
		m.notice = err.Error()
	}
}
