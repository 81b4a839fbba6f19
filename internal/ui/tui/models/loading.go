package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coursedeck/playdeck/internal/ui/tui/styles"
)

// LoadingModel is the only content shown while the native player has not reported metadata or a first frame
type LoadingModel struct {
	width, height int
	message       string
	contextInfo   string // Optional additional context
	spinner       spinner.Model
	startTime     time.Time
	now           func() time.Time
}

// NewLoadingModel creates a new loading model with the required message
func NewLoadingModel(message string, now func() time.Time) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	return &LoadingModel{
		message:   message,
		spinner:   s,
		startTime: now(),
		now:       now,
	}
}

// WithContextInfo adds additional context information
func (m *LoadingModel) WithContextInfo(info string) *LoadingModel {
	m.contextInfo = info
	return m
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update only consumes spinner ticks
func (m *LoadingModel) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return cmd
	}
	return nil
}

func (m *LoadingModel) View() string {
	contentWidth := min(m.width-4, 60)
	if contentWidth < 20 {
		contentWidth = max(m.width, 1)
	}

	spinnerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9D86FF")).
		Bold(true).
		PaddingRight(1)

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)

	centerStyle := lipgloss.NewStyle().
		Width(contentWidth).
		Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(centerStyle.Render(spinnerStyle.Render(m.spinner.View()) + " " + messageStyle.Render(m.message)))

	if m.contextInfo != "" {
		b.WriteString("\n\n")
		b.WriteString(centerStyle.Inherit(styles.Dim).Italic(true).Render(m.contextInfo))
	}

	elapsed := m.GetElapsedTime().Truncate(time.Second)
	b.WriteString("\n\n")
	b.WriteString(centerStyle.Inherit(styles.Dim).Render(fmt.Sprintf("%s elapsed", elapsed)))

	return styles.CenteredView(m.width, m.height, b.String())
}

// Resize updates the dimensions of the loading model
func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// GetElapsedTime returns the time elapsed since loading started
func (m *LoadingModel) GetElapsedTime() time.Duration {
	return m.now().Sub(m.startTime)
}
