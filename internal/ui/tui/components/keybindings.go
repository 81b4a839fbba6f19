package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	kb "github.com/coursedeck/playdeck/internal/ui/tui/keybindings"
	"github.com/coursedeck/playdeck/internal/ui/tui/styles"
)

// KeyBinding represents a single key and its description for the keybinding bar
type KeyBinding struct {
	Key  string
	Desc string
}

// keyStyle is used to highlight keyboard shortcuts in UI
var keyStyle = lipgloss.NewStyle().
	Foreground(styles.Accent).
	Bold(true)

// BindingsFor collects the bar entries for a set of contexts, in order
func BindingsFor(contexts ...kb.ContextName) []KeyBinding {
	var out []KeyBinding
	for _, name := range contexts {
		for _, b := range kb.ContextBindings[name] {
			key := kb.DisplayKey(b.KeyMap.Primary)
			if b.KeyMap.Secondary != "" && !strings.EqualFold(b.KeyMap.Primary, b.KeyMap.Secondary) {
				key += "/" + kb.DisplayKey(b.KeyMap.Secondary)
			}
			out = append(out, KeyBinding{Key: key, Desc: b.KeyMap.Help})
		}
	}
	return out
}

// KeyBindingsBar creates a styled footer showing a set of keybindings
// width: The width of the screen to center the bar
// bindings: The list of keybindings to display
func KeyBindingsBar(width int, bindings []KeyBinding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s: %s",
			keyStyle.Render(b.Key),
			b.Desc))
	}

	keyBar := styles.Info.Render(strings.Join(parts, " • "))
	return styles.CenteredText(width, keyBar)
}
