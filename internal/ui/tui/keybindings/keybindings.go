package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

// Define all possible actions
const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionToggleHelp Action = "toggle_help"
	ActionBack       Action = "back" // General purpose "go back" or "cancel"

	// Playback actions, routed to the playback machine while a native player is mounted
	ActionTogglePlay       Action = "toggle_play"
	ActionSkipBack         Action = "skip_back"
	ActionSkipForward      Action = "skip_forward"
	ActionVolumeUp         Action = "volume_up"
	ActionVolumeDown       Action = "volume_down"
	ActionToggleFullscreen Action = "toggle_fullscreen"
	ActionToggleMute       Action = "toggle_mute"
	ActionRateDown         Action = "rate_down"
	ActionRateUp           Action = "rate_up"

	// Player view actions
	ActionToggleSettings Action = "toggle_settings"
	ActionJumpToTime     Action = "jump_to_time"

	// Jump prompt actions
	ActionJumpConfirm Action = "jump_confirm"

	// Embedded view actions
	ActionOpenEmbed Action = "open_embed"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal     ContextName = "global"
	ContextPlayback   ContextName = "playback"
	ContextPlayerView ContextName = "player_view"
	ContextJumpPrompt ContextName = "jump_prompt"
	ContextEmbedded   ContextName = "embedded"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:     globalBindings,
	ContextPlayback:   playbackBindings,
	ContextPlayerView: playerViewBindings,
	ContextJumpPrompt: jumpPromptBindings,
	ContextEmbedded:   embeddedBindings,
}

// KeyMap stores the mappings from actions to key sequences for each context
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary:   "q",
			Secondary: "ctrl+c",
			Help:      "Quit",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary: "?",
			Help:    "Toggle key help",
		},
	},
}

// playbackBindings are handled by the input router.  Keys use bubbletea's names, space is " ".
var playbackBindings = []Binding{
	{
		Action: ActionTogglePlay,
		KeyMap: KeyMap{
			Primary: " ",
			Help:    "Play/pause",
		},
	},
	{
		Action: ActionSkipBack,
		KeyMap: KeyMap{
			Primary: "left",
			Help:    "Back 10s",
		},
	},
	{
		Action: ActionSkipForward,
		KeyMap: KeyMap{
			Primary: "right",
			Help:    "Forward 10s",
		},
	},
	{
		Action: ActionVolumeUp,
		KeyMap: KeyMap{
			Primary: "up",
			Help:    "Volume up",
		},
	},
	{
		Action: ActionVolumeDown,
		KeyMap: KeyMap{
			Primary: "down",
			Help:    "Volume down",
		},
	},
	{
		Action: ActionToggleFullscreen,
		KeyMap: KeyMap{
			Primary:   "f",
			Secondary: "F",
			Help:      "Fullscreen",
		},
	},
	{
		Action: ActionToggleMute,
		KeyMap: KeyMap{
			Primary:   "m",
			Secondary: "M",
			Help:      "Mute",
		},
	},
	{
		Action: ActionRateDown,
		KeyMap: KeyMap{
			Primary: "<",
			Help:    "Slower",
		},
	},
	{
		Action: ActionRateUp,
		KeyMap: KeyMap{
			Primary: ">",
			Help:    "Faster",
		},
	},
}

// playerViewBindings are the keys the player view handles itself once the router passed on them
var playerViewBindings = []Binding{
	{
		Action: ActionToggleSettings,
		KeyMap: KeyMap{
			Primary: "s",
			Help:    "Settings",
		},
	},
	{
		Action: ActionJumpToTime,
		KeyMap: KeyMap{
			Primary: "t",
			Help:    "Jump to time",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Close settings",
		},
	},
}

// jumpPromptBindings apply while the jump-to-time text input has focus
var jumpPromptBindings = []Binding{
	{
		Action: ActionJumpConfirm,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Jump",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Cancel",
		},
	},
}

// embeddedBindings apply to the passive embed frame
var embeddedBindings = []Binding{
	{
		Action: ActionOpenEmbed,
		KeyMap: KeyMap{
			Primary: "o",
			Help:    "Open in browser",
		},
	},
}

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// ActionForKey returns the action bound to key in a context, or an empty Action if not found
func ActionForKey(key string, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		for _, binding := range bindings {
			if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
				return binding.Action
			}
		}
	}
	return ""
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	return ActionForKey(keyMsg.String(), name)
}

// DisplayKey renders a key name for the help bar
func DisplayKey(key string) string {
	switch key {
	case " ":
		return "space"
	case "left":
		return "←"
	case "right":
		return "→"
	case "up":
		return "↑"
	case "down":
		return "↓"
	default:
		return key
	}
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return DisplayKey(binding.KeyMap.Primary) + "/" + DisplayKey(binding.KeyMap.Secondary) + ": " + binding.KeyMap.Help
	}
	return DisplayKey(binding.KeyMap.Primary) + ": " + binding.KeyMap.Help
}
