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

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Player actions
	ActionPlay              Action = "play"
	ActionTogglePlay        Action = "toggle_play"
	ActionSeekBackward      Action = "seek_backward"
	ActionSeekForward       Action = "seek_forward"
	ActionOpenSeekPrompt    Action = "open_seek_prompt"
	ActionToggleControls    Action = "toggle_controls"
	ActionEnterPIP          Action = "enter_pip"
	ActionOpenQualitySelect Action = "open_quality_select"

	// Quality selection actions
	ActionSelectQuality     Action = "select_quality"
	ActionSelectAutoQuality Action = "select_auto_quality"

	// Text entry actions
	ActionEnableSearch Action = "enable_search"
	ActionSubmit       Action = "submit"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal        ContextName = "global"
	ContextPlayer        ContextName = "player"
	ContextQualitySelect ContextName = "quality_select"
	ContextSearchMode    ContextName = "search_mode"
	ContextSeekPrompt    ContextName = "seek_prompt"
	ContextHelp          ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:        globalBindings,
	ContextPlayer:        playerBindings,
	ContextQualitySelect: qualitySelectBindings,
	ContextSearchMode:    searchModeBindings,
	ContextSeekPrompt:    seekPromptBindings,
	ContextHelp:          helpBindings,
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

// navigationBindings contains general navigation bindings for consistent navigation across the app
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "k",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "j",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move top of view",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move bottom of view",
		},
	},
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary: "ctrl+h",
			Help:    "Toggle help screen",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Go back/cancel current action",
		},
	},
}

// helpBindings contains key bindings specific to the help view
var helpBindings = withNavigation([]Binding{})

// playerBindings contains key bindings for the playback controls
var playerBindings = []Binding{
	{
		Action: ActionPlay,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Start playback",
		},
	},
	{
		Action: ActionTogglePlay,
		KeyMap: KeyMap{
			Primary:   " ",
			Secondary: "p",
			Help:      "Play/pause",
		},
	},
	{
		Action: ActionSeekBackward,
		KeyMap: KeyMap{
			Primary:   "left",
			Secondary: "b",
			Help:      "Seek backward",
		},
	},
	{
		Action: ActionSeekForward,
		KeyMap: KeyMap{
			Primary:   "right",
			Secondary: "f",
			Help:      "Seek forward",
		},
	},
	{
		Action: ActionOpenSeekPrompt,
		KeyMap: KeyMap{
			Primary: "g",
			Help:    "Go to a time",
		},
	},
	{
		Action: ActionToggleControls,
		KeyMap: KeyMap{
			Primary: "c",
			Help:    "Show/hide controls",
		},
	},
	{
		Action: ActionEnterPIP,
		KeyMap: KeyMap{
			Primary: "i",
			Help:    "Picture-in-picture",
		},
	},
	{
		Action: ActionOpenQualitySelect,
		KeyMap: KeyMap{
			Primary: "q",
			Help:    "Choose quality",
		},
	},
}

// qualitySelectBindings contains key bindings specific to the quality selection modal
var qualitySelectBindings = withNavigation([]Binding{
	{
		Action: ActionSelectQuality,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Select quality",
		},
	},
	{
		Action: ActionSelectAutoQuality,
		KeyMap: KeyMap{
			Primary: "a",
			Help:    "Automatic quality",
		},
	},
	{
		Action: ActionEnableSearch,
		KeyMap: KeyMap{
			Primary:   "/",
			Secondary: "ctrl+f",
			Help:      "Filter qualities",
		},
	},
})

// searchModeBindings contains key bindings specific for when search mode is active
var searchModeBindings = []Binding{
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary:   "esc",
			Secondary: "ctrl+f",
			Help:      "Exit search mode and remove the filter",
		},
	},
	{
		Action: ActionSubmit,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Apply the search filter and return control to the original view",
		},
	},
}

// seekPromptBindings contains key bindings for the go-to-time prompt
var seekPromptBindings = []Binding{
	{
		Action: ActionSubmit,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Seek to the entered time",
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

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// GetBinding returns the binding for an action within a context
func GetBinding(action Action, name ContextName) (Binding, bool) {
	for _, binding := range ContextBindings[name] {
		if binding.Action == action {
			return binding, true
		}
	}
	return Binding{}, false
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		key := keyMsg.String()
		for _, binding := range bindings {
			if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
				return binding.Action
			}
		}
	}
	return ""
}

// DisplayKey renders a key for humans, e.g. "space" rather than " "
func DisplayKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return DisplayKey(binding.KeyMap.Primary) + "/" + DisplayKey(binding.KeyMap.Secondary) + ": " + binding.KeyMap.Help
	}
	return DisplayKey(binding.KeyMap.Primary) + ": " + binding.KeyMap.Help
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
