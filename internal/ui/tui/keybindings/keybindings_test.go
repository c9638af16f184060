package keybindings

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNoDuplicateKeyBindings(t *testing.T) {
	// Check each context individually
	for contextName, bindings := range ContextBindings {
		t.Run(fmt.Sprintf("Context_%s", contextName), func(t *testing.T) {
			keyToAction := make(map[string]Action)

			for _, binding := range bindings {
				keys := []string{binding.KeyMap.Primary}
				if binding.KeyMap.Secondary != "" {
					keys = append(keys, binding.KeyMap.Secondary)
				}

				for _, key := range keys {
					if existingAction, exists := keyToAction[key]; exists {
						t.Errorf("Duplicate key binding '%s' in context '%s': "+
							"first assigned to action '%s', then to '%s'",
							key, contextName, existingAction, binding.Action)
						continue
					}
					keyToAction[key] = binding.Action
				}
			}
		})
	}
}

// Player keys must not shadow global ones, which the app handles before delegating
func TestPlayerBindingsDoNotShadowGlobal(t *testing.T) {
	global := make(map[string]bool)
	for _, binding := range ContextBindings[ContextGlobal] {
		global[binding.KeyMap.Primary] = true
	}
	for _, binding := range ContextBindings[ContextPlayer] {
		assert.False(t, global[binding.KeyMap.Primary], "player key %q is global", binding.KeyMap.Primary)
		assert.False(t, global[binding.KeyMap.Secondary], "player key %q is global", binding.KeyMap.Secondary)
	}
}

func TestGetActionByKey(t *testing.T) {
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	assert.Equal(t, ActionTogglePlay, GetActionByKey(space, ContextPlayer))
	assert.Equal(t, ActionSeekForward, GetActionByKey(tea.KeyMsg{Type: tea.KeyRight}, ContextPlayer))
	assert.Equal(t, ActionSeekBackward, GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}}, ContextPlayer))
	assert.Equal(t, Action(""), GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, ContextPlayer))
	assert.Equal(t, Action(""), GetActionByKey(space, "missing"))

	assert.Equal(t, "space/p: Play/pause", FormatKeyHelp(playerBindings[1]))
}
