package components

import (
	"fmt"
	"strings"

	kb "github.com/PizzaHomicide/vidctl/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/styles"
	"github.com/samber/lo"
)

// KeyBinding represents a single key and its description for the keybinding bar
type KeyBinding struct {
	Key  string
	Desc string
}

// FromActions builds bar entries for the given actions of a context, in the order given.  Unknown actions are skipped.
func FromActions(context kb.ContextName, actions ...kb.Action) []KeyBinding {
	return lo.FilterMap(actions, func(action kb.Action, _ int) (KeyBinding, bool) {
		binding, ok := kb.GetBinding(action, context)
		if !ok {
			return KeyBinding{}, false
		}
		return KeyBinding{Key: kb.DisplayKey(binding.KeyMap.Primary), Desc: binding.KeyMap.Help}, true
	})
}

// KeyBindingsBar creates a styled footer showing a set of keybindings
// width: The width of the screen to center the bar
// bindings: The list of keybindings to display
func KeyBindingsBar(width int, bindings []KeyBinding) string {
	parts := lo.Map(bindings, func(b KeyBinding, _ int) string {
		return fmt.Sprintf("%s: %s", styles.Key.Render(b.Key), b.Desc)
	})

	keyBar := styles.Info.Render(strings.Join(parts, " • "))
	return styles.CenteredText(width, keyBar)
}
