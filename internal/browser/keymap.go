package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/input"
)

// keyNames maps friendly key names to the DOM key values CDP expects.
var keyNames = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"tab":       "Tab",
	"esc":       "Escape",
	"escape":    "Escape",
	"space":     " ",
	"backspace": "Backspace",
	"delete":    "Delete",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pagedown":  "PageDown",
}

var modifierNames = map[string]input.Modifier{
	"ctrl":    input.ModifierCtrl,
	"control": input.ModifierCtrl,
	"alt":     input.ModifierAlt,
	"option":  input.ModifierAlt,
	"shift":   input.ModifierShift,
	"cmd":     input.ModifierMeta,
	"meta":    input.ModifierMeta,
	"win":     input.ModifierMeta,
}

// ResolveKey parses a friendly key spec like "enter", "ctrl+a" or "cmd+shift+t"
// into a CDP modifier mask and key value. Single characters pass through
// unchanged; multi-character names must be known.
func ResolveKey(spec string) (input.Modifier, string, error) {
	parts := strings.Split(spec, "+")

	var mods input.Modifier
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifierNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return 0, "", fmt.Errorf("unknown modifier %q in key spec %q", part, spec)
		}
		mods |= mod
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return 0, "", fmt.Errorf("empty key in spec %q", spec)
	}
	if len(key) == 1 {
		return mods, key, nil
	}
	named, ok := keyNames[strings.ToLower(key)]
	if !ok {
		return 0, "", fmt.Errorf("unknown key name %q", key)
	}
	return mods, named, nil
}
