package tui

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// keyMap holds the action bindings; pointer input comes from the mouse only.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	merge      key.Binding
	separate   key.Binding
	copyRange  key.Binding
	clear      key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		merge:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "merge")),
		separate:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "separate")),
		copyRange:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy range")),
		clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.merge, k.separate, k.copyRange, k.clear, k.toggleHelp, k.quit}
}

// FullHelp returns grouped bindings.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.merge, k.separate},
		{k.copyRange, k.clear},
		{k.toggleHelp, k.quit},
	}
}

// applyConfig overrides configurable bindings; blank values keep the defaults.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.merge, cfg.Merge, "m", "merge")
	configureBinding(&k.separate, cfg.Separate, "s", "separate")
	configureBinding(&k.copyRange, cfg.CopyRange, "y", "copy range")
	configureBinding(&k.clear, cfg.Clear, "esc", "clear selection")
	configureBinding(&k.toggleHelp, cfg.Help, "?", "toggle help")
}

// configureBinding replaces the keys and help text of one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a comma-separated key list into matcher keys and help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	var (
		keys  []string
		helps []string
	)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		helps = append(helps, part)
		runes := []rune(part)
		switch {
		case strings.EqualFold(part, "space"):
			keys = append(keys, " ", "space")
		case len(runes) == 1 && unicode.IsUpper(runes[0]):
			keys = append(keys, part, "shift+"+string(unicode.ToLower(runes[0])))
		case len(runes) == 1:
			keys = append(keys, part)
		default:
			keys = append(keys, strings.ToLower(part))
		}
	}
	if len(keys) == 0 {
		return []string{fallback}, fallback
	}
	return keys, strings.Join(helps, "/")
}
