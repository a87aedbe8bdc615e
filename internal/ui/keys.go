package ui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"
)

type keyMap struct {
	Query       key.Binding
	Increment   key.Binding
	Decrement   key.Binding
	Refresh     key.Binding
	ClearQuery  key.Binding
	Up          key.Binding
	Down        key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Query: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "set id"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "=", "l"),
			key.WithHelp("+", "advance pointer"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "h"),
			key.WithHelp("-", "step pointer back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ClearQuery: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear id"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		ScrollLeft: key.NewBinding(
			key.WithKeys("<", "left"),
			key.WithHelp("</←", "scroll left"),
		),
		ScrollRight: key.NewBinding(
			key.WithKeys(">", "right"),
			key.WithHelp(">/→", "scroll right"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy row"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Query, k.Increment, k.Decrement, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) fullHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Increment, k.Decrement, k.ScrollLeft, k.ScrollRight,
		k.Query, k.ClearQuery, k.Refresh, k.Copy, k.Help, k.Quit,
	}
}

// legend renders bindings on one line as "key desc • key desc".
func legend(bindings []key.Binding, keyStyle, descStyle lipgloss.Style) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Desc))
	}
	return strings.Join(parts, " • ")
}

// helpTable renders one binding per line with aligned keys.
func helpTable(bindings []key.Binding, keyStyle, descStyle lipgloss.Style) string {
	width := 0
	for _, b := range bindings {
		if w := lipgloss.Width(b.Help().Key); w > width {
			width = w
		}
	}
	var sb strings.Builder
	for _, b := range bindings {
		h := b.Help()
		pad := strings.Repeat(" ", width-lipgloss.Width(h.Key))
		sb.WriteString("  " + keyStyle.Render(h.Key) + pad + "  " + descStyle.Render(h.Desc) + "\n")
	}
	return sb.String()
}
