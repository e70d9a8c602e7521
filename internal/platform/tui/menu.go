package tui

import (
	"fmt"
	"strings"
)

// MenuItem is an entry of the intro menu.
type MenuItem int

const (
	MenuStart MenuItem = iota
	MenuScoreboard
	MenuQuit
)

var menuItems = []MenuItem{MenuStart, MenuScoreboard, MenuQuit}

// Title returns the label shown for the item.
func (i MenuItem) Title() string {
	switch i {
	case MenuStart:
		return "Start shift"
	case MenuScoreboard:
		return "Leaderboard"
	case MenuQuit:
		return "Log off"
	default:
		return ""
	}
}

// menuState is the cursor of the intro menu.
type menuState struct {
	cursor int
}

// move shifts the cursor and keeps it on the list.
func (m *menuState) move(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(menuItems) {
		m.cursor = len(menuItems) - 1
	}
}

func (m menuState) selected() MenuItem {
	return menuItems[m.cursor]
}

const introBlurb = `Dodge the falling decks, dashboards and toasts.
Every few seconds leadership wants a memo: type it, use the buzzwords,
and the quality of your prose sets how hard the next round gets.`

// introView renders the title screen.
func introView(m menuState, highScore int, width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("  B U Z Z W O R D   D O D G E  ", width)))
	b.WriteString("\n\n")
	for _, line := range strings.Split(introBlurb, "\n") {
		b.WriteString(dimStyle.Render(centerText(line, width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range menuItems {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := centerText(cursor+item.Title(), width)
		if i == m.cursor {
			line = accentStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if highScore > 0 {
		b.WriteString("\n")
		b.WriteString(centerText(fmt.Sprintf("Best so far: %d", highScore), width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "A/D or ←/→: move  |  Space/W: jump  |  P: pause  |  Enter: select  |  Tab: scores"
	b.WriteString(dimStyle.Render(centerText(controls, width)))
	b.WriteString("\n")

	return b.String()
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}
