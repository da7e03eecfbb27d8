package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // primary text, e.g. a function name
	SubLabel string // secondary text shown dimmed, e.g. its signature
	Tag      string // short badge, e.g. "read" or "write"
	Value    string // value returned on selection
}

// pickerModel is the Bubble Tea model for the interactive list picker.
// Typing narrows the list to items whose label contains the filter.
type pickerModel struct {
	title    string
	items    []PickerItem
	filter   string
	cursor   int
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) visible() []PickerItem {
	if m.filter == "" {
		return m.items
	}
	f := strings.ToLower(m.filter)
	var out []PickerItem
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Label), f) {
			out = append(out, it)
		}
	}
	return out
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	items := m.visible()
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if len(items) > 0 {
			item := items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
		}
	case tea.KeyRunes:
		m.filter += string(key.Runes)
		m.cursor = 0
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n")
	sb.WriteString(StyleMeta.Render("  filter: ") + StyleValue.Render(m.filter) + "█\n\n")

	items := m.visible()
	if len(items) == 0 {
		sb.WriteString(StyleMeta.Render("    no matches") + "\n")
	}
	for i, item := range items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}

		line := prefix + StyleValue.Render(item.Label)
		if item.Tag != "" {
			line += " " + Category("["+item.Tag+"]")
		}
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}

		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ ] navigate   [ type ] filter   [ Enter ] select   [ Esc ] cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the selected item's Value.
// Returns ("", nil) if the user cancels. Returns an error only on TUI failure.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}

	m := pickerModel{title: title, items: items}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
