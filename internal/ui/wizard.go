package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	Network       string
	NodeAlgorithm string
	WalletAddress string // optional watch-only wallet
	PinataJWT     string // optional
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepAlgorithm
	stepWallet
	stepPinata
	stepDone
)

var algorithms = []string{"fastest", "round-robin", "failover"}

type wizardModel struct {
	step      wizardStep
	networks  []string
	result    WizardResult
	cursor    int
	choices   []string
	input     string
	inputMode bool
	aborted   bool
}

func newWizard(networks []string) wizardModel {
	return wizardModel{step: stepNetwork, networks: networks, choices: networks}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyUp:
		if !m.inputMode && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if !m.inputMode && m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if m.inputMode {
			m.applyInput()
		} else {
			m.applyChoice()
		}
		m.advance()
	case tea.KeyBackspace:
		if m.inputMode && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		if m.inputMode {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	m.cursor = 0
	m.input = ""
	switch m.step {
	case stepAlgorithm:
		m.choices = algorithms
	case stepWallet, stepPinata:
		m.choices = nil
		m.inputMode = true
	}
}

func (m *wizardModel) applyChoice() {
	if m.cursor >= len(m.choices) {
		return
	}
	switch m.step {
	case stepNetwork:
		m.result.Network = m.choices[m.cursor]
	case stepAlgorithm:
		m.result.NodeAlgorithm = m.choices[m.cursor]
	}
}

func (m *wizardModel) applyInput() {
	// Pastes often carry whitespace or brackets.
	v := strings.Trim(strings.TrimSpace(m.input), "[]\"'")
	switch m.step {
	case stepWallet:
		m.result.WalletAddress = v
	case stepPinata:
		m.result.PinataJWT = v
	}
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepNetwork:
		s = renderMenu("Select network:", m.choices, m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select node selection strategy:", m.choices, m.cursor)
	case stepWallet:
		s = StyleTitle.Render("Add a watch-only wallet (optional)") + "\n\n"
		s += StyleMeta.Render("Enter an address (or press Enter to skip):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepPinata:
		s = StyleTitle.Render("Pinata JWT for proof uploads (optional)") + "\n\n"
		s += StyleMeta.Render("Paste the JWT (or press Enter to skip):") + "\n"
		s += "> " + StyleMeta.Render(strings.Repeat("•", len(m.input))) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc quit")
	return s
}

// RunWizard launches the interactive setup wizard over networks and
// returns the answers. A nil result means the user aborted.
func RunWizard(networks []string) (*WizardResult, error) {
	if len(networks) == 0 {
		return nil, fmt.Errorf("no networks to choose from")
	}
	p := tea.NewProgram(newWizard(networks))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	fm := final.(wizardModel)
	if fm.aborted {
		return nil, nil
	}
	result := fm.result
	return &result, nil
}
