package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: confirmed, verified
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: pending, warnings
	ColorError     = lipgloss.Color("#FF4444") // red: reverted, rejected
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, tx ids, CIDs
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray: timestamps, hints
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorNetwork   = lipgloss.Color("#9B5DE5") // purple: network names, titles
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selected rows
	ColorImpact    = lipgloss.Color("#82D173") // leaf green: categories, badges
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)
	StyleImpact  = lipgloss.NewStyle().Foreground(ColorImpact)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)
)

// Version is printed in the banner.
var Version = "0.1.0"

// Banner returns the poi ASCII banner.
func Banner() string {
	art := `
  ██████╗  ██████╗ ██╗
  ██╔══██╗██╔═══██╗██║
  ██████╔╝██║   ██║██║
  ██╔═══╝ ██║   ██║██║
  ██║     ╚██████╔╝██║
  ╚═╝      ╚═════╝ ╚═╝`

	tagline := StyleMeta.Render("  Proof of Impact on VeChainThor  ·  v" + Version)
	features := StyleImpact.Render("  ✦ Opportunities  ✦ Staking  ✦ Governance")

	return StyleNetwork.Render(art) + "\n" + tagline + "\n" + features + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral notice.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hint formats a suggestion for what to run next.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// NetworkName formats a network name.
func NetworkName(n string) string { return StyleNetwork.Render(n) }

// Status colors an opportunity, submission or proposal status by outcome.
func Status(s string) string {
	switch strings.ToLower(s) {
	case "active", "verified", "passed", "executed", "completed":
		return StyleSuccess.Render(s)
	case "pending":
		return StyleWarning.Render(s)
	case "rejected", "defeated", "cancelled":
		return StyleError.Render(s)
	}
	return StyleMeta.Render(s)
}

// Category formats an opportunity category tag.
func Category(c string) string {
	if c == "" {
		return StyleMeta.Render("-")
	}
	return StyleImpact.Render(c)
}

// DangerBox frames content that must not be missed, such as a private key
// shown once.
func DangerBox(content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorError).
		Padding(1, 2).
		Render(content)
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
