// Package logging builds the charmbracelet logger shared by every poi
// component. Components accept a *log.Logger and fall back to Discard.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "poi",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           ParseLevel(level),
	})
	l.SetStyles(styles())
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Prefix = lipgloss.NewStyle().Foreground(lipgloss.Color("#9B5DE5")).Bold(true)
	s.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Foreground(lipgloss.Color("#00B4D8")).Bold(true)
	s.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Foreground(lipgloss.Color("#FFB800")).Bold(true)
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Foreground(lipgloss.Color("#FF4444")).Bold(true)
	s.Keys["txid"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8"))
	s.Keys["address"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8"))
	s.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	return s
}
