package main

import (
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

var debug bool

func newLogger(prefix string) *charmlog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		Level:           level,
		ReportCaller:    debug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Prefix:          prefix,
	})
	styles := charmlog.DefaultStyles()
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	styles.Values["err"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["instrument"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	logger.SetStyles(styles)
	return logger
}
