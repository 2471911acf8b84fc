package initializer

import (
	"io"
	"log/slog"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type levelStyle struct {
	level log.Level
	key   string
	icon  string
	color lipgloss.AdaptiveColor
}

var levelStyles = []levelStyle{
	{log.ErrorLevel, "error", "❌", lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF6B6B"}},
	{log.WarnLevel, "warn", "⚠️", lipgloss.AdaptiveColor{Light: "#C17C00", Dark: "#FFC857"}},
	{log.InfoLevel, "info", "🏦", lipgloss.AdaptiveColor{Light: "#1B998B", Dark: "#2EC4B6"}},
	{log.DebugLevel, "debug", "🐛", lipgloss.AdaptiveColor{Light: "#5C4D7D", Dark: "#9D8DF1"}},
}

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
}

func ledgerStyles() *log.Styles {
	styles := log.DefaultStyles()
	muted := lipgloss.NewStyle().Foreground(levelStyles[len(levelStyles)-1].color)
	for _, ls := range levelStyles {
		styles.Levels[ls.level] = lipgloss.NewStyle().
			SetString(ls.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(ls.color)
		styles.Keys[ls.key] = lipgloss.NewStyle().Foreground(ls.color)
		styles.Values[ls.key] = lipgloss.NewStyle().Bold(true)
	}
	for _, key := range []string{"prefix", "caller", "time", "account_type", "amount"} {
		styles.Keys[key] = muted
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

// setupLogger builds the process logger on top of charmbracelet/log and installs it as
// the slog default.
func setupLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text"}
	}
	formatter, ok := formatters[cfg.Format]
	if !ok {
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(ledgerStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
