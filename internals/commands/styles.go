package commands

import (
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// EmojiEnabled can be set to false to never print emojis
var EmojiEnabled = true

// windows terminals other than "Windows Terminal" set SESSIONNAME and can not render emojis
var emojiSupport = runtime.GOOS != "windows" || os.Getenv("SESSIONNAME") == ""

// Emoji returns e if the terminal (probably) supports emojis
func Emoji(e string) string {
	if emojiSupport && EmojiEnabled {
		return e
	}
	return ""
}

var styleErrBox = lipgloss.NewStyle().
	Width(80).
	MarginTop(1).
	Bold(true).
	Background(lipgloss.AdaptiveColor{Light: "#ffcdd2", Dark: "#512222"}).
	Foreground(lipgloss.AdaptiveColor{Light: "#b71c1c", Dark: "#fa8a8a"}).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderLeftForeground(lipgloss.Color("#f86262")).
	Padding(1, 2)

var styleHelpBox = lipgloss.NewStyle().
	Width(80).
	Background(lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#2f2f2f"}).
	Padding(0, 2).
	Margin(0, 1).
	PaddingTop(1)

var styleErrText = lipgloss.NewStyle().Width(62)

// ErrorBox renders an error message and an optional help text
func ErrorBox(errorString string, helpText string) string {
	rendered := styleErrBox.Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top, Emoji("❗ "),
			styleErrText.Render(fmt.Sprintf("Error: %s", errorString)),
		),
	)
	if helpText != "" {
		rendered = lipgloss.JoinVertical(
			lipgloss.Left,
			rendered,
			styleHelpBox.Render(fmt.Sprintf("%sHelp: %s\n", Emoji("❔ "), helpText)),
		)
	}

	return rendered
}
