package cmdlog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/jwalton/gchalk"
)

// Logger loggs pretty stuff to the console
type Logger struct {
	Out     io.Writer
	Verbose bool

	emojis    bool
	indention int
}

// helper for indention
func (l *Logger) println(a string) {
	fmt.Fprintln(l.Out, strings.Repeat(" ", l.indention)+a)
}

func (l *Logger) sprintEmoji(e string) string {
	if l.emojis {
		return e + " "
	}
	return ""
}

// Headline prints a bold cyan line
func (l *Logger) Headline(s string) {
	fmt.Fprintln(l.Out, gchalk.WithCyan().Bold(s))
}

// Info prints a "normal" line
func (l *Logger) Info(s string) {
	l.println(s)
}

// Debug prints a gray line, but only in verbose mode
func (l *Logger) Debug(s string) {
	if l.Verbose {
		l.println(gchalk.Gray(s))
	}
}

// Warn will print a warning
func (l *Logger) Warn(s string) {
	fmt.Fprintln(l.Out, l.sprintEmoji("⚠️ ")+gchalk.WithYellow().Bold(s))
}

// Success prints a green line
func (l *Logger) Success(s string) {
	fmt.Fprintln(l.Out, l.sprintEmoji("✅")+gchalk.WithGreen().Bold(s))
}

// NewTask returns a new Task logger with end steps
func (l *Logger) NewTask(end int) *Task {
	logger := *l
	logger.indention = 2
	return &Task{Logger: &logger, end: end}
}

// New returns a new Logger writing to stdout
func New() *Logger {
	emojis := runtime.GOOS != "windows"

	// no emojis or color for CI
	if os.Getenv("CI") != "" {
		emojis = false
		gchalk.SetLevel(gchalk.LevelNone)
	}
	return &Logger{Out: os.Stdout, emojis: emojis}
}

// DisableColors turns off all colored output
func (l *Logger) DisableColors() {
	gchalk.SetLevel(gchalk.LevelNone)
}

// Task logs but with progress. Steps may be called from multiple goroutines
type Task struct {
	*Logger
	mu      sync.Mutex
	current int
	end     int
}

// Step prints progress
func (t *Task) Step(e string, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	text := gchalk.Cyan(fmt.Sprintf(
		"[%d / %d] %s%s",
		t.current,
		t.end,
		t.sprintEmoji(e),
		s,
	))

	// step lines are not indented
	fmt.Fprintln(t.Out, text)
}

// Current returns the number of finished steps
func (t *Task) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
