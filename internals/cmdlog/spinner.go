package cmdlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// MaybeSpinner is a spinner on terminals and plain log lines everywhere else
type MaybeSpinner struct {
	Spin    bool
	Spinner *spinner.Spinner
	out     io.Writer
}

// Start might start the spinner
func (m *MaybeSpinner) Start(msg string) {
	m.Spinner.Suffix = " " + msg
	if m.Spin {
		m.Spinner.Start()
	} else {
		fmt.Fprintln(m.out, msg)
	}
}

// Update will update the spinner text. Without a spinner nothing is printed
func (m *MaybeSpinner) Update(msg string) {
	m.Spinner.Lock()
	m.Spinner.Suffix = " " + msg
	m.Spinner.Unlock()
}

// Stop will stop the spinner
func (m *MaybeSpinner) Stop() {
	if m.Spin {
		m.Spinner.Stop()
	}
}

// NewMaybeSpinner returns a MaybeSpinner that spins if stdout is a terminal and spin is true
func NewMaybeSpinner(spin bool) *MaybeSpinner {
	spin = spin && isatty.IsTerminal(os.Stdout.Fd())
	s := &MaybeSpinner{
		Spin:    spin,
		Spinner: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stdout)),
		out:     os.Stdout,
	}
	s.Spinner.Prefix = " "
	return s
}
