// Package commands glues cobra commands to runners and renders their errors
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command is a cobra command backed by a Runner
type Command struct {
	*cobra.Command
	runner Runner
}

// Runner runs a command
type Runner interface {
	RunE(cmd *cobra.Command, args []string) error
}

// New wires run into cmd. Errors returned by the runner are printed in an error box
// and exit the process with code 1.
func New(cmd *cobra.Command, run Runner) *Command {
	build := &Command{
		cmd,
		run,
	}
	build.Command.Run = func(cmd *cobra.Command, args []string) {
		err := run.RunE(cmd, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, Render(err))
			// errors from github.com/pkg/errors print their stack trace with %+v
			if viper.GetBool("verboseLogging") {
				fmt.Fprintf(os.Stderr, "%+v\n", err)
			}
			os.Exit(1)
		}
	}

	return build
}

// Render returns the text that is printed for err
func Render(err error) string {
	var asCliErr *CliError
	if errors.As(err, &asCliErr) {
		return asCliErr.RichError() + "\n"
	}
	return ErrorBox(err.Error(), "")
}
