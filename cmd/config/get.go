package config

import (
	"fmt"
	"strings"

	"github.com/minepkg/appicon/internals/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stoewer/go-strcase"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "get <key>",
		Short: "Gets a global config value",
		Args:  cobra.ExactArgs(1),
	}, &getRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type getRunner struct{}

func (i *getRunner) RunE(cmd *cobra.Command, args []string) error {
	entry, err := lookup(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", entry.key, viper.Get(entry.key))
	return nil
}

// lookup accepts config keys as well as flag names like "non-interactive"
func lookup(key string) (configEntry, error) {
	entry, ok := config[strings.ToLower(strcase.LowerCamelCase(key))]
	if !ok {
		return entry, &commands.CliError{
			Text:        fmt.Sprintf("config key %q does not exist", key),
			Suggestions: []string{"appicon config list"},
		}
	}
	return entry, nil
}
