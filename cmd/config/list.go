package config

import (
	"fmt"

	"github.com/minepkg/appicon/internals/commands"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "list",
		Short: "Prints the effective config as toml",
		Args:  cobra.NoArgs,
	}, &listRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type listRunner struct{}

func (l *listRunner) RunE(cmd *cobra.Command, args []string) error {
	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", file)
	}
	rendered, err := renderSettings(viper.AllSettings())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func renderSettings(settings map[string]interface{}) (string, error) {
	tree, err := toml.TreeFromMap(settings)
	if err != nil {
		return "", err
	}
	return tree.String(), nil
}
