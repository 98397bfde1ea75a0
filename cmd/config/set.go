package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/appicon/internals/commands"
	"github.com/minepkg/appicon/internals/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Sets a global config value",
		Args:  cobra.ExactArgs(2),
	}, &setRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type setRunner struct{}

func (i *setRunner) RunE(cmd *cobra.Command, args []string) error {
	entry, err := lookup(args[0])
	if err != nil {
		return err
	}
	newValue, err := entry.parse(args[1])
	if err != nil {
		return err
	}

	previousValue := viper.Get(entry.key)
	previousStringValue := fmt.Sprintf("%v", previousValue)
	if previousValue == nil {
		previousStringValue = "(unset)"
	}

	path := viper.ConfigFileUsed()
	if path == "" {
		if path, err = Path(); err != nil {
			return err
		}
	}
	if err := save(path, entry.key, newValue); err != nil {
		return err
	}
	viper.Set(entry.key, newValue)

	fmt.Fprintf(
		cmd.OutOrStdout(),
		"Changing config entry:\n  %s: %s → %v\n",
		entry.key,
		gchalk.Strikethrough(previousStringValue),
		gchalk.Bold(fmt.Sprintf("%v", newValue)),
	)
	return nil
}

func (e configEntry) parse(value string) (interface{}, error) {
	if e.validate != nil {
		if err := e.validate(value); err != nil {
			return nil, err
		}
	}

	switch e.kind {
	case configKindBool:
		return parseBool(value)
	case configKindString:
		return value, nil
	case configKindInt:
		num, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", value)
		}
		return num, nil
	}
	return nil, fmt.Errorf("what? uncovered config values type")
}

// save sets key in the config file at path. Only values in the file are written back,
// never defaults or flags of the current run.
func save(path string, key string, value interface{}) error {
	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	file.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return file.WriteConfigAs(path)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "ja", "on", "1":
		return true, nil
	case "false", "no", "nein", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value. Use \"true\" or \"false\"")
	}
}

func validInterpolator(s string) error {
	_, err := render.ParseInterpolator(s)
	return err
}

func validCompression(s string) error {
	_, err := render.ParseCompression(s)
	return err
}
