// Package config contains the commands managing the global config file
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	configKindString = iota
	configKindBool
	configKindInt
)

type configEntry struct {
	// key is the viper key. Viper keys are case insensitive, the name is used for display
	key  string
	kind int
	// validate is run on the raw value before it is saved
	validate func(string) error
}

var config = map[string]configEntry{
	"assetsdir":      {key: "assetsDir", kind: configKindString},
	"interpolator":   {key: "interpolator", kind: configKindString, validate: validInterpolator},
	"compression":    {key: "compression", kind: configKindString, validate: validCompression},
	"concurrency":    {key: "concurrency", kind: configKindInt},
	"noninteractive": {key: "nonInteractive", kind: configKindBool},
	"nocolor":        {key: "noColor", kind: configKindBool},
	"verboselogging": {key: "verboseLogging", kind: configKindBool},
}

// SubCmd is the "config" command
var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}

// Path returns the default location of the config file
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "appicon", "config.toml"), nil
}
