package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime"

	"github.com/minepkg/appicon/cmd/config"
	"github.com/minepkg/appicon/internals/catalog"
	"github.com/minepkg/appicon/internals/cmdlog"
	"github.com/minepkg/appicon/internals/commands"
	"github.com/minepkg/appicon/internals/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set by main
	Version = "dev"
	// Commit is set by main
	Commit = ""
)

var logger = cmdlog.New()

var cfgFile string

var generate = &generateRunner{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = commands.New(&cobra.Command{
	Use:   "appicon <source-image>",
	Short: "Regenerates the images of an Xcode app icon set",
	Long: `Regenerates the images of an Xcode app icon set from a single source image.

Every entry in the Contents.json of the selected .appiconset is rendered from the
source image at its size and scale, and the manifest is updated to reference the
new files.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSourceImage,

	Example: `
  appicon icon.png
  appicon --set AppIcon icon.png
  appicon --assets ios/Runner/Assets.xcassets --non-interactive icon.png`,
}, generate)

var completionCmd = &cobra.Command{
	Use:   "completion",
	Args:  cobra.MaximumNArgs(1),
	Short: "Output shell completion code for bash",
	Long: `To load completion run

. <(appicon completion)

You can add that line to your ~/.bashrc or ~/.profile to
persist completion in your shell.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenBashCompletion(os.Stdout)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	if Commit != "" {
		rootCmd.Version += " (" + Commit + ")"
	}

	// errors of runners are rendered by commands.New, these are flag and argument errors
	rootCmd.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, commands.Render(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	viper.SetDefault("assetsDir", catalog.DefaultRoot)
	viper.SetDefault("interpolator", "catmullrom")
	viper.SetDefault("compression", "default")
	viper.SetDefault("concurrency", runtime.NumCPU())

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/appicon/config.toml)")
	flags.Bool("no-color", false, "disable color output")
	flags.BoolP("verbose", "v", false, "print every written image and stack traces on errors")
	flags.Bool("non-interactive", false, "never prompt. Fails if the icon set can not be chosen without asking")
	flags.String("assets", catalog.DefaultRoot, "path to the asset catalog")

	viper.BindPFlag("noColor", flags.Lookup("no-color"))
	viper.BindPFlag("verboseLogging", flags.Lookup("verbose"))
	viper.BindPFlag("nonInteractive", flags.Lookup("non-interactive"))
	viper.BindPFlag("assetsDir", flags.Lookup("assets"))

	// Generate flags
	local := rootCmd.Flags()
	local.StringVarP(&generate.set, "set", "s", "", "name of the icon set to regenerate (skips the prompt)")
	local.String("interpolator", "catmullrom", "scaling algorithm: nearest, approxbilinear, bilinear or catmullrom")
	local.String("compression", "default", "png compression: default, none, speed or best")
	local.IntP("concurrency", "j", runtime.NumCPU(), "number of images rendered in parallel")

	viper.BindPFlag("interpolator", local.Lookup("interpolator"))
	viper.BindPFlag("compression", local.Lookup("compression"))
	viper.BindPFlag("concurrency", local.Lookup("concurrency"))

	rootCmd.RegisterFlagCompletionFunc("set", completeIconSets)
	rootCmd.RegisterFlagCompletionFunc("interpolator", completeFrom(mapKeys(render.Interpolators)))
	rootCmd.RegisterFlagCompletionFunc("compression", completeFrom(mapKeys(render.CompressionLevels)))

	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(listCmd.Command)
	rootCmd.AddCommand(config.SubCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("appicon")
	viper.AutomaticEnv() // read in environment variables that match

	if cfgFile == "" {
		path, err := config.Path()
		if err != nil {
			logger.Warn(err.Error())
		}
		cfgFile = path
	}

	var readErr error
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		readErr = viper.ReadInConfig()
	}

	if viper.GetBool("noColor") || os.Getenv("CI") != "" {
		logger.DisableColors()
		commands.EmojiEnabled = false
	}
	logger.Verbose = viper.GetBool("verboseLogging")

	// a missing config file is fine
	switch {
	case cfgFile == "":
	case readErr == nil:
		logger.Debug("Using config file: " + viper.ConfigFileUsed())
	case !errors.Is(readErr, fs.ErrNotExist):
		logger.Warn("Could not read config file: " + readErr.Error())
	}
}
