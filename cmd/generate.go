package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/minepkg/appicon/internals/catalog"
	"github.com/minepkg/appicon/internals/cmdlog"
	"github.com/minepkg/appicon/internals/commands"
	"github.com/minepkg/appicon/internals/iconset"
	"github.com/minepkg/appicon/internals/render"
	"github.com/minepkg/appicon/internals/utils"
	"github.com/minepkg/appicon/pkg/contents"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type generateRunner struct {
	set string
}

func (g *generateRunner) RunE(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	source := resolve(wd, args[0])
	assets := resolve(wd, viper.GetString("assetsDir"))

	renderer, err := rendererFromConfig()
	if err != nil {
		return err
	}

	cat, err := openCatalog(assets)
	if errors.Is(err, catalog.ErrAssetsRootNotFound) {
		// reported, but not a failure of the command
		fmt.Fprintln(cmd.ErrOrStderr(), commands.Render(err))
		return nil
	}
	if err != nil {
		return err
	}

	set, err := g.selectIconSet(cat)
	if errors.Is(err, utils.ErrAborted) {
		logger.Info("Aborted. Nothing was changed")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Headline(fmt.Sprintf("Regenerating %s", set.Name))
	logger.Debug("source: " + source)
	logger.Debug("manifest: " + set.ManifestPath())

	var (
		spinner = cmdlog.NewMaybeSpinner(!logger.Verbose)
		task    *cmdlog.Task
	)
	res, err := iconset.Generate(cmd.Context(), iconset.Options{
		SourcePath:  source,
		AssetDir:    set.Dir,
		Renderer:    renderer,
		Concurrency: viper.GetInt("concurrency"),
		OnPlanned: func(renditions []iconset.Rendition) {
			task = logger.NewTask(len(renditions))
			spinner.Start(fmt.Sprintf("Rendering %d images …", len(renditions)))
		},
		OnRendered: func(r iconset.Rendition) {
			if logger.Verbose {
				task.Step("🖼", fmt.Sprintf(
					"%s %s",
					r.Filename,
					gchalk.Gray(fmt.Sprintf("%d×%d, %s", r.Width, r.Height, humanize.Bytes(uint64(r.Size)))),
				))
				return
			}
			spinner.Update(fmt.Sprintf("Rendering images … %s", r.Filename))
		},
	})
	spinner.Stop()
	if err != nil {
		return describeError(err, set)
	}

	logger.Success(fmt.Sprintf(
		"Wrote %d images (%s) and updated %d of %d entries in %s",
		len(res.Renditions),
		humanize.Bytes(res.Written()),
		res.Changed,
		res.Images,
		contents.Filename,
	))
	return nil
}

// selectIconSet returns the set given by --set or asks the user to pick one
func (g *generateRunner) selectIconSet(cat *catalog.Catalog) (*catalog.IconSet, error) {
	sets, err := cat.IconSets()
	if err != nil {
		return nil, err
	}
	names := catalog.Names(sets)

	if g.set != "" {
		set, err := cat.IconSet(g.set)
		if errors.Is(err, catalog.ErrIconSetNotFound) {
			return nil, &commands.CliError{
				Text:        fmt.Sprintf("There is no icon set named %q in %s", g.set, cat.Root),
				Suggestions: setSuggestions(names),
				Err:         err,
			}
		}
		return set, err
	}

	switch {
	case len(sets) == 0:
		return nil, &commands.CliError{
			Text: fmt.Sprintf("%s contains no %s directory", filepath.Base(cat.Root), catalog.IconSetExt),
			Help: "Add an App Icon to the asset catalog in Xcode first",
		}
	case !interactive() && len(sets) == 1:
		return sets[0], nil
	case !interactive():
		return nil, &commands.CliError{
			Text:        "Multiple icon sets found. Choose one with --set when running non-interactive",
			Suggestions: setSuggestions(names),
		}
	}

	selected, err := utils.SelectPrompt(&promptui.Select{
		Label: "Select assets",
		Items: names,
	})
	if err != nil {
		return nil, err
	}
	return cat.IconSet(selected)
}

func interactive() bool {
	return !viper.GetBool("nonInteractive") && isatty.IsTerminal(os.Stdin.Fd())
}

func setSuggestions(names []string) []string {
	suggestions := make([]string, len(names))
	for i, name := range names {
		suggestions[i] = "appicon --set " + strings.TrimSuffix(name, catalog.IconSetExt) + " <source-image>"
	}
	return suggestions
}

func openCatalog(root string) (*catalog.Catalog, error) {
	cat, err := catalog.Open(root)
	if errors.Is(err, catalog.ErrAssetsRootNotFound) {
		return nil, &commands.CliError{
			Text: filepath.Base(root) + " not found",
			Help: fmt.Sprintf("Run appicon in the directory containing %s or point to it with --assets", catalog.DefaultRoot),
			Err:  err,
		}
	}
	return cat, err
}

func rendererFromConfig() (*render.Scaler, error) {
	interpolator, err := render.ParseInterpolator(viper.GetString("interpolator"))
	if err != nil {
		return nil, &commands.CliError{
			Text:        err.Error(),
			Suggestions: mapKeys(render.Interpolators),
			Err:         err,
		}
	}
	compression, err := render.ParseCompression(viper.GetString("compression"))
	if err != nil {
		return nil, &commands.CliError{
			Text:        err.Error(),
			Suggestions: mapKeys(render.CompressionLevels),
			Err:         err,
		}
	}
	return &render.Scaler{Interpolator: interpolator, Compression: compression}, nil
}

// describeError turns errors a user can fix into readable ones
func describeError(err error, set *catalog.IconSet) error {
	switch iconset.KindOf(err) {
	case iconset.ManifestNotFound:
		return &commands.CliError{
			Text: fmt.Sprintf("%s not found in %s", contents.Filename, set.Name),
			Help: "The icon set needs a manifest listing the wanted sizes. Recreate it in Xcode",
			Err:  err,
		}
	case iconset.InvalidImageSpec:
		return &commands.CliError{
			Text: fmt.Sprintf("%s contains an invalid image entry: %s", set.Name, err),
			Err:  err,
		}
	}
	return err
}

func resolve(wd string, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(wd, path)
}

// completeIconSets completes --set with the icon sets of the asset catalog
func completeIconSets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	cat, err := catalog.Open(resolve(wd, viper.GetString("assetsDir")))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	sets, err := cat.IconSets()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	names := make([]string, 0, len(sets))
	for _, set := range sets {
		name := strings.TrimSuffix(set.Name, catalog.IconSetExt)
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeSourceImage(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}, cobra.ShellCompDirectiveFilterFileExt
}

func completeFrom(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
