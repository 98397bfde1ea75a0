package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/appicon/internals/catalog"
	"github.com/minepkg/appicon/internals/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var listFormats = []string{"table", "json", "yaml"}

var list = &listRunner{}

var listCmd = commands.New(&cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Lists the icon sets of the asset catalog",
	Args:    cobra.NoArgs,
}, list)

func init() {
	listCmd.Flags().StringVarP(&list.format, "format", "o", "table", "output format: "+strings.Join(listFormats, ", "))
}

type listRunner struct {
	format string
}

func (l *listRunner) RunE(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	cat, err := openCatalog(resolve(wd, viper.GetString("assetsDir")))
	if err != nil {
		return err
	}
	sets, err := cat.IconSets()
	if err != nil {
		return err
	}

	summaries := make([]*catalog.Summary, len(sets))
	for i, set := range sets {
		summaries[i] = set.Summary()
	}

	return writeSummaries(cmd.OutOrStdout(), l.format, summaries)
}

func writeSummaries(out io.Writer, format string, summaries []*catalog.Summary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		if len(summaries) == 0 {
			fmt.Fprintln(out, gchalk.Gray("No icon sets found"))
			return nil
		}
		fmt.Fprint(out, summaryTable(summaries).render())
		return nil
	}

	return &commands.CliError{
		Text:        fmt.Sprintf("unknown format %q", format),
		Suggestions: []string{"appicon list --format " + strings.Join(listFormats, "|")},
	}
}

func summaryTable(summaries []*catalog.Summary) *table {
	t := &table{}
	t.addColumn("Icon set", 30)
	t.addColumn("Images", 8)
	t.addColumn("Present", 8)
	t.addColumn("Idioms", 40)

	for _, s := range summaries {
		if s.Error != "" {
			row := t.addRow(s.Name, "-", "-", s.Error)
			row.Style = lipgloss.NewStyle().Faint(true)
			continue
		}
		row := t.addRow(
			s.Name,
			fmt.Sprint(s.Images),
			fmt.Sprint(s.Present),
			strings.Join(s.Idioms, ", "),
		)
		if s.Present < s.Images {
			row.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F45"))
		}
	}
	return t
}
