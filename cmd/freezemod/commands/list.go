package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the resolved frozen modules",
		Long: `Resolve the manifest and print every exposed module in table order,
with the frozen id it is built from and the section it belongs to.
Aliases are highlighted.

Examples:
  freezemod list
  freezemod list --manifest frozen.cue`,
		Args: cobra.NoArgs,
		RunE: a.runList,
	}
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	f, err := a.newFreezer()
	if err != nil {
		return err
	}
	res, err := f.Resolve()
	if err != nil {
		return err
	}

	rows := [][]string{{"MODULE", "ID", "PKG", "ALIAS", "SECTION"}}
	for _, m := range res.Modules {
		rows = append(rows, []string{
			m.Name,
			m.Source.ID,
			strconv.FormatBool(m.IsPackage),
			strconv.FormatBool(m.IsAlias),
			m.Section,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderTable(rows, func(row, col int) lipgloss.Style {
		if col == 0 && res.Modules[row].IsAlias {
			return AliasStyle
		}
		return lipgloss.NewStyle()
	}))
	fmt.Fprintln(out, SubtitleStyle.Render(fmt.Sprintf("%d modules from %d sources", len(res.Modules), res.Registry.Len())))
	return nil
}
