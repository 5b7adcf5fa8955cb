package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newRegenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regen",
		Short: "Regenerate the target file (same as running freezemod without a command)",
		Long: `Resolve the manifest and rewrite the six marker regions of the target
file: includes, extern declarations, the bootstrap, stdlib and test tables,
and the alias table. Nothing is written when any region is missing or the
content is already up to date.

Examples:
  freezemod regen --frozen-c Python/frozen.c
  freezemod regen --frozen-c Python/frozen.c --frozen-modules`,
		Args: cobra.NoArgs,
		RunE: a.runRegen,
	}
}

func (a *app) runRegen(cmd *cobra.Command, _ []string) error {
	f, err := a.newFreezer()
	if err != nil {
		return err
	}

	res, err := f.Regen()
	if err != nil {
		return err
	}

	status := SuccessStyle.Render("updated")
	if !res.Changed {
		status = SubtitleStyle.Render("unchanged")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d modules, %d sources)\n",
		status, res.Target, len(res.Modules), res.Registry.Len())
	return nil
}
