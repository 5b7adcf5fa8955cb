package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/freezemod/internal/sum"
)

func (a *app) newSumCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sum",
		Short: "Write the checksums of all frozen artifacts",
		Long: `Hash the frozen artifact of every exposed module and write the result
to a frozen.sum file, one "module artifact sha256" line per module, sorted
by module name. Use 'freezemod verify' to detect stale artifacts later.

Examples:
  freezemod sum
  freezemod sum --output build/frozen.sum`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSum(cmd, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "path of the sum file (default: --sum or frozen.sum)")
	return cmd
}

func (a *app) runSum(cmd *cobra.Command, output string) error {
	if output == "" {
		output = a.cfg.SumFile
	}

	f, err := a.newFreezer()
	if err != nil {
		return err
	}
	res, err := f.Resolve()
	if err != nil {
		return err
	}
	records, err := sum.Summaries(res.Modules, f.Root())
	if err != nil {
		return fmt.Errorf("summarizing modules: %w", err)
	}

	file := sum.FromRecords(records)
	if err := sum.WriteFile(file, output); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	a.logger.Debug("Wrote checksums", "file", output, "entries", len(file.Entries))

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d entries)\n", SuccessStyle.Render("wrote"), output, len(file.Entries))
	return nil
}
