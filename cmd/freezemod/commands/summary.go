package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"martianoff/freezemod/internal/sum"
)

func (a *app) newSummaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a summary record for every frozen module",
		Long: `Print, for every exposed module, its package flag, its source (<name>
for library modules, otherwise the path relative to the root), the frozen
artifact it is built into and the SHA-256 of that artifact.

The artifacts must already exist.

Examples:
  freezemod summary
  freezemod summary --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummary(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as a JSON array")
	return cmd
}

func (a *app) runSummary(cmd *cobra.Command, asJSON bool) error {
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

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	rows := [][]string{{"MODULE", "PKG", "SOURCE", "FROZEN", "CHECKSUM"}}
	for _, r := range records {
		rows = append(rows, []string{r.Module, strconv.FormatBool(r.IsPkg), r.Source, r.Frozen, r.Checksum})
	}
	fmt.Fprint(out, renderTable(rows, nil))
	return nil
}
