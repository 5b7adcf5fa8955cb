package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/freezemod/freezeerr"
	"martianoff/freezemod/internal/config"
	"martianoff/freezemod/internal/sum"
)

// ErrVerifyFailed is returned when any artifact is stale or unrecorded.
var ErrVerifyFailed = errors.New("verification failed")

func (a *app) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify frozen artifacts against frozen.sum",
		Long: `Re-hash the frozen artifact of every exposed module and compare it with
the checksum recorded in the sum file. Exits non-zero if any artifact
changed, is missing, or has no recorded checksum.

Examples:
  freezemod verify
  freezemod verify --sum build/frozen.sum`,
		Args: cobra.NoArgs,
		RunE: a.runVerify,
	}
	cmd.Flags().String(config.KeySumFile, config.DefaultSumFile, "path of the sum file")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, _ []string) error {
	file, err := sum.ParseFile(a.cfg.SumFile)
	if err != nil {
		return err
	}

	f, err := a.newFreezer()
	if err != nil {
		return err
	}
	res, err := f.Resolve()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	verr := sum.Verify(file, res.Modules)
	if verr == nil {
		fmt.Fprintf(out, "%s %d modules match %s\n", SuccessStyle.Render("OK"), len(res.Modules), a.cfg.SumFile)
		return nil
	}

	var multi *freezeerr.MultiError
	if !errors.As(verr, &multi) {
		return verr
	}
	for _, e := range multi.Errors {
		var mismatch *sum.HashMismatchError
		var missing *sum.MissingEntryError
		switch {
		case errors.As(e, &mismatch):
			fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("FAILED:"), mismatch.Module)
			fmt.Fprintf(out, "  Expected: %s\n", mismatch.Expected)
			fmt.Fprintf(out, "  Actual:   %s\n", mismatch.Actual)
		case errors.As(e, &missing):
			fmt.Fprintf(out, "%s %s (not in %s)\n", ErrorStyle.Render("MISSING:"), missing.Module, a.cfg.SumFile)
		default:
			fmt.Fprintf(out, "%s %v\n", ErrorStyle.Render("ERROR:"), e)
		}
	}
	fmt.Fprintf(out, "\n%d of %d modules failed verification\n", len(multi.Errors), len(res.Modules))
	return ErrVerifyFailed
}
