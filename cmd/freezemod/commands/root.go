// Package commands provides the CLI commands for the freezemod tool.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"martianoff/freezemod/internal/config"
	"martianoff/freezemod/internal/freezer"
)

// app carries the state shared by one command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
}

// NewRootCmd builds the freezemod command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "freezemod",
		Short: "Regenerate the frozen module tables of a source tree",
		Long: TitleStyle.Render("freezemod") + SubtitleStyle.Render(" - frozen module registry compiler") + `

freezemod expands a manifest of module specs into the tables of frozen
modules compiled into an interpreter, and splices them into the marker
regions of the target file. The target is rewritten atomically and only
when its content changes.

` + SubtitleStyle.Render("Examples:") + `
  freezemod --root-dir . --frozen-c Python/frozen.c
  freezemod list
  freezemod summary --json
  freezemod sum --output frozen.sum
  freezemod verify`,
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
		RunE:              a.runRegen,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyRootDir, "", "source tree root (default: enclosing git worktree)")
	flags.String(config.KeyFrozenC, "", "path to the target file, e.g. Python/frozen.c")
	flags.Bool(config.KeyFrozenModules, false, "embed frozen module bytes in the tables")
	flags.String(config.KeyManifest, "", "TOML or CUE manifest of module specs (default: built-in list)")
	flags.Bool(config.KeyStrict, false, "fail when an inferred source file is missing")
	flags.BoolP(config.KeyVerbose, "v", false, "enable debug logging")
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./freezemod.toml)")

	rootCmd.AddCommand(
		a.newRegenCmd(),
		a.newListCmd(),
		a.newSummaryCmd(),
		a.newSumCmd(),
		a.newVerifyCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		NewRootCmd(),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges flags, environment and the config file, then sets up
// logging for the command about to run.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "freezemod",
		Level:  level,
	})
	return nil
}

func (a *app) newFreezer() (*freezer.Freezer, error) {
	return freezer.New(a.cfg, a.logger)
}
