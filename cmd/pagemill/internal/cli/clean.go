package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sitecmd "github.com/pagemill/pagemill/internal/commands/site"
)

func (a *App) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the generated output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClean(cmd)
		},
	}
}

func (a *App) runClean(cmd *cobra.Command) error {
	set, err := a.handlers()
	if err != nil {
		return err
	}
	if err := set.Clean.Execute(cmd.Context(), sitecmd.CleanSiteCommand{}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", a.cfg.Build.OutputDir)
	return nil
}
