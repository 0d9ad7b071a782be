package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	sitecmd "github.com/pagemill/pagemill/internal/commands/site"
	"github.com/pagemill/pagemill/internal/generator"
)

func (a *App) buildCommand() *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "build [path ...]",
		Short: "Render the content tree into the output directory",
		Long: `Build loads every post and tab under the content source, renders Markdown
to HTML, and writes pages, listings, feeds, and assets to the output
directory. Positional paths narrow the build to the named source files.

Documents that fail to parse are reported and skipped; the rest of the
site still builds and the command exits non-zero.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args, dryRun, force)
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().Bool("clean", false, "wipe the output directory before building")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the build without writing artifacts")
	cmd.Flags().BoolVar(&force, "force", false, "rebuild artifacts the manifest reports unchanged")
	return cmd
}

func (a *App) diffCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "diff [path ...]",
		Short: "Report what a build would change without writing artifacts",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd, args, force)
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "report artifacts as changed even when the manifest matches")
	return cmd
}

// addPipelineFlags registers the build knobs shared by build and diff. The
// flags are bound to configuration keys in loadConfig, so file and
// environment values still apply when a flag is left unset.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("strict", false, "fail when content contains unterminated template tags")
	cmd.Flags().Bool("incremental", false, "skip artifacts whose sources are unchanged since the last build")
	cmd.Flags().Int("workers", 0, "parallel render workers (0 selects the CPU count)")
	cmd.Flags().String("base-url", "", "absolute base URL for permalinks and feeds")
	cmd.Flags().String("theme", "", "theme directory overriding the embedded default")
}

func (a *App) runBuild(cmd *cobra.Command, paths []string, dryRun, force bool) error {
	set, err := a.handlers()
	if err != nil {
		return err
	}

	var outcome *generator.BuildResult
	msg := sitecmd.BuildSiteCommand{
		Paths:  paths,
		Force:  force,
		DryRun: dryRun,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			outcome = env.Result
		},
	}

	err = set.Build.Execute(cmd.Context(), msg)
	printSummary(cmd, outcome)
	return err
}

func (a *App) runDiff(cmd *cobra.Command, paths []string, force bool) error {
	set, err := a.handlers()
	if err != nil {
		return err
	}

	var outcome *generator.BuildResult
	msg := sitecmd.DiffSiteCommand{
		Paths: paths,
		Force: force,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			outcome = env.Result
		},
	}

	err = set.Diff.Execute(cmd.Context(), msg)
	printSummary(cmd, outcome)
	return err
}

func printSummary(cmd *cobra.Command, result *generator.BuildResult) {
	if result == nil {
		return
	}

	verb := "built"
	if result.DryRun {
		verb = "planned"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d pages and %d assets from %d documents in %s\n",
		verb, result.PagesBuilt, result.AssetsBuilt, result.Documents, result.Duration.Round(time.Millisecond))
	if result.PagesSkipped > 0 || result.AssetsSkipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped %d pages and %d assets (unchanged)\n",
			result.PagesSkipped, result.AssetsSkipped)
	}

	for _, diag := range result.Diagnostics {
		if diag.Err == nil {
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", diag.Source, diag.Err)
	}
	if failed := len(result.Errors); failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d document(s) failed\n", failed)
	}
}
