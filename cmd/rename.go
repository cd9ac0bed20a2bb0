package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photoname/internal"
	"photoname/internal/library"
)

var dryRunFlag bool

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Move every dated file to its planned name",
	Long: `Move every dated file, and its .aae sidecar, to

  <dest>/<source>/<date> <source> <counter>.<ext>

Files already at their name are left alone, duplicates of the file at the
destination are skipped and clashes with different content get a _2, _3...
suffix. Every action is journaled under <dest>/.photoname/sessions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		lib, dest, err := plannedLibrary(e)
		if err != nil {
			return err
		}
		return runRename(cmd, e, lib, dest)
	},
}

func runRename(cmd *cobra.Command, e *env, lib library.Library, dest string) error {
	opts := internal.ApplyOptions{
		DryRun: dryRunFlag,
		Out:    os.Stdout,
		Errors: internal.NewErrorStats(e.cfg.MaxErrors),
		Log:    e.log,
	}
	defer reportErrors(opts.Errors)

	if dryRunFlag {
		fmt.Println("Dry run mode: no files will be moved")
	} else {
		session, err := internal.NewRenameSession(dest)
		if err != nil {
			return err
		}
		defer session.Close()
		opts.Session = session
		e.log.With("session", session.ID).Infof("renaming %d files under %s", len(lib.Planned()), dest)
	}

	stats, err := internal.ApplyPlan(cmd.Context(), lib, opts)
	if !dryRunFlag {
		lib.Sort()
		lib.AttachEstimates()
		if serr := library.Save(e.cfg.StoreFile, lib); serr != nil && err == nil {
			err = serr
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n%d planned: %d moved (%d suffixed), %d unchanged, %d duplicates skipped, %d sidecars, %d errors\n",
		stats.Planned, stats.Moved, stats.Suffixed, stats.Unchanged, stats.SkippedDuplicate, stats.Sidecars, stats.Errors)
	return opts.Errors.AsError()
}

func init() {
	renameCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show the moves without doing them")

	rootCmd.AddCommand(renameCmd)
}
