package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"photoname/internal"
	"photoname/internal/library"
)

var destFlag string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the new name of every dated file",
	Args:  cobra.NoArgs,
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

		prevDir := ""
		for _, r := range lib.Planned() {
			if dir := filepath.Dir(r.ProposedName); dir != prevDir {
				fmt.Printf("%s/\n", dir)
				prevDir = dir
			}
			fmt.Printf("  %s -> %s\n", r.Path, filepath.Base(r.ProposedName))
		}
		fmt.Printf("\n%d files planned under %s, %d without date skipped\n", len(lib.Planned()), dest, len(lib.Dateless()))
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <dir>",
	Short: "Mirror the plan as links in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		lib, _, err := plannedLibrary(e)
		if err != nil {
			return err
		}
		stats, err := internal.CreatePreview(lib, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Preview in %s: %d hard links, %d symlinks, %d without date\n", args[0], stats.Hardlinks, stats.Symlinks, stats.Undated)
		return nil
	},
}

// plannedLibrary loads the library and plans it under the destination.
func plannedLibrary(e *env) (library.Library, string, error) {
	lib, err := e.loadLibrary()
	if err != nil {
		return nil, "", err
	}
	dest, err := e.destination(destFlag)
	if err != nil {
		return nil, "", err
	}
	library.Plan(lib, dest)
	return lib, dest, nil
}

func init() {
	for _, c := range []*cobra.Command{planCmd, previewCmd, renameCmd} {
		c.Flags().StringVar(&destFlag, "dest", "", "Destination root (default: destination, then library from the config)")
	}

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(previewCmd)
}
