package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photoname/internal"
	"photoname/internal/library"
	"photoname/internal/tags"
)

var tagsOnlyFlag bool

var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Extract the metadata of a media folder and build the library",
	Long: `Walk the folder (default: the configured library), extract the tags of
every media file into the tag file and build the record store from them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		folder := e.cfg.Library
		if len(args) == 1 {
			folder = args[0]
		}
		if folder == "" {
			return fmt.Errorf("missing folder and no library configured")
		}
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("folder does not exist or is not a directory: %s", folder)
		}

		files, err := internal.ScanFiles(folder, e.cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d media files\n", len(files))

		p := e.pipeline(nil)
		ex := p.OpenExtractor()
		defer ex.Close()
		defer reportErrors(p.Errors)

		dicts, err := p.Extract(cmd.Context(), ex, files)
		if err != nil {
			return err
		}
		if err := tags.Store(e.cfg.TagsFile, dicts); err != nil {
			return err
		}
		fmt.Printf("Extracted %d files with %s into %s\n", len(dicts), ex.Name(), e.cfg.TagsFile)

		if tagsOnlyFlag {
			return nil
		}
		return buildAndSave(p, dicts)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the library from the tag file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		dicts, err := tags.Load(e.cfg.TagsFile)
		if err != nil {
			return err
		}

		p := e.pipeline(nil)
		defer reportErrors(p.Errors)
		return buildAndSave(p, dicts)
	},
}

func buildAndSave(p *internal.Pipeline, dicts []tags.Dict) error {
	lib, err := p.Build(dicts)
	if err != nil {
		return err
	}
	if err := library.Save(p.Config.StoreFile, lib); err != nil {
		return err
	}
	fmt.Printf("Library: %d records, %d without date -> %s\n", len(lib), len(lib.Dateless()), p.Config.StoreFile)
	return p.Errors.AsError()
}

func init() {
	scanCmd.Flags().BoolVar(&tagsOnlyFlag, "tags-only", false, "Only write the tag file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(buildCmd)
}
