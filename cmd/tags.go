package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"photoname/internal/tags"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Explore the extracted tags",
}

// loadTags reads the tag file of the current config.
func loadTags() ([]tags.Dict, error) {
	e, err := setup()
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return tags.Load(e.cfg.TagsFile)
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tag present in any file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dicts, err := loadTags()
		if err != nil {
			return err
		}
		for _, t := range tags.DistinctTags(dicts) {
			fmt.Println(t)
		}
		return nil
	},
}

var tagsValuesCmd = &cobra.Command{
	Use:   "values <tag>",
	Short: "List the values a tag takes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dicts, err := loadTags()
		if err != nil {
			return err
		}
		for _, v := range tags.DistinctValues(dicts, args[0]) {
			fmt.Println(v)
		}
		return nil
	},
}

var tagsFilesCmd = &cobra.Command{
	Use:   "files <tag> <value>",
	Short: "List the files where a tag has a value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dicts, err := loadTags()
		if err != nil {
			return err
		}
		for _, f := range tags.FilesWith(dicts, args[0], args[1]) {
			fmt.Println(f)
		}
		return nil
	},
}

var tagsTimeCmd = &cobra.Command{
	Use:   "time <index|path>",
	Short: "Show the date and time tags of a library record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		lib, err := e.loadLibrary()
		if err != nil {
			return err
		}
		i, err := lookup(lib, args[0])
		if err != nil {
			return err
		}

		r := lib[i]
		fmt.Println(r.Path)
		ts := r.Timestamp
		if ts == "" {
			ts = "(none)"
		}
		fmt.Printf("  timestamp: %s\n", ts)
		for _, entry := range tags.TimeTags(r.Tags) {
			fmt.Printf("  %-40s %s\n", entry.Key, entry.Value)
		}
		return nil
	},
}

func init() {
	tagsCmd.AddCommand(tagsListCmd, tagsValuesCmd, tagsFilesCmd, tagsTimeCmd)
	rootCmd.AddCommand(tagsCmd)
}
