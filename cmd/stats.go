package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"photoname/internal"
)

var formatFlag string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the library",
	Args:  cobra.NoArgs,
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
		return internal.DisplaySummary(os.Stdout, internal.Summarize(lib), e.cfg.StoreFile, formatFlag)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("photoname " + Version)
	},
}

func init() {
	statsCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table or json")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
