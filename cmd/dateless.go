package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var datelessCmd = &cobra.Command{
	Use:   "dateless",
	Short: "List the files without a usable date",
	Long: `List every record without a timestamp, with its index and the dates
estimated from its neighbors. Use the index with ` + "`photoname fixdate`" + `.`,
	Args: cobra.NoArgs,
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

		idx := lib.Dateless()
		if len(idx) == 0 {
			fmt.Println("Every file has a date")
			return nil
		}
		for _, i := range idx {
			r := lib[i]
			left, right := r.Estimates()
			fmt.Printf("%5d  %s\n", i, r.Path)
			fmt.Printf("       source: %s\n", r.Source)
			if left != "" {
				fmt.Printf("       left:   %s\n", left)
			}
			if right != "" {
				fmt.Printf("       right:  %s\n", right)
			}
		}
		fmt.Printf("\n%d of %d files without date\n", len(idx), len(lib))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datelessCmd)
}
