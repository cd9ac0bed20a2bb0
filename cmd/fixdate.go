package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"photoname/internal/extract"
	"photoname/internal/library"
)

var (
	pickFlag  string
	writeFlag bool
)

var fixdateCmd = &cobra.Command{
	Use:   "fixdate <index|path> [timestamp]",
	Short: "Set the date of a file",
	Long: `Set the timestamp of a record, either given explicitly in the canonical
form 2006-01-02T15:04:05-07:00 or picked from a neighbor estimate.

Without --write only the library is updated, and a later ` + "`photoname build`" + `
forgets the fix. With --write the date is written into the file with exiftool
and the record is rebuilt from the file.`,
	Args: cobra.RangeArgs(1, 2),
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

		ts := ""
		if len(args) == 2 {
			ts = args[1]
		}
		ts, err = chooseTimestamp(lib[i], ts, pickFlag)
		if err != nil {
			return err
		}

		if writeFlag {
			p := e.pipeline(nil)
			ex := p.OpenExtractor()
			defer ex.Close()
			w, ok := ex.(extract.TimestampWriter)
			if !ok {
				return fmt.Errorf("--write needs exiftool, but the %s extractor is in use", ex.Name())
			}
			path := lib[i].Path
			if err := w.WriteTimestamp(path, ts); err != nil {
				return err
			}
			if lib, err = p.Refresh(cmd.Context(), ex, lib, []string{path}); err != nil {
				return err
			}
			e.log.With("file", path).Infof("wrote %s", ts)
		} else {
			if err := lib[i].SetTimestamp(ts); err != nil {
				return err
			}
			lib.AttachEstimates()
		}

		if err := library.Save(e.cfg.StoreFile, lib); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", args[0], ts)
		return nil
	},
}

// chooseTimestamp returns ts, or the estimate named by pick when ts is empty.
func chooseTimestamp(r *library.Record, ts, pick string) (string, error) {
	if ts != "" && pick != "" {
		return "", fmt.Errorf("give either a timestamp or --pick, not both")
	}
	if ts != "" {
		return ts, nil
	}

	left, right := r.Estimates()
	switch pick {
	case "left":
		ts = left
	case "right":
		ts = right
	case "":
		return "", fmt.Errorf("missing timestamp or --pick")
	default:
		return "", fmt.Errorf("--pick must be left or right, got %q", pick)
	}
	if ts == "" {
		return "", fmt.Errorf("%s has no %s estimate", r.Path, pick)
	}
	return ts, nil
}

func init() {
	fixdateCmd.Flags().StringVar(&pickFlag, "pick", "", "Use the left or right neighbor estimate")
	fixdateCmd.Flags().BoolVar(&writeFlag, "write", false, "Write the date into the file with exiftool")

	rootCmd.AddCommand(fixdateCmd)
}
