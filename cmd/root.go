package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"photoname/internal"
	"photoname/internal/library"
)

// Version is overridden from the embedded VERSION file.
var Version = "dev"

var (
	configFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "photoname",
	Short: "Rename photos and videos by capture date and source device",
	Long: `photoname reads the metadata of a media folder, works out when and with
what each file was taken, and renames everything to

  <destination>/<source>/<date> <source> <counter>.<ext>

Files without a usable date are listed for review and left alone.`,
	SilenceUsage: true,
}

// Execute runs the command line. Commands stop their work when ctx ends.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ApplyVersion copies Version into the root command.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: <user config dir>/photoname/photoname.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	ApplyVersion()
}

// env is what every command needs: the config and a logger.
type env struct {
	cfg *internal.Config
	log *internal.Logger
}

func setup() (*env, error) {
	cfg, err := internal.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	logger, err := internal.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger}, nil
}

func (e *env) Close() error {
	return e.log.Close()
}

func (e *env) pipeline(metrics *internal.Metrics) *internal.Pipeline {
	return internal.NewPipeline(e.cfg, e.log, metrics)
}

// loadLibrary reads the record store.
func (e *env) loadLibrary() (library.Library, error) {
	lib, err := library.Load(e.cfg.StoreFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no library at %s - run `photoname scan` first", e.cfg.StoreFile)
	}
	return lib, err
}

// destination picks the flag value, then the configured destination, then
// the library folder.
func (e *env) destination(flag string) (string, error) {
	for _, d := range []string{flag, e.cfg.Destination, e.cfg.Library} {
		if d != "" {
			return d, nil
		}
	}
	return "", fmt.Errorf("missing --dest and no destination or library configured")
}

// lookup finds a record by index (as printed by `dateless`) or by path.
func lookup(lib library.Library, arg string) (int, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		if i < 0 || i >= len(lib) {
			return 0, fmt.Errorf("index %d out of range (0-%d)", i, len(lib)-1)
		}
		return i, nil
	}
	if i := lib.Index(arg); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("no record for %s", arg)
}

// reportErrors prints the error report when the run had any.
func reportErrors(stats *internal.ErrorStats) {
	if stats.Total > 0 {
		fmt.Fprint(os.Stderr, stats.GenerateReport())
	}
}
