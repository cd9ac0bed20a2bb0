package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"photoname/internal"
	"photoname/internal/extract"
	"photoname/internal/library"
	"photoname/internal/sidecar"
)

var (
	metricsAddrFlag string
	settleFlag      time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Keep the library up to date while files change",
	Long: `Watch the folder (default: the configured library) and re-extract media
files as they are added or changed. Removed files leave the library. The
record store is saved after every batch of changes.`,
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

		lib, err := library.Load(e.cfg.StoreFile)
		if errors.Is(err, fs.ErrNotExist) {
			lib = library.Library{}
		} else if err != nil {
			return err
		}

		metrics := internal.NewMetrics()
		metrics.SetLibrary(lib)
		addr := metricsAddrFlag
		if addr == "" {
			addr = e.cfg.Metrics.Addr
		}
		if addr != "" {
			srv := serveMetrics(cmd.Context(), e.log, addr, metrics)
			defer srv.Close()
		}

		p := e.pipeline(metrics)
		ex := p.OpenExtractor()
		defer ex.Close()

		w, err := internal.NewWatcher([]string{folder}, e.cfg.WatchedFile)
		if err != nil {
			return err
		}
		defer w.Close()

		e.log.Infof("watching %s with %d records", folder, len(lib))
		return watchLoop(cmd.Context(), e, p, ex, w, lib)
	},
}

// watchLoop collects events until nothing happens for settleFlag, then
// applies them as one batch.
func watchLoop(ctx context.Context, e *env, p *internal.Pipeline, ex extract.Extractor, w *internal.Watcher, lib library.Library) error {
	changed := make(map[string]bool)
	removed := make(map[string]bool)
	timer := time.NewTimer(settleFlag)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-w.Events():
			e.log.Debugf("%s %s", ev.Type, ev.Path)
			for _, path := range affected(lib, ev.Path) {
				switch ev.Type {
				case internal.EventDelete, internal.EventRename:
					if path == ev.Path {
						removed[path] = true
						delete(changed, path)
						continue
					}
					changed[path] = true
				default:
					changed[path] = true
					delete(removed, path)
				}
			}
			timer.Reset(settleFlag)

		case err := <-w.Errors():
			e.log.WithError(err).Warnf("watcher error")

		case <-timer.C:
			next, err := applyChanges(ctx, p, ex, lib, changed, removed)
			if err != nil {
				return err
			}
			lib = next
			if err := library.Save(e.cfg.StoreFile, lib); err != nil {
				return err
			}
			e.log.Infof("library updated: %d records, %d without date", len(lib), len(lib.Dateless()))
			changed = make(map[string]bool)
			removed = make(map[string]bool)
		}
	}
}

// affected maps an event path to the media files to refresh. A sidecar
// event concerns the media files it belongs to.
func affected(lib library.Library, path string) []string {
	if !strings.EqualFold(filepath.Ext(path), sidecar.Ext) {
		return []string{path}
	}
	var out []string
	for _, r := range lib {
		for _, c := range sidecar.Candidates(r.Path) {
			if c == path {
				out = append(out, r.Path)
				break
			}
		}
	}
	return out
}

func applyChanges(ctx context.Context, p *internal.Pipeline, ex extract.Extractor, lib library.Library, changed, removed map[string]bool) (library.Library, error) {
	for path := range removed {
		lib = lib.Remove(path)
	}
	if len(changed) == 0 {
		lib.AttachEstimates()
		p.Metrics.SetLibrary(lib)
		return lib, nil
	}

	paths := make([]string, 0, len(changed))
	for path := range changed {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool { return library.NaturalLess(paths[i], paths[j]) })

	return p.Refresh(ctx, ex, lib, paths)
}

func serveMetrics(ctx context.Context, log *internal.Logger, addr string, metrics *internal.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Errorf("metrics server stopped")
		}
	}()
	log.Infof("metrics on http://%s/metrics", addr)
	return srv
}

func init() {
	watchCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "Serve Prometheus metrics on this address (default: metrics.addr from the config)")
	watchCmd.Flags().DurationVar(&settleFlag, "settle", 2*time.Second, "Quiet time before a batch of changes is applied")

	rootCmd.AddCommand(watchCmd)
}
