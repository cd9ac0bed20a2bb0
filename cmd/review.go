package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"photoname/internal"
	"photoname/internal/library"
	"photoname/internal/tags"
)

var (
	addrFlag    string
	dataDirFlag string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Serve an HTTP API to review and fix undated files",
	Long: `Start a PocketBase server with the photoname review routes:

  GET  /api/photoname/records[?dateless=1]
  GET  /api/photoname/records/{index}/timetags
  POST /api/photoname/records/{index}/date   {"timestamp": "..."} or {"pick": "left|right"}
  GET  /api/photoname/plan[?dest=...]
  GET  /metrics`,
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

		addr := addrFlag
		if addr == "" {
			addr = e.cfg.Review.Addr
		}
		dataDir := dataDirFlag
		if dataDir == "" {
			dataDir = e.cfg.Review.DataDir
		}

		metrics := internal.NewMetrics()
		metrics.SetLibrary(lib)
		api := &reviewAPI{env: e, lib: lib, metrics: metrics}

		app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: dataDir})
		if err := app.Bootstrap(); err != nil {
			return fmt.Errorf("failed to bootstrap review server: %w", err)
		}
		app.OnServe().BindFunc(func(se *core.ServeEvent) error {
			api.register(se)
			return se.Next()
		})

		go func() {
			<-cmd.Context().Done()
			app.OnTerminate().Trigger(&core.TerminateEvent{App: app}, func(te *core.TerminateEvent) error {
				return te.App.ResetBootstrapState()
			})
		}()

		fmt.Printf("Review server on http://%s/api/photoname/records\n", addr)
		fmt.Printf("Library: %s (%d records, %d without date)\n", e.cfg.StoreFile, len(lib), len(lib.Dateless()))
		fmt.Printf("Data directory: %s\n", dataDir)

		err = apis.Serve(app, apis.ServeConfig{HttpAddr: addr, ShowStartBanner: false})
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

// reviewAPI serves the library. Requests are serialized by mu.
type reviewAPI struct {
	env     *env
	metrics *internal.Metrics

	mu  sync.Mutex
	lib library.Library
}

type recordView struct {
	Index     int    `json:"index"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Sidecar   string `json:"sidecar,omitempty"`
	Left      string `json:"left,omitempty"`
	Right     string `json:"right,omitempty"`
	Proposed  string `json:"proposed_name,omitempty"`
}

func view(i int, r *library.Record) recordView {
	left, right := r.Estimates()
	return recordView{
		Index:     i,
		Path:      r.Path,
		Timestamp: r.Timestamp,
		Source:    r.Source,
		Sidecar:   r.Sidecar,
		Left:      left,
		Right:     right,
		Proposed:  r.ProposedName,
	}
}

type dateRequest struct {
	Timestamp string `json:"timestamp"`
	Pick      string `json:"pick"`
}

var errNoRecord = errors.New("no such record")

func (a *reviewAPI) register(se *core.ServeEvent) {
	se.Router.GET("/api/photoname/records", func(re *core.RequestEvent) error {
		return re.JSON(http.StatusOK, a.records(re.Request.URL.Query().Get("dateless") != ""))
	})

	se.Router.GET("/api/photoname/records/{index}/timetags", func(re *core.RequestEvent) error {
		entries, err := a.timeTags(re.Request.PathValue("index"))
		if err != nil {
			return re.NotFoundError(err.Error(), err)
		}
		return re.JSON(http.StatusOK, entries)
	})

	se.Router.POST("/api/photoname/records/{index}/date", func(re *core.RequestEvent) error {
		var body dateRequest
		if err := re.BindBody(&body); err != nil {
			return re.BadRequestError("invalid body", err)
		}
		v, err := a.setDate(re.Request.PathValue("index"), body)
		if errors.Is(err, errNoRecord) {
			return re.NotFoundError(err.Error(), err)
		}
		if err != nil {
			return re.BadRequestError(err.Error(), err)
		}
		return re.JSON(http.StatusOK, v)
	})

	se.Router.GET("/api/photoname/plan", func(re *core.RequestEvent) error {
		views, err := a.plan(re.Request.URL.Query().Get("dest"))
		if err != nil {
			return re.BadRequestError(err.Error(), err)
		}
		return re.JSON(http.StatusOK, views)
	})

	handler := a.metrics.Handler()
	se.Router.GET("/metrics", func(re *core.RequestEvent) error {
		handler.ServeHTTP(re.Response, re.Request)
		return nil
	})
}

func (a *reviewAPI) records(datelessOnly bool) []recordView {
	a.mu.Lock()
	defer a.mu.Unlock()

	views := make([]recordView, 0, len(a.lib))
	for i, r := range a.lib {
		if datelessOnly && r.Dated() {
			continue
		}
		views = append(views, view(i, r))
	}
	return views
}

func (a *reviewAPI) record(index string) (int, error) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(a.lib) {
		return 0, fmt.Errorf("%w: %s", errNoRecord, index)
	}
	return i, nil
}

func (a *reviewAPI) timeTags(index string) ([]tags.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, err := a.record(index)
	if err != nil {
		return nil, err
	}
	entries := tags.TimeTags(a.lib[i].Tags)
	if entries == nil {
		entries = []tags.Entry{}
	}
	return entries, nil
}

// setDate fixes a record in the store, as `fixdate` without --write does.
func (a *reviewAPI) setDate(index string, body dateRequest) (recordView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, err := a.record(index)
	if err != nil {
		return recordView{}, err
	}
	r := a.lib[i]
	ts, err := chooseTimestamp(r, body.Timestamp, body.Pick)
	if err != nil {
		return recordView{}, err
	}
	if err := r.SetTimestamp(ts); err != nil {
		return recordView{}, err
	}
	a.lib.AttachEstimates()
	a.metrics.SetLibrary(a.lib)

	if err := library.Save(a.env.cfg.StoreFile, a.lib); err != nil {
		return recordView{}, err
	}
	a.env.log.With("file", r.Path).Infof("date set to %s", ts)
	return view(i, r), nil
}

func (a *reviewAPI) plan(dest string) ([]recordView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dest, err := a.env.destination(dest)
	if err != nil {
		return nil, err
	}
	library.Plan(a.lib, dest)

	views := make([]recordView, 0, len(a.lib))
	for i, r := range a.lib {
		if r.ProposedName != "" {
			views = append(views, view(i, r))
		}
	}
	return views, nil
}

func init() {
	reviewCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default: review.addr from the config)")
	reviewCmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "PocketBase data directory (default: review.data_dir from the config)")

	rootCmd.AddCommand(reviewCmd)
}
