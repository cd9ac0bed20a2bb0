package internal

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photoname/internal/library"
)

// Metrics holds the photoname counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Files read per extractor (exiftool, native)
	FilesExtracted *prometheus.CounterVec

	// Records built, by state (dated, dateless, failed)
	RecordsBuilt *prometheus.CounterVec

	// Records per source label
	Sources *prometheus.CounterVec

	// Rename outcomes (moved, suffixed, duplicate, unchanged, failed)
	Renames *prometheus.CounterVec

	// Records currently without a timestamp
	DatelessRecords prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FilesExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photoname_files_extracted_total",
			Help: "Total number of files whose tags were extracted",
		}, []string{"extractor"}),

		RecordsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photoname_records_built_total",
			Help: "Total number of records built from tag dictionaries",
		}, []string{"state"}),

		Sources: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photoname_sources_total",
			Help: "Total number of records per source label",
		}, []string{"source"}),

		Renames: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photoname_rename_total",
			Help: "Total number of rename actions by result",
		}, []string{"result"}),

		DatelessRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "photoname_dateless_records",
			Help: "Current number of records without a timestamp",
		}),
	}
}

func (m *Metrics) AddExtracted(extractor string, n int) {
	if m == nil {
		return
	}
	m.FilesExtracted.WithLabelValues(extractor).Add(float64(n))
}

// ObserveRecord counts a freshly built record.
func (m *Metrics) ObserveRecord(r *library.Record) {
	if m == nil {
		return
	}
	state := "dateless"
	if r.Dated() {
		state = "dated"
	}
	m.RecordsBuilt.WithLabelValues(state).Inc()
	m.Sources.WithLabelValues(r.Source).Inc()
}

func (m *Metrics) IncBuildFailed() {
	if m == nil {
		return
	}
	m.RecordsBuilt.WithLabelValues("failed").Inc()
}

func (m *Metrics) IncRename(result string) {
	if m == nil {
		return
	}
	m.Renames.WithLabelValues(result).Inc()
}

// SetLibrary refreshes the gauges from lib.
func (m *Metrics) SetLibrary(lib library.Library) {
	if m == nil {
		return
	}
	m.DatelessRecords.Set(float64(len(lib.Dateless())))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
