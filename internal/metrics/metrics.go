package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "casetracker"

// Metrics groups the collectors exported on /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	storageWrites *prometheus.CounterVec
	storageLoads  *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	importRows    *prometheus.CounterVec
	migrated      prometheus.Counter
	casesStored   prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		storageWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_writes_total",
			Help:      "Record set writes by store and result.",
		}, []string{"store", "result"}),
		storageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_loads_total",
			Help:      "Record set loads by store and result.",
		}, []string{"store", "result"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "case_mutations_total",
			Help:      "Case mutations by operation.",
		}, []string{"operation"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_import_rows_total",
			Help:      "CSV rows processed by outcome.",
		}, []string{"outcome"}),
		migrated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_records_copied_total",
			Help:      "Records copied from the fallback store into the primary store.",
		}),
		casesStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cases_stored",
			Help:      "Number of cases currently held in memory.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.storageWrites,
		m.storageLoads,
		m.mutations,
		m.importRows,
		m.migrated,
		m.casesStored,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) StorageWrite(store string, err error) {
	if m == nil {
		return
	}
	m.storageWrites.WithLabelValues(store, result(err)).Inc()
}

func (m *Metrics) StorageLoad(store string, err error) {
	if m == nil {
		return
	}
	m.storageLoads.WithLabelValues(store, result(err)).Inc()
}

func (m *Metrics) Mutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) ImportRows(imported, failed int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("rejected").Add(float64(failed))
}

func (m *Metrics) Migrated(n int) {
	if m == nil {
		return
	}
	m.migrated.Add(float64(n))
}

func (m *Metrics) CasesStored(n int) {
	if m == nil {
		return
	}
	m.casesStored.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
