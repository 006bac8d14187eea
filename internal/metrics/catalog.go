package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records resolver, import, override and reorder activity.
// A nil *CatalogMetrics is valid and records nothing.
type CatalogMetrics struct {
	resolveHits     *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	importRecords   *prometheus.CounterVec
	overrideChanges *prometheus.CounterVec
	reorderEmails   *prometheus.CounterVec
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	m := &CatalogMetrics{
		resolveHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resolve_hits_total",
			Help: "Resolver steps that produced the returned result set.",
		}, []string{"mode", "step"}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resolve_duration_seconds",
			Help:    "Time spent resolving a search query.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		importRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_import_records_total",
			Help: "Catalog records processed by import, by report and outcome.",
		}, []string{"report", "outcome"}),
		overrideChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barcode_override_changes_total",
			Help: "Barcode override operations by action.",
		}, []string{"action"}),
		reorderEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reorder_emails_total",
			Help: "Reorder e-mails by delivery outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.resolveHits, m.resolveDuration, m.importRecords, m.overrideChanges, m.reorderEmails)
	return m
}

func (m *CatalogMetrics) ResolveHit(mode, step string) {
	if m == nil || m.resolveHits == nil {
		return
	}
	m.resolveHits.WithLabelValues(normalizeLabel(mode), normalizeLabel(step)).Inc()
}

func (m *CatalogMetrics) ObserveResolve(mode string, d time.Duration) {
	if m == nil || m.resolveDuration == nil {
		return
	}
	m.resolveDuration.WithLabelValues(normalizeLabel(mode)).Observe(d.Seconds())
}

func (m *CatalogMetrics) ImportRecords(report, outcome string, n int) {
	if m == nil || m.importRecords == nil || n <= 0 {
		return
	}
	m.importRecords.WithLabelValues(normalizeLabel(report), normalizeLabel(outcome)).Add(float64(n))
}

func (m *CatalogMetrics) OverrideChange(action string) {
	if m == nil || m.overrideChanges == nil {
		return
	}
	m.overrideChanges.WithLabelValues(normalizeLabel(action)).Inc()
}

func (m *CatalogMetrics) ReorderEmail(outcome string) {
	if m == nil || m.reorderEmails == nil {
		return
	}
	m.reorderEmails.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
