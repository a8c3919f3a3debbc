package server

import (
	"net/http"

	"github.com/1Zgp/sailfish-barcode/bundle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

type Metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	reloads  *prometheus.CounterVec
	exports  *prometheus.CounterVec
}

func newMetrics(b *bundle.Bundle) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Translation lookups by served language and whether a translation was found.",
		}, []string{"language", "result"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Catalog files loaded again after a change.",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Catalogs written to file after an edit.",
		}, []string{"result"}),
	}

	loaded := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "languages_loaded",
		Help:      "Number of catalogs available for lookups.",
	}, func() float64 { return float64(len(b.Languages())) })

	m.registry.MustRegister(m.lookups, m.reloads, m.exports, loaded)
	return m
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (m *Metrics) looked(lang string, found bool) {
	if lang == "" {
		lang = "none"
	}
	res := "found"
	if !found {
		res = "fallback"
	}
	m.lookups.WithLabelValues(lang, res).Inc()
}

func (m *Metrics) reloaded(file string, err error) {
	m.reloads.WithLabelValues(result(err == nil)).Inc()
}

func (m *Metrics) exported(err error) {
	m.exports.WithLabelValues(result(err == nil)).Inc()
}

func (m *Metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
