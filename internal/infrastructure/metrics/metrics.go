package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "branch_ledger"

// Metrics colectores Prometheus de la API. Usa su propio registry para no depender del global.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	transactions    *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	creditDecisions *prometheus.CounterVec
	payments        *prometheus.CounterVec
	conflictRetries prometheus.Counter
}

// New crea y registra los colectores.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Duración de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "transactions_total",
			Help: "Documentos de inventario registrados por tipo.",
		}, []string{"type"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "rejections_total",
			Help: "Operaciones rechazadas por código de error.",
		}, []string{"code"}),
		creditDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "credit", Name: "decisions_total",
			Help: "Evaluaciones de crédito por resultado y razón de bloqueo.",
		}, []string{"allowed", "reason"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "credit", Name: "payments_total",
			Help: "Abonos procesados por resultado.",
		}, []string{"result"}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "conflict_retries_total",
			Help: "Reintentos por conflicto de concurrencia.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.transactions, m.rejections,
		m.creditDecisions, m.payments, m.conflictRetries,
	)
	return m
}

// Registry registry propio (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP registra una petición terminada.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TransactionPosted cuenta un documento registrado.
func (m *Metrics) TransactionPosted(txType string) {
	m.transactions.WithLabelValues(txType).Inc()
}

// Rejected cuenta una operación rechazada (VALIDATION, INSUFFICIENT_STOCK, CREDIT_BLOCKED...).
func (m *Metrics) Rejected(code string) {
	m.rejections.WithLabelValues(code).Inc()
}

// CreditDecision cuenta una evaluación de crédito.
func (m *Metrics) CreditDecision(allowed bool, reason string) {
	label := "false"
	if allowed {
		label = "true"
	}
	m.creditDecisions.WithLabelValues(label, reason).Inc()
}

// PaymentsProcessed cuenta abonos aplicados y fallidos de un lote.
func (m *Metrics) PaymentsProcessed(applied, failed int) {
	m.payments.WithLabelValues("applied").Add(float64(applied))
	m.payments.WithLabelValues("failed").Add(float64(failed))
}

// ConflictRetry cuenta un reintento por conflicto.
func (m *Metrics) ConflictRetry() {
	m.conflictRetries.Inc()
}
