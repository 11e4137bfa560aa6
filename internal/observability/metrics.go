// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Planner metrics
	PlansGenerated prometheus.Counter
	PlanErrors     *prometheus.CounterVec

	// Scoring metrics
	DaysScored    *prometheus.CounterVec
	ScoringErrors *prometheus.CounterVec

	// Market data metrics
	CandlesFetched    prometheus.Counter
	CandleFetchErrors prometheus.Counter
	FetchLatency      *prometheus.HistogramVec
	TickerReconnects  prometheus.Counter
	LastTickPrice     prometheus.Gauge

	// Reporting metrics
	ReportsGenerated prometheus.Counter

	// Health metrics
	LastSuccessfulPlan  prometheus.Gauge
	LastSuccessfulScore prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "btc_journal"
	}

	return &Metrics{
		PlansGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plans_generated_total",
			Help:      "Total number of daily playbooks generated",
		}),
		PlanErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plan_errors_total",
			Help:      "Total number of plan generation failures by stage",
		}, []string{"stage"}),

		DaysScored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "days_scored_total",
			Help:      "Total number of scoring attempts by disposition",
		}, []string{"disposition"}),
		ScoringErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "errors_total",
			Help:      "Total number of scoring failures by reason",
		}, []string{"reason"}),

		CandlesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "candles_fetched_total",
			Help:      "Total number of candles fetched from the exchange",
		}),
		CandleFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "candle_fetch_errors_total",
			Help:      "Total number of failed candle fetches",
		}),
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetch_latency_seconds",
			Help:      "Market data request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		TickerReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "ticker_reconnects_total",
			Help:      "Total number of ticker websocket reconnects",
		}),
		LastTickPrice: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "last_tick_price_usd",
			Help:      "Last BTC price seen on the ticker stream",
		}),

		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of report builds",
		}),

		LastSuccessfulPlan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_plan_timestamp",
			Help:      "Unix timestamp of the last successful plan run",
		}),
		LastSuccessfulScore: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_score_timestamp",
			Help:      "Unix timestamp of the last successful scoring run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPlanGenerated marks a successful plan run.
func RecordPlanGenerated(unixSeconds float64) {
	DefaultMetrics.PlansGenerated.Inc()
	DefaultMetrics.LastSuccessfulPlan.Set(unixSeconds)
}

// RecordPlanError records a plan generation failure.
func RecordPlanError(stage string) {
	DefaultMetrics.PlanErrors.WithLabelValues(stage).Inc()
}

// RecordDayScored records a scoring attempt by disposition.
func RecordDayScored(disposition string, unixSeconds float64) {
	DefaultMetrics.DaysScored.WithLabelValues(disposition).Inc()
	DefaultMetrics.LastSuccessfulScore.Set(unixSeconds)
}

// RecordScoringError records a scoring failure.
func RecordScoringError(reason string) {
	DefaultMetrics.ScoringErrors.WithLabelValues(reason).Inc()
}

// RecordCandlesFetched adds to the fetched candle count.
func RecordCandlesFetched(n int) {
	DefaultMetrics.CandlesFetched.Add(float64(n))
}

// RecordCandleFetchError increments the failed candle fetch count.
func RecordCandleFetchError() {
	DefaultMetrics.CandleFetchErrors.Inc()
}

// RecordFetchLatency records a market data request duration.
func RecordFetchLatency(endpoint string, seconds float64) {
	DefaultMetrics.FetchLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordTickerReconnect increments the websocket reconnect count.
func RecordTickerReconnect() {
	DefaultMetrics.TickerReconnects.Inc()
}

// RecordReportGenerated increments the report build counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}
