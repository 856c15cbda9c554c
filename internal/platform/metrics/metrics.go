package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they need.
type Collector struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rateLimited   prometheus.Counter
	breakdowns    prometheus.Counter
	runs          *prometheus.CounterVec
	jobs          *prometheus.CounterVec
	remittanceDue prometheus.Gauge
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_http_requests_total",
			Help: "HTTP requests by status code.",
		}, []string{"code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrpay_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "hrpay_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		breakdowns: factory.NewCounter(prometheus.CounterOpts{
			Name: "hrpay_payroll_breakdowns_total",
			Help: "Employee breakdowns computed.",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_payroll_runs_total",
			Help: "Payroll runs by outcome.",
		}, []string{"outcome"}),
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_jobs_total",
			Help: "Background jobs by type and status.",
		}, []string{"type", "status"}),
		remittanceDue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hrpay_payroll_remittance_due",
			Help: "Total statutory remittance due for the latest run.",
		}),
	}
}

func (c *Collector) Record(method string, status int, d time.Duration) {
	c.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method).Observe(d.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

// RecordRun counts a payroll run; failed runs pass employees=0.
func (c *Collector) RecordRun(employees int, remittanceDue float64, err error) {
	if err != nil {
		c.runs.WithLabelValues("failed").Inc()
		return
	}
	c.runs.WithLabelValues("completed").Inc()
	c.breakdowns.Add(float64(employees))
	c.remittanceDue.Set(remittanceDue)
}

func (c *Collector) RecordJob(jobType, status string) {
	c.jobs.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
