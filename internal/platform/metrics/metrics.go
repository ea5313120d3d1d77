package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Discount codes
	CampaignRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_campaign_refresh_total",
			Help: "Campaign discount code refreshes by result",
		},
		[]string{"result"},
	)
	DiscountCodesArchivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "discount_codes_archived_total",
			Help: "Discount codes archived by the expiry sweep",
		},
	)
	ExpirySweepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_expiry_sweeps_total",
			Help: "Expiry sweep runs by result",
		},
		[]string{"result"},
	)

	// Policies
	PoliciesIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warranty_policies_issued_total",
			Help: "Issued warranty policies by plan tier",
		},
		[]string{"plan_tier"},
	)
	UnknownPaymentTypesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warranty_unknown_payment_types_total",
			Help: "Payment types that fell back to the default duration",
		},
	)
)

// Registry holds every collector this service exports.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CampaignRefreshTotal,
		DiscountCodesArchivedTotal,
		ExpirySweepsTotal,
		PoliciesIssuedTotal,
		UnknownPaymentTypesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
