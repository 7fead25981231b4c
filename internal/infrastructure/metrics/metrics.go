package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Booking ledger metrics
	BookingsCreated     prometheus.Counter
	BookingsDeleted     prometheus.Counter
	BookingsRescheduled prometheus.Counter
	BookingDuration     *prometheus.HistogramVec
	BookingErrors       *prometheus.CounterVec
	PointsMoved         *prometheus.CounterVec

	// Directory metrics
	AccountsCreated prometheus.Counter
	ListingsCreated prometheus.Counter
	PointsGranted   prometheus.Counter

	// Ledger checks
	LedgerConsistent  prometheus.Gauge
	LedgerDiscrepancy prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Storage metrics
	TxRetries   *prometheus.CounterVec
	CacheHits   *prometheus.CounterVec
	RedisErrors *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec
	OutboxErrors    *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bookingledger_bookings_created_total",
			Help: "Total number of bookings created",
		}),
		BookingsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "bookingledger_bookings_deleted_total",
			Help: "Total number of bookings deleted",
		}),
		BookingsRescheduled: f.NewCounter(prometheus.CounterOpts{
			Name: "bookingledger_bookings_rescheduled_total",
			Help: "Total number of bookings rescheduled",
		}),
		BookingDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookingledger_booking_duration_seconds",
				Help:    "Duration of booking ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		BookingErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_booking_errors_total",
				Help: "Total number of booking ledger errors by type",
			},
			[]string{"operation", "error_type"},
		),
		PointsMoved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_points_moved_total",
				Help: "Points debited from or credited to accounts",
			},
			[]string{"direction"},
		),

		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bookingledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		ListingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bookingledger_listings_created_total",
			Help: "Total number of listings created",
		}),
		PointsGranted: f.NewCounter(prometheus.CounterOpts{
			Name: "bookingledger_points_granted_total",
			Help: "Points granted to accounts by top-ups",
		}),

		LedgerConsistent: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookingledger_ledger_consistent",
			Help: "1 if the last consistency check passed, 0 otherwise",
		}),
		LedgerDiscrepancy: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookingledger_ledger_discrepancies",
			Help: "Accounts found inconsistent by the last check",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookingledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		TxRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_tx_retries_total",
				Help: "Transaction attempts retried after a retryable database error",
			},
			[]string{"reason"},
		),
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"cache", "result"},
		),
		RedisErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		OutboxPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_outbox_published_total",
				Help: "Outbox events delivered to the sink",
			},
			[]string{"event_type"},
		),
		OutboxErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_outbox_errors_total",
				Help: "Outbox publish failures",
			},
			[]string{"stage"},
		),

		AuthFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
