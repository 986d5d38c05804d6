package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Account metrics
	AccountsCreated prometheus.Counter
	AccountsFrozen  prometheus.Counter

	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferAmount     prometheus.Histogram
	TransferContention prometheus.Counter

	// Top-up metrics
	TopupsConfirmed prometheus.Counter
	TopupAmount     prometheus.Histogram
	TopupsRejected  prometheus.Counter

	// Marketplace metrics
	ListingsCreated   prometheus.Counter
	ListingsModerated *prometheus.CounterVec

	// Settlement metrics
	OrdersReserved   prometheus.Counter
	OrdersSettled    prometheus.Counter
	OrdersReleased   prometheus.Counter
	OrdersExpired    prometheus.Counter
	SettlementAmount prometheus.Histogram

	// Conversion metrics
	ConversionsConfirmed prometheus.Counter
	ConversionsFailed    prometheus.Counter
	ConversionPoints     prometheus.Histogram

	// Reconciliation metrics
	ConsistencyChecks     prometheus.Counter
	ConsistencyMismatches prometheus.Gauge

	// API metrics
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	IdempotencyReplays prometheus.Counter

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Collaborator metrics
	GatewayCalls *prometheus.CounterVec
	MinterCalls  *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsPending   prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsFrozen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_accounts_frozen_total",
			Help: "Total number of accounts frozen",
		}),

		// Transfer metrics
		TransfersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_transfers_completed_total",
			Help: "Total number of completed transfers",
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecoledger_transfer_amount_paisa",
			Help:    "Transfer amounts in paisa",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
		}),
		TransferContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_transfer_contention_total",
			Help: "Total number of transfers that exhausted version-conflict retries",
		}),

		// Top-up metrics
		TopupsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_topups_confirmed_total",
			Help: "Total number of confirmed wallet top-ups",
		}),
		TopupAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecoledger_topup_amount_paisa",
			Help:    "Top-up amounts in paisa",
			Buckets: []float64{1000, 10000, 100000, 1000000, 10000000},
		}),
		TopupsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_topups_rejected_total",
			Help: "Total number of top-up confirmations rejected by the gateway",
		}),

		// Marketplace metrics
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_listings_created_total",
			Help: "Total number of listings submitted",
		}),
		ListingsModerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_listings_moderated_total",
				Help: "Total moderation decisions by resulting status",
			},
			[]string{"status"},
		),

		// Settlement metrics
		OrdersReserved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_orders_reserved_total",
			Help: "Total number of inventory reservations",
		}),
		OrdersSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_orders_settled_total",
			Help: "Total number of settled orders",
		}),
		OrdersReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_orders_released_total",
			Help: "Total number of released reservations",
		}),
		OrdersExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_orders_expired_total",
			Help: "Total number of reservations expired by the sweep",
		}),
		SettlementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecoledger_settlement_amount_paisa",
			Help:    "Settled order totals in paisa",
			Buckets: []float64{1000, 10000, 100000, 1000000, 10000000, 100000000},
		}),

		// Conversion metrics
		ConversionsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_conversions_confirmed_total",
			Help: "Total number of confirmed token conversions",
		}),
		ConversionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_conversions_failed_total",
			Help: "Total number of failed token conversions",
		}),
		ConversionPoints: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecoledger_conversion_points",
			Help:    "Points burned per conversion",
			Buckets: []float64{500, 1000, 5000, 10000, 50000, 100000},
		}),

		// Reconciliation metrics
		ConsistencyChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_consistency_checks_total",
			Help: "Total number of reconciliation passes",
		}),
		ConsistencyMismatches: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecoledger_consistency_mismatches",
			Help: "Mismatches found by the most recent reconciliation pass",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecoledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		IdempotencyReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_idempotency_replays_total",
			Help: "Total HTTP requests answered from the idempotency store",
		}),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecoledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecoledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Collaborator metrics
		GatewayCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_gateway_calls_total",
				Help: "Total payment gateway calls by outcome",
			},
			[]string{"operation", "outcome"},
		),
		MinterCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecoledger_minter_calls_total",
				Help: "Total chain minter calls by outcome",
			},
			[]string{"outcome"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecoledger_events_published_total",
			Help: "Total outbox events published",
		}),
		EventsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ecoledger_events_pending",
			Help: "Outbox events awaiting publication",
		}),
	}
}
